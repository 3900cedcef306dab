package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentExt is the extension of every stored collection document.
const DocumentExt = ".json"

// Common errors for all document stores.
var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidName = errors.New("invalid document name")
)

// Interface is implemented by every collection document store.
// Documents are addressed by name, always of the form "<town>.json".
type Interface interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// DocumentName returns the document name under which a town's collection is stored.
func DocumentName(town string) string {
	return town + DocumentExt
}

// ValidateName checks that name is a plain "<town>.json" file name.
func ValidateName(name string) error {
	if !strings.EqualFold(filepath.Ext(name), DocumentExt) {
		return fmt.Errorf("%w: %q is not a %s document", ErrInvalidName, name, DocumentExt)
	}

	stem := strings.TrimSpace(strings.TrimSuffix(name, filepath.Ext(name)))
	if stem == "" || stem == "." || stem == ".." {
		return fmt.Errorf("%w: %q has an empty town name", ErrInvalidName, name)
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}

	return nil
}
