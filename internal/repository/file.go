package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileRepository stores collection documents as files in a single directory.
type FileRepository struct {
	fs  afero.Fs     // Filesystem the documents live on
	dir string       // Directory holding the documents
	log *slog.Logger // Logger for logging operations
}

// NewFileRepository creates a FileRepository rooted at dir on the operating system filesystem.
func NewFileRepository(dir string, log *slog.Logger) *FileRepository {
	return NewFileRepositoryWithFs(afero.NewOsFs(), dir, log)
}

// NewFileRepositoryWithFs creates a FileRepository on a custom filesystem.
// Useful for testing with in-memory filesystems.
func NewFileRepositoryWithFs(fsys afero.Fs, dir string, log *slog.Logger) *FileRepository {
	return &FileRepository{fs: fsys, dir: dir, log: log}
}

// Put writes the document to "<dir>/<name>", creating the directory if needed,
// and returns the path it was written to.
func (r *FileRepository) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	if err := r.fs.MkdirAll(r.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	path := filepath.Join(r.dir, name)
	if err := afero.WriteFile(r.fs, path, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	r.log.DebugContext(ctx, "Document written", "path", path, "bytes", len(data))

	return path, nil
}

// Get reads the named document.
func (r *FileRepository) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	path := filepath.Join(r.dir, name)
	data, err := afero.ReadFile(r.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	r.log.DebugContext(ctx, "Document read", "path", path, "bytes", len(data))

	return data, nil
}

// List returns the names of all documents in the directory, sorted.
// A missing directory yields an empty list.
func (r *FileRepository) List(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || ValidateName(entry.Name()) != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	return names, nil
}

// Ping makes sure the document directory exists.
func (r *FileRepository) Ping(_ context.Context) error {
	if err := r.fs.MkdirAll(r.dir, dirPerm); err != nil {
		return fmt.Errorf("document directory is not available: %w", err)
	}

	return nil
}
