package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors for collection documents.
var (
	ErrInvalidJSON   = errors.New("document is not valid JSON")
	ErrInvalidFormat = errors.New("document does not have the expected format")
)

// Collection is the persisted form of a marker list: the town name plus its markers in display order.
type Collection struct {
	Town    string   `json:"town"`
	Markers []Marker `json:"markers"`
}

// document mirrors Collection with optional fields, so that missing keys can be told apart from empty ones.
type document struct {
	Town    *string   `json:"town"`
	Markers *[]Marker `json:"markers"`
}

// EncodeCollection serializes a collection as pretty-printed JSON with two-space indentation.
// A nil marker list is written as an empty array.
func EncodeCollection(c Collection) ([]byte, error) {
	if c.Markers == nil {
		c.Markers = []Marker{}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode collection: %w", err)
	}

	return data, nil
}

// shape holds the list lengths of a document, which fixed-size arrays would silently truncate.
type shape struct {
	Markers []struct {
		Questions []struct {
			Options []json.RawMessage `json:"options"`
		} `json:"questions"`
	} `json:"markers"`
}

// DecodeCollection parses a collection document. The document must carry a non-empty
// town and a markers array; an empty array is accepted. Markers may not carry more than
// QuestionsPerMarker questions, nor questions more than OptionsPerQuestion options.
func DecodeCollection(data []byte) (*Collection, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	if doc.Town == nil || *doc.Town == "" {
		return nil, fmt.Errorf("%w: missing town", ErrInvalidFormat)
	}
	if doc.Markers == nil {
		return nil, fmt.Errorf("%w: missing markers", ErrInvalidFormat)
	}
	if err := checkLengths(data); err != nil {
		return nil, err
	}

	return &Collection{Town: *doc.Town, Markers: *doc.Markers}, nil
}

func checkLengths(data []byte) error {
	var sh shape
	if err := json.Unmarshal(data, &sh); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	for i, marker := range sh.Markers {
		if len(marker.Questions) > QuestionsPerMarker {
			return fmt.Errorf("%w: marker %d has %d questions, at most %d allowed",
				ErrInvalidFormat, i, len(marker.Questions), QuestionsPerMarker)
		}
		for j, question := range marker.Questions {
			if len(question.Options) > OptionsPerQuestion {
				return fmt.Errorf("%w: question %d of marker %d has %d options, at most %d allowed",
					ErrInvalidFormat, j, i, len(question.Options), OptionsPerQuestion)
			}
		}
	}

	return nil
}
