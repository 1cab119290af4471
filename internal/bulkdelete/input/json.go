package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"bulkdelete/internal/bulkdelete/model"
)

const (
	jsonSeeking = iota
	jsonInResults
	jsonDone
)

// JSONSource streams identifiers out of a search-style document:
//
//	{"results": [{"id": "a"}, {"id": "b"}]}
//
// Other top-level keys are skipped. A document without "results" yields nothing.
type JSONSource struct {
	dec   *json.Decoder
	state int
	index int
	found bool
}

func NewJSONSource(r io.Reader) *JSONSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONSource{dec: dec}
}

type jsonResult struct {
	ID json.RawMessage `json:"id"`
}

func (s *JSONSource) Next() (string, error) {
	if s.state == jsonSeeking {
		if err := s.seekResults(); err != nil {
			s.state = jsonDone
			return "", err
		}
	}
	if s.state == jsonDone {
		return "", io.EOF
	}

	if !s.dec.More() {
		s.state = jsonDone
		if _, err := s.dec.Token(); err != nil {
			return "", parseErr(err)
		}
		return "", io.EOF
	}

	var res jsonResult
	if err := s.dec.Decode(&res); err != nil {
		s.state = jsonDone
		return "", fmt.Errorf("results[%d]: %w", s.index, parseErr(err))
	}
	id, err := rawID(res.ID)
	if err != nil {
		s.state = jsonDone
		return "", fmt.Errorf("%w: results[%d]: %v", model.ErrInputParse, s.index, err)
	}
	s.index++
	return id, nil
}

func (s *JSONSource) seekResults() error {
	tok, err := s.dec.Token()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return parseErr(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected a JSON object", model.ErrInputParse)
	}

	for s.dec.More() {
		keyTok, err := s.dec.Token()
		if err != nil {
			return parseErr(err)
		}
		key, _ := keyTok.(string)
		if key != "results" {
			var skip json.RawMessage
			if err := s.dec.Decode(&skip); err != nil {
				return parseErr(err)
			}
			continue
		}

		tok, err := s.dec.Token()
		if err != nil {
			return parseErr(err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return fmt.Errorf("%w: \"results\" must be an array", model.ErrInputParse)
		}
		s.state = jsonInResults
		s.found = true
		return nil
	}

	s.state = jsonDone
	return nil
}

// HasResults reports whether the document carried a "results" array.
// It is only meaningful after the first call to Next.
func (s *JSONSource) HasResults() bool {
	return s.found
}

func rawID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}

	var id string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &id); err != nil {
			return "", err
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		id = string(raw)
	default:
		return "", fmt.Errorf("id must be a string or number, got %s", raw)
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("empty id")
	}
	return id, nil
}

// parseErr wraps err as an input error. A bare io.EOF inside a document means
// it was truncated and must not read as a clean end of stream.
func parseErr(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", model.ErrInputParse, err)
}
