// Package input turns record-oriented streams into identifiers.
package input

import (
	"fmt"
	"io"

	"bulkdelete/internal/bulkdelete/model"
)

// Source yields identifiers in input order. Next returns io.EOF once the
// stream is exhausted; any other error wraps model.ErrInputParse.
type Source interface {
	Next() (string, error)
}

type Options struct {
	Format     string
	SkipHeader bool
	Comma      rune
}

// NewSource picks the reader for format ("csv" or "json").
func NewSource(r io.Reader, opts Options) (Source, error) {
	switch opts.Format {
	case "", "csv":
		return NewCSVSource(r, opts.Comma, opts.SkipHeader), nil
	case "json":
		return NewJSONSource(r), nil
	default:
		return nil, fmt.Errorf("%w: unknown input format %q", model.ErrConfiguration, opts.Format)
	}
}

// SliceSource serves identifiers from memory.
type SliceSource struct {
	ids []string
	pos int
}

func NewSliceSource(ids ...string) *SliceSource {
	return &SliceSource{ids: ids}
}

func (s *SliceSource) Next() (string, error) {
	if s.pos >= len(s.ids) {
		return "", io.EOF
	}
	id := s.ids[s.pos]
	s.pos++
	return id, nil
}
