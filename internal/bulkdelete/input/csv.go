package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"bulkdelete/internal/bulkdelete/model"
)

// CSVSource reads the first field of every record. All records must carry
// the same number of fields as the first one.
type CSVSource struct {
	r          *csv.Reader
	skipHeader bool
	headerRead bool
}

func NewCSVSource(r io.Reader, comma rune, skipHeader bool) *CSVSource {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.ReuseRecord = true
	return &CSVSource{r: cr, skipHeader: skipHeader}
}

func (s *CSVSource) Next() (string, error) {
	for {
		record, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", model.ErrInputParse, err)
		}

		if s.skipHeader && !s.headerRead {
			s.headerRead = true
			continue
		}

		id := strings.TrimSpace(record[0])
		if id == "" {
			line, _ := s.r.FieldPos(0)
			return "", fmt.Errorf("%w: record on line %d has an empty identifier", model.ErrInputParse, line)
		}
		return id, nil
	}
}
