package input

import (
	"encoding/csv"
	"errors"
	"io"
)

// Extract drains src and writes one CSV record per identifier to w,
// optionally preceded by an "id" header row. The header is left out when a
// JSON source has no "results" array at all. It returns the number of
// identifiers written.
func Extract(w io.Writer, src Source, header bool) (int, error) {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	n := 0
	for first := true; ; first = false {
		id, err := src.Next()
		if first && header && hasResults(src) {
			if werr := cw.Write([]string{"id"}); werr != nil {
				return 0, werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if err := cw.Write([]string{id}); err != nil {
			return n, err
		}
		n++
	}

	cw.Flush()
	return n, cw.Error()
}

func hasResults(src Source) bool {
	if js, ok := src.(interface{ HasResults() bool }); ok {
		return js.HasResults()
	}
	return true
}
