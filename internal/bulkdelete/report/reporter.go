package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"bulkdelete/internal/bulkdelete/model"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Reporter writes one record per result to the output stream.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	enc    *json.Encoder
}

func NewReporter(w io.Writer, format string) *Reporter {
	r := &Reporter{w: w, format: format}
	if format == FormatJSON {
		r.enc = json.NewEncoder(w)
	}
	return r
}

// Emit writes res as a console line ("O: <url>", ...) or as a JSON object.
func (r *Reporter) Emit(res model.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc != nil {
		return r.enc.Encode(res)
	}
	_, err := fmt.Fprintln(r.w, res.Line())
	return err
}
