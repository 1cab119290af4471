package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"bulkdelete/internal/bulkdelete/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []model.Result {
	return []model.Result{
		{Seq: 0, ID: "a1", URL: "https://api.example.com/items/a1", Outcome: model.OutcomeDeleted, StatusCode: 200, Attempts: 1},
		{Seq: 1, ID: "b2", URL: "https://api.example.com/items/b2", Outcome: model.OutcomeNotFound, StatusCode: 404, Attempts: 1},
		{Seq: 2, ID: "c3", URL: "https://api.example.com/items/c3", Outcome: model.OutcomeUnauthorized, StatusCode: 401, Attempts: 1},
		{Seq: 3, ID: "d4", URL: "https://api.example.com/items/d4", Outcome: model.OutcomeOtherError, StatusCode: 500,
			Detail: "500 Internal Server Error DELETE https://api.example.com/items/d4", Attempts: 1},
	}
}

func TestReporterText(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, FormatText)

	for _, res := range sampleResults() {
		require.NoError(t, r.Emit(res))
	}

	want := "O: https://api.example.com/items/a1\n" +
		"X: https://api.example.com/items/b2\n" +
		"F: Need to grab a new token\n" +
		"E: 500 Internal Server Error DELETE https://api.example.com/items/d4\n"
	assert.Equal(t, want, buf.String())
}

func TestReporterJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, FormatJSON)

	for _, res := range sampleResults() {
		require.NoError(t, r.Emit(res))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a1", first["id"])
	assert.Equal(t, "https://api.example.com/items/a1", first["url"])
	assert.Equal(t, "deleted", first["outcome"])
	assert.Equal(t, float64(200), first["status"])
	assert.NotContains(t, first, "detail")

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "other_error", last["outcome"])
	assert.Equal(t, "500 Internal Server Error DELETE https://api.example.com/items/d4", last["detail"])
}

func TestReporterConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, FormatText)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Emit(model.Result{Seq: i, URL: fmt.Sprintf("https://api.example.com/items/%d", i), Outcome: model.OutcomeDeleted})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "O: https://api.example.com/items/"), line)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, fmt.Errorf("broken pipe") }

func TestReporterWriteError(t *testing.T) {
	r := NewReporter(failingWriter{}, FormatText)
	err := r.Emit(sampleResults()[0])
	assert.EqualError(t, err, "broken pipe")
}
