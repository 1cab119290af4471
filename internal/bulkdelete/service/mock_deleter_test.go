package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"bulkdelete/internal/bulkdelete/client"

	"github.com/stretchr/testify/mock"
)

const testBaseURL = "https://api.example.com/v1/items/"

// MockResourceDeleter is a testify mock of ResourceDeleter.
type MockResourceDeleter struct {
	mock.Mock
}

func (m *MockResourceDeleter) Delete(ctx context.Context, id string) (*client.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func (m *MockResourceDeleter) URLFor(id string) string {
	return testBaseURL + url.PathEscape(id)
}

func respond(status int) *client.Response {
	return &client.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Method:     http.MethodDelete,
		Attempts:   1,
	}
}

// fakeDeleter answers from a status table and remembers what was asked.
// Ids missing from the table are deleted once, then not found.
type fakeDeleter struct {
	mu       sync.Mutex
	statuses map[string]int
	deleted  map[string]bool
	calls    []string
	gate     chan struct{}
}

func newFakeDeleter(statuses map[string]int) *fakeDeleter {
	return &fakeDeleter{statuses: statuses, deleted: make(map[string]bool)}
}

func (f *fakeDeleter) Delete(ctx context.Context, id string) (*client.Response, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)

	status, ok := f.statuses[id]
	if !ok {
		status = http.StatusOK
		if f.deleted[id] {
			status = http.StatusNotFound
		}
		f.deleted[id] = true
	}
	resp := respond(status)
	resp.URL = f.URLFor(id)
	return resp, nil
}

func (f *fakeDeleter) URLFor(id string) string {
	return testBaseURL + url.PathEscape(id)
}

func (f *fakeDeleter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
