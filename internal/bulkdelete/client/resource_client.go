package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bulkdelete/internal/bulkdelete/config"
	"bulkdelete/internal/bulkdelete/model"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	HeaderAPIKey = "X-API-KEY"

	// maxBodyExcerpt caps how much of an error response is kept for reporting.
	maxBodyExcerpt = 4 << 10
	// maxDrain caps how much of a response is read so the connection can be reused.
	maxDrain = 64 << 10
)

// Response is what came back for one delete, after any transport retries.
type Response struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       string
	Attempts   int
}

// Summary describes the response on one line: status, method, url and a
// body excerpt if there was one.
func (r *Response) Summary() string {
	s := fmt.Sprintf("%s %s %s", r.Status, r.Method, r.URL)
	body := strings.Join(strings.Fields(r.Body), " ")
	if body != "" {
		s += ": " + body
	}
	return s
}

// TransportError is a delete that never got an HTTP response. It matches
// model.ErrTransport with errors.Is.
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: DELETE %s failed after %d attempt(s): %v", model.ErrTransport, e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{model.ErrTransport, e.Err}
}

type Options struct {
	// Timeout bounds each attempt, not the whole delete.
	Timeout              time.Duration
	MaxRetries           int
	RetryInitialInterval time.Duration
	// RateLimit is requests per second shared by every caller of the client; 0 disables it.
	RateLimit  float64
	HTTPClient *http.Client
}

// ResourceClient issues authenticated deletes against the configured endpoint.
// It is safe for concurrent use.
type ResourceClient struct {
	endpoint        config.Endpoint
	httpClient      *http.Client
	limiter         *rate.Limiter
	timeout         time.Duration
	maxRetries      int
	initialInterval time.Duration
}

func NewResourceClient(endpoint config.Endpoint, opts Options) *ResourceClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &ResourceClient{
		endpoint:        endpoint,
		httpClient:      httpClient,
		timeout:         opts.Timeout,
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.RetryInitialInterval,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// URLFor returns the resource URL for id: the base URL prefix followed by id
// escaped as a single path segment.
func (c *ResourceClient) URLFor(id string) string {
	return c.endpoint.BaseURL + escapeSegment(id)
}

// escapeSegment is url.PathEscape plus the dot segments, which PathEscape
// leaves alone and which resolve to the collection or its parent.
func escapeSegment(id string) string {
	switch seg := url.PathEscape(id); seg {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	default:
		return seg
	}
}

// Delete issues DELETE for id. Any HTTP response, whatever its status, is
// returned without error. Failures below HTTP are retried up to MaxRetries
// times and then reported wrapped in model.ErrTransport. If ctx ends first,
// ctx.Err() is returned.
func (c *ResourceClient) Delete(ctx context.Context, id string) (*Response, error) {
	target := c.URLFor(id)
	attempts := 0

	op := func() (*Response, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		resp, err := c.do(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			var perm *permanentError
			if errors.As(err, &perm) {
				return nil, backoff.Permanent(perm.err)
			}
			return nil, err
		}
		return resp, nil
	}

	resp, err := backoff.RetryWithData(op, c.backOff(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{URL: target, Attempts: attempts, Err: err}
	}
	resp.Attempts = attempts
	return resp, nil
}

func (c *ResourceClient) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if c.initialInterval > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.initialInterval
		exp.MaxElapsedTime = 0
		b = exp
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

func (c *ResourceClient) do(ctx context.Context, target string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return nil, &permanentError{err: err}
	}
	req.Header.Set(HeaderAPIKey, c.endpoint.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.endpoint.BearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Method:     http.MethodDelete,
		URL:        target,
	}
	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		out.Body = string(excerpt)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	return out, nil
}
