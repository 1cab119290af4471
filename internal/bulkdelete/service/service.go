package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"bulkdelete/internal/bulkdelete/client"
	"bulkdelete/internal/bulkdelete/input"
	"bulkdelete/internal/bulkdelete/model"

	"github.com/google/uuid"
)

// ResourceDeleter is the remote side of a run. *client.ResourceClient implements it.
type ResourceDeleter interface {
	Delete(ctx context.Context, id string) (*client.Response, error)
	URLFor(id string) string
}

// EmitFunc receives every result. Calls are never concurrent.
type EmitFunc func(model.Result) error

type Options struct {
	// Workers above 1 switch to the pooled scheduler.
	Workers int
	// Ordered makes the pooled scheduler emit results in input order.
	Ordered bool
	// ContinueOnUnauthorized keeps going after a 401 instead of halting.
	ContinueOnUnauthorized bool
	// AbortOnTransportError makes a transport failure end the run instead
	// of being reported as an other-error outcome.
	AbortOnTransportError bool
}

type Deleter struct {
	Client ResourceDeleter
	opts   Options
	logger *slog.Logger
}

func NewDeleter(c ResourceDeleter, opts Options, logger *slog.Logger) *Deleter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Deleter{Client: c, opts: opts, logger: logger}
}

// Classify maps an HTTP status to an outcome.
func Classify(status int) model.Outcome {
	switch status {
	case http.StatusOK:
		return model.OutcomeDeleted
	case http.StatusNotFound:
		return model.OutcomeNotFound
	case http.StatusUnauthorized:
		return model.OutcomeUnauthorized
	default:
		return model.OutcomeOtherError
	}
}

// DeleteAll reads identifiers from src until it is exhausted and deletes
// each one, passing every result to emit. Input errors, aborting transport
// errors, emit errors and cancellation end the run with that error; a 401
// ends it with model.ErrUnauthorizedHalt unless ContinueOnUnauthorized is set.
// The returned summary covers every result emitted before the run ended.
func (d *Deleter) DeleteAll(ctx context.Context, src input.Source, emit EmitFunc) (model.Summary, error) {
	start := time.Now()
	summary := model.Summary{RunID: uuid.NewString()}
	logger := d.logger.With("run_id", summary.RunID)

	logger.Info("Starting deletion run", "workers", d.opts.Workers, "ordered", d.opts.Ordered)

	var err error
	if d.opts.Workers > 1 {
		err = d.runPooled(ctx, src, emit, &summary, logger)
	} else {
		err = d.runSequential(ctx, src, emit, &summary, logger)
	}
	summary.Elapsed = time.Since(start)

	if err == nil && summary.Halted {
		err = model.ErrUnauthorizedHalt
	}

	attrs := []any{
		"total", summary.Total,
		"deleted", summary.Deleted,
		"not_found", summary.NotFound,
		"unauthorized", summary.Unauthorized,
		"other_errors", summary.OtherErrors,
		"halted", summary.Halted,
		"elapsed", summary.Elapsed.String(),
	}
	if err != nil {
		logger.Error("Deletion run ended early", append(attrs, "error", err)...)
	} else {
		logger.Info("Deletion run finished", attrs...)
	}
	return summary, err
}

func (d *Deleter) runSequential(ctx context.Context, src input.Source, emit EmitFunc, summary *model.Summary, logger *slog.Logger) error {
	for seq := 0; ; seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := d.deleteOne(ctx, seq, id, logger)
		if err != nil {
			return err
		}

		summary.Add(res)
		if err := emit(res); err != nil {
			return err
		}
		if d.halts(res) {
			summary.Halted = true
			logger.Warn("Endpoint rejected the bearer token, halting", "id", res.ID, "seq", res.Seq)
			return nil
		}
	}
}

// deleteOne performs and classifies a single delete. It only returns an
// error when the run must stop: cancellation or an aborting transport error.
func (d *Deleter) deleteOne(ctx context.Context, seq int, id string, logger *slog.Logger) (model.Result, error) {
	res := model.Result{Seq: seq, ID: id, URL: d.Client.URLFor(id)}

	resp, err := d.Client.Delete(ctx, id)
	if err != nil {
		if ctx.Err() != nil || d.opts.AbortOnTransportError {
			return res, err
		}
		var te *client.TransportError
		if errors.As(err, &te) {
			res.Attempts = te.Attempts
		}
		logger.Warn("Delete failed", "id", id, "url", res.URL, "attempts", res.Attempts, "error", err)
		res.Outcome = model.OutcomeOtherError
		res.Detail = err.Error()
		return res, nil
	}

	res.StatusCode = resp.StatusCode
	res.Attempts = resp.Attempts
	res.Outcome = Classify(resp.StatusCode)
	if res.Outcome == model.OutcomeOtherError {
		res.Detail = resp.Summary()
	}

	logger.Debug("Delete classified", "id", id, "url", res.URL, "status", resp.StatusCode, "outcome", res.Outcome.String())
	return res, nil
}

func (d *Deleter) halts(res model.Result) bool {
	return res.Outcome == model.OutcomeUnauthorized && !d.opts.ContinueOnUnauthorized
}
