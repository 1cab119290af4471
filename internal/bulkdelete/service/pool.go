package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"bulkdelete/internal/bulkdelete/input"
	"bulkdelete/internal/bulkdelete/model"

	"golang.org/x/sync/errgroup"
)

type job struct {
	seq int
	id  string
}

// runPooled fans identifiers out to a fixed number of workers. One goroutine
// reads the source, the workers delete, and the calling goroutine collects
// results and emits them, re-sequenced when Ordered is set.
//
// A halt stops dispatch: jobs already taken by a worker finish and are
// reported, queued jobs are dropped.
func (d *Deleter) runPooled(ctx context.Context, src input.Source, emit EmitFunc, summary *model.Summary, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	dispatchCtx, stopDispatch := context.WithCancel(gctx)
	defer stopDispatch()

	jobs := make(chan job, d.opts.Workers)
	results := make(chan model.Result, d.opts.Workers)

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; ; seq++ {
			id, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case jobs <- job{seq: seq, id: id}:
			case <-dispatchCtx.Done():
				return nil
			}
		}
	})

	var workers sync.WaitGroup
	for i := 0; i < d.opts.Workers; i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for j := range jobs {
				if dispatchCtx.Err() != nil {
					continue
				}
				res, err := d.deleteOne(gctx, j.seq, j.id, logger)
				if err != nil {
					return err
				}
				if d.halts(res) {
					stopDispatch()
				}
				results <- res
			}
			return nil
		})
	}

	go func() {
		workers.Wait()
		close(results)
	}()

	var emitErr error
	deliver := func(res model.Result) {
		if emitErr != nil {
			return
		}
		summary.Add(res)
		if err := emit(res); err != nil {
			emitErr = err
			stopDispatch()
			return
		}
		if d.halts(res) && !summary.Halted {
			summary.Halted = true
			logger.Warn("Endpoint rejected the bearer token, halting", "id", res.ID, "seq", res.Seq)
		}
	}

	pending := make(map[int]model.Result)
	next := 0
	for res := range results {
		if !d.opts.Ordered {
			deliver(res)
			continue
		}
		pending[res.Seq] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			deliver(r)
			next++
		}
	}

	// Dropped jobs leave gaps in the sequence; flush what is left in order.
	if len(pending) > 0 {
		seqs := make([]int, 0, len(pending))
		for seq := range pending {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)
		for _, seq := range seqs {
			deliver(pending[seq])
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if emitErr != nil {
		return emitErr
	}
	return ctx.Err()
}
