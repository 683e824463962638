package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rafguns/doifetch"
	"golang.org/x/sync/errgroup"
)

// Resolver fans out one resolution task per DOI, runs the strategy chain for
// each, and commits successful outcomes to the store as tasks complete.
type Resolver struct {
	Strategies []doifetch.Strategy
	Store      doifetch.FulltextStore
	Logger     *slog.Logger
}

// Result holds the outcome of a batch resolution run.
type Result struct {
	Resolved int
	NoResult int
	Skipped  int
	Failed   int
}

// Total returns the number of DOIs considered, including skipped ones.
func (r *Result) Total() int {
	return r.Resolved + r.NoResult + r.Skipped + r.Failed
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	DOI       string
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressResolved
	ProgressNoResult
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting resolution progress. Events
// arrive in completion order, not submission order.
type ProgressFunc func(event ProgressEvent)

// resolveOutcome is the terminal state of one DOI's resolution task.
type resolveOutcome struct {
	doi      string
	fulltext *doifetch.Fulltext
	err      error
}

// ResolveBatch resolves every DOI not already recorded in the store. All
// tasks run concurrently; the per-host politeness gate is the only throttle.
// Each success is committed to the store as its task completes. A "no
// result" outcome is logged, never persisted.
func (r *Resolver) ResolveBatch(ctx context.Context, dois []string, progress ProgressFunc) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	existing, err := r.Store.ExistingDOIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading existing DOIs: %w", err)
	}

	result := &Result{}
	seen := make(map[string]struct{}, len(dois))
	var pending []string
	for _, doi := range dois {
		if _, ok := seen[doi]; ok {
			continue
		}
		seen[doi] = struct{}{}
		if _, ok := existing[doi]; ok {
			result.Skipped++
			continue
		}
		pending = append(pending, doi)
	}

	total := len(pending)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	outcomeCh := make(chan resolveOutcome, total)

	g, gctx := errgroup.WithContext(ctx)
	go func() {
		for _, doi := range pending {
			doi := doi
			g.Go(func() error {
				outcomeCh <- r.resolveOne(gctx, doi)
				return nil
			})
		}
		_ = g.Wait()
		close(outcomeCh)
	}()

	// Collect outcomes as tasks complete. Store writes happen here, on a
	// single goroutine, so the store sees one logical writer.
	var completed int
	for outcome := range outcomeCh {
		completed++

		switch {
		case outcome.err != nil:
			result.Failed++
			logger.Error("resolution failed", "doi", outcome.doi, "error", outcome.err)
			notify(progress, ProgressEvent{
				Type: ProgressFailed, Completed: completed, Total: total,
				DOI: outcome.doi, Error: outcome.err,
			})

		case outcome.fulltext == nil:
			result.NoResult++
			logger.Debug("no fulltext found", "doi", outcome.doi)
			notify(progress, ProgressEvent{
				Type: ProgressNoResult, Completed: completed, Total: total,
				DOI: outcome.doi,
			})

		default:
			if err := r.Store.Insert(ctx, outcome.fulltext); err != nil {
				result.Failed++
				logger.Error("failed to save fulltext", "doi", outcome.doi, "error", err)
				notify(progress, ProgressEvent{
					Type: ProgressFailed, Completed: completed, Total: total,
					DOI: outcome.doi, Error: err,
				})
				continue
			}
			result.Resolved++
			logger.Debug("saved fulltext", "doi", outcome.doi, "url", outcome.fulltext.URL)
			notify(progress, ProgressEvent{
				Type: ProgressResolved, Completed: completed, Total: total,
				DOI: outcome.doi, URL: outcome.fulltext.URL,
			})
		}
	}

	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: completed, Total: total})

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// resolveOne runs the strategy chain for a single DOI, short-circuiting at
// the first success.
func (r *Resolver) resolveOne(ctx context.Context, doi string) resolveOutcome {
	for _, strategy := range r.Strategies {
		ft, err := strategy.Resolve(ctx, doi)
		if err != nil {
			return resolveOutcome{doi: doi, err: err}
		}
		if ft != nil {
			return resolveOutcome{doi: doi, fulltext: ft}
		}
	}
	return resolveOutcome{doi: doi}
}

func notify(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}
