package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "contactvault/pkg/domain-errors"
)

// Batch limits for remote submission. Chunks are capped at MaxBatchSize
// items and consecutive chunks are spaced at least MinChunkSpacing apart,
// measured from chunk start so the wait overlaps the request in flight.
const (
	MaxBatchSize    = 10
	MinChunkSpacing = time.Second
)

// DefaultStageConcurrency bounds the in-flight crypto operations of a
// transform stage.
const DefaultStageConcurrency = 4

// Failure records one item's terminal error, keyed by its index in the
// original input regardless of where in the run it failed.
type Failure struct {
	Index int
	Stage Stage
	Err   error
}

// Result partitions the input of a settled run: every original index appears
// exactly once, either in Succeeded or as a Failure.
type Result struct {
	Succeeded []int
	Failures  []Failure
}

// Record merges stage outcomes into the result. failures maps original
// index to error.
func (r *Result) Record(stage Stage, failures map[int]error) {
	for idx, err := range failures {
		r.Failures = append(r.Failures, Failure{Index: idx, Stage: stage, Err: err})
	}
}

// Finish computes the succeeded set and orders failures by original index.
func (r *Result) Finish(total int) {
	failed := make(map[int]bool, len(r.Failures))
	for _, f := range r.Failures {
		failed[f.Index] = true
	}
	for i := 0; i < total; i++ {
		if !failed[i] {
			r.Succeeded = append(r.Succeeded, i)
		}
	}
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Index < r.Failures[j].Index })
}

// Item carries a value through stages with its original input index.
type Item[T any] struct {
	Index int
	Value T
}

// Items wraps the input values with their original indices.
func Items[T any](values []T) []Item[T] {
	out := make([]Item[T], len(values))
	for i, v := range values {
		out[i] = Item[T]{Index: i, Value: v}
	}
	return out
}

// MapStage applies fn to every item with bounded concurrency. Failures are
// recorded against the item's original index and the item drops out of the
// survivor set; there are no retries. Results are written at disjoint index
// slots, so workers share no mutable state besides the tracker. Once ctx is
// cancelled no new item starts; items already started run to completion and
// their results are kept.
func MapStage[In, Out any](
	ctx context.Context,
	stage Stage,
	tracker *Tracker,
	items []Item[In],
	concurrency int,
	fn func(context.Context, In) (Out, error),
) ([]Item[Out], map[int]error, error) {
	tracker.Apply(func(p Progress) Progress { return p.Begin(stage, len(items)) })

	if concurrency <= 0 {
		concurrency = DefaultStageConcurrency
	}

	outs := make([]*Item[Out], len(items))
	errs := make([]error, len(items))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i := range items {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			out, err := fn(ctx, items[i].Value)
			if err != nil {
				errs[i] = err
				tracker.Apply(func(p Progress) Progress { return p.Step(stage, true) })
				return nil
			}
			outs[i] = &Item[Out]{Index: items[i].Index, Value: out}
			tracker.Apply(func(p Progress) Progress { return p.Step(stage, false) })
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeCancelled, "stage cancelled")
	}

	failures := make(map[int]error)
	var survivors []Item[Out]
	for i := range items {
		switch {
		case errs[i] != nil:
			failures[items[i].Index] = errs[i]
		case outs[i] != nil:
			survivors = append(survivors, *outs[i])
		}
	}
	return survivors, failures, nil
}

// SubmitFunc submits one chunk and returns a per-chunk-position error slice
// (nil entries for accepted items). A non-nil error fails the whole chunk.
type SubmitFunc[T any] func(ctx context.Context, chunk []T) ([]error, error)

// SubmitStage sends the survivors to the store in fixed-size chunks with
// enforced minimum spacing. Cancellation is checked before each chunk; a
// chunk already in flight completes so the store never sees a half-applied
// chunk, but no further chunks start afterwards.
func SubmitStage[T any](
	ctx context.Context,
	stage Stage,
	tracker *Tracker,
	items []Item[T],
	submit SubmitFunc[T],
) (map[int]error, error) {
	tracker.Apply(func(p Progress) Progress { return p.Begin(stage, len(items)) })

	failures := make(map[int]error)

	for start := 0; start < len(items); start += MaxBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCancelled, "submission cancelled")
		}

		end := min(start+MaxBatchSize, len(items))
		chunk := items[start:end]

		values := make([]T, len(chunk))
		for i, it := range chunk {
			values[i] = it.Value
		}

		chunkStart := time.Now()
		itemErrs, err := submit(ctx, values)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, dErrors.Wrap(err, dErrors.CodeCancelled, "submission cancelled")
			}
			for _, it := range chunk {
				failures[it.Index] = err
				tracker.Apply(func(p Progress) Progress { return p.Step(stage, true) })
			}
		} else {
			for i, it := range chunk {
				var itemErr error
				if i < len(itemErrs) {
					itemErr = itemErrs[i]
				}
				if itemErr != nil {
					failures[it.Index] = itemErr
				}
				tracker.Apply(func(p Progress) Progress { return p.Step(stage, itemErr != nil) })
			}
		}

		// Rate-limit spacing overlaps the in-flight request: only the
		// remainder of the window is awaited here.
		if end < len(items) {
			if remaining := MinChunkSpacing - time.Since(chunkStart); remaining > 0 {
				select {
				case <-time.After(remaining):
				case <-ctx.Done():
					return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeCancelled, "submission cancelled")
				}
			}
		}
	}

	return failures, nil
}
