package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Amund211/campaigncache/internal/logging"
)

var ErrQueryPanicked = errors.New("query panicked")

// Produces a fresh value for a refresh-ahead record.
//
// The context is detached from the cancellation of the request that triggered the
// refresh, since the result is shared by every caller of the record.
type Query[T any] func(ctx context.Context) (T, error)

type RecordOption func(*recordOptions)

type recordOptions struct {
	nowFunc func() time.Time
}

func WithNowFunc(nowFunc func() time.Time) RecordOption {
	return func(o *recordOptions) {
		o.nowFunc = nowFunc
	}
}

// A single refresh-ahead (stale-while-revalidate) cache entry.
//
// Once populated, accesses never wait for the query: stale responses are served while
// a refresh runs in the background. A refresh that has been in flight for longer than
// the policy's refresh timeout is considered hung and a new one is started.
type Record[T any] struct {
	name    string
	policy  Policy
	nowFunc func() time.Time

	mu          sync.Mutex
	response    T
	populated   bool
	lastSuccess time.Time
	lastAttempt time.Time
	// Incremented for every started refresh. Only the latest refresh may write the record.
	generation uint64
	inFlight   *refresh[T]
}

type refresh[T any] struct {
	generation uint64
	done       chan struct{}

	// Written before done is closed
	value T
	err   error
}

func NewRecord[T any](name string, policy Policy, opts ...RecordOption) *Record[T] {
	options := recordOptions{
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Record[T]{
		name:    name,
		policy:  policy,
		nowFunc: options.nowFunc,
	}
}

func (r *Record[T]) Name() string {
	return r.name
}

func (r *Record[T]) Policy() Policy {
	return r.policy
}

// Get the best currently available value for the record.
//
// Only blocks on query when the record has never been populated (or was reset). In
// that case an error from query (or ctx being cancelled) is returned. Otherwise the
// cached response is returned immediately and a refresh is started in the background
// when the response is stale and no healthy refresh is already in flight.
//
// onRefreshTimeout is called, in its own goroutine, when a hung refresh is superseded.
func (r *Record[T]) Access(ctx context.Context, query Query[T], onRefreshTimeout func()) (T, error) {
	now := r.nowFunc()

	r.mu.Lock()
	d := decide(r.stateLocked(), r.policy, now)

	var inFlight *refresh[T]
	if d.startsRefresh() {
		inFlight = r.startRefreshLocked(now)
	} else if d == decisionAwaitPopulate {
		inFlight = r.inFlight
	}
	response := r.response
	r.mu.Unlock()

	logger := logging.FromContext(ctx).With(slog.String("cache", r.name))
	logger.InfoContext(ctx, "Accessed refresh-ahead cache", "decision", d.String())
	recordAccess(ctx, r.name, d)

	if d.startsRefresh() {
		go r.runRefresh(context.WithoutCancel(ctx), inFlight, query)
	}

	if d.supersedesRefresh() {
		logger.WarnContext(ctx, "Refresh timed out, started a new one", "refreshTimeout", r.policy.refreshTimeout.String())
		notifyRefreshTimeout(ctx, logger, onRefreshTimeout)
	}

	if d.waitsForRefresh() {
		return r.await(ctx, inFlight)
	}

	return response, nil
}

// Return the record to the empty state, keeping its policy.
//
// A refresh in flight is not cancelled. If no newer refresh is started before it
// completes, it will populate the record again.
func (r *Record[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var empty T
	r.response = empty
	r.populated = false
	r.lastSuccess = time.Time{}
	r.lastAttempt = time.Time{}
	r.inFlight = nil
}

func (r *Record[T]) Status() RecordStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RecordStatus{
		Name:        r.name,
		Policy:      r.policy,
		Populated:   r.populated,
		Refreshing:  !r.lastAttempt.IsZero(),
		LastSuccess: r.lastSuccess,
		LastAttempt: r.lastAttempt,
	}
}

func (r *Record[T]) stateLocked() recordState {
	return recordState{
		populated:   r.populated,
		lastSuccess: r.lastSuccess,
		lastAttempt: r.lastAttempt,
	}
}

func (r *Record[T]) startRefreshLocked(now time.Time) *refresh[T] {
	r.generation++
	r.lastAttempt = now
	r.inFlight = &refresh[T]{
		generation: r.generation,
		done:       make(chan struct{}),
	}
	return r.inFlight
}

func (r *Record[T]) runRefresh(ctx context.Context, inFlight *refresh[T], query Query[T]) {
	start := time.Now()
	value, err := callQuery(ctx, query)
	duration := time.Since(start)

	r.mu.Lock()
	current := inFlight.generation == r.generation
	if current {
		if err == nil {
			r.response = value
			r.populated = true
			r.lastSuccess = r.nowFunc()
		}
		// On failure the previous response is kept and the next access may retry
		r.lastAttempt = time.Time{}
		r.inFlight = nil
	}
	r.mu.Unlock()

	inFlight.value = value
	inFlight.err = err
	close(inFlight.done)

	logger := logging.FromContext(ctx).With(
		slog.String("cache", r.name),
		slog.Uint64("generation", inFlight.generation),
		slog.Float64("durationSeconds", duration.Seconds()),
	)

	var result string
	switch {
	case !current:
		result = "superseded"
		logger.WarnContext(ctx, "Discarding result of superseded refresh", "failed", err != nil)
	case err != nil:
		result = "failure"
		logger.ErrorContext(ctx, "Refresh failed", "error", err.Error())
	default:
		result = "success"
		logger.InfoContext(ctx, "Refresh completed")
	}
	recordRefresh(ctx, r.name, result, duration)
}

func (r *Record[T]) await(ctx context.Context, inFlight *refresh[T]) (T, error) {
	var empty T

	select {
	case <-inFlight.done:
	case <-ctx.Done():
		return empty, fmt.Errorf("cache %s: stopped waiting for refresh: %w", r.name, ctx.Err())
	}

	if inFlight.err != nil {
		return empty, fmt.Errorf("cache %s: failed to populate: %w", r.name, inFlight.err)
	}

	return inFlight.value, nil
}

func callQuery[T any](ctx context.Context, query Query[T]) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrQueryPanicked, recovered)
		}
	}()

	return query(ctx)
}

func notifyRefreshTimeout(ctx context.Context, logger *slog.Logger, onRefreshTimeout func()) {
	if onRefreshTimeout == nil {
		return
	}

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.ErrorContext(ctx, "Refresh timeout callback panicked", "panic", fmt.Sprint(recovered))
			}
		}()
		onRefreshTimeout()
	}()
}
