// Package engine aggregates the two backend event sources into one
// in-memory store and answers per-day and per-month calendar queries
// against it. One Engine instance is bound to a screen's lifetime; it owns
// its store and month cache and shares nothing.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/event"
	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

const (
	// DefaultCooldown absorbs rapid repeated month navigation; it is not
	// rate limiting.
	DefaultCooldown = 3 * time.Second

	// DefaultBufferMonths is the prefetch buffer on each side of the
	// requested month.
	DefaultBufferMonths = 2

	// DefaultFetchLimit caps a single calendar-service query.
	DefaultFetchLimit = 200
)

// ErrAllSourcesFailed reports that neither source contributed anything to a
// fetch round. Partial failure is not an error.
var ErrAllSourcesFailed = errors.New("all event sources failed")

// Source supplies raw records from the two backends.
type Source interface {
	FetchPosts(ctx context.Context) ([]event.RawPostEvent, error)
	FetchCalendarEvents(ctx context.Context, start, end time.Time, limit int) ([]event.RawCalendarEvent, error)
}

// Options tune an Engine; zero values take package defaults.
type Options struct {
	Cooldown     time.Duration
	BufferMonths int
	FetchLimit   int
}

// Engine owns the unified event store and the month cache.
type Engine struct {
	mu sync.Mutex

	source Source
	logger *slog.Logger

	cooldown     time.Duration
	bufferMonths int
	fetchLimit   int

	store    []event.Unified
	cache    *monthCache
	filter   event.CategorySet
	fetching bool

	now func() time.Time
}

// New builds an Engine over the given source.
func New(source Source, logger *slog.Logger, opts Options) *Engine {
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.BufferMonths <= 0 {
		opts.BufferMonths = DefaultBufferMonths
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		source:       source,
		logger:       logger,
		cooldown:     opts.Cooldown,
		bufferMonths: opts.BufferMonths,
		fetchLimit:   opts.FetchLimit,
		cache:        newMonthCache(),
		now:          time.Now,
	}
}

// EnsureMonthLoaded makes sure the target month's bucket has data, fetching
// a buffered window from both sources when it does not. Requests are
// skipped when the bucket is already loaded (unless forced), when the
// cooldown has not elapsed, or when another fetch is in flight; skipped
// requests are dropped, never queued.
func (e *Engine) EnsureMonthLoaded(ctx context.Context, target timekey.MonthKey, force bool) error {
	e.mu.Lock()
	now := e.now()

	if e.fetching {
		e.mu.Unlock()
		e.logger.Debug("fetch already in flight, dropping request", "month", target.String())
		return nil
	}
	if !e.cache.needsFetch(target, force) {
		e.mu.Unlock()
		return nil
	}
	if !e.cache.cooldownAllows(target, now, e.cooldown, force) {
		e.mu.Unlock()
		e.logger.Debug("cooldown active, dropping request", "month", target.String())
		return nil
	}

	window := planWindow(target, e.bufferMonths)
	e.cache.markAttempt(target, now)
	e.fetching = true
	limit := e.fetchLimit
	e.mu.Unlock()

	incoming, fetchErr := e.fetchWindow(ctx, window, limit)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetching = false

	// Whatever arrived is merged even when the round failed overall; a
	// stale completion is still valid historical data.
	e.store = event.Merge(e.store, incoming)

	if fetchErr != nil {
		// Bucket left unmarked so the next request retries.
		return fetchErr
	}

	e.cache.recordLoaded(window, e.now())
	return nil
}

type sourceResult struct {
	events []event.Unified
	err    error
}

// fetchWindow runs both source fetches concurrently and normalizes their
// results. A failure in one source does not block the other; an error is
// returned only when any source failed, and the caller decides whether the
// window may be marked loaded.
func (e *Engine) fetchWindow(ctx context.Context, window Window, limit int) ([]event.Unified, error) {
	start, end := window.Bounds()

	var wg sync.WaitGroup
	var posts, calendar sourceResult

	wg.Add(2)
	go func() {
		defer wg.Done()
		raw, err := e.source.FetchPosts(ctx)
		if err != nil {
			posts.err = err
			return
		}
		for _, record := range raw {
			if unified, ok := event.NormalizePost(record); ok {
				posts.events = append(posts.events, unified)
			}
		}
	}()
	go func() {
		defer wg.Done()
		raw, err := e.source.FetchCalendarEvents(ctx, start, end, limit)
		if err != nil {
			calendar.err = err
			return
		}
		for _, record := range raw {
			if unified, ok := event.NormalizeCalendar(record); ok {
				calendar.events = append(calendar.events, unified)
			}
		}
	}()
	wg.Wait()

	if posts.err != nil {
		e.logger.Error("posts fetch failed", "window", window.From.String()+".."+window.To.String(), "error", posts.err)
	}
	if calendar.err != nil {
		e.logger.Error("calendar fetch failed", "window", window.From.String()+".."+window.To.String(), "error", calendar.err)
	}

	merged := make([]event.Unified, 0, len(posts.events)+len(calendar.events))
	merged = append(merged, posts.events...)
	merged = append(merged, calendar.events...)

	switch {
	case posts.err != nil && calendar.err != nil:
		return merged, ErrAllSourcesFailed
	case posts.err != nil:
		return merged, posts.err
	case calendar.err != nil:
		return merged, calendar.err
	default:
		e.logger.Info("window fetched",
			"window", window.From.String()+".."+window.To.String(),
			"posts", len(posts.events),
			"calendar", len(calendar.events))
		return merged, nil
	}
}

// SetCategoryFilter restricts all queries to the given categories. A nil
// slice means all categories.
func (e *Engine) SetCategoryFilter(categories []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = event.NewCategorySet(categories)
}

// Invalidate clears the loaded flags so every month is refetched on next
// request; already merged events are kept.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.invalidate()
}

// Reset discards all cached state. Used on session teardown, e.g. sign-out.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = nil
	e.cache = newMonthCache()
	e.filter = nil
	e.fetching = false
}

// Size reports the number of events in the unified store.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.store)
}

func (e *Engine) snapshotLocked() ([]event.Unified, event.CategorySet) {
	return e.store, e.filter
}
