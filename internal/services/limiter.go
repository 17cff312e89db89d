package services

import (
	"context"
	"sync"
	"time"
)

// acquireMargin pads every rate-limit wait so the upstream window has
// definitely moved on before the next request is attempted.
const acquireMargin = 100 * time.Millisecond

// RequestWindow enforces a sliding-window budget of outbound requests:
// at most max requests within any trailing window.
//
// One instance is shared by everything that talks to the Discogs API, so the
// budget holds process-wide regardless of how many resolutions run. The
// timestamp log is mutex-guarded; it is never persisted and resets on restart.
type RequestWindow struct {
	mu       sync.Mutex
	requests []time.Time
	max      int
	window   time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRequestWindow creates a RequestWindow allowing max requests per window.
func NewRequestWindow(max int, window time.Duration) *RequestWindow {
	return &RequestWindow{
		max:    max,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// NewDiscogsWindow returns the window sized for the Discogs API policy of
// 60 requests per minute.
func NewDiscogsWindow() *RequestWindow {
	return NewRequestWindow(60, time.Minute)
}

// Acquire blocks until issuing a request would not exceed the budget, then
// records the request time and returns.
//
// The quota check is re-evaluated after every wait rather than assumed
// satisfied. Cancelling the context aborts the wait with ctx.Err() and
// records nothing.
func (w *RequestWindow) Acquire(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := w.now()
		w.prune(now)

		if len(w.requests) < w.max {
			w.requests = append(w.requests, now)
			w.mu.Unlock()
			return nil
		}

		oldest := w.requests[0]
		wait := w.window - now.Sub(oldest) + acquireMargin
		w.mu.Unlock()

		if wait <= 0 {
			continue
		}

		if err := w.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InFlight returns how many requests currently count against the window.
func (w *RequestWindow) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.now())
	return len(w.requests)
}

// prune drops timestamps older than the trailing window. Caller holds the lock.
func (w *RequestWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	kept := w.requests[:0]
	for _, t := range w.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.requests = kept
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
