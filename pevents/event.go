package pevents

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SniperPan/pevents/internal/condwait"
)

// Event is a manual-reset or auto-reset synchronization event, modeled on
// Win32's CreateEvent/SetEvent/ResetEvent/WaitForSingleObject family and
// implemented on sync.Mutex/sync.Cond.
//
// The zero Event is not usable; construct one with NewEvent.
type Event struct {
	id        uuid.UUID
	autoReset bool

	mu   sync.Mutex
	cond *sync.Cond

	state           bool
	registeredWaits []subscription

	spin *spinWaiter
}

// EventOption customizes a single Event at construction time, overriding
// the package-level defaults set by Configure.
type EventOption func(*eventOptions)

type eventOptions struct {
	spin *spinWaiter
}

// WithConfig applies cfg's spin-wait tuning to a single Event, independent
// of whatever Configure set globally.
func WithConfig(cfg *Config) EventOption {
	return func(o *eventOptions) {
		o.spin = newSpinWaiter(cfg.SpinWait)
	}
}

// NewEvent creates a new Event. If manualReset is false the event is
// auto-reset: a successful Wait (direct or via a multi-wait aggregate)
// consumes the signal. If initialState is true, the event starts signaled.
func NewEvent(manualReset, initialState bool, opts ...EventOption) (*Event, error) {
	o := eventOptions{spin: defaultSpin()}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Event{
		id:        uuid.New(),
		autoReset: !manualReset,
		spin:      o.spin,
	}
	e.cond = sync.NewCond(&e.mu)

	defaultRecorder.eventCreated()
	logDebug("event created", map[string]any{
		"event_id":      e.id,
		"auto_reset":    e.autoReset,
		"initial_state": initialState,
	})

	if initialState {
		if err := e.Set(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Close releases the event. The caller must ensure no goroutine is still
// waiting on it. Go's garbage collector reclaims the underlying mutex and
// condition variable on its own; Close exists for API parity with the
// source's DestroyEvent and to give ambient logging/metrics a lifecycle
// event to record.
func (e *Event) Close() error {
	defaultRecorder.eventClosed()
	logDebug("event closed", map[string]any{"event_id": e.id})
	return nil
}

// Set signals the event. For an auto-reset event this wakes at most one
// waiter -- the oldest subscribed multi-wait aggregate if any is
// registered, otherwise a single direct waiter blocked in Wait -- and the
// state returns to unsignaled as soon as that waiter is chosen. For a
// manual-reset event every current waiter, direct or aggregate, is woken
// and the state remains signaled until Reset.
func (e *Event) Set() error {
	e.mu.Lock()
	e.state = true
	defaultRecorder.setCalled(e.autoReset)

	if e.autoReset {
		return e.setAutoResetLocked()
	}
	return e.setManualResetLocked()
}

// setAutoResetLocked runs with e.mu held and e.state already set to true.
// It drains registeredWaits in FIFO order, reaping any aggregate that has
// already completed, until it finds a live subscriber to deliver to (in
// which case it returns immediately without touching e.cond, matching the
// source's preference for aggregates over direct waiters) or the list runs
// dry (in which case it wakes a single direct waiter instead).
func (e *Event) setAutoResetLocked() error {
	for len(e.registeredWaits) > 0 {
		sub := e.registeredWaits[0]
		e.registeredWaits = e.registeredWaits[1:]
		w := sub.waiter

		w.mu.Lock()
		w.refCount--
		if !w.stillWaiting {
			finished := w.refCount == 0
			if finished {
				w.finalizeLocked()
			}
			w.mu.Unlock()
			continue
		}

		e.state = false
		w.deliverLocked(sub.waitIndex)
		w.mu.Unlock()
		e.mu.Unlock()

		w.cond.Signal()
		logDebug("event delivered to aggregate", map[string]any{
			"event_id": e.id, "aggregate_id": w.id, "wait_index": sub.waitIndex,
		})
		return nil
	}

	// No live aggregate wanted it: leave the signal in state for a direct
	// waiter.
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

// setManualResetLocked runs with e.mu held and e.state already set to true.
// It notifies every registered aggregate (reaping the completed ones),
// clears the subscription list, then broadcasts to every direct waiter.
func (e *Event) setManualResetLocked() error {
	waiters := e.registeredWaits
	e.registeredWaits = nil

	for _, sub := range waiters {
		w := sub.waiter
		w.mu.Lock()
		w.refCount--
		if !w.stillWaiting {
			finished := w.refCount == 0
			if finished {
				w.finalizeLocked()
			}
			w.mu.Unlock()
			continue
		}
		w.deliverLocked(sub.waitIndex)
		w.mu.Unlock()
		w.cond.Signal()
	}

	e.mu.Unlock()
	e.cond.Broadcast()
	return nil
}

// Reset clears the event's signaled state. It never wakes anyone.
func (e *Event) Reset() error {
	e.mu.Lock()
	e.state = false
	e.mu.Unlock()
	return nil
}

// Wait blocks until the event is signaled or timeout elapses. Use Infinite
// for an unbounded wait and 0 for a non-blocking poll.
func (e *Event) Wait(timeout time.Duration) (Result, error) {
	start := time.Now()
	e.mu.Lock()
	result, err := e.waitLocked(timeout)
	e.mu.Unlock()
	defaultRecorder.waitObserved("single", result, time.Since(start))
	return result, err
}

// waitLocked implements the single-event wait algorithm assuming e.mu is
// already held. The multi-wait coordinator's Phase B does not call it; it
// uses waitLocked0 (see waitmulti.go), which never releases e.mu between
// the check and a subsequent subscribe.
func (e *Event) waitLocked(timeout time.Duration) (Result, error) {
	if e.consumeIfSignaledLocked() {
		return Success, nil
	}
	if timeout == 0 {
		return Timeout, nil
	}

	var deadline time.Time
	if timeout != Infinite {
		deadline = time.Now().Add(timeout)
	}

	for {
		// The spin front-end never applies to the timeout==0 path above, so
		// it is safe to release e.mu here: this call has no subscription
		// step to protect atomically, unlike Phase B's use of waitLocked0.
		e.mu.Unlock()
		spun := e.spin.trySpin(e.consumeIfSignaledUnlocked)
		e.mu.Lock()
		if spun {
			return Success, nil
		}
		// A Set() can land in the window between the Unlock above and this
		// Lock, signaling e.cond with nobody parked on it yet. Re-check the
		// predicate under e.mu before parking, or that signal is lost and
		// WaitUntil blocks (forever, for an Infinite wait) despite state
		// already being true.
		if e.consumeIfSignaledLocked() {
			return Success, nil
		}
		if e.deadlinePassed(deadline) {
			return Timeout, nil
		}

		condwait.WaitUntil(e.cond, deadline)

		if e.consumeIfSignaledLocked() {
			return Success, nil
		}
		if e.deadlinePassed(deadline) {
			return Timeout, nil
		}
	}
}

func (e *Event) deadlinePassed(deadline time.Time) bool {
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

// consumeIfSignaledLocked must be called with e.mu held.
func (e *Event) consumeIfSignaledLocked() bool {
	if e.state {
		if e.autoReset {
			e.state = false
		}
		return true
	}
	return false
}

func (e *Event) consumeIfSignaledUnlocked() bool {
	e.mu.Lock()
	ok := e.consumeIfSignaledLocked()
	e.mu.Unlock()
	return ok
}
