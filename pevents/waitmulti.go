package pevents

import (
	"time"

	"github.com/SniperPan/pevents/internal/condwait"
)

// WaitForMultipleEvents blocks until every event in events has fired
// (waitAll) or until any one of them has (!waitAll), or until timeout
// elapses. On a wait-any Success, firedIndex is the index into events of
// the event that satisfied the wait; it is -1 for wait-all and for any
// non-Success result.
//
// The algorithm proceeds in four phases:
//
//  1. Create a waitAggregate holding one reference for this call.
//  2. Scan events left to right. An already-signaled event is consumed
//     immediately (atomically with the check, since each event's mutex is
//     held across the check); an unsignaled one gets a subscription added
//     to it, and the aggregate gains a reference for that subscription.
//  3. If not already satisfied, block on the aggregate's condition
//     variable until a signaler completes it or the deadline passes.
//  4. Mark the aggregate as no longer being waited on, drop this call's
//     reference, and finalize the aggregate if that was the last one.
func WaitForMultipleEvents(events []*Event, waitAll bool, timeout time.Duration) (result Result, firedIndex int, err error) {
	if len(events) == 0 {
		return Timeout, -1, ErrInvalidArgument
	}
	for _, e := range events {
		if e == nil {
			return Timeout, -1, ErrInvalidArgument
		}
	}

	start := time.Now()
	mode := "any"
	if waitAll {
		mode = "all"
	}

	w := newWaitAggregate(len(events), waitAll, defaultSpin())
	w.mu.Lock()

	done := scanAndSubscribe(w, events, waitAll)

	if !done {
		done = blockOnAggregate(w, timeout)
	}

	firedIndex = w.firedIndex
	w.stillWaiting = false

	w.refCount--
	if w.refCount == 0 {
		w.finalizeLocked()
	}
	w.mu.Unlock()

	result = Timeout
	if done {
		result = Success
	}
	if result != Success {
		firedIndex = -1
	}

	defaultRecorder.waitObserved(mode, result, time.Since(start))
	logDebug("multi-wait completed", map[string]any{
		"aggregate_id": w.id, "mode": mode, "result": result.String(), "fired_index": firedIndex,
	})
	return result, firedIndex, nil
}

// scanAndSubscribe runs Phase B: it must be called with w.mu held and
// returns true if the wait is already satisfied (wait-any found a signaled
// event, or wait-all consumed every event during the scan).
func scanAndSubscribe(w *waitAggregate, events []*Event, waitAll bool) bool {
	for i, e := range events {
		e.mu.Lock()
		acquired := e.waitLocked0()
		if acquired {
			e.mu.Unlock()
			if waitAll {
				w.eventsLeft--
			} else {
				w.firedIndex = i
				return true
			}
			continue
		}

		e.registeredWaits = append(e.registeredWaits, subscription{waiter: w, waitIndex: i})
		w.refCount++
		e.mu.Unlock()
	}
	return w.doneLocked()
}

// blockOnAggregate runs Phase C: it must be called with w.mu held, and
// returns whether the aggregate reached its done condition before timeout
// elapsed.
func blockOnAggregate(w *waitAggregate, timeout time.Duration) bool {
	if w.doneLocked() {
		return true
	}
	if timeout == 0 {
		return false
	}

	var deadline time.Time
	if timeout != Infinite {
		deadline = time.Now().Add(timeout)
	}

	for {
		w.mu.Unlock()
		spun := w.spin.trySpin(func() bool {
			w.mu.Lock()
			ok := w.doneLocked()
			w.mu.Unlock()
			return ok
		})
		w.mu.Lock()
		if spun || w.doneLocked() {
			return true
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return false
		}

		condwait.WaitUntil(w.cond, deadline)

		if w.doneLocked() {
			return true
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return false
		}
	}
}

// waitLocked0 is the "unlocked" (already-locked-by-caller) zero-timeout try
// collaborator described in the design notes: it must be called with e.mu
// held and never releases it. It is the same algorithm as Event.waitLocked
// with timeout fixed at zero, kept as its own method so the multi-wait
// coordinator's dependency on it is explicit and easy to audit against the
// event-before-aggregate lock order (I7).
func (e *Event) waitLocked0() bool {
	return e.consumeIfSignaledLocked()
}

// WaitAny is WaitForMultipleEvents with waitAll fixed to false.
func WaitAny(events []*Event, timeout time.Duration) (Result, int, error) {
	return WaitForMultipleEvents(events, false, timeout)
}

// WaitAll is WaitForMultipleEvents with waitAll fixed to true, discarding
// the meaningless firedIndex.
func WaitAll(events []*Event, timeout time.Duration) (Result, error) {
	result, _, err := WaitForMultipleEvents(events, true, timeout)
	return result, err
}
