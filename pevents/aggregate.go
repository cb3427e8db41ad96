package pevents

import (
	"sync"

	"github.com/google/uuid"
)

// subscription is an event's record that a waitAggregate is interested in
// it. It is appended to Event.registeredWaits under Event.mu and read by
// signalers under the same lock.
type subscription struct {
	waiter    *waitAggregate
	waitIndex int
}

// waitAggregate is the reference-counted coordinator for one multi-wait
// invocation. One reference belongs to the waiting goroutine (WaitForMultipleEvents);
// one more is added per event the goroutine subscribed to in Phase B.
// Signalers that reach it through an event's subscription list drop a
// reference and finalize it if they bring refCount to zero.
type waitAggregate struct {
	id   uuid.UUID
	mu   sync.Mutex
	cond *sync.Cond

	waitAll      bool
	eventsLeft   int // valid when waitAll
	firedIndex   int // valid when !waitAll; -1 until some event fires
	stillWaiting bool
	refCount     int

	spin *spinWaiter
}

func newWaitAggregate(n int, waitAll bool, spin *spinWaiter) *waitAggregate {
	w := &waitAggregate{
		id:           uuid.New(),
		waitAll:      waitAll,
		stillWaiting: true,
		refCount:     1,
		firedIndex:   -1,
		spin:         spin,
	}
	if waitAll {
		w.eventsLeft = n
	}
	w.cond = sync.NewCond(&w.mu)
	defaultRecorder.aggregatesActive(1)
	logDebug("aggregate created", map[string]any{"aggregate_id": w.id, "wait_all": waitAll, "count": n})
	return w
}

// doneLocked reports whether the aggregate's status already satisfies its
// wait mode. w.mu must be held by the caller.
func (w *waitAggregate) doneLocked() bool {
	if w.waitAll {
		return w.eventsLeft == 0
	}
	return w.firedIndex >= 0
}

// deliverLocked applies one consumed event to the aggregate's status. w.mu
// must be held. It is called by signalers that reach a live subscription.
// It does not touch refCount; in wait-any mode it also clears stillWaiting,
// so later signalers leave the status alone.
func (w *waitAggregate) deliverLocked(waitIndex int) {
	if w.waitAll {
		w.eventsLeft--
	} else {
		w.firedIndex = waitIndex
		w.stillWaiting = false
	}
}

// finalizeLocked records that this aggregate is no longer referenced by any
// event subscription list or waiting goroutine. w.mu must be held by the
// caller, who remains responsible for unlocking it afterward.
//
// Go's garbage collector reclaims the struct once nothing points to it
// regardless of what this function does; finalizeLocked exists so the
// refcount protocol's "exactly one finalizer" invariant is an observable,
// testable event rather than an implicit consequence of memory management.
func (w *waitAggregate) finalizeLocked() {
	defaultRecorder.aggregatesActive(-1)
	logDebug("aggregate finalized", map[string]any{"aggregate_id": w.id})
	if onAggregateFinalized != nil {
		onAggregateFinalized(w.id)
	}
}

// onAggregateFinalized, when non-nil, is called by finalizeLocked every
// time an aggregate is finalized. It exists purely for tests that need to
// observe P5 (refcount soundness: finalization happens exactly once per
// aggregate) from outside the package-private waitAggregate type.
var onAggregateFinalized func(id uuid.UUID)
