package pevents

import (
	"runtime"
	"sync/atomic"
)

// spinWaiter implements an adaptive spin-wait front-end, adapted from the
// teacher's shared-memory queue spin strategy, used to shortcut a blocking
// condition-variable wait when a signal is expected imminently. It never
// changes which goroutine wins a race for a signal: every condition check
// re-acquires the same lock the blocking path uses, so there is no second,
// lock-free view of mutable state to get out of sync with the first.
type spinWaiter struct {
	currentLimit int32
	minSpin      int32
	maxSpin      int32
	incStep      int32
	decStep      int32
}

// disabledSpinWaiter's trySpin always returns false without ever calling
// condition, so it costs nothing beyond the pointer comparison.
var disabledSpinWaiter = &spinWaiter{}

func newSpinWaiter(cfg SpinConfig) *spinWaiter {
	if !cfg.Enabled {
		return disabledSpinWaiter
	}
	minSpin := cfg.MinSpin
	if minSpin <= 0 {
		minSpin = 64
	}
	maxSpin := cfg.MaxSpin
	if maxSpin < minSpin {
		maxSpin = minSpin * 8
	}
	return &spinWaiter{
		currentLimit: minSpin,
		minSpin:      minSpin,
		maxSpin:      maxSpin,
		incStep:      max32(1, (maxSpin-minSpin)/8),
		decStep:      max32(1, (maxSpin-minSpin)/16),
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// trySpin calls condition up to the current adaptive limit, yielding the
// processor periodically, and reports whether it observed true. Callers own
// whatever locking condition needs; trySpin holds nothing across calls.
func (w *spinWaiter) trySpin(condition func() bool) bool {
	if w == disabledSpinWaiter {
		return false
	}

	limit := int(atomic.LoadInt32(&w.currentLimit))
	for i := 0; i < limit; i++ {
		if condition() {
			w.reward(limit)
			return true
		}
		if i&0x3F == 0 {
			runtime.Gosched()
		}
	}
	w.punish(limit)
	return false
}

func (w *spinWaiter) reward(limit int) {
	newLimit := limit + int(w.incStep)
	if newLimit > int(w.maxSpin) {
		newLimit = int(w.maxSpin)
	}
	atomic.StoreInt32(&w.currentLimit, int32(newLimit))
}

func (w *spinWaiter) punish(limit int) {
	newLimit := limit - int(w.decStep)
	if newLimit < int(w.minSpin) {
		newLimit = int(w.minSpin)
	}
	atomic.StoreInt32(&w.currentLimit, int32(newLimit))
}
