package pevents

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoResetConsumesSignalExactlyOnce(t *testing.T) {
	e, err := NewEvent(false, false)
	require.NoError(t, err)

	require.NoError(t, e.Set())

	result, err := e.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, Success, result)

	result, err = e.Wait(0)
	require.NoError(t, err)
	assert.Equal(t, Timeout, result, "auto-reset event must clear its signal on the first successful wait")
}

func TestAutoResetWakesExactlyOneWaiter(t *testing.T) {
	e, err := NewEvent(false, false)
	require.NoError(t, err)

	const waiters = 8
	var successes int32
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			result, err := e.Wait(2 * time.Second)
			if err == nil && result == Success {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond) // let every goroutine reach Wait
	require.NoError(t, e.Set())
	wg.Wait()

	assert.EqualValues(t, 1, successes, "auto-reset Set must wake exactly one direct waiter")
}

func TestManualResetBroadcastsToAllWaiters(t *testing.T) {
	e, err := NewEvent(true, false)
	require.NoError(t, err)

	const waiters = 8
	var successes int32
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			result, err := e.Wait(2 * time.Second)
			if err == nil && result == Success {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, e.Set())
	wg.Wait()

	assert.EqualValues(t, waiters, successes, "manual-reset Set must wake every direct waiter")

	result, err := e.Wait(0)
	require.NoError(t, err)
	assert.Equal(t, Success, result, "manual-reset event stays signaled until Reset")
}

func TestManualResetClearsOnlyOnReset(t *testing.T) {
	e, err := NewEvent(true, true)
	require.NoError(t, err)

	result, err := e.Wait(0)
	require.NoError(t, err)
	assert.Equal(t, Success, result)

	require.NoError(t, e.Reset())

	result, err = e.Wait(0)
	require.NoError(t, err)
	assert.Equal(t, Timeout, result)
}

func TestWaitZeroTimeoutDoesNotBlock(t *testing.T) {
	e, err := NewEvent(false, false)
	require.NoError(t, err)

	start := time.Now()
	result, err := e.Wait(0)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, Timeout, result)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestWaitTimeoutIsMonotonicAndBounded(t *testing.T) {
	e, err := NewEvent(false, false)
	require.NoError(t, err)

	const budget = 80 * time.Millisecond
	start := time.Now()
	result, err := e.Wait(budget)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, Timeout, result)
	assert.GreaterOrEqual(t, elapsed, budget)
	assert.Less(t, elapsed, budget+500*time.Millisecond)
}

func TestWaitInfiniteUnblocksOnSet(t *testing.T) {
	e, err := NewEvent(false, false)
	require.NoError(t, err)

	resultCh := make(chan Result, 1)
	go func() {
		result, err := e.Wait(Infinite)
		require.NoError(t, err)
		resultCh <- result
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, e.Set())

	select {
	case result := <-resultCh:
		assert.Equal(t, Success, result)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait(Infinite) did not unblock after Set")
	}
}

// TestWaitInfiniteRacingSetNeverHangs guards against the lost-wakeup window
// between Wait's unlock for the spin attempt and its re-lock before parking
// on e.cond: if Set() lands in that window without a predicate re-check
// immediately after re-acquiring e.mu, the waiter parks on an already-true
// state and never wakes. Unlike TestWaitInfiniteUnblocksOnSet this starts
// Set() racing immediately, with no sleep to push the waiter into
// condwait.WaitUntil first.
func TestWaitInfiniteRacingSetNeverHangs(t *testing.T) {
	for i := 0; i < 200; i++ {
		e, err := NewEvent(false, false)
		require.NoError(t, err)

		resultCh := make(chan Result, 1)
		go func() {
			result, err := e.Wait(Infinite)
			require.NoError(t, err)
			resultCh <- result
		}()

		require.NoError(t, e.Set())

		select {
		case result := <-resultCh:
			assert.Equal(t, Success, result)
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: Wait(Infinite) hung on a racing Set", i)
		}
	}
}
