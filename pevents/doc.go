// Package pevents implements Win32-style synchronization events — manual-
// reset and auto-reset — on top of sync.Mutex and sync.Cond, along with a
// multi-event wait coordinator supporting wait-any and wait-all semantics
// with bounded timeouts.
//
// A single Event is a straightforward condition-variable pattern. The
// interesting part of this package is WaitForMultipleEvents: composing many
// independent Events into one coherent wait without deadlock, without lost
// wakeups, and without an auto-reset event's signal being stolen by the
// wrong waiter when both direct waiters and multi-wait aggregates are
// contending for it.
//
// The package deliberately does not support cross-process (named,
// kernel-object-style) events, external cancellation tokens, or fairness
// guarantees across waiters — see the design notes in this repository for
// why.
package pevents
