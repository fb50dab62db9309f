// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package spsc provides a bounded single-producer single-consumer channel
// backed by a ring buffer.
//
// A channel has exactly one [Sender] and one [Receiver]. Each end can be
// used from plain goroutine code (blocking with a context, or trying once)
// and from poll-based schedulers through [Sending] and [Receiving].
//
// # Quick Start
//
//	tx, rx := spsc.Make[Event](1024)
//
//	go func() { // Producer
//	    defer tx.Close()
//	    for ev := range source {
//	        if err := tx.Send(ctx, ev); err != nil {
//	            return // receiver closed or ctx done
//	        }
//	    }
//	}()
//
//	for ev := range rx.All(ctx) { // Consumer
//	    handle(ev)
//	}
//
// # Operations
//
// Every operation comes in two forms:
//
//	tx.TrySend(v)      // single attempt, never waits
//	tx.Send(ctx, v)    // waits for space
//	rx.TryRecv()       // single attempt, never waits
//	rx.Recv(ctx)       // waits for an item
//
// TrySend reports a full channel as a *SendError[T] that unwraps to
// [ErrWouldBlock] and carries the item back. TryRecv reports an empty
// channel as [ErrWouldBlock]. Both are control flow signals, not failures:
//
//	v, err := rx.TryRecv()
//	switch {
//	case err == nil:
//	    handle(v)
//	case spsc.IsWouldBlock(err):
//	    // nothing yet
//	case spsc.IsClosed(err):
//	    // sender closed and channel drained
//	}
//
// # Closing
//
// Either side may Close; Close is idempotent. A handle that becomes
// unreachable is closed when the garbage collector reclaims it.
//
//   - After the receiver closes, sends fail with [ErrClosed] at once.
//   - After the sender closes, the receiver still gets every buffered item
//     and only then observes [ErrClosed].
//
// Items that were sent but never received are passed to the hook set with
// [Builder.OnDiscard] once both sides have closed.
//
// # Poll-based Operation
//
// [Sender.Sending] and [Receiver.Receiving] return suspended operations for
// schedulers that drive tasks by polling:
//
//	op := rx.Receiving()
//	v, ready, err := op.Poll(waker)
//	if !ready {
//	    // waker.Wake() will be called when an item arrives or the
//	    // sender closes; poll op again then.
//	}
//
// A poll first tries the fast path. If the channel is full (or empty) it
// registers the waker and tries once more, so a wake-up racing with the
// registration is never lost. Each side holds at most one registration;
// a new one replaces the old. Spurious wake-ups are possible and harmless.
// [Await] drives any [Poller] to completion on the calling goroutine.
//
// # State Word
//
// Both positions and both closed flags live in one 64-bit word updated
// only by compare-and-swap:
//
//	bit  63      consumer closed
//	bits 62..32  consumer position
//	bit  31      producer closed
//	bits 30..0   producer position
//
// Positions wrap at twice the capacity and index slots modulo the
// capacity, which tells full from empty without a spare slot. Capacity is
// limited to [MaxCapacity] (2^30) and need not be a power of 2.
//
// # Thread Safety
//
// One goroutine may send and one goroutine may receive concurrently. Using
// either end from more than one goroutine at a time is undefined behavior.
//
// # Race Detection
//
// Slot contents are published through acquire-release operations on the
// state word ([code.hybscloud.com/atomix]). The race detector cannot observe
// that ordering and may report false positives for concurrent use.
// Concurrent tests are excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package spsc
