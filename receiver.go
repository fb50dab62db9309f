// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import (
	"context"
	"iter"

	"code.hybscloud.com/iox"
)

// Receiver is the consuming half of a channel.
//
// Exactly one goroutine may use a Receiver at a time. A Receiver must not
// be copied. If a Receiver becomes unreachable without Close, the channel
// is closed on its behalf when the garbage collector reclaims it.
type Receiver[T any] struct {
	_    noCopy
	r    *ring[T]
	note *notifier
	reg  registration
}

func newReceiver[T any](r *ring[T]) *Receiver[T] {
	rx := &Receiver[T]{r: r, note: newNotifier()}
	rx.reg.w = rx.note
	return rx
}

// TryRecv attempts to receive an item without waiting.
//
// Returns [ErrWouldBlock] while the channel is empty and the sender open.
// That is a non-failure: the caller should retry later. Returns
// [ErrClosed] once the sender has closed and every buffered item has been
// received, or after the Receiver itself was closed.
func (rx *Receiver[T]) TryRecv() (T, error) {
	return rx.r.tryRecv(rx.r.load())
}

// TryRecvBatch moves every immediately available item, up to len(dst),
// into dst and returns the count. Errors are those of [Receiver.TryRecv]
// and are only reported when no item was moved.
func (rx *Receiver[T]) TryRecvBatch(dst []T) (int, error) {
	return rx.r.tryRecvBatch(dst)
}

// Recv receives an item, waiting while the channel is empty.
//
// Returns [ErrClosed] once the sender has closed and the channel is
// drained, or ctx.Err() if ctx ends first. A cancelled Recv consumes
// nothing.
func (rx *Receiver[T]) Recv(ctx context.Context) (T, error) {
	if rx.r.busyWait {
		return rx.spinRecv(ctx)
	}

	for waited := false; ; waited = true {
		item, ready, err := rx.r.pollRecv(&rx.reg)
		if ready {
			if waited {
				rx.r.recvWake.cancel(&rx.reg)
			}
			return item, err
		}
		select {
		case <-rx.note.ch:
		case <-ctx.Done():
			rx.r.recvWake.cancel(&rx.reg)
			var zero T
			return zero, ctx.Err()
		}
	}
}

func (rx *Receiver[T]) spinRecv(ctx context.Context) (T, error) {
	backoff := iox.Backoff{}
	for {
		item, err := rx.r.tryRecv(rx.r.load())
		if err != ErrWouldBlock {
			return item, err
		}
		if err := ctx.Err(); err != nil {
			return item, err
		}
		backoff.Wait()
	}
}

// All returns an iterator over received items. Iteration ends when the
// channel is closed and drained, or when ctx ends; check ctx.Err() to
// tell the two apart.
func (rx *Receiver[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, err := rx.Recv(ctx)
			if err != nil || !yield(item) {
				return
			}
		}
	}
}

// Receiving returns a single receive operation, to be completed either
// with [Receiving.Now] or by polling with [Receiving.Poll].
func (rx *Receiver[T]) Receiving() *Receiving[T] {
	return &Receiving[T]{rx: rx}
}

// Close closes the receiving side. The sender observes [ErrClosed] from
// then on. Items still buffered are released when the sender also closes.
// Close is idempotent.
func (rx *Receiver[T]) Close() {
	rx.r.closeConsumer()
}

// Len returns the number of items currently buffered.
func (rx *Receiver[T]) Len() int {
	return int(rx.r.load().len(rx.r.size))
}

// Cap returns the channel capacity.
func (rx *Receiver[T]) Cap() int {
	return int(rx.r.size)
}

// IsFull reports whether the channel is at capacity.
func (rx *Receiver[T]) IsFull() bool {
	return rx.r.load().full(rx.r.size)
}

// IsEmpty reports whether no items are buffered.
func (rx *Receiver[T]) IsEmpty() bool {
	return rx.r.load().empty()
}

// IsClosed reports whether either side has closed.
func (rx *Receiver[T]) IsClosed() bool {
	return rx.r.load().anyClosed()
}

// Receiving is a pending receive of one item. It follows the same
// lifecycle as [Sending].
type Receiving[T any] struct {
	rx       *Receiver[T]
	reg      *registration
	resolved bool
}

// Now makes a single attempt without registering a waker.
// Results are those of [Receiver.TryRecv].
func (op *Receiving[T]) Now() (T, error) {
	op.resolve()
	return op.rx.TryRecv()
}

// Poll attempts the receive. If the channel is empty and the sender is
// open, Poll registers w and returns ready == false. A ready Poll returns
// the item or [ErrClosed].
func (op *Receiving[T]) Poll(w Waker) (item T, ready bool, err error) {
	if op.resolved {
		panic("spsc: Receiving polled after completion")
	}
	r := op.rx.r

	reg := &registration{w: w}
	item, ready, err = r.pollRecv(reg)
	if !ready {
		op.reg = reg
		return item, false, nil
	}
	if op.reg != nil {
		r.recvWake.cancel(op.reg)
		op.reg = nil
	}
	op.resolved = true
	return item, true, err
}

// Cancel abandons the receive. Nothing is consumed and any registered
// waker is withdrawn. Cancel on a resolved Receiving does nothing.
func (op *Receiving[T]) Cancel() {
	if op.resolved {
		return
	}
	op.resolve()
}

func (op *Receiving[T]) resolve() {
	if op.resolved {
		panic("spsc: Receiving used after completion")
	}
	op.resolved = true
	if op.reg != nil {
		op.rx.r.recvWake.cancel(op.reg)
		op.reg = nil
	}
}
