// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import (
	"context"
	"iter"

	"code.hybscloud.com/iox"
)

// Sender is the producing half of a channel.
//
// Exactly one goroutine may use a Sender at a time. A Sender must not be
// copied. If a Sender becomes unreachable without Close, the channel is
// closed on its behalf when the garbage collector reclaims it.
type Sender[T any] struct {
	_    noCopy
	r    *ring[T]
	done bool // closed locally, or the receiver was seen closed
	note *notifier
	reg  registration
}

func newSender[T any](r *ring[T]) *Sender[T] {
	tx := &Sender[T]{r: r, note: newNotifier()}
	tx.reg.w = tx.note
	return tx
}

// TrySend attempts to send item without waiting.
//
// Returns nil on success. On failure the returned *SendError[T] carries
// item back and unwraps to [ErrWouldBlock] when the channel is full or to
// [ErrClosed] when the receiver has closed.
func (tx *Sender[T]) TrySend(item T) error {
	if tx.done {
		return &SendError[T]{Item: item, err: ErrClosed}
	}
	err := tx.r.trySend(tx.r.load(), item)
	if err != nil {
		return tx.fail(item, err)
	}
	return nil
}

// Send sends item, waiting for space while the channel is full.
//
// Returns a *SendError[T] wrapping [ErrClosed] if the receiver closes,
// or ctx.Err() if ctx ends first. In both cases item was not sent.
func (tx *Sender[T]) Send(ctx context.Context, item T) error {
	if tx.done {
		return &SendError[T]{Item: item, err: ErrClosed}
	}
	if tx.r.busyWait {
		return tx.spinSend(ctx, item)
	}

	for waited := false; ; waited = true {
		ready, err := tx.r.pollSend(item, &tx.reg)
		if ready {
			if waited {
				tx.r.sendWake.cancel(&tx.reg)
			}
			if err != nil {
				return tx.fail(item, err)
			}
			return nil
		}
		select {
		case <-tx.note.ch:
		case <-ctx.Done():
			tx.r.sendWake.cancel(&tx.reg)
			return ctx.Err()
		}
	}
}

func (tx *Sender[T]) spinSend(ctx context.Context, item T) error {
	backoff := iox.Backoff{}
	for {
		err := tx.r.trySend(tx.r.load(), item)
		if err == nil {
			return nil
		}
		if err != ErrWouldBlock {
			return tx.fail(item, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		backoff.Wait()
	}
}

// SendAll sends every item of seq in order. It stops at the first error.
func (tx *Sender[T]) SendAll(ctx context.Context, seq iter.Seq[T]) error {
	for item := range seq {
		if err := tx.Send(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Sending returns a single send operation for item, to be completed either
// with [Sending.Now] or by polling with [Sending.Poll].
func (tx *Sender[T]) Sending(item T) *Sending[T] {
	return &Sending[T]{tx: tx, item: item}
}

// Close closes the sending side. Buffered items remain receivable.
// Close is idempotent.
func (tx *Sender[T]) Close() {
	tx.done = true
	tx.r.closeProducer()
}

func (tx *Sender[T]) fail(item T, err error) error {
	if err == ErrClosed {
		tx.done = true
	}
	return &SendError[T]{Item: item, err: err}
}

// Len returns the number of items currently buffered.
func (tx *Sender[T]) Len() int {
	return int(tx.r.load().len(tx.r.size))
}

// Cap returns the channel capacity.
func (tx *Sender[T]) Cap() int {
	return int(tx.r.size)
}

// IsFull reports whether the channel is at capacity.
func (tx *Sender[T]) IsFull() bool {
	return tx.r.load().full(tx.r.size)
}

// IsEmpty reports whether no items are buffered.
func (tx *Sender[T]) IsEmpty() bool {
	return tx.r.load().empty()
}

// IsClosed reports whether either side has closed.
func (tx *Sender[T]) IsClosed() bool {
	return tx.r.load().anyClosed()
}

// Sending is a pending send of one item.
//
// Lifecycle: created → polled (pending, waker registered) ... → resolved.
// Resolution happens exactly once, through Now, a ready Poll or Cancel.
// Using a resolved Sending panics.
type Sending[T any] struct {
	tx       *Sender[T]
	item     T
	reg      *registration
	resolved bool
}

// Now makes a single attempt without registering a waker.
// Results are those of [Sender.TrySend].
func (op *Sending[T]) Now() error {
	op.resolve()
	return op.tx.TrySend(op.item)
}

// Poll attempts the send. If the channel is full and the receiver is open,
// Poll registers w and returns ready == false; w is invoked when the send
// should be polled again. A ready Poll returns nil or a *SendError[T]
// wrapping [ErrClosed].
func (op *Sending[T]) Poll(w Waker) (ready bool, err error) {
	if op.resolved {
		panic("spsc: Sending polled after completion")
	}
	tx := op.tx
	if tx.done {
		op.resolve()
		return true, &SendError[T]{Item: op.item, err: ErrClosed}
	}

	reg := &registration{w: w}
	ready, err = tx.r.pollSend(op.item, reg)
	if !ready {
		op.reg = reg
		return false, nil
	}
	if op.reg != nil {
		tx.r.sendWake.cancel(op.reg)
		op.reg = nil
	}
	op.resolved = true
	if err != nil {
		return true, tx.fail(op.item, err)
	}
	return true, nil
}

// Cancel abandons the send. The item is not sent and any registered waker
// is withdrawn. Cancel on a resolved Sending does nothing.
func (op *Sending[T]) Cancel() {
	if op.resolved {
		return
	}
	op.resolve()
}

// Future adapts op to [Poller], so send and receive operations can be
// driven by the same scheduler code.
func (op *Sending[T]) Future() Poller[struct{}] {
	return sendFuture[T]{op}
}

// Item returns the item carried by op.
func (op *Sending[T]) Item() T {
	return op.item
}

func (op *Sending[T]) resolve() {
	if op.resolved {
		panic("spsc: Sending used after completion")
	}
	op.resolved = true
	if op.reg != nil {
		op.tx.r.sendWake.cancel(op.reg)
		op.reg = nil
	}
}

type sendFuture[T any] struct {
	op *Sending[T]
}

func (f sendFuture[T]) Poll(w Waker) (struct{}, bool, error) {
	ready, err := f.op.Poll(w)
	return struct{}{}, ready, err
}

func (f sendFuture[T]) Cancel() {
	f.op.Cancel()
}
