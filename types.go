// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import "context"

// Producer is the interface for the sending end of a channel.
//
// Producer is implemented by [*Sender]. Code that only needs to send can
// accept a Producer and be tested against a fake.
//
// Example:
//
//	func emit(ctx context.Context, out spsc.Producer[Event], evs []Event) error {
//	    for _, ev := range evs {
//	        if err := out.Send(ctx, ev); err != nil {
//	            return err
//	        }
//	    }
//	    out.Close()
//	    return nil
//	}
type Producer[T any] interface {
	// TrySend sends without waiting.
	// Returns nil, or a *SendError[T] wrapping ErrWouldBlock or ErrClosed.
	TrySend(item T) error

	// Send waits for space. Returns nil, a *SendError[T] wrapping
	// ErrClosed, or ctx.Err().
	Send(ctx context.Context, item T) error

	// Close closes the sending side. Idempotent.
	Close()
}

// Consumer is the interface for the receiving end of a channel.
//
// Consumer is implemented by [*Receiver].
type Consumer[T any] interface {
	// TryRecv receives without waiting.
	// Returns ErrWouldBlock while empty and open, ErrClosed once drained
	// after the sender closed.
	TryRecv() (T, error)

	// Recv waits for an item. Returns ErrClosed once drained after the
	// sender closed, or ctx.Err().
	Recv(ctx context.Context) (T, error)

	// Close closes the receiving side. Idempotent.
	Close()
}

// Poller is a suspended operation driven by an external scheduler.
//
// [*Sending] satisfies Poller[struct{}] through [Sending.Future]; the
// receive side is [*Receiving]'s Poll.
type Poller[R any] interface {
	// Poll advances the operation. While ready is false, w has been
	// registered and will be invoked when progress may be possible.
	Poll(w Waker) (result R, ready bool, err error)

	// Cancel abandons the operation without side effects.
	Cancel()
}

var (
	_ Producer[int]    = (*Sender[int])(nil)
	_ Consumer[int]    = (*Receiver[int])(nil)
	_ Poller[int]      = (*Receiving[int])(nil)
	_ Poller[struct{}] = sendFuture[int]{}
)
