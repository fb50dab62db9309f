// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For sends: the channel is full and the receiver is still open.
// For receives: the channel is empty and the sender is still open.
//
// ErrWouldBlock is a control flow signal, not a failure. An empty channel
// is an expected transient condition; [IsNonFailure] reports true for it.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed indicates the peer has closed the channel.
//
// Senders observe ErrClosed as soon as the receiver closes. Receivers
// observe ErrClosed only after every item sent before closure has been
// received.
var ErrClosed = errors.New("spsc: channel closed")

// SendError is returned by send operations that did not transfer the item.
// The item is handed back to the caller in Item.
//
// Unwrap yields [ErrWouldBlock] (channel full) or [ErrClosed].
type SendError[T any] struct {
	Item T
	err  error
}

func (e *SendError[T]) Error() string {
	if e.err == ErrClosed {
		return "spsc: send on closed channel"
	}
	return "spsc: send on full channel"
}

func (e *SendError[T]) Unwrap() error {
	return e.err
}

// Full reports whether the send failed because the channel was at capacity.
func (e *SendError[T]) Full() bool {
	return e.err != ErrClosed
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// IsClosed reports whether err indicates the peer closed the channel.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
