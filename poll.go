// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import "context"

// Await drives p to completion on the calling goroutine, parking between
// polls until p's waker fires or ctx ends. On ctx end p is cancelled and
// ctx.Err() is returned.
//
// Await is the bridge between the poll-based operations and plain
// goroutine code:
//
//	v, err := spsc.Await(ctx, rx.Receiving())
func Await[R any](ctx context.Context, p Poller[R]) (R, error) {
	n := newNotifier()
	for {
		res, ready, err := p.Poll(n)
		if ready {
			return res, err
		}
		select {
		case <-n.ch:
		case <-ctx.Done():
			p.Cancel()
			var zero R
			return zero, ctx.Err()
		}
	}
}
