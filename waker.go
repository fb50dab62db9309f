// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import "sync/atomic"

// Waker requests that a suspended operation be polled again.
//
// A Waker is stored by a pending [Sending] or [Receiving] and invoked at
// most once per registration, from whichever goroutine changed the channel
// state. Wake must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the [Waker] interface.
type WakerFunc func()

// Wake calls f().
func (f WakerFunc) Wake() { f() }

// registration is the unit stored in a wake cell. Identity matters:
// cancel only removes the registration it installed.
type registration struct {
	w Waker
}

// wakeCell holds the most recent waiter for one side of the channel.
//
// At most one waiter exists per side, so a new registration may overwrite
// a stale one without losing a wake-up.
type wakeCell struct {
	p atomic.Pointer[registration]
}

func (c *wakeCell) register(r *registration) {
	c.p.Store(r)
}

// cancel withdraws r if it is still registered.
func (c *wakeCell) cancel(r *registration) {
	c.p.CompareAndSwap(r, nil)
}

// wake takes the registered waiter, if any, and fires it once.
func (c *wakeCell) wake() {
	if c.p.Load() == nil {
		return
	}
	if r := c.p.Swap(nil); r != nil {
		r.w.Wake()
	}
}

func (c *wakeCell) clear() {
	c.p.Store(nil)
}

// notifier parks one goroutine until woken. The one-slot buffer keeps a
// wake-up that arrives before the goroutine starts waiting.
type notifier struct {
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{}, 1)}
}

func (n *notifier) Wake() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}
