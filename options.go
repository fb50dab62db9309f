// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import "runtime"

// Options configures channel creation.
type Options[T any] struct {
	// Capacity (exact unless roundUp)
	capacity int
	roundUp  bool

	// Blocking strategy: spin with backoff instead of parking
	busyWait bool

	// Called once for each item still buffered at teardown
	discard func(T)
}

// Builder creates channels with fluent configuration.
//
// Example:
//
//	// Plain channel
//	tx, rx := spsc.New[Event](1024).Build()
//
//	// Release pooled buffers that were never received
//	tx, rx := spsc.New[*Buf](256).OnDiscard(pool.Put).Build()
//
//	// Latency mode: blocking calls spin instead of parking
//	tx, rx := spsc.New[Tick](4096).RoundUp().BusyWait().Build()
type Builder[T any] struct {
	opts Options[T]
}

// New creates a channel builder with the given capacity.
//
// Panics if capacity < 1 or capacity > [MaxCapacity]. A larger capacity
// cannot be represented by the packed positions and is a configuration
// error, not a runtime condition.
func New[T any](capacity int) *Builder[T] {
	if capacity < 1 {
		panic("spsc: capacity must be >= 1")
	}
	if capacity > MaxCapacity {
		panic("spsc: capacity exceeds MaxCapacity")
	}
	return &Builder[T]{opts: Options[T]{capacity: capacity}}
}

// RoundUp rounds the capacity up to the next power of 2.
// For example, capacity=1000 results in actual capacity=1024.
func (b *Builder[T]) RoundUp() *Builder[T] {
	b.opts.roundUp = true
	return b
}

// BusyWait makes [Sender.Send] and [Receiver.Recv] poll with adaptive
// backoff instead of parking on a wake-up. It trades CPU for wake latency
// and suits dedicated producer/consumer goroutines.
func (b *Builder[T]) BusyWait() *Builder[T] {
	b.opts.busyWait = true
	return b
}

// OnDiscard sets fn to be called for each item that was sent but never
// received, once both sides have closed. fn runs on the goroutine that
// completes the close, which may be a GC cleanup goroutine.
func (b *Builder[T]) OnDiscard(fn func(T)) *Builder[T] {
	b.opts.discard = fn
	return b
}

// Build creates the channel and returns its two ends.
func (b *Builder[T]) Build() (*Sender[T], *Receiver[T]) {
	n := b.opts.capacity
	if b.opts.roundUp {
		n = roundToPow2(n)
	}

	r := newRing(uint32(n), b.opts.discard, b.opts.busyWait)
	tx := newSender(r)
	rx := newReceiver(r)

	// Unreachable handles close their side.
	runtime.AddCleanup(tx, (*ring[T]).closeProducer, r)
	runtime.AddCleanup(rx, (*ring[T]).closeConsumer, r)
	return tx, rx
}

// Make creates a channel with the given capacity.
// Panics under the same conditions as [New].
//
// Example:
//
//	tx, rx := spsc.Make[int](2)
//	tx.TrySend(42)
//	v, _ := rx.TryRecv()
func Make[T any](capacity int) (*Sender[T], *Receiver[T]) {
	return New[T](capacity).Build()
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// noCopy may be embedded into structs which must not be copied after first
// use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
