// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ring is the storage shared by one Sender and one Receiver.
//
// A slot holds a live item iff its index lies in [consumer, producer)
// modulo size. There is no per-slot flag: the producer writes a vacant
// slot and then publishes it by advancing the producer position (release),
// the consumer observes the position (acquire), moves the item out and
// vacates the slot by advancing the consumer position.
//
// Vacant slots always hold the zero value so the GC does not retain
// references to consumed items.
type ring[T any] struct {
	_        pad
	state    atomix.Uint64
	_        pad
	sendWake wakeCell // producer waiting for space
	recvWake wakeCell // consumer waiting for items
	_        pad
	slots    []T
	size     uint32
	busyWait bool
	discard  func(T)
}

func newRing[T any](size uint32, discard func(T), busyWait bool) *ring[T] {
	return &ring[T]{
		slots:    make([]T, size),
		size:     size,
		busyWait: busyWait,
		discard:  discard,
	}
}

func (r *ring[T]) load() state {
	return state(r.state.LoadAcquire())
}

// loadFence is used for the recheck after registering a waiter.
// The wake cell store must not be reordered after this load.
func (r *ring[T]) loadFence() state {
	return state(r.state.Load())
}

func (r *ring[T]) index(pos uint32) uint32 {
	if pos >= r.size {
		return pos - r.size
	}
	return pos
}

// trySend makes one attempt to publish item against the observed state s.
// Returns nil, ErrWouldBlock or ErrClosed.
func (r *ring[T]) trySend(s state, item T) error {
	if s.anyClosed() {
		return ErrClosed
	}
	if s.full(r.size) {
		return ErrWouldBlock
	}

	pos := s.producerPos()
	idx := r.index(pos)
	r.slots[idx] = item
	next := advance(pos, 1, r.size)

	// The consumer may move its position or close concurrently; the
	// producer position only changes here.
	sw := spin.Wait{}
	for !r.state.CompareAndSwapAcqRel(uint64(s), uint64(s.withProducerPos(next))) {
		sw.Once()
		s = r.load()
		if s.consumerClosed() {
			var zero T
			r.slots[idx] = zero
			return ErrClosed
		}
	}

	r.recvWake.wake()
	return nil
}

// tryRecv makes one attempt to take the oldest item against the observed
// state s. Returns ErrWouldBlock while empty and open, ErrClosed once
// empty and the producer has closed.
func (r *ring[T]) tryRecv(s state) (T, error) {
	var zero T
	if s.consumerClosed() {
		return zero, ErrClosed
	}
	if s.empty() {
		if s.producerClosed() {
			return zero, ErrClosed
		}
		return zero, ErrWouldBlock
	}

	pos := s.consumerPos()
	idx := r.index(pos)
	item := r.slots[idx]
	r.slots[idx] = zero
	r.commitConsumer(s, advance(pos, 1, r.size))

	r.sendWake.wake()
	return item, nil
}

// tryRecvBatch moves up to len(dst) published items into dst and releases
// their slots with a single position update.
func (r *ring[T]) tryRecvBatch(dst []T) (int, error) {
	s := r.load()
	if s.consumerClosed() {
		return 0, ErrClosed
	}
	n := min(uint32(min(len(dst), MaxCapacity)), s.len(r.size))
	if n == 0 {
		if len(dst) > 0 && s.producerClosed() {
			return 0, ErrClosed
		}
		return 0, ErrWouldBlock
	}

	var zero T
	pos := s.consumerPos()
	for i := range n {
		idx := r.index(advance(pos, i, r.size))
		dst[i] = r.slots[idx]
		r.slots[idx] = zero
	}
	r.commitConsumer(s, advance(pos, n, r.size))

	r.sendWake.wake()
	return int(n), nil
}

// commitConsumer stores the new consumer position. The producer may
// advance or close concurrently, so the CAS is retried against fresh
// state; the consumer position itself only changes here.
func (r *ring[T]) commitConsumer(s state, next uint32) {
	sw := spin.Wait{}
	for !r.state.CompareAndSwapAcqRel(uint64(s), uint64(s.withConsumerPos(next))) {
		sw.Once()
		s = r.load()
	}
}

// pollSend runs the suspend protocol for one send attempt: fast path,
// register, recheck. ready is false only when reg remains installed in
// the send wake cell.
func (r *ring[T]) pollSend(item T, reg *registration) (ready bool, err error) {
	err = r.trySend(r.load(), item)
	if err != ErrWouldBlock {
		return true, err
	}

	r.sendWake.register(reg)
	err = r.trySend(r.loadFence(), item)
	if err == ErrWouldBlock {
		return false, nil
	}
	r.sendWake.cancel(reg)
	return true, err
}

// pollRecv is the receive-side mirror of pollSend.
func (r *ring[T]) pollRecv(reg *registration) (item T, ready bool, err error) {
	item, err = r.tryRecv(r.load())
	if err != ErrWouldBlock {
		return item, true, err
	}

	r.recvWake.register(reg)
	item, err = r.tryRecv(r.loadFence())
	if err == ErrWouldBlock {
		return item, false, nil
	}
	r.recvWake.cancel(reg)
	return item, true, err
}

func (r *ring[T]) closeProducer() {
	r.close(producerClosedBit, &r.recvWake)
}

func (r *ring[T]) closeConsumer() {
	r.close(consumerClosedBit, &r.sendWake)
}

// close sets one closed flag. The call that closes the second side tears
// the ring down; otherwise the peer is woken so it can observe the flag.
func (r *ring[T]) close(bit uint64, peer *wakeCell) {
	sw := spin.Wait{}
	for {
		s := r.load()
		if uint64(s)&bit != 0 {
			return
		}
		next := state(uint64(s) | bit)
		if r.state.CompareAndSwapAcqRel(uint64(s), uint64(next)) {
			if next.bothClosed() {
				r.teardown(next)
			} else {
				peer.wake()
			}
			return
		}
		sw.Once()
	}
}

// teardown releases every item still in flight. Both sides are closed, so
// nothing else touches the slots.
func (r *ring[T]) teardown(s state) {
	r.sendWake.clear()
	r.recvWake.clear()

	var zero T
	for pos, end := s.consumerPos(), s.producerPos(); pos != end; pos = advance(pos, 1, r.size) {
		idx := r.index(pos)
		item := r.slots[idx]
		r.slots[idx] = zero
		if r.discard != nil {
			r.discard(item)
		}
	}
}
