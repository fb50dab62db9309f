// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

// State word layout (one uint64, mutated only by CAS):
//
//	bit  63      consumer closed
//	bits 62..32  consumer position, mod 2*cap
//	bit  31      producer closed
//	bits 30..0   producer position, mod 2*cap
//
// Positions wrap at twice the capacity and index slots modulo the
// capacity. Full (len == cap) and empty (len == 0) are then distinct
// without reserving a slot, and each position needs only one bit more
// than the slot index.
const (
	halfBits = 32

	closedBit = 1 << (halfBits - 1)
	posMask   = closedBit - 1

	producerClosedBit = uint64(closedBit)
	consumerClosedBit = uint64(closedBit) << halfBits
	anyClosedBits     = producerClosedBit | consumerClosedBit

	// MaxCapacity is the largest capacity the state word can represent.
	// Positions run up to 2*MaxCapacity-1 and must fit below the closed bit.
	MaxCapacity = 1 << (halfBits - 2)
)

// maxCapacityFor returns the largest capacity a state word of the given
// width supports: two positions and two closed flags share the word.
func maxCapacityFor(wordBits uint) uint64 {
	return 1 << (wordBits/2 - 2)
}

type state uint64

func (s state) producerPos() uint32 { return uint32(s) & posMask }

func (s state) consumerPos() uint32 { return uint32(s>>halfBits) & posMask }

func (s state) producerClosed() bool { return uint64(s)&producerClosedBit != 0 }

func (s state) consumerClosed() bool { return uint64(s)&consumerClosedBit != 0 }

func (s state) anyClosed() bool { return uint64(s)&anyClosedBits != 0 }

func (s state) bothClosed() bool { return uint64(s)&anyClosedBits == anyClosedBits }

// len returns the number of published, unconsumed items.
func (s state) len(size uint32) uint32 {
	p, c := s.producerPos(), s.consumerPos()
	if p >= c {
		return p - c
	}
	return 2*size - c + p
}

func (s state) empty() bool { return s.producerPos() == s.consumerPos() }

func (s state) full(size uint32) bool { return s.len(size) == size }

// advance returns pos+by wrapped at 2*size. by must not exceed size.
func advance(pos, by, size uint32) uint32 {
	pos += by
	if pos >= 2*size {
		pos -= 2 * size
	}
	return pos
}

func (s state) withProducerPos(pos uint32) state {
	return state(uint64(s)&^posMask | uint64(pos))
}

func (s state) withConsumerPos(pos uint32) state {
	return state(uint64(s)&^(uint64(posMask)<<halfBits) | uint64(pos)<<halfBits)
}
