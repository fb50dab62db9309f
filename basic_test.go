// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"code.hybscloud.com/spsc"
)

// =============================================================================
// Round Trips
// =============================================================================

// TestRoundTripCapacityTwo fills a capacity-2 channel, hits the full
// condition and drains in order.
func TestRoundTripCapacityTwo(t *testing.T) {
	tx, rx := spsc.Make[int](2)
	ctx := context.Background()

	if err := tx.Send(ctx, 42); err != nil {
		t.Fatalf("Send(42): %v", err)
	}
	if err := tx.Send(ctx, 420); err != nil {
		t.Fatalf("Send(420): %v", err)
	}

	err := tx.Sending(7).Now()
	var se *spsc.SendError[int]
	if !errors.As(err, &se) || se.Item != 7 || !se.Full() {
		t.Fatalf("Sending(7).Now on full: got %v, want Full(7)", err)
	}
	if !spsc.IsWouldBlock(err) {
		t.Fatalf("IsWouldBlock(%v): got false", err)
	}

	for _, want := range []int{42, 420} {
		v, err := rx.Recv(ctx)
		if err != nil || v != want {
			t.Fatalf("Recv: got (%d, %v), want (%d, nil)", v, err, want)
		}
	}
	if err := tx.Send(ctx, 7); err != nil {
		t.Fatalf("Send(7): %v", err)
	}
	if v, err := rx.Recv(ctx); err != nil || v != 7 {
		t.Fatalf("Recv: got (%d, %v), want (7, nil)", v, err)
	}
}

func TestTrySendTryRecv(t *testing.T) {
	tx, rx := spsc.Make[int](2)

	if err := tx.TrySend(42); err != nil {
		t.Fatalf("TrySend(42): %v", err)
	}
	if err := tx.TrySend(420); err != nil {
		t.Fatalf("TrySend(420): %v", err)
	}
	if err := tx.TrySend(7); !errors.Is(err, spsc.ErrWouldBlock) {
		t.Fatalf("TrySend on full: got %v, want ErrWouldBlock", err)
	}

	if v, err := rx.Receiving().Now(); err != nil || v != 42 {
		t.Fatalf("Receiving.Now: got (%d, %v), want (42, nil)", v, err)
	}
	if v, err := rx.TryRecv(); err != nil || v != 420 {
		t.Fatalf("TryRecv: got (%d, %v), want (420, nil)", v, err)
	}

	// Empty and open: no item yet, not a failure
	_, err := rx.TryRecv()
	if !errors.Is(err, spsc.ErrWouldBlock) {
		t.Fatalf("TryRecv on empty: got %v, want ErrWouldBlock", err)
	}
	if !spsc.IsNonFailure(err) {
		t.Fatalf("IsNonFailure(%v): got false", err)
	}

	if err := tx.TrySend(7); err != nil {
		t.Fatalf("TrySend(7): %v", err)
	}
	if v, err := rx.TryRecv(); err != nil || v != 7 {
		t.Fatalf("TryRecv: got (%d, %v), want (7, nil)", v, err)
	}
}

// TestFIFOWraparound cycles far past 2*capacity with varying fill levels.
func TestFIFOWraparound(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 7, 8} {
		tx, rx := spsc.Make[int](capacity)
		next, want := 0, 0
		for round := range 50 {
			fill := round%capacity + 1
			for range fill {
				if err := tx.TrySend(next); err != nil {
					t.Fatalf("cap %d round %d: TrySend(%d): %v", capacity, round, next, err)
				}
				next++
			}
			if tx.Len() != fill {
				t.Fatalf("cap %d round %d: Len got %d, want %d", capacity, round, tx.Len(), fill)
			}
			for range fill {
				v, err := rx.TryRecv()
				if err != nil {
					t.Fatalf("cap %d round %d: TryRecv: %v", capacity, round, err)
				}
				if v != want {
					t.Fatalf("cap %d round %d: got %d, want %d", capacity, round, v, want)
				}
				want++
			}
			if !rx.IsEmpty() {
				t.Fatalf("cap %d round %d: not empty after drain", capacity, round)
			}
		}
	}
}

// TestLenTracksOutstanding checks 0 <= Len <= Cap and Len == sent - received
// over an irregular operation sequence.
func TestLenTracksOutstanding(t *testing.T) {
	const capacity = 5
	tx, rx := spsc.Make[int](capacity)
	outstanding := 0
	ops := "sssrsssssrrrsrsrrrrrssssssrr"
	for i, op := range ops {
		switch op {
		case 's':
			err := tx.TrySend(i)
			if outstanding == capacity {
				if !spsc.IsWouldBlock(err) {
					t.Fatalf("op %d: TrySend on full: got %v", i, err)
				}
			} else {
				if err != nil {
					t.Fatalf("op %d: TrySend: %v", i, err)
				}
				outstanding++
			}
		case 'r':
			_, err := rx.TryRecv()
			if outstanding == 0 {
				if !spsc.IsWouldBlock(err) {
					t.Fatalf("op %d: TryRecv on empty: got %v", i, err)
				}
			} else {
				if err != nil {
					t.Fatalf("op %d: TryRecv: %v", i, err)
				}
				outstanding--
			}
		}
		if rx.Len() != outstanding || tx.Len() != outstanding {
			t.Fatalf("op %d: Len got (%d, %d), want %d", i, tx.Len(), rx.Len(), outstanding)
		}
		if tx.IsFull() != (outstanding == capacity) {
			t.Fatalf("op %d: IsFull got %v", i, tx.IsFull())
		}
	}
}

// =============================================================================
// Close Semantics
// =============================================================================

func TestCloseThenDrain(t *testing.T) {
	tx, rx := spsc.Make[int](1)
	ctx := context.Background()

	if err := tx.Send(ctx, 1); err != nil {
		t.Fatalf("Send(1): %v", err)
	}
	tx.Close()

	if !rx.IsClosed() {
		t.Fatal("IsClosed: got false after sender Close")
	}
	if v, err := rx.Recv(ctx); err != nil || v != 1 {
		t.Fatalf("Recv: got (%d, %v), want (1, nil)", v, err)
	}
	if _, err := rx.Recv(ctx); !errors.Is(err, spsc.ErrClosed) {
		t.Fatalf("Recv after drain: got %v, want ErrClosed", err)
	}
	if _, err := rx.TryRecv(); !spsc.IsClosed(err) {
		t.Fatalf("TryRecv after drain: got %v, want ErrClosed", err)
	}
}

func TestSendAfterReceiverClosed(t *testing.T) {
	tx, rx := spsc.Make[int](1)
	rx.Close()

	err := tx.Sending(5).Now()
	var se *spsc.SendError[int]
	if !errors.As(err, &se) || se.Item != 5 || se.Full() {
		t.Fatalf("Sending(5).Now: got %v, want Closed(5)", err)
	}
	if !errors.Is(err, spsc.ErrClosed) {
		t.Fatalf("errors.Is(%v, ErrClosed): got false", err)
	}

	// Closed is sticky on the sender.
	if err := tx.Send(context.Background(), 6); !spsc.IsClosed(err) {
		t.Fatalf("Send after close: got %v, want ErrClosed", err)
	}
}

// TestSendClosedEvenWithSpace: a closed receiver fails sends although
// capacity remains.
func TestSendClosedEvenWithSpace(t *testing.T) {
	tx, rx := spsc.Make[string](8)
	if err := tx.TrySend("a"); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	rx.Close()
	if err := tx.TrySend("b"); !spsc.IsClosed(err) {
		t.Fatalf("TrySend: got %v, want ErrClosed", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	tx, rx := spsc.Make[int](2)
	tx.Close()
	tx.Close()
	rx.Close()
	rx.Close()
	tx.Close()

	if err := tx.TrySend(1); !spsc.IsClosed(err) {
		t.Fatalf("TrySend: got %v, want ErrClosed", err)
	}
	if _, err := rx.TryRecv(); !spsc.IsClosed(err) {
		t.Fatalf("TryRecv: got %v, want ErrClosed", err)
	}
}

func TestReceiverClosedOwnSide(t *testing.T) {
	tx, rx := spsc.Make[int](2)
	if err := tx.TrySend(1); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	rx.Close()
	if _, err := rx.TryRecv(); !spsc.IsClosed(err) {
		t.Fatalf("TryRecv on closed receiver: got %v, want ErrClosed", err)
	}
	if _, err := rx.Recv(context.Background()); !spsc.IsClosed(err) {
		t.Fatalf("Recv on closed receiver: got %v, want ErrClosed", err)
	}
}

// =============================================================================
// Discard Hook
// =============================================================================

func TestDiscardUnreceivedItems(t *testing.T) {
	tests := []struct {
		name  string
		close func(tx *spsc.Sender[int], rx *spsc.Receiver[int])
	}{
		{"SenderFirst", func(tx *spsc.Sender[int], rx *spsc.Receiver[int]) { tx.Close(); rx.Close() }},
		{"ReceiverFirst", func(tx *spsc.Sender[int], rx *spsc.Receiver[int]) { rx.Close(); tx.Close() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var discarded []int
			tx, rx := spsc.New[int](4).OnDiscard(func(v int) { discarded = append(discarded, v) }).Build()

			for i := range 4 {
				if err := tx.TrySend(i); err != nil {
					t.Fatalf("TrySend(%d): %v", i, err)
				}
			}
			if v, err := rx.TryRecv(); err != nil || v != 0 {
				t.Fatalf("TryRecv: got (%d, %v), want (0, nil)", v, err)
			}

			tt.close(tx, rx)
			tt.close(tx, rx)

			if !slices.Equal(discarded, []int{1, 2, 3}) {
				t.Fatalf("discarded: got %v, want [1 2 3]", discarded)
			}
		})
	}
}

// TestRejectedSendNotDiscarded: an item refused by TrySend stays with the
// caller and never reaches the discard hook.
func TestRejectedSendNotDiscarded(t *testing.T) {
	discarded := 0
	tx, rx := spsc.New[int](1).OnDiscard(func(int) { discarded++ }).Build()
	rx.Close()
	if err := tx.TrySend(1); !spsc.IsClosed(err) {
		t.Fatalf("TrySend: got %v, want ErrClosed", err)
	}
	tx.Close()
	if discarded != 0 {
		t.Fatalf("discarded: got %d, want 0", discarded)
	}
}

// =============================================================================
// Batch and Iteration
// =============================================================================

func TestTryRecvBatch(t *testing.T) {
	tx, rx := spsc.Make[int](4)
	dst := make([]int, 3)

	if _, err := rx.TryRecvBatch(dst); !spsc.IsWouldBlock(err) {
		t.Fatalf("TryRecvBatch on empty: got %v, want ErrWouldBlock", err)
	}

	// Wrap the ring so the batch straddles the end of the slot array.
	for i := range 3 {
		tx.TrySend(i)
		rx.TryRecv()
	}
	for i := range 4 {
		if err := tx.TrySend(10 + i); err != nil {
			t.Fatalf("TrySend: %v", err)
		}
	}

	n, err := rx.TryRecvBatch(dst)
	if err != nil || n != 3 || !slices.Equal(dst, []int{10, 11, 12}) {
		t.Fatalf("TryRecvBatch: got (%d, %v, %v), want (3, nil, [10 11 12])", n, err, dst)
	}
	if rx.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", rx.Len())
	}

	tx.Close()
	n, err = rx.TryRecvBatch(dst)
	if err != nil || n != 1 || dst[0] != 13 {
		t.Fatalf("TryRecvBatch: got (%d, %v, %v), want (1, nil, [13 ...])", n, err, dst)
	}
	if _, err := rx.TryRecvBatch(dst); !spsc.IsClosed(err) {
		t.Fatalf("TryRecvBatch after drain: got %v, want ErrClosed", err)
	}
}

func TestSendAllAndAll(t *testing.T) {
	tx, rx := spsc.Make[int](8)
	ctx := context.Background()

	if err := tx.SendAll(ctx, slices.Values([]int{1, 2, 3, 4, 5})); err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	tx.Close()

	got := slices.Collect(rx.All(ctx))
	if !slices.Equal(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("All: got %v", got)
	}
}

// =============================================================================
// Construction
// =============================================================================

func TestCapacity(t *testing.T) {
	tx, rx := spsc.Make[int](3)
	if tx.Cap() != 3 || rx.Cap() != 3 {
		t.Fatalf("Cap: got (%d, %d), want 3", tx.Cap(), rx.Cap())
	}

	tx2, _ := spsc.New[int](1000).RoundUp().Build()
	if tx2.Cap() != 1024 {
		t.Fatalf("RoundUp Cap: got %d, want 1024", tx2.Cap())
	}
}

func TestPanicOnInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, spsc.MaxCapacity + 1} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Fatalf("expected panic for capacity %d", capacity)
				}
			}()
			spsc.Make[int](capacity)
		}()
	}
}

func TestPollAfterCompletionPanics(t *testing.T) {
	tx, rx := spsc.Make[int](1)

	send := tx.Sending(1)
	if err := send.Now(); err != nil {
		t.Fatalf("Now: %v", err)
	}
	recv := rx.Receiving()
	if _, _, err := recv.Poll(spsc.WakerFunc(func() {})); err != nil {
		t.Fatalf("Poll: %v", err)
	}

	tests := []struct {
		name string
		fn   func()
	}{
		{"SendingPoll", func() { send.Poll(spsc.WakerFunc(func() {})) }},
		{"SendingNow", func() { send.Now() }},
		{"ReceivingPoll", func() { recv.Poll(spsc.WakerFunc(func() {})) }},
		{"ReceivingNow", func() { recv.Now() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("expected panic")
				}
			}()
			tt.fn()
		})
	}

	// Cancel after completion is a no-op.
	send.Cancel()
	recv.Cancel()
}
