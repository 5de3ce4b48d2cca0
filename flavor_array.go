// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// decrement is the two's complement of 1 for atomix.Uint32.Add.
const decrement = ^uint32(0)

// arrayQueue is the bounded backend. Storage is a lock-free MPMC queue
// from lfq, whose capacity rounds up to a power of two; used counts
// reserved slots and enforces the exact requested capacity.
//
// A sender reserves a slot before enqueueing and a receiver releases it
// after dequeueing, so the lfq ring is never asked to hold more than
// capacity values.
type arrayQueue[T any] struct {
	q        lfq.Queue[T]
	capacity uint32
	used     atomix.Uint32
}

func newArrayQueue[T any](capacity int) *arrayQueue[T] {
	// lfq requires at least 2 slots.
	n := max(capacity, 2)
	return &arrayQueue[T]{q: lfq.NewMPMC[T](n), capacity: uint32(capacity)}
}

// drain lets receivers empty the ring after the channel closed. lfq's
// livelock threshold is otherwise only reset by enqueues, which have stopped.
func (a *arrayQueue[T]) drain() {
	if d, ok := a.q.(lfq.Drainer); ok {
		d.Drain()
	}
}

func (a *arrayQueue[T]) hasRoom() bool {
	return a.used.Load() < a.capacity
}

func (a *arrayQueue[T]) nonEmpty() bool {
	return a.used.Load() > 0
}

// arraySend sends v. A failed reservation reports ErrFull at once; an
// enqueue that loses a race after a successful reservation is retried,
// paced by b when given.
func (c *channel[T]) arraySend(v T, b *backoff) error {
	if c.isClosed() {
		return ErrDisconnected
	}
	a := c.array
	if a.used.Add(1) > a.capacity {
		a.used.Add(decrement)
		return ErrFull
	}
	var local backoff
	if b == nil {
		local = newBackoff(defaultSpinLimit, defaultYieldLimit)
		b = &local
	}
	for a.q.Enqueue(&v) != nil {
		b.spin()
	}
	c.receivers.notifyOne()
	return nil
}

// arrayRecv receives one value. With b, a dequeue that misses while slots
// are reserved is retried until b's spin budget is spent, covering a sender
// that reserved but has not yet enqueued.
func (c *channel[T]) arrayRecv(b *backoff) (T, error) {
	a := c.array
	for {
		v, err := a.q.Dequeue()
		if err == nil {
			a.used.Add(decrement)
			c.senders.notifyOne()
			return v, nil
		}
		if b == nil || !a.nonEmpty() || !b.canSpin() {
			break
		}
		b.spin()
	}
	var zero T
	if c.isClosed() && !a.nonEmpty() {
		return zero, ErrDisconnected
	}
	return zero, ErrEmpty
}
