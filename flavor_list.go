// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import "code.hybscloud.com/spin"

// listQueue is the unbounded backend: a slice queue under a spin lock.
// The channel's closed flag is flipped under mu so that a value is never
// pushed after a receiver observed closed-and-empty.
type listQueue[T any] struct {
	mu    spin.Lock
	items []T
	head  int
}

func (q *listQueue[T]) nonEmpty() bool {
	q.mu.Lock()
	n := len(q.items) - q.head
	q.mu.Unlock()
	return n > 0
}

func (c *channel[T]) listSend(v T) error {
	q := c.list
	q.mu.Lock()
	if c.isClosed() {
		q.mu.Unlock()
		return ErrDisconnected
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	c.receivers.notifyOne()
	return nil
}

func (c *channel[T]) listRecv() (T, error) {
	q := c.list
	q.mu.Lock()
	if q.head == len(q.items) {
		closed := c.isClosed()
		q.mu.Unlock()
		var zero T
		if closed {
			return zero, ErrDisconnected
		}
		return zero, ErrEmpty
	}
	var zero T
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head >= 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.mu.Unlock()
	return v, nil
}
