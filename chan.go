// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Flavor is the backend of a channel.
type Flavor uint8

const (
	// FlavorList is an unbounded queue. Sends never block.
	FlavorList Flavor = iota
	// FlavorArray is a bounded ring buffer.
	FlavorArray
	// FlavorZero is a zero-capacity rendezvous channel.
	FlavorZero
)

func (f Flavor) String() string {
	switch f {
	case FlavorList:
		return "list"
	case FlavorArray:
		return "array"
	case FlavorZero:
		return "zero"
	}
	return "unknown"
}

// channel is the state shared by one Sender and one Receiver.
// Exactly one of list and array is set for the buffered flavors.
type channel[T any] struct {
	flavor Flavor
	closed atomix.Uint32
	list   *listQueue[T]
	array  *arrayQueue[T]

	// senders holds blocked senders (array) or send promises (zero).
	senders waitList
	// receivers holds blocked receivers (list, array) or receive promises (zero).
	receivers waitList
}

// Sender is the sending handle of a channel.
type Sender[T any] struct {
	ch *channel[T]
	id ID
}

// Receiver is the receiving handle of a channel.
type Receiver[T any] struct {
	ch *channel[T]
	id ID
}

// Unbounded creates a channel backed by an unbounded queue.
func Unbounded[T any]() (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{flavor: FlavorList, list: &listQueue[T]{}}
	return newPair(ch)
}

// Bounded creates a channel holding at most capacity values.
// A capacity of zero creates a rendezvous channel: every send is handed
// directly to a receiver.
func Bounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 0 {
		panic("sel: negative channel capacity")
	}
	if capacity == 0 {
		return newPair(&channel[T]{flavor: FlavorZero})
	}
	ch := &channel[T]{flavor: FlavorArray, array: newArrayQueue[T](capacity)}
	return newPair(ch)
}

func newPair[T any](ch *channel[T]) (*Sender[T], *Receiver[T]) {
	return &Sender[T]{ch: ch, id: nextID()}, &Receiver[T]{ch: ch, id: nextID()}
}

func (c *channel[T]) isClosed() bool {
	return c.closed.Load() != 0
}

// close marks the channel disconnected and wakes every registration.
func (c *channel[T]) close() {
	if c.flavor == FlavorList {
		c.list.mu.Lock()
		swapped := c.closed.CompareAndSwap(0, 1)
		c.list.mu.Unlock()
		if !swapped {
			return
		}
	} else if !c.closed.CompareAndSwap(0, 1) {
		return
	}
	if c.flavor == FlavorArray {
		c.array.drain()
	}
	c.senders.notifyAll()
	c.receivers.notifyAll()
}

// trySend attempts one send. self is the Parker of the calling selection,
// or nil; a rendezvous never pairs a selection with itself.
func (c *channel[T]) trySend(v T, self *Parker) error {
	switch c.flavor {
	case FlavorList:
		return c.listSend(v)
	case FlavorArray:
		return c.arraySend(v, nil)
	default:
		return c.zeroSend(v, self)
	}
}

// trySendBackoff is trySend with retries on lock-free contention paced by b.
func (c *channel[T]) trySendBackoff(v T, self *Parker, b *backoff) error {
	if c.flavor == FlavorArray {
		return c.arraySend(v, b)
	}
	return c.trySend(v, self)
}

func (c *channel[T]) tryRecv(self *Parker) (T, error) {
	switch c.flavor {
	case FlavorList:
		return c.listRecv()
	case FlavorArray:
		return c.arrayRecv(nil)
	default:
		return c.zeroRecv(self)
	}
}

func (c *channel[T]) tryRecvBackoff(self *Parker, b *backoff) (T, error) {
	if c.flavor == FlavorArray {
		return c.arrayRecv(b)
	}
	return c.tryRecv(self)
}

// canSend reports whether a send would likely succeed now.
func (c *channel[T]) canSend(self *Parker) bool {
	if c.isClosed() {
		return false
	}
	switch c.flavor {
	case FlavorList:
		return true
	case FlavorArray:
		return c.array.hasRoom()
	default:
		return c.receivers.claimable(self)
	}
}

// canRecv reports whether a receive would likely succeed now.
func (c *channel[T]) canRecv(self *Parker) bool {
	switch c.flavor {
	case FlavorList:
		return c.list.nonEmpty()
	case FlavorArray:
		return c.array.nonEmpty()
	default:
		return !c.isClosed() && c.senders.claimable(self)
	}
}

// recvDisconnected reports whether no value can ever be received again.
func (c *channel[T]) recvDisconnected() bool {
	if !c.isClosed() {
		return false
	}
	return !c.canRecv(nil)
}

// registerSender records a sender waiting for room. Unbounded queues never
// block senders, so the registration is skipped for them.
func (c *channel[T]) registerSender(id ID, p *Parker) {
	switch c.flavor {
	case FlavorArray:
		c.senders.register(id, p)
	case FlavorZero:
		c.promiseSend(id, p)
	}
}

func (c *channel[T]) unregisterSender(id ID, p *Parker) {
	switch c.flavor {
	case FlavorArray:
		c.senders.unregister(id, p)
	case FlavorZero:
		c.unpromiseSend(id, p)
	}
}

func (c *channel[T]) registerReceiver(id ID, p *Parker) {
	if c.flavor == FlavorZero {
		c.promiseRecv(id, p)
		return
	}
	c.receivers.register(id, p)
}

func (c *channel[T]) unregisterReceiver(id ID, p *Parker) {
	if c.flavor == FlavorZero {
		c.unpromiseRecv(id, p)
		return
	}
	c.receivers.unregister(id, p)
}

// ID returns the endpoint id of the sender.
func (tx *Sender[T]) ID() ID { return tx.id }

// Flavor returns the channel backend.
func (tx *Sender[T]) Flavor() Flavor { return tx.ch.flavor }

// TrySend sends v without blocking.
// Returns ErrFull if no room (or no waiting receiver) and ErrDisconnected
// if the channel is closed.
func (tx *Sender[T]) TrySend(v T) error {
	return tx.ch.trySend(v, nil)
}

// Send blocks until v is sent or the channel is closed.
func (tx *Sender[T]) Send(v T) error {
	if err := tx.TrySend(v); !IsWouldBlock(err) {
		return err
	}
	return tx.sendOn(New(), v)
}

// SendTimeout blocks until v is sent, the channel is closed, or d elapses.
func (tx *Sender[T]) SendTimeout(v T, d time.Duration) error {
	if err := tx.TrySend(v); !IsWouldBlock(err) {
		return err
	}
	return tx.sendOn(WithTimeout(d), v)
}

func (tx *Sender[T]) sendOn(s *Select, v T) error {
	defer s.Close()
	for {
		err := Send(s, tx, v)
		if !IsWouldBlock(err) {
			return err
		}
	}
}

// Close disconnects the channel. Buffered values remain receivable.
func (tx *Sender[T]) Close() { tx.ch.close() }

// IsDisconnected reports whether the channel is closed.
func (tx *Sender[T]) IsDisconnected() bool { return tx.ch.isClosed() }

// CanSend reports whether a send would likely succeed without blocking.
func (tx *Sender[T]) CanSend() bool { return tx.ch.canSend(nil) }

func (tx *Sender[T]) endpointID() ID { return tx.id }

func (tx *Sender[T]) unsubscribe(p *Parker) { tx.ch.unregisterSender(tx.id, p) }

func (tx *Sender[T]) rendezvousSend() bool { return tx.ch.flavor == FlavorZero }

// ID returns the endpoint id of the receiver.
func (rx *Receiver[T]) ID() ID { return rx.id }

// Flavor returns the channel backend.
func (rx *Receiver[T]) Flavor() Flavor { return rx.ch.flavor }

// TryRecv receives a value if one is ready now.
// Returns ErrEmpty if nothing is ready and ErrDisconnected once the channel
// is closed and drained.
//
// On a rendezvous channel TryRecv never waits for a sender to arrive, but
// after claiming a parked sending selection it waits for that selection to
// hand the value over. The handoff happens on the selection's next offer
// round, or it is cancelled (ErrEmpty) if the selection is closed first.
func (rx *Receiver[T]) TryRecv() (T, error) {
	return rx.ch.tryRecv(nil)
}

// Recv blocks until a value arrives or the channel is closed and drained.
func (rx *Receiver[T]) Recv() (T, error) {
	if v, err := rx.TryRecv(); !IsWouldBlock(err) {
		return v, err
	}
	return rx.recvOn(New())
}

// RecvTimeout is Recv bounded by d.
func (rx *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	if v, err := rx.TryRecv(); !IsWouldBlock(err) {
		return v, err
	}
	return rx.recvOn(WithTimeout(d))
}

func (rx *Receiver[T]) recvOn(s *Select) (T, error) {
	defer s.Close()
	for {
		v, err := Recv(s, rx)
		if !IsWouldBlock(err) {
			return v, err
		}
	}
}

// Close disconnects the channel.
func (rx *Receiver[T]) Close() { rx.ch.close() }

// IsDisconnected reports whether the channel is closed and holds no value.
func (rx *Receiver[T]) IsDisconnected() bool { return rx.ch.recvDisconnected() }

// CanRecv reports whether a receive would likely succeed without blocking.
func (rx *Receiver[T]) CanRecv() bool { return rx.ch.canRecv(nil) }

func (rx *Receiver[T]) endpointID() ID { return rx.id }

func (rx *Receiver[T]) unsubscribe(p *Parker) { rx.ch.unregisterReceiver(rx.id, p) }

func (rx *Receiver[T]) rendezvousSend() bool { return false }
