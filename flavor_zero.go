// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

// The rendezvous backend stores no values. A waiting side leaves a promise
// (a registration carrying its Parker); the arriving side claims one
// promise and moves the value through the waiting side's request slot.
//
//   - Arriving sender, promised receiver: the sender claims the receiver,
//     writes the value into the receiver's slot, and wakes it.
//   - Arriving receiver, promised sender: the receiver claims the sender,
//     wakes it, and reads the value the sender writes into its own slot.

func (c *channel[T]) promiseSend(id ID, p *Parker) { c.senders.register(id, p) }

func (c *channel[T]) unpromiseSend(id ID, p *Parker) { c.senders.unregister(id, p) }

func (c *channel[T]) promiseRecv(id ID, p *Parker) { c.receivers.register(id, p) }

func (c *channel[T]) unpromiseRecv(id ID, p *Parker) { c.receivers.unregister(id, p) }

func (c *channel[T]) zeroSend(v T, self *Parker) error {
	if c.isClosed() {
		return ErrDisconnected
	}
	w, ok := c.receivers.claim(self)
	if !ok {
		return ErrFull
	}
	w.parker.PutRequest(v, w.id)
	w.parker.Unpark()
	return nil
}

func (c *channel[T]) zeroRecv(self *Parker) (T, error) {
	var zero T
	if c.isClosed() {
		return zero, ErrDisconnected
	}
	w, ok := c.senders.claim(self)
	if !ok {
		return zero, ErrEmpty
	}
	w.parker.Unpark()
	v, ok := w.parker.TakeRequest(w.id)
	if !ok {
		return zero, ErrEmpty
	}
	return valueOf[T](v), nil
}

// valueOf unboxes a handed-over value. A nil interface value yields the
// zero T.
func valueOf[T any](v any) T {
	t, _ := v.(T)
	return t
}
