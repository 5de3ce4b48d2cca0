// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// effectDispatcher is the structural interface for channel effects.
// dispatchWait blocks until the effect completes. dispatchTry returns
// iox.ErrWouldBlock when the channel is not ready; it never waits for a
// peer to arrive, only for the handoff of a rendezvous sender it claimed
// (see Receiver.TryRecv).
type effectDispatcher interface {
	dispatchWait() kont.Resumed
	dispatchTry() (kont.Resumed, error)
}

// Sent is the result of a send effect: Left(err) on failure, Right on success.
type Sent = kont.Either[error, struct{}]

// Received is the result of a receive effect.
type Received[T any] = kont.Either[error, T]

// Chosen reports which case of a ChooseOp completed and, for a receive,
// the value received.
type Chosen struct {
	Index int
	Value any
}

// SendOp is the effect operation for sending Value on To.
type SendOp[T any] struct {
	kont.Phantom[Sent]
	To    *Sender[T]
	Value T
}

func sentOf(err error) kont.Resumed {
	if err != nil {
		return kont.Left[error, struct{}](err)
	}
	return kont.Right[error](struct{}{})
}

func (o SendOp[T]) dispatchWait() kont.Resumed {
	return sentOf(o.To.Send(o.Value))
}

func (o SendOp[T]) dispatchTry() (kont.Resumed, error) {
	err := o.To.TrySend(o.Value)
	if IsWouldBlock(err) {
		return nil, iox.ErrWouldBlock
	}
	return sentOf(err), nil
}

// RecvOp is the effect operation for receiving from From.
type RecvOp[T any] struct {
	kont.Phantom[Received[T]]
	From *Receiver[T]
}

func receivedOf[T any](v T, err error) kont.Resumed {
	if err != nil {
		return kont.Left[error, T](err)
	}
	return kont.Right[error](v)
}

func (o RecvOp[T]) dispatchWait() kont.Resumed {
	return receivedOf(o.From.Recv())
}

func (o RecvOp[T]) dispatchTry() (kont.Resumed, error) {
	v, err := o.From.TryRecv()
	if IsWouldBlock(err) {
		return nil, iox.ErrWouldBlock
	}
	return receivedOf(v, err), nil
}

// ChooseOp is the effect operation for selecting one of Cases.
// A positive Timeout bounds the blocking dispatch.
type ChooseOp struct {
	kont.Phantom[kont.Either[error, Chosen]]
	Cases   []Case
	Timeout time.Duration
}

func chosenOf(i int, v any, err error) kont.Resumed {
	if err != nil {
		return kont.Left[error, Chosen](err)
	}
	return kont.Right[error](Chosen{Index: i, Value: v})
}

func (o ChooseOp) dispatchWait() kont.Resumed {
	s := New()
	if o.Timeout > 0 {
		s = WithTimeout(o.Timeout)
	}
	return chosenOf(Run(s, o.Cases...))
}

// dispatchTry runs one selection with an already-passed deadline: a full
// optimistic round and a registration round that never sleeps.
func (o ChooseOp) dispatchTry() (kont.Resumed, error) {
	i, v, err := Run(WithTimeout(0), o.Cases...)
	if err == ErrTimeout {
		return nil, iox.ErrWouldBlock
	}
	return chosenOf(i, v, err), nil
}
