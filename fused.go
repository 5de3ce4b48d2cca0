// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"time"

	"code.hybscloud.com/kont"
)

// SendBind sends v on tx and passes the outcome to f (nil on success).
// Fuses Perform(SendOp[T]{...}) + Bind.
func SendBind[T, B any](tx *Sender[T], v T, f func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(SendOp[T]{To: tx, Value: v}), func(r Sent) kont.Eff[B] {
		err, _ := r.GetLeft()
		return f(err)
	})
}

// RecvBind receives from rx and passes the value and outcome to f.
// Fuses Perform(RecvOp[T]{...}) + Bind.
func RecvBind[T, B any](rx *Receiver[T], f func(T, error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(RecvOp[T]{From: rx}), func(r Received[T]) kont.Eff[B] {
		if err, ok := r.GetLeft(); ok {
			var zero T
			return f(zero, err)
		}
		v, _ := r.GetRight()
		return f(v, nil)
	})
}

// ChooseBind selects one of cases, bounded by timeout when positive, and
// passes the outcome to f.
// Fuses Perform(ChooseOp{...}) + Bind.
func ChooseBind[B any](timeout time.Duration, cases []Case, f func(Chosen, error) kont.Eff[B]) kont.Eff[B] {
	op := ChooseOp{Cases: cases, Timeout: timeout}
	return kont.Bind(kont.Perform(op), func(r kont.Either[error, Chosen]) kont.Eff[B] {
		if err, ok := r.GetLeft(); ok {
			return f(Chosen{Index: -1}, err)
		}
		c, _ := r.GetRight()
		return f(c, nil)
	})
}

// SendOrThrow sends v on tx and throws the failure as an error effect.
// Run it under ExecError[error] (or StepError/AdvanceError).
func SendOrThrow[T any](tx *Sender[T], v T) kont.Eff[struct{}] {
	return kont.Bind(kont.Perform(SendOp[T]{To: tx, Value: v}), func(r Sent) kont.Eff[struct{}] {
		if err, ok := r.GetLeft(); ok {
			return kont.ThrowError[error, struct{}](err)
		}
		return kont.Pure(struct{}{})
	})
}

// RecvOrThrow receives from rx and throws the failure as an error effect,
// so a protocol can treat ErrDisconnected like any thrown error.
func RecvOrThrow[T any](rx *Receiver[T]) kont.Eff[T] {
	return kont.Bind(kont.Perform(RecvOp[T]{From: rx}), func(r Received[T]) kont.Eff[T] {
		if err, ok := r.GetLeft(); ok {
			return kont.ThrowError[error, T](err)
		}
		v, _ := r.GetRight()
		return kont.Pure(v)
	})
}
