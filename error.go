// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Transient errors. Both wrap [iox.ErrWouldBlock]: the operation may succeed
// if retried after the peer makes progress.
var (
	// ErrFull reports that a send found no room (or no waiting receiver).
	ErrFull = fmt.Errorf("sel: channel full: %w", iox.ErrWouldBlock)
	// ErrEmpty reports that a receive found nothing to take.
	ErrEmpty = fmt.Errorf("sel: channel empty: %w", iox.ErrWouldBlock)
)

// Permanent errors.
var (
	// ErrDisconnected reports that the channel was closed. For a selection it
	// reports that every candidate was closed.
	ErrDisconnected = errors.New("sel: disconnected")
	// ErrTimeout reports that the selection deadline elapsed.
	ErrTimeout = errors.New("sel: timed out")
	// ErrClosed reports an offer on a Select that was already closed.
	ErrClosed = errors.New("sel: selection closed")
)

// Contract errors returned by Run.
var (
	ErrNoCases       = errors.New("sel: no cases")
	ErrDuplicateCase = errors.New("sel: endpoint offered twice")
)

// IsWouldBlock reports whether err is a transient not-ready outcome.
// It matches iox.ErrWouldBlock and every error wrapping it.
func IsWouldBlock(err error) bool {
	return err != nil && errors.Is(err, iox.ErrWouldBlock)
}

// IsTerminal reports whether err ends a selection: ErrTimeout or ErrDisconnected.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrDisconnected)
}

// errorDispatcher is the structural interface of kont error effects
// (Throw, Catch).
type errorDispatcher[E any] interface {
	DispatchError(ctx *kont.ErrorContext[E]) (kont.Resumed, bool)
}

// effectErrorHandler handles both channel and error effects.
// Channel effects block through a selection. Error effects short-circuit on Throw.
// Value type: passed to the evaluator on the stack.
type effectErrorHandler[E, A any] struct {
	errCtx *kont.ErrorContext[E]
}

// Dispatch implements kont.Handler for the composed channel+error handler.
// Dispatch order: channel → error.
func (h effectErrorHandler[E, A]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if cop, ok := op.(effectDispatcher); ok {
		return cop.dispatchWait(), true
	}
	if eop, ok := op.(errorDispatcher[E]); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[E, A](h.errCtx.Err), false
		}
		return v, true
	}
	panic("sel: unhandled effect in effectErrorHandler")
}

// ExecError runs a Cont-world protocol of channel and error effects.
// Returns Right with the result, or Left with the first thrown error.
// Channel effects block like Exec.
func ExecError[E, R any](protocol kont.Eff[R]) kont.Either[E, R] {
	wrapped := kont.Map[kont.Resumed, R, kont.Either[E, R]](protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	return kont.Handle(wrapped, effectErrorHandler[E, R]{errCtx: &errCtx})
}

// ExecErrorExpr runs an Expr-world protocol of channel and error effects.
// Returns Right with the result, or Left with the first thrown error.
func ExecErrorExpr[E, R any](protocol kont.Expr[R]) kont.Either[E, R] {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	return kont.HandleExpr(wrapped, effectErrorHandler[E, R]{errCtx: &errCtx})
}

// RunError runs two Cont-world protocols with error handling, interleaved
// on the calling goroutine, and returns both results.
//
// Neither protocol ever parks, so a rendezvous channel between a and b
// cannot complete; connect them with buffered channels.
func RunError[E, A, B any](a kont.Eff[A], b kont.Eff[B]) (kont.Either[E, A], kont.Either[E, B]) {
	return RunErrorExpr[E](kont.Reify(a), kont.Reify(b))
}

// RunErrorExpr is RunError for Expr-world protocols. Rounds that advance
// neither protocol wait through iox.Backoff.
func RunErrorExpr[E, A, B any](a kont.Expr[A], b kont.Expr[B]) (kont.Either[E, A], kont.Either[E, B]) {
	resultA, suspA := StepError[E, A](a)
	resultB, suspB := StepError[E, B](b)
	var bo iox.Backoff
	for suspA != nil || suspB != nil {
		progress := false
		if suspA != nil {
			var err error
			resultA, suspA, err = AdvanceError[E](suspA)
			if err == nil {
				progress = true
			}
		}
		if suspB != nil {
			var err error
			resultB, suspB, err = AdvanceError[E](suspB)
			if err == nil {
				progress = true
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return resultA, resultB
}

// StepError evaluates a protocol with error support until the first
// effect suspension. Returns (Either[E, R], nil) on completion or error,
// or (zero, suspension) if pending.
func StepError[E, R any](protocol kont.Expr[R]) (kont.Either[E, R], *kont.Suspension[kont.Either[E, R]]) {
	wrapped := kont.ExprMap(protocol, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	return kont.StepExpr(wrapped)
}

// AdvanceError dispatches the suspended operation.
// Channel effects behave as in Advance and return iox.ErrWouldBlock with
// the suspension unconsumed. Error effects are eager: Throw discards the
// suspension and returns Left.
func AdvanceError[E, R any](susp *kont.Suspension[kont.Either[E, R]]) (kont.Either[E, R], *kont.Suspension[kont.Either[E, R]], error) {
	if cop, ok := susp.Op().(effectDispatcher); ok {
		v, err := cop.dispatchTry()
		if err != nil {
			var zero kont.Either[E, R]
			return zero, susp, err
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	if eop, ok := susp.Op().(errorDispatcher[E]); ok {
		var ctx kont.ErrorContext[E]
		v, _ := eop.DispatchError(&ctx)
		if ctx.HasErr {
			susp.Discard()
			return kont.Left[E, R](ctx.Err), nil, nil
		}
		result, next := susp.Resume(v)
		return result, next, nil
	}
	panic("sel: unhandled effect in AdvanceError")
}
