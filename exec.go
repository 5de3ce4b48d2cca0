// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"code.hybscloud.com/kont"
)

// effectHandler implements kont.Handler for channel effects.
// Value type: passed to the evaluator on the stack.
type effectHandler[R any] struct{}

// Dispatch implements kont.Handler via structural interface assertion.
// Blocks until the effect completes.
func (effectHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	eop, ok := op.(effectDispatcher)
	if !ok {
		panic("sel: unhandled effect in effectHandler")
	}
	return eop.dispatchWait(), true
}

// Exec runs a Cont-world protocol of channel effects. Every effect blocks
// through a selection until it completes or its channel disconnects.
func Exec[R any](protocol kont.Eff[R]) R {
	return kont.Handle(protocol, effectHandler[R]{})
}

// ExecExpr runs an Expr-world protocol of channel effects.
func ExecExpr[R any](protocol kont.Expr[R]) R {
	return kont.HandleExpr(protocol, effectHandler[R]{})
}
