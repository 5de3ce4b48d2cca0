// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"code.hybscloud.com/kont"
)

// Step evaluates a protocol of channel effects until the first suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended effect without waiting for a peer.
//
// On success (nil error) the suspension is consumed and the protocol
// advances to the next effect or completion. On iox.ErrWouldBlock the
// suspension is unconsumed and may be retried after a peer makes progress.
// A disconnected channel is not an Advance error: it resumes the protocol
// with a Left outcome.
func Advance[R any](susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	eop, ok := susp.Op().(effectDispatcher)
	if !ok {
		panic("sel: unhandled effect in Advance")
	}
	v, err := eop.dispatchTry()
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
