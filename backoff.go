// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"code.hybscloud.com/spin"
)

// Default backoff limits. A step below defaultSpinLimit pauses the CPU for
// 2^step cycles; steps up to defaultYieldLimit go through spin.Wait, which
// escalates from a pause to a scheduler yield. No step sleeps.
const (
	defaultSpinLimit  = 6
	defaultYieldLimit = 10
)

// backoff is a bounded escalating wait used by optimistic attempt loops.
// The zero value is not ready for use; create one with newBackoff.
type backoff struct {
	step       uint32
	spinLimit  uint32
	yieldLimit uint32
	w          spin.Wait
}

func newBackoff(spinLimit, yieldLimit uint32) backoff {
	if yieldLimit < spinLimit {
		yieldLimit = spinLimit
	}
	return backoff{spinLimit: spinLimit, yieldLimit: yieldLimit}
}

// spin pauses briefly without yielding. Used between retries that race
// other goroutines on the same lock-free slot.
func (b *backoff) spin() {
	n := min(b.step, b.spinLimit)
	spin.Pause(1 << n)
	if b.step <= b.spinLimit {
		b.step++
	}
}

// tick waits one escalation step and reports whether the caller may keep
// trying. False means the budget is spent and the caller should fall back
// to blocking.
func (b *backoff) tick() bool {
	if b.step > b.yieldLimit {
		return false
	}
	if b.step < b.spinLimit {
		spin.Pause(1 << b.step)
	} else {
		b.w.Once()
	}
	b.step++
	return b.step <= b.yieldLimit
}

func (b *backoff) canSpin() bool {
	return b.step < b.spinLimit
}

// reset rewinds the strategy to its first step.
func (b *backoff) reset() {
	b.step = 0
	b.w.Reset()
}
