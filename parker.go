// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"time"

	"code.hybscloud.com/atomix"
)

// request is one rendezvous handoff. cancelled marks a sender that was
// claimed but abandoned its selection before handing the value over.
type request struct {
	value     any
	id        ID
	cancelled bool
}

// Parker is the blocking and wake object of one selecting goroutine.
//
// A Parker is woken at most once per Reset: the first successful Select
// stores the winning candidate id and every later Select fails. The request
// slot carries exactly one rendezvous value per handoff.
type Parker struct {
	selected atomix.Uint32
	wake     chan struct{}
	slot     chan request
}

// NewParker returns a Parker ready for use.
func NewParker() *Parker {
	return &Parker{
		wake: make(chan struct{}, 1),
		slot: make(chan request, 1),
	}
}

// Reset clears the previous wake marker, a pending wake signal and a stale
// handoff left in the request slot.
func (p *Parker) Reset() {
	p.selected.Store(noID)
	select {
	case <-p.wake:
	default:
	}
	select {
	case <-p.slot:
	default:
	}
}

// Select marks the Parker as woken by candidate id.
// Reports false if the Parker was already woken since the last Reset.
func (p *Parker) Select(id ID) bool {
	return p.selected.CompareAndSwap(noID, id)
}

// Selected returns the id recorded by the winning Select, or zero.
func (p *Parker) Selected() ID {
	return p.selected.Load()
}

// Unpark wakes a goroutine blocked in WaitUntil. It never blocks.
func (p *Parker) Unpark() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// WaitUntil blocks until the Parker is selected or the deadline passes.
// A zero deadline waits without limit. When the deadline wins, the Parker
// is selected with expiredID so late wakers cannot claim it.
func (p *Parker) WaitUntil(deadline time.Time) {
	var timeout <-chan time.Time
	if !deadline.IsZero() {
		d := time.Until(deadline)
		if d <= 0 {
			p.Select(expiredID)
			return
		}
		t := time.NewTimer(d)
		defer t.Stop()
		timeout = t.C
	}
	for p.Selected() == noID {
		select {
		case <-p.wake:
		case <-timeout:
			p.Select(expiredID)
			return
		}
	}
}

// PutRequest hands v over to whoever claimed this Parker as candidate id.
// It must be called at most once per handoff.
func (p *Parker) PutRequest(v any, id ID) {
	p.slot <- request{value: v, id: id}
}

// cancelRequest releases a claimer waiting in TakeRequest without a value.
func (p *Parker) cancelRequest(id ID) {
	p.slot <- request{id: id, cancelled: true}
}

// TakeRequest waits for the value handed over for candidate id.
// Reports false if the handoff was cancelled.
func (p *Parker) TakeRequest(id ID) (any, bool) {
	r := <-p.slot
	if r.id != id {
		panic("sel: rendezvous handoff id mismatch")
	}
	if r.cancelled {
		return nil, false
	}
	return r.value, true
}
