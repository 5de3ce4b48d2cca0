// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import "code.hybscloud.com/spin"

// waiter is one registration: a parked goroutine's Parker and the candidate
// id it registered under.
type waiter struct {
	id     ID
	parker *Parker
}

// waitList holds the registrations of one direction of one channel.
// Wakers never remove entries; the registering goroutine removes its own.
// Critical sections are a short scan or a swap-remove, so mu is a spin lock.
type waitList struct {
	mu      spin.Lock
	entries []waiter
}

func (l *waitList) register(id ID, p *Parker) {
	l.mu.Lock()
	l.entries = append(l.entries, waiter{id: id, parker: p})
	l.mu.Unlock()
}

func (l *waitList) unregister(id ID, p *Parker) {
	l.mu.Lock()
	for i, w := range l.entries {
		if w.id == id && w.parker == p {
			last := len(l.entries) - 1
			l.entries[i] = l.entries[last]
			l.entries[last] = waiter{}
			l.entries = l.entries[:last]
			break
		}
	}
	l.mu.Unlock()
}

// notifyOne wakes the first registration that can still be claimed,
// naming it as the winning candidate. Reports whether one was woken.
func (l *waitList) notifyOne() bool {
	w, ok := l.claim(nil)
	if ok {
		w.parker.Unpark()
	}
	return ok
}

// claim selects the first registration that can still be claimed and does
// not belong to self. The caller owns the claimed waiter's next handoff.
func (l *waitList) claim(self *Parker) (waiter, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.entries {
		if w.parker == self {
			continue
		}
		if w.parker.Select(w.id) {
			return w, true
		}
	}
	return waiter{}, false
}

// notifyAll wakes every registration without naming a winner, so each
// woken goroutine re-checks its candidates from scratch.
func (l *waitList) notifyAll() {
	l.mu.Lock()
	entries := append([]waiter(nil), l.entries...)
	l.mu.Unlock()
	for _, w := range entries {
		w.parker.Select(wokenID)
		w.parker.Unpark()
	}
}

// claimable reports whether some registration other than self's could be
// claimed right now.
func (l *waitList) claimable(self *Parker) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.entries {
		if w.parker != self && w.parker.Selected() == noID {
			return true
		}
	}
	return false
}
