// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import "time"

// stateKind is the protocol phase of an initialized selection.
type stateKind uint8

const (
	stateTry stateKind = iota
	stateSubscribe
	stateUnsubscribe
	stateFinalTry
	stateTimedOut
	stateDisconnected
)

func (k stateKind) String() string {
	switch k {
	case stateTry:
		return "try"
	case stateSubscribe:
		return "subscribe"
	case stateUnsubscribe:
		return "unsubscribe"
	case stateFinalTry:
		return "final-try"
	case stateTimedOut:
		return "timed-out"
	case stateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// state is one protocol phase.
//
//   - Try: closed counts candidates found disconnected this round.
//   - Subscribe: closed is a countdown, seeded from Try's count and
//     decremented per candidate found disconnected while registering.
//   - FinalTry: winner is the candidate id that woke the Parker.
type state struct {
	kind   stateKind
	closed int
	winner ID
}

// machine is the selection automaton. It starts counting candidates and,
// once the first candidate is offered again, becomes initialized for the
// rest of its life.
//
// An initialized round spans 2n positions for n candidates. Positions
// [start, start+n) are live and map, in offer order, onto the n candidates
// rotated by start; the rest are dormant. Sweeping twice the candidate set
// lets the round begin at a random candidate without reordering offers.
type machine struct {
	initialized bool

	// Counting shape.
	seen      int
	first     ID
	haveFirst bool

	// Initialized shape.
	pos   int
	n     int
	start int
	st    state

	deadline time.Time
}

// step advances the machine by one offer of candidate id. It returns the
// protocol state to apply if this position is live, or nil.
func (s *Select) step(id ID) *state {
	m := &s.m
	for {
		if !m.initialized {
			if m.haveFirst && m.first == id {
				m.initialized = true
				m.n = m.seen
				m.pos = 0
				m.st = state{kind: stateTry}
				m.start = s.randomStart(m.n)
				s.log.Trace().Int("candidates", m.n).Int("start", m.start).Msg("sel: counted candidates")
				continue
			}
			if !m.haveFirst {
				m.first = id
				m.haveFirst = true
			}
			m.seen++
			return nil
		}
		if m.pos >= 2*m.n {
			s.transition()
			m.pos = 0
			continue
		}
		pos := m.pos
		m.pos++
		if m.start <= pos && pos < m.start+m.n {
			return &m.st
		}
		return nil
	}
}

// transition moves to the next protocol phase. It runs once per completed
// round. Subscribe to Unsubscribe is the only edge that blocks.
func (s *Select) transition() {
	m := &s.m
	from := m.st.kind
	switch m.st.kind {
	case stateTry:
		if m.st.closed < m.n {
			s.parker.Reset()
			m.st = state{kind: stateSubscribe, closed: m.st.closed}
		} else {
			m.st = state{kind: stateDisconnected}
		}
	case stateSubscribe:
		if m.st.closed < 0 {
			s.parker.Select(wokenID)
		}
		s.parker.WaitUntil(m.deadline)
		m.st = state{kind: stateUnsubscribe}
	case stateUnsubscribe:
		winner := s.parker.Selected()
		s.recordOwed(winner)
		s.subs = s.subs[:0]
		m.st = state{kind: stateFinalTry, winner: winner}
	case stateFinalTry:
		m.st = state{kind: stateTry}
		if !m.deadline.IsZero() && !time.Now().Before(m.deadline) {
			m.st = state{kind: stateTimedOut}
		}
	default:
		return
	}
	s.log.Trace().Stringer("from", from).Stringer("to", m.st.kind).Int("candidates", m.n).Msg("sel: transition")
}
