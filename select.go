// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"math/rand/v2"
	"time"

	"code.hybscloud.com/iox"
	"github.com/rs/zerolog"
)

// Option configures a Select.
type Option func(*options)

type options struct {
	deadline   time.Time
	rng        *rand.Rand
	log        zerolog.Logger
	spinLimit  uint32
	yieldLimit uint32
}

// WithDeadline sets an absolute deadline. The zero time means no deadline.
func WithDeadline(t time.Time) Option {
	return func(o *options) { o.deadline = t }
}

// WithSeed makes the random starting candidate reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger traces protocol transitions on l at trace level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithBackoff bounds the optimistic attempt on each candidate: spinLimit
// busy-spin steps, then yield steps up to yieldLimit.
func WithBackoff(spinLimit, yieldLimit uint32) Option {
	return func(o *options) {
		o.spinLimit = spinLimit
		o.yieldLimit = yieldLimit
	}
}

// Select attempts exactly one of several send and receive candidates.
//
// A Select is driven by a loop that offers every candidate, in the same
// order on each pass, through Send and Recv. An offer returns nil when its
// candidate completed; any other result means "not this one, offer the
// next". The loop ends on success or once TimedOut or Disconnected
// reports true.
//
//	s := sel.WithTimeout(100 * time.Millisecond)
//	defer s.Close()
//	for {
//		if v, err := sel.Recv(s, rx1); err == nil {
//			use(v)
//			break
//		}
//		if v, err := sel.Recv(s, rx2); err == nil {
//			use(v)
//			break
//		}
//		if s.TimedOut() || s.Disconnected() {
//			break
//		}
//	}
//
// A Select belongs to one goroutine and serves one selection.
type Select struct {
	m      machine
	parker *Parker
	rng    *rand.Rand
	log    zerolog.Logger

	spinLimit  uint32
	yieldLimit uint32

	// subs holds the candidates registered since the last Try round.
	subs []endpoint
	// owed is the rendezvous send candidate that was claimed by a receiver
	// and has not handed its value over yet.
	owed   ID
	closed bool
}

// endpoint is the type-erased view of a Sender or Receiver used to retract
// registrations.
type endpoint interface {
	endpointID() ID
	unsubscribe(p *Parker)
	rendezvousSend() bool
}

// New creates a Select without a deadline. It blocks until a candidate
// succeeds or every candidate is closed.
func New(opts ...Option) *Select {
	o := options{
		log:        zerolog.Nop(),
		spinLimit:  defaultSpinLimit,
		yieldLimit: defaultYieldLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Select{
		m:          machine{deadline: o.deadline},
		parker:     NewParker(),
		rng:        o.rng,
		log:        o.log,
		spinLimit:  o.spinLimit,
		yieldLimit: o.yieldLimit,
	}
}

// WithTimeout creates a Select whose deadline is d from now.
func WithTimeout(d time.Duration, opts ...Option) *Select {
	deadline := time.Now().Add(d)
	return New(append(opts, WithDeadline(deadline))...)
}

// TimedOut reports whether the deadline elapsed before any candidate succeeded.
func (s *Select) TimedOut() bool {
	return s.m.initialized && s.m.st.kind == stateTimedOut
}

// Disconnected reports whether every candidate was found closed.
func (s *Select) Disconnected() bool {
	return s.m.initialized && s.m.st.kind == stateDisconnected
}

// Close abandons the selection and retracts every registration it left on
// channels. Offers after Close return ErrClosed. Close is idempotent.
func (s *Select) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, e := range s.subs {
		e.unsubscribe(s.parker)
	}
	// Once every registration is gone no new claim can land, so Selected
	// is final. A receiver that claimed a send promise this round is
	// waiting on the request slot.
	if s.owed == noID {
		s.recordOwed(s.parker.Selected())
	}
	s.subs = nil
	if s.owed != noID {
		s.parker.cancelRequest(s.owed)
		s.owed = noID
	}
}

// recordOwed marks winner as owed if it names a registered rendezvous send.
// A receiver claimed that promise and waits for the value on the request
// slot.
func (s *Select) recordOwed(winner ID) {
	for _, e := range s.subs {
		if e.endpointID() == winner && e.rendezvousSend() {
			s.owed = winner
			return
		}
	}
}

// randomStart draws the first live candidate of every round.
func (s *Select) randomStart(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (s *Select) newBackoff() backoff {
	return newBackoff(s.spinLimit, s.yieldLimit)
}

// idle is the result of an offer that did no transfer.
func (s *Select) idle() error {
	if s.TimedOut() {
		return ErrTimeout
	}
	if s.Disconnected() {
		return ErrDisconnected
	}
	return iox.ErrWouldBlock
}

// subscribed records a registration so that Close can retract it.
func (s *Select) subscribed(e endpoint) {
	s.subs = append(s.subs, e)
}

// wake marks the Parker as already woken from a Subscribe offer that found
// its candidate ready. Buffered candidates name themselves so FinalTry
// re-attempts them directly. A ready rendezvous needs a fresh Try to pair
// with the waiting peer, so it names no candidate.
func (s *Select) wake(e endpoint, rendezvous bool) {
	if rendezvous {
		s.parker.Select(wokenID)
		return
	}
	s.parker.Select(e.endpointID())
}

// Send offers a send of v on tx as one candidate of s.
//
// Returns nil if v was sent. Otherwise v was not sent and the error is
// iox.ErrWouldBlock (offer the next candidate), ErrTimeout,
// ErrDisconnected, or ErrClosed.
func Send[T any](s *Select, tx *Sender[T], v T) error {
	if s.closed {
		return ErrClosed
	}
	st := s.step(tx.id)
	if st == nil {
		return s.idle()
	}
	switch st.kind {
	case stateTry:
		b := s.newBackoff()
		for {
			err := tx.ch.trySendBackoff(v, s.parker, &b)
			if err == nil {
				return nil
			}
			if err == ErrDisconnected {
				st.closed++
				break
			}
			if !b.tick() {
				break
			}
		}
	case stateSubscribe:
		tx.ch.registerSender(tx.id, s.parker)
		s.subscribed(tx)
		if tx.IsDisconnected() {
			st.closed--
		}
		if tx.ch.canSend(s.parker) {
			s.wake(tx, tx.ch.flavor == FlavorZero)
		}
	case stateUnsubscribe:
		tx.ch.unregisterSender(tx.id, s.parker)
	case stateFinalTry:
		if tx.id != st.winner {
			break
		}
		if tx.ch.flavor == FlavorZero {
			s.parker.PutRequest(v, tx.id)
			s.owed = noID
			return nil
		}
		if tx.ch.trySend(v, s.parker) == nil {
			return nil
		}
	case stateTimedOut:
		return ErrTimeout
	case stateDisconnected:
		return ErrDisconnected
	}
	return iox.ErrWouldBlock
}

// Recv offers a receive on rx as one candidate of s.
//
// Returns the received value and nil on success. Otherwise the error is
// iox.ErrWouldBlock (offer the next candidate), ErrTimeout,
// ErrDisconnected, or ErrClosed.
func Recv[T any](s *Select, rx *Receiver[T]) (T, error) {
	var zero T
	if s.closed {
		return zero, ErrClosed
	}
	st := s.step(rx.id)
	if st == nil {
		return zero, s.idle()
	}
	switch st.kind {
	case stateTry:
		b := s.newBackoff()
		for {
			v, err := rx.ch.tryRecvBackoff(s.parker, &b)
			if err == nil {
				return v, nil
			}
			if err == ErrDisconnected {
				st.closed++
				break
			}
			if !b.tick() {
				break
			}
		}
	case stateSubscribe:
		rx.ch.registerReceiver(rx.id, s.parker)
		s.subscribed(rx)
		if rx.IsDisconnected() {
			st.closed--
		}
		if rx.ch.canRecv(s.parker) {
			s.wake(rx, rx.ch.flavor == FlavorZero)
		}
	case stateUnsubscribe:
		rx.ch.unregisterReceiver(rx.id, s.parker)
	case stateFinalTry:
		if rx.id != st.winner {
			break
		}
		if rx.ch.flavor == FlavorZero {
			if v, ok := s.parker.TakeRequest(rx.id); ok {
				return valueOf[T](v), nil
			}
			break
		}
		if v, err := rx.ch.tryRecv(s.parker); err == nil {
			return v, nil
		}
	case stateTimedOut:
		return zero, ErrTimeout
	case stateDisconnected:
		return zero, ErrDisconnected
	}
	return zero, iox.ErrWouldBlock
}
