// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import (
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/require"
)

func candidateIDs(n int) []ID {
	ids := make([]ID, n)
	for i := range ids {
		_, rx := Unbounded[int]()
		ids[i] = rx.id
	}
	return ids
}

// countThenRound drives one counting pass and one full round over ids and
// returns the ids delivered at live positions, in order.
func countThenRound(s *Select, ids []ID) []ID {
	for _, id := range ids {
		if s.step(id) != nil {
			panic("live position during counting")
		}
	}
	var live []ID
	for p := range 2 * len(ids) {
		id := ids[p%len(ids)]
		if s.step(id) != nil {
			live = append(live, id)
		}
	}
	return live
}

func TestCountingInfersCandidateCount(t *testing.T) {
	for n := 1; n <= 9; n++ {
		s := New(WithSeed(uint64(n)))
		ids := candidateIDs(n)
		for _, id := range ids {
			require.Nil(t, s.step(id))
			require.False(t, s.m.initialized)
		}
		s.step(ids[0])
		require.True(t, s.m.initialized)
		require.Equal(t, n, s.m.n)
		require.Less(t, s.m.start, n)
		require.Equal(t, stateTry, s.m.st.kind)
	}
}

func TestLivePositionsCoverEveryCandidateOnce(t *testing.T) {
	property := func(size uint8, seed uint64) bool {
		n := int(size%16) + 1
		s := New(WithSeed(seed))
		ids := candidateIDs(n)
		live := countThenRound(s, ids)
		if len(live) != n {
			return false
		}
		seen := make(map[ID]bool, n)
		for _, id := range live {
			if seen[id] {
				return false
			}
			seen[id] = true
		}
		// The first live candidate is the one at the random start.
		return live[0] == ids[s.m.start%n]
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestRandomStartCoversEveryCandidate(t *testing.T) {
	const n = 4
	var hits [n]int
	for seed := range uint64(400) {
		s := New(WithSeed(seed))
		live := countThenRound(s, candidateIDs(n))
		require.Len(t, live, n)
		hits[s.m.start]++
	}
	for i, h := range hits {
		require.NotZerof(t, h, "start %d never drawn", i)
	}
}

func initialized(n int, st state, deadline time.Time) *Select {
	s := New(WithDeadline(deadline))
	s.m = machine{initialized: true, n: n, st: st, deadline: deadline}
	return s
}

func TestTransitionTable(t *testing.T) {
	past := time.Now().Add(-time.Second)

	t.Run("try to subscribe", func(t *testing.T) {
		s := initialized(3, state{kind: stateTry, closed: 2}, time.Time{})
		s.parker.Select(7)
		s.transition()
		require.Equal(t, state{kind: stateSubscribe, closed: 2}, s.m.st)
		require.Equal(t, noID, s.parker.Selected(), "parker not reset")
	})

	t.Run("try all closed", func(t *testing.T) {
		s := initialized(3, state{kind: stateTry, closed: 3}, time.Time{})
		s.transition()
		require.Equal(t, stateDisconnected, s.m.st.kind)
		require.True(t, s.Disconnected())
	})

	t.Run("subscribe negative countdown wakes at once", func(t *testing.T) {
		s := initialized(2, state{kind: stateSubscribe, closed: -1}, time.Time{})
		s.transition()
		require.Equal(t, stateUnsubscribe, s.m.st.kind)
		require.Equal(t, wokenID, s.parker.Selected())
	})

	t.Run("subscribe expires at deadline", func(t *testing.T) {
		s := initialized(2, state{kind: stateSubscribe}, past)
		s.transition()
		require.Equal(t, stateUnsubscribe, s.m.st.kind)
		require.Equal(t, expiredID, s.parker.Selected())
	})

	t.Run("unsubscribe reads winner", func(t *testing.T) {
		s := initialized(2, state{kind: stateUnsubscribe}, time.Time{})
		s.parker.Select(42)
		s.transition()
		require.Equal(t, state{kind: stateFinalTry, winner: 42}, s.m.st)
	})

	t.Run("final try retries", func(t *testing.T) {
		s := initialized(2, state{kind: stateFinalTry, winner: 42}, time.Time{})
		s.transition()
		require.Equal(t, state{kind: stateTry}, s.m.st)
	})

	t.Run("final try after deadline", func(t *testing.T) {
		s := initialized(2, state{kind: stateFinalTry}, past)
		s.transition()
		require.True(t, s.TimedOut())
	})

	t.Run("terminal states stay", func(t *testing.T) {
		for _, k := range []stateKind{stateTimedOut, stateDisconnected} {
			s := initialized(2, state{kind: k}, past)
			s.transition()
			require.Equal(t, k, s.m.st.kind)
		}
	})
}

func TestCloseRetractsRegistrations(t *testing.T) {
	_, rx := Bounded[int](0)
	s := New()

	// count, Try (live), dormant, then Subscribe registers.
	for range 4 {
		_, err := Recv(s, rx)
		require.True(t, IsWouldBlock(err))
	}
	require.Equal(t, stateSubscribe, s.m.st.kind)
	require.Len(t, rx.ch.receivers.entries, 1)

	s.Close()
	require.Empty(t, rx.ch.receivers.entries)
	_, err := Recv(s, rx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestCloseCancelsOwedRendezvous(t *testing.T) {
	tx, _ := Bounded[int](0)
	s := New()
	for range 4 {
		require.True(t, IsWouldBlock(Send(s, tx, 1)))
	}
	require.Equal(t, stateSubscribe, s.m.st.kind)

	// A receiver claims the promise while the selection is abandoned.
	w, ok := tx.ch.senders.claim(nil)
	require.True(t, ok)
	s.m.st = state{kind: stateUnsubscribe}
	s.transition()
	require.Equal(t, tx.id, s.owed)

	s.Close()
	_, ok = w.parker.TakeRequest(w.id)
	require.False(t, ok, "claimer must observe a cancelled handoff")
}

func TestSubscribeMarksReadyCandidate(t *testing.T) {
	tx, rx := Unbounded[int]()
	s := New()
	s.parker.Reset()
	require.NoError(t, tx.TrySend(1))

	s.m = machine{initialized: true, n: 1, st: state{kind: stateSubscribe}}
	_, err := Recv(s, rx)
	require.True(t, IsWouldBlock(err))
	require.Equal(t, rx.id, s.parker.Selected())
}

func TestCloseReleasesReceiverClaimedDuringSubscribe(t *testing.T) {
	tx, rx := Bounded[int](0)
	s := New()
	for range 4 {
		require.True(t, IsWouldBlock(Send(s, tx, 1)))
	}
	require.Equal(t, stateSubscribe, s.m.st.kind)

	// The receiver claims the send promise and waits for the handoff
	// before the selection ever parks.
	got := make(chan error, 1)
	go func() {
		_, err := rx.TryRecv()
		got <- err
	}()
	require.Eventually(t, func() bool {
		return s.parker.Selected() == tx.id
	}, 2*time.Second, time.Millisecond)

	s.Close()
	select {
	case err := <-got:
		require.ErrorIs(t, err, ErrEmpty)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver still waiting after the claimed selection closed")
	}
	require.Empty(t, tx.ch.senders.entries)
}

func TestCloseWithoutClaimLeavesSlotEmpty(t *testing.T) {
	tx, _ := Bounded[int](0)
	s := New()
	for range 4 {
		require.True(t, IsWouldBlock(Send(s, tx, 1)))
	}
	s.Close()
	require.Equal(t, noID, s.owed)
	select {
	case r := <-s.parker.slot:
		t.Fatalf("unexpected handoff %+v left in the slot", r)
	default:
	}
}
