// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sel provides multi-way synchronous selection over channel endpoints.
//
// Given several send and receive candidates on different channels, a [Select]
// completes exactly one of them. It blocks only if none can proceed, honors an
// optional deadline, and reports "every candidate closed" ([ErrDisconnected])
// apart from "timed out" ([ErrTimeout]).
//
// # Architecture
//
//   - Channels: [Unbounded] (mutex-guarded queue), [Bounded] with capacity ≥ 1 (lock-free ring
//     via [code.hybscloud.com/lfq]), and [Bounded] with capacity 0 (rendezvous).
//   - Selection: a polling state machine re-entered once per offered candidate through
//     [Send] and [Recv]. It counts the candidates from the offering pattern, starts each
//     round at a random candidate, spins briefly, then registers on every candidate,
//     parks, and completes the one transfer that woke it.
//   - Non-blocking: Try operations and not-live offers return errors wrapping
//     [code.hybscloud.com/iox.ErrWouldBlock].
//   - Effects: [SendOp], [RecvOp] and [ChooseOp] are [code.hybscloud.com/kont] effects,
//     evaluated by [Exec]/[ExecExpr] (blocking) or [Step]/[Advance] (one effect at a time).
//
// # Protocol
//
// Each round sweeps 2n offer positions for n candidates; n of them are live.
// The phase changes once per round:
//
//	Try ──all closed──▶ Disconnected
//	 │
//	 ▼
//	Subscribe ──park──▶ Unsubscribe ──▶ FinalTry ──deadline──▶ TimedOut
//	 ▲                                     │
//	 └──────────────── Try ◀───────────────┘
//
// Candidates must be offered in the same order on every pass of the caller's
// loop, and every candidate must be offered once before the first repeat.
//
// # Example
//
//	s := sel.WithTimeout(100 * time.Millisecond)
//	i, v, err := sel.Run(s, sel.OnRecv(rxA), sel.OnRecv(rxB))
//	if err != nil {
//		return err // sel.ErrTimeout or sel.ErrDisconnected
//	}
//	fmt.Println("case", i, "got", v)
package sel
