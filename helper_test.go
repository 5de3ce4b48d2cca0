// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel_test

import (
	"time"

	"code.hybscloud.com/sel"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// recvEither drives a two-candidate receive selection by hand, the way a
// caller loop without Run would. which is 0 or 1 on success, -1 otherwise.
func recvEither[T any](s *sel.Select, a, b *sel.Receiver[T]) (which int, v T) {
	for {
		if x, err := sel.Recv(s, a); err == nil {
			return 0, x
		}
		if x, err := sel.Recv(s, b); err == nil {
			return 1, x
		}
		if s.TimedOut() || s.Disconnected() {
			return -1, v
		}
	}
}

// sendEither is the send counterpart of recvEither.
func sendEither[T any](s *sel.Select, a, b *sel.Sender[T], va, vb T) int {
	for {
		if sel.Send(s, a, va) == nil {
			return 0
		}
		if sel.Send(s, b, vb) == nil {
			return 1
		}
		if s.TimedOut() || s.Disconnected() {
			return -1
		}
	}
}
