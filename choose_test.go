// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/sel"
)

func TestRunMixedCases(t *testing.T) {
	_, rxA := sel.Unbounded[int]()
	txB, rxB := sel.Bounded[string](0)
	txC, _ := sel.Bounded[int](0)

	go func() {
		time.Sleep(ms(10))
		txB.Send("hello")
	}()

	i, v, err := sel.Run(sel.WithTimeout(5*time.Second),
		sel.OnRecv(rxA),
		sel.OnRecv(rxB),
		sel.OnSend(txC, 3),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if i != 1 {
		t.Fatalf("case %d completed, want 1", i)
	}
	if v.(string) != "hello" {
		t.Fatalf("got %v, want %q", v, "hello")
	}
}

func TestRunSendCase(t *testing.T) {
	tx, rx := sel.Unbounded[int]()
	_, other := sel.Bounded[int](0)

	i, v, err := sel.Run(sel.New(), sel.OnRecv(other), sel.OnSend(tx, 11))
	if err != nil || i != 1 || v != nil {
		t.Fatalf("Run got (%d, %v, %v), want (1, nil, nil)", i, v, err)
	}
	if got, err := rx.TryRecv(); err != nil || got != 11 {
		t.Fatalf("TryRecv got (%d, %v), want (11, nil)", got, err)
	}
}

func TestRunSingleCase(t *testing.T) {
	tx, rx := sel.Unbounded[int]()
	tx.TrySend(4)
	i, v, err := sel.Run(sel.New(), sel.OnRecv(rx))
	if err != nil || i != 0 || v.(int) != 4 {
		t.Fatalf("Run got (%d, %v, %v), want (0, 4, nil)", i, v, err)
	}
}

func TestRunErrors(t *testing.T) {
	_, rx := sel.Unbounded[int]()
	if _, _, err := sel.Run(sel.New()); !errors.Is(err, sel.ErrNoCases) {
		t.Fatalf("no cases: got %v, want ErrNoCases", err)
	}
	if _, _, err := sel.Run(sel.New(), sel.OnRecv(rx), sel.OnRecv(rx)); !errors.Is(err, sel.ErrDuplicateCase) {
		t.Fatalf("duplicate: got %v, want ErrDuplicateCase", err)
	}

	_, rxB := sel.Bounded[int](0)
	i, _, err := sel.Run(sel.WithTimeout(ms(20)), sel.OnRecv(rx), sel.OnRecv(rxB))
	if i != -1 || !errors.Is(err, sel.ErrTimeout) {
		t.Fatalf("timeout: got (%d, %v), want (-1, ErrTimeout)", i, err)
	}
	if !sel.IsTerminal(err) {
		t.Fatal("ErrTimeout must be terminal")
	}
}
