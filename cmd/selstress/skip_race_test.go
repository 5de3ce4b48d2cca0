// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package main

import "testing"

// skipRace skips tests that drive lfq-backed channels, whose slot
// sequencing the race detector reports as false positives.
func skipRace(t *testing.T) {
	t.Helper()
	t.Skip("skip: lfq-backed channel under race detector")
}
