// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

import "code.hybscloud.com/atomix"

// ID identifies one channel handle (a Sender or a Receiver).
// IDs are process-unique and never zero.
type ID = uint32

const (
	// noID marks an unset id. The id counter never yields it.
	noID ID = 0

	// wokenID marks a Parker woken without a winning candidate: a readiness
	// hint, a disconnect, or an explicit early wake. No FinalTry matches it.
	wokenID ID = ^ID(0)

	// expiredID marks a Parker whose deadline elapsed before any wake.
	expiredID ID = ^ID(0) - 1
)

// idCounter is the global monotonic counter for endpoint ids.
var idCounter atomix.Uint32

// nextID returns the next endpoint id. The first id handed out is 1.
func nextID() ID {
	id := idCounter.Add(1)
	if id >= expiredID {
		panic("sel: endpoint id space exhausted")
	}
	return id
}
