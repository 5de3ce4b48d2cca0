// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sel

// Case is one candidate of a selection driven by Run.
type Case interface {
	endpointID() ID
	offer(s *Select) (any, error)
}

type sendCase[T any] struct {
	tx *Sender[T]
	v  T
}

func (c sendCase[T]) endpointID() ID { return c.tx.id }

func (c sendCase[T]) offer(s *Select) (any, error) {
	return nil, Send(s, c.tx, c.v)
}

type recvCase[T any] struct {
	rx *Receiver[T]
}

func (c recvCase[T]) endpointID() ID { return c.rx.id }

func (c recvCase[T]) offer(s *Select) (any, error) {
	v, err := Recv(s, c.rx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// OnSend is a candidate sending v on tx.
func OnSend[T any](tx *Sender[T], v T) Case {
	return sendCase[T]{tx: tx, v: v}
}

// OnRecv is a candidate receiving from rx.
func OnRecv[T any](rx *Receiver[T]) Case {
	return recvCase[T]{rx: rx}
}

// Run offers cases to s in order until one completes, and closes s.
// It returns the index of the completed case and, for a receive, the
// received value. On failure the index is -1 and the error is ErrTimeout,
// ErrDisconnected, ErrNoCases or ErrDuplicateCase.
func Run(s *Select, cases ...Case) (int, any, error) {
	defer s.Close()
	if len(cases) == 0 {
		return -1, nil, ErrNoCases
	}
	seen := make(map[ID]struct{}, len(cases))
	for _, c := range cases {
		id := c.endpointID()
		if _, dup := seen[id]; dup {
			return -1, nil, ErrDuplicateCase
		}
		seen[id] = struct{}{}
	}
	for {
		for i, c := range cases {
			v, err := c.offer(s)
			if err == nil {
				return i, v, nil
			}
			if !IsWouldBlock(err) {
				return -1, nil, err
			}
		}
	}
}
