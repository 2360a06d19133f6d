package client

import "sync/atomic"

// Guard admits one request at a time for a single control.
type Guard struct {
	busy atomic.Bool
}

// Acquire claims the slot or returns ErrInFlight. The returned release must
// be called once the request settles.
func (g *Guard) Acquire() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.busy.Store(false)
		}
	}, nil
}

// Busy reports whether a request holds the slot.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
