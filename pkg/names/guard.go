package names

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrPassInProgress is returned by Begin while another pass holds the guard.
	ErrPassInProgress = errors.New("layout pass already in progress")

	// ErrInvalidLease is returned when a pass runs without an active lease
	// from the optimizer it runs on.
	ErrInvalidLease = errors.New("layout pass requires an active lease")
)

// Guard serializes layout passes over one set of slots. The zero value is
// ready to use. Overlapping passes are rejected, not queued.
type Guard struct {
	busy atomic.Bool
}

// Begin acquires the guard. It fails with ErrPassInProgress when a pass is
// already running, including re-entrant calls from the running pass itself.
func (g *Guard) Begin() (*Lease, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrPassInProgress
	}
	return &Lease{ID: uuid.New(), guard: g}, nil
}

// Busy reports whether a pass currently holds the guard.
func (g *Guard) Busy() bool { return g.busy.Load() }

// Lease is the right to run one layout pass. Release it on every exit path.
type Lease struct {
	ID       uuid.UUID
	guard    *Guard
	released atomic.Bool
}

// Release frees the guard. Calling it more than once is harmless.
func (l *Lease) Release() {
	if l == nil || l.guard == nil {
		return
	}
	if l.released.CompareAndSwap(false, true) {
		l.guard.busy.Store(false)
	}
}

// Active reports whether the lease still holds its guard.
func (l *Lease) Active() bool {
	return l != nil && l.guard != nil && !l.released.Load()
}

// holds reports whether l is the active lease of g.
func (l *Lease) holds(g *Guard) bool {
	return l.Active() && l.guard == g
}
