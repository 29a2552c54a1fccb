package herald

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

var invocationPool = sync.Pool{
	New: func() any {
		return &invocation{}
	},
}

// invocation is a handler bound to one emission's arguments.
// It is owned by the queue until the worker runs and releases it.
type invocation struct {
	id       string
	signal   Signal
	thunk    func()
	enqueued time.Time
}

// newInvocation creates an invocation for the signal from the pool.
func newInvocation(signal Signal, thunk func()) *invocation {
	inv := invocationPool.Get().(*invocation) //nolint:errcheck // Pool always returns *invocation
	inv.id = uuid.NewString()
	inv.signal = signal
	inv.thunk = thunk
	inv.enqueued = time.Now()
	return inv
}

// release clears the invocation and returns it to the pool.
func (inv *invocation) release() {
	inv.thunk = nil
	inv.id = ""
	inv.signal = ""
	invocationPool.Put(inv)
}
