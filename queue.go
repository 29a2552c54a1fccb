package herald

import "sync"

// queue is an unbounded FIFO of invocations.
// Every method must be called with the lock passed to newQueue held.
type queue struct {
	items []*invocation
	head  int
	cond  *sync.Cond
}

func newQueue(l sync.Locker) *queue {
	return &queue{cond: sync.NewCond(l)}
}

// push appends inv at the tail and wakes one waiter.
func (q *queue) push(inv *invocation) {
	q.items = append(q.items, inv)
	q.cond.Signal()
}

// await blocks while the queue is empty and stop reports false.
// The lock is released while blocked.
func (q *queue) await(stop func() bool) {
	for q.len() == 0 && !stop() {
		q.cond.Wait()
	}
}

// pop removes and returns the head, or nil if the queue is empty.
func (q *queue) pop() *invocation {
	if q.len() == 0 {
		return nil
	}
	inv := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return inv
}

// drain removes every queued invocation and returns them in order.
func (q *queue) drain() []*invocation {
	rest := make([]*invocation, q.len())
	copy(rest, q.items[q.head:])
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	return rest
}

// wake unblocks every waiter so it can re-check its stop condition.
func (q *queue) wake() {
	q.cond.Broadcast()
}

func (q *queue) len() int {
	return len(q.items) - q.head
}
