// Package queue implements the single-consumer message FIFO that
// serializes inbound transport messages and synthetic user commands
// into one ordered stream (spec §4.3).
package queue

import (
	"sync"

	"github.com/tailu123/x30ctl/protocol"
)

// Queue is an unbounded, thread-safe, single-consumer FIFO of owned
// messages. Pop blocks until a message is available or the queue is
// closed, at which point it returns ok=false to let the consumer exit
// cleanly (spec §4.3).
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []protocol.Message
	closed bool
}

// New creates an empty, open Queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends msg to the tail of the queue and wakes one waiter. It
// is a no-op once the queue has been closed.
func (q *Queue) Push(msg protocol.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, msg)
	q.cond.Signal()
}

// Pop blocks until a message is available or the queue is closed. ok
// is false only when the queue is closed and drained.
func (q *Queue) Pop() (msg protocol.Message, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		return nil, false
	}

	msg = q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Clear atomically drops every pending message. Used by the
// navigation state machine on terminal (Done) entry (spec §4.5).
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Close marks the queue closed and wakes every blocked Pop. Safe to
// call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
