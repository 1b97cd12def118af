package client

import (
	"sync"

	"github.com/eapache/queue"
)

// inbox is an unbounded FIFO of inbound messages with a single consumer.
// Producers never block.
type inbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	q      *queue.Queue
	closed bool
}

func newInbox() *inbox {
	i := &inbox{q: queue.New()}
	i.cond = sync.NewCond(&i.mu)
	return i
}

// push appends msg. It reports false once the inbox is closed.
func (i *inbox) push(msg []byte) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return false
	}
	i.q.Add(msg)
	i.cond.Signal()
	return true
}

// pop blocks until a message is available or the inbox is closed.
// Messages still queued at close are discarded.
func (i *inbox) pop() ([]byte, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for i.q.Length() == 0 && !i.closed {
		i.cond.Wait()
	}
	if i.closed {
		return nil, false
	}
	return i.q.Remove().([]byte), true
}

func (i *inbox) len() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.q.Length()
}

func (i *inbox) close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.closed = true
	i.cond.Broadcast()
}
