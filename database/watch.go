package database

import (
	"context"
	"sync"
)

// Notifier implements the reactive-query contract: every committed write bumps
// a revision and wakes subscribers, who then re-read whatever query they care
// about. A subscriber only ever learns "something changed", never what; the
// snapshot it fetches next may differ arbitrarily from the previous one.
type Notifier struct {
	mu     sync.Mutex
	rev    uint64
	nextID int
	subs   map[int]chan uint64
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan uint64)}
}

// Revision returns the current change revision. It starts at 0 and increases
// by one per committed write.
func (n *Notifier) Revision() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rev
}

// Broadcast records a change and wakes every subscriber. Notifications
// coalesce: a slow subscriber sees only the latest revision, never a backlog.
func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rev++
	for _, ch := range n.subs {
		select {
		case <-ch:
		default:
		}
		ch <- n.rev
	}
}

// Subscribe registers a subscriber. The returned channel has capacity one and
// delivers the latest revision; cancel must be called to release it.
func (n *Notifier) Subscribe() (<-chan uint64, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan uint64, 1)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
	return ch, cancel
}

// AwaitChange blocks until the revision exceeds since or the context ends,
// returning the revision seen. Backs the long-poll events endpoint.
func (n *Notifier) AwaitChange(ctx context.Context, since uint64) (uint64, error) {
	ch, cancel := n.Subscribe()
	defer cancel()

	// The write may have landed between the caller reading the revision and
	// subscribing here.
	if rev := n.Revision(); rev > since {
		return rev, nil
	}

	for {
		select {
		case rev := <-ch:
			if rev > since {
				return rev, nil
			}
		case <-ctx.Done():
			return since, ctx.Err()
		}
	}
}
