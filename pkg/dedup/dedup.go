// Package dedup collapses concurrent resolutions of the same key into a
// single in-flight call. The first caller for a key runs the factory; every
// caller that arrives before it settles waits on the same ticket and shares
// the settled value and error. Tickets never outlive their resolution: the
// key is removed from the pending set before waiters are released, so the
// very next call starts a fresh factory invocation.
package dedup

import "sync"

type ticket struct {
	done chan struct{}
	val  any
	err  error
}

// Group deduplicates factory invocations by key. The zero value is not
// usable; construct with New.
type Group struct {
	mu      sync.Mutex
	pending map[string]*ticket
}

func New() *Group {
	return &Group{pending: make(map[string]*ticket)}
}

// Do invokes fn exactly once per outstanding key and hands its result to
// every concurrent caller for that key. A panic in fn is re-raised in the
// owning caller after the ticket is torn down, so waiters are never leaked.
func (g *Group) Do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if t, ok := g.pending[key]; ok {
		g.mu.Unlock()
		<-t.done
		return t.val, t.err
	}
	t := &ticket{done: make(chan struct{})}
	g.pending[key] = t
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, key)
		g.mu.Unlock()
		close(t.done)
	}()

	t.val, t.err = fn()
	return t.val, t.err
}

// Pending reports how many keys currently have an in-flight resolution.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
