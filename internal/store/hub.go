package store

import "sync"

// hub fans state snapshots out to subscribers in mutation order.
//
// Snapshots are queued by publish while the store's lock is held, which
// fixes their order, and delivered by drain after that lock is released.
// Only one goroutine delivers at a time; a concurrent drain returns at once
// and leaves its snapshot to the active deliverer. hub.mu is never held
// while a subscriber runs, so subscribers may read the store or mutate it.
type hub[S any] struct {
	mu       sync.Mutex
	next     int
	subs     []subscriber[S]
	queue    []S
	draining bool
}

type subscriber[S any] struct {
	id int
	fn func(S)
}

func (h *hub[S]) subscribe(fn func(S)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	h.subs = append(h.subs, subscriber[S]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// publish queues the snapshot built by snap, unless nobody is subscribed.
// Call it with the store's lock held. It reports whether anything was
// queued.
func (h *hub[S]) publish(snap func() S) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return false
	}
	h.queue = append(h.queue, snap())
	return true
}

// drain delivers queued snapshots. Call it without the store's lock.
func (h *hub[S]) drain() {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true

	for len(h.queue) > 0 {
		snap := h.queue[0]
		var zero S
		h.queue[0] = zero
		h.queue = h.queue[1:]
		subs := h.subs
		h.mu.Unlock()

		for _, s := range subs {
			s.fn(snap)
		}
		h.mu.Lock()
	}
	// Cleared under the same lock that saw the queue empty, so a snapshot
	// queued after this point finds no active deliverer and drains itself.
	h.draining = false
	h.mu.Unlock()
}
