// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import "sync"

// broadcaster fans values out to subscribers in publish order.
type broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[int]func(T)
	order  []int
	nextID int
}

func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(T))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster[T]) snapshot() []func(T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]func(T), 0, len(b.subs))
	live := b.order[:0]
	for _, id := range b.order {
		if fn, ok := b.subs[id]; ok {
			out = append(out, fn)
			live = append(live, id)
		}
	}
	b.order = live
	return out
}

func (b *broadcaster[T]) publish(subs []func(T), v T) {
	for _, fn := range subs {
		fn(v)
	}
}
