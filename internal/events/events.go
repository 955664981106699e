package events

import "sync"

// Bus fans published events out to every subscriber. Publish never
// blocks: a subscriber whose buffer is full misses the event and only
// hears the next one. Events should therefore carry whole snapshots, not
// deltas, so that a later event replaces anything a subscriber missed.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[chan T]struct{}
	buffer int
}

func NewBus[T any](buffer int) *Bus[T] {
	return &Bus[T]{
		subs:   make(map[chan T]struct{}),
		buffer: buffer,
	}
}

func (b *Bus[T]) Subscribe() chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch and closes it. Unknown channels are ignored.
func (b *Bus[T]) Unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

func (b *Bus[T]) Publish(ev T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// skip subscribers with full buffers
		}
	}
}

func (b *Bus[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
