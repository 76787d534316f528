// Package events carries data-changed signals from mutating handlers to
// whoever needs to refetch: the SSE stream, metrics, logging.
package events

import (
	"sync"
	"time"
)

// Kind names what changed.
type Kind string

const (
	ItemsChanged        Kind = "items.changed"
	RestaurantChanged   Kind = "restaurant.changed"
	CategoriesRefreshed Kind = "categories.refreshed"
	UsersChanged        Kind = "users.changed"
)

// Event is a hint that data for a restaurant changed. RestaurantID is zero
// for events that are not scoped to a restaurant.
type Event struct {
	Kind         Kind      `json:"kind"`
	RestaurantID int64     `json:"restaurant_id,omitempty"`
	At           time.Time `json:"at"`
}

// Bus fans events out to subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

// Subscribe registers fn to receive every published event and returns a
// function that removes it. fn runs on the publisher's goroutine and must
// not block.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]func(Event))
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to all current subscribers. A zero At is set to now.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Channel subscribes a buffered channel that receives events for one
// restaurant (or all events when restaurantID is zero). Events are dropped
// when the buffer is full; the stream is a refetch hint, not state.
func (b *Bus) Channel(restaurantID int64, size int) (<-chan Event, func()) {
	ch := make(chan Event, size)
	var mu sync.Mutex
	closed := false

	cancel := b.Subscribe(func(e Event) {
		if restaurantID != 0 && e.RestaurantID != restaurantID {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	return ch, func() {
		cancel()
		mu.Lock()
		if !closed {
			closed = true
			close(ch)
		}
		mu.Unlock()
	}
}
