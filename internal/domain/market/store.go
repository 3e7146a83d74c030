package market

import (
	"sync"
	"time"
)

// Snapshot is the published state of the quote collection.
// It is replaced wholesale on every completed fetch cycle; readers
// never observe a partially updated cycle.
type Snapshot struct {
	Quotes    []Quote   `json:"quotes"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store holds the current quote snapshot. The quote service is the only
// writer; widgets and the assistant read copies. Subscribers get a
// notification (not the data) whenever a new snapshot is published.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []chan struct{}
}

// NewStore creates an empty quote store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the whole snapshot and notifies subscribers.
func (s *Store) Publish(quotes []Quote) {
	s.mu.Lock()
	s.snap = Snapshot{
		Quotes:    append([]Quote(nil), quotes...),
		UpdatedAt: time.Now(),
	}
	subs := append([]chan struct{}(nil), s.subs...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default: // subscriber hasn't drained the last notification
		}
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Quotes:    append([]Quote(nil), s.snap.Quotes...),
		UpdatedAt: s.snap.UpdatedAt,
	}
}

// Subscribe returns a channel that receives a signal after each publish.
// The channel has a buffer of one; missed signals coalesce.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}
