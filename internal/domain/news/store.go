package news

import (
	"sync"
	"time"
)

// Snapshot is the published state of the news collection, replaced
// wholesale on every refresh.
type Snapshot struct {
	Articles  []Article `json:"articles"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store holds the current news snapshot. The news service is the only
// writer; readers get copies and subscribers get publish notifications.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []chan struct{}
}

// NewStore creates an empty news store.
func NewStore() *Store {
	return &Store{}
}

// Publish replaces the whole snapshot and notifies subscribers.
func (s *Store) Publish(articles []Article) {
	s.mu.Lock()
	s.snap = Snapshot{
		Articles:  append([]Article(nil), articles...),
		UpdatedAt: time.Now(),
	}
	subs := append([]chan struct{}(nil), s.subs...)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Articles:  append([]Article(nil), s.snap.Articles...),
		UpdatedAt: s.snap.UpdatedAt,
	}
}

// Subscribe returns a buffered channel signalled after each publish.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	return ch
}
