package collection

import (
	"fmt"
	"sync"
	"time"

	"github.com/folioapp/folio/internal/api"
)

// Snapshot represents the latest collection data available to the UI.
type Snapshot struct {
	Books               []api.Book
	Loaded              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple
// refreshes in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the cached collection. The
// refresher replaces its contents with server data; optimistic writes
// mutate it in place and hand back a rollback for the failure path.
type Store struct {
	mu     sync.RWMutex
	books  []api.Book
	loaded bool
	last   time.Time
	err    error
	fails  int
	subs   []chan struct{}
}

// Replace installs a server-fetched collection, clearing any recorded
// error.
func (s *Store) Replace(books []api.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = cloneBooks(books)
	s.loaded = true
	s.err = nil
	s.fails = 0
	s.last = time.Now()
	s.notifyLocked()
}

// RecordError keeps the previous data but records the failure for
// visibility, mirroring the stale-but-displayable read semantics.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	s.fails++
	s.last = time.Now()
	s.notifyLocked()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Books:               cloneBooks(s.books),
		Loaded:              s.loaded,
		LastUpdated:         s.last,
		ConsecutiveFailures: s.fails,
	}
	if s.err != nil {
		snap.LastError = fmt.Errorf("%w", s.err)
	}
	return snap
}

// Subscribe returns a channel that receives a (coalesced) signal whenever
// the visible collection changes: server replace, optimistic apply, or
// rollback. Used by the UI to redraw without polling.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// Rollback restores the state captured immediately before one optimistic
// change. Rollbacks compose per-operation: each one touches only the entity
// it snapshotted.
type Rollback func()

// ApplyStatus optimistically sets the status of the book with the given id.
// The returned rollback restores that book's previous status only. ok is
// false when the book is not in the collection.
func (s *Store) ApplyStatus(id string, status api.BookStatus) (Rollback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	prev := s.books[i].Status
	s.books[i].Status = status
	s.notifyLocked()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j := s.indexLocked(id); j >= 0 {
			s.books[j].Status = prev
			s.notifyLocked()
		}
	}, true
}

// ApplyRemove optimistically removes the book with the given id. The
// returned rollback reinserts it at its original position with its original
// fields. ok is false when the book is not in the collection.
func (s *Store) ApplyRemove(id string) (Rollback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	removed := s.books[i]
	s.books = append(s.books[:i], s.books[i+1:]...)
	s.notifyLocked()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A server refetch may have replaced the list and restored the book
		// while the failed write was in flight.
		if s.indexLocked(id) >= 0 {
			return
		}
		at := i
		if at > len(s.books) {
			at = len(s.books)
		}
		s.books = append(s.books[:at], append([]api.Book{removed}, s.books[at:]...)...)
		s.notifyLocked()
	}, true
}

// Get returns a copy of the book with the given id.
func (s *Store) Get(id string) (api.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.books[i], true
	}
	return api.Book{}, false
}

func (s *Store) indexLocked(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneBooks(books []api.Book) []api.Book {
	if len(books) == 0 {
		return nil
	}
	dup := make([]api.Book, len(books))
	copy(dup, books)
	return dup
}
