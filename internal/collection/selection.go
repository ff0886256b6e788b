package collection

import (
	"sync"

	"github.com/folioapp/folio/internal/api"
)

// Selection holds at most one "currently inspected book" for the detail
// overlay. It lives for the process lifetime only and never validates that
// the book still exists. It is created by the app wiring and passed into
// the UI explicitly; there is no package-level instance.
type Selection struct {
	mu   sync.Mutex
	book *api.Book
}

// Select replaces any existing selection with book.
func (s *Selection) Select(book api.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := book
	s.book = &copied
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book = nil
}

// Current returns a copy of the selected book and whether one is set.
func (s *Selection) Current() (api.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return api.Book{}, false
	}
	return *s.book, true
}
