package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/query"
)

type scriptedReader struct {
	books []api.Book
	err   error
	calls int
}

func (r *scriptedReader) ListEntries(context.Context) ([]api.Book, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.books, nil
}

func (r *scriptedReader) Search(context.Context, api.SearchFilters) ([]api.CatalogBook, error) {
	return nil, nil
}

func (r *scriptedReader) Recommendations(context.Context, api.RecommendationFilters) ([]api.CatalogBook, error) {
	return nil, nil
}

func (r *scriptedReader) BookDetails(context.Context, string) (*api.CatalogBook, error) {
	return nil, nil
}

func (r *scriptedReader) Price(context.Context, string, string) (*api.PriceQuote, error) {
	return nil, nil
}

func (r *scriptedReader) Profile(context.Context) (*api.Profile, error) {
	return nil, nil
}

func TestRefresh_ReplacesStoreOnSuccess(t *testing.T) {
	reader := &scriptedReader{books: []api.Book{{ID: "b1", Status: api.StatusReading}}}
	queries := query.New(reader, query.NewCache())
	store := &collection.Store{}

	Refresh(context.Background(), store, queries, nil)

	snap := store.Snapshot()
	if !snap.Loaded || len(snap.Books) != 1 || snap.Books[0].ID != "b1" {
		t.Fatalf("snapshot = %#v, want loaded with b1", snap)
	}
}

func TestRefresh_RecordsErrorKeepingData(t *testing.T) {
	reader := &scriptedReader{books: []api.Book{{ID: "b1"}}}
	cache := query.NewCache()
	queries := query.New(reader, cache)
	store := &collection.Store{}

	Refresh(context.Background(), store, queries, nil)

	reader.err = errors.New("backend down")
	queries.InvalidateBooks()
	Refresh(context.Background(), store, queries, nil)

	snap := store.Snapshot()
	if len(snap.Books) != 1 {
		t.Fatalf("books dropped on error: %#v", snap.Books)
	}
	if snap.LastError == nil || snap.ConsecutiveFailures != 1 {
		t.Fatalf("failure not recorded: err=%v failures=%d", snap.LastError, snap.ConsecutiveFailures)
	}
}

func TestRefresh_MissingTokenLeavesStoreUntouched(t *testing.T) {
	reader := &scriptedReader{err: api.ErrNoToken}
	queries := query.New(reader, query.NewCache())
	store := &collection.Store{}

	Refresh(context.Background(), store, queries, nil)

	snap := store.Snapshot()
	if snap.Loaded || snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("logged-out refresh touched the store: %#v", snap)
	}
}

func TestStartRefresher_RefetchesOnChangeEvent(t *testing.T) {
	reader := &scriptedReader{books: []api.Book{{ID: "b1"}}}
	cache := query.NewCache()
	queries := query.New(reader, cache)
	store := &collection.Store{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changed := make(chan struct{}, 1)
	StartRefresher(ctx, store, queries, changed, 0, nil)

	changed <- struct{}{}

	deadline := time.After(time.Second)
	for {
		if snap := store.Snapshot(); snap.Loaded {
			if reader.calls != 1 {
				t.Fatalf("ListEntries calls = %d, want 1", reader.calls)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("refresher never refetched after change event")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures capped", 3, maxBackoff},
		{"many failures capped", 10, maxBackoff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, base)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	base := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, base)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, base, got, maxBackoff)
		}
	}
}
