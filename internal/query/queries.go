package query

import (
	"context"
	"strings"

	"github.com/folioapp/folio/internal/api"
)

// Queries bundles the API client with the cache and encodes per-operation
// enablement rules: a read whose required inputs are absent is not executed
// at all.
type Queries struct {
	client api.Reader
	cache  *Cache
}

// New wires a Queries layer over client and cache.
func New(client api.Reader, cache *Cache) *Queries {
	return &Queries{client: client, cache: cache}
}

// Cache exposes the underlying cache for invalidation by the write path.
func (q *Queries) Cache() *Cache { return q.cache }

// Books returns the user's collection, cached under CollectionKey.
func (q *Queries) Books(ctx context.Context) ([]api.Book, error) {
	return Lookup(ctx, q.cache, CollectionKey, func(ctx context.Context) ([]api.Book, error) {
		return q.client.ListEntries(ctx)
	})
}

// InvalidateBooks marks the collection list stale; the next Books call (or
// the refresher) refetches it.
func (q *Queries) InvalidateBooks() {
	q.cache.Invalidate(CollectionKey)
}

// Search queries the external catalog. With neither title nor author set
// the search is disabled: no request is issued and an empty result is
// returned immediately.
func (q *Queries) Search(ctx context.Context, filters api.SearchFilters) ([]api.CatalogBook, error) {
	if filters.Empty() {
		return []api.CatalogBook{}, nil
	}
	key := KeyFor("search",
		strings.TrimSpace(filters.Title),
		strings.TrimSpace(filters.Author),
		strings.TrimSpace(filters.Subject))
	return Lookup(ctx, q.cache, key, func(ctx context.Context) ([]api.CatalogBook, error) {
		return q.client.Search(ctx, filters)
	})
}

// Recommendations returns aggregated catalog recommendations for the given
// filters, cached per filter tuple.
func (q *Queries) Recommendations(ctx context.Context, filters api.RecommendationFilters) ([]api.CatalogBook, error) {
	key := KeyFor("recommendations",
		strings.TrimSpace(filters.Title),
		strings.TrimSpace(filters.Subject))
	return Lookup(ctx, q.cache, key, func(ctx context.Context) ([]api.CatalogBook, error) {
		return q.client.Recommendations(ctx, filters)
	})
}

// Profile returns the authenticated user's profile, cached for the session.
func (q *Queries) Profile(ctx context.Context) (*api.Profile, error) {
	return Lookup(ctx, q.cache, KeyFor("profile"), func(ctx context.Context) (*api.Profile, error) {
		return q.client.Profile(ctx)
	})
}

// Details fetches the full catalog record for a volume. Detail lookups are
// driven by an open overlay and not cached, matching how the collection
// views use them.
func (q *Queries) Details(ctx context.Context, googleBookID string) (*api.CatalogBook, error) {
	return q.client.BookDetails(ctx, googleBookID)
}

// Price looks up retail pricing; transient, never cached.
func (q *Queries) Price(ctx context.Context, isbn, country string) (*api.PriceQuote, error) {
	return q.client.Price(ctx, isbn, country)
}
