package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/logging"
	"github.com/folioapp/folio/internal/query"
)

// maxBackoff caps the periodic refetch interval when the backend keeps
// failing.
const maxBackoff = 2 * time.Minute

// StartRefresher launches a background goroutine that refetches the
// collection into the store whenever a write publishes a change event, and
// on a periodic fallback tick when interval is positive. It returns
// immediately.
//
// Zero interval means event-driven only: the collection refetches after
// successful writes and otherwise stays as loaded, matching the
// invalidate-then-refetch contract of the cache layer. With polling
// enabled, consecutive failures stretch the tick exponentially up to
// maxBackoff so a down backend is not hammered.
func StartRefresher(ctx context.Context, store *collection.Store, queries *query.Queries, changed <-chan struct{}, interval time.Duration, log *logrus.Logger) {
	if log == nil {
		log = logging.Discard()
	}
	go func() {
		var timer *time.Timer
		var tick <-chan time.Time
		if interval > 0 {
			timer = time.NewTimer(interval)
			defer timer.Stop()
			tick = timer.C
		}

		rearm := func() {
			if timer == nil {
				return
			}
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				Refresh(ctx, store, queries, log)
				rearm()
			case <-tick:
				queries.InvalidateBooks()
				Refresh(ctx, store, queries, log)
				rearm()
			}
		}
	}()
}

// Refresh fetches the collection through the cache into the store. A
// missing session token is a normal logged-out state and leaves the store
// untouched; any other failure is recorded, keeping the previous data
// visible.
func Refresh(ctx context.Context, store *collection.Store, queries *query.Queries, log *logrus.Logger) {
	if log == nil {
		log = logging.Discard()
	}
	books, err := queries.Books(ctx)
	if err != nil {
		if errors.Is(err, api.ErrNoToken) {
			return
		}
		store.RecordError(err)
		log.WithError(err).Warn("collection refresh failed")
		return
	}
	store.Replace(books)
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff. Zero failures returns the base interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
