package collection

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/logging"
	"github.com/folioapp/folio/internal/query"
)

// Coordinator runs collection writes with optimistic local updates.
//
// Status changes and removals mutate the store before the network call so
// the UI reflects the change without delay; on failure the pre-change
// snapshot is restored exactly. Writes to the same entity are serialized
// through a per-entity lock, so a rapid second change to one book cannot
// clobber the rollback snapshot of the first while writes to distinct books
// proceed concurrently.
//
// Every successful write invalidates the cached collection list and
// publishes a change event for the refresher.
type Coordinator struct {
	store  *Store
	client api.Writer
	cache  *query.Cache
	log    *logrus.Logger

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	changed chan struct{}
}

// NewCoordinator wires a coordinator over the store, write client, and
// read cache. log may be nil.
func NewCoordinator(store *Store, client api.Writer, cache *query.Cache, log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logging.Discard()
	}
	return &Coordinator{
		store:   store,
		client:  client,
		cache:   cache,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
		changed: make(chan struct{}, 1),
	}
}

// Changed returns the collection-changed event channel: one coalesced
// signal per successful write. The refresher subscribes to it and refetches
// the authoritative list.
func (c *Coordinator) Changed() <-chan struct{} {
	return c.changed
}

// SetStatus optimistically changes a book's reading status, then confirms
// it with the server. On failure the previous status is restored and the
// error returned.
func (c *Coordinator) SetStatus(ctx context.Context, id string, status api.BookStatus) error {
	unlock := c.lockEntity(id)
	defer unlock()

	rollback, ok := c.store.ApplyStatus(id, status)
	if !ok {
		return fmt.Errorf("book %s is not in the collection", id)
	}

	if _, err := c.client.UpdateStatus(ctx, id, status); err != nil {
		rollback()
		c.log.WithFields(logrus.Fields{"book": id, "status": status}).
			WithError(err).Warn("status update rolled back")
		return err
	}

	c.log.WithFields(logrus.Fields{"book": id, "status": status}).Debug("status updated")
	c.publish()
	return nil
}

// Remove optimistically removes a book, then confirms with the server. On
// failure the book reappears at its original position with its original
// fields.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	unlock := c.lockEntity(id)
	defer unlock()

	rollback, ok := c.store.ApplyRemove(id)
	if !ok {
		return fmt.Errorf("book %s is not in the collection", id)
	}

	if err := c.client.RemoveEntry(ctx, id); err != nil {
		rollback()
		c.log.WithField("book", id).WithError(err).Warn("removal rolled back")
		return err
	}

	c.log.WithField("book", id).Debug("book removed")
	c.publish()
	return nil
}

// Add sends an add-to-collection write. It is not optimistic: the entry id
// is server-assigned, so the local copy only updates through the refetch
// triggered on success. A duplicate rejection surfaces unchanged for the
// caller to classify with api.IsDuplicate.
func (c *Coordinator) Add(ctx context.Context, req api.AddEntryRequest) error {
	if _, err := c.client.AddEntry(ctx, req); err != nil {
		return err
	}
	c.log.WithField("googleBookId", req.GoogleBookID).Debug("book added")
	c.publish()
	return nil
}

// publish invalidates the cached collection list and emits one coalesced
// change event.
func (c *Coordinator) publish() {
	c.cache.Invalidate(query.CollectionKey)
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

func (c *Coordinator) lockEntity(id string) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
