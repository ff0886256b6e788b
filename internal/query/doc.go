// Package query implements the client-side read cache.
//
// # Overview
//
// Each distinct read operation (collection list, catalog search,
// recommendations, profile) is cached under a Key derived from the
// operation name and its parameters. Reads are served from cache while the
// entry is fresh; a write invalidates the collection key on success, and
// the next read (or the background refresher) refetches.
//
// # De-duplication
//
// Concurrent lookups under one key are collapsed into a single in-flight
// fetch via golang.org/x/sync/singleflight. Two views asking for the same
// data at the same moment produce exactly one network request, and both
// observe the same resolved result. Writes are not de-duplicated; issuing
// the same write twice sends it twice.
//
// # Failure semantics
//
//   - A failed read keeps the previous cached value (invalidation marks an
//     entry stale instead of deleting it) and returns that stale value
//     together with the error, so views can keep rendering data while
//     showing the failure.
//   - A failed write never touches the cache: no invalidation, no refetch.
//
// # Disabled reads
//
// A read whose required inputs are missing is not executed: Search with
// neither title nor author returns an empty slice with no network call, and
// any read without a session token fails fast in the api client before I/O.
package query
