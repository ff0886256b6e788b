// Package collection holds the client-side copy of the user's tracked
// books and keeps it consistent with the server.
//
// # Overview
//
// Three pieces cooperate:
//
//   - Store: thread-safe container for the cached collection. The
//     background refresher replaces its contents with server data;
//     optimistic writes mutate it in place and receive a Rollback for the
//     failure path. Subscribers get a coalesced signal on every visible
//     change.
//   - Coordinator: runs writes. Status changes and removals apply locally
//     first so the UI updates without waiting on the network, then confirm
//     with the server; on failure the pre-change snapshot is restored
//     exactly. Successful writes invalidate the cached list and publish a
//     "collection changed" event that triggers a refetch.
//   - Selection: the tab-lifetime holder of the currently inspected book
//     for the detail overlay.
//
// # Rollback composition
//
// Each optimistic operation snapshots only the entity it touches: a status
// rollback restores one book's previous status, a removal rollback
// reinserts one book at its original index. Overlapping writes to the same
// entity are additionally serialized through a per-entity lock in the
// Coordinator, so a rapid second change cannot capture (or clobber) a
// snapshot from mid-flight state. Writes to distinct books run
// concurrently.
//
// # Display grouping
//
// GroupByStatus buckets books for rendering in the fixed StatusOrder. A
// status value the client does not recognize is shown under READ; the
// underlying book keeps its real status and the coerced value is never
// persisted.
package collection
