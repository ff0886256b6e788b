// Package api provides the HTTP client for the Book Reader backend.
//
// # Overview
//
// Every backend operation is one method on Client: collection reads and
// writes under /book-entries, external catalog lookups under /external/books,
// and the auth/profile endpoints. The client performs network I/O only; it
// holds no collection state (caching lives in internal/query, the in-memory
// collection in internal/collection).
//
// # Authentication
//
// Protected calls attach "Authorization: Bearer <token>", pulling the token
// from the injected TokenSource at call time. Login and Register are the
// only unauthenticated operations. When no token is available a protected
// call fails fast with ErrNoToken before any I/O, so callers that run
// without a session degrade gracefully instead of hitting the network.
//
// # Error taxonomy
//
// Failures fall into the categories the UI distinguishes:
//
//   - transport errors: wrapped as-is, detectable with IsTransport
//   - 401: session missing or expired, detectable with IsUnauthorized
//   - 400 "already saved": duplicate add, detectable with IsDuplicate
//   - any other non-2xx: *StatusError with the decoded server message
//
// # Base URL
//
// The base URL comes from configuration (e.g. http://localhost:8080/api)
// and may carry a path prefix; request paths are appended beneath it.
package api
