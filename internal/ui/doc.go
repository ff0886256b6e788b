// Package ui implements the Folio terminal interface on Bubble Tea.
//
// # Layout
//
// The screen is a header (connection state, book count, last update), a tab
// bar, the active view, and a footer carrying either command hints or a
// short-lived toast. Five tabs cycle with Tab/Shift+Tab: Collection,
// Search, Recommendations, Price, and Profile. A sign-in view replaces the
// tabs while no session token exists.
//
// # Data flow
//
// The model never talks to the network inside Update. Reads go through
// query.Queries commands that resolve into *DoneMsg messages; writes go
// through the collection.Coordinator, which applies optimistic changes to
// the store before the request and rolls them back on failure. A
// subscription on the store delivers a coalesced redraw signal for every
// visible change, so optimistic applies and rollbacks appear without
// polling.
//
// # Auth
//
// Any 401 from the backend expires the persisted session, resets the read
// cache, and drops the user onto the sign-in view. Login and signup run
// against the unauthenticated endpoints; a minted token is handed to the
// session manager, which the API client consults on every call.
package ui
