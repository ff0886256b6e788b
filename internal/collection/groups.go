package collection

import "github.com/folioapp/folio/internal/api"

// StatusOrder fixes the order status groups appear in the collection view.
var StatusOrder = []api.BookStatus{
	api.StatusPlanToRead,
	api.StatusReading,
	api.StatusPaused,
	api.StatusRead,
	api.StatusDropped,
	api.StatusRecommended,
}

// DisplayStatus maps a book's status to the group it is shown under. An
// unrecognized value (from an older or newer server) is grouped under READ
// for display only; the book's real status is never rewritten.
func DisplayStatus(s api.BookStatus) api.BookStatus {
	if s.Known() {
		return s
	}
	return api.StatusRead
}

// GroupByStatus buckets books by display status. Order within a bucket
// follows the input order.
func GroupByStatus(books []api.Book) map[api.BookStatus][]api.Book {
	groups := make(map[api.BookStatus][]api.Book)
	for _, b := range books {
		key := DisplayStatus(b.Status)
		groups[key] = append(groups[key], b)
	}
	return groups
}

// Flatten returns books in display order: group by group following
// StatusOrder, preserving input order inside each group. The UI cursor
// walks this flattened sequence.
func Flatten(books []api.Book) []api.Book {
	groups := GroupByStatus(books)
	out := make([]api.Book, 0, len(books))
	for _, status := range StatusOrder {
		out = append(out, groups[status]...)
	}
	return out
}
