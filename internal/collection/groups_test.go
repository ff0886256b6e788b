package collection

import (
	"testing"

	"github.com/folioapp/folio/internal/api"
)

func TestDisplayStatus_CoercesUnknownToRead(t *testing.T) {
	for _, s := range api.AllStatuses {
		if DisplayStatus(s) != s {
			t.Fatalf("DisplayStatus(%s) changed a recognized status", s)
		}
	}
	if got := DisplayStatus(api.StatusWishlist); got != api.StatusRead {
		t.Fatalf("DisplayStatus(WISHLIST) = %s, want READ", got)
	}
	if got := DisplayStatus("SOMETHING_NEW"); got != api.StatusRead {
		t.Fatalf("DisplayStatus(unknown) = %s, want READ", got)
	}
}

func TestGroupByStatus_CoercionIsDisplayOnly(t *testing.T) {
	books := []api.Book{
		{ID: "b1", Status: api.StatusReading},
		{ID: "b2", Status: "WISHLIST"},
		{ID: "b3", Status: api.StatusRead},
	}
	groups := GroupByStatus(books)

	read := groups[api.StatusRead]
	if len(read) != 2 {
		t.Fatalf("READ group = %d books, want 2 (own + coerced)", len(read))
	}
	// The grouped book keeps its real status; only the bucket changed.
	if read[0].Status != "WISHLIST" {
		t.Fatalf("coerced book status = %q, want original WISHLIST preserved", read[0].Status)
	}
	if len(groups[api.StatusReading]) != 1 {
		t.Fatalf("READING group = %d, want 1", len(groups[api.StatusReading]))
	}
}

func TestFlatten_FollowsStatusOrder(t *testing.T) {
	books := []api.Book{
		{ID: "dropped", Status: api.StatusDropped},
		{ID: "plan1", Status: api.StatusPlanToRead},
		{ID: "reading", Status: api.StatusReading},
		{ID: "plan2", Status: api.StatusPlanToRead},
	}
	flat := Flatten(books)

	want := []string{"plan1", "plan2", "reading", "dropped"}
	if len(flat) != len(want) {
		t.Fatalf("Flatten length = %d, want %d", len(flat), len(want))
	}
	for i, id := range want {
		if flat[i].ID != id {
			t.Fatalf("Flatten[%d] = %q, want %q (full: %#v)", i, flat[i].ID, id, flat)
		}
	}
}

func TestSelection(t *testing.T) {
	var sel Selection

	if _, ok := sel.Current(); ok {
		t.Fatal("fresh selection should be empty")
	}

	sel.Select(api.Book{ID: "b1", Title: "Dune"})
	got, ok := sel.Current()
	if !ok || got.ID != "b1" {
		t.Fatalf("Current = %#v, %v; want b1", got, ok)
	}

	// Select replaces, Clear empties.
	sel.Select(api.Book{ID: "b2"})
	got, _ = sel.Current()
	if got.ID != "b2" {
		t.Fatalf("Current = %q after reselect, want b2", got.ID)
	}
	sel.Clear()
	if _, ok := sel.Current(); ok {
		t.Fatal("selection should be empty after Clear")
	}
}
