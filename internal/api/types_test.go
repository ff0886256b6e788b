package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBookStatus_KnownAndLabel(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Known() {
			t.Fatalf("%s should be known", s)
		}
		if s.Label() == string(s) {
			t.Fatalf("%s has no human label", s)
		}
	}
	if StatusWishlist.Known() {
		t.Fatalf("WISHLIST should parse but not be a current status")
	}
	if BookStatus("ARCHIVED").Known() {
		t.Fatalf("unrecognized status reported as known")
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want BookStatus
		ok   bool
	}{
		{"READING", StatusReading, true},
		{"reading", StatusReading, true},
		{"plan to read", StatusPlanToRead, true},
		{"plan-to-read", StatusPlanToRead, true},
		{" Read ", StatusRead, true},
		{"wishlist", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCatalogBook_PrimarySubject(t *testing.T) {
	b := CatalogBook{Subject: "Politics"}
	if got := b.PrimarySubject(); got != "Politics" {
		t.Fatalf("PrimarySubject = %q, want Politics", got)
	}
	b = CatalogBook{Categories: []string{"Fiction", "Classics"}}
	if got := b.PrimarySubject(); got != "Fiction" {
		t.Fatalf("PrimarySubject = %q, want first category", got)
	}
	b = CatalogBook{}
	if got := b.PrimarySubject(); got != "Unknown" {
		t.Fatalf("PrimarySubject = %q, want Unknown", got)
	}
}

func TestAddEntryFromCatalog_Fallbacks(t *testing.T) {
	req := AddEntryFromCatalog(CatalogBook{ID: "g1", Title: "Dune"}, StatusPlanToRead)
	if req.GoogleBookID != "g1" || req.Status != StatusPlanToRead {
		t.Fatalf("request = %#v", req)
	}
	if len(req.Authors) != 1 || req.Authors[0] != "Unknown Author" {
		t.Fatalf("authors = %v, want Unknown Author fallback", req.Authors)
	}
	if len(req.Subject) != 1 || req.Subject[0] != "Unknown" {
		t.Fatalf("subject = %v, want [Unknown] fallback", req.Subject)
	}
}

func TestCatalogBook_SubjectList(t *testing.T) {
	cases := []struct {
		name string
		book CatalogBook
		want []string
	}{
		{"explicit subject wins", CatalogBook{Subject: "Politics", Categories: []string{"Fiction"}}, []string{"Politics"}},
		{"categories carried whole", CatalogBook{Categories: []string{"Fiction", "Classics"}}, []string{"Fiction", "Classics"}},
		{"nothing set", CatalogBook{}, []string{"Unknown"}},
		{"blank subject falls through", CatalogBook{Subject: "  ", Categories: []string{"Fiction"}}, []string{"Fiction"}},
	}
	for _, tc := range cases {
		got := tc.book.SubjectList()
		if len(got) != len(tc.want) {
			t.Fatalf("%s: SubjectList = %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: SubjectList = %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestAddEntryRequest_SubjectMarshalsAsArray(t *testing.T) {
	req := AddEntryFromCatalog(CatalogBook{ID: "g1", Title: "Dune", Categories: []string{"Fiction"}}, StatusPlanToRead)
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"subject":["Fiction"]`) {
		t.Fatalf("body = %s, want subject as an array", raw)
	}
}

func TestSearchFilters_Empty(t *testing.T) {
	if !(SearchFilters{Subject: "sci-fi"}).Empty() {
		t.Fatalf("subject alone should not enable a search")
	}
	if (SearchFilters{Title: "dune"}).Empty() || (SearchFilters{Author: "herbert"}).Empty() {
		t.Fatalf("title or author should enable a search")
	}
	if !(SearchFilters{Title: "  "}).Empty() {
		t.Fatalf("whitespace-only title should count as empty")
	}
}

func TestPriceQuote_ForSale(t *testing.T) {
	if !(PriceQuote{Saleability: "FOR_SALE"}).ForSale() {
		t.Fatalf("FOR_SALE not recognized")
	}
	if (PriceQuote{Saleability: "NOT_FOR_SALE"}).ForSale() {
		t.Fatalf("NOT_FOR_SALE treated as for sale")
	}
}
