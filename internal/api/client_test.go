package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_NormalizesAndKeepsPrefix(t *testing.T) {
	u, err := parseBaseURL("localhost:8080/api")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Host != "localhost:8080" {
		t.Fatalf("host = %q, want localhost:8080", u.Host)
	}
	if u.Path != "/api" {
		t.Fatalf("path = %q, want /api", u.Path)
	}

	u, err = parseBaseURL("https://books.example.com/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("  "); err == nil {
		t.Fatalf("parseBaseURL accepted empty url, want error")
	}
}

func TestClient_AttachesBearerTokenAndPrefix(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]Book{{ID: "b1", Title: "Dune", Status: StatusReading}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", StaticToken("tok-123"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	books, err := c.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries returned error: %v", err)
	}
	if len(books) != 1 || books[0].ID != "b1" || books[0].Status != StatusReading {
		t.Fatalf("ListEntries = %#v, want one READING entry b1", books)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotPath != "/api/book-entries" {
		t.Fatalf("path = %q, want /api/book-entries", gotPath)
	}
	if !strings.HasPrefix(gotAgent, "folio/") {
		t.Fatalf("User-Agent = %q, want folio/*", gotAgent)
	}
}

func TestClient_NoTokenFailsFastWithoutRequest(t *testing.T) {
	t.Parallel()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken(""))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.ListEntries(context.Background()); err != ErrNoToken {
		t.Fatalf("ListEntries error = %v, want ErrNoToken", err)
	}
	if _, err := c.UpdateStatus(context.Background(), "b1", StatusRead); err != ErrNoToken {
		t.Fatalf("UpdateStatus error = %v, want ErrNoToken", err)
	}
	if requests != 0 {
		t.Fatalf("server saw %d requests, want 0", requests)
	}
}

func TestClient_UpdateStatusUsesQueryParameter(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Book{ID: "b1", Status: StatusRead})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	book, err := c.UpdateStatus(context.Background(), "b1", StatusRead)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if book.Status != StatusRead {
		t.Fatalf("updated status = %q, want READ", book.Status)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("method = %q, want PATCH", gotMethod)
	}
	if gotPath != "/book-entries/b1/status" {
		t.Fatalf("path = %q, want /book-entries/b1/status", gotPath)
	}
	if gotQuery.Get("status") != "READ" {
		t.Fatalf("status query = %q, want READ", gotQuery.Get("status"))
	}
}

func TestClient_RemoveEntryAcceptsBothSuccessCodes(t *testing.T) {
	t.Parallel()

	code := http.StatusNoContent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if err := c.RemoveEntry(context.Background(), "b2"); err != nil {
		t.Fatalf("RemoveEntry(204) returned error: %v", err)
	}
	code = http.StatusOK
	if err := c.RemoveEntry(context.Background(), "b2"); err != nil {
		t.Fatalf("RemoveEntry(200) returned error: %v", err)
	}
	if err := c.RemoveEntry(context.Background(), " "); err == nil {
		t.Fatalf("RemoveEntry accepted blank id, want error")
	}
}

func TestClient_SearchAndRecommendationsEncodeFilters(t *testing.T) {
	t.Parallel()

	var gotSearch, gotRecs url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/external/books/search":
			gotSearch = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]CatalogBook{{ID: "g1", Title: "Dune"}})
		case "/external/books/recommendations":
			gotRecs = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]CatalogBook{})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	results, err := c.Search(context.Background(), SearchFilters{Title: "dune", Author: " Herbert ", Subject: ""})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "g1" {
		t.Fatalf("Search results = %#v, want one g1", results)
	}
	if gotSearch.Get("title") != "dune" || gotSearch.Get("author") != "Herbert" {
		t.Fatalf("search query = %v, want trimmed title/author", gotSearch)
	}
	if _, present := gotSearch["subject"]; present {
		t.Fatalf("search query includes empty subject: %v", gotSearch)
	}

	if _, err := c.Recommendations(context.Background(), RecommendationFilters{Subject: "sci-fi"}); err != nil {
		t.Fatalf("Recommendations returned error: %v", err)
	}
	if gotRecs.Get("subject") != "sci-fi" {
		t.Fatalf("recommendations query = %v, want subject=sci-fi", gotRecs)
	}
}

func TestClient_PriceAndDetails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/external/books/price":
			if r.URL.Query().Get("isbn") != "9780441013593" || r.URL.Query().Get("country") != "US" {
				t.Errorf("price query = %v", r.URL.Query())
			}
			_ = json.NewEncoder(w).Encode(PriceQuote{
				Saleability: "FOR_SALE",
				RetailPrice: &Money{Amount: 9.99, CurrencyCode: "USD"},
				BuyLink:     "https://example.com/buy",
			})
		case "/external/books/g1":
			_ = json.NewEncoder(w).Encode(CatalogBook{ID: "g1", Title: "Dune", Categories: []string{"Fiction"}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	quote, err := c.Price(context.Background(), "9780441013593", "US")
	if err != nil {
		t.Fatalf("Price returned error: %v", err)
	}
	if !quote.ForSale() || quote.RetailPrice == nil || quote.RetailPrice.Amount != 9.99 {
		t.Fatalf("Price quote = %#v, want for-sale 9.99", quote)
	}

	detail, err := c.BookDetails(context.Background(), "g1")
	if err != nil {
		t.Fatalf("BookDetails returned error: %v", err)
	}
	if detail.Title != "Dune" || detail.PrimarySubject() != "Fiction" {
		t.Fatalf("BookDetails = %#v, want Dune/Fiction", detail)
	}

	if _, err := c.Price(context.Background(), "", "US"); err == nil {
		t.Fatalf("Price accepted empty isbn, want error")
	}
}

func TestClient_LoginAndRegisterSkipAuth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header on %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "a@b.c" || body["password"] != "pw" {
				t.Errorf("login body = %v", body)
			}
			_ = json.NewEncoder(w).Encode(LoginResponse{Token: "tok-xyz"})
		case "/users":
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken(""))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	token, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if token != "tok-xyz" {
		t.Fatalf("token = %q, want tok-xyz", token)
	}
	if err := c.Register(context.Background(), "ada", "a@b.c", "pw"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/book-entries":
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Book already saved in your collection"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.AddEntry(context.Background(), AddEntryRequest{GoogleBookID: "g1", Title: "Dune", Status: StatusPlanToRead})
	if !IsDuplicate(err) {
		t.Fatalf("AddEntry error = %v, want duplicate classification", err)
	}
	if IsUnauthorized(err) || IsTransport(err) {
		t.Fatalf("duplicate error misclassified: %v", err)
	}

	_, err = c.ListEntries(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("ListEntries error = %v, want unauthorized classification", err)
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Fatalf("error %v missing server message", err)
	}

	_, err = c.Profile(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("Profile error = %v, want 500 StatusError", err)
	}

	// Transport failure: nothing listening.
	dead, err := NewClient("127.0.0.1:1", StaticToken("tok"))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = dead.ListEntries(context.Background())
	if !IsTransport(err) {
		t.Fatalf("dead ListEntries error = %v, want transport classification", err)
	}
}
