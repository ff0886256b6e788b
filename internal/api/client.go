package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for protected calls. An empty
// string means no session exists.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource, mainly for tests and one-shot calls.
type StaticToken string

// Token returns the fixed token value.
func (t StaticToken) Token() string { return string(t) }

// Reader is the read-only surface of the backend, implemented by *Client.
type Reader interface {
	ListEntries(ctx context.Context) ([]Book, error)
	Search(ctx context.Context, filters SearchFilters) ([]CatalogBook, error)
	Recommendations(ctx context.Context, filters RecommendationFilters) ([]CatalogBook, error)
	BookDetails(ctx context.Context, googleBookID string) (*CatalogBook, error)
	Price(ctx context.Context, isbn, country string) (*PriceQuote, error)
	Profile(ctx context.Context) (*Profile, error)
}

// Writer is the mutating surface of the backend, implemented by *Client.
type Writer interface {
	AddEntry(ctx context.Context, req AddEntryRequest) (*Book, error)
	RemoveEntry(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status BookStatus) (*Book, error)
}

var (
	_ Reader = (*Client)(nil)
	_ Writer = (*Client)(nil)
)

// Client talks to the Book Reader HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	defaultUserAgent = "folio/0.1"
	requestTimeout   = 15 * time.Second
)

// NewClient builds a Client for the given base URL. Every protected request
// pulls its bearer token from tokens at call time, so a login performed
// after construction is picked up without rebuilding the client.
func NewClient(baseURL string, tokens TokenSource) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		tokens:    tokens,
		userAgent: defaultUserAgent,
	}, nil
}

// ListEntries retrieves the authenticated user's collection.
func (c *Client) ListEntries(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.get(ctx, "/book-entries", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// AddEntry adds a catalog book to the collection. A 400 "already saved"
// rejection is detectable with IsDuplicate.
func (c *Client) AddEntry(ctx context.Context, req AddEntryRequest) (*Book, error) {
	var book Book
	if err := c.send(ctx, http.MethodPost, &url.URL{Path: "/book-entries"}, req, &book, true); err != nil {
		return nil, err
	}
	return &book, nil
}

// RemoveEntry deletes a collection entry. The backend answers 200 or 204 on
// success; both are accepted.
func (c *Client) RemoveEntry(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("book id required")
	}
	rel := &url.URL{Path: "/book-entries/" + url.PathEscape(id)}
	return c.send(ctx, http.MethodDelete, rel, nil, nil, true)
}

// UpdateStatus changes a collection entry's reading status. The backend
// takes the new status as a query parameter, not a body.
func (c *Client) UpdateStatus(ctx context.Context, id string, status BookStatus) (*Book, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("book id required")
	}
	rel := &url.URL{
		Path:     "/book-entries/" + url.PathEscape(id) + "/status",
		RawQuery: url.Values{"status": []string{string(status)}}.Encode(),
	}
	var book Book
	if err := c.send(ctx, http.MethodPatch, rel, nil, &book, true); err != nil {
		return nil, err
	}
	return &book, nil
}

// Search queries the external catalog. At least one of title or author must
// be set; the query layer enforces that before calling here.
func (c *Client) Search(ctx context.Context, filters SearchFilters) ([]CatalogBook, error) {
	values := url.Values{}
	if title := strings.TrimSpace(filters.Title); title != "" {
		values.Set("title", title)
	}
	if author := strings.TrimSpace(filters.Author); author != "" {
		values.Set("author", author)
	}
	if subject := strings.TrimSpace(filters.Subject); subject != "" {
		values.Set("subject", subject)
	}
	var results []CatalogBook
	if err := c.get(ctx, "/external/books/search", values, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Recommendations retrieves aggregated catalog recommendations.
func (c *Client) Recommendations(ctx context.Context, filters RecommendationFilters) ([]CatalogBook, error) {
	values := url.Values{}
	if title := strings.TrimSpace(filters.Title); title != "" {
		values.Set("title", title)
	}
	if subject := strings.TrimSpace(filters.Subject); subject != "" {
		values.Set("subject", subject)
	}
	var results []CatalogBook
	if err := c.get(ctx, "/external/books/recommendations", values, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// BookDetails retrieves the full catalog record for a Google Books volume.
func (c *Client) BookDetails(ctx context.Context, googleBookID string) (*CatalogBook, error) {
	if strings.TrimSpace(googleBookID) == "" {
		return nil, fmt.Errorf("google book id required")
	}
	var detail CatalogBook
	if err := c.get(ctx, "/external/books/"+url.PathEscape(googleBookID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Price looks up retail pricing for an ISBN in the given country.
func (c *Client) Price(ctx context.Context, isbn, country string) (*PriceQuote, error) {
	if strings.TrimSpace(isbn) == "" {
		return nil, fmt.Errorf("isbn required")
	}
	values := url.Values{}
	values.Set("isbn", strings.TrimSpace(isbn))
	if country = strings.TrimSpace(country); country != "" {
		values.Set("country", country)
	}
	var quote PriceQuote
	if err := c.get(ctx, "/external/books/price", values, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// Profile retrieves the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login exchanges credentials for a bearer token. Unauthenticated.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.send(ctx, http.MethodPost, &url.URL{Path: "/auth/login"}, body, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response missing token")
	}
	return resp.Token, nil
}

// Register creates a new account. Unauthenticated.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.send(ctx, http.MethodPost, &url.URL{Path: "/users"}, body, nil, false)
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dest any) error {
	rel := &url.URL{Path: path}
	if len(values) > 0 {
		rel.RawQuery = values.Encode()
	}
	return c.send(ctx, http.MethodGet, rel, nil, dest, true)
}

func (c *Client) send(ctx context.Context, method string, rel *url.URL, body, dest any, protected bool) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	token := ""
	if protected {
		token = strings.TrimSpace(c.tokens.Token())
		if token == "" {
			return ErrNoToken
		}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	// ResolveReference drops the base path for rooted references; re-apply it
	// so a base of http://host/api keeps its /api prefix.
	if basePath := c.baseURL.Path; basePath != "" && strings.HasPrefix(rel.Path, "/") {
		reqURL.Path = strings.TrimSuffix(basePath, "/") + rel.Path
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{
			Code:    resp.StatusCode,
			Path:    rel.Path,
			Message: decodeErrorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeErrorMessage pulls the human-readable message out of an error body.
// The backend uses both {"error": ...} and {"message": ...} shapes.
func decodeErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 8<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", baseURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
