package api

import "strings"

// BookStatus is the user's reading-progress classification for a book.
type BookStatus string

// Recognized reading statuses, in the order the collection view groups them.
const (
	StatusPlanToRead  BookStatus = "PLAN_TO_READ"
	StatusReading     BookStatus = "READING"
	StatusPaused      BookStatus = "PAUSED"
	StatusRead        BookStatus = "READ"
	StatusDropped     BookStatus = "DROPPED"
	StatusRecommended BookStatus = "RECOMMENDED"

	// StatusWishlist appears in payloads written by an older server
	// version. It parses but is never sent by this client.
	StatusWishlist BookStatus = "WISHLIST"
)

// AllStatuses lists every status the client will offer when changing a
// book's classification.
var AllStatuses = []BookStatus{
	StatusPlanToRead,
	StatusReading,
	StatusPaused,
	StatusRead,
	StatusDropped,
	StatusRecommended,
}

// Known reports whether s is one of the six currently-recognized statuses.
func (s BookStatus) Known() bool {
	switch s {
	case StatusPlanToRead, StatusReading, StatusPaused, StatusRead,
		StatusDropped, StatusRecommended:
		return true
	}
	return false
}

// Label returns the human-readable form of a status.
func (s BookStatus) Label() string {
	switch s {
	case StatusPlanToRead:
		return "Plan to Read"
	case StatusReading:
		return "Reading"
	case StatusPaused:
		return "Paused"
	case StatusRead:
		return "Read"
	case StatusDropped:
		return "Dropped"
	case StatusRecommended:
		return "Recommended"
	case StatusWishlist:
		return "Wishlist"
	}
	return string(s)
}

// ParseStatus matches user input (flag values, key presses) against the
// recognized statuses, accepting labels, constant names, and lowercase or
// hyphenated spellings.
func ParseStatus(value string) (BookStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, s := range AllStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	return "", false
}

// Book is a collection entry as returned by /book-entries. The server owns
// the authoritative copy; anything held client-side is a cache.
type Book struct {
	ID            string     `json:"id"`
	GoogleBookID  string     `json:"googleBookId,omitempty"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	ThumbnailURL  string     `json:"thumbnailUrl,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	Description   string     `json:"description,omitempty"`
	InfoLink      string     `json:"infoLink,omitempty"`
	Categories    []string   `json:"categories,omitempty"`
	AverageRating *float64   `json:"averageRating,omitempty"`
	RatingsCount  *int       `json:"ratingsCount,omitempty"`
	Status        BookStatus `json:"status"`
}

// CatalogBook is a search, recommendation, or detail result from the
// external catalog: the descriptive shape of a Book without a status.
// ID here is the Google Books volume id.
type CatalogBook struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Description   string   `json:"description,omitempty"`
	InfoLink      string   `json:"infoLink,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	RatingsCount  *int     `json:"ratingsCount,omitempty"`
}

// PrimarySubject returns the subject to display for a catalog result: the
// explicit subject when set, otherwise the first category, otherwise
// "Unknown".
func (b CatalogBook) PrimarySubject() string {
	if s := strings.TrimSpace(b.Subject); s != "" {
		return s
	}
	if len(b.Categories) > 0 && strings.TrimSpace(b.Categories[0]) != "" {
		return b.Categories[0]
	}
	return "Unknown"
}

// Money is a price amount with its ISO currency code.
type Money struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

// PriceQuote is the transient result of an ISBN+country price lookup.
type PriceQuote struct {
	Saleability string `json:"saleability"`
	ListPrice   *Money `json:"listPrice,omitempty"`
	RetailPrice *Money `json:"retailPrice,omitempty"`
	BuyLink     string `json:"buyLink,omitempty"`
}

// ForSale reports whether the catalog offers the volume for purchase.
func (q PriceQuote) ForSale() bool {
	return strings.EqualFold(q.Saleability, "FOR_SALE")
}

// Profile describes the authenticated user.
type Profile struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AddEntryRequest is the body of POST /book-entries. The backend takes
// subject as an array.
type AddEntryRequest struct {
	GoogleBookID  string     `json:"googleBookId"`
	Title         string     `json:"title"`
	Subject       []string   `json:"subject"`
	Authors       []string   `json:"authors"`
	ThumbnailURL  string     `json:"thumbnailUrl"`
	AverageRating *float64   `json:"averageRating,omitempty"`
	Status        BookStatus `json:"status"`
}

// SubjectList returns the subject array an add request carries: the explicit
// subject when set, otherwise the categories, otherwise ["Unknown"].
func (b CatalogBook) SubjectList() []string {
	if s := strings.TrimSpace(b.Subject); s != "" {
		return []string{s}
	}
	if len(b.Categories) > 0 {
		return b.Categories
	}
	return []string{"Unknown"}
}

// AddEntryFromCatalog builds an add request from a catalog result, filling
// the fallbacks the collection expects for sparse catalog data.
func AddEntryFromCatalog(b CatalogBook, status BookStatus) AddEntryRequest {
	authors := b.Authors
	if len(authors) == 0 {
		authors = []string{"Unknown Author"}
	}
	return AddEntryRequest{
		GoogleBookID:  b.ID,
		Title:         b.Title,
		Subject:       b.SubjectList(),
		Authors:       authors,
		ThumbnailURL:  b.ThumbnailURL,
		AverageRating: b.AverageRating,
		Status:        status,
	}
}

// SearchFilters narrow an external catalog search. Empty fields are omitted
// from the query string.
type SearchFilters struct {
	Title   string
	Author  string
	Subject string
}

// Empty reports whether no usable filter is present. Search requires at
// least a title or an author.
func (f SearchFilters) Empty() bool {
	return strings.TrimSpace(f.Title) == "" && strings.TrimSpace(f.Author) == ""
}

// RecommendationFilters narrow a recommendations request.
type RecommendationFilters struct {
	Title   string
	Subject string
}

// LoginResponse carries the bearer token minted at login.
type LoginResponse struct {
	Token string `json:"token"`
}
