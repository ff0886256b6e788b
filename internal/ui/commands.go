package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/query"
)

// toastLevel classifies the footer message.
type toastLevel int

const (
	toastInfo toastLevel = iota
	toastWarn
	toastError
)

type toast struct {
	text  string
	level toastLevel
}

const toastLifetime = 4 * time.Second

type (
	// storeChangedMsg re-arms its own subscription channel after delivery.
	storeChangedMsg struct{ ch <-chan struct{} }

	toastClearMsg struct{ seq int }

	searchDoneMsg struct {
		results []api.CatalogBook
		err     error
	}

	recDoneMsg struct {
		results []api.CatalogBook
		err     error
	}

	priceDoneMsg struct {
		quote *api.PriceQuote
		err   error
	}

	profileDoneMsg struct {
		profile *api.Profile
		err     error
	}

	detailDoneMsg struct {
		book *api.CatalogBook
		err  error
	}

	// writeDoneMsg reports a coordinator write. verb reads as a past-tense
	// toast fragment ("removed", "moved to Reading", "added").
	writeDoneMsg struct {
		verb string
		err  error
	}

	authDoneMsg struct {
		registered bool
		err        error
	}

	refreshDoneMsg struct{ err error }
)

func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{ch: ch}
	}
}

func clearToastLater(seq int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return toastClearMsg{seq: seq}
	})
}

func runSearch(ctx context.Context, queries *query.Queries, filters api.SearchFilters) tea.Cmd {
	return func() tea.Msg {
		results, err := queries.Search(ctx, filters)
		return searchDoneMsg{results: results, err: err}
	}
}

func runRecommendations(ctx context.Context, queries *query.Queries, filters api.RecommendationFilters) tea.Cmd {
	return func() tea.Msg {
		results, err := queries.Recommendations(ctx, filters)
		return recDoneMsg{results: results, err: err}
	}
}

func runPriceLookup(ctx context.Context, queries *query.Queries, isbn, country string) tea.Cmd {
	return func() tea.Msg {
		quote, err := queries.Price(ctx, isbn, country)
		return priceDoneMsg{quote: quote, err: err}
	}
}

func fetchProfile(ctx context.Context, queries *query.Queries) tea.Cmd {
	return func() tea.Msg {
		profile, err := queries.Profile(ctx)
		return profileDoneMsg{profile: profile, err: err}
	}
}

func fetchDetails(ctx context.Context, queries *query.Queries, googleBookID string) tea.Cmd {
	return func() tea.Msg {
		book, err := queries.Details(ctx, googleBookID)
		return detailDoneMsg{book: book, err: err}
	}
}

func refreshCollection(ctx context.Context, queries *query.Queries, store *collection.Store) tea.Cmd {
	return func() tea.Msg {
		queries.InvalidateBooks()
		books, err := queries.Books(ctx)
		if err != nil {
			return refreshDoneMsg{err: err}
		}
		store.Replace(books)
		return refreshDoneMsg{}
	}
}

func setStatus(ctx context.Context, c *collection.Coordinator, id string, status api.BookStatus) tea.Cmd {
	return func() tea.Msg {
		err := c.SetStatus(ctx, id, status)
		return writeDoneMsg{verb: "moved to " + status.Label(), err: err}
	}
}

func removeBook(ctx context.Context, c *collection.Coordinator, id string) tea.Cmd {
	return func() tea.Msg {
		err := c.Remove(ctx, id)
		return writeDoneMsg{verb: "removed", err: err}
	}
}

func addBook(ctx context.Context, c *collection.Coordinator, req api.AddEntryRequest) tea.Cmd {
	return func() tea.Msg {
		err := c.Add(ctx, req)
		return writeDoneMsg{verb: "added", err: err}
	}
}

func login(ctx context.Context, client *api.Client, sessions tokenSaver, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := client.Login(ctx, email, password)
		if err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{err: sessions.SetToken(token)}
	}
}

func register(ctx context.Context, client *api.Client, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := client.Register(ctx, username, email, password)
		return authDoneMsg{registered: true, err: err}
	}
}

// tokenSaver is the slice of session.Manager the login command needs.
type tokenSaver interface {
	SetToken(token string) error
}
