package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/query"
	"github.com/folioapp/folio/internal/session"
)

// Options carries everything the TUI needs, injected by the app package.
type Options struct {
	Client      *api.Client
	Queries     *query.Queries
	Store       *collection.Store
	Coordinator *collection.Coordinator
	Selection   *collection.Selection
	Sessions    *session.Manager
	Config      config.Config
	Log         *logrus.Logger
}

// view identifies the active tab.
type view int

const (
	viewCollection view = iota
	viewSearch
	viewRecommend
	viewPrice
	viewProfile
	viewLogin
)

// tabOrder is the Tab/Shift+Tab cycle. Login is reached through auth state,
// not the cycle.
var tabOrder = []view{viewCollection, viewSearch, viewRecommend, viewPrice, viewProfile}

func (v view) title() string {
	switch v {
	case viewCollection:
		return "Collection"
	case viewSearch:
		return "Search"
	case viewRecommend:
		return "Recommendations"
	case viewPrice:
		return "Price"
	case viewProfile:
		return "Profile"
	case viewLogin:
		return "Sign In"
	}
	return ""
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	opts   Options
	keys   keyMap
	theme  Theme
	styles Styles

	width  int
	height int

	view     view
	showHelp bool
	toast    toast
	toastSeq int

	// Collection tab. rows is the grouped, flattened snapshot the cursor
	// walks.
	snapshot collection.Snapshot
	rows     []api.Book
	cursor   int

	// Detail overlay over whichever list is active.
	detailOpen    bool
	detailLoading bool
	detailFrom    view
	detail        *api.CatalogBook

	// Status picker overlay.
	pickOpen   bool
	pickCursor int
	pickBookID string

	// Search tab.
	searchInputs  []textinput.Model // title, author, subject
	searchFocus   int
	searchOnList  bool
	searchResults []api.CatalogBook
	searchCursor  int
	searchBusy    bool

	// Recommendations tab.
	recInputs []textinput.Model // title, subject
	recFocus  int
	recOnList bool
	recRows   []api.CatalogBook
	recCursor int
	recBusy   bool

	// Price tab.
	priceInput textinput.Model
	priceQuote *api.PriceQuote
	priceBusy  bool

	// Profile tab.
	profile *api.Profile

	// Auth view. registering switches the form between login and signup.
	registering bool
	authInputs  []textinput.Model // username (signup only), email, password
	authFocus   int
	authBusy    bool
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newModel(ctx context.Context, opts Options) Model {
	theme := GetTheme("Dracula")

	m := Model{
		ctx:    ctx,
		opts:   opts,
		keys:   DefaultKeyMap(),
		theme:  theme,
		styles: theme.Styles(),
		view:   viewCollection,
	}

	m.searchInputs = makeInputs("Title", "Author", "Subject")
	m.recInputs = makeInputs("Title", "Subject")

	m.priceInput = textinput.New()
	m.priceInput.Placeholder = "ISBN"
	m.priceInput.CharLimit = 17

	m.resetAuthInputs()

	if !opts.Sessions.LoggedIn() {
		m.view = viewLogin
		m.focusAuth(0)
	}

	m.refreshRows()
	return m
}

func makeInputs(placeholders ...string) []textinput.Model {
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 120
		in.Width = 40
		inputs[i] = in
	}
	return inputs
}

// Init arms the store subscription so the view redraws on every collection
// change, including optimistic applies and rollbacks.
func (m Model) Init() tea.Cmd {
	return waitForStoreChange(m.opts.Store.Subscribe())
}

// Update is the top-level message dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		m.refreshRows()
		return m, waitForStoreChange(msg.ch)

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toast = toast{}
		}
		return m, nil

	case searchDoneMsg:
		return m.onSearchDone(msg)
	case recDoneMsg:
		return m.onRecDone(msg)
	case priceDoneMsg:
		return m.onPriceDone(msg)
	case profileDoneMsg:
		return m.onProfileDone(msg)
	case detailDoneMsg:
		return m.onDetailDone(msg)
	case writeDoneMsg:
		return m.onWriteDone(msg)
	case refreshDoneMsg:
		return m.onRefreshDone(msg)
	case authDoneMsg:
		return m.onAuthDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey routes a key press to the overlay or active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even with an input focused.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.pickOpen {
		return m.handlePickKey(msg)
	}
	if m.detailOpen {
		return m.handleDetailKey(msg)
	}

	switch m.view {
	case viewLogin:
		return m.handleAuthKey(msg)
	case viewCollection:
		return m.handleCollectionKey(msg)
	case viewSearch:
		return m.handleSearchKey(msg)
	case viewRecommend:
		return m.handleRecommendKey(msg)
	case viewPrice:
		return m.handlePriceKey(msg)
	case viewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

// handleGlobalKey covers bindings shared by every non-form view. handled is
// false when the key should fall through to the view handler.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil, true
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.styles = m.theme.Styles()
		return m, nil, true
	case key.Matches(msg, m.keys.Tab):
		m.switchView(m.nextView(1))
		return m, m.enterViewCmd(), true
	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView(m.nextView(-1))
		return m, m.enterViewCmd(), true
	case key.Matches(msg, m.keys.ViewCollection):
		m.switchView(viewCollection)
		return m, nil, true
	case key.Matches(msg, m.keys.ViewSearch):
		m.switchView(viewSearch)
		return m, nil, true
	case key.Matches(msg, m.keys.ViewRecommend):
		m.switchView(viewRecommend)
		return m, nil, true
	case key.Matches(msg, m.keys.ViewPrice):
		m.switchView(viewPrice)
		return m, nil, true
	case key.Matches(msg, m.keys.ViewProfile):
		m.switchView(viewProfile)
		return m, m.enterViewCmd(), true
	}
	return m, nil, false
}

func (m *Model) switchView(v view) {
	m.view = v
	m.toast = toast{}
	switch v {
	case viewSearch:
		if !m.searchOnList || len(m.searchResults) == 0 {
			m.searchOnList = false
			m.focusSearch(m.searchFocus)
		}
	case viewRecommend:
		if !m.recOnList || len(m.recRows) == 0 {
			m.recOnList = false
			m.focusRec(m.recFocus)
		}
	case viewPrice:
		m.priceInput.Focus()
	}
}

// enterViewCmd fires the lazy fetch a view needs on entry.
func (m Model) enterViewCmd() tea.Cmd {
	if m.view == viewProfile && m.profile == nil {
		return fetchProfile(m.ctx, m.opts.Queries)
	}
	return nil
}

func (m Model) nextView(dir int) view {
	for i, v := range tabOrder {
		if v == m.view {
			n := (i + dir + len(tabOrder)) % len(tabOrder)
			return tabOrder[n]
		}
	}
	return viewCollection
}

// refreshRows re-reads the store snapshot and regroups the rows, clamping
// the cursor after removals.
func (m *Model) refreshRows() {
	m.snapshot = m.opts.Store.Snapshot()
	m.rows = collection.Flatten(m.snapshot.Books)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// expireSession handles a server-reported 401: clear the token and cached
// reads, then drop to the sign-in view.
func (m *Model) expireSession() {
	if err := m.opts.Sessions.Expire(); err != nil {
		m.opts.Log.WithError(err).Warn("clearing expired session failed")
	}
	m.opts.Queries.Cache().Reset()
	m.profile = nil
	m.view = viewLogin
	m.registering = false
	m.resetAuthInputs()
	m.focusAuth(0)
	m.setToast("Session expired, sign in again", toastWarn)
}

func (m *Model) setToast(text string, level toastLevel) tea.Cmd {
	m.toastSeq++
	m.toast = toast{text: text, level: level}
	return clearToastLater(m.toastSeq)
}
