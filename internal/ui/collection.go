package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
)

func (m Model) handleCollectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}

	case key.Matches(msg, m.keys.Detail):
		return m.openCollectionDetail()

	case key.Matches(msg, m.keys.CycleStatus):
		if book, ok := m.currentBook(); ok {
			next := nextStatus(collection.DisplayStatus(book.Status))
			return m, setStatus(m.ctx, m.opts.Coordinator, book.ID, next)
		}

	case key.Matches(msg, m.keys.PickStatus):
		if book, ok := m.currentBook(); ok {
			m.pickOpen = true
			m.pickBookID = book.ID
			m.pickCursor = statusIndex(collection.DisplayStatus(book.Status))
		}

	case key.Matches(msg, m.keys.Remove):
		if book, ok := m.currentBook(); ok {
			return m, removeBook(m.ctx, m.opts.Coordinator, book.ID)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCollection(m.ctx, m.opts.Queries, m.opts.Store)

	case key.Matches(msg, m.keys.Logout):
		if err := m.opts.Sessions.Logout(); err != nil {
			m.opts.Log.WithError(err).Warn("logout failed")
		}
		m.opts.Queries.Cache().Reset()
		m.profile = nil
		m.view = viewLogin
		m.resetAuthInputs()
		m.focusAuth(0)
		return m, m.setToast("Signed out", toastInfo)
	}
	return m, nil
}

func (m Model) currentBook() (api.Book, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return api.Book{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) openCollectionDetail() (tea.Model, tea.Cmd) {
	book, ok := m.currentBook()
	if !ok {
		return m, nil
	}
	m.opts.Selection.Select(book)
	m.detailOpen = true
	m.detailFrom = viewCollection
	m.detail = nil
	if book.GoogleBookID != "" {
		m.detailLoading = true
		return m, fetchDetails(m.ctx, m.opts.Queries, book.GoogleBookID)
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Quit):
		m.detailOpen = false
		m.detailLoading = false
		m.detail = nil
		m.opts.Selection.Clear()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		// Only catalog results can be added; collection entries are
		// already saved.
		if m.detailFrom != viewCollection {
			if book, ok := m.currentCatalogBook(); ok {
				m.detailOpen = false
				m.detail = nil
				req := api.AddEntryFromCatalog(book, api.StatusPlanToRead)
				return m, addBook(m.ctx, m.opts.Coordinator, req)
			}
		}
	}
	return m, nil
}

func (m Model) handlePickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.pickOpen = false
	case key.Matches(msg, m.keys.Up):
		if m.pickCursor > 0 {
			m.pickCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickCursor < len(api.AllStatuses)-1 {
			m.pickCursor++
		}
	case key.Matches(msg, m.keys.Confirm):
		m.pickOpen = false
		status := api.AllStatuses[m.pickCursor]
		return m, setStatus(m.ctx, m.opts.Coordinator, m.pickBookID, status)
	}
	return m, nil
}

func (m Model) onDetailDone(msg detailDoneMsg) (tea.Model, tea.Cmd) {
	m.detailLoading = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.detailOpen = false
			m.expireSession()
			return m, nil
		}
		// The overlay still shows the locally known fields.
		return m, m.setToast("Details unavailable: "+shortError(msg.err), toastWarn)
	}
	m.detail = msg.book
	return m, nil
}

func (m Model) onWriteDone(msg writeDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		switch {
		case api.IsUnauthorized(msg.err):
			m.expireSession()
			return m, nil
		case api.IsDuplicate(msg.err):
			return m, m.setToast("Already in your collection", toastWarn)
		default:
			return m, m.setToast("Update failed: "+shortError(msg.err), toastError)
		}
	}
	return m, m.setToast("Book "+msg.verb, toastInfo)
}

func (m Model) onRefreshDone(msg refreshDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) || errors.Is(msg.err, api.ErrNoToken) {
			m.expireSession()
			return m, nil
		}
		m.opts.Store.RecordError(msg.err)
		return m, m.setToast("Refresh failed: "+shortError(msg.err), toastError)
	}
	return m, nil
}

// viewCollectionBody renders the grouped collection list.
func (m Model) viewCollectionBody() string {
	if !m.snapshot.Loaded && len(m.rows) == 0 {
		return m.styles.MutedText.Render("Loading your collection...")
	}
	if len(m.rows) == 0 {
		return m.styles.MutedText.Render("No books yet. Press / to search the catalog.")
	}

	groups := collection.GroupByStatus(m.snapshot.Books)
	var b strings.Builder
	row := 0
	for _, status := range collection.StatusOrder {
		books := groups[status]
		if len(books) == 0 {
			continue
		}
		b.WriteString(m.styles.GroupTitle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(books))))
		b.WriteString("\n")
		for _, book := range books {
			line := m.renderBookRow(book, row == m.cursor)
			b.WriteString(line)
			b.WriteString("\n")
			row++
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderBookRow(book api.Book, selected bool) string {
	title := truncate(book.Title, 48)
	authors := truncate(formatAuthors(book.Authors), 30)
	rating := formatRating(book.AverageRating, book.RatingsCount)

	line := fmt.Sprintf("  %-48s  %-30s  %s", title, authors, rating)
	if selected {
		return m.styles.Selected.Render("▸" + line[1:])
	}
	return m.styles.Text.Render(line)
}

// viewDetailOverlay renders the book detail card.
func (m Model) viewDetailOverlay() string {
	var title, authors, subject, publisher, published, description string
	var rating string

	if book, ok := m.opts.Selection.Current(); ok && m.detailFrom == viewCollection {
		title = book.Title
		authors = formatAuthors(book.Authors)
		subject = book.Subject
		publisher = book.Publisher
		published = book.PublishedDate
		description = book.Description
		rating = formatRating(book.AverageRating, book.RatingsCount)
	}
	if m.detail != nil {
		title = m.detail.Title
		authors = formatAuthors(m.detail.Authors)
		subject = m.detail.PrimarySubject()
		publisher = m.detail.Publisher
		published = m.detail.PublishedDate
		description = m.detail.Description
		rating = formatRating(m.detail.AverageRating, m.detail.RatingsCount)
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(truncate(title, 60)))
	b.WriteString("\n")
	b.WriteString(m.styles.Text.Render(authors))
	b.WriteString("\n\n")
	if subject != "" {
		b.WriteString(m.styles.MutedText.Render("Subject    ") + m.styles.Text.Render(subject) + "\n")
	}
	if publisher != "" {
		b.WriteString(m.styles.MutedText.Render("Publisher  ") + m.styles.Text.Render(publisher) + "\n")
	}
	if published != "" {
		b.WriteString(m.styles.MutedText.Render("Published  ") + m.styles.Text.Render(published) + "\n")
	}
	if rating != "" {
		b.WriteString(m.styles.MutedText.Render("Rating     ") + m.styles.Text.Render(rating) + "\n")
	}
	if m.detailLoading {
		b.WriteString("\n" + m.styles.MutedText.Render("Loading details..."))
	} else if description != "" {
		b.WriteString("\n" + m.styles.Text.Render(wrap(description, 64, 10)))
	}
	b.WriteString("\n\n")
	hint := "esc Close"
	if m.detailFrom != viewCollection {
		hint = "a Add to collection  •  esc Close"
	}
	b.WriteString(m.styles.FaintText.Render(hint))

	return m.styles.Overlay.Render(b.String())
}

// viewPickOverlay renders the status picker.
func (m Model) viewPickOverlay() string {
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("Move to"))
	b.WriteString("\n\n")
	for i, status := range api.AllStatuses {
		label := "  " + status.Label()
		if i == m.pickCursor {
			b.WriteString(m.styles.Selected.Render("▸ " + status.Label()))
		} else {
			b.WriteString(m.styles.Text.Render(label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.FaintText.Render("enter Confirm  •  esc Cancel"))
	return m.styles.Overlay.Render(b.String())
}

// nextStatus returns the status after s in the display cycle.
func nextStatus(s api.BookStatus) api.BookStatus {
	i := statusIndex(s)
	return api.AllStatuses[(i+1)%len(api.AllStatuses)]
}

func statusIndex(s api.BookStatus) int {
	for i, candidate := range api.AllStatuses {
		if candidate == s {
			return i
		}
	}
	return 0
}
