package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/folioapp/folio/internal/api"
)

// currentCatalogBook returns the catalog result under the cursor of the
// list the detail overlay was opened from.
func (m Model) currentCatalogBook() (api.CatalogBook, bool) {
	switch m.detailFrom {
	case viewSearch:
		if m.searchCursor >= 0 && m.searchCursor < len(m.searchResults) {
			return m.searchResults[m.searchCursor], true
		}
	case viewRecommend:
		if m.recCursor >= 0 && m.recCursor < len(m.recRows) {
			return m.recRows[m.recCursor], true
		}
	}
	return api.CatalogBook{}, false
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchOnList {
		return m.handleSearchListKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.blurSearch()
		m.switchView(viewCollection)
		return m, nil
	case msg.Type == tea.KeyTab, msg.Type == tea.KeyDown:
		m.focusSearch((m.searchFocus + 1) % len(m.searchInputs))
		return m, nil
	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		m.focusSearch((m.searchFocus - 1 + len(m.searchInputs)) % len(m.searchInputs))
		return m, nil
	case msg.Type == tea.KeyEnter:
		filters := api.SearchFilters{
			Title:   m.searchInputs[0].Value(),
			Author:  m.searchInputs[1].Value(),
			Subject: m.searchInputs[2].Value(),
		}
		if filters.Empty() {
			return m, m.setToast("Enter a title or an author to search", toastWarn)
		}
		m.searchBusy = true
		return m, runSearch(m.ctx, m.opts.Queries, filters)
	}

	var cmd tea.Cmd
	m.searchInputs[m.searchFocus], cmd = m.searchInputs[m.searchFocus].Update(msg)
	return m, cmd
}

func (m Model) handleSearchListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searchOnList = false
		m.focusSearch(m.searchFocus)
	case key.Matches(msg, m.keys.Up):
		if m.searchCursor > 0 {
			m.searchCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
	case key.Matches(msg, m.keys.Detail):
		return m.openCatalogDetail(viewSearch)
	case key.Matches(msg, m.keys.Add):
		if m.searchCursor >= 0 && m.searchCursor < len(m.searchResults) {
			req := api.AddEntryFromCatalog(m.searchResults[m.searchCursor], api.StatusPlanToRead)
			return m, addBook(m.ctx, m.opts.Coordinator, req)
		}
	}
	return m, nil
}

func (m Model) handleRecommendKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recOnList {
		return m.handleRecommendListKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.blurRec()
		m.switchView(viewCollection)
		return m, nil
	case msg.Type == tea.KeyTab, msg.Type == tea.KeyDown:
		m.focusRec((m.recFocus + 1) % len(m.recInputs))
		return m, nil
	case msg.Type == tea.KeyShiftTab, msg.Type == tea.KeyUp:
		m.focusRec((m.recFocus - 1 + len(m.recInputs)) % len(m.recInputs))
		return m, nil
	case msg.Type == tea.KeyEnter:
		filters := api.RecommendationFilters{
			Title:   m.recInputs[0].Value(),
			Subject: m.recInputs[1].Value(),
		}
		m.recBusy = true
		return m, runRecommendations(m.ctx, m.opts.Queries, filters)
	}

	var cmd tea.Cmd
	m.recInputs[m.recFocus], cmd = m.recInputs[m.recFocus].Update(msg)
	return m, cmd
}

func (m Model) handleRecommendListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.recOnList = false
		m.focusRec(m.recFocus)
	case key.Matches(msg, m.keys.Up):
		if m.recCursor > 0 {
			m.recCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.recCursor < len(m.recRows)-1 {
			m.recCursor++
		}
	case key.Matches(msg, m.keys.Detail):
		return m.openCatalogDetail(viewRecommend)
	case key.Matches(msg, m.keys.Add):
		if m.recCursor >= 0 && m.recCursor < len(m.recRows) {
			req := api.AddEntryFromCatalog(m.recRows[m.recCursor], api.StatusPlanToRead)
			return m, addBook(m.ctx, m.opts.Coordinator, req)
		}
	}
	return m, nil
}

func (m Model) openCatalogDetail(from view) (tea.Model, tea.Cmd) {
	m.detailFrom = from
	book, ok := m.currentCatalogBook()
	if !ok {
		return m, nil
	}
	m.detailOpen = true
	m.detail = nil
	m.detailLoading = true
	return m, fetchDetails(m.ctx, m.opts.Queries, book.ID)
}

func (m Model) onSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	m.searchBusy = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.expireSession()
			return m, nil
		}
		return m, m.setToast("Search failed: "+shortError(msg.err), toastError)
	}
	m.searchResults = msg.results
	m.searchCursor = 0
	if len(msg.results) > 0 {
		m.searchOnList = true
		m.blurSearch()
	} else {
		return m, m.setToast("No results", toastInfo)
	}
	return m, nil
}

func (m Model) onRecDone(msg recDoneMsg) (tea.Model, tea.Cmd) {
	m.recBusy = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.expireSession()
			return m, nil
		}
		return m, m.setToast("Recommendations failed: "+shortError(msg.err), toastError)
	}
	m.recRows = msg.results
	m.recCursor = 0
	if len(msg.results) > 0 {
		m.recOnList = true
		m.blurRec()
	} else {
		return m, m.setToast("No recommendations for those filters", toastInfo)
	}
	return m, nil
}

func (m *Model) focusSearch(i int) {
	m.searchFocus = i
	for j := range m.searchInputs {
		if j == i {
			m.searchInputs[j].Focus()
		} else {
			m.searchInputs[j].Blur()
		}
	}
}

func (m *Model) blurSearch() {
	for j := range m.searchInputs {
		m.searchInputs[j].Blur()
	}
}

func (m *Model) focusRec(i int) {
	m.recFocus = i
	for j := range m.recInputs {
		if j == i {
			m.recInputs[j].Focus()
		} else {
			m.recInputs[j].Blur()
		}
	}
}

func (m *Model) blurRec() {
	for j := range m.recInputs {
		m.recInputs[j].Blur()
	}
}

func (m Model) viewSearchBody() string {
	var b strings.Builder
	b.WriteString(m.styles.MutedText.Render("Search the catalog (title or author required)"))
	b.WriteString("\n\n")
	b.WriteString(renderInputs(m.searchInputs))
	if m.searchBusy {
		b.WriteString("\n" + m.styles.MutedText.Render("Searching..."))
	}
	if len(m.searchResults) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderCatalogList(m.searchResults, m.searchCursor, m.searchOnList))
	}
	return b.String()
}

func (m Model) viewRecommendBody() string {
	var b strings.Builder
	b.WriteString(m.styles.MutedText.Render("Recommendations (filters optional)"))
	b.WriteString("\n\n")
	b.WriteString(renderInputs(m.recInputs))
	if m.recBusy {
		b.WriteString("\n" + m.styles.MutedText.Render("Fetching recommendations..."))
	}
	if len(m.recRows) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderCatalogList(m.recRows, m.recCursor, m.recOnList))
	}
	return b.String()
}

func renderInputs(inputs []textinput.Model) string {
	lines := make([]string, len(inputs))
	for i, in := range inputs {
		lines[i] = in.View()
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCatalogList(books []api.CatalogBook, cursor int, active bool) string {
	var b strings.Builder
	b.WriteString(m.styles.GroupTitle.Render(fmt.Sprintf("Results (%d)", len(books))))
	b.WriteString("\n")
	for i, book := range books {
		title := truncate(book.Title, 44)
		authors := truncate(formatAuthors(book.Authors), 26)
		subject := truncate(book.PrimarySubject(), 18)
		line := fmt.Sprintf("  %-44s  %-26s  %s", title, authors, subject)
		if active && i == cursor {
			b.WriteString(m.styles.Selected.Render("▸" + line[1:]))
		} else {
			b.WriteString(m.styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
