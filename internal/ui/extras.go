package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/folioapp/folio/internal/api"
	"github.com/folioapp/folio/internal/collection"
)

func (m Model) handlePriceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.priceInput.Blur()
		m.switchView(viewCollection)
		return m, nil
	case msg.Type == tea.KeyEnter:
		isbn := strings.TrimSpace(m.priceInput.Value())
		if isbn == "" {
			return m, m.setToast("Enter an ISBN", toastWarn)
		}
		m.priceBusy = true
		m.priceQuote = nil
		return m, runPriceLookup(m.ctx, m.opts.Queries, isbn, m.opts.Config.Country)
	}

	var cmd tea.Cmd
	m.priceInput, cmd = m.priceInput.Update(msg)
	return m, cmd
}

func (m Model) onPriceDone(msg priceDoneMsg) (tea.Model, tea.Cmd) {
	m.priceBusy = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.expireSession()
			return m, nil
		}
		return m, m.setToast("Price lookup failed: "+shortError(msg.err), toastError)
	}
	m.priceQuote = msg.quote
	return m, nil
}

func (m Model) viewPriceBody() string {
	var b strings.Builder
	b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("Price lookup (%s store)", m.opts.Config.Country)))
	b.WriteString("\n\n")
	b.WriteString(m.priceInput.View())
	b.WriteString("\n")

	if m.priceBusy {
		b.WriteString("\n" + m.styles.MutedText.Render("Looking up price..."))
		return b.String()
	}
	if m.priceQuote == nil {
		return b.String()
	}

	q := m.priceQuote
	b.WriteString("\n")
	if !q.ForSale() {
		b.WriteString(m.styles.WarningText.Render("Not for sale in this store"))
		return b.String()
	}
	if q.RetailPrice != nil {
		b.WriteString(m.styles.SuccessText.Render("Retail  "+formatMoney(*q.RetailPrice)) + "\n")
	}
	if q.ListPrice != nil {
		b.WriteString(m.styles.Text.Render("List    "+formatMoney(*q.ListPrice)) + "\n")
	}
	if q.BuyLink != "" {
		b.WriteString(m.styles.InfoText.Render(q.BuyLink) + "\n")
	}
	return b.String()
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.switchView(viewCollection)
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

func (m Model) onProfileDone(msg profileDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			m.expireSession()
			return m, nil
		}
		return m, m.setToast("Profile unavailable: "+shortError(msg.err), toastError)
	}
	m.profile = msg.profile
	return m, nil
}

func (m Model) viewProfileBody() string {
	if m.profile == nil {
		return m.styles.MutedText.Render("Loading profile...")
	}

	counts := make(map[api.BookStatus]int)
	for _, book := range m.snapshot.Books {
		counts[collection.DisplayStatus(book.Status)]++
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(m.profile.Username))
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render(m.profile.Email))
	b.WriteString("\n\n")
	b.WriteString(m.styles.GroupTitle.Render(fmt.Sprintf("Collection (%d books)", len(m.snapshot.Books))))
	b.WriteString("\n")
	for _, status := range collection.StatusOrder {
		if counts[status] == 0 {
			continue
		}
		b.WriteString(m.styles.Text.Render(fmt.Sprintf("  %-14s %d", status.Label(), counts[status])))
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.FaintText.Render("L Log out  •  esc Back"))
	return b.String()
}
