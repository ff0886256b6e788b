package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the whole screen: header, tab bar, active body, footer.
func (m Model) View() string {
	if m.view == viewLogin {
		return m.centered(m.viewAuthBody()) + "\n" + m.renderFooter()
	}

	var body string
	switch {
	case m.showHelp:
		body = m.viewHelpBody()
	case m.pickOpen:
		body = m.centered(m.viewPickOverlay())
	case m.detailOpen:
		body = m.centered(m.viewDetailOverlay())
	default:
		switch m.view {
		case viewCollection:
			body = m.viewCollectionBody()
		case viewSearch:
			body = m.viewSearchBody()
		case viewRecommend:
			body = m.viewRecommendBody()
		case viewPrice:
			body = m.viewPriceBody()
		case viewProfile:
			body = m.viewProfileBody()
		}
	}

	return strings.Join([]string{
		m.renderHeader(),
		m.renderTabs(),
		body,
		m.renderFooter(),
	}, "\n")
}

func (m Model) centered(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, content)
}

// renderHeader renders the status bar: logo, connection state, book count,
// last update time.
func (m Model) renderHeader() string {
	parts := []string{m.styles.Logo.Render("folio")}

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, m.styles.DangerText.Render("● OFFLINE"))
	case m.snapshot.LastError != nil:
		parts = append(parts, m.styles.WarningText.Render("● DEGRADED"))
	case m.snapshot.Loaded:
		parts = append(parts, m.styles.SuccessText.Render("● ON"))
	default:
		parts = append(parts, m.styles.MutedText.Render("● ..."))
	}

	parts = append(parts,
		m.styles.MutedText.Render("Books:")+" "+
			m.styles.Text.Render(fmt.Sprintf("%d", len(m.snapshot.Books))))

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, m.styles.MutedText.Render(m.snapshot.LastUpdated.Format("15:04:05")))
	}

	if m.snapshot.LastError != nil {
		parts = append(parts,
			m.styles.DangerText.Render("ERROR")+" "+
				m.styles.DangerText.Render(truncate(m.snapshot.LastError.Error(), 60)))
	}

	return m.styles.Header.Width(max(m.width, 0)).Render(strings.Join(parts, "  "))
}

func (m Model) renderTabs() string {
	segments := make([]string, 0, len(tabOrder))
	for _, v := range tabOrder {
		label := v.title()
		if v == m.view {
			segments = append(segments, m.styles.AccentText.Bold(true).Render(label))
		} else {
			segments = append(segments, m.styles.MutedText.Render(label))
		}
	}
	return m.styles.Header.Width(max(m.width, 0)).Render(strings.Join(segments, "  •  "))
}

// renderFooter renders the command hints for the active view, or the toast
// when one is live.
func (m Model) renderFooter() string {
	if m.toast.text != "" {
		style := m.styles.InfoText
		switch m.toast.level {
		case toastWarn:
			style = m.styles.WarningText
		case toastError:
			style = m.styles.DangerText
		}
		return m.styles.Footer.Width(max(m.width, 0)).Render(style.Render(m.toast.text))
	}

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.view == viewLogin:
		commands = []cmd{{"tab", "Next field"}, {"enter", "Submit"}, {"ctrl+n", "Login/Signup"}}
	case m.pickOpen:
		commands = []cmd{{"j/k", "Navigate"}, {"enter", "Confirm"}, {"esc", "Cancel"}}
	case m.detailOpen:
		commands = []cmd{{"a", "Add"}, {"esc", "Close"}}
	case m.view == viewCollection:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Details"},
			{"s", "Cycle status"},
			{"S", "Pick status"},
			{"x", "Remove"},
			{"r", "Refresh"},
			{"/", "Search"},
			{"?", "More"},
		}
	case m.view == viewSearch, m.view == viewRecommend:
		commands = []cmd{
			{"enter", "Run"},
			{"j/k", "Navigate"},
			{"a", "Add"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case m.view == viewPrice:
		commands = []cmd{{"enter", "Look up"}, {"esc", "Back"}}
	case m.view == viewProfile:
		commands = []cmd{{"L", "Log out"}, {"esc", "Back"}, {"?", "More"}}
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			m.styles.AccentText.Render(c.key)+m.styles.FaintText.Render(":")+m.styles.MutedText.Render(c.desc))
	}
	segments = append(segments,
		m.styles.AccentText.Render("T")+m.styles.FaintText.Render(":")+m.styles.FaintText.Render(m.theme.Name))

	return m.styles.Footer.Width(max(m.width, 0)).Render(strings.Join(segments, "  "))
}

func (m Model) viewHelpBody() string {
	rows := []struct{ key, desc string }{
		{"tab / shift+tab", "Cycle views"},
		{"c / / / R / $ / u", "Collection, Search, Recommendations, Price, Profile"},
		{"j/k or arrows", "Move cursor"},
		{"g / G", "Top / bottom"},
		{"enter", "Open details"},
		{"s", "Cycle reading status"},
		{"S", "Pick reading status"},
		{"x", "Remove from collection"},
		{"a", "Add catalog result"},
		{"r", "Refresh collection"},
		{"L", "Log out"},
		{"T", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(m.styles.Text.Render(fmt.Sprintf("  %-20s", r.key)))
		b.WriteString(m.styles.MutedText.Render(r.desc))
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.FaintText.Render("Press any key to close"))
	return m.centered(m.styles.Overlay.Render(b.String()))
}
