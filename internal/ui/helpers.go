package ui

import (
	"fmt"
	"strings"

	"github.com/folioapp/folio/internal/api"
)

// truncate shortens s to max characters with a trailing ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// wrap re-flows text to the given width, keeping at most maxLines lines.
func wrap(s string, width, maxLines int) string {
	if width <= 0 || maxLines <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
			if len(lines) == maxLines {
				last := lines[maxLines-1]
				lines[maxLines-1] = truncate(last+" ...", width)
				return strings.Join(lines, "\n")
			}
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// formatAuthors joins author names for display. Empty input reads as
// unknown rather than blank.
func formatAuthors(authors []string) string {
	trimmed := make([]string, 0, len(authors))
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			trimmed = append(trimmed, a)
		}
	}
	if len(trimmed) == 0 {
		return "Unknown Author"
	}
	return strings.Join(trimmed, ", ")
}

// formatRating renders "★ 4.2 (381)" or empty when no rating exists.
func formatRating(avg *float64, count *int) string {
	if avg == nil {
		return ""
	}
	out := fmt.Sprintf("★ %.1f", *avg)
	if count != nil && *count > 0 {
		out += fmt.Sprintf(" (%d)", *count)
	}
	return out
}

// formatMoney renders an amount with its currency code, e.g. "12.99 USD".
func formatMoney(m api.Money) string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.CurrencyCode)
}

// shortError trims an error to a single toast-sized line.
func shortError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return truncate(msg, 80)
}
