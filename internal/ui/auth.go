package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/folioapp/folio/internal/api"
)

// resetAuthInputs rebuilds the sign-in form. The signup variant carries a
// leading username field.
func (m *Model) resetAuthInputs() {
	placeholders := []string{"Email", "Password"}
	if m.registering {
		placeholders = []string{"Username", "Email", "Password"}
	}
	m.authInputs = make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 120
		in.Width = 40
		if p == "Password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.authInputs[i] = in
	}
	m.authFocus = 0
}

func (m *Model) focusAuth(i int) {
	m.authFocus = i
	for j := range m.authInputs {
		if j == i {
			m.authInputs[j].Focus()
		} else {
			m.authInputs[j].Blur()
		}
	}
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focusAuth((m.authFocus + 1) % len(m.authInputs))
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.focusAuth((m.authFocus - 1 + len(m.authInputs)) % len(m.authInputs))
		return m, nil
	case tea.KeyEnter:
		return m.submitAuth()
	case tea.KeyCtrlN:
		m.registering = !m.registering
		m.resetAuthInputs()
		m.focusAuth(0)
		return m, nil
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m Model) submitAuth() (tea.Model, tea.Cmd) {
	values := make([]string, len(m.authInputs))
	for i, in := range m.authInputs {
		values[i] = strings.TrimSpace(in.Value())
	}
	for _, v := range values {
		if v == "" {
			return m, m.setToast("All fields are required", toastWarn)
		}
	}

	m.authBusy = true
	if m.registering {
		return m, register(m.ctx, m.opts.Client, values[0], values[1], values[2])
	}
	return m, login(m.ctx, m.opts.Client, m.opts.Sessions, values[0], values[1])
}

func (m Model) onAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.authBusy = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return m, m.setToast("Invalid email or password", toastError)
		}
		return m, m.setToast("Sign in failed: "+shortError(msg.err), toastError)
	}

	if msg.registered {
		// Account created; drop back to the login form so the new
		// credentials mint a token.
		m.registering = false
		m.resetAuthInputs()
		m.focusAuth(0)
		return m, m.setToast("Account created, sign in", toastInfo)
	}

	m.view = viewCollection
	m.resetAuthInputs()
	return m, tea.Batch(
		refreshCollection(m.ctx, m.opts.Queries, m.opts.Store),
		m.setToast("Signed in", toastInfo),
	)
}

func (m Model) viewAuthBody() string {
	title := "Sign in to Folio"
	hint := "enter Sign in  •  ctrl+n Create account  •  ctrl+c Quit"
	if m.registering {
		title = "Create a Folio account"
		hint = "enter Create  •  ctrl+n Back to sign in  •  ctrl+c Quit"
	}

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(title))
	b.WriteString("\n\n")
	b.WriteString(renderInputs(m.authInputs))
	b.WriteString("\n\n")
	if m.authBusy {
		b.WriteString(m.styles.MutedText.Render("Contacting server..."))
	} else {
		b.WriteString(m.styles.FaintText.Render(hint))
	}
	return m.styles.Overlay.Render(b.String())
}
