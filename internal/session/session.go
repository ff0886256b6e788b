// Package session handles bearer-token persistence for Folio.
// The token is stored in ~/.config/folio/session.toml and survives
// restarts until logout or server-reported expiry.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Session is the persisted form of an authenticated session.
type Session struct {
	Token string `toml:"token"`
}

const defaultSessionPath = "~/.config/folio/session.toml"

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Load reads the session from the given path. A missing or unreadable file
// yields an empty session, never an error: running logged-out is a normal
// state.
func Load(path string) Session {
	resolved, err := resolvePath(path)
	if err != nil {
		return Session{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Session{}
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Session{}
	}

	var s Session
	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Session{}
	}
	s.Token = strings.TrimSpace(s.Token)
	return s
}

// Save writes the session to the given path, creating directories as
// needed. The file is user-readable only; it holds a live credential.
func Save(path string, s Session) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	bytes, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear deletes the session file. A file that never existed is not an
// error.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Manager holds the in-memory token and mirrors changes to disk. It
// implements api.TokenSource, so the HTTP client always sees the current
// token without rebuilding.
type Manager struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewManager loads the session at path (empty means the default path).
func NewManager(path string) *Manager {
	s := Load(path)
	return &Manager{path: path, token: s.Token}
}

// Token returns the current bearer token; empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// LoggedIn reports whether a token is present.
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// SetToken installs a freshly minted token and persists it.
func (m *Manager) SetToken(token string) error {
	m.mu.Lock()
	m.token = strings.TrimSpace(token)
	m.mu.Unlock()
	return Save(m.path, Session{Token: strings.TrimSpace(token)})
}

// Logout clears the token and deletes the session file.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return Clear(m.path)
}

// Expire handles a server-reported 401: same cleanup as Logout, kept
// separate so call sites read as what happened.
func (m *Manager) Expire() error {
	return m.Logout()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
