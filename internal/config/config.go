package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields Folio needs to reach the Book Reader backend.
type Config struct {
	APIBaseURL     string
	Country        string
	RefreshSeconds int
	LogDir         string
}

const (
	defaultConfigPath = "~/.config/folio/config.toml"
	defaultAPIBaseURL = "http://localhost:8080/api"
	defaultCountry    = "US"
	defaultLogDir     = "~/.local/share/folio"

	// EnvAPIBaseURL and EnvCountry override their config-file counterparts.
	EnvAPIBaseURL = "FOLIO_API_URL"
	EnvCountry    = "FOLIO_COUNTRY"
)

// Load locates and parses the folio config, falling back to defaults when
// missing. Environment variables win over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL: defaultAPIBaseURL,
		Country:    defaultCountry,
		LogDir:     defaultLogDir,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LogDir = mustExpand(cfg.LogDir)
			return applyEnv(cfg), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBaseURL     string `toml:"api_base_url"`
		Country        string `toml:"country"`
		RefreshSeconds int    `toml:"refresh_seconds"`
		LogDir         string `toml:"log_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(raw.Country); v != "" {
		cfg.Country = strings.ToUpper(v)
	}
	if raw.RefreshSeconds > 0 {
		cfg.RefreshSeconds = raw.RefreshSeconds
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = v
	}
	cfg.LogDir = mustExpand(cfg.LogDir)

	return applyEnv(cfg), nil
}

// LogPath returns the path of the folio log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/folio.log")
	}
	return filepath.Join(c.LogDir, "folio.log")
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCountry)); v != "" {
		cfg.Country = strings.ToUpper(v)
	}
	return cfg
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
