package schema

import (
	"errors"
	"time"
)

// DefaultIdleTimeout is how long a session waits for a view to reconnect.
const DefaultIdleTimeout = 2 * time.Second

// PreviewConfig defines the behaviour of a preview session.
type PreviewConfig struct {
	// IdleTimeout ends the session when no view is attached for this long.
	IdleTimeout time.Duration
	// Theme is passed to launched views.
	Theme ThemeName
	// DiagramKeywords overrides the diagram openers.
	DiagramKeywords []string
	// Syntax enables fenced code highlighting.
	Syntax bool
	// Typographer enables smart punctuation.
	Typographer bool
	// Linkify turns bare URLs into links.
	Linkify bool
}

// NormalizePreviewConfig applies defaults and validates the config.
func NormalizePreviewConfig(cfg PreviewConfig) (PreviewConfig, error) {
	if cfg.IdleTimeout < 0 {
		return PreviewConfig{}, errors.New("idle timeout must not be negative")
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	theme, ok := NormalizeThemeName(string(cfg.Theme))
	if !ok {
		return PreviewConfig{}, errors.New("unknown theme " + string(cfg.Theme))
	}
	cfg.Theme = theme
	kept := make([]string, 0, len(cfg.DiagramKeywords))
	for _, kw := range cfg.DiagramKeywords {
		if kw != "" {
			kept = append(kept, kw)
		}
	}
	cfg.DiagramKeywords = kept
	return cfg, nil
}
