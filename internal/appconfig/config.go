package appconfig

import (
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/peek/internal/frame"
	"pkt.systems/peek/internal/markdown"
	"pkt.systems/peek/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	Session       SessionConfig `mapstructure:"session" yaml:"session"`
	Input         InputConfig   `mapstructure:"input" yaml:"input"`
	Render        RenderConfig  `mapstructure:"render" yaml:"render"`
	App           AppConfig     `mapstructure:"app" yaml:"app"`
	Logging       LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Input modes.
const (
	InputPull  = "pull"
	InputPush  = "push"
	InputLines = "lines"
)

// App modes.
const (
	AppNone    = "none"
	AppBrowser = "browser"
	AppCommand = "command"
)

// HTTPConfig configures the view server.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
}

// SessionConfig controls the view session lifetime.
type SessionConfig struct {
	IdleTimeoutMS int `mapstructure:"idle_timeout_ms" yaml:"idle_timeout_ms"`
}

// InputConfig controls how stdin is consumed.
type InputConfig struct {
	Mode          string `mapstructure:"mode" yaml:"mode"`
	ChunkSize     int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	MaxFrameBytes int    `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`
}

// RenderConfig controls markdown rendering.
type RenderConfig struct {
	Syntax          bool     `mapstructure:"syntax" yaml:"syntax"`
	Typographer     bool     `mapstructure:"typographer" yaml:"typographer"`
	Linkify         bool     `mapstructure:"linkify" yaml:"linkify"`
	DiagramKeywords []string `mapstructure:"diagram_keywords" yaml:"diagram_keywords"`
}

// AppConfig controls how the view is launched.
type AppConfig struct {
	Mode    string   `mapstructure:"mode" yaml:"mode"`
	Command []string `mapstructure:"command" yaml:"command"`
	Theme   string   `mapstructure:"theme" yaml:"theme"`
}

// LoggingConfig controls the log file sink.
type LoggingConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() (Config, error) {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		HTTP: HTTPConfig{
			Addr:     "127.0.0.1:0",
			BasePath: "",
			BaseURL:  "",
		},
		Session: SessionConfig{
			IdleTimeoutMS: int(schema.DefaultIdleTimeout.Milliseconds()),
		},
		Input: InputConfig{
			Mode:          InputPull,
			ChunkSize:     frame.DefaultChunkSize,
			MaxFrameBytes: 0,
		},
		Render: RenderConfig{
			Syntax:          true,
			Typographer:     true,
			Linkify:         true,
			DiagramKeywords: append([]string(nil), markdown.DefaultDiagramKeywords...),
		},
		App: AppConfig{
			Mode:    AppBrowser,
			Command: nil,
			Theme:   string(schema.DefaultTheme),
		},
		Logging: LoggingConfig{
			File: "",
		},
	}, nil
}

// ThemeChoices lists the accepted app.theme values for help and errors.
func ThemeChoices() string {
	themes := schema.AvailableThemes()
	names := make([]string, len(themes))
	for i, theme := range themes {
		names[i] = string(theme)
	}
	return strings.Join(names, ", ")
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".peek", "config.yaml"), nil
}
