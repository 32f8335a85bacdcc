package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/peek/schema"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("http.base_path", cfg.HTTP.BasePath)
	v.SetDefault("http.base_url", cfg.HTTP.BaseURL)
	v.SetDefault("session.idle_timeout_ms", cfg.Session.IdleTimeoutMS)
	v.SetDefault("input.mode", cfg.Input.Mode)
	v.SetDefault("input.chunk_size", cfg.Input.ChunkSize)
	v.SetDefault("input.max_frame_bytes", cfg.Input.MaxFrameBytes)
	v.SetDefault("render.syntax", cfg.Render.Syntax)
	v.SetDefault("render.typographer", cfg.Render.Typographer)
	v.SetDefault("render.linkify", cfg.Render.Linkify)
	v.SetDefault("render.diagram_keywords", cfg.Render.DiagramKeywords)
	v.SetDefault("app.mode", cfg.App.Mode)
	v.SetDefault("app.command", cfg.App.Command)
	v.SetDefault("app.theme", cfg.App.Theme)
	v.SetDefault("logging.file", cfg.Logging.File)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and normalizes enumerations in place.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	cfg.Input.Mode = strings.ToLower(strings.TrimSpace(cfg.Input.Mode))
	switch cfg.Input.Mode {
	case InputPull, InputPush, InputLines:
	default:
		return fmt.Errorf("unsupported input.mode %q", cfg.Input.Mode)
	}
	if cfg.Input.ChunkSize < 0 {
		return fmt.Errorf("input.chunk_size must not be negative")
	}
	if cfg.Input.MaxFrameBytes < 0 {
		return fmt.Errorf("input.max_frame_bytes must not be negative")
	}
	if cfg.Session.IdleTimeoutMS < 0 {
		return fmt.Errorf("session.idle_timeout_ms must not be negative")
	}
	cfg.App.Mode = strings.ToLower(strings.TrimSpace(cfg.App.Mode))
	switch cfg.App.Mode {
	case AppNone, AppBrowser:
	case AppCommand:
		if len(cfg.App.Command) == 0 || strings.TrimSpace(cfg.App.Command[0]) == "" {
			return fmt.Errorf("app.command is required when app.mode is %q", AppCommand)
		}
	default:
		return fmt.Errorf("unsupported app.mode %q", cfg.App.Mode)
	}
	theme, ok := schema.NormalizeThemeName(cfg.App.Theme)
	if !ok {
		return fmt.Errorf("unsupported app.theme %q; expected one of %s", cfg.App.Theme, ThemeChoices())
	}
	cfg.App.Theme = string(theme)
	return validateHTTPConfig(cfg.HTTP)
}

func validateHTTPConfig(cfg HTTPConfig) error {
	basePath := strings.TrimSpace(cfg.BasePath)
	if basePath != "" {
		if strings.Contains(basePath, "://") {
			return fmt.Errorf("http.base_path must be a path prefix, not a URL")
		}
		if strings.ContainsAny(basePath, "?#") {
			return fmt.Errorf("http.base_path must not include query or fragment")
		}
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("http.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("http.base_url must be an absolute http or https URL")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("http.base_url must not include query or fragment")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Logging.File = expandEnv(cfg.Logging.File)
	cfg.HTTP.BaseURL = expandEnv(cfg.HTTP.BaseURL)
	for i, arg := range cfg.App.Command {
		cfg.App.Command[i] = expandEnv(arg)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
