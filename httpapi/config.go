package httpapi

import "pkt.systems/peek/schema"

// Config defines view server settings.
type Config struct {
	Addr     string
	BasePath string
	// BaseURL is the public origin the page is reached through, such as a
	// reverse proxy. It replaces the listener address in URL and the base href.
	BaseURL string
	Theme    schema.ThemeName
}
