package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pkt.systems/peek/internal/session"
	"pkt.systems/peek/schema"
)

const shutdownTimeout = 5 * time.Second

// Attacher accepts connected views. A session.Session satisfies it.
type Attacher interface {
	Attach(ctx context.Context, v session.View) (func(), error)
	Attached() bool
}

// Server serves the preview page and its WebSocket channel.
type Server struct {
	cfg      Config
	views    Attacher
	page     *page
	upgrader websocket.Upgrader
}

// NewServer constructs an HTTP server.
func NewServer(cfg Config, views Attacher) *Server {
	if cfg.Theme == "" {
		cfg.Theme = schema.DefaultTheme
	}
	return &Server{
		cfg:      cfg,
		views:    views,
		page:     newPage(cfg.BaseURL, cfg.BasePath),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// URL returns the page address for a listener bound to addr. A configured
// BaseURL replaces the listener address.
func (s *Server) URL(addr string, theme schema.ThemeName) string {
	if theme == "" {
		theme = s.cfg.Theme
	}
	return s.page.url(addr, theme)
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	handler := withRequestLogging(mux)
	if s.page.mount == "" {
		return handler
	}
	prefix := s.page.mount
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	stat, err := fs.Stat(assets, "index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	theme := s.cfg.Theme
	if requested, ok := schema.NormalizeThemeName(r.URL.Query().Get("theme")); ok {
		theme = requested
	}
	http.ServeContent(w, r, "index.html", stat.ModTime(), bytes.NewReader(s.page.render(theme)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"attached": s.views != nil && s.views.Attached(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
