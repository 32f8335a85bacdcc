// Package peek composes a markdown preview: a command relay fed by the host
// editor, the session that owns the view, and the HTTP server views attach to.
package peek

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/spf13/afero"

	"pkt.systems/peek/httpapi"
	"pkt.systems/peek/internal/command"
	"pkt.systems/peek/internal/markdown"
	"pkt.systems/peek/internal/relay"
	"pkt.systems/peek/internal/session"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

// Server runs one preview session.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
	// URL is the page address views open. It is empty until Start binds the
	// listener, and stays empty without WithHTTP.
	URL() string
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Preview schema.PreviewConfig
	HTTP    httpapi.Config
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	// Input yields host commands. Its end ends the server.
	Input command.Decoder
	// Renderer overrides the markdown renderer built from the preview config.
	Renderer relay.Renderer
	// Fs serves path-carrying show commands.
	Fs     afero.Fs
	Logger pslog.Logger
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
	listener   net.Listener
}

// WithHTTP enables the page and WebSocket server.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithListener serves HTTP on an already bound listener instead of
// ServerConfig.HTTP.Addr. It implies WithHTTP.
func WithListener(ln net.Listener) ServerOption {
	return func(o *serverOptions) {
		o.enableHTTP = true
		o.listener = ln
	}
}

// New constructs a preview server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if deps.Input == nil {
		return nil, errors.New("input decoder is required")
	}
	preview, err := schema.NormalizePreviewConfig(cfg.Preview)
	if err != nil {
		return nil, err
	}
	cfg.Preview = preview
	if cfg.HTTP.Theme == "" {
		cfg.HTTP.Theme = preview.Theme
	}

	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = markdown.New(markdown.Options{
			Syntax:          preview.Syntax,
			Typographer:     preview.Typographer,
			Linkify:         preview.Linkify,
			DiagramKeywords: preview.DiagramKeywords,
		})
	}

	sess := session.New(preview.IdleTimeout, logger)
	rl, err := relay.New(relay.Deps{
		Renderer: renderer,
		Sink:     sess,
		Fs:       deps.Fs,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	var httpSrv *httpapi.Server
	if options.enableHTTP {
		httpSrv = httpapi.NewServer(cfg.HTTP, sess)
	}

	return &compositeServer{
		cfg:     cfg,
		options: options,
		input:   deps.Input,
		session: sess,
		relay:   rl,
		httpSrv: httpSrv,
		logger:  logger,
	}, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	input   command.Decoder
	session *session.Session
	relay   *relay.Relay
	httpSrv *httpapi.Server
	logger  pslog.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	errCh     chan error
	inputDone chan struct{}
	url       string
	started   bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(pslog.ContextWithLogger(ctx, s.logger))
	s.errCh = make(chan error, 2)
	s.inputDone = make(chan struct{})
	s.started = true
	runCtx := s.ctx
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_path", s.cfg.HTTP.BasePath,
		"idle_timeout", s.cfg.Preview.IdleTimeout,
		"theme", s.cfg.Preview.Theme,
	)
	if s.options.enableHTTP && s.httpSrv != nil {
		ln := s.options.listener
		if ln == nil {
			var err error
			ln, err = httpapi.Listen(runCtx, s.cfg.HTTP.Addr)
			if err != nil {
				log.Error("http listen failed", "addr", s.cfg.HTTP.Addr, "err", err)
				s.cancel()
				return err
			}
		}
		url := s.httpSrv.URL(ln.Addr().String(), s.cfg.Preview.Theme)
		s.mu.Lock()
		s.url = url
		s.mu.Unlock()
		log.Info("http server listening", "addr", ln.Addr().String(), "url", url)
		go func() {
			if err := httpapi.Serve(runCtx, ln, s.httpSrv.Handler()); err != nil {
				log.Error("http server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	go func() {
		defer close(s.inputDone)
		if err := s.relay.Run(runCtx, s.input); err != nil && runCtx.Err() == nil {
			s.errCh <- err
		}
	}()
	return nil
}

// Wait blocks until the input ends, the session expires, a component fails or
// the server is stopped. Only a component failure is returned.
func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	inputDone := s.inputDone
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		pslog.Ctx(ctx).Error("server stopped", "err", err)
		_ = s.Stop(context.Background())
		return err
	case <-inputDone:
		select {
		case err := <-errCh:
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		default:
		}
		s.logger.Info("server input ended")
		_ = s.Stop(context.Background())
		return nil
	case <-s.session.Done():
		s.logger.Info("server session ended")
		_ = s.Stop(context.Background())
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	runCtx := s.ctx
	s.mu.Unlock()
	if !started {
		return nil
	}
	log := s.logger
	log.Info("server stop requested")
	if err := s.session.Close(); err != nil {
		log.Warn("server session close failed", "err", err)
	}
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-runCtx.Done():
		log.Info("server stopped")
		return nil
	}
}

func (s *compositeServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}
