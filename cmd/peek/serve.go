package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/peek"
	"pkt.systems/peek/httpapi"
	"pkt.systems/peek/internal/appconfig"
	"pkt.systems/peek/internal/command"
	"pkt.systems/peek/internal/frame"
	"pkt.systems/peek/internal/logx"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var logFile string
	var inputMode string
	var appMode string
	var theme string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Read preview commands from stdin and serve them to a view",
		Long: "Read length-prefixed preview commands from stdin and relay them to the view.\n" +
			"stdout is never written; the process exits when stdin closes or the view stays away.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := applyServeOverrides(&cfg, inputMode, appMode, theme); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			if path := firstNonEmpty(logFile, cfg.Logging.File); path != "" {
				sink, err := logx.OpenFile(afero.NewOsFs(), path)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer func() { _ = sink.Close() }()
				logger = logx.NewLogger(cmd.ErrOrStderr(), sink)
				ctx = pslog.ContextWithLogger(ctx, logger)
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			input, err := newInputDecoder(ctx, cmd.InOrStdin(), cfg.Input)
			if err != nil {
				return err
			}
			logger.Info("input mode selected", "mode", cfg.Input.Mode, "chunk_size", cfg.Input.ChunkSize, "max_frame_bytes", cfg.Input.MaxFrameBytes)
			if stdinIsTerminal(cmd.InOrStdin()) && cfg.Input.Mode != appconfig.InputLines {
				logger.Warn("stdin is a terminal; serve expects framed commands from an editor", "hint", "use --input lines to type commands")
			}

			server, err := peek.New(toServerConfig(cfg), peek.ServerDeps{
				Input:  input,
				Fs:     afero.NewOsFs(),
				Logger: logger,
			}, peek.WithHTTP())
			if err != nil {
				return err
			}

			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if err := server.Start(ctx); err != nil {
				return err
			}

			launch, err := launchCommand(cfg.App, server.URL(), schema.ThemeName(cfg.App.Theme))
			if err != nil {
				_ = server.Stop(context.Background())
				return err
			}
			if launch == nil {
				logger.Info("preview ready", "url", server.URL())
			} else {
				exited, err := startApp(ctx, launch)
				if err != nil {
					_ = server.Stop(context.Background())
					return err
				}
				if cfg.App.Mode == appconfig.AppCommand {
					go func() {
						<-exited
						logger.Info("preview app exited; stopping")
						_ = server.Stop(context.Background())
					}()
				}
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&logFile, "logfile", "", "append structured logs to this file")
	cmd.Flags().StringVar(&inputMode, "input", "", "input discipline (pull, push, lines)")
	cmd.Flags().StringVar(&appMode, "app", "", "how to open the view (none, browser, command)")
	cmd.Flags().StringVar(&theme, "theme", "", "view theme ("+appconfig.ThemeChoices()+")")
	return cmd
}

func applyServeOverrides(cfg *appconfig.Config, inputMode, appMode, theme string) error {
	changed := false
	if v := strings.TrimSpace(inputMode); v != "" {
		cfg.Input.Mode = v
		changed = true
	}
	if v := strings.TrimSpace(appMode); v != "" {
		cfg.App.Mode = v
		changed = true
	}
	if v := strings.TrimSpace(theme); v != "" {
		cfg.App.Theme = v
		changed = true
	}
	if !changed {
		return nil
	}
	return appconfig.Validate(cfg)
}

// newInputDecoder picks the read discipline for the host stream. Pull reads
// frames straight from r; push reads fixed chunks on a goroutine and
// reassembles frames across chunk boundaries; lines accepts action:argument
// text.
func newInputDecoder(ctx context.Context, r io.Reader, cfg appconfig.InputConfig) (command.Decoder, error) {
	var opts []frame.Option
	if cfg.MaxFrameBytes > 0 {
		opts = append(opts, frame.WithMaxSize(cfg.MaxFrameBytes))
	}
	switch cfg.Mode {
	case appconfig.InputPull, "":
		return command.NewDispatcher(frame.NewReader(r, opts...)), nil
	case appconfig.InputPush:
		pump := frame.NewPump(ctx, r, cfg.ChunkSize)
		return command.NewDispatcher(frame.NewBuffered(pump.C(), opts...)), nil
	case appconfig.InputLines:
		return command.NewLineDecoder(r), nil
	default:
		return nil, fmt.Errorf("unsupported input mode %q", cfg.Mode)
	}
}

func toServerConfig(cfg appconfig.Config) peek.ServerConfig {
	theme := schema.ThemeName(cfg.App.Theme)
	return peek.ServerConfig{
		Preview: schema.PreviewConfig{
			IdleTimeout:     time.Duration(cfg.Session.IdleTimeoutMS) * time.Millisecond,
			Theme:           theme,
			DiagramKeywords: cfg.Render.DiagramKeywords,
			Syntax:          cfg.Render.Syntax,
			Typographer:     cfg.Render.Typographer,
			Linkify:         cfg.Render.Linkify,
		},
		HTTP: httpapi.Config{
			Addr:     cfg.HTTP.Addr,
			BasePath: cfg.HTTP.BasePath,
			BaseURL:  cfg.HTTP.BaseURL,
			Theme:    theme,
		},
	}
}

func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
