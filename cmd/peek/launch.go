package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"

	"pkt.systems/peek/internal/appconfig"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

// launchCommand returns the argv that opens url, or nil when nothing should
// be launched.
func launchCommand(cfg appconfig.AppConfig, url string, theme schema.ThemeName) ([]string, error) {
	if url == "" {
		return nil, errors.New("preview url is not available")
	}
	switch cfg.Mode {
	case appconfig.AppNone:
		return nil, nil
	case appconfig.AppBrowser, "":
		return openerCommand(runtime.GOOS, url), nil
	case appconfig.AppCommand:
		if len(cfg.Command) == 0 || cfg.Command[0] == "" {
			return nil, errors.New("app.command is required for app.mode command")
		}
		args := append([]string(nil), cfg.Command...)
		if theme == "" {
			theme = schema.DefaultTheme
		}
		return append(args, url, string(theme)), nil
	default:
		return nil, errors.New("unsupported app mode " + cfg.Mode)
	}
}

func openerCommand(goos, url string) []string {
	switch goos {
	case "darwin":
		return []string{"open", url}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}
	default:
		return []string{"xdg-open", url}
	}
}

// startApp starts argv detached from the host's stdio. stdout belongs to the
// host editor, so the child's output goes to stderr. The returned channel is
// closed when the process exits.
func startApp(ctx context.Context, argv []string) (<-chan struct{}, error) {
	logger := pslog.Ctx(ctx)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logger.Error("preview app start failed", "command", argv[0], "err", err)
		return nil, err
	}
	logger.Info("preview app started", "command", argv[0], "pid", cmd.Process.Pid)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		if err := cmd.Wait(); err != nil {
			logger.Warn("preview app exited", "command", argv[0], "err", err)
			return
		}
		logger.Debug("preview app exited", "command", argv[0])
	}()
	return exited, nil
}
