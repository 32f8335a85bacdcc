package logx

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"pkt.systems/pslog"
)

// OpenFile opens path for appending log lines, creating parent directories.
func OpenFile(fs afero.Fs, path string) (io.WriteCloser, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// NewLogger builds the process logger. Without a sink it logs to stderr in
// console mode; with one, structured lines go to both.
func NewLogger(stderr io.Writer, sink io.Writer) pslog.Logger {
	if sink == nil {
		return pslog.LoggerFromEnv(
			pslog.WithEnvWriter(stderr),
			pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
		)
	}
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(io.MultiWriter(stderr, sink)),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
	)
}
