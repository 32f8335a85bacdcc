// Package relay runs the command loop: it reads host commands, turns each into
// at most one view message and hands it to the session.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/afero"
	"pkt.systems/peek/internal/command"
	"pkt.systems/peek/internal/logx"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

var (
	// ErrInvalidContent indicates a shown file that is not valid UTF-8.
	ErrInvalidContent = errors.New("file is not valid utf-8")
	// ErrEmptyPath indicates a show that names no file.
	ErrEmptyPath = errors.New("show names no file")
)

// Relay processes commands one at a time, in input order.
type Relay struct {
	renderer Renderer
	sink     Sink
	fs       afero.Fs
	logger   pslog.Logger
}

// New constructs a Relay.
func New(deps Deps) (*Relay, error) {
	if deps.Renderer == nil {
		return nil, errors.New("relay: renderer is required")
	}
	if deps.Sink == nil {
		return nil, errors.New("relay: sink is required")
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Relay{
		renderer: deps.Renderer,
		sink:     deps.Sink,
		fs:       deps.Fs,
		logger:   logger,
	}, nil
}

// Run handles commands from dec until the input ends. A clean end of input
// returns nil; a truncated frame or a cancelled context is returned as is.
// Undecodable commands are logged and skipped.
func (r *Relay) Run(ctx context.Context, dec command.Decoder) error {
	handled := 0
	for {
		cmd, err := dec.Next(ctx)
		if err != nil {
			var decodeErr *command.DecodeError
			switch {
			case errors.As(err, &decodeErr):
				logx.WithAction(r.logger, string(decodeErr.Action)).Warn("relay command skipped", "part", decodeErr.Part, "err", err)
				continue
			case errors.Is(err, io.EOF):
				r.logger.Info("relay input closed", "commands", handled)
				return nil
			default:
				r.logger.Warn("relay input failed", "commands", handled, "err", err)
				return err
			}
		}
		handled++
		r.Handle(ctx, cmd)
	}
}

// Handle turns one command into a message and sends it. Failures are logged;
// they never stop the loop.
func (r *Relay) Handle(ctx context.Context, cmd command.Command) {
	log := logx.WithAction(r.logger, string(cmd.Action()))
	if show, ok := cmd.(command.Show); ok && show.FromFile {
		log = logx.WithPath(log, show.Path)
	}
	msg, err := r.message(cmd)
	if err != nil {
		log.Warn("relay command failed", "err", err)
		return
	}
	if msg == nil {
		log.Debug("relay command ignored")
		return
	}
	if err := r.sink.Send(ctx, msg); err != nil {
		if errors.Is(err, schema.ErrNoView) || errors.Is(err, schema.ErrViewClosed) {
			log.Debug("relay send dropped", "err", err)
			return
		}
		log.Warn("relay send failed", "err", err)
		return
	}
	log.Trace("relay message sent")
}

func (r *Relay) message(cmd command.Command) (schema.Message, error) {
	switch c := cmd.(type) {
	case command.Show:
		content := c.Content
		if c.FromFile {
			data, err := r.readFile(c.Path)
			if err != nil {
				return nil, err
			}
			content = data
		}
		res, err := r.renderer.Render(content)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return schema.NewShow(res.HTML, res.LineCount), nil
	case command.Scroll:
		return schema.NewScroll(c.Line), nil
	case command.Base:
		base, err := schema.NormalizeBase(c.Path)
		if err != nil {
			return nil, err
		}
		return schema.NewBase(base), nil
	case command.Unknown:
		return nil, nil
	default:
		return nil, fmt.Errorf("relay: unhandled command %T", cmd)
	}
}

func (r *Relay) readFile(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %s: %w", path, ErrInvalidContent)
	}
	return string(data), nil
}
