package relay

import (
	"context"

	"github.com/spf13/afero"
	"pkt.systems/peek/internal/markdown"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

// Renderer converts markdown into a rendered document.
type Renderer interface {
	Render(markdown string) (markdown.Result, error)
}

// Sink receives outbound messages. A session satisfies it.
type Sink interface {
	Send(ctx context.Context, msg schema.Message) error
}

// Deps captures the collaborators of a Relay. Fs and Logger are optional.
type Deps struct {
	Renderer Renderer
	Sink     Sink
	Fs       afero.Fs
	Logger   pslog.Logger
}
