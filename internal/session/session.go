// Package session holds the single view a preview process serves and ends the
// process when that view stays away too long.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pkt.systems/peek/internal/logx"
	"pkt.systems/peek/schema"
	"pkt.systems/pslog"
)

// ErrClosed indicates the session has expired or was closed.
var ErrClosed = errors.New("session closed")

// View is the outbound channel to one connected view.
type View interface {
	ID() schema.ViewID
	Send(ctx context.Context, msg schema.Message) error
	Close() error
}

// Session owns at most one view at a time. While no view is attached after a
// detach, an idle timer runs; when it fires Done is closed.
type Session struct {
	sendMu sync.Mutex

	mu       sync.Mutex
	view     View
	gen      uint64
	timer    *time.Timer
	idle     time.Duration
	lastBase *schema.BaseMessage
	lastShow *schema.ShowMessage
	closed   bool

	done     chan struct{}
	doneOnce sync.Once
	log      pslog.Logger
}

// New constructs a Session with the given idle timeout.
func New(idle time.Duration, logger pslog.Logger) *Session {
	if idle <= 0 {
		idle = schema.DefaultIdleTimeout
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Session{
		idle: idle,
		done: make(chan struct{}),
		log:  logger,
	}
}

// Done is closed when the idle timer fires or Close is called.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Attached reports whether a view is attached.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view != nil
}

// Attach makes v the session's view, cancelling a pending idle timer and
// closing any view it replaces. The last base and show messages are replayed
// to v before any later Send reaches it. The returned detach arms the idle
// timer if v is still the current view.
func (s *Session) Attach(ctx context.Context, v View) (func(), error) {
	if v == nil {
		return nil, errors.New("session: nil view")
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	prev := s.view
	s.view = v
	s.gen++
	var replay []schema.Message
	if s.lastBase != nil {
		replay = append(replay, *s.lastBase)
	}
	if s.lastShow != nil {
		replay = append(replay, *s.lastShow)
	}
	s.mu.Unlock()

	log := logx.WithView(s.log, v.ID())
	if prev != nil && prev != v {
		log.Info("session view replaced", "previous", prev.ID())
		_ = prev.Close()
	}
	log.Info("session view attached", "replay", len(replay))
	for _, msg := range replay {
		if err := v.Send(ctx, msg); err != nil {
			log.Debug("session replay failed", "action", msg.MessageAction(), "err", err)
			break
		}
	}

	var once sync.Once
	return func() { once.Do(func() { s.detach(v) }) }, nil
}

func (s *Session) detach(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view != v {
		return
	}
	s.view = nil
	if s.closed {
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.idle, func() { s.expire(gen) })
	logx.WithView(s.log, v.ID()).Info("session view detached", "idle_timeout", s.idle)
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.view != nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.timer = nil
	s.mu.Unlock()
	s.log.Info("session idle timeout", "idle_timeout", s.idle)
	s.doneOnce.Do(func() { close(s.done) })
}

// Send delivers msg to the attached view. Base and show messages are retained
// for replay even when no view is attached, in which case ErrNoView is
// returned.
func (s *Session) Send(ctx context.Context, msg schema.Message) error {
	if msg == nil {
		return schema.ErrInvalidMessage
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	switch m := msg.(type) {
	case schema.BaseMessage:
		s.lastBase = &m
	case schema.ShowMessage:
		s.lastShow = &m
	}
	v := s.view
	s.mu.Unlock()

	if v == nil {
		return schema.ErrNoView
	}
	if err := v.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", schema.ErrViewClosed, err)
	}
	return nil
}

// Close detaches and closes the current view, stops the idle timer and closes
// Done.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	v := s.view
	s.view = nil
	s.closed = true
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
	if v != nil {
		return v.Close()
	}
	return nil
}
