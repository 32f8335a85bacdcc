package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pkt.systems/peek/internal/logx"
	"pkt.systems/peek/schema"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// wsView is a view reached over one WebSocket connection. Messages go out as
// binary frames holding the JSON encoding.
type wsView struct {
	id   schema.ViewID
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

func newWSView(conn *websocket.Conn) *wsView {
	return &wsView{
		id:   schema.ViewID(uuid.NewString()),
		conn: conn,
		done: make(chan struct{}),
	}
}

func (v *wsView) ID() schema.ViewID {
	return v.id
}

func (v *wsView) Send(ctx context.Context, msg schema.Message) error {
	data, err := schema.Encode(msg)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return schema.ErrViewClosed
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = v.conn.SetWriteDeadline(deadline)
	return v.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (v *wsView) Close() error {
	var err error
	v.closeOnce.Do(func() {
		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()
		_ = v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = v.conn.Close()
		close(v.done)
	})
	return err
}

// readLoop discards inbound messages until the peer goes away.
func (v *wsView) readLoop() error {
	v.conn.SetReadLimit(4096)
	_ = v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func (v *wsView) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			if err := v.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logx.Ctx(r.Context()).With("remote", clientIP(r))
	if s.views == nil {
		http.Error(w, "no session", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("http websocket upgrade failed", "err", err)
		return
	}
	view := newWSView(conn)
	ctx := logx.ContextWithView(r.Context(), log, view.id)
	log = logx.Ctx(ctx)

	detach, err := s.views.Attach(ctx, view)
	if err != nil {
		log.Warn("http websocket rejected", "err", err)
		_ = view.Close()
		return
	}
	log.Info("http websocket opened")
	go view.keepalive()
	err = view.readLoop()
	detach()
	_ = view.Close()
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		log.Warn("http websocket closed", "err", err)
		return
	}
	log.Info("http websocket closed")
}
