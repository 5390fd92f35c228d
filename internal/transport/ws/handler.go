// Package ws is the thin per-connection WebSocket transport adapter for the
// transcript accumulator. It is deliberately shallow: decode a frame, call
// into internal/accumulator through the session that owns the connection,
// encode the resulting DisplayEvent. Grounded on internal/ws/handler.go's
// readMetadata/processMessages/newEventSender shape, generalized from audio
// frames to transcript-event frames.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
	"github.com/davidbmar/transcription-realtime-whisper/internal/metrics"
	"github.com/davidbmar/transcription-realtime-whisper/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// sessionMetadata is the first text frame sent by the client. Mode is
// reserved for future reconciliation engines; only one engine is
// implemented today, so Mode is read and logged but otherwise unused.
type sessionMetadata struct {
	Mode string `json:"mode"`
}

// transcriptFrame is every subsequent text frame sent by the client.
type transcriptFrame struct {
	Kind string `json:"kind"` // "partial" or "final"
	Text string `json:"text"`
}

// Handler upgrades HTTP connections to WebSocket and runs transcript
// accumulation sessions against a shared Registry.
type Handler struct {
	registry *session.Registry
	cfg      accumulator.Config
}

// NewHandler creates a WebSocket handler. Every accepted connection opens
// its own Session in registry, configured with cfg.
func NewHandler(registry *session.Registry, cfg accumulator.Config) *Handler {
	return &Handler{registry: registry, cfg: cfg}
}

// ServeHTTP upgrades the connection and runs the accumulation session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runSession(conn)
}

func (h *Handler) runSession(conn *websocket.Conn) {
	meta, err := readSessionMetadata(conn)
	if err != nil {
		slog.Error("read session metadata", "error", err)
		return
	}

	sess := h.registry.Open(h.cfg)
	defer func() {
		_ = h.registry.Close(sess.ID)
		metrics.Forget(sess.ID)
	}()

	metrics.SessionsTotal.Inc()
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	slog.Info("accumulator session started", "session_id", sess.ID, "mode", meta.Mode)

	send := newEventSender(conn)
	processFrames(conn, sess, send)

	slog.Info("accumulator session ended", "session_id", sess.ID)
}

func processFrames(conn *websocket.Conn, sess *session.Session, send func(accumulator.DisplayEvent)) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("connection closed", "session_id", sess.ID, "error", err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var frame transcriptFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			slog.Warn("malformed transcript frame", "session_id", sess.ID, "error", err)
			continue
		}

		handleFrame(sess, frame, send)
	}
}

func handleFrame(sess *session.Session, frame transcriptFrame, send func(accumulator.DisplayEvent)) {
	var ev accumulator.DisplayEvent
	var m accumulator.Metrics

	sess.Do(func(a *accumulator.Accumulator) {
		switch frame.Kind {
		case "partial":
			ev = a.AddPartial(frame.Text)
		case "final":
			ev = a.AddFinal(frame.Text)
		default:
			return
		}
		m = a.GetMetrics()
	})

	if ev.Type == "" {
		return
	}

	metrics.Observe(sess.ID, m)
	metrics.ObserveDisplay(ev.Metadata)
	send(ev)
}

func newEventSender(conn *websocket.Conn) func(accumulator.DisplayEvent) {
	var mu sync.Mutex
	return func(ev accumulator.DisplayEvent) {
		mu.Lock()
		defer mu.Unlock()

		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Error("write display event", "error", err)
		}
	}
}

func readSessionMetadata(conn *websocket.Conn) (*sessionMetadata, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var meta sessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
