package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	apperrors "github.com/gobarber/web/internal/errors"
	"github.com/gobarber/web/pkg/toast"
)

// feedFrame is pushed to toast feed clients on connect and after every change.
type feedFrame struct {
	Type     string          `json:"type"`
	Messages []toast.Message `json:"messages"`
}

// clientFrame is sent by toast feed clients.
type clientFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func snapshotFrame(msgs []toast.Message) feedFrame {
	if msgs == nil {
		msgs = []toast.Message{}
	}
	return feedFrame{Type: "toasts", Messages: msgs}
}

// provider returns the request's toast provider, answering 500 when the
// request is outside a provider scope.
func (s *Server) provider(w http.ResponseWriter, r *http.Request) (*toast.Provider, bool) {
	p, err := toast.FromContext(r.Context())
	if err != nil {
		s.logger.Error("notification provider unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.New("G040"))
		return nil, false
	}
	return p, true
}

func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request) {
	p, ok := s.provider(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotFrame(p.Messages()))
}

func (s *Server) handleToastContainer(w http.ResponseWriter, r *http.Request) {
	p, ok := s.provider(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := toast.RenderHTML(&buf, p.Messages()); err != nil {
		s.logger.Error("render toasts", "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.Newf(apperrors.CategoryServer, "Internal server error"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := toast.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("dismiss toast", "error", err)
		writeError(w, http.StatusInternalServerError, apperrors.New("G040"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleToastFeed streams the active toasts over a WebSocket. The client
// receives a snapshot on connect and after every change, and may dismiss
// a toast with {"type":"dismiss","id":"…"}.
func (s *Server) handleToastFeed(w http.ResponseWriter, r *http.Request) {
	p, ok := s.provider(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}
	defer conn.Close()
	s.metrics.RecordWebSocketOpen()
	defer s.metrics.RecordWebSocketClose()

	conn.SetReadLimit(s.config.MaxMessageSize)

	// Holds at most the latest pending snapshot; older ones are dropped.
	updates := make(chan []toast.Message, 1)
	snapshot, unsubscribe := p.Watch(func(ev toast.Event) {
		select {
		case <-updates:
		default:
		}
		updates <- ev.Messages
	})
	defer unsubscribe()

	if err := s.writeFrame(conn, snapshotFrame(snapshot)); err != nil {
		s.metrics.RecordWebSocketError("write")
		return
	}

	done := make(chan struct{})
	go s.readFeed(conn, p, done)

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msgs := <-updates:
			if err := s.writeFrame(conn, snapshotFrame(msgs)); err != nil {
				s.metrics.RecordWebSocketError("write")
				return
			}
		case <-ticker.C:
			if p.Closed() {
				s.closeFeed(conn, websocket.CloseGoingAway, "session ended")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readFeed handles client frames until the connection fails.
func (s *Server) readFeed(conn *websocket.Conn, p *toast.Provider, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("toast feed read error", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Debug("invalid toast feed frame", "error", err)
			continue
		}
		switch frame.Type {
		case "dismiss":
			if err := p.RemoveToast(frame.ID); err != nil {
				// provider closed with the session
				return
			}
		default:
			s.logger.Debug("unknown toast feed frame", "type", frame.Type)
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, frame feedFrame) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return conn.WriteJSON(frame)
}

func (s *Server) closeFeed(conn *websocket.Conn, code int, reason string) {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
