package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/gorilla/websocket"

	"github.com/zeusync/kinetix/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const writeTimeout = 5 * time.Second

// Server exposes a Hub over HTTP:
//
//	GET /healthz   liveness
//	GET /snapshot  latest snapshot as JSON, 204 before the first one
//	GET /ws        websocket stream of snapshots and events
type Server struct {
	hub    *Hub
	logger log.Log
	router chi.Router
}

func NewServer(hub *Hub, logger log.Log) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{hub: hub, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleStream)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", log.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("inspector: %w", err)
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("inspector shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.Clients()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.hub.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := s.hub.add()
	defer func() {
		s.hub.remove(c)
		_ = conn.Close()
	}()

	// The stream is one way; reading only detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if snap, ok := s.hub.Latest(); ok {
		if data, err := json.Marshal(Message{Kind: KindSnapshot, Snapshot: &snap}); err == nil {
			if err := s.write(conn, data); err != nil {
				return
			}
		}
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "inspector closing"),
					time.Now().Add(time.Second))
				return
			}
			if err := s.write(conn, data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			s.logger.Debug("websocket write failed", log.Error(err))
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
