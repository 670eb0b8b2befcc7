// Package server provides HTTP and WebSocket handlers
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/blinkwatch/blinkwatch/internal/blink"
	"github.com/blinkwatch/blinkwatch/internal/orchestrator"
	"github.com/blinkwatch/blinkwatch/internal/trace"
)

// Message types.
type Message struct {
	Type string `json:"type"`
}

type StatusMessage struct {
	Type    string               `json:"type"`
	Status  blink.Status         `json:"status"`
	Overlay orchestrator.Overlay `json:"overlay"`
}

type BlinkMessage struct {
	Type  string                  `json:"type"`
	Event orchestrator.BlinkEvent `json:"event"`
}

type AlertMessage struct {
	Type  string                  `json:"type"`
	Event orchestrator.AlertEvent `json:"event"`
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	mgr   *orchestrator.Manager
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// New creates a new server and starts the event broadcasters.
func New(mgr *orchestrator.Manager) *Server {
	s := &Server{
		mgr:   mgr,
		conns: make(map[*websocket.Conn]struct{}),
	}

	go s.broadcastStatus()
	go s.broadcastBlinks()
	go s.broadcastAlerts()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// A fresh subscriber gets the latest snapshot immediately rather than
	// waiting for the next tick.
	latest := s.mgr.LatestStatus()
	_ = wsjson.Write(baseCtx, conn, StatusMessage{
		Type:    "status",
		Status:  latest.Status,
		Overlay: latest.Overlay,
	})

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		switch base.Type {
		case "status":
			latest := s.mgr.LatestStatus()
			_ = wsjson.Write(baseCtx, conn, StatusMessage{
				Type:    "status",
				Status:  latest.Status,
				Overlay: latest.Overlay,
			})
		}
	}
}

func (s *Server) broadcastStatus() {
	for evt := range s.mgr.StatusEvents() {
		s.broadcast(StatusMessage{
			Type:    "status",
			Status:  evt.Status,
			Overlay: evt.Overlay,
		})
	}
}

func (s *Server) broadcastBlinks() {
	for evt := range s.mgr.BlinkEvents() {
		s.broadcast(BlinkMessage{Type: "blink", Event: evt})
	}
}

func (s *Server) broadcastAlerts() {
	for evt := range s.mgr.AlertEvents() {
		s.broadcast(AlertMessage{Type: "alert", Event: evt})
	}
}

func (s *Server) broadcast(msg interface{}) {
	s.mu.RLock()
	for conn := range s.conns {
		go func(c *websocket.Conn, m interface{}) {
			_ = wsjson.Write(context.Background(), c, m)
		}(conn, msg)
	}
	s.mu.RUnlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	latest := s.mgr.LatestStatus()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusMessage{
		Type:    "status",
		Status:  latest.Status,
		Overlay: latest.Overlay,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.mgr.Summary())
}
