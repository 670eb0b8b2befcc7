package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/blinkwatch/blinkwatch/internal/resilience"
)

const (
	// Buffered so a slow tick cannot immediately stall the reader
	frameBuffer = 100

	dialTimeout = 5 * time.Second
)

// WSSource reads JSON frames from the landmark sidecar over WebSocket.
// The initial dial is retried with backoff and is fatal if it never
// succeeds; read errors mid-session reconnect in the background.
type WSSource struct {
	url     string
	retry   resilience.RetryConfig
	outCh   chan Frame
	stopCh  chan struct{}
	stopOne sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSSource creates a source for the sidecar at url
// (e.g. ws://localhost:8765/frames).
func NewWSSource(url string) *WSSource {
	return &WSSource{
		url:    url,
		retry:  resilience.DialRetryConfig(),
		outCh:  make(chan Frame, frameBuffer),
		stopCh: make(chan struct{}),
	}
}

// Start dials the sidecar and begins the read loop. A dial that exhausts
// its retries is a startup failure: no frame is ever delivered.
func (s *WSSource) Start(ctx context.Context) error {
	if err := s.dial(ctx); err != nil {
		return fmt.Errorf("capture unavailable at %s: %w", s.url, err)
	}
	go s.readLoop(ctx)
	return nil
}

// Frames returns the frame channel.
func (s *WSSource) Frames() <-chan Frame { return s.outCh }

// Stop closes the connection and the frame channel.
func (s *WSSource) Stop() {
	s.stopOne.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close(websocket.StatusNormalClosure, "")
		}
		s.mu.Unlock()
	})
}

func (s *WSSource) dial(ctx context.Context) error {
	return resilience.Retry(ctx, s.retry, func() error {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		conn, _, err := websocket.Dial(dialCtx, s.url, nil)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		slog.Info("capture sidecar connected", "url", s.url)
		return nil
	})
}

func (s *WSSource) readLoop(ctx context.Context) {
	defer close(s.outCh)

	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		var frame Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			default:
			}

			slog.Warn("capture stream interrupted, reconnecting", "error", err)
			if err := s.dial(ctx); err != nil {
				slog.Error("capture stream lost", "error", err)
				return
			}
			continue
		}

		select {
		case s.outCh <- frame:
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
