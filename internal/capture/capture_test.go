package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/blinkwatch/blinkwatch/internal/geometry"
	"github.com/blinkwatch/blinkwatch/internal/resilience"
)

func TestScriptedSourceDeliversAndCloses(t *testing.T) {
	frames := []Frame{
		{TimestampMs: 1},
		{TimestampMs: 2},
		{NoFace: true, TimestampMs: 3},
	}
	src := NewScriptedSource(frames)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	var got []Frame
	for f := range src.Frames() {
		got = append(got, f)
	}
	if len(got) != 3 {
		t.Fatalf("received %d frames, want 3", len(got))
	}
	if !got[2].NoFace {
		t.Error("third frame should be a no-face frame")
	}
}

func TestScriptedSourceStop(t *testing.T) {
	src := NewScriptedSource([]Frame{{}, {}, {}})
	src.Stop()
	src.Stop() // Stop must be idempotent
}

func TestWSSourceReceivesFrames(t *testing.T) {
	sent := Frame{TimestampMs: 42}
	sent.Left[3] = geometry.Point{X: 60, Y: 0}
	sent.Right[3] = geometry.Point{X: 60, Y: 0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		_ = wsjson.Write(r.Context(), conn, sent)
		// Hold the connection open until the client goes away.
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		_ = conn.Ping(ctx)
		<-ctx.Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := NewWSSource("ws" + strings.TrimPrefix(srv.URL, "http"))
	if err := src.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer src.Stop()

	select {
	case f := <-src.Frames():
		if f.TimestampMs != 42 {
			t.Errorf("TimestampMs = %d, want 42", f.TimestampMs)
		}
		if f.Left[3].X != 60 {
			t.Errorf("Left[3].X = %f, want 60", f.Left[3].X)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for frame")
	}
}

func TestWSSourceDialFailureIsFatal(t *testing.T) {
	src := NewWSSource("ws://127.0.0.1:1/frames")
	src.retry = resilience.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := src.Start(ctx); err == nil {
		t.Fatal("Start should fail when the sidecar cannot be reached")
	}
}
