package capture

import (
	"context"
	"sync"
)

// ScriptedSource replays a fixed sequence of frames and then closes the
// stream. Used in tests and for driving the pipeline without a sidecar.
type ScriptedSource struct {
	frames  []Frame
	outCh   chan Frame
	stopCh  chan struct{}
	stopOne sync.Once
}

// NewScriptedSource creates a source that will deliver frames in order.
func NewScriptedSource(frames []Frame) *ScriptedSource {
	return &ScriptedSource{
		frames: frames,
		outCh:  make(chan Frame, len(frames)),
		stopCh: make(chan struct{}),
	}
}

// Start implements Source.
func (s *ScriptedSource) Start(ctx context.Context) error {
	go func() {
		defer close(s.outCh)
		for _, f := range s.frames {
			select {
			case s.outCh <- f:
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Frames implements Source.
func (s *ScriptedSource) Frames() <-chan Frame { return s.outCh }

// Stop implements Source.
func (s *ScriptedSource) Stop() {
	s.stopOne.Do(func() { close(s.stopCh) })
}
