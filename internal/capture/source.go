// Package capture consumes per-frame eye landmarks from the capture sidecar
package capture

import (
	"context"

	"github.com/blinkwatch/blinkwatch/internal/geometry"
)

// Frame is one tick of eye landmarks from the capture+landmark collaborator.
// NoFace marks a frame where the upstream detector found no face; the
// points are zero and the tick must skip detection without mutating state.
type Frame struct {
	Left        [geometry.EyePoints]geometry.Point `json:"left"`
	Right       [geometry.EyePoints]geometry.Point `json:"right"`
	NoFace      bool                               `json:"no_face,omitempty"`
	TimestampMs int64                              `json:"timestamp_ms"`
}

// Source delivers frames from a capture collaborator. A closed Frames
// channel signals end of stream.
type Source interface {
	// Start opens the collaborator. An error here means capture is
	// unavailable and the session must never be entered.
	Start(ctx context.Context) error
	// Frames returns the frame channel. Closed on permanent stream end.
	Frames() <-chan Frame
	// Stop tears the source down and closes the frame channel.
	Stop()
}
