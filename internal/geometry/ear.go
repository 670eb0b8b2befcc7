// Package geometry computes the eye aspect ratio from eye-contour landmarks
package geometry

import (
	"errors"
	"math"
)

// EyePoints is the number of contour points per eye. Index semantics are
// fixed: 0 and 3 are the horizontal corners, 1/5 and 2/4 the vertical pairs.
const EyePoints = 6

// minSpan is the smallest horizontal corner distance (in pixels) accepted
// before the ratio is considered degenerate.
const minSpan = 1e-6

// ErrDegenerateSpan reports an eye whose horizontal corner distance is too
// small to divide by. Callers skip detection for the frame instead of
// letting NaN or Inf enter the pipeline.
var ErrDegenerateSpan = errors.New("geometry: degenerate horizontal eye span")

// Point is a 2D coordinate in frame pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// EAR computes the eye aspect ratio for one eye:
//
//	(‖p1−p5‖ + ‖p2−p4‖) / (2 · ‖p0−p3‖)
//
// Larger values mean a more open eye, near-zero means closed. Returns
// ErrDegenerateSpan when the horizontal corner distance is below minSpan.
func EAR(eye [EyePoints]Point) (float64, error) {
	span := eye[0].Dist(eye[3])
	if span < minSpan {
		return 0, ErrDegenerateSpan
	}
	vertA := eye[1].Dist(eye[5])
	vertB := eye[2].Dist(eye[4])
	return (vertA + vertB) / (2 * span), nil
}
