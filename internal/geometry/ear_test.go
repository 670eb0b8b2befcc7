package geometry

import (
	"errors"
	"math"
	"testing"
)

// eyeWithOpening builds a symmetric 6-point eye with the given horizontal
// span and vertical opening.
func eyeWithOpening(span, opening float64) [EyePoints]Point {
	return [EyePoints]Point{
		{X: 0, Y: 0},
		{X: span / 3, Y: -opening / 2},
		{X: 2 * span / 3, Y: -opening / 2},
		{X: span, Y: 0},
		{X: 2 * span / 3, Y: opening / 2},
		{X: span / 3, Y: opening / 2},
	}
}

func TestEAROpenVsClosed(t *testing.T) {
	open, err := EAR(eyeWithOpening(60, 20))
	if err != nil {
		t.Fatalf("open eye: unexpected error %v", err)
	}
	closed, err := EAR(eyeWithOpening(60, 2))
	if err != nil {
		t.Fatalf("closed eye: unexpected error %v", err)
	}

	if open <= 0 || closed <= 0 {
		t.Errorf("EAR should be positive, got open=%f closed=%f", open, closed)
	}
	if closed >= open {
		t.Errorf("closed EAR (%f) should be smaller than open EAR (%f)", closed, open)
	}
}

func TestEARScalesWithOpening(t *testing.T) {
	// Doubling the vertical opening should double the ratio.
	a, _ := EAR(eyeWithOpening(60, 10))
	b, _ := EAR(eyeWithOpening(60, 20))
	if math.Abs(b-2*a) > 1e-9 {
		t.Errorf("EAR(20px) = %f, want 2×EAR(10px) = %f", b, 2*a)
	}
}

func TestEARFullyClosedIsZero(t *testing.T) {
	ear, err := EAR(eyeWithOpening(60, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ear != 0 {
		t.Errorf("fully closed eye EAR = %f, want 0", ear)
	}
}

func TestEARDegenerateSpan(t *testing.T) {
	// All six points collapsed onto one pixel: zero horizontal span.
	var eye [EyePoints]Point
	for i := range eye {
		eye[i] = Point{X: 5, Y: 5}
	}

	ear, err := EAR(eye)
	if !errors.Is(err, ErrDegenerateSpan) {
		t.Fatalf("err = %v, want ErrDegenerateSpan", err)
	}
	if math.IsNaN(ear) || math.IsInf(ear, 0) {
		t.Errorf("degenerate EAR must be finite, got %f", ear)
	}
}

func TestDist(t *testing.T) {
	d := Point{X: 0, Y: 0}.Dist(Point{X: 3, Y: 4})
	if d != 5 {
		t.Errorf("Dist = %f, want 5", d)
	}
}
