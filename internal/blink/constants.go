// Package blink implements the blink-detection session core
package blink

import "time"

// Detection defaults, tuned against a 30fps webcam feed.
const (
	// Frames of average openness collected before the baseline freezes
	DefaultBaselineFrames = 30

	// Closed-eye threshold as a ratio of the personal baseline
	DefaultThresholdRatio = 0.75

	// Minimum consecutive closed frames for a valid blink
	DefaultMinBlinkFrames = 3

	// Trailing window for the blinks-per-minute estimate
	DefaultRateWindow = 4 * time.Minute

	// Shortest elapsed time the rate divides by, so a seconds-old
	// session cannot blow the estimate up
	minRateElapsed = time.Second
)
