package blink

// Baseline maintains a bounded FIFO of average-openness samples during
// calibration and freezes the mean the instant the buffer first fills.
// Observations after that point do not change the value.
type Baseline struct {
	samples []float64
	size    int
	sum     float64
	frozen  bool
	value   float64
}

// NewBaseline creates an estimator that calibrates over frames samples.
func NewBaseline(frames int) *Baseline {
	if frames < 1 {
		frames = DefaultBaselineFrames
	}
	return &Baseline{samples: make([]float64, 0, frames), size: frames}
}

// Observe records one average-openness sample and returns the current
// baseline. Once calibration completes the frozen value is returned and the
// sample is discarded.
func (b *Baseline) Observe(avg float64) float64 {
	if b.frozen {
		return b.value
	}

	b.samples = append(b.samples, avg)
	b.sum += avg
	if len(b.samples) > b.size {
		b.sum -= b.samples[0]
		b.samples = b.samples[1:]
	}

	mean := b.sum / float64(len(b.samples))
	if len(b.samples) == b.size {
		b.frozen = true
		b.value = mean
	}
	return mean
}

// Calibrated reports whether the buffer has filled and the value is frozen.
func (b *Baseline) Calibrated() bool { return b.frozen }

// Value returns the frozen baseline, or the running mean mid-calibration.
func (b *Baseline) Value() float64 {
	if b.frozen {
		return b.value
	}
	if len(b.samples) == 0 {
		return 0
	}
	return b.sum / float64(len(b.samples))
}

// Progress returns collected and target sample counts for status display.
func (b *Baseline) Progress() (collected, target int) {
	if b.frozen {
		return b.size, b.size
	}
	return len(b.samples), b.size
}
