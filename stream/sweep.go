package stream

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Sweep is a FiniteRenderer that steps through binary patterns used to locate
// pixels with a camera: at each step pixel i is lit when bit litLength of i
// is clear. It is done once the single-pixel pattern has been shown.
type Sweep struct {
	numPixels int
	stepMs    int64
	lit       colorful.Color
	dark      colorful.Color

	litLength int
	stepStart int64
	started   bool
	done      bool
}

// NewSweep creates a Sweep showing each pattern for stepMs.
func NewSweep(numPixels int, stepMs int64, lit colorful.Color) *Sweep {
	s := new(Sweep)
	s.numPixels = numPixels
	s.stepMs = max(stepMs, 1)
	s.lit = lit
	s.litLength = int(math.Ceil(math.Log2(float64(max(numPixels, 1)))))
	return s
}

// Done reports whether every pattern has been shown.
func (s *Sweep) Done() bool { return s.done }

// CalculateFrame creates a new Frame instance.
func (s *Sweep) CalculateFrame(runtimeMs int64) *Frame {
	if !s.started {
		s.stepStart = runtimeMs
		s.started = true
	}

	for !s.done && runtimeMs-s.stepStart >= s.stepMs {
		s.stepStart += s.stepMs
		if s.litLength == 0 {
			s.done = true
		} else {
			s.litLength--
		}
	}

	f := NewFrame(s.numPixels)
	width := 1 << s.litLength
	for i := 0; i < s.numPixels; i++ {
		if (i/width)%2 == 0 {
			f.pixels[i] = s.lit
		} else {
			f.pixels[i] = s.dark
		}
	}

	return f
}
