package stream

import (
	"github.com/matt-g-everett/ledseq/stream/stripe"
)

// InfinityStripe is a Renderer that scrolls an endless run of stripes along
// the strip, stretched towards the far end.
type InfinityStripe struct {
	numPixels   int
	generator   stripe.Generator
	stripes     []stripe.Stripe
	current     float64
	runtimeMs   int64
	started     bool
	pixelsPerMs float64
	adjusted    bool
}

// NewInfinityStripe creates an InfinityStripe fed by generator.
func NewInfinityStripe(numPixels int, generator stripe.Generator, pixelsPerMs float64) *InfinityStripe {
	s := new(InfinityStripe)
	s.numPixels = numPixels
	s.generator = generator
	s.stripes = make([]stripe.Stripe, 0, 20)
	s.pixelsPerMs = pixelsPerMs
	s.adjusted = true
	return s
}

func (s *InfinityStripe) addStripe() stripe.Stripe {
	st := s.generator.CreateStripe()
	s.stripes = append(s.stripes, st)
	return st
}

// stripeAt returns the stripe covering offset and the offset where it ends.
func (s *InfinityStripe) stripeAt(offset float64) (stripe.Stripe, float64) {
	if len(s.stripes) == 0 {
		s.addStripe()
	}

	var end float64
	for _, st := range s.stripes {
		end += float64(st.Length)
		if offset < end {
			return st, end
		}
	}

	for {
		st := s.addStripe()
		end += float64(st.Length)
		if offset < end {
			return st, end
		}
	}
}

// CalculateFrame creates a new Frame instance.
func (s *InfinityStripe) CalculateFrame(runtimeMs int64) *Frame {
	if !s.started {
		s.runtimeMs = runtimeMs
		s.started = true
	}

	// Cull stripes that have scrolled past
	toRemove := 0
	for _, st := range s.stripes {
		if s.current <= float64(st.Length) {
			break
		}
		s.current -= float64(st.Length)
		toRemove++
	}
	s.stripes = s.stripes[toRemove:]

	f := NewFrame(s.numPixels)
	adjustment := 1.0
	current, end := s.stripeAt(s.current)
	for i := 0; i < s.numPixels; i++ {
		if s.adjusted {
			adjustment = 1.0 + 1.4*(float64(i)/float64(s.numPixels))
		}

		offset := (adjustment * float64(i)) + s.current
		if offset >= end {
			current, end = s.stripeAt(offset)
		}
		f.pixels[i] = current.Colour
	}

	s.current += s.pixelsPerMs * float64(runtimeMs-s.runtimeMs)
	s.runtimeMs = runtimeMs

	return f
}
