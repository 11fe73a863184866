package stripe

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledseq/util"
)

// A Stripe is a run of pixels of one colour.
type Stripe struct {
	Colour colorful.Color
	Length int32
}

// A Generator produces the next stripe of an endless sequence.
type Generator interface {
	CreateStripe() Stripe
}

// RandomStripeGenerator picks stripe colours from a palette, never the same
// colour twice in a row, or random hues without a palette.
type RandomStripeGenerator struct {
	palette   []colorful.Color
	current   int
	stripeMin int32
	stripeMax int32
}

// NewRandomStripeGenerator creates a generator of stripes between
// stripeMin and stripeMax pixels long.
func NewRandomStripeGenerator(palette []colorful.Color, stripeMin, stripeMax int32) *RandomStripeGenerator {
	g := new(RandomStripeGenerator)
	g.palette = palette
	g.current = -1
	g.stripeMin = max(stripeMin, 1)
	g.stripeMax = max(stripeMax, g.stripeMin+1)
	return g
}

func (g *RandomStripeGenerator) CreateStripe() Stripe {
	var colour colorful.Color
	switch len(g.palette) {
	case 0:
		colour = colorful.Hsl(rand.Float64()*360.0, util.RandomiseSaturation(0.7, 1.0), 0.2)
	case 1:
		colour = g.palette[0]
	default:
		for {
			next := rand.Intn(len(g.palette))
			if next != g.current {
				g.current = next
				break
			}
		}
		colour = g.palette[g.current]
	}

	length := rand.Int31n(g.stripeMax-g.stripeMin) + g.stripeMin
	return Stripe{Colour: colour, Length: length}
}
