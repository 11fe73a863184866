package stream

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledseq/util"
)

const twinklePeakLuminance = 0.6

type sparkle struct {
	lut     []float64
	current int
	running bool
	colour  colorful.Color
	next    colorful.Color
}

func (p *sparkle) scintillate(next colorful.Color, lut []float64) {
	if p.running {
		return
	}
	p.running = true
	p.current = 0
	p.next = next
	p.lut = lut
}

func (p *sparkle) increment() {
	if !p.running {
		return
	}

	p.current++
	if p.current > len(p.lut)/2 {
		p.colour = p.next
	}
	if p.current >= len(p.lut)-1 {
		p.running = false
	}
}

func (p *sparkle) currentColour() colorful.Color {
	if !p.running {
		return p.colour
	}

	gain := p.lut[p.current]
	h, c, l := p.colour.Hcl()
	return colorful.Hcl(h, c, l+((twinklePeakLuminance-l)*gain))
}

// Twinkle is a Renderer where random pixels brighten and fade, swapping to
// another background colour at the peak.
type Twinkle struct {
	numPixels   int
	chance      int32
	backColours []colorful.Color
	pixels      []*sparkle
	memoizer    util.Memoizer
}

// NewTwinkle creates a Twinkle. Each pixel starts a scintillation with
// probability 1/chance per frame.
func NewTwinkle(numPixels int, chance int32, backColours []colorful.Color) *Twinkle {
	t := new(Twinkle)
	t.numPixels = numPixels
	t.chance = max(chance, 1)
	t.backColours = backColours
	if len(t.backColours) == 0 {
		t.backColours = []colorful.Color{colorful.Hcl(0, 0, 0.05)}
	}
	t.memoizer = util.Memoizer{}
	return t
}

func (t *Twinkle) randomBackColour() colorful.Color {
	return t.backColours[rand.Intn(len(t.backColours))]
}

func (t *Twinkle) randomLut() []float64 {
	return util.GenerateLutMemoized((rand.Intn(18)+6)*2, t.memoizer)
}

// CalculateFrame creates a new Frame instance.
func (t *Twinkle) CalculateFrame(runtimeMs int64) *Frame {
	if t.pixels == nil {
		t.pixels = make([]*sparkle, t.numPixels)
		for i := range t.pixels {
			t.pixels[i] = &sparkle{colour: t.randomBackColour()}
		}
	}

	f := NewFrame(t.numPixels)
	for i, p := range t.pixels {
		if rand.Int31n(t.chance) == 0 {
			p.scintillate(t.randomBackColour(), t.randomLut())
		}
		p.increment()
		f.pixels[i] = p.currentColour()
	}

	return f
}
