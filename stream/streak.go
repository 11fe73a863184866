package stream

import (
	"container/list"
	"math"
	"math/rand"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

type streakParticle struct {
	colour    colorful.Color
	start     float64
	current   float64
	increment float64
	length    float64
	gainRate  float64
}

func newStreakParticle(colour colorful.Color, start float64, increment float64) *streakParticle {
	p := new(streakParticle)
	p.colour = colour
	p.start = start
	p.current = start
	p.increment = increment
	p.length = 10
	p.gainRate = 0.05
	return p
}

// advance moves the particle and reports whether it is still on the strip.
func (p *streakParticle) advance(numPixels float64) bool {
	p.current += p.increment
	return p.current <= numPixels && p.current >= -p.length
}

func (p *streakParticle) easeDistance() float64 {
	return math.Abs(p.current-p.start) * p.gainRate
}

// gain fades the streak in over the first unit of ease distance and out over
// the second.
func (p *streakParticle) gain(d float64) float64 {
	if d > 2 {
		return 0
	} else if d > 1 {
		d = 2 - d
	}
	return ease.InOutQuad(d)
}

func (p *streakParticle) draw(f *Frame) bool {
	d := p.easeDistance()
	if d > 2 {
		return false
	}

	bias := p.gain(d)
	start := max(int(math.Ceil(p.current)), 0)
	end := min(int(math.Floor(p.current+p.length)), f.Len()-1)
	for i := start; i <= end; i++ {
		f.pixels[i] = f.pixels[i].BlendHcl(p.colour, bias)
	}
	return true
}

// Streak is a Renderer of streaks that fade in then out as they travel.
type Streak struct {
	numPixels  int
	backColour colorful.Color
	foreColour colorful.Color
	chance     int32
	particles  *list.List
}

// NewStreak creates a Streak. A new streak appears with probability
// 1/chance per frame.
func NewStreak(numPixels int, chance int32, backColour, foreColour colorful.Color) *Streak {
	s := new(Streak)
	s.numPixels = numPixels
	s.chance = max(chance, 1)
	s.backColour = backColour
	s.foreColour = foreColour
	s.particles = list.New()
	return s
}

// CalculateFrame creates a new Frame instance.
func (s *Streak) CalculateFrame(runtimeMs int64) *Frame {
	f := NewFrame(s.numPixels)
	f.Fill(s.backColour)

	numPixels := float64(s.numPixels)
	var next *list.Element
	for e := s.particles.Front(); e != nil; e = next {
		next = e.Next()
		p := e.Value.(*streakParticle)
		if !p.advance(numPixels) || !p.draw(f) {
			s.particles.Remove(e)
		}
	}

	if rand.Int31n(s.chance) == 0 {
		increment := 0.2
		if rand.Intn(2) == 0 {
			increment = -increment
		}
		s.particles.PushBack(newStreakParticle(s.foreColour, rand.Float64()*numPixels, increment))
	}

	return f
}
