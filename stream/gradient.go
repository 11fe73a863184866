package stream

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// GradientTable stores a look-up table of colours interpolated by hue.
type GradientTable []struct {
	Hue float64
	Pos float64
}

// RainbowGradient wraps the hue circle from pink back to pink.
var RainbowGradient = GradientTable{
	{0.0, 0.0},
	{6.0, 0.04},   // Pink
	{87.0, 0.14},  // Red
	{88.0, 0.28},  // Orange
	{98.0, 0.42},  // Yellow
	{180.0, 0.56}, // Green
	{190.0, 0.70}, // Turquoise
	{320.0, 0.84}, // Blue
	{328.0, 0.91}, // Violet
	{360.0, 1.0},  // Pink wrap
}

// GetColor gets a colour at the specified point on the look-up table.
func (g GradientTable) GetColor(t, s, l float64) colorful.Color {
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			h := (((t - c1.Pos) / (c2.Pos - c1.Pos)) * (c2.Hue - c1.Hue)) + c1.Hue
			return colorful.Hcl(h, s, l)
		}
	}

	// Past the last keypoint
	return colorful.Hcl(g[len(g)-1].Hue, s, l)
}

// GradientTrail is a Renderer that scrolls a gradient along the strip.
type GradientTrail struct {
	numPixels   int
	gradient    GradientTable
	trailLength int
	pixelsPerMs float64
	current     float64
	runtimeMs   int64
	started     bool
}

// NewGradientTrail creates a GradientTrail repeating every trailLength pixels.
func NewGradientTrail(numPixels int, gradient GradientTable, trailLength int, pixelsPerMs float64) *GradientTrail {
	g := new(GradientTrail)
	g.numPixels = numPixels
	g.gradient = gradient
	g.trailLength = max(trailLength, 1)
	g.pixelsPerMs = pixelsPerMs
	return g
}

// CalculateFrame creates a new Frame instance.
func (g *GradientTrail) CalculateFrame(runtimeMs int64) *Frame {
	if !g.started {
		g.runtimeMs = runtimeMs
		g.started = true
	}

	f := NewFrame(g.numPixels)
	length := float64(g.trailLength)
	for i := 0; i < g.numPixels; i++ {
		t := math.Mod(float64(i)-g.current, length)
		if t < 0 {
			t += length
		}
		f.pixels[i] = g.gradient.GetColor(t/length, 1.0, 0.05)
	}

	g.current += g.pixelsPerMs * float64(runtimeMs-g.runtimeMs)
	g.current = math.Mod(g.current, length)
	g.runtimeMs = runtimeMs

	return f
}
