package stream

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledseq/stream/stripe"
)

// ErrUnknownAnimation is returned for names missing from the library.
var ErrUnknownAnimation = errors.New("unknown animation")

// Animation types understood by AnimationDef.
const (
	TypeTwinkle  = "twinkle"
	TypeGradient = "gradient"
	TypeStreak   = "streak"
	TypeStripes  = "stripes"
	TypeSweep    = "sweep"
)

// AnimationDef describes a named animation. Colours, Chance, Length, Speed
// and Step are interpreted per Type.
type AnimationDef struct {
	Name     string        `yaml:"name"`
	Type     string        `yaml:"type"`
	Duration time.Duration `yaml:"duration"`
	Colours  []string      `yaml:"colours"`
	Chance   int32         `yaml:"chance"`
	Length   int           `yaml:"length"`
	Speed    float64       `yaml:"speed"`
	Step     time.Duration `yaml:"step"`

	// Then lists animations played straight after this one, ahead of
	// anything already waiting.
	Then []string `yaml:"then"`
}

func (d AnimationDef) validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Duration < 0 {
		return fmt.Errorf("%s: duration must not be negative", d.Name)
	}

	switch d.Type {
	case TypeTwinkle, TypeGradient, TypeStreak, TypeStripes:
		if d.Duration == 0 {
			return fmt.Errorf("%s: %s needs a duration", d.Name, d.Type)
		}
	case TypeSweep:
	default:
		return fmt.Errorf("%s: unknown type %q", d.Name, d.Type)
	}

	if _, err := parseColours(d.Colours); err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil
}

func parseColours(hexes []string) ([]colorful.Color, error) {
	out := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colour %q: %w", h, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func colourOr(colours []colorful.Color, i int, hex string) colorful.Color {
	if i < len(colours) {
		return colours[i]
	}
	c, _ := colorful.Hex(hex)
	return c
}

func (d AnimationDef) renderer(numPixels int) (Renderer, error) {
	colours, err := parseColours(d.Colours)
	if err != nil {
		return nil, err
	}

	switch d.Type {
	case TypeTwinkle:
		return NewTwinkle(numPixels, orInt32(d.Chance, 400), colours), nil
	case TypeGradient:
		return NewGradientTrail(numPixels, RainbowGradient, orInt(d.Length, 180), orFloat(d.Speed, 0.06)), nil
	case TypeStreak:
		back := colourOr(colours, 0, "#000005")
		fore := colourOr(colours, 1, "#808080")
		return NewStreak(numPixels, orInt32(d.Chance, 40), back, fore), nil
	case TypeStripes:
		gen := stripe.NewRandomStripeGenerator(colours, 150, 400)
		return NewInfinityStripe(numPixels, gen, orFloat(d.Speed, 0.03)), nil
	case TypeSweep:
		step := d.Step
		if step <= 0 {
			step = 200 * time.Millisecond
		}
		return NewSweep(numPixels, step.Milliseconds(), colourOr(colours, 0, "#404040")), nil
	}
	return nil, fmt.Errorf("unknown type %q", d.Type)
}

func orInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func orInt32(v, def int32) int32 {
	if v <= 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Library builds fresh clips from animation definitions.
type Library struct {
	numPixels int
	defs      map[string]AnimationDef
}

// NewLibrary indexes defs by name.
func NewLibrary(numPixels int, defs []AnimationDef) (*Library, error) {
	l := new(Library)
	l.numPixels = numPixels
	l.defs = make(map[string]AnimationDef, len(defs))
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := l.defs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate animation %q", d.Name)
		}
		l.defs[d.Name] = d
	}
	return l, nil
}

// Lookup returns the definition called name.
func (l *Library) Lookup(name string) (AnimationDef, bool) {
	d, ok := l.defs[name]
	return d, ok
}

// Names returns the defined names in order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.defs))
	for n := range l.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build creates a new clip for name. Every call returns a distinct clip so
// the same animation can be queued more than once.
func (l *Library) Build(name string) (*Clip, error) {
	d, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAnimation, name)
	}

	r, err := d.renderer(l.numPixels)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return NewClip(d.Name, r, d.Duration), nil
}
