package stream

import (
	"encoding/binary"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPixels is the strip length used when the config does not set one.
const DefaultPixels = 500

// Frame represents a frame of RGB pixels to display on an ledrx device.
type Frame struct {
	pixels []colorful.Color
}

// NewFrame creates a black Frame of numPixels pixels.
func NewFrame(numPixels int) *Frame {
	f := new(Frame)
	f.pixels = make([]colorful.Color, numPixels)
	return f
}

// Len returns the number of pixels.
func (f *Frame) Len() int { return len(f.pixels) }

// At returns the colour of pixel i.
func (f *Frame) At(i int) colorful.Color { return f.pixels[i] }

// Set sets the colour of pixel i.
func (f *Frame) Set(i int, c colorful.Color) { f.pixels[i] = c }

// Fill sets every pixel to c.
func (f *Frame) Fill(c colorful.Color) {
	for i := range f.pixels {
		f.pixels[i] = c
	}
}

// InterpolateFrame blends f towards f2. A transitionPoint of 0 gives f, 1
// gives f2. Pixels missing from the shorter frame stay black.
func (f *Frame) InterpolateFrame(f2 *Frame, transitionPoint float64) *Frame {
	out := NewFrame(max(len(f.pixels), len(f2.pixels)))
	for i := 0; i < len(out.pixels); i++ {
		var a, b colorful.Color
		if i < len(f.pixels) {
			a = f.pixels[i]
		}
		if i < len(f2.pixels) {
			b = f2.pixels[i]
		}
		out.pixels[i] = a.BlendHcl(b, transitionPoint)
	}

	return out
}

// MarshalBinary encodes the frame as a little-endian uint16 pixel count
// followed by one RGB triple per pixel.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 2, (len(f.pixels)*3)+2)
	binary.LittleEndian.PutUint16(data, uint16(len(f.pixels)))
	for _, p := range f.pixels {
		r, g, b := p.Clamped().RGB255()
		data = append(data, r, g, b)
	}

	return data, nil
}
