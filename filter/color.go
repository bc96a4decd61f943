// Package filter implements per-pixel and neighbourhood color filters over flat,
// row-major pixel buffers, and their composition into chains.
package filter

import (
	"image/color"
	"math/rand/v2"
)

// Color is a packed opaque RGB value laid out as 0xAARRGGBB, with AA fixed to 0xFF.
type Color uint32

const (
	// Opaque is the alpha byte every packed color carries.
	Opaque Color = 0xFF000000

	Black Color = Opaque
	White Color = 0xFFFFFFFF

	minValue = 0
	maxValue = 255
)

//=============================================================================
// Packing and unpacking
//=============================================================================

// Pack composes a color from its red, green and blue channels.
// Channels are expected in [0, 255]; out of range values are not validated and
// overflow into neighbouring bits exactly as the shifts dictate.
func Pack(r, g, b int) Color {
	return Opaque | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Grey returns the opaque grey whose three channels are all 'v'.
func Grey(v int) Color {
	return Pack(v, v, v)
}

// Unpack extracts the red, green and blue channels of 'c'.
func Unpack(c Color) (r, g, b int) {
	return c.RGB()
}

// RGB returns the red, green and blue channels of the color.
func (c Color) RGB() (r, g, b int) {
	r = int(c>>16) & 0xFF
	g = int(c>>8) & 0xFF
	b = int(c) & 0xFF
	return r, g, b
}

// Average returns the floored mean of the three channels, i.e. the grey level of the color.
func (c Color) Average() int {
	r, g, b := c.RGB()
	return (r + g + b) / 3
}

// Greyscale returns the grey color with every channel set to the average of 'c'.
func (c Color) Greyscale() Color {
	return Grey(c.Average())
}

// RandomColor returns a uniformly random opaque color. A nil 'rng' uses the
// package level source of math/rand/v2.
func RandomColor(rng *rand.Rand) Color {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	return Pack(intN(256), intN(256), intN(256))
}

//=============================================================================
// image/color bridge
//=============================================================================

// FromColor packs any image/color value, dropping its alpha channel.
// Channels are taken un-premultiplied.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pack(int(n.R), int(n.G), int(n.B))
}

// NRGBA returns the color as an opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	r, g, b := c.RGB()
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xFF}
}
