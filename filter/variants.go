package filter

import (
	"fmt"
	"math/rand/v2"
)

// Band is one of the three color channels.
type Band int

const (
	Red Band = iota
	Green
	Blue
)

func (b Band) String() string {
	switch b {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// ParseBand returns the Band named 'name' ("red", "green" or "blue").
func ParseBand(name string) (Band, error) {
	switch name {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	}
	return 0, fmt.Errorf("unknown color band [%v]", name)
}

// NewMonochrome returns a filter turning every pixel into its grey level.
func NewMonochrome() *PixelFilter {
	return NewPixelFilter(Color.Greyscale)
}

// NewColorBand returns a filter keeping only the channel 'band' and zeroing the other two.
func NewColorBand(band Band) *PixelFilter {
	return NewPixelFilter(func(c Color) Color {
		r, g, b := c.RGB()
		if band != Red {
			r = 0
		}
		if band != Green {
			g = 0
		}
		if band != Blue {
			b = 0
		}
		return Pack(r, g, b)
	})
}

// NewThreshold returns a filter painting pixels whose grey level is below
// 'threshold' black and all others white. The threshold is used as given.
func NewThreshold(threshold int) *PixelFilter {
	return NewPixelFilter(func(c Color) Color {
		if c.Average() < threshold {
			return Grey(minValue)
		}
		return Grey(maxValue)
	})
}

// NewMultiThreshold returns a filter reducing the grey axis to len(thresholds)+1 bands.
// Thresholds must be ascending. Pixels below thresholds[0] become black, pixels
// between thresholds[k-1] and thresholds[k] become the grey halfway between
// them, and pixels at or above the last threshold become white.
func NewMultiThreshold(thresholds ...int) *PixelFilter {
	ts := append([]int(nil), thresholds...)
	return NewPixelFilter(func(c Color) Color {
		avg := c.Average()
		for i, t := range ts {
			if avg >= t {
				continue
			}
			if i == 0 {
				return Grey(minValue)
			}
			// middle between the current and the previous threshold
			return Grey((t + ts[i-1]) / 2)
		}
		return Grey(maxValue)
	})
}

// NewColorReplacement returns a filter swapping every pixel equal to 'target' for 'replacement'.
func NewColorReplacement(target, replacement Color) *PixelFilter {
	return NewPixelFilter(func(c Color) Color {
		if c == target {
			return replacement
		}
		return c
	})
}

// NewRandomColorReplacement is NewColorReplacement with a replacement drawn
// once from 'rng' (nil uses the package level source).
func NewRandomColorReplacement(target Color, rng *rand.Rand) *PixelFilter {
	return NewColorReplacement(target, RandomColor(rng))
}
