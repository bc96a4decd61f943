package filter

// PixelFilter applies a color transform to every active pixel independently.
// Inactive pixels are copied through unmodified.
type PixelFilter struct {
	transform func(Color) Color
}

// NewPixelFilter creates a PixelFilter around 'transform', which must be a pure
// function defined for every packed color.
func NewPixelFilter(transform func(Color) Color) *PixelFilter {
	return &PixelFilter{transform: transform}
}

// Transform applies the filter's color transform to a single color, ignoring masks.
func (f *PixelFilter) Transform(c Color) Color {
	return f.transform(c)
}

// Process returns a new image with the transform applied to every active pixel.
func (f *PixelFilter) Process(img, mask *Image) *Image {
	if img == nil { // nothing to process
		return nil
	}
	out := NewImage(img.Width, img.Height)
	f.Apply(img, mask, out, 0, img.Len())
	return out
}

// Apply writes the filtered pixels of the flat range [start, end) into 'out'.
func (f *PixelFilter) Apply(img, mask, out *Image, start, end int) {
	for i := start; i < end; i++ {
		if Active(mask, i) {
			out.Pix[i] = f.transform(img.Pix[i])
		} else {
			out.Pix[i] = img.Pix[i]
		}
	}
}
