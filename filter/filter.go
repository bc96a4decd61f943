package filter

// Image is a flat, row-major buffer of packed colors.
// Index 'i' maps to row i/Width and column i%Width.
type Image struct {
	Pix    []Color
	Width  int
	Height int
}

// NewImage returns a blank image whose pixels are all zero.
func NewImage(width, height int) *Image {
	return &Image{Pix: make([]Color, width*height), Width: width, Height: height}
}

// Len returns the number of pixels in the image.
func (im *Image) Len() int {
	return len(im.Pix)
}

// Clone returns a deep copy of the image.
func (im *Image) Clone() *Image {
	out := &Image{Pix: make([]Color, len(im.Pix)), Width: im.Width, Height: im.Height}
	copy(out.Pix, im.Pix)
	return out
}

// Filter transforms an image, optionally restricted to the active pixels of a mask.
// A nil image yields a nil result. The mask, when given, must have the image's dimensions.
// Implementations never modify their inputs and keep no state between calls.
type Filter interface {
	Process(img, mask *Image) *Image
}

// Ranged is a Filter whose output pixels can be computed independently over
// any flat index range [start, end). Process on a Ranged filter is equivalent
// to Apply over [0, img.Len()) into a fresh buffer.
type Ranged interface {
	Filter
	Apply(img, mask, out *Image, start, end int)
}

// Active reports whether pixel 'i' may be transformed: there is no mask, or the
// mask pixel is anything but pure black.
func Active(mask *Image, i int) bool {
	return mask == nil || uint32(mask.Pix[i]) > uint32(Opaque)
}
