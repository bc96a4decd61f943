package filter

// Anchor selects where the kernel of an AreaFilter is placed for a given pixel.
type Anchor int

const (
	// Centered places the kernel around the pixel itself.
	Centered Anchor = iota
	// Block places the kernel at the top-left corner of the size x size block
	// containing the pixel, so every pixel of a block sees the same neighbourhood.
	Block
)

func (a Anchor) String() string {
	switch a {
	case Centered:
		return "centered"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

//=============================================================================
// Kernel
//=============================================================================

// Cell is a single kernel entry. Valid is false for neighbours that fall
// outside the image or on an inactive mask pixel.
type Cell struct {
	Color Color
	Valid bool
}

// Kernel is the row-major, size x size neighbourhood gathered for one pixel.
type Kernel []Cell

// Average returns the per-channel floored mean of the valid cells of 'k',
// or opaque black if there are none.
func Average(k Kernel) Color {
	var rSum, gSum, bSum, count int
	for _, cell := range k {
		// only valid cells take part in the mean
		if !cell.Valid {
			continue
		}
		r, g, b := cell.Color.RGB()
		rSum += r
		gSum += g
		bSum += b
		count++
	}
	if count == 0 {
		return Pack(0, 0, 0)
	}
	return Pack(rSum/count, gSum/count, bSum/count)
}

//=============================================================================
// AreaFilter
//=============================================================================

// AreaFilter replaces every active pixel by an aggregate of its square neighbourhood.
//
// E.g. with size 3 and the Centered anchor, the pixel X is replaced by an
// aggregate of the cells inside the frame:
//
//	1  2  1  2  1
//	   -------
//	2 |1  2  1| 2
//	1 |2  X  2| 1
//	2 |1  2  1| 2
//	   -------
//
// Neighbours are addressed by flat index. A neighbour is gathered only if its
// index n satisfies 0 < n < len(Pix) and the mask is active there; index 0 is
// never gathered as a neighbour.
type AreaFilter struct {
	size      int
	anchor    Anchor
	aggregate func(Kernel) Color
}

// NewAreaFilter creates an AreaFilter with a size x size kernel.
// 'size' is not validated: it must be positive for the Block anchor.
func NewAreaFilter(size int, anchor Anchor, aggregate func(Kernel) Color) *AreaFilter {
	return &AreaFilter{size: size, anchor: anchor, aggregate: aggregate}
}

// Size returns the side of the kernel.
func (f *AreaFilter) Size() int { return f.size }

// Anchor returns the kernel placement policy.
func (f *AreaFilter) Anchor() Anchor { return f.anchor }

// Process returns a new image with every active pixel replaced by its neighbourhood aggregate.
func (f *AreaFilter) Process(img, mask *Image) *Image {
	if img == nil { // nothing to process
		return nil
	}
	out := NewImage(img.Width, img.Height)
	f.Apply(img, mask, out, 0, img.Len())
	return out
}

// Apply writes the filtered pixels of the flat range [start, end) into 'out'.
func (f *AreaFilter) Apply(img, mask, out *Image, start, end int) {
	kernel := make(Kernel, max(f.size, 0)*max(f.size, 0))
	for i := start; i < end; i++ {
		if !Active(mask, i) {
			out.Pix[i] = img.Pix[i]
			continue
		}
		f.gather(img, mask, f.anchorIndex(i, img.Width), kernel)
		out.Pix[i] = f.aggregate(kernel)
	}
}

// anchorIndex returns the flat index the kernel is placed relative to for pixel 'i'.
func (f *AreaFilter) anchorIndex(i, width int) int {
	if f.anchor != Block {
		return i
	}
	row, col := i/width, i%width
	return (row-row%f.size)*width + (col - col%f.size)
}

// gather fills 'kernel' with the neighbourhood of anchor 'a'.
// @img, @mask: source pixels and optional mask
// @a: flat anchor index
// @kernel: destination, len(kernel) == size*size
func (f *AreaFilter) gather(img, mask *Image, a int, kernel Kernel) {
	shift := 0
	if f.anchor == Centered {
		shift = f.size / 2
	}
	for row := 0; row < f.size; row++ {
		for col := 0; col < f.size; col++ {
			// flat index of the neighbour in the image
			n := a + (row-shift)*img.Width + (col - shift)

			cell := &kernel[row*f.size+col]
			*cell = Cell{}
			if n > 0 && n < img.Len() && Active(mask, n) {
				*cell = Cell{Color: img.Pix[n], Valid: true}
			}
		}
	}
}

//=============================================================================
// Area variants
//=============================================================================

// NewBlur returns a box blur averaging the size x size neighbourhood centered on each pixel.
func NewBlur(size int) *AreaFilter {
	return NewAreaFilter(size, Centered, Average)
}

// NewPixelate returns a mosaic filter painting every size x size block with its average color.
func NewPixelate(size int) *AreaFilter {
	return NewAreaFilter(size, Block, Average)
}
