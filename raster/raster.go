// Package raster allows for loading images of several formats into flat
// filter buffers and saving filter buffers back to disk.
package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imagefilter/filter"
)

var (
	// ErrUnsupportedFormat is returned when saving to an extension with no encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrDimensionMismatch is returned when a mask does not have the image's size.
	ErrDimensionMismatch = errors.New("mask dimensions differ from image dimensions")
)

const jpegQuality = 95

//=============================================================================
// Conversion between image.Image and filter.Image
//=============================================================================

// FromImage copies 'img' into a flat row-major buffer. Alpha is dropped: every
// pixel is packed opaque.
func FromImage(img image.Image) *filter.Image {
	bounds := img.Bounds()
	out := filter.NewImage(bounds.Dx(), bounds.Dy())

	// fast path for the decoder's most common output
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				c := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
				out.Pix[y*out.Width+x] = filter.Pack(int(c.R), int(c.G), int(c.B))
			}
		}
		return out
	}

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = filter.FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return out
}

// ToImage copies a flat buffer into an opaque *image.RGBA anchored at (0, 0).
func ToImage(img *filter.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, c := range img.Pix {
		r, g, b := c.RGB()
		o := out.PixOffset(i%img.Width, i/img.Width)
		out.Pix[o+0] = uint8(r)
		out.Pix[o+1] = uint8(g)
		out.Pix[o+2] = uint8(b)
		out.Pix[o+3] = 0xFF
	}
	return out
}

//=============================================================================
// Load and Save
//=============================================================================

// Decode reads any registered image format from 'r'.
func Decode(r io.Reader) (*filter.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return FromImage(img), format, nil
}

// Load returns the image stored at 'filePath'.
func Load(filePath string) (*filter.Image, error) {
	inReader, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file [%v]: %w", filePath, err)
	}
	defer inReader.Close()

	img, format, err := Decode(inReader)
	if err != nil {
		return nil, fmt.Errorf("error decoding image [%v]: %w", filePath, err)
	}
	glog.V(2).Infof("loaded %v image [%v] %dx%d", format, filePath, img.Width, img.Height)
	return img, nil
}

// LoadWithMask loads the image at 'imagePath' and, when 'maskPath' is not
// empty, the mask at 'maskPath', which must have the same dimensions.
func LoadWithMask(imagePath, maskPath string) (img, mask *filter.Image, err error) {
	img, err = Load(imagePath)
	if err != nil {
		return nil, nil, err
	}
	if maskPath == "" {
		return img, nil, nil
	}

	mask, err = Load(maskPath)
	if err != nil {
		return nil, nil, err
	}
	if mask.Width != img.Width || mask.Height != img.Height {
		return nil, nil, fmt.Errorf("error in mask [%v] %dx%d for image %dx%d: %w",
			maskPath, mask.Width, mask.Height, img.Width, img.Height, ErrDimensionMismatch)
	}
	return img, mask, nil
}

// FormatOf returns the encoder format for the extension of 'filePath'.
func FormatOf(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	switch ext {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return ext
}

// Encode writes 'img' to 'w' in 'format' (png, bmp, jpeg or tiff).
func Encode(w io.Writer, format string, img *filter.Image) error {
	rgba := ToImage(img)
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, rgba)
	case "bmp":
		return bmp.Encode(w, rgba)
	case "jpeg":
		return jpeg.Encode(w, rgba, &jpeg.Options{Quality: jpegQuality})
	case "tiff":
		return tiff.Encode(w, rgba, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("error encoding [%v]: %w", format, ErrUnsupportedFormat)
}

// Save writes 'img' to 'filePath', choosing the encoder from its extension.
func Save(filePath string, img *filter.Image) (err error) {
	format := FormatOf(filePath)
	// refuse before creating an empty file
	switch format {
	case "png", "bmp", "jpeg", "tiff":
	default:
		return fmt.Errorf("error saving [%v]: %w", filePath, ErrUnsupportedFormat)
	}

	outWriter, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating file [%v]: %w", filePath, err)
	}
	defer func() {
		if cerr := outWriter.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error in closing file [%v]: %w", filePath, cerr)
		}
	}()

	if err = Encode(outWriter, format, img); err != nil {
		return fmt.Errorf("error encoding image [%v]: %w", filePath, err)
	}
	glog.V(2).Infof("saved [%v]", filePath)
	return nil
}

//=============================================================================
// Comparison
//=============================================================================

// Diff is a pixel that differs between two images.
type Diff struct {
	X, Y int
	A, B filter.Color
}

func (d Diff) String() string {
	ar, ag, ab := d.A.RGB()
	br, bg, bb := d.B.RGB()
	return fmt.Sprintf("pixel (%d, %d): (%d, %d, %d) != (%d, %d, %d)", d.X, d.Y, ar, ag, ab, br, bg, bb)
}

// Compare compares two images pixel by pixel and returns every differing pixel.
// Images of different sizes are compared over their common area, and a
// dimension mismatch error is returned alongside.
func Compare(a, b *filter.Image) ([]Diff, error) {
	var err error
	if a.Width != b.Width || a.Height != b.Height {
		err = fmt.Errorf("error comparing %dx%d with %dx%d: %w", a.Width, a.Height, b.Width, b.Height, ErrDimensionMismatch)
	}

	var diffs []Diff
	for y := 0; y < min(a.Height, b.Height); y++ {
		for x := 0; x < min(a.Width, b.Width); x++ {
			ca, cb := a.Pix[y*a.Width+x], b.Pix[y*b.Width+x]
			if ca != cb {
				diffs = append(diffs, Diff{X: x, Y: y, A: ca, B: cb})
			}
		}
	}
	return diffs, err
}
