package filter

import "testing"

// newTestImage creates a width x height image whose pixel i is fill(i).
func newTestImage(width, height int, fill func(i int) Color) *Image {
	img := NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = fill(i)
	}
	return img
}

// solid returns a fill function painting every pixel 'c'.
func solid(c Color) func(int) Color {
	return func(int) Color { return c }
}

// gradient paints a deterministic, non-grey pattern.
func gradient(i int) Color {
	return Pack((i*37)%256, (i*91+13)%256, (i*53+101)%256)
}

func assertImagesEqual(t *testing.T, got, want *Image) {
	t.Helper()
	if got == nil || want == nil {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("size = %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Errorf("pixel %d = %#08x, want %#08x", i, uint32(got.Pix[i]), uint32(want.Pix[i]))
		}
	}
}

func assertOpaque(t *testing.T, img *Image) {
	t.Helper()
	for i, c := range img.Pix {
		if c&Opaque != Opaque {
			t.Errorf("pixel %d = %#08x, alpha byte is not 0xFF", i, uint32(c))
		}
	}
}
