package registry

import (
	"errors"
	"math/rand/v2"
	"sort"
	"testing"

	"imagefilter/filter"
)

func TestDefaultNames(t *testing.T) {
	want := []string{
		"blur_3", "blur_5",
		"colorband_blue", "colorband_green", "colorband_red",
		"colorreplacement_160", "colorreplacement_255", "colorreplacement_96",
		"monochrome", "multithreshold",
		"pixel_20", "pixel_40", "pixel_60",
		"threshold_128", "threshold_192",
		"warhol",
	}
	got := Default(nil).Names()
	if !sort.StringsAreSorted(got) {
		t.Errorf("Names not sorted: %v", got)
	}
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWarholChain(t *testing.T) {
	r := Default(rand.New(rand.NewPCG(3, 4)))
	f, err := r.Get("warhol")
	if err != nil {
		t.Fatalf("Get(warhol): %v", err)
	}
	chain, ok := f.(*filter.Chain)
	if !ok {
		t.Fatalf("warhol is %T, want *filter.Chain", f)
	}
	stages := chain.Filters()
	if len(stages) != 5 {
		t.Fatalf("warhol has %d stages, want 5", len(stages))
	}
	mt, _ := r.Get("multithreshold")
	if stages[0] != mt {
		t.Errorf("first stage is not the registered multithreshold")
	}

	// every pixel ends up as one of the four replacement colors
	img := filter.NewImage(16, 16)
	for i := range img.Pix {
		img.Pix[i] = filter.Grey(i)
	}
	out := chain.Process(img, nil)
	palette := map[filter.Color]bool{}
	for _, grey := range []int{0, 96, 160, 255} {
		c := filter.Grey(grey)
		for _, stage := range stages[1:] {
			c = stage.(*filter.PixelFilter).Transform(c)
		}
		palette[c] = true
	}
	for i, c := range out.Pix {
		if !palette[c] {
			t.Errorf("pixel %d = %#08x, not in the warhol palette", i, uint32(c))
		}
	}
}

func TestDefaultIsDeterministicWithSeed(t *testing.T) {
	a := Default(rand.New(rand.NewPCG(9, 9)))
	b := Default(rand.New(rand.NewPCG(9, 9)))
	fa, _ := a.Get("colorreplacement_96")
	fb, _ := b.Get("colorreplacement_96")
	ca := fa.(*filter.PixelFilter).Transform(filter.Grey(96))
	cb := fb.(*filter.PixelFilter).Transform(filter.Grey(96))
	if ca != cb {
		t.Errorf("replacements differ: %#08x %#08x", uint32(ca), uint32(cb))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"monochrome", true},
		{"colorband_green", true},
		{"threshold_77", true},
		{"multithreshold_10_20_30", true},
		{"colorreplacement_12", true},
		{"blur_7", true},
		{"pixel_8", true},
		{"colorband_purple", false},
		{"blur_0", false},
		{"pixel_x", false},
		{"multithreshold_30_20", false},
		{"threshold", false},
		{"sharpen_3", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.name)
			if tt.ok && (err != nil || f == nil) {
				t.Errorf("Parse(%q) = %v, %v", tt.name, f, err)
			}
			if !tt.ok && !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("Parse(%q) error = %v, want ErrUnknownFilter", tt.name, err)
			}
		})
	}
}

func TestParsedFiltersBehave(t *testing.T) {
	f, _ := Parse("threshold_100")
	if got := f.(*filter.PixelFilter).Transform(filter.Grey(99)); got != filter.Black {
		t.Errorf("threshold_100(99) = %#08x", uint32(got))
	}
	b, _ := Parse("blur_9")
	if b.(*filter.AreaFilter).Size() != 9 {
		t.Errorf("blur_9 size = %d", b.(*filter.AreaFilter).Size())
	}
}

func TestGetFallsBackToParse(t *testing.T) {
	r := New()
	if _, err := r.Get("blur_11"); err != nil {
		t.Errorf("Get(blur_11): %v", err)
	}
	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Get(nope) error = %v", err)
	}
}

func TestResolve(t *testing.T) {
	r := Default(nil)

	single, err := r.Resolve([]string{"monochrome"})
	if err != nil {
		t.Fatalf("Resolve single: %v", err)
	}
	if _, ok := single.(*filter.PixelFilter); !ok {
		t.Errorf("single effect resolved to %T", single)
	}

	multi, err := r.Resolve([]string{"monochrome", "blur_3", "pixel_4"})
	if err != nil {
		t.Fatalf("Resolve multi: %v", err)
	}
	if c, ok := multi.(*filter.Chain); !ok || c.Len() != 3 {
		t.Errorf("multi effect resolved to %T", multi)
	}

	if _, err := r.Resolve([]string{"monochrome", "bogus"}); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Resolve bogus error = %v", err)
	}
	if _, err := r.Resolve(nil); !errors.Is(err, ErrNoEffects) {
		t.Errorf("Resolve(nil) error = %v", err)
	}
}
