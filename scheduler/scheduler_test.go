package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"imagefilter/filter"
	"imagefilter/raster"
	"imagefilter/registry"
	"imagefilter/results"
)

func testImage(width, height, seed int) *filter.Image {
	img := filter.NewImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = filter.Pack((i*31+seed)%256, (i*7+seed*3)%256, (i*17)%256)
	}
	return img
}

func TestSlicesByRow(t *testing.T) {
	tests := []struct {
		rows, n int
		want    []ImageSlice
	}{
		{10, 3, []ImageSlice{{0, 4}, {4, 8}, {8, 10}}},
		{4, 4, []ImageSlice{{0, 1}, {1, 2}, {2, 3}, {3, 4}}},
		{2, 4, []ImageSlice{{0, 1}, {1, 2}, {2, 2}, {2, 2}}},
		{5, 0, []ImageSlice{{0, 5}}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_rows_%d_slices", tt.rows, tt.n), func(t *testing.T) {
			got := SlicesByRow(tt.rows, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("SlicesByRow = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slice %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestApplySlicedMatchesProcess(t *testing.T) {
	img := testImage(13, 11, 1)
	mask := testImage(13, 11, 2)
	for i := range mask.Pix {
		if i%5 == 0 {
			mask.Pix[i] = filter.Black
		}
	}
	reg := registry.Default(rand.New(rand.NewPCG(1, 1)))

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			f, _ := reg.Get(name)
			want := f.Process(img, mask)
			for _, n := range []int{1, 3, 16} {
				got, err := ApplySliced(context.Background(), f, img, mask, n)
				if err != nil {
					t.Fatalf("ApplySliced(%d): %v", n, err)
				}
				if diffs, _ := raster.Compare(got, want); len(diffs) != 0 {
					t.Errorf("%d slices: %d pixels differ, first %v", n, len(diffs), diffs[0])
				}
			}
		})
	}
}

func TestApplySlicedEmptyChainAndNil(t *testing.T) {
	img := testImage(3, 3, 0)
	got, err := ApplySliced(context.Background(), filter.NewChain(), img, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diffs, _ := raster.Compare(got, filter.NewImage(3, 3)); len(diffs) != 0 {
		t.Errorf("empty chain did not produce a blank image")
	}
	if got, _ := ApplySliced(context.Background(), filter.NewBlur(3), nil, nil, 2); got != nil {
		t.Errorf("nil image produced %v", got)
	}
}

func TestApplySlicedCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ApplySliced(ctx, filter.NewBlur(3), testImage(4, 4, 0), nil, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// setupData writes two images (one with a mask) for data directories "a" and "b"
// and an effects file, and returns the config for it.
func setupData(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	inDir := filepath.Join(root, "in")
	for _, dir := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(inDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
		seed := int(dir[0])
		if err := raster.Save(filepath.Join(inDir, dir, "one.png"), testImage(9, 7, seed)); err != nil {
			t.Fatal(err)
		}
		if err := raster.Save(filepath.Join(inDir, dir, "two.bmp"), testImage(6, 10, seed+1)); err != nil {
			t.Fatal(err)
		}
		mask := testImage(6, 10, 0)
		for i := range mask.Pix[:20] {
			mask.Pix[i] = filter.Black
		}
		if err := raster.Save(filepath.Join(inDir, dir, "two_mask.png"), mask); err != nil {
			t.Fatal(err)
		}
	}

	effects := `{"inPath": "one.png", "outPath": "one.png", "effects": ["monochrome", "blur_3", "pixel_2"]}
{"inPath": "two.bmp", "outPath": "two.png", "maskPath": "two_mask.png", "effects": ["multithreshold"]}
`
	effectsPath := filepath.Join(root, "effects.txt")
	if err := os.WriteFile(effectsPath, []byte(effects), 0o644); err != nil {
		t.Fatal(err)
	}
	return Config{
		EffectsPath: effectsPath,
		InDir:       inDir,
		OutDir:      filepath.Join(root, "out"),
		DataDirs:    "a+b",
		ThreadCount: 3,
	}
}

func expectedOutput(t *testing.T, reg *registry.Registry, config Config, dir, in, mask string, effects []string) *filter.Image {
	t.Helper()
	maskPath := ""
	if mask != "" {
		maskPath = filepath.Join(config.InDir, dir, mask)
	}
	img, m, err := raster.LoadWithMask(filepath.Join(config.InDir, dir, in), maskPath)
	if err != nil {
		t.Fatal(err)
	}
	f, err := reg.Resolve(effects)
	if err != nil {
		t.Fatal(err)
	}
	return f.Process(img, m)
}

func TestScheduleModes(t *testing.T) {
	reg := registry.Default(nil)
	for _, mode := range []string{"s", "parfiles", "parslices", "pipe"} {
		t.Run(mode, func(t *testing.T) {
			config := setupData(t)
			config.Mode = mode
			config.SubThreadCount = 2
			store := results.NewFile(filepath.Join(t.TempDir(), "results.txt"))

			rec, err := Schedule(context.Background(), config, reg, store)
			if err != nil {
				t.Fatalf("Schedule: %v", err)
			}
			if rec.Mode != mode || rec.DataDir != "a+b" || rec.Threads < 1 {
				t.Errorf("record = %+v", rec)
			}

			for _, dir := range []string{"a", "b"} {
				checks := []struct {
					in, mask, out string
					effects       []string
				}{
					{"one.png", "", "one.png", []string{"monochrome", "blur_3", "pixel_2"}},
					{"two.bmp", "two_mask.png", "two.png", []string{"multithreshold"}},
				}
				for _, c := range checks {
					got, err := raster.Load(filepath.Join(config.OutDir, dir+"_"+c.out))
					if err != nil {
						t.Fatalf("output missing: %v", err)
					}
					want := expectedOutput(t, reg, config, dir, c.in, c.mask, c.effects)
					if diffs, err := raster.Compare(got, want); err != nil || len(diffs) != 0 {
						t.Errorf("%s_%s: %d pixels differ (%v)", dir, c.out, len(diffs), err)
					}
				}
			}

			recs, err := store.All(context.Background())
			if err != nil || len(recs) != 1 || recs[0] != rec {
				t.Errorf("stored records = %v, %v", recs, err)
			}
		})
	}
}

func TestScheduleInvalidMode(t *testing.T) {
	_, err := Schedule(context.Background(), Config{Mode: "bogus"}, registry.New(), nil)
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("error = %v, want ErrInvalidMode", err)
	}
}

func TestScheduleUnknownEffect(t *testing.T) {
	config := setupData(t)
	if err := os.WriteFile(config.EffectsPath, []byte(`{"inPath": "one.png", "outPath": "x.png", "effects": ["sharpen"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, mode := range []string{"s", "parfiles", "parslices", "pipe"} {
		config.Mode = mode
		if _, err := Schedule(context.Background(), config, registry.New(), nil); !errors.Is(err, registry.ErrUnknownFilter) {
			t.Errorf("%s: error = %v, want ErrUnknownFilter", mode, err)
		}
	}
}
