package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"imagefilter/raster"
	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/scheduler"
)

const (
	defaultEffectsPath = "data/effects.txt"
	defaultInDir       = "data/in"
	defaultOutDir      = "data/out"
	defaultResultsPath = "benchmark/results.txt"

	// FILTER name of 'apply' that runs every registered filter
	testFilter = "test"
)

var errImagesDiffer = errors.New("images differ")

// newRegistry builds the preset registry, seeding its random colors from --seed when set.
func newRegistry(c *cli.Context) *registry.Registry {
	var rng *rand.Rand
	if seed := c.Uint64("seed"); seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	return registry.Default(rng)
}

// args returns the n positional arguments of 'c' or a usage error.
func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%s expects %d arguments (%s), got %d", c.Command.Name, n, c.Command.ArgsUsage, c.NArg())
	}
	return c.Args().Slice(), nil
}

func applyCommand(c *cli.Context) error {
	a, err := args(c, 3)
	if err != nil {
		return err
	}
	name, input, output := a[0], a[1], a[2]
	reg := newRegistry(c)

	if name == testFilter {
		return applyAll(reg, input, c.String("mask"), output, "bmp", 0)
	}

	f, err := reg.Get(name)
	if err != nil {
		return err
	}
	img, mask, err := raster.LoadWithMask(input, c.String("mask"))
	if err != nil {
		return err
	}

	start := time.Now()
	out := f.Process(img, mask)
	glog.V(1).Infof("applied [%v] to [%v] in %v", name, input, time.Since(start))

	return raster.Save(output, out)
}

func allCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	return applyAll(newRegistry(c), a[0], c.String("mask"), a[1], c.String("format"), c.Int("jobs"))
}

// applyAll applies every filter of 'reg' to the image at 'input', writing one
// output per filter to <prefix><name>.<format>. At most 'jobs' filters run at
// once; jobs < 1 means no limit.
func applyAll(reg *registry.Registry, input, maskPath, prefix, format string, jobs int) error {
	img, mask, err := raster.LoadWithMask(input, maskPath)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(prefix + "x"); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error in creating output folder [%v]: %w", dir, err)
		}
	}

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for _, name := range reg.Names() {
		g.Go(func() error {
			f, err := reg.Get(name)
			if err != nil {
				return err
			}
			start := time.Now()
			out := f.Process(img, mask)
			outPath := prefix + name + "." + format
			if err := raster.Save(outPath, out); err != nil {
				return err
			}
			glog.V(1).Infof("[%v] -> [%v] in %v", name, outPath, time.Since(start))
			return nil
		})
	}
	return g.Wait()
}

func listCommand(c *cli.Context) error {
	for _, name := range newRegistry(c).Names() {
		fmt.Fprintln(c.App.Writer, name)
	}
	return nil
}

func compareCommand(c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}
	first, err := raster.Load(a[0])
	if err != nil {
		return err
	}
	second, err := raster.Load(a[1])
	if err != nil {
		return err
	}
	diffs, err := raster.Compare(first, second)
	if err != nil {
		return err
	}
	for _, d := range diffs {
		glog.V(1).Info(d)
	}
	if len(diffs) > 0 {
		return fmt.Errorf("error in comparing [%v] and [%v] (%d pixels): %w", a[0], a[1], len(diffs), errImagesDiffer)
	}
	fmt.Fprintln(c.App.Writer, "images are identical")
	return nil
}

func batchCommand(c *cli.Context) error {
	config := scheduler.Config{
		EffectsPath:    c.String("effects"),
		InDir:          c.String("in"),
		OutDir:         c.String("out"),
		DataDirs:       c.String("data"),
		Mode:           c.String("mode"),
		ThreadCount:    c.Int("threads"),
		SubThreadCount: c.Int("subthreads"),
	}

	store, err := results.Open(c.Context, c.String("results"))
	if err != nil {
		return err
	}
	defer store.Close()

	start := time.Now()
	if _, err := scheduler.Schedule(c.Context, config, newRegistry(c), store); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%.2f\n", time.Since(start).Seconds())
	return nil
}
