package main

import (
	"flag"
	"os"
	"runtime"
	"strconv"

	"github.com/golang/glog"
	"github.com/urfave/cli/v2"
)

const usage = "Applies color and area filters to images, optionally restricted to the non-black pixels of a mask.\n\n" +
	"   apply FILTER INPUT OUTPUT           apply one filter; FILTER 'test' runs every filter like 'all'\n" +
	"   all INPUT OUTPUT_PREFIX             apply every registered filter, writing OUTPUT_PREFIX<name>.<format>\n" +
	"   batch --data DIRS [--mode MODE]     process the effects file over data directories;\n" +
	"                                       MODE: (s) sequential, (parfiles) images in parallel,\n" +
	"                                       (parslices) slices of each image in parallel, (pipe) load/apply/save pipeline\n" +
	"   list                                print the registered filter names\n" +
	"   compare A B                         report the pixels that differ between two images"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		glog.Exitf("%v", err)
	}
}

func newApp() *cli.App {
	maskFlag := &cli.StringFlag{
		Name:    "mask",
		Aliases: []string{"m"},
		Usage:   "mask image; only pixels where the mask is not pure black are filtered",
	}

	return &cli.App{
		Name:        "editor",
		Usage:       "image filter editor",
		Description: usage,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "verbosity",
				Usage: "glog verbosity level",
				Value: 0,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "seed for the random colors of color replacement filters, 0 for a random seed",
				Value: 0,
			},
		},
		Before: func(c *cli.Context) error {
			// glog registers its flags on the standard flag set
			if err := flag.Set("logtostderr", "true"); err != nil {
				return err
			}
			return flag.Set("v", strconv.Itoa(c.Int("verbosity")))
		},
		After: func(*cli.Context) error {
			glog.Flush()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "apply",
				Usage:     "apply a registered filter to an image",
				ArgsUsage: "FILTER INPUT OUTPUT",
				Flags:     []cli.Flag{maskFlag},
				Action:    applyCommand,
			},
			{
				Name:      "all",
				Aliases:   []string{"test"},
				Usage:     "apply every registered filter to an image",
				ArgsUsage: "INPUT OUTPUT_PREFIX",
				Flags: []cli.Flag{
					maskFlag,
					&cli.StringFlag{
						Name:  "format",
						Usage: "output format: png, bmp, jpeg or tiff",
						Value: "bmp",
					},
					&cli.IntFlag{
						Name:  "jobs",
						Usage: "number of filters applied concurrently",
						Value: runtime.NumCPU(),
					},
				},
				Action: allCommand,
			},
			{
				Name:   "list",
				Usage:  "print the registered filter names",
				Action: listCommand,
			},
			{
				Name:      "compare",
				Usage:     "compare two images pixel by pixel",
				ArgsUsage: "A B",
				Action:    compareCommand,
			},
			{
				Name:  "batch",
				Usage: "process the images described by an effects file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "effects", Usage: "effects file (stream of JSON tasks)", Value: defaultEffectsPath},
					&cli.StringFlag{Name: "in", Usage: "input root directory", Value: defaultInDir},
					&cli.StringFlag{Name: "out", Usage: "output directory", Value: defaultOutDir},
					&cli.StringFlag{Name: "data", Usage: "'+' separated data directories, e.g. small+big", Required: true},
					&cli.StringFlag{Name: "mode", Usage: "s, parfiles, parslices or pipe", Value: "s"},
					&cli.IntFlag{Name: "threads", Usage: "number of goroutines of the parallel modes", Value: 1},
					&cli.IntFlag{Name: "subthreads", Usage: "pipe mode only: row slices per image", Value: 1},
					&cli.StringFlag{Name: "results", Usage: "results store: JSON-lines file, .db SQLite file or postgres:// URL", Value: defaultResultsPath},
				},
				Action: batchCommand,
			},
		},
	}
}
