// Compute best times and speedups for the different modes and data directories
// recorded by 'editor batch' and plot the speedups for each mode.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"imagefilter/results"
)

// Times holds a time (or speedup) per mode, data directory and number of threads.
// e.g. Times["parfiles"]["big"][4]
type Times map[string]map[string]map[int]float64

func (t Times) set(mode, dataDir string, threads int, v float64) {
	if t[mode] == nil {
		t[mode] = make(map[string]map[int]float64)
	}
	if t[mode][dataDir] == nil {
		t[mode][dataDir] = make(map[int]float64)
	}
	t[mode][dataDir][threads] = v
}

//=============================================================================
// Best times, averages and speedups
//=============================================================================

// GroupByMode reads every record of the results store at 'dest' and groups them by mode.
func GroupByMode(ctx context.Context, dest string) (map[string][]results.Record, error) {
	store, err := results.Open(ctx, dest)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	recs, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	dataSets := make(map[string][]results.Record)
	for _, rec := range recs {
		dataSets[rec.Mode] = append(dataSets[rec.Mode], rec)
	}
	return dataSets, nil
}

// `ComputeAverageTimes` computes the average total time for each mode, data directory and number of threads.
// e.g. map["parfiles"]["b"][4] = 100 (parfiles took on average 100 seconds on data directory "b" with 4 threads)
func ComputeAverageTimes(dataSets map[string][]results.Record) Times {
	sums := make(Times)
	counters := make(map[string]map[string]map[int]int)

	for mode, dataSet := range dataSets {
		counters[mode] = make(map[string]map[int]int)
		for _, data := range dataSet {
			if counters[mode][data.DataDir] == nil {
				counters[mode][data.DataDir] = make(map[int]int)
			}
			sums.set(mode, data.DataDir, data.Threads, sums[mode][data.DataDir][data.Threads]+data.TimeElapsed)
			counters[mode][data.DataDir][data.Threads]++
		}
	}

	for mode, dirs := range sums {
		for dataDir, data := range dirs {
			for threads, total := range data {
				data[threads] = total / float64(counters[mode][dataDir][threads])
			}
		}
	}
	return sums
}

// `ComputeBestTimes` computes the best total times for each mode, data directory and number of threads,
// and the parallel times of those best runs.
// e.g. map["parfiles"]["b"][4] = 100 (parfiles took 100 seconds on data directory "b" with 4 threads on its best run)
func ComputeBestTimes(dataSets map[string][]results.Record) (bestTotalTimes, bestParallTimes Times) {
	bestTotalTimes = make(Times)
	bestParallTimes = make(Times)

	for mode, dataSet := range dataSets {
		for _, data := range dataSet {
			best, seen := bestTotalTimes[mode][data.DataDir][data.Threads]
			// if total time elapsed is less than the current best time for a thread, update best time
			if !seen || data.TimeElapsed < best {
				bestTotalTimes.set(mode, data.DataDir, data.Threads, data.TimeElapsed)
				bestParallTimes.set(mode, data.DataDir, data.Threads, data.TimeParallel)
			}
		}
	}
	return bestTotalTimes, bestParallTimes
}

// `ComputeSpeedups` computes the speedup of every parallel mode relative to the
// sequential mode ("s" with 1 thread) on the same data directory.
// e.g. map["parfiles"]["b"][4] = 2 (parfiles with 4 threads processed data directory "b" 2 times faster than "s")
// Data directories without a sequential time are skipped.
func ComputeSpeedups(times Times) Times {
	speedups := make(Times)
	for mode, dirs := range times {
		if mode == "s" {
			continue
		}
		for dataDir, data := range dirs {
			sequential, ok := times["s"][dataDir][1]
			if !ok {
				glog.Warningf("no sequential time for data directory [%v], skipping %v speedups", dataDir, mode)
				continue
			}
			for threads, timeElapsed := range data {
				if timeElapsed > 0 {
					speedups.set(mode, dataDir, threads, sequential/timeElapsed)
				}
			}
		}
	}
	return speedups
}

// saveToFile writes one JSON object per mode to 'path'.
func saveToFile(data Times, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error in creating [%v]: %w", path, err)
	}
	defer file.Close()

	modes := make([]string, 0, len(data))
	for mode := range data {
		modes = append(modes, mode)
	}
	sort.Strings(modes)

	encoder := json.NewEncoder(file)
	for _, mode := range modes {
		if err := encoder.Encode(Times{mode: data[mode]}); err != nil {
			return fmt.Errorf("error in writing [%v]: %w", path, err)
		}
	}
	return nil
}

//=============================================================================
// Plotting methods
//=============================================================================

// Customized tick marks for the Y axis
type CustomYTicks struct{}

// forces plotter to show all valus in Y axis
func (CustomYTicks) Ticks(min, max float64) []plot.Tick {
	var newTicks []plot.Tick
	for _, t := range (plot.DefaultTicks{}).Ticks(min, max) {
		t.Label = fmt.Sprintf("%.2f", t.Value)
		newTicks = append(newTicks, t)
	}
	return newTicks
}

// customized tick marks for the X axis
type CustomXTicks struct {
	Threads []int
}

// forces plotter to show all number in X axis for which there are values
func (t CustomXTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for _, thread := range t.Threads {
		if float64(thread) >= min && float64(thread) <= max {
			ticks = append(ticks, plot.Tick{Value: float64(thread), Label: fmt.Sprintf("%d", thread)})
		}
	}
	return ticks
}

// colors for the lines of each data directory; others cycle through the palette
var dataDirColors = map[string]color.RGBA{
	"small":   {R: 0, G: 255, B: 0, A: 255}, // green
	"mixture": {R: 0, G: 0, B: 255, A: 255}, // blue
	"big":     {R: 255, G: 0, B: 0, A: 255}, // red
}

var palette = []color.RGBA{
	{R: 128, G: 0, B: 128, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
	{R: 0, G: 128, B: 128, A: 255},
	{R: 64, G: 64, B: 64, A: 255},
}

// PlotSpeedups draws one speedup graph per mode, as 'speedup-<mode>.png' under 'dir'.
func PlotSpeedups(speedups Times, dir string) ([]string, error) {
	var files []string
	for mode, data := range speedups {
		p := plot.New()

		// set the title and axis labels (obs: new lines and spaces for padding)
		p.Title.Text = fmt.Sprintf("\nEditor speedup graph (%s)", mode)
		p.X.Label.Text = "Number of Threads \n "
		p.Y.Label.Text = "\nSpeedup"

		p.Title.Padding = vg.Points(20)
		p.Title.TextStyle.Font.Size = vg.Points(15)
		p.X.Label.Padding = vg.Points(5)
		p.Y.Label.Padding = vg.Points(5)

		p.Add(plotter.NewGrid())
		// force Y axis to show numbers in every tick
		p.Y.Tick.Marker = CustomYTicks{}
		p.Legend.Top = true
		p.Legend.Left = true

		dataDirs := make([]string, 0, len(data))
		for dataDir := range data {
			dataDirs = append(dataDirs, dataDir)
		}
		sort.Strings(dataDirs)

		var threads []int
		for colorIndex, dataDir := range dataDirs {
			threadsData := data[dataDir]
			// sort thread counts in ascending order to pass to the graph
			keys := make([]int, 0, len(threadsData))
			for k := range threadsData {
				keys = append(keys, k)
			}
			sort.Ints(keys)
			threads = append(threads, keys...)

			pts := make(plotter.XYs, len(keys))
			for i, k := range keys {
				pts[i].X = float64(k)
				pts[i].Y = threadsData[k]
			}

			lineColor, ok := dataDirColors[dataDir]
			if !ok {
				lineColor = palette[colorIndex%len(palette)]
			}

			line, err := plotter.NewLine(pts)
			if err != nil {
				return files, fmt.Errorf("error in plotting [%v/%v]: %w", mode, dataDir, err)
			}
			line.LineStyle.Width = vg.Points(1)
			line.LineStyle.Color = lineColor

			scatter, err := plotter.NewScatter(pts)
			if err != nil {
				return files, fmt.Errorf("error in plotting [%v/%v]: %w", mode, dataDir, err)
			}
			scatter.GlyphStyle.Color = lineColor
			scatter.GlyphStyle.Radius = vg.Points(2)

			p.Add(line, scatter)
			p.Legend.Add(dataDir, line)
		}

		// add some padding to the borders of the plot
		xpadding := (p.X.Max - p.X.Min) * 0.02
		ypadding := (p.Y.Max - p.Y.Min) * 0.02
		p.X.Min -= xpadding
		p.X.Max += xpadding
		p.Y.Min -= ypadding
		p.Y.Max += ypadding

		// force X axis to show all threads values
		p.X.Tick.Marker = CustomXTicks{Threads: threads}

		path := filepath.Join(dir, fmt.Sprintf("speedup-%s.png", mode))
		if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
			return files, fmt.Errorf("error in saving plot [%v]: %w", path, err)
		}
		glog.V(1).Infof("saved [%v]", path)
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

//=============================================================================
// Main
//=============================================================================

// Run computes the statistics of the records at 'dest' and writes them with the plots to 'outDir'.
func Run(ctx context.Context, dest, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("error in creating output folder [%v]: %w", outDir, err)
	}

	dataSets, err := GroupByMode(ctx, dest)
	if err != nil {
		return err
	}
	if len(dataSets) == 0 {
		glog.Warningf("no records in [%v]", dest)
		return nil
	}

	bestTotalTimes, bestParallTimes := ComputeBestTimes(dataSets)
	speedups := ComputeSpeedups(bestTotalTimes)

	for name, times := range map[string]Times{
		"averages.txt":        ComputeAverageTimes(dataSets),
		"bestTimes.txt":       bestTotalTimes,
		"bestParallTimes.txt": bestParallTimes,
		"speedups.txt":        speedups,
	} {
		if err := saveToFile(times, filepath.Join(outDir, name)); err != nil {
			return err
		}
	}

	_, err = PlotSpeedups(speedups, outDir)
	return err
}

func main() {
	app := &cli.App{
		Name:  "benchmark",
		Usage: "compute best times and speedups from editor batch results and plot them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "results", Usage: "results store: JSON-lines file, .db SQLite file or postgres:// URL", Value: "./benchmark/results.txt"},
			&cli.StringFlag{Name: "out", Usage: "directory for the statistics and plots", Value: "./benchmark/"},
		},
		Before: func(*cli.Context) error {
			// glog registers its flags on the standard flag set
			return flag.Set("logtostderr", "true")
		},
		Action: func(c *cli.Context) error {
			return Run(c.Context, c.String("results"), c.String("out"))
		},
	}
	if err := app.Run(os.Args); err != nil {
		glog.Exitf("%v", err)
	}
}
