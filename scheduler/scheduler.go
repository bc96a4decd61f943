package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"imagefilter/filter"
	"imagefilter/raster"
	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/utils"
)

// ErrInvalidMode is returned by Schedule for an unknown scheduling scheme.
var ErrInvalidMode = errors.New("invalid scheduling scheme")

type Config struct {
	EffectsPath    string // File with the stream of JSON tasks describing the effects to apply
	InDir          string // Root of the input data directories
	OutDir         string // Directory receiving the output images
	DataDirs       string // '+' separated data directories to load the images from
	Mode           string // Which scheduler scheme to use: s, parfiles, parslices or pipe
	ThreadCount    int    // Number of goroutines for the parallel schemes
	SubThreadCount int    // Only for pipe mode. Number of slices each image is processed in. Defaults to 1.
}

// Schedule runs the scheme selected by config.Mode over every task and adds the timing record to 'store'.
func Schedule(ctx context.Context, config Config, reg *registry.Registry, store results.Store) (results.Record, error) {
	var run func(context.Context, Config, *registry.Registry) (results.Record, error)
	switch config.Mode {
	case "s":
		run = RunSequential
	case "parfiles":
		run = RunParallelFiles
	case "parslices":
		run = RunParallelSlices
	case "pipe":
		run = RunPipeline
	default:
		return results.Record{}, fmt.Errorf("error in mode [%v]: %w", config.Mode, ErrInvalidMode)
	}

	glog.Infof("running [%v] over data directories [%v] with %d threads", config.Mode, config.DataDirs, config.ThreadCount)
	rec, err := run(ctx, config, reg)
	if err != nil {
		return rec, err
	}
	glog.Infof("[%v] finished in %.3fs (parallel section %.3fs)", rec.Mode, rec.TimeElapsed, rec.TimeParallel)

	if store != nil {
		if err := store.Add(ctx, rec); err != nil {
			return rec, fmt.Errorf("error in recording results: %w", err)
		}
	}
	return rec, nil
}

// threads clamps the configured thread count to [1, nTasks].
func threads(config Config, nTasks int) int {
	n := config.ThreadCount
	if n > nTasks {
		n = nTasks
	}
	if n < 1 {
		n = 1
	}
	return n
}

func newRecord(config Config, nThreads int, elapsed, parallel time.Duration) results.Record {
	return results.Record{
		Mode:         config.Mode,
		Threads:      nThreads,
		TimeElapsed:  elapsed.Seconds(),
		TimeParallel: parallel.Seconds(),
		DataDir:      config.DataDirs,
	}
}

//=============================================================================
// Task phases: load, apply, save
//=============================================================================

// job is a task moving through the load -> apply -> save phases.
type job struct {
	task   *utils.Task
	filter filter.Filter
	img    *filter.Image
	mask   *filter.Image
	out    *filter.Image
}

// load resolves the effects of 'task' and loads its image and mask.
func load(reg *registry.Registry, task *utils.Task) (*job, error) {
	f, err := reg.Resolve(task.Effects)
	if err != nil {
		return nil, fmt.Errorf("error in effects of [%v]: %w", task.InPath, err)
	}
	img, mask, err := raster.LoadWithMask(task.InPath, task.MaskPath)
	if err != nil {
		return nil, err
	}
	return &job{task: task, filter: f, img: img, mask: mask}, nil
}

// save writes the output of 'j', creating its directory if needed.
func save(j *job) error {
	if err := os.MkdirAll(filepath.Dir(j.task.OutPath), 0o755); err != nil {
		return fmt.Errorf("error in creating output folder [%v]: %w", filepath.Dir(j.task.OutPath), err)
	}
	if err := raster.Save(j.task.OutPath, j.out); err != nil {
		return err
	}
	glog.V(1).Infof("processed [%v] -> [%v] with %v", j.task.InPath, j.task.OutPath, j.task.Effects)
	return nil
}

// processTask loads, filters and saves one task on the calling goroutine.
func processTask(reg *registry.Registry, task *utils.Task) error {
	j, err := load(reg, task)
	if err != nil {
		return err
	}
	j.out = j.filter.Process(j.img, j.mask)
	return save(j)
}
