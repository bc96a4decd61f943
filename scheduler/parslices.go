package scheduler

import (
	"context"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"imagefilter/filter"
	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/utils"
)

// ImageSlice delimits the rows [YStart, YEnd) of an image.
type ImageSlice struct {
	YStart int
	YEnd   int
}

// SlicesByRow divides 'nRows' rows into 'numSlices' slices of consecutive rows.
// The last slices may be empty when the rows do not divide evenly.
func SlicesByRow(nRows, numSlices int) []ImageSlice {
	if numSlices < 1 {
		numSlices = 1
	}
	// rows per slice, rounded up
	rowsPerSlice := (nRows + numSlices - 1) / numSlices

	slices := make([]ImageSlice, numSlices)
	for i := range slices {
		// truncate indexes exceeding the image bounds
		slices[i].YStart = min(i*rowsPerSlice, nRows)
		slices[i].YEnd = min(slices[i].YStart+rowsPerSlice, nRows)
	}
	return slices
}

// ApplySliced applies 'f' to 'img' with the rows divided among 'nSlices' goroutines.
// Chains are applied stage by stage with a barrier between stages, and filters that
// cannot be split by rows run whole. The output equals f.Process(img, mask).
func ApplySliced(ctx context.Context, f filter.Filter, img, mask *filter.Image, nSlices int) (*filter.Image, error) {
	if img == nil {
		return nil, nil
	}

	switch f := f.(type) {
	case *filter.Chain:
		stages := f.Filters()
		if len(stages) == 0 {
			return f.Process(img, mask), nil
		}
		out := img
		for _, stage := range stages {
			var err error
			// the original mask is used at every stage
			if out, err = ApplySliced(ctx, stage, out, mask, nSlices); err != nil {
				return nil, err
			}
		}
		return out, nil

	case filter.Ranged:
		out := filter.NewImage(img.Width, img.Height)
		g, gctx := errgroup.WithContext(ctx)
		for _, s := range SlicesByRow(img.Height, nSlices) {
			if s.YStart == s.YEnd {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f.Apply(img, mask, out, s.YStart*img.Width, s.YEnd*img.Width)
				return nil
			})
		}
		// wait for all slices before the next effect reads this output
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil

	default:
		glog.V(2).Infof("%T cannot be sliced, applying it whole", f)
		return f.Process(img, mask), nil
	}
}

// RunParallelSlices processes the images specified by 'config' one at a time,
// dividing each into config.ThreadCount row slices processed concurrently.
func RunParallelSlices(ctx context.Context, config Config, reg *registry.Registry) (results.Record, error) {
	startTime := time.Now()

	taskQueue, err := utils.CreateTasks(config.EffectsPath, config.InDir, config.OutDir, config.DataDirs)
	if err != nil {
		return results.Record{}, err
	}

	nThreads := max(config.ThreadCount, 1)

	// cumulative time of all parallel sections
	var totalParallelTime time.Duration
	for i := range taskQueue.Tasks {
		j, err := load(reg, &taskQueue.Tasks[i])
		if err != nil {
			return results.Record{}, err
		}

		startParallel := time.Now()
		if j.out, err = ApplySliced(ctx, j.filter, j.img, j.mask, nThreads); err != nil {
			return results.Record{}, err
		}
		totalParallelTime += time.Since(startParallel)

		if err := save(j); err != nil {
			return results.Record{}, err
		}
	}

	return newRecord(config, nThreads, time.Since(startTime), totalParallelTime), nil
}
