package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/utils"
)

//=============================================================================
// Image processing as a three phase pipeline:
//   load image -> apply effects -> save image
// Phase 1 and 3 run on a single goroutine each. Phase 2 runs config.ThreadCount
// workers, each of which may split its image into config.SubThreadCount row slices.
//=============================================================================

// RunPipeline processes the images specified by 'config' through the load, apply and save phases.
func RunPipeline(ctx context.Context, config Config, reg *registry.Registry) (results.Record, error) {
	startTime := time.Now()

	taskQueue, err := utils.CreateTasks(config.EffectsPath, config.InDir, config.OutDir, config.DataDirs)
	if err != nil {
		return results.Record{}, err
	}
	nThreads := threads(config, len(taskQueue.Tasks))
	nSubThreads := max(config.SubThreadCount, 1)

	loaded := make(chan *job, nThreads)
	applied := make(chan *job, nThreads)

	parallelTime := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	// Phase 1: load images and resolve their effects
	g.Go(func() error {
		defer close(loaded)
		for i := range taskQueue.Tasks {
			j, err := load(reg, &taskQueue.Tasks[i])
			if err != nil {
				return err
			}
			select {
			case loaded <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	// Phase 2: apply effects
	workers, wctx := errgroup.WithContext(gctx)
	for i := 0; i < nThreads; i++ {
		workers.Go(func() error {
			for j := range loaded {
				var err error
				if j.out, err = ApplySliced(wctx, j.filter, j.img, j.mask, nSubThreads); err != nil {
					return err
				}
				select {
				case applied <- j:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(applied)
		return workers.Wait()
	})

	// Phase 3: save images
	g.Go(func() error {
		for j := range applied {
			if err := save(j); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return results.Record{}, err
	}
	totalParallelTime := time.Since(parallelTime)

	return newRecord(config, nThreads, time.Since(startTime), totalParallelTime), nil
}
