package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/utils"
)

// executeTasks picks tasks from 'taskQueue' until it is empty and processes them.
func executeTasks(ctx context.Context, reg *registry.Registry, taskQueue *utils.TaskQueue) error {
	for task := taskQueue.Dequeue(); task != nil; task = taskQueue.Dequeue() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := processTask(reg, task); err != nil {
			return err
		}
	}
	return nil
}

// RunParallelFiles processes the images specified by 'config', deploying
// config.ThreadCount goroutines that each take whole images from a shared queue.
func RunParallelFiles(ctx context.Context, config Config, reg *registry.Registry) (results.Record, error) {
	// start timer for total elapsed time
	startTime := time.Now()

	taskQueue, err := utils.CreateTasks(config.EffectsPath, config.InDir, config.OutDir, config.DataDirs)
	if err != nil {
		return results.Record{}, err
	}

	// if more threads than tasks, use number of tasks
	nThreads := threads(config, len(taskQueue.Tasks))

	parallelTime := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < nThreads; i++ {
		g.Go(func() error {
			return executeTasks(gctx, reg, taskQueue)
		})
	}
	if err := g.Wait(); err != nil {
		return results.Record{}, err
	}
	totalParallelTime := time.Since(parallelTime)

	return newRecord(config, nThreads, time.Since(startTime), totalParallelTime), nil
}
