package scheduler

import (
	"context"
	"time"

	"imagefilter/registry"
	"imagefilter/results"
	"imagefilter/utils"
)

// RunSequential processes the images specified by 'config' and its effects file one after another.
func RunSequential(ctx context.Context, config Config, reg *registry.Registry) (results.Record, error) {
	// start timer for total elapsed time
	startTime := time.Now()

	taskQueue, err := utils.CreateTasks(config.EffectsPath, config.InDir, config.OutDir, config.DataDirs)
	if err != nil {
		return results.Record{}, err
	}

	for i := range taskQueue.Tasks {
		if err := ctx.Err(); err != nil {
			return results.Record{}, err
		}
		if err := processTask(reg, &taskQueue.Tasks[i]); err != nil {
			return results.Record{}, err
		}
	}

	return newRecord(config, 1, time.Since(startTime), 0), nil
}
