package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher fans the batch processor out over all units with bounded
// concurrency and collects the per-unit results into one merged list.
type Dispatcher struct {
	processor  *BatchProcessor
	maxWorkers int
	logger     *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given processor.
func NewDispatcher(processor *BatchProcessor, cfg config.PipelineConfig, logger *zap.Logger) *Dispatcher {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	return &Dispatcher{processor: processor, maxWorkers: maxWorkers, logger: logger}
}

// Dispatch runs every unit to completion (success or exhausted retry) and
// returns the union of all valid questions, merged by unit index so the
// completion order cannot change the result. Unit failures are contained;
// the only error is a run-empty error when no unit contributed anything.
func (d *Dispatcher) Dispatch(ctx context.Context, units []domain.TextUnit, mode domain.PipelineMode, onProgress ProgressFunc) ([]domain.Question, error) {
	if len(units) == 0 {
		return nil, domain.NewRunEmptyError()
	}

	d.logger.Info("Dispatching units",
		zap.Int("units", len(units)),
		zap.Int("max_workers", d.maxWorkers),
		zap.String("mode", string(mode)))

	results := make([][]domain.Question, len(units))

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxWorkers)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			idx, questions := d.processor.ProcessUnit(gctx, unit, mode)
			results[idx] = questions

			mu.Lock()
			completed++
			done, total := completed, len(units)
			mu.Unlock()

			if onProgress != nil {
				frac := float64(done) / float64(total) * 100
				onProgress(fmt.Sprintf("Processed %d/%d batches (%.1f%%)", done, total, frac), done, total)
			}
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	var merged []domain.Question
	for _, questions := range results {
		merged = append(merged, questions...)
	}

	if len(merged) == 0 {
		return nil, domain.NewRunEmptyError()
	}

	d.logger.Info("Dispatch complete",
		zap.Int("units", len(units)),
		zap.Int("questions", len(merged)))
	return merged, nil
}
