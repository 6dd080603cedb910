package usecase

import (
	"context"
	"time"

	"SignalScanner/internal/ports"
)

// Scheduler wires the cron driver with the ingestion pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop the recurring daily run.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the daily trailing ingestion with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.pipeline.Ingest(ctx, trigger, IngestOptions{})
		if err != nil {
			s.pipeline.logger.Error("scheduled ingest failed", "error", err)
			return
		}
		s.pipeline.logger.Info("scheduled ingest finished",
			"candidates", summary.Candidates, "records", summary.Records, "promoted", summary.Promoted)
	}
	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
