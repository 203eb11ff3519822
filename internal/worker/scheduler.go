package worker

// scheduler.go
// Background goroutine that promotes scheduled requests (status='programada'
// with scheduled_at in the past) into the pending queue. Submission itself is
// idempotent, so overlapping ticks or multiple instances are harmless.

import (
	"context"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/service"

	"github.com/rs/zerolog/log"
)

const schedulerBatchSize = 20

// SchedulerConfig holds all dependencies for the scheduler goroutine.
type SchedulerConfig struct {
	Requests       repository.RequestRepository
	RequestService service.RequestService
	Interval       time.Duration
}

// StartScheduler launches a background goroutine that ticks at the configured
// interval, queries due scheduled requests, and submits each one. It respects
// the context for graceful shutdown.
func StartScheduler(ctx context.Context, cfg SchedulerConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("scheduler: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler: shutting down")
				return
			case <-ticker.C:
				processDue(ctx, cfg)
			}
		}
	}()
}

func processDue(ctx context.Context, cfg SchedulerConfig) {
	now := time.Now()
	due, err := cfg.Requests.ListDueScheduled(ctx, now, schedulerBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: failed to query due requests")
		return
	}

	if len(due) == 0 {
		return
	}

	log.Info().Int("count", len(due)).Msg("scheduler: submitting due requests")

	for i := range due {
		request := &due[i]
		if err := cfg.RequestService.SubmitScheduled(ctx, request.ID); err != nil {
			// A request grabbed by another instance mid-tick is not an error.
			log.Warn().
				Err(err).
				Str("folio", request.Folio).
				Msg("scheduler: submission failed, will retry next tick")
			continue
		}
		log.Info().Str("folio", request.Folio).Msg("scheduler: request submitted")
	}
}
