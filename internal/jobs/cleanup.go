package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/daypass/chat-gateway-go/internal/ratelimit"
	"github.com/daypass/chat-gateway-go/internal/repository"
)

// CleanupJob periodically deactivates expired access sessions and sweeps
// stale rate-limit counters. Correctness does not depend on it: expiry is
// checked by time on every read, the sweep only bounds storage.
type CleanupJob struct {
	sessionRepo repository.AccessSessionRepository
	limiter     *ratelimit.Limiter
	interval    time.Duration
	done        chan struct{}
}

func NewCleanupJob(
	sessionRepo repository.AccessSessionRepository,
	limiter *ratelimit.Limiter,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo: sessionRepo,
		limiter:     limiter,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.sessionRepo.DeactivateExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to deactivate expired sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("deactivated expired sessions")
	}

	removed, err := j.limiter.SweepStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep rate limit counters")
	} else if removed > 0 {
		log.Info().Int("count", removed).Msg("swept stale rate limit counters")
	}
}
