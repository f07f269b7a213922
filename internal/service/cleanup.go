package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/poslane/pos-admin/internal/repository"
)

// StartTokenCleanup runs the periodic purge of expired refresh tokens
// until ctx is cancelled.  The purge deletes by expiry predicate, so
// overlapping runs and concurrent login/refresh traffic are harmless.
// Call it in its own goroutine.
func StartTokenCleanup(ctx context.Context, tokens *repository.TokenRepo, interval time.Duration, log zerolog.Logger) {
	log.Info().Dur("interval", interval).Msg("token cleanup scheduled")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("token cleanup failed")
				continue
			}
			log.Info().Int64("deleted", n).Msg("token cleanup finished")
		}
	}
}
