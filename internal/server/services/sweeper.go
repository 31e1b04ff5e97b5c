package services

import (
	"context"
	"time"

	"github.com/bierclub/bier/internal/logging"
)

// Sweeper periodically deletes expired sessions and tokens. Expired rows
// are already ignored by every query; sweeping only reclaims space.
type Sweeper struct {
	deps     Deps
	interval time.Duration
	log      logging.Logger
}

func NewSweeper(deps Deps, interval time.Duration) *Sweeper {
	return &Sweeper{
		deps:     deps,
		interval: interval,
		log:      deps.logger().With("module", "sweeper"),
	}
}

// Run sweeps once per interval until ctx is done. A non-positive interval
// disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Error(ctx, "sweeper disabled", "interval", s.interval)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one purge pass. Errors are logged and the next pass retries.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.deps.now()

	sessions, err := s.deps.Repos.Sessions(s.deps.DB).PurgeExpired(ctx, now)
	if err != nil {
		s.log.Error(ctx, "purge sessions failed", "error", err)
	}

	tokens, err := s.deps.Repos.Tokens(s.deps.DB).PurgeExpired(ctx, now)
	if err != nil {
		s.log.Error(ctx, "purge tokens failed", "error", err)
	}

	if sessions > 0 || tokens > 0 {
		s.log.Info(ctx, "expired rows purged", "sessions", sessions, "tokens", tokens)
	}
}
