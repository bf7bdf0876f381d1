package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ResetTokenStore is the slice of the user store the reaper needs.
type ResetTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

// ResetReaper periodically clears expired password-reset tokens so stale
// hashes do not linger on user records. Expired tokens are already rejected
// at lookup time; this is housekeeping, not enforcement.
type ResetReaper struct {
	store    ResetTokenStore
	schedule cron.Schedule
	done     chan bool
}

// NewResetReaper creates a reaper running on the given cron expression
// (standard five-field format, e.g. "*/5 * * * *").
func NewResetReaper(store ResetTokenStore, cronExpr string) (*ResetReaper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &ResetReaper{
		store:    store,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the reaper loop. It blocks until Stop is called.
func (r *ResetReaper) Run() {
	log.Info().Msg("Starting reset-token reaper...")

	// Run once immediately on start
	r.reap()

	for {
		next := r.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-r.done:
			timer.Stop()
			log.Info().Msg("Stopping reset-token reaper.")
			return
		case <-timer.C:
			r.reap()
		}
	}
}

// Stop halts the reaper.
func (r *ResetReaper) Stop() {
	r.done <- true
}

func (r *ResetReaper) reap() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := r.store.ClearExpiredResetTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reaper failed to clear expired reset tokens")
		return
	}
	if n > 0 {
		log.Info().Int64("cleared", n).Msg("Cleared expired reset tokens")
	}
}
