package services

import (
	"context"
	"log"
	"time"

	"github.com/ad/go-telegram-course/internal/db"
)

// Sweeper periodically finds all enrollments whose wait interval has elapsed
// and delivers the next day to each. A failed sweep switches the loop to a
// longer recovery period so a degraded store is not hot-looped against.
type Sweeper struct {
	enrollments    *db.EnrollmentRepository
	engine         *ProgressionEngine
	dayInterval    time.Duration
	period         time.Duration
	recoveryPeriod time.Duration
	userDelay      time.Duration
}

func NewSweeper(enrollments *db.EnrollmentRepository, engine *ProgressionEngine, dayInterval, period, recoveryPeriod time.Duration) *Sweeper {
	return &Sweeper{
		enrollments:    enrollments,
		engine:         engine,
		dayInterval:    dayInterval,
		period:         period,
		recoveryPeriod: recoveryPeriod,
		userDelay:      500 * time.Millisecond,
	}
}

// SetUserDelay overrides the pacing between users within one sweep. Used by tests.
func (s *Sweeper) SetUserDelay(d time.Duration) {
	s.userDelay = d
}

// Run loops until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[SWEEP] started, period=%s, recovery=%s, day interval=%s", s.period, s.recoveryPeriod, s.dayInterval)

	timer := time.NewTimer(s.period)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SWEEP] stopped: %v", ctx.Err())
			return
		case <-timer.C:
		}

		next := s.period
		if err := s.SweepOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[SWEEP] sweep failed: %v, backing off for %s", err, s.recoveryPeriod)
			next = s.recoveryPeriod
		}
		timer.Reset(next)
	}
}

// SweepOnce serves every currently eligible user. A failure for one user is
// logged and does not abort the sweep for the rest; that user stays eligible
// and will be retried next time. The returned error is sweep-level only (the
// eligibility query itself failed after store retries).
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	eligible, err := s.enrollments.FindEligible(time.Now(), s.dayInterval, s.engine.catalog.TotalDays())
	if err != nil {
		return err
	}

	if len(eligible) == 0 {
		return nil
	}
	log.Printf("[SWEEP] %d users eligible", len(eligible))

	for i, enr := range eligible {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 {
			if err := sleepCtx(ctx, s.userDelay); err != nil {
				return err
			}
		}

		result, err := s.engine.DeliverNextDay(ctx, enr.UserID)
		if err != nil {
			log.Printf("[SWEEP] user %d day %d: %s: %v", enr.UserID, enr.CurrentDay, result, err)
			continue
		}
		log.Printf("[SWEEP] user %d day %d: %s", enr.UserID, enr.CurrentDay, result)
	}

	return nil
}
