package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/models"
)

type DeliveryResult int

const (
	Delivered DeliveryResult = iota
	AlreadyAdvanced
	NoContent
	DeliveryFailed
)

func (r DeliveryResult) String() string {
	switch r {
	case Delivered:
		return "delivered"
	case AlreadyAdvanced:
		return "already_advanced"
	case NoContent:
		return "no_content"
	case DeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// ProgressionEngine delivers the next course day to a user and advances the
// enrollment. Delivery happens before the advance, so a crash mid-delivery
// leaves the user eligible for the same day again: a duplicate message is
// harmless to a reader, a silently skipped day is not.
type ProgressionEngine struct {
	enrollments  *db.EnrollmentRepository
	catalog      *ContentCatalog
	messenger    Messenger
	settingsRepo *db.SettingsRepository
	itemDelay    time.Duration
}

func NewProgressionEngine(enrollments *db.EnrollmentRepository, catalog *ContentCatalog, messenger Messenger, settingsRepo *db.SettingsRepository) *ProgressionEngine {
	return &ProgressionEngine{
		enrollments:  enrollments,
		catalog:      catalog,
		messenger:    messenger,
		settingsRepo: settingsRepo,
		itemDelay:    1 * time.Second,
	}
}

// SetItemDelay overrides the pacing between items of one day. Used by tests.
func (e *ProgressionEngine) SetItemDelay(d time.Duration) {
	e.itemDelay = d
}

// DeliverNextDay sends the user's current day and advances the enrollment.
// Only the store-level conditional advance decides whether this attempt
// counts; a concurrent attempt that advanced first turns this one into a
// harmless duplicate.
func (e *ProgressionEngine) DeliverNextDay(ctx context.Context, userID int64) (DeliveryResult, error) {
	enr, err := e.enrollments.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeliveryFailed, fmt.Errorf("user %d has no enrollment", userID)
		}
		return DeliveryFailed, err
	}

	totalDays := e.catalog.TotalDays()
	if !enr.IsActive || enr.Completed(totalDays) {
		return AlreadyAdvanced, nil
	}

	day := enr.CurrentDay
	items, err := e.catalog.Day(day)
	if err != nil {
		log.Printf("[ENGINE] ALERT: user %d stalled on day %d: %v", userID, day, err)
		return NoContent, err
	}

	delivered := 0
	for i, item := range items {
		if i > 0 {
			if err := sleepCtx(ctx, e.itemDelay); err != nil {
				return DeliveryFailed, err
			}
		}

		switch item.Kind {
		case models.ContentText:
			text := item.Payload
			if i == 0 {
				text = fmt.Sprintf("📅 **День %d/%d**\n\n%s", day, totalDays, text)
			}
			if err := e.messenger.SendText(ctx, userID, text); err != nil {
				log.Printf("[ENGINE] user %d day %d: text item %d failed: %v", userID, day, i+1, err)
				continue
			}
		case models.ContentPhoto:
			// A broken image is logged and skipped, a partial day beats none.
			if err := e.messenger.SendPhoto(ctx, userID, item.Payload); err != nil {
				log.Printf("[ENGINE] user %d day %d: photo item %d skipped: %v", userID, day, i+1, err)
				continue
			}
		default:
			log.Printf("[ENGINE] user %d day %d: unknown item kind %q skipped", userID, day, item.Kind)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return DeliveryFailed, fmt.Errorf("no item of day %d reached user %d, will retry on next sweep", day, userID)
	}

	advanced, err := e.enrollments.Advance(userID, day, totalDays)
	if err != nil {
		return DeliveryFailed, err
	}
	if !advanced {
		return AlreadyAdvanced, nil
	}

	if day == totalDays {
		e.sendCompletionMessage(ctx, userID)
	}

	return Delivered, nil
}

func (e *ProgressionEngine) sendCompletionMessage(ctx context.Context, userID int64) {
	text, err := e.settingsRepo.Get("completion_message")
	if err != nil || text == "" {
		text = "🎉 Поздравляем! Вы прошли курс!"
	}
	if err := e.messenger.SendText(ctx, userID, text); err != nil {
		log.Printf("[ENGINE] user %d: completion message failed: %v", userID, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
