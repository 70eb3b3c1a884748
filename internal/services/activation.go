package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ad/go-telegram-course/internal/db"
)

// ActivationService turns a confirmed payment into a running enrollment and
// pushes day 1 without waiting for the next sweep. Payment providers repeat
// webhook notifications, so activation is idempotent per payment id: only the
// caller that wins the pending→success transition activates.
type ActivationService struct {
	payments            *db.PaymentRepository
	enrollments         *db.EnrollmentRepository
	engine              *ProgressionEngine
	messenger           Messenger
	settingsRepo        *db.SettingsRepository
	errMgr              *ErrorManager
	restartOnRepurchase bool
}

func NewActivationService(
	payments *db.PaymentRepository,
	enrollments *db.EnrollmentRepository,
	engine *ProgressionEngine,
	messenger Messenger,
	settingsRepo *db.SettingsRepository,
	errMgr *ErrorManager,
	restartOnRepurchase bool,
) *ActivationService {
	return &ActivationService{
		payments:            payments,
		enrollments:         enrollments,
		engine:              engine,
		messenger:           messenger,
		settingsRepo:        settingsRepo,
		errMgr:              errMgr,
		restartOnRepurchase: restartOnRepurchase,
	}
}

// Activate processes a confirmed payment. Repeated calls for the same payment
// id are no-ops: the first caller flips the payment to success and runs the
// activation, later callers see the transition already taken.
func (s *ActivationService) Activate(ctx context.Context, userID int64, paymentID string) error {
	first, err := s.payments.MarkSucceeded(paymentID)
	if err != nil {
		return fmt.Errorf("failed to confirm payment %s: %w", paymentID, err)
	}
	if !first {
		log.Printf("[PAYMENT] repeated notification for payment %s ignored", paymentID)
		return nil
	}

	log.Printf("[PAYMENT] payment %s confirmed, activating course for user %d", paymentID, userID)

	deliverNow, err := s.prepareEnrollment(userID)
	if err != nil {
		return err
	}

	if msg := s.setting("payment_success_message", "✅ Оплата прошла успешно! Доступ к курсу активирован."); msg != "" {
		if err := s.messenger.SendText(ctx, userID, msg); err != nil {
			log.Printf("[PAYMENT] user %d: success message failed: %v", userID, err)
		}
	}

	if deliverNow {
		result, err := s.engine.DeliverNextDay(ctx, userID)
		if err != nil {
			// The enrollment exists, so the next sweep retries day 1.
			log.Printf("[PAYMENT] user %d: day 1 delivery failed (%s): %v", userID, result, err)
		}
	}

	s.notifyAdminAboutPayment(ctx, userID, paymentID)
	return nil
}

// prepareEnrollment applies the repurchase policy: restart wipes prior
// progress and pushes day 1 right away, resume keeps a still-active
// enrollment untouched and lets the sweep deliver the next day when its
// interval elapses.
func (s *ActivationService) prepareEnrollment(userID int64) (deliverNow bool, err error) {
	if !s.restartOnRepurchase {
		existing, err := s.enrollments.GetByUserID(userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		if existing != nil && existing.IsActive {
			log.Printf("[PAYMENT] user %d already enrolled on day %d, resuming", userID, existing.CurrentDay)
			return false, nil
		}
	}

	if _, err := s.enrollments.CreateOrReset(userID); err != nil {
		return false, fmt.Errorf("failed to create enrollment for user %d: %w", userID, err)
	}
	return true, nil
}

func (s *ActivationService) notifyAdminAboutPayment(ctx context.Context, userID int64, paymentID string) {
	payment, err := s.payments.GetByID(paymentID)
	if err != nil {
		log.Printf("[PAYMENT] payment %s: admin notification skipped: %v", paymentID, err)
		return
	}

	msg := fmt.Sprintf("💰 НОВАЯ ОПЛАТА КУРСА!\n\n👤 ID: %d\n💳 Система: %s\n💎 Сумма: %.2f %s\n🆔 ID платежа: %s\n⏰ Время: %s",
		userID, payment.Method, payment.Amount, payment.Currency, paymentID,
		time.Now().Format("02.01.2006 15:04:05"))
	s.errMgr.NotifyAdmin(ctx, msg)
}

func (s *ActivationService) setting(key, fallback string) string {
	value, err := s.settingsRepo.Get(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}
