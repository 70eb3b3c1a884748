package db

import (
	"database/sql"

	"github.com/ad/go-telegram-course/internal/models"
)

type PaymentRepository struct {
	queue *DBQueue
}

func NewPaymentRepository(queue *DBQueue) *PaymentRepository {
	return &PaymentRepository{queue: queue}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO payments (payment_id, user_id, amount, currency, payment_method, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.PaymentID, p.UserID, p.Amount, p.Currency, p.Method, models.PaymentPending)
		return nil, err
	})
	return err
}

func (r *PaymentRepository) GetByID(paymentID string) (*models.Payment, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT payment_id, user_id, amount, currency, payment_method, status, created_at
			FROM payments WHERE payment_id = ?
		`, paymentID)

		var p models.Payment
		err := row.Scan(&p.PaymentID, &p.UserID, &p.Amount, &p.Currency, &p.Method, &p.Status, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Payment), nil
}

// MarkSucceeded flips the payment from pending to success. The transition
// happens at most once; repeated webhook notifications for the same payment
// get false and must not re-activate the course.
func (r *PaymentRepository) MarkSucceeded(paymentID string) (bool, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		res, err := db.Exec(`
			UPDATE payments SET status = ? WHERE payment_id = ? AND status = ?
		`, models.PaymentSuccess, paymentID, models.PaymentPending)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		return affected > 0, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// MarkCanceled flips the payment from pending to canceled. Like MarkSucceeded
// it only moves out of pending, so a late or replayed cancel event cannot
// rewrite a payment that already succeeded.
func (r *PaymentRepository) MarkCanceled(paymentID string) (bool, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		res, err := db.Exec(`
			UPDATE payments SET status = ? WHERE payment_id = ? AND status = ?
		`, models.PaymentCanceled, paymentID, models.PaymentPending)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		return affected > 0, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
