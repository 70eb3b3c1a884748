package db

import (
	"database/sql"
	"time"

	"github.com/ad/go-telegram-course/internal/models"
)

type EnrollmentRepository struct {
	queue *DBQueue
}

func NewEnrollmentRepository(queue *DBQueue) *EnrollmentRepository {
	return &EnrollmentRepository{queue: queue}
}

// CreateOrReset (re)initializes the user's enrollment at day 1. A prior
// enrollment is replaced and its progress discarded. last_delivery_at starts
// NULL so the user is immediately eligible and a failed first delivery is
// retried on the next sweep.
func (r *EnrollmentRepository) CreateOrReset(userID int64) (*models.Enrollment, error) {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO enrollments (user_id, current_day, last_delivery_at, is_active, completed_at)
			VALUES (?, 1, NULL, TRUE, NULL)
			ON CONFLICT(user_id) DO UPDATE SET
				current_day = 1,
				last_delivery_at = NULL,
				is_active = TRUE,
				completed_at = NULL
		`, userID)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(userID)
}

func (r *EnrollmentRepository) GetByUserID(userID int64) (*models.Enrollment, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT user_id, current_day, last_delivery_at, is_active, completed_at, created_at
			FROM enrollments WHERE user_id = ?
		`, userID)
		return scanEnrollment(row)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Enrollment), nil
}

// Advance moves the enrollment from fromDay to fromDay+1 with a conditional
// update keyed on the stored current_day. It returns false when the stored day
// has already moved past fromDay, which is how duplicate deliveries from
// overlapping sweeps are suppressed. Advancing past totalDays closes the
// enrollment and stamps completed_at.
func (r *EnrollmentRepository) Advance(userID int64, fromDay, totalDays int) (bool, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		now := time.Now().UTC()
		res, err := db.Exec(`
			UPDATE enrollments
			SET current_day = current_day + 1,
			    last_delivery_at = ?,
			    is_active = CASE WHEN current_day + 1 > ? THEN FALSE ELSE TRUE END,
			    completed_at = CASE WHEN current_day + 1 > ? THEN ? ELSE completed_at END
			WHERE user_id = ? AND current_day = ? AND is_active = TRUE
		`, now, totalDays, totalDays, now, userID, fromDay)
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

// FindEligible returns every active enrollment whose last delivery happened at
// least minInterval before now, or that has no delivery yet. Single query, so
// the result is one consistent snapshot.
func (r *EnrollmentRepository) FindEligible(now time.Time, minInterval time.Duration, totalDays int) ([]*models.Enrollment, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		cutoff := now.UTC().Add(-minInterval)
		rows, err := db.Query(`
			SELECT user_id, current_day, last_delivery_at, is_active, completed_at, created_at
			FROM enrollments
			WHERE is_active = TRUE AND current_day <= ?
			  AND (last_delivery_at IS NULL OR last_delivery_at <= ?)
			ORDER BY user_id
		`, totalDays, cutoff)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var enrollments []*models.Enrollment
		for rows.Next() {
			enr, err := scanEnrollment(rows)
			if err != nil {
				return nil, err
			}
			enrollments = append(enrollments, enr)
		}
		return enrollments, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.Enrollment), nil
}

// Deactivate halts an enrollment without touching its progress. Used by the
// admin reset command.
func (r *EnrollmentRepository) Deactivate(userID int64) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`UPDATE enrollments SET is_active = FALSE WHERE user_id = ?`, userID)
		return nil, err
	})
	return err
}

func (r *EnrollmentRepository) CountActive() (int, error) {
	return r.countWhere(`is_active = TRUE`)
}

func (r *EnrollmentRepository) CountCompleted() (int, error) {
	return r.countWhere(`completed_at IS NOT NULL`)
}

func (r *EnrollmentRepository) countWhere(cond string) (int, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM enrollments WHERE ` + cond).Scan(&count)
		return count, err
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var enr models.Enrollment
	var lastDelivery, completedAt sql.NullTime
	err := row.Scan(&enr.UserID, &enr.CurrentDay, &lastDelivery, &enr.IsActive, &completedAt, &enr.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lastDelivery.Valid {
		enr.LastDeliveryAt = &lastDelivery.Time
	}
	if completedAt.Valid {
		enr.CompletedAt = &completedAt.Time
	}
	return &enr, nil
}
