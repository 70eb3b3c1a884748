package db

import (
	"database/sql"

	"github.com/ad/go-telegram-course/internal/models"
)

type ContentRepository struct {
	queue *DBQueue
}

func NewContentRepository(queue *DBQueue) *ContentRepository {
	return &ContentRepository{queue: queue}
}

func (r *ContentRepository) GetDay(dayNumber int) (*models.ContentDay, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var itemsJSON string
		err := db.QueryRow(`SELECT items FROM content_days WHERE day_number = ?`, dayNumber).Scan(&itemsJSON)
		if err != nil {
			return nil, err
		}
		items, err := models.ParseContentItems(itemsJSON)
		if err != nil {
			return nil, err
		}
		return &models.ContentDay{DayNumber: dayNumber, Items: items}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.ContentDay), nil
}

func (r *ContentRepository) GetAll() ([]*models.ContentDay, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`SELECT day_number, items FROM content_days ORDER BY day_number`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var days []*models.ContentDay
		for rows.Next() {
			var day models.ContentDay
			var itemsJSON string
			if err := rows.Scan(&day.DayNumber, &itemsJSON); err != nil {
				return nil, err
			}
			day.Items, err = models.ParseContentItems(itemsJSON)
			if err != nil {
				return nil, err
			}
			days = append(days, &day)
		}
		return days, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.ContentDay), nil
}

// SaveDay replaces the content of a day. Used by seeding and operator fixes.
func (r *ContentRepository) SaveDay(dayNumber int, items []models.ContentItem) error {
	itemsJSON, err := models.ContentItemsToJSON(items)
	if err != nil {
		return err
	}
	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO content_days (day_number, items) VALUES (?, ?)
			ON CONFLICT(day_number) DO UPDATE SET items = excluded.items
		`, dayNumber, itemsJSON)
		return nil, err
	})
	return err
}

// SeedDay inserts a day's content only if the day is not present yet, so
// operator edits survive restarts.
func (r *ContentRepository) SeedDay(dayNumber int, items []models.ContentItem) error {
	itemsJSON, err := models.ContentItemsToJSON(items)
	if err != nil {
		return err
	}
	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO content_days (day_number, items) VALUES (?, ?)
		`, dayNumber, itemsJSON)
		return nil, err
	})
	return err
}
