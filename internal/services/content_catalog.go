package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/models"
)

// ErrContentMissing means a day inside the configured course range has no
// content. The engine surfaces it instead of skipping the day, since a skip
// would silently stall the user's progression.
var ErrContentMissing = errors.New("no content registered for course day")

// ContentCatalog is the immutable day→items mapping. Loaded once at startup,
// read-only afterwards.
type ContentCatalog struct {
	days      map[int][]models.ContentItem
	totalDays int
}

func NewContentCatalog(totalDays int, days map[int][]models.ContentItem) *ContentCatalog {
	copied := make(map[int][]models.ContentItem, len(days))
	for day, items := range days {
		copied[day] = items
	}
	return &ContentCatalog{days: copied, totalDays: totalDays}
}

// LoadContentCatalog reads all course content from the database. Gaps in the
// configured range are logged loudly at startup so an operator can fix the
// content before any affected user reaches that day.
func LoadContentCatalog(repo *db.ContentRepository, totalDays int) (*ContentCatalog, error) {
	all, err := repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load course content: %w", err)
	}

	days := make(map[int][]models.ContentItem, len(all))
	for _, day := range all {
		if len(day.Items) == 0 {
			continue
		}
		days[day.DayNumber] = day.Items
	}

	for day := 1; day <= totalDays; day++ {
		if _, ok := days[day]; !ok {
			log.Printf("[CATALOG] ALERT: no content for day %d/%d, users reaching it will stall until it is fixed", day, totalDays)
		}
	}

	return NewContentCatalog(totalDays, days), nil
}

func (c *ContentCatalog) TotalDays() int {
	return c.totalDays
}

func (c *ContentCatalog) Day(dayNumber int) ([]models.ContentItem, error) {
	items, ok := c.days[dayNumber]
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: day %d", ErrContentMissing, dayNumber)
	}
	return items, nil
}
