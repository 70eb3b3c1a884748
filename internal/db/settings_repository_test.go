package db

import (
	"testing"

	"github.com/ad/go-telegram-course/internal/models"
)

func TestDefaultSettingsInitialization(t *testing.T) {
	db, queue := setupTestDB(t)
	defer db.Close()
	defer queue.Close()

	repo := NewSettingsRepository(queue)

	for _, key := range []string{"welcome_message", "payment_success_message", "completion_message"} {
		value, err := repo.Get(key)
		if err != nil {
			t.Fatalf("Failed to get %s: %v", key, err)
		}
		if value == "" {
			t.Errorf("Expected default %s to be non-empty", key)
		}
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	db, queue := setupTestDB(t)
	defer db.Close()
	defer queue.Close()

	repo := NewSettingsRepository(queue)

	if err := repo.Set("welcome_message", "Привет!"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := repo.Get("welcome_message")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "Привет!" {
		t.Errorf("Expected updated value, got %q", value)
	}

	settings, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if settings.WelcomeMessage != "Привет!" {
		t.Errorf("Expected GetAll to reflect update, got %q", settings.WelcomeMessage)
	}
}

func TestUserGetOrCreate(t *testing.T) {
	db, queue := setupTestDB(t)
	defer db.Close()
	defer queue.Close()

	repo := NewUserRepository(queue)

	user := &models.User{ID: 7001, FirstName: "Анна", Username: "anna"}
	if err := repo.GetOrCreate(user); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	// Second registration keeps the original row.
	if err := repo.GetOrCreate(&models.User{ID: 7001, FirstName: "Other"}); err != nil {
		t.Fatalf("Repeated GetOrCreate failed: %v", err)
	}

	got, err := repo.GetByID(7001)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Анна" {
		t.Errorf("Expected original first name kept, got %q", got.FirstName)
	}

	count, err := repo.CountAll()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}
}
