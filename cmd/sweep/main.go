// One-shot sweep for an external scheduler: finds every eligible user, sends
// their next course day and exits. The bot binary runs the same sweep in a
// loop; this exists for hosting setups where a cron job is more reliable than
// a long-lived process.
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/services"
	"github.com/go-telegram/bot"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	adminIDStr := os.Getenv("ADMIN_ID")
	if adminIDStr == "" {
		log.Fatal("ADMIN_ID environment variable is required")
	}
	adminID, err := strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		log.Fatalf("Invalid ADMIN_ID: %v", err)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "course.db"
	}

	courseDays := 7
	if v := os.Getenv("COURSE_DAYS"); v != "" {
		courseDays, err = strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid COURSE_DAYS: %v", err)
		}
	}

	dayInterval := 24 * time.Hour
	if v := os.Getenv("DAY_INTERVAL"); v != "" {
		dayInterval, err = time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid DAY_INTERVAL: %v", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	enrollmentRepo := db.NewEnrollmentRepository(dbQueue)
	contentRepo := db.NewContentRepository(dbQueue)
	settingsRepo := db.NewSettingsRepository(dbQueue)

	catalog, err := services.LoadContentCatalog(contentRepo, courseDays)
	if err != nil {
		log.Fatalf("Failed to load content catalog: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}
	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	errorManager := services.NewErrorManager(b, adminID)
	msgManager := services.NewMessageManager(b, errorManager)
	engine := services.NewProgressionEngine(enrollmentRepo, catalog, msgManager, settingsRepo)
	sweeper := services.NewSweeper(enrollmentRepo, engine, dayInterval, 0, 0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := sweeper.SweepOnce(ctx); err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Sweep finished")
}
