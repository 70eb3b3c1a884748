package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ad/go-telegram-course/internal/api"
	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/handlers"
	"github.com/ad/go-telegram-course/internal/payments"
	"github.com/ad/go-telegram-course/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
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

	dbPath := envOr("DB_PATH", "course.db")
	httpAddr := envOr("HTTP_ADDR", ":8080")
	botLink := envOr("BOT_LINK", "https://t.me/The_road_to_a_dream_bot")

	courseDays := envInt("COURSE_DAYS", 7)
	dayInterval := envDuration("DAY_INTERVAL", 24*time.Hour)
	sweepPeriod := envDuration("SWEEP_PERIOD", 60*time.Second)
	sweepRecovery := envDuration("SWEEP_RECOVERY_PERIOD", 300*time.Second)
	restartOnRepurchase := envBool("RESTART_ON_REPURCHASE", true)

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

	userRepo := db.NewUserRepository(dbQueue)
	enrollmentRepo := db.NewEnrollmentRepository(dbQueue)
	paymentRepo := db.NewPaymentRepository(dbQueue)
	contentRepo := db.NewContentRepository(dbQueue)
	settingsRepo := db.NewSettingsRepository(dbQueue)

	if err := db.SeedDefaultContent(contentRepo); err != nil {
		log.Fatalf("Failed to seed course content: %v", err)
	}

	catalog, err := services.LoadContentCatalog(contentRepo, courseDays)
	if err != nil {
		log.Fatalf("Failed to load content catalog: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	var botInfo *tgmodels.User
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		botInfo, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Successfully connected to Telegram API as @%s", botInfo.Username)
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Printf("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	yookassa := payments.NewYooKassaGateway(
		os.Getenv("YOOKASSA_SHOP_ID"),
		os.Getenv("YOOKASSA_SECRET_KEY"),
		botLink,
		envOr("YOOKASSA_FALLBACK_URL", "https://yookassa.ru/my/i/aT2KyUW8oL5x/l"),
	)
	paypal := payments.NewPayPalGateway(
		os.Getenv("PAYPAL_CLIENT_ID"),
		os.Getenv("PAYPAL_CLIENT_SECRET"),
		botLink,
		envOr("PAYPAL_FALLBACK_URL", "https://www.paypal.com/ncp/payment/VK4RESTAGVZFC"),
	)

	errorManager := services.NewErrorManager(b, adminID)
	msgManager := services.NewMessageManager(b, errorManager)
	engine := services.NewProgressionEngine(enrollmentRepo, catalog, msgManager, settingsRepo)
	activation := services.NewActivationService(paymentRepo, enrollmentRepo, engine, msgManager, settingsRepo, errorManager, restartOnRepurchase)
	sweeper := services.NewSweeper(enrollmentRepo, engine, dayInterval, sweepPeriod, sweepRecovery)

	handler := handlers.NewBotHandler(
		b,
		adminID,
		errorManager,
		msgManager,
		activation,
		userRepo,
		enrollmentRepo,
		paymentRepo,
		settingsRepo,
		yookassa,
		paypal,
		courseDays,
	)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	webhookHandler := api.NewWebhookHandler(paymentRepo, activation, yookassa, paypal)
	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: api.NewRouter(webhookHandler),
	}
	go func() {
		log.Printf("HTTP server listening on %s", httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	go sweeper.Run(ctx)

	log.Printf("Bot started. Admin ID: %d, DB: %s, course days: %d", adminID, dbPath, courseDays)

	b.Start(ctx)
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil {
			log.Printf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		if update.CallbackQuery != nil {
			log.Printf("[CALLBACK] from=%s data=%q", formatUser(update.CallbackQuery.From), update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return parsed
}
