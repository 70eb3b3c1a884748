package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/models"
	"github.com/ad/go-telegram-course/internal/payments"
	"github.com/ad/go-telegram-course/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

type BotHandler struct {
	bot            *bot.Bot
	adminID        int64
	errorManager   *services.ErrorManager
	msgManager     *services.MessageManager
	activation     *services.ActivationService
	userRepo       *db.UserRepository
	enrollmentRepo *db.EnrollmentRepository
	paymentRepo    *db.PaymentRepository
	settingsRepo   *db.SettingsRepository
	yookassa       payments.Gateway
	paypal         payments.Gateway
	totalDays      int
}

func NewBotHandler(
	b *bot.Bot,
	adminID int64,
	errorManager *services.ErrorManager,
	msgManager *services.MessageManager,
	activation *services.ActivationService,
	userRepo *db.UserRepository,
	enrollmentRepo *db.EnrollmentRepository,
	paymentRepo *db.PaymentRepository,
	settingsRepo *db.SettingsRepository,
	yookassa payments.Gateway,
	paypal payments.Gateway,
	totalDays int,
) *BotHandler {
	return &BotHandler{
		bot:            b,
		adminID:        adminID,
		errorManager:   errorManager,
		msgManager:     msgManager,
		activation:     activation,
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		settingsRepo:   settingsRepo,
		yookassa:       yookassa,
		paypal:         paypal,
		totalDays:      totalDays,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		var userID int64
		if update.Message != nil && update.Message.From != nil {
			userID = update.Message.From.ID
		} else if update.CallbackQuery != nil {
			userID = update.CallbackQuery.From.ID
		}
		h.errorManager.NotifyAdminPanic(ctx, r, userID)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}

	if msg.Text == "/start" {
		h.handleStart(ctx, msg)
		return
	}

	if msg.From.ID == h.adminID && h.handleAdminCommand(ctx, msg) {
		return
	}
}

func (h *BotHandler) handleStart(ctx context.Context, msg *tgmodels.Message) {
	user := &models.User{
		ID:        msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.Username,
	}
	if err := h.userRepo.GetOrCreate(user); err != nil {
		log.Printf("[HANDLER] failed to register user %d: %v", user.ID, err)
	}

	welcome, err := h.settingsRepo.Get("welcome_message")
	if err != nil || welcome == "" {
		welcome = "Добро пожаловать в курс «Путь к мечте»!"
	}

	text := welcome + "\n\n📚 7 дней, которые помогут вам вспомнить свои мечты и сделать первый шаг к ним.\n\nВыберите способ оплаты:"

	_, err = h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        text,
		ReplyMarkup: paymentMethodsKeyboard(),
	})
	if err != nil {
		log.Printf("[HANDLER] start message to %d failed: %v", msg.Chat.ID, err)
	}
}

func (h *BotHandler) handleCallback(ctx context.Context, callback *tgmodels.CallbackQuery) {
	defer func() {
		_, _ = h.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
		})
	}()

	userID := callback.From.ID
	data := callback.Data

	switch {
	case data == "pay:yookassa":
		h.handleCreatePayment(ctx, userID, models.MethodYooKassa, h.yookassa)
	case data == "pay:paypal":
		h.handleCreatePayment(ctx, userID, models.MethodPayPal, h.paypal)
	case strings.HasPrefix(data, "check:"):
		method, paymentID, ok := parseCheckCallback(data)
		if ok {
			h.handleCheckPayment(ctx, userID, method, paymentID)
		}
	case data == "back":
		_, _ = h.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      userID,
			Text:        "🔄 Выберите способ оплаты:",
			ReplyMarkup: paymentMethodsKeyboard(),
		})
	}
}

// parseCheckCallback splits "check:<method>:<payment_id>". Payment ids may
// themselves contain colons, so only the first two separators count.
func parseCheckCallback(data string) (method, paymentID string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func (h *BotHandler) handleCreatePayment(ctx context.Context, userID int64, method models.PaymentMethod, gateway payments.Gateway) {
	link, err := gateway.CreatePayment(ctx, userID)
	if err != nil {
		log.Printf("[HANDLER] user %d: %s payment creation failed: %v", userID, method, err)
		h.sendError(ctx, userID, "❌ Не удалось создать платёж. Попробуйте позже.")
		return
	}

	err = h.paymentRepo.Create(&models.Payment{
		PaymentID: link.PaymentID,
		UserID:    userID,
		Amount:    link.Amount,
		Currency:  link.Currency,
		Method:    method,
	})
	if err != nil {
		log.Printf("[HANDLER] user %d: failed to store payment %s: %v", userID, link.PaymentID, err)
		h.sendError(ctx, userID, "❌ Не удалось создать платёж. Попробуйте позже.")
		return
	}

	text := fmt.Sprintf("💳 Оплата: %.2f %s\n\nНажмите кнопку ниже, чтобы перейти к оплате. После оплаты вернитесь сюда и нажмите «Я оплатил(а)».", link.Amount, link.Currency)
	_, err = h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      userID,
		Text:        text,
		ReplyMarkup: checkoutKeyboard(link.URL, string(method), link.PaymentID),
	})
	if err != nil {
		log.Printf("[HANDLER] user %d: checkout message failed: %v", userID, err)
	}
}

func (h *BotHandler) handleCheckPayment(ctx context.Context, userID int64, method, paymentID string) {
	gateway := h.yookassa
	if method == string(models.MethodPayPal) {
		gateway = h.paypal
	}

	status, err := gateway.CheckStatus(ctx, paymentID)
	if err != nil {
		log.Printf("[HANDLER] user %d: status check for %s failed: %v", userID, paymentID, err)
		h.sendError(ctx, userID, "⏳ Не удалось проверить платёж. Попробуйте через минуту.")
		return
	}

	switch status {
	case payments.StatusSuccess:
		if err := h.activation.Activate(ctx, userID, paymentID); err != nil {
			log.Printf("[HANDLER] user %d: activation for %s failed: %v", userID, paymentID, err)
			h.sendError(ctx, userID, "❌ Произошла ошибка при активации курса. Мы уже работаем над решением.")
		}
	case payments.StatusPending:
		h.sendError(ctx, userID, "⏳ Платёж ещё обрабатывается. Попробуйте проверить через пару минут.")
	case payments.StatusNotFound:
		h.sendError(ctx, userID, "❌ Платёж не найден. Если вы уверены, что оплатили, напишите нам.")
	default:
		h.sendError(ctx, userID, "❌ Платёж не прошёл. Попробуйте ещё раз.")
	}
}

func (h *BotHandler) sendError(ctx context.Context, chatID int64, text string) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		log.Printf("[HANDLER] error message to %d failed: %v", chatID, err)
	}
}

func (h *BotHandler) enrollmentInfo(userID int64) (string, error) {
	enr, err := h.enrollmentRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "📭 Курс не активирован", nil
		}
		return "", err
	}

	status := "✅ активен"
	if !enr.IsActive {
		status = "⏹ не активен"
	}
	info := fmt.Sprintf("📅 Текущий день: %d/%d\n📌 Статус: %s", enr.CurrentDay, h.totalDays, status)
	if enr.LastDeliveryAt != nil {
		info += fmt.Sprintf("\n📨 Последняя отправка: %s", enr.LastDeliveryAt.Format("02.01.2006 15:04"))
	}
	if enr.CompletedAt != nil {
		info += fmt.Sprintf("\n🏁 Завершён: %s", enr.CompletedAt.Format("02.01.2006 15:04"))
	}
	return info, nil
}
