package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-course/internal/models"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// handleAdminCommand returns true when the message was an admin command,
// handled or not.
func (h *BotHandler) handleAdminCommand(ctx context.Context, msg *tgmodels.Message) bool {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "/stats":
		h.handleStats(ctx, msg.Chat.ID)
	case "/check_user":
		h.handleCheckUser(ctx, msg.Chat.ID, fields[1:])
	case "/activate_course":
		h.handleActivateCourse(ctx, msg.Chat.ID, fields[1:])
	case "/reset_course":
		h.handleResetCourse(ctx, msg.Chat.ID, fields[1:])
	default:
		return false
	}
	return true
}

func (h *BotHandler) handleStats(ctx context.Context, chatID int64) {
	totalUsers, err := h.userRepo.CountAll()
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка статистики: %v", err))
		return
	}
	active, err := h.enrollmentRepo.CountActive()
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка статистики: %v", err))
		return
	}
	completed, err := h.enrollmentRepo.CountCompleted()
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка статистики: %v", err))
		return
	}

	text := fmt.Sprintf("📊 Статистика\n\n👥 Пользователей: %d\n📚 Активных курсов: %d\n🏁 Завершили курс: %d",
		totalUsers, active, completed)
	_, _ = h.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

func (h *BotHandler) handleCheckUser(ctx context.Context, chatID int64, args []string) {
	userID, ok := h.parseUserArg(ctx, chatID, args, "/check_user")
	if !ok {
		return
	}

	info, err := h.enrollmentInfo(userID)
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка: %v", err))
		return
	}

	text := fmt.Sprintf("👤 Пользователь %d\n\n%s", userID, info)
	_, _ = h.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

// handleActivateCourse grants the course manually. A manual payment record is
// created first so the activation path and its idempotency are the same as for
// real payments.
func (h *BotHandler) handleActivateCourse(ctx context.Context, chatID int64, args []string) {
	userID, ok := h.parseUserArg(ctx, chatID, args, "/activate_course")
	if !ok {
		return
	}

	paymentID := "admin_" + uuid.NewString()[:8]
	err := h.paymentRepo.Create(&models.Payment{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    0,
		Currency:  "RUB",
		Method:    models.MethodManual,
	})
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Не удалось создать запись об активации: %v", err))
		return
	}

	if err := h.activation.Activate(ctx, userID, paymentID); err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка активации: %v", err))
		return
	}

	log.Printf("[ADMIN] course manually activated for user %d (%s)", userID, paymentID)
	_, _ = h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Курс активирован для пользователя %d", userID),
	})
}

func (h *BotHandler) handleResetCourse(ctx context.Context, chatID int64, args []string) {
	userID, ok := h.parseUserArg(ctx, chatID, args, "/reset_course")
	if !ok {
		return
	}

	if err := h.enrollmentRepo.Deactivate(userID); err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Ошибка: %v", err))
		return
	}

	log.Printf("[ADMIN] course halted for user %d", userID)
	_, _ = h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("⏹ Курс остановлен для пользователя %d", userID),
	})
}

func (h *BotHandler) parseUserArg(ctx context.Context, chatID int64, args []string, command string) (int64, bool) {
	if len(args) != 1 {
		h.sendError(ctx, chatID, fmt.Sprintf("📋 Использование: %s <user_id>", command))
		return 0, false
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendError(ctx, chatID, fmt.Sprintf("❌ Некорректный user_id: %s", args[0]))
		return 0, false
	}
	return userID, true
}
