package services

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Messenger is the chat transport the engine delivers through.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendPhoto(ctx context.Context, userID int64, photoURL string) error
}

// telegramAPI is the slice of bot.Bot the senders depend on.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*tgmodels.Message, error)
}

// MessageManager sends course messages via Telegram. Texts go out as Markdown
// and are retried once as plain text when Telegram rejects them (broken user
// content should degrade, not block the day). Exhausted retries are reported
// to the admin with a reproducible curl dump.
type MessageManager struct {
	bot      telegramAPI
	errMgr   *ErrorManager
	maxRetry int
}

func NewMessageManager(b *bot.Bot, errMgr *ErrorManager) *MessageManager {
	return &MessageManager{
		bot:      b,
		errMgr:   errMgr,
		maxRetry: 2,
	}
}

func (m *MessageManager) SendText(ctx context.Context, userID int64, text string) error {
	_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    userID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err == nil {
		return nil
	}

	// Plain-text retry without formatting.
	params := &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	}
	_, err = m.bot.SendMessage(ctx, params)
	if err != nil {
		m.errMgr.NotifyAdminWithCurl(ctx, userID, params, err)
		return err
	}
	return nil
}

func (m *MessageManager) SendPhoto(ctx context.Context, userID int64, photoURL string) error {
	var lastErr error
	params := &bot.SendPhotoParams{
		ChatID: userID,
		Photo:  &tgmodels.InputFileString{Data: photoURL},
	}
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		_, err := m.bot.SendPhoto(ctx, params)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	m.errMgr.NotifyAdminWithCurl(ctx, userID, params, lastErr)
	return lastErr
}
