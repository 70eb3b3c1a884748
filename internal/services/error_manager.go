package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/go-telegram/bot"
)

type ErrorManager struct {
	bot     telegramAPI
	adminID int64
}

func NewErrorManager(b *bot.Bot, adminID int64) *ErrorManager {
	em := &ErrorManager{adminID: adminID}
	// A typed nil inside the interface would dodge the nil check in NotifyAdmin.
	if b != nil {
		em.bot = b
	}
	return em
}

func (e *ErrorManager) NotifyAdmin(ctx context.Context, text string) {
	if e.bot == nil || e.adminID == 0 {
		return
	}
	if len(text) > 4000 {
		text = text[:4000] + "\n... (truncated)"
	}
	_, _ = e.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   text,
	})
}

func (e *ErrorManager) NotifyAdminPanic(ctx context.Context, panicValue interface{}, userID int64) {
	msg := fmt.Sprintf("🚨 Panic in handler\nUser: [%d]\nError: %v\n\nStack trace:\n%s",
		userID, panicValue, string(debug.Stack()))
	e.NotifyAdmin(ctx, msg)
}

func (e *ErrorManager) NotifyAdminWithCurl(ctx context.Context, chatID int64, request interface{}, err error) {
	curl := e.buildCurlCommand(request)

	msg := fmt.Sprintf("❌ Failed to send message\nUser: [%d]\nError: %v\n\nCurl:\n%s",
		chatID, err, curl)
	e.NotifyAdmin(ctx, msg)
}

func (e *ErrorManager) buildCurlCommand(request interface{}) string {
	jsonData, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return fmt.Sprintf("# Failed to serialize request: %v", err)
	}

	return fmt.Sprintf("curl -X POST 'https://api.telegram.org/bot[BOT_TOKEN]/sendMessage' \\\n  -H 'Content-Type: application/json' \\\n  -d '%s'",
		string(jsonData))
}
