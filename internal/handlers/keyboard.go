package handlers

import (
	"fmt"

	tgmodels "github.com/go-telegram/bot/models"
)

func paymentMethodsKeyboard() *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "🇷🇺 Оплата из России (599 ₽)", CallbackData: "pay:yookassa"}},
			{{Text: "🌍 Оплата из любой точки мира (30 ₪)", CallbackData: "pay:paypal"}},
		},
	}
}

func checkoutKeyboard(checkoutURL, method, paymentID string) *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "💳 Перейти к оплате", URL: checkoutURL}},
			{{Text: "✅ Я оплатил(а)", CallbackData: fmt.Sprintf("check:%s:%s", method, paymentID)}},
			{{Text: "🔙 Назад", CallbackData: "back"}},
		},
	}
}
