package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"pgregory.net/rapid"
)

// fakeTelegram records every send attempt and can be programmed to reject
// them. Failed attempts are recorded too.
type fakeTelegram struct {
	messages    []*bot.SendMessageParams
	photos      []*bot.SendPhotoParams
	rejectSend  func(p *bot.SendMessageParams) error
	rejectPhoto func(p *bot.SendPhotoParams) error
}

func (f *fakeTelegram) SendMessage(_ context.Context, p *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.messages = append(f.messages, p)
	if f.rejectSend != nil {
		if err := f.rejectSend(p); err != nil {
			return nil, err
		}
	}
	return &tgmodels.Message{ID: len(f.messages)}, nil
}

func (f *fakeTelegram) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*tgmodels.Message, error) {
	f.photos = append(f.photos, p)
	if f.rejectPhoto != nil {
		if err := f.rejectPhoto(p); err != nil {
			return nil, err
		}
	}
	return &tgmodels.Message{ID: len(f.photos)}, nil
}

func TestSendText_RetriesPlainAfterMarkdownRejected(t *testing.T) {
	fake := &fakeTelegram{
		rejectSend: func(p *bot.SendMessageParams) error {
			if p.ParseMode != "" {
				return errors.New("Bad Request: can't parse entities")
			}
			return nil
		},
	}
	m := &MessageManager{bot: fake, errMgr: &ErrorManager{}, maxRetry: 2}

	if err := m.SendText(context.Background(), 42, "День *1"); err != nil {
		t.Fatalf("Expected plain-text retry to succeed: %v", err)
	}

	if len(fake.messages) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(fake.messages))
	}
	if fake.messages[0].ParseMode != tgmodels.ParseModeMarkdown {
		t.Errorf("Expected first attempt formatted, got %q", fake.messages[0].ParseMode)
	}
	if fake.messages[1].ParseMode != "" {
		t.Errorf("Expected retry without formatting, got %q", fake.messages[1].ParseMode)
	}
	if fake.messages[1].Text != "День *1" {
		t.Errorf("Expected retry to keep the text, got %q", fake.messages[1].Text)
	}
}

func TestSendText_NoRetryWhenFirstSendSucceeds(t *testing.T) {
	fake := &fakeTelegram{}
	m := &MessageManager{bot: fake, errMgr: &ErrorManager{}, maxRetry: 2}

	if err := m.SendText(context.Background(), 42, "привет"); err != nil {
		t.Fatal(err)
	}
	if len(fake.messages) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(fake.messages))
	}
}

func TestSendText_NotifiesAdminWhenExhausted(t *testing.T) {
	const adminID = int64(99)
	fake := &fakeTelegram{
		rejectSend: func(p *bot.SendMessageParams) error {
			if p.ChatID.(int64) == adminID {
				return nil
			}
			return errors.New("Forbidden: bot was blocked by the user")
		},
	}
	errMgr := &ErrorManager{bot: fake, adminID: adminID}
	m := &MessageManager{bot: fake, errMgr: errMgr, maxRetry: 2}

	err := m.SendText(context.Background(), 42, "пропавшее сообщение")
	if err == nil {
		t.Fatal("Expected error after both attempts failed")
	}

	// Two failed attempts to the user, then the admin report.
	if len(fake.messages) != 3 {
		t.Fatalf("Expected 3 sends, got %d", len(fake.messages))
	}
	report := fake.messages[2]
	if report.ChatID.(int64) != adminID {
		t.Errorf("Expected report to go to the admin, got chat %v", report.ChatID)
	}
	if !strings.Contains(report.Text, "curl -X POST") {
		t.Errorf("Expected a reproducible curl dump in the report, got %q", report.Text)
	}
}

func TestProperty_PhotoSendRetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		failCount := rapid.IntRange(0, 3).Draw(rt, "failCount")
		maxRetry := 2

		attempts := 0
		fake := &fakeTelegram{
			rejectPhoto: func(_ *bot.SendPhotoParams) error {
				attempts++
				if attempts <= failCount {
					return errors.New("network error")
				}
				return nil
			},
		}
		m := &MessageManager{bot: fake, errMgr: &ErrorManager{}, maxRetry: maxRetry}

		err := m.SendPhoto(context.Background(), 42, "https://example.com/pic.jpg")

		if failCount < maxRetry {
			if err != nil {
				rt.Fatalf("Expected success after %d failures, got %v", failCount, err)
			}
			if len(fake.photos) != failCount+1 {
				rt.Fatalf("Expected %d attempts, got %d", failCount+1, len(fake.photos))
			}
		} else {
			if err == nil {
				rt.Fatalf("Expected failure after %d failures with %d max retries", failCount, maxRetry)
			}
			if len(fake.photos) != maxRetry {
				rt.Fatalf("Expected exactly %d attempts, got %d", maxRetry, len(fake.photos))
			}
		}
	})
}
