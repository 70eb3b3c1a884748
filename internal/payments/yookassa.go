package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	yookassaAmount   = 599.00
	yookassaCurrency = "RUB"
)

// YooKassaGateway creates card payments through the YooKassa REST API and
// verifies its webhook signatures. When the API call fails, it falls back to
// the static checkout link with a locally generated reference.
type YooKassaGateway struct {
	client      *resty.Client
	shopID      string
	secretKey   string
	returnURL   string
	fallbackURL string
}

func NewYooKassaGateway(shopID, secretKey, returnURL, fallbackURL string) *YooKassaGateway {
	client := resty.New().
		SetBaseURL("https://api.yookassa.ru/v3").
		SetTimeout(30 * time.Second).
		SetBasicAuth(shopID, secretKey)

	return &YooKassaGateway{
		client:      client,
		shopID:      shopID,
		secretKey:   secretKey,
		returnURL:   returnURL,
		fallbackURL: fallbackURL,
	}
}

// SetBaseURL points the gateway at a different API host. Used by tests.
func (g *YooKassaGateway) SetBaseURL(url string) {
	g.client.SetBaseURL(url)
}

type yookassaPaymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

func (g *YooKassaGateway) CreatePayment(ctx context.Context, userID int64) (*CheckoutLink, error) {
	reference := localReference(userID)

	payload := map[string]interface{}{
		"amount": map[string]string{
			"value":    fmt.Sprintf("%.2f", yookassaAmount),
			"currency": yookassaCurrency,
		},
		"payment_method_data": map[string]string{"type": "bank_card"},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": g.returnURL,
		},
		"capture":     true,
		"description": fmt.Sprintf("Курс «Путь к мечте» для пользователя %d", userID),
		"metadata": map[string]interface{}{
			"user_id":    userID,
			"payment_id": reference,
		},
	}

	var created yookassaPaymentResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Idempotence-Key", uuid.NewString()).
		SetBody(payload).
		SetResult(&created).
		Post("/payments")

	if err != nil || resp.StatusCode() != http.StatusOK || created.Confirmation.ConfirmationURL == "" {
		if err != nil {
			log.Printf("[PAYMENT] yookassa create failed: %v, using fallback link", err)
		} else {
			log.Printf("[PAYMENT] yookassa create returned %d: %s, using fallback link", resp.StatusCode(), resp.String())
		}
		return &CheckoutLink{
			URL:       fmt.Sprintf("%s?payment_id=%s", g.fallbackURL, reference),
			PaymentID: reference,
			Amount:    yookassaAmount,
			Currency:  yookassaCurrency,
		}, nil
	}

	return &CheckoutLink{
		URL:       created.Confirmation.ConfirmationURL,
		PaymentID: created.ID,
		Amount:    yookassaAmount,
		Currency:  yookassaCurrency,
	}, nil
}

func (g *YooKassaGateway) CheckStatus(ctx context.Context, paymentID string) (Status, error) {
	var payment yookassaPaymentResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&payment).
		Get("/payments/" + paymentID)
	if err != nil {
		return StatusPending, fmt.Errorf("yookassa status check failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return StatusNotFound, nil
	case http.StatusOK:
	default:
		return StatusPending, fmt.Errorf("yookassa status check returned %d", resp.StatusCode())
	}

	switch payment.Status {
	case "succeeded":
		return StatusSuccess, nil
	case "pending", "waiting_for_capture":
		return StatusPending, nil
	default:
		return StatusFailed, nil
	}
}

// VerifyWebhook checks the HMAC-SHA256 signature YooKassa sends in the
// Content-Signature header.
func (g *YooKassaGateway) VerifyWebhook(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
