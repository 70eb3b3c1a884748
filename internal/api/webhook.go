package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/ad/go-telegram-course/internal/db"
	"github.com/ad/go-telegram-course/internal/payments"
	"github.com/ad/go-telegram-course/internal/services"
)

// WebhookHandler processes payment provider notifications. Activation runs in
// the background so the provider gets its 200 before the day-1 messages go
// out; repeated notifications are harmless because activation is idempotent
// per payment id.
type WebhookHandler struct {
	payments   *db.PaymentRepository
	activation *services.ActivationService
	yookassa   payments.Gateway
	paypal     payments.Gateway
}

func NewWebhookHandler(paymentRepo *db.PaymentRepository, activation *services.ActivationService, yookassa, paypal payments.Gateway) *WebhookHandler {
	return &WebhookHandler{
		payments:   paymentRepo,
		activation: activation,
		yookassa:   yookassa,
		paypal:     paypal,
	}
}

type yookassaEvent struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

func (h *WebhookHandler) HandleYooKassa(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	if !h.yookassa.VerifyWebhook(body, r.Header.Get("Content-Signature")) {
		log.Printf("[WEBHOOK] invalid yookassa signature from %s", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var event yookassaEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log.Printf("[WEBHOOK] yookassa event %q for payment %s", event.Event, event.Object.ID)

	switch event.Event {
	case "payment.succeeded":
		h.activateInBackground(event.Object.ID)
	case "payment.canceled":
		canceled, err := h.payments.MarkCanceled(event.Object.ID)
		if err != nil {
			log.Printf("[WEBHOOK] payment %s: cancel update failed: %v", event.Object.ID, err)
		} else if !canceled {
			log.Printf("[WEBHOOK] payment %s: cancel event ignored, payment is no longer pending", event.Object.ID)
		}
	}

	w.Write([]byte("OK"))
}

type paypalEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID string `json:"id"`
	} `json:"resource"`
}

func (h *WebhookHandler) HandlePayPal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read request body", http.StatusBadRequest)
		return
	}

	if !h.paypal.VerifyWebhook(body, r.Header.Get("Paypal-Transmission-Sig")) {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	var event paypalEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log.Printf("[WEBHOOK] paypal event %q for order %s", event.EventType, event.Resource.ID)

	// The payload is not trusted: confirm the order against the API first.
	status, err := h.paypal.CheckStatus(r.Context(), event.Resource.ID)
	if err != nil {
		log.Printf("[WEBHOOK] order %s: status check failed: %v", event.Resource.ID, err)
		http.Error(w, "status check failed", http.StatusBadGateway)
		return
	}
	if status == payments.StatusSuccess {
		h.activateInBackground(event.Resource.ID)
	}

	w.Write([]byte("OK"))
}

func (h *WebhookHandler) activateInBackground(paymentID string) {
	payment, err := h.payments.GetByID(paymentID)
	if err != nil {
		log.Printf("[WEBHOOK] payment %s not found in store: %v", paymentID, err)
		return
	}

	go func() {
		if err := h.activation.Activate(context.Background(), payment.UserID, paymentID); err != nil {
			log.Printf("[WEBHOOK] payment %s: activation failed: %v", paymentID, err)
		}
	}()
}
