package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the webhook and health endpoints. The health endpoints are
// what the hosting keep-alive pings.
func NewRouter(h *WebhookHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Dream course bot is running!"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("✅ Bot is alive!"))
	})

	r.Post("/webhook/yookassa", h.HandleYooKassa)
	r.Post("/webhook/paypal", h.HandlePayPal)

	return r
}
