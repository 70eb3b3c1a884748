package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusNotFound Status = "not_found"
)

// CheckoutLink is what a gateway returns for a new payment: where to send the
// user and which id to poll or match webhooks against.
type CheckoutLink struct {
	URL       string
	PaymentID string
	Amount    float64
	Currency  string
}

type Gateway interface {
	CreatePayment(ctx context.Context, userID int64) (*CheckoutLink, error)
	CheckStatus(ctx context.Context, paymentID string) (Status, error)
	VerifyWebhook(body []byte, signature string) bool
}

// localReference builds a provider-independent payment reference, used for
// fallback checkout links when the provider API is down.
func localReference(userID int64) string {
	return fmt.Sprintf("%d_%s_%s", userID, time.Now().Format("20060102150405"), uuid.NewString()[:8])
}
