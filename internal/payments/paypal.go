package payments

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	paypalAmount   = 30.00
	paypalCurrency = "ILS"
)

// PayPalGateway creates checkout orders through the PayPal Orders API. Webhook
// payloads are not trusted directly: confirmation always goes through an order
// status lookup against the API, so VerifyWebhook only gates obviously broken
// requests.
type PayPalGateway struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	returnURL    string
	fallbackURL  string
}

func NewPayPalGateway(clientID, clientSecret, returnURL, fallbackURL string) *PayPalGateway {
	client := resty.New().
		SetBaseURL("https://api-m.paypal.com").
		SetTimeout(30 * time.Second)

	return &PayPalGateway{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		returnURL:    returnURL,
		fallbackURL:  fallbackURL,
	}
}

// SetBaseURL points the gateway at a different API host. Used by tests.
func (g *PayPalGateway) SetBaseURL(url string) {
	g.client.SetBaseURL(url)
}

func (g *PayPalGateway) accessToken(ctx context.Context) (string, error) {
	var auth struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetBasicAuth(g.clientID, g.clientSecret).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&auth).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("paypal auth failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || auth.AccessToken == "" {
		return "", fmt.Errorf("paypal auth returned %d: %s", resp.StatusCode(), resp.String())
	}
	return auth.AccessToken, nil
}

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

func (g *PayPalGateway) CreatePayment(ctx context.Context, userID int64) (*CheckoutLink, error) {
	reference := localReference(userID)

	link, err := g.createOrder(ctx, userID, reference)
	if err != nil {
		log.Printf("[PAYMENT] paypal create failed: %v, using fallback link", err)
		return &CheckoutLink{
			URL:       fmt.Sprintf("%s?payment_id=%s", g.fallbackURL, reference),
			PaymentID: reference,
			Amount:    paypalAmount,
			Currency:  paypalCurrency,
		}, nil
	}
	return link, nil
}

func (g *PayPalGateway) createOrder(ctx context.Context, userID int64, reference string) (*CheckoutLink, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"reference_id": reference,
			"amount": map[string]string{
				"currency_code": paypalCurrency,
				"value":         fmt.Sprintf("%.2f", paypalAmount),
			},
			"description": "Course 'Path to Dream'",
			"custom_id":   fmt.Sprintf("%d", userID),
		}},
		"application_context": map[string]string{
			"return_url":  g.returnURL,
			"cancel_url":  g.returnURL,
			"brand_name":  "Путь к мечте",
			"user_action": "PAY_NOW",
		},
	}

	var order paypalOrderResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		SetResult(&order).
		Post("/v2/checkout/orders")
	if err != nil {
		return nil, fmt.Errorf("paypal order creation failed: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("paypal order creation returned %d: %s", resp.StatusCode(), resp.String())
	}

	for _, l := range order.Links {
		if l.Rel == "approve" {
			return &CheckoutLink{
				URL:       l.Href,
				PaymentID: order.ID,
				Amount:    paypalAmount,
				Currency:  paypalCurrency,
			}, nil
		}
	}
	return nil, fmt.Errorf("paypal order %s has no approve link", order.ID)
}

func (g *PayPalGateway) CheckStatus(ctx context.Context, paymentID string) (Status, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return StatusPending, err
	}

	var order paypalOrderResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&order).
		Get("/v2/checkout/orders/" + paymentID)
	if err != nil {
		return StatusPending, fmt.Errorf("paypal status check failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return StatusNotFound, nil
	case http.StatusOK:
	default:
		return StatusPending, fmt.Errorf("paypal status check returned %d", resp.StatusCode())
	}

	switch order.Status {
	case "COMPLETED":
		return StatusSuccess, nil
	case "APPROVED", "CREATED":
		return StatusPending, nil
	default:
		return StatusFailed, nil
	}
}

// VerifyWebhook accepts any non-empty payload: the webhook handler re-checks
// the order status via CheckStatus before activating, which is what actually
// establishes authenticity.
func (g *PayPalGateway) VerifyWebhook(body []byte, _ string) bool {
	return len(body) > 0
}
