package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"novella-shop/internal/config"
	"novella-shop/internal/model"

	"encoding/json"
)

// StripeLineItem is one display row of a checkout session; amounts are
// minor units (cents).
type StripeLineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, orderID uint, items []StripeLineItem, successURL, cancelURL string) (*model.StripeCheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*model.StripeCheckoutSession, error)
	VerifyWebhookSignature(header string, body []byte) error
}

type stripeClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	secretKey     string
	webhookSecret string
}

func NewStripeClient(cfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    cfg.BaseApiURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, orderID uint, items []StripeLineItem, successURL, cancelURL string) (*model.StripeCheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	form.Set("metadata[order_id]", strconv.FormatUint(uint64(orderID), 10))

	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "eur")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	var session model.StripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &session, nil
}

func (c *stripeClientImpl) GetCheckoutSession(ctx context.Context, sessionID string) (*model.StripeCheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/v1/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	var session model.StripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &session, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header
// ("t=<unix>,v1=<hex>") against an HMAC-SHA256 of "<t>.<raw body>" keyed
// with the endpoint secret.
func (c *stripeClientImpl) VerifyWebhookSignature(header string, body []byte) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed stripe signature header")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}

	return fmt.Errorf("stripe signature mismatch")
}
