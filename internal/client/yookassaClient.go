package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"novella-shop/internal/config"
	"novella-shop/internal/model"

	"github.com/google/uuid"
)

// YookassaReceiptItem is one fiscal receipt row; amounts are major-unit
// strings in RUB.
type YookassaReceiptItem struct {
	Description    string               `json:"description"`
	Quantity       string               `json:"quantity"`
	Amount         model.YookassaAmount `json:"amount"`
	VATCode        int                  `json:"vat_code"`
	PaymentMode    string               `json:"payment_mode"`
	PaymentSubject string               `json:"payment_subject"`
}

type YookassaCustomer struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type YookassaReceipt struct {
	Customer YookassaCustomer      `json:"customer"`
	Items    []YookassaReceiptItem `json:"items"`
}

type YookassaCreatePaymentRequest struct {
	Amount       model.YookassaAmount       `json:"amount"`
	Confirmation model.YookassaConfirmation `json:"confirmation"`
	Capture      bool                       `json:"capture"`
	Description  string                     `json:"description"`
	Metadata     model.YookassaMetadata     `json:"metadata"`
	Receipt      YookassaReceipt            `json:"receipt"`
}

type YookassaClient interface {
	CreatePayment(ctx context.Context, req *YookassaCreatePaymentRequest, idempotenceKey string) (*model.YookassaPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*model.YookassaPayment, error)
}

type yookassaClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	shopID     string
	secretKey  string
}

func NewYookassaClient(cfg *config.Yookassa) YookassaClient {
	return &yookassaClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		shopID:     cfg.ShopID,
		secretKey:  cfg.SecretKey,
	}
}

func (c *yookassaClientImpl) CreatePayment(ctx context.Context, payment *YookassaCreatePaymentRequest, idempotenceKey string) (*model.YookassaPayment, error) {
	if idempotenceKey == "" {
		idempotenceKey = uuid.NewString()
	}

	body, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v3/payments", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", idempotenceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yookassa create payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yookassa error %d: %s", resp.StatusCode, string(b))
	}

	var result model.YookassaPayment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode yookassa response: %w", err)
	}

	return &result, nil
}

func (c *yookassaClientImpl) GetPayment(ctx context.Context, paymentID string) (*model.YookassaPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/v3/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yookassa get payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yookassa error %d: %s", resp.StatusCode, string(b))
	}

	var result model.YookassaPayment
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode yookassa response: %w", err)
	}

	return &result, nil
}
