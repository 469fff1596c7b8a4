package model

type StripeMetadata struct {
	OrderID string `json:"order_id"`
}

type StripeCheckoutSession struct {
	ID            string         `json:"id"`
	URL           string         `json:"url"`
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	PaymentIntent string         `json:"payment_intent"`
	Metadata      StripeMetadata `json:"metadata"`
}

type StripeEventData struct {
	Object StripeCheckoutSession `json:"object"`
}

type StripeWebhookEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    StripeEventData `json:"data"`
}
