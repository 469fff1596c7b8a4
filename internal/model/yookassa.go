package model

type YookassaAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type YookassaConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type YookassaMetadata struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type YookassaPayment struct {
	ID           string                `json:"id"`
	Status       string                `json:"status"` // pending, waiting_for_capture, succeeded, canceled
	Amount       YookassaAmount        `json:"amount"`
	Confirmation *YookassaConfirmation `json:"confirmation,omitempty"`
	Metadata     YookassaMetadata      `json:"metadata"`
}

// YookassaWebhookEvent is the notification body; Yookassa specifies no
// signature scheme, identity is cross-checked via the payment metadata.
type YookassaWebhookEvent struct {
	Type   string          `json:"type"` // always "notification"
	Event  string          `json:"event"`
	Object YookassaPayment `json:"object"`
}
