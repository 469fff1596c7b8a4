package service

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrVariantUnavailable  = errors.New("requested variant is unavailable or out of stock")
	ErrInvalidPromoCode    = errors.New("invalid or inactive promo code")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidWebhook      = errors.New("webhook verification failed")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyInUse   = errors.New("email already registered")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
)
