package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Session  Session  `envPrefix:"SESSION_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
	Yookassa Yookassa `envPrefix:"YOOKASSA_"`
	Currency Currency `envPrefix:"CURRENCY_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	JWT      JWT      `envPrefix:"JWT_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Session struct {
	// zero TTL means cart documents never expire
	CartTTL time.Duration `env:"CART_TTL" envDefault:"0"`
}

type Stripe struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string `env:"SECRET_KEY"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type Yookassa struct {
	BaseApiURL string `env:"BASE_API_URL" envDefault:"https://api.yookassa.ru"`
	ShopID     string `env:"SHOP_ID"`
	SecretKey  string `env:"SECRET_KEY"`
	VATCode    int    `env:"VAT_CODE" envDefault:"1"`
}

type Currency struct {
	// fixed conversion applied to Yookassa amounts; must be supplied,
	// an exchange rate has no sane default
	EURToRUBRate string `env:"EUR_TO_RUB_RATE,required"`
}

type SMTP struct {
	Host string `env:"HOST"`
	Port string `env:"PORT" envDefault:"587"`
	From string `env:"FROM"`
	User string `env:"USER"`
	Pass string `env:"PASS"`
}

type JWT struct {
	Secret string `env:"SECRET"`
}
