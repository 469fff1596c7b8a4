package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Perfume struct {
	ID        uint            `gorm:"primaryKey"`
	Name      string          `gorm:"size:255;not null"`
	Slug      string          `gorm:"size:255;uniqueIndex;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"` // base price, EUR
	Discount  decimal.Decimal `gorm:"type:decimal(5,2);default:0"` // percentage off the base price
	Available bool            `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DiscountedPrice is the catalog price after the perfume's own discount.
func (p *Perfume) DiscountedPrice() decimal.Decimal {
	if p.Discount.IsZero() {
		return p.Price
	}
	factor := decimal.NewFromInt(1).Sub(p.Discount.Div(decimal.NewFromInt(100)))
	return p.Price.Mul(factor).Round(2)
}

type Capacity struct {
	ID     uint   `gorm:"primaryKey"`
	Volume string `gorm:"size:32;not null"` // e.g. "50ml"
}

// PerfumeCapacity is one sellable variant of a perfume. A zero Price means
// the variant has no override and sells at the perfume's discounted price.
type PerfumeCapacity struct {
	PerfumeID  uint            `gorm:"primaryKey"`
	CapacityID uint            `gorm:"primaryKey"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);default:0"`
	Quantity   int             `gorm:"not null;default:0"` // units in stock
	Available  bool            `gorm:"default:true"`
}

type Sample struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Slug      string `gorm:"size:255;uniqueIndex;not null"`
	Available bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Gift struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Slug        string          `gorm:"size:255;uniqueIndex;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Available   bool            `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PromoCode struct {
	ID                 uint            `gorm:"primaryKey"`
	Code               string          `gorm:"size:64;uniqueIndex;not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	IsActive           bool            `gorm:"default:true"`
	CreatedAt          time.Time
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	FirstName    string `gorm:"size:50"`
	LastName     string `gorm:"size:50"`
	Company      string `gorm:"size:100"`
	Address1     string `gorm:"size:255"`
	Address2     string `gorm:"size:255"`
	City         string `gorm:"size:100"`
	Country      string `gorm:"size:100"`
	Province     string `gorm:"size:100"`
	PostalCode   string `gorm:"size:20"`
	Phone        string `gorm:"size:15"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentProviderStripe   = "stripe"
	PaymentProviderYookassa = "yookassa"
)

type Order struct {
	ID                  uint   `gorm:"primaryKey"`
	UserID              uint   `gorm:"index;not null"`
	CartSessionID       string `gorm:"size:64;index"` // session whose cart produced this order
	FirstName           string `gorm:"size:50;not null"`
	LastName            string `gorm:"size:50;not null"`
	Email               string `gorm:"size:254;not null"`
	Company             string `gorm:"size:100"`
	Address1            string `gorm:"size:255"`
	Address2            string `gorm:"size:255"`
	City                string `gorm:"size:100"`
	Country             string `gorm:"size:100"`
	Province            string `gorm:"size:100"`
	PostalCode          string `gorm:"size:20"`
	Phone               string `gorm:"size:15"`
	SpecialInstructions string `gorm:"type:text"`
	PromoCodeID         *uint
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(5,2);default:0"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null"` // pre-discount, EUR
	Status              string          `gorm:"size:20;index;not null;default:pending"`
	PaymentProvider     string          `gorm:"size:20"` // stripe | yookassa, set when payment is created
	StripePaymentID     string          `gorm:"size:255"`
	YookassaPaymentID   string          `gorm:"size:255"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DiscountedTotal applies the order's promo discount, rounded once to cents.
func (o *Order) DiscountedTotal() decimal.Decimal {
	if o.DiscountPercentage.IsPositive() {
		factor := decimal.NewFromInt(1).Sub(o.DiscountPercentage.Div(decimal.NewFromInt(100)))
		return o.TotalPrice.Mul(factor).Round(2)
	}
	return o.TotalPrice.Round(2)
}

type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"index;not null"`
	PerfumeID  uint            `gorm:"not null"`
	CapacityID uint            `gorm:"not null"`
	Name       string          `gorm:"size:255;not null"` // snapshot, survives catalog edits
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"` // unit price at order time
}

func (i *OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderSample struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"index;not null"`
	SampleID uint   `gorm:"not null"`
	Name     string `gorm:"size:255;not null"`
}

type OrderGift struct {
	ID      uint            `gorm:"primaryKey"`
	OrderID uint            `gorm:"uniqueIndex;not null"` // at most one gift per order
	GiftID  uint            `gorm:"not null"`
	Name    string          `gorm:"size:255;not null"`
	Price   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// WebhookEvent records every processed provider callback so redeliveries
// are detected by event id, not only by order status.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	Provider    string `gorm:"size:20;index;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

const (
	EmailJobStatusQueued = "QUEUED"
	EmailJobStatusSent   = "SENT"
	EmailJobStatusFailed = "FAILED"
)

type EmailJob struct {
	ID        uint   `gorm:"primaryKey"`
	ToAddress string `gorm:"size:254;not null"`
	Subject   string `gorm:"size:255;not null"`
	Body      string `gorm:"type:text;not null"`
	Status    string `gorm:"size:16;index;not null;default:QUEUED"`
	SentAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
