package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingSubscription keeps a listing featured while it is paid for.
type ListingSubscription struct {
	BaseModel
	ListingID string             `gorm:"type:uuid;not null;index" json:"listingId"`
	UserID    string             `gorm:"type:uuid;not null;index" json:"userId"`
	PlanCode  string             `gorm:"type:varchar(40);not null" json:"planCode"`
	Status    SubscriptionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

type PaymentTransaction struct {
	ID                string        `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriptionID    string        `gorm:"type:uuid;not null;index" json:"subscriptionId"`
	Amount            float64       `gorm:"not null" json:"amount"`
	Currency          string        `gorm:"type:varchar(3)" json:"currency"`
	Status            PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CheckoutSessionID string        `gorm:"index" json:"-"`
	CreatedAt         time.Time     `gorm:"default:now()" json:"createdAt"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// NewPaymentTransaction assigns the ID client-side so the checkout session
// can reference it before the row is written.
func NewPaymentTransaction(subscriptionID string, amount float64, currency string) *PaymentTransaction {
	return &PaymentTransaction{
		ID:             uuid.NewString(),
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Currency:       currency,
		Status:         PaymentStatusPending,
	}
}
