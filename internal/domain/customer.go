package domain

import (
	"regexp"
	"time"
)

// SubscriptionType identifies one of the fixed subscription tiers.
type SubscriptionType string

const (
	SubscriptionMonthly   SubscriptionType = "MONTHLY"
	SubscriptionQuarterly SubscriptionType = "QUARTERLY"
	SubscriptionYearly    SubscriptionType = "YEARLY"
)

// Valid reports whether t names a catalog tier.
func (t SubscriptionType) Valid() bool {
	switch t {
	case SubscriptionMonthly, SubscriptionQuarterly, SubscriptionYearly:
		return true
	}
	return false
}

// PaymentStatus tracks whether a customer has settled the current cycle.
// Transitions are user-driven; nothing advances the status automatically.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// Valid reports whether s is one of the known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue:
		return true
	}
	return false
}

// phonePattern requires a leading + country code followed by digits.
var phonePattern = regexp.MustCompile(`^\+[0-9]{6,15}$`)

// ValidPhone reports whether p carries a leading + country code.
func ValidPhone(p string) bool {
	return phonePattern.MatchString(p)
}

// Customer is a subscriber of the pickup service.
type Customer struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address"`
	SubscriptionType SubscriptionType `json:"subscription_type"`
	PaymentStatus    PaymentStatus    `json:"payment_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CustomerUpdate carries a partial customer mutation; nil fields are left
// unchanged.
type CustomerUpdate struct {
	Name             *string           `json:"name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Address          *string           `json:"address,omitempty"`
	SubscriptionType *SubscriptionType `json:"subscription_type,omitempty"`
	PaymentStatus    *PaymentStatus    `json:"payment_status,omitempty"`
}
