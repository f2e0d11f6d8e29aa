package domain

import "time"

// DailyPickup is a row of the daily_pickups view: one entry per customer,
// flagged completed once a completed_pickups record exists for the current
// pickup date.
type DailyPickup struct {
	CustomerID       string           `json:"customer_id"`
	Name             string           `json:"name"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address"`
	SubscriptionType SubscriptionType `json:"subscription_type"`
	IsCompleted      bool             `json:"is_completed"`
}

// CompletedPickup records a finished pickup. Append-only.
type CompletedPickup struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	PickupDate  time.Time `json:"pickup_date"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
