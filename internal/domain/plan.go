package domain

import (
	"fmt"
	"time"
)

// Plan describes a subscription tier from the fixed catalog.
type Plan struct {
	ID          string           `json:"id"`
	Type        SubscriptionType `json:"type"`
	Name        string           `json:"name"`
	Price       int              `json:"price"`
	Description string           `json:"description"`
	PickupDays  []time.Weekday   `json:"pickup_days"`
}

// PickupDays is the weekly pickup pattern shared by every plan.
var PickupDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

var plans = map[SubscriptionType]Plan{
	SubscriptionMonthly: {
		ID:          "monthly",
		Type:        SubscriptionMonthly,
		Name:        "Monthly",
		Price:       30,
		Description: "Basic monthly pickup service",
		PickupDays:  PickupDays,
	},
	SubscriptionQuarterly: {
		ID:          "quarterly",
		Type:        SubscriptionQuarterly,
		Name:        "Quarterly",
		Price:       80,
		Description: "Quarterly subscription with priority pickup",
		PickupDays:  PickupDays,
	},
	SubscriptionYearly: {
		ID:          "yearly",
		Type:        SubscriptionYearly,
		Name:        "Yearly",
		Price:       250,
		Description: "Annual subscription with premium benefits",
		PickupDays:  PickupDays,
	},
}

// PlanFor returns the catalog plan for the given subscription type.
func PlanFor(t SubscriptionType) (Plan, error) {
	p, ok := plans[t]
	if !ok {
		return Plan{}, fmt.Errorf("unknown subscription type %q: %w", t, ErrInvalidInput)
	}
	return p, nil
}

// Plans returns the catalog in a stable order.
func Plans() []Plan {
	return []Plan{
		plans[SubscriptionMonthly],
		plans[SubscriptionQuarterly],
		plans[SubscriptionYearly],
	}
}
