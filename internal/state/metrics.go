package state

import "github.com/azrishaharin/KonMari/internal/domain"

// Metrics summarizes the cached state for the dashboard cards.
type Metrics struct {
	TotalCustomers  int `json:"total_customers"`
	TodaysPickups   int `json:"todays_pickups"`
	CompletedToday  int `json:"completed_today"`
	MonthlyRevenue  int `json:"monthly_revenue"`
	PendingPayments int `json:"pending_payments"`
}

// Metrics computes the dashboard summary from the current cache.
func (s *Store) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := Metrics{
		TotalCustomers: len(s.customers),
		TodaysPickups:  len(s.dailyPickups),
	}
	for _, p := range s.dailyPickups {
		if p.IsCompleted {
			m.CompletedToday++
		}
	}
	for _, c := range s.customers {
		switch c.PaymentStatus {
		case domain.PaymentPaid:
			if plan, err := domain.PlanFor(c.SubscriptionType); err == nil {
				m.MonthlyRevenue += plan.Price
			}
		case domain.PaymentPending, domain.PaymentOverdue:
			m.PendingPayments++
		}
	}
	return m
}
