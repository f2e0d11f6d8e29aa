package state

import (
	"encoding/json"
	"time"

	"github.com/azrishaharin/KonMari/internal/changefeed"
	"github.com/azrishaharin/KonMari/internal/domain"
)

// applyCustomerEvent folds one customers-table change into the cache in
// receipt order; for a given id the last writer wins.
func (s *Store) applyCustomerEvent(e changefeed.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Type {
	case changefeed.EventInsert, changefeed.EventUpdate:
		var c domain.Customer
		if err := json.Unmarshal(e.New, &c); err != nil {
			s.logger.Printf("state: decode customer %s event: %v", e.Type, err)
			return
		}
		s.customers = upsertCustomer(s.customers, c)
	case changefeed.EventDelete:
		var c domain.Customer
		if err := json.Unmarshal(e.Old, &c); err != nil {
			s.logger.Printf("state: decode customer delete event: %v", err)
			return
		}
		s.customers = removeCustomer(s.customers, c.ID)
	}
}

// completedPickupRow mirrors row_to_json output; pickup_date is a bare
// calendar date, not RFC 3339.
type completedPickupRow struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	PickupDate  string    `json:"pickup_date"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// applyPickupEvent folds a completed_pickups insert into the completion log
// and flips the matching daily-board entry.
func (s *Store) applyPickupEvent(e changefeed.Event) {
	if e.Type != changefeed.EventInsert {
		return
	}

	var row completedPickupRow
	if err := json.Unmarshal(e.New, &row); err != nil {
		s.logger.Printf("state: decode completed pickup event: %v", err)
		return
	}
	pickupDate, err := time.Parse("2006-01-02", row.PickupDate)
	if err != nil {
		s.logger.Printf("state: bad pickup_date %q: %v", row.PickupDate, err)
		return
	}

	cp := domain.CompletedPickup{
		ID:          row.ID,
		CustomerID:  row.CustomerID,
		PickupDate:  pickupDate,
		CompletedAt: row.CompletedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Notes != nil {
		cp.Notes = *row.Notes
	}

	s.mu.Lock()
	s.completedPickups = upsertCompletedPickup(s.completedPickups, cp)
	s.flipDailyCompletedLocked(cp.CustomerID)
	s.mu.Unlock()
}
