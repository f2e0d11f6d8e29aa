// Package state holds the dashboard's in-memory snapshot of the remote
// tables, kept in sync through the change feed. The store is the single
// mutation path for views: mutators call the repositories and splice the
// returned rows into the cache only after the remote call succeeds.
package state

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/azrishaharin/KonMari/internal/changefeed"
	"github.com/azrishaharin/KonMari/internal/domain"
	customerrepo "github.com/azrishaharin/KonMari/internal/repository/customer"
	pickuprepo "github.com/azrishaharin/KonMari/internal/repository/pickup"
	settingsrepo "github.com/azrishaharin/KonMari/internal/repository/settings"
)

// Store caches customers, pickups, and settings for the UI lifetime.
type Store struct {
	customerRepo customerrepo.Repository
	pickupRepo   pickuprepo.Repository
	settingsRepo settingsrepo.Repository
	broker       *changefeed.Broker
	logger       *log.Logger

	mu               sync.RWMutex
	customers        []domain.Customer
	dailyPickups     []domain.DailyPickup
	completedPickups []domain.CompletedPickup
	settings         *domain.Settings
}

// New builds a Store over the given repositories and change-feed broker.
func New(
	customerRepo customerrepo.Repository,
	pickupRepo pickuprepo.Repository,
	settingsRepo settingsrepo.Repository,
	broker *changefeed.Broker,
	logger *log.Logger,
) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		customerRepo: customerRepo,
		pickupRepo:   pickupRepo,
		settingsRepo: settingsRepo,
		broker:       broker,
		logger:       logger,
	}
}

// Load fetches all four snapshots in parallel. The first failure is
// returned; snapshots that did load are kept.
func (s *Store) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		customers, err := s.customerRepo.List(ctx)
		if err != nil {
			errCh <- fmt.Errorf("load customers: %w", err)
			return
		}
		s.mu.Lock()
		s.customers = customers
		s.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		daily, err := s.pickupRepo.ListDaily(ctx)
		if err != nil {
			errCh <- fmt.Errorf("load daily pickups: %w", err)
			return
		}
		s.mu.Lock()
		s.dailyPickups = daily
		s.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		completed, err := s.pickupRepo.ListCompleted(ctx)
		if err != nil {
			errCh <- fmt.Errorf("load completed pickups: %w", err)
			return
		}
		s.mu.Lock()
		s.completedPickups = completed
		s.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			errCh <- fmt.Errorf("load settings: %w", err)
			return
		}
		s.mu.Lock()
		s.settings = settings
		s.mu.Unlock()
	}()

	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// Run subscribes to the customer and completed-pickup feeds and applies
// events until ctx is done. Subscriptions are torn down on return, so a
// late event can never touch the cache after the owning context ends.
func (s *Store) Run(ctx context.Context) {
	customers, cancelCustomers := s.broker.Subscribe("customers")
	defer cancelCustomers()
	pickups, cancelPickups := s.broker.Subscribe("completed_pickups")
	defer cancelPickups()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-customers:
			if !ok {
				return
			}
			s.applyCustomerEvent(e)
		case e, ok := <-pickups:
			if !ok {
				return
			}
			s.applyPickupEvent(e)
		}
	}
}

// AddCustomer validates and creates a customer, appending the created row
// to the cache on success. payment_status defaults to pending.
func (s *Store) AddCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if err := validateNewCustomer(c); err != nil {
		return nil, err
	}
	created, err := s.customerRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.customers = upsertCustomer(s.customers, *created)
	s.mu.Unlock()
	return created, nil
}

// GetCustomer returns one customer, serving from cache and falling back to
// the repository for ids the cache has not seen yet.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	for i := range s.customers {
		if s.customers[i].ID == id {
			c := s.customers[i]
			s.mu.RUnlock()
			return &c, nil
		}
	}
	s.mu.RUnlock()

	c, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.customers = upsertCustomer(s.customers, *c)
	s.mu.Unlock()
	return c, nil
}

// UpdateCustomer applies a partial update and replaces the cached row by id.
func (s *Store) UpdateCustomer(ctx context.Context, id string, u domain.CustomerUpdate) (*domain.Customer, error) {
	if err := validateCustomerUpdate(u); err != nil {
		return nil, err
	}
	updated, err := s.customerRepo.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.customers = upsertCustomer(s.customers, *updated)
	s.mu.Unlock()
	return updated, nil
}

// DeleteCustomer removes the customer remotely, then filters it from cache.
func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.customers = removeCustomer(s.customers, id)
	s.mu.Unlock()
	return nil
}

// MarkPickupComplete records the completion and reflects it in both the
// completed list and the daily board.
func (s *Store) MarkPickupComplete(ctx context.Context, customerID, notes string) (*domain.CompletedPickup, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer id required: %w", domain.ErrInvalidInput)
	}
	cp, err := s.pickupRepo.MarkCompleted(ctx, customerID, notes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.completedPickups = upsertCompletedPickup(s.completedPickups, *cp)
	s.flipDailyCompletedLocked(customerID)
	s.mu.Unlock()
	return cp, nil
}

// UpdateSettings applies a partial settings update against the singleton.
func (s *Store) UpdateSettings(ctx context.Context, u domain.SettingsUpdate) (*domain.Settings, error) {
	if u.ReminderFrequency != nil && !u.ReminderFrequency.Valid() {
		return nil, fmt.Errorf("unknown reminder frequency %q: %w", *u.ReminderFrequency, domain.ErrInvalidInput)
	}

	s.mu.RLock()
	current := s.settings
	s.mu.RUnlock()
	if current == nil {
		fetched, err := s.settingsRepo.Get(ctx)
		if err != nil {
			return nil, err
		}
		current = fetched
	}

	updated, err := s.settingsRepo.Update(ctx, current.ID, u)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.settings = updated
	s.mu.Unlock()
	return updated, nil
}

// Customers returns a copy of the cached customer list.
func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// DailyPickups returns a copy of the cached daily board.
func (s *Store) DailyPickups() []domain.DailyPickup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DailyPickup, len(s.dailyPickups))
	copy(out, s.dailyPickups)
	return out
}

// CompletedPickups returns a copy of the cached completion log.
func (s *Store) CompletedPickups() []domain.CompletedPickup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CompletedPickup, len(s.completedPickups))
	copy(out, s.completedPickups)
	return out
}

// Settings returns the cached settings, or nil before the first load.
func (s *Store) Settings() *domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil
	}
	copied := *s.settings
	return &copied
}

func (s *Store) flipDailyCompletedLocked(customerID string) {
	for i := range s.dailyPickups {
		if s.dailyPickups[i].CustomerID == customerID {
			s.dailyPickups[i].IsCompleted = true
		}
	}
}

func upsertCustomer(customers []domain.Customer, c domain.Customer) []domain.Customer {
	for i := range customers {
		if customers[i].ID == c.ID {
			customers[i] = c
			return customers
		}
	}
	return append(customers, c)
}

// upsertCompletedPickup replaces by id so the feed echo of a local
// completion, or a duplicate delivery, never double-appends.
func upsertCompletedPickup(completed []domain.CompletedPickup, cp domain.CompletedPickup) []domain.CompletedPickup {
	for i := range completed {
		if completed[i].ID == cp.ID {
			completed[i] = cp
			return completed
		}
	}
	return append(completed, cp)
}

func removeCustomer(customers []domain.Customer, id string) []domain.Customer {
	out := customers[:0]
	for _, c := range customers {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func validateNewCustomer(c domain.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("address required: %w", domain.ErrInvalidInput)
	}
	if !domain.ValidPhone(c.Phone) {
		return fmt.Errorf("phone must include a leading + country code: %w", domain.ErrInvalidInput)
	}
	if !c.SubscriptionType.Valid() {
		return fmt.Errorf("unknown subscription type %q: %w", c.SubscriptionType, domain.ErrInvalidInput)
	}
	if c.PaymentStatus != "" && !c.PaymentStatus.Valid() {
		return fmt.Errorf("unknown payment status %q: %w", c.PaymentStatus, domain.ErrInvalidInput)
	}
	return nil
}

func validateCustomerUpdate(u domain.CustomerUpdate) error {
	if u.Phone != nil && !domain.ValidPhone(*u.Phone) {
		return fmt.Errorf("phone must include a leading + country code: %w", domain.ErrInvalidInput)
	}
	if u.SubscriptionType != nil && !u.SubscriptionType.Valid() {
		return fmt.Errorf("unknown subscription type %q: %w", *u.SubscriptionType, domain.ErrInvalidInput)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return fmt.Errorf("unknown payment status %q: %w", *u.PaymentStatus, domain.ErrInvalidInput)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("name required: %w", domain.ErrInvalidInput)
	}
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		return fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	return nil
}
