package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/azrishaharin/KonMari/internal/changefeed"
	"github.com/azrishaharin/KonMari/internal/domain"
)

type stubCustomerRepo struct {
	listResult []domain.Customer
	listErr    error
	getResult  *domain.Customer
	getCalls   int
	created    *domain.Customer
	createErr  error
	lastCreate domain.Customer
	updated    *domain.Customer
	updateErr  error
	deleteErr  error
	lastDelete string
}

func (s *stubCustomerRepo) List(_ context.Context) ([]domain.Customer, error) {
	return s.listResult, s.listErr
}

func (s *stubCustomerRepo) GetByID(_ context.Context, _ string) (*domain.Customer, error) {
	s.getCalls++
	if s.getResult == nil {
		return nil, domain.ErrNotFound
	}
	return s.getResult, nil
}

func (s *stubCustomerRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	s.lastCreate = c
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	created := c
	created.ID = "generated-id"
	if created.PaymentStatus == "" {
		created.PaymentStatus = domain.PaymentPending
	}
	return &created, nil
}

func (s *stubCustomerRepo) Update(_ context.Context, _ string, _ domain.CustomerUpdate) (*domain.Customer, error) {
	return s.updated, s.updateErr
}

func (s *stubCustomerRepo) Delete(_ context.Context, id string) error {
	s.lastDelete = id
	return s.deleteErr
}

type stubPickupRepo struct {
	daily        []domain.DailyPickup
	dailyErr     error
	completed    []domain.CompletedPickup
	completedErr error
	marked       *domain.CompletedPickup
	markErr      error
}

func (s *stubPickupRepo) ListDaily(_ context.Context) ([]domain.DailyPickup, error) {
	return s.daily, s.dailyErr
}

func (s *stubPickupRepo) ListCompleted(_ context.Context) ([]domain.CompletedPickup, error) {
	return s.completed, s.completedErr
}

func (s *stubPickupRepo) MarkCompleted(_ context.Context, customerID, notes string) (*domain.CompletedPickup, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	if s.marked != nil {
		return s.marked, nil
	}
	return &domain.CompletedPickup{
		ID:          "cp-1",
		CustomerID:  customerID,
		Notes:       notes,
		CompletedAt: time.Now(),
	}, nil
}

type stubSettingsRepo struct {
	settings  *domain.Settings
	getErr    error
	updated   *domain.Settings
	updateErr error
}

func (s *stubSettingsRepo) Get(_ context.Context) (*domain.Settings, error) {
	return s.settings, s.getErr
}

func (s *stubSettingsRepo) Update(_ context.Context, _ string, _ domain.SettingsUpdate) (*domain.Settings, error) {
	return s.updated, s.updateErr
}

func newTestStore(c *stubCustomerRepo, p *stubPickupRepo, st *stubSettingsRepo) *Store {
	if c == nil {
		c = &stubCustomerRepo{}
	}
	if p == nil {
		p = &stubPickupRepo{}
	}
	if st == nil {
		st = &stubSettingsRepo{settings: &domain.Settings{ID: "s-1", ReminderFrequency: domain.ReminderWeekly}}
	}
	return New(c, p, st, changefeed.NewBroker(nil), nil)
}

func TestStore_Load(t *testing.T) {
	customers := []domain.Customer{{ID: "c-1", Name: "John"}}
	daily := []domain.DailyPickup{{CustomerID: "c-1", Name: "John"}}
	store := newTestStore(
		&stubCustomerRepo{listResult: customers},
		&stubPickupRepo{daily: daily},
		nil,
	)

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := store.Customers(); len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("unexpected customers %+v", got)
	}
	if got := store.DailyPickups(); len(got) != 1 {
		t.Fatalf("unexpected daily pickups %+v", got)
	}
	if store.Settings() == nil {
		t.Fatal("expected settings after load")
	}
}

func TestStore_LoadPartialFailure(t *testing.T) {
	boom := errors.New("boom")
	store := newTestStore(
		&stubCustomerRepo{listResult: []domain.Customer{{ID: "c-1"}}},
		&stubPickupRepo{dailyErr: boom},
		nil,
	)

	err := store.Load(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	// The snapshots that did load are kept.
	if got := store.Customers(); len(got) != 1 {
		t.Fatalf("expected partial customer state, got %+v", got)
	}
}

func TestStore_AddCustomerDefaultsPending(t *testing.T) {
	repo := &stubCustomerRepo{}
	store := newTestStore(repo, nil, nil)

	created, err := store.AddCustomer(context.Background(), domain.Customer{
		Name:             "Jane",
		Email:            "jane@x.com",
		Phone:            "+60123456790",
		Address:          "Block B-2-3, Taman Melawati",
		SubscriptionType: domain.SubscriptionQuarterly,
	})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	if created.PaymentStatus != domain.PaymentPending {
		t.Fatalf("expected pending payment status, got %s", created.PaymentStatus)
	}

	list := store.Customers()
	if len(list) != 1 || list[0].Name != "Jane" {
		t.Fatalf("expected Jane in cache, got %+v", list)
	}

	plan, err := domain.PlanFor(list[0].SubscriptionType)
	if err != nil {
		t.Fatalf("plan lookup: %v", err)
	}
	if plan.Name != "Quarterly" || plan.Price != 80 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestStore_AddCustomerValidation(t *testing.T) {
	repo := &stubCustomerRepo{}
	store := newTestStore(repo, nil, nil)

	cases := []struct {
		name string
		c    domain.Customer
	}{
		{"missing name", domain.Customer{Email: "a@b.c", Phone: "+60123456789", Address: "x", SubscriptionType: domain.SubscriptionMonthly}},
		{"missing plus prefix", domain.Customer{Name: "A", Email: "a@b.c", Phone: "60123456789", Address: "x", SubscriptionType: domain.SubscriptionMonthly}},
		{"unknown subscription", domain.Customer{Name: "A", Email: "a@b.c", Phone: "+60123456789", Address: "x", SubscriptionType: "WEEKLY"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.AddCustomer(context.Background(), tc.c)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if repo.lastCreate.Name != "" {
		t.Fatal("repo must not be called on validation failure")
	}
	if len(store.Customers()) != 0 {
		t.Fatal("cache must stay empty on validation failure")
	}
}

func TestStore_AddCustomerRemoteFailureLeavesCache(t *testing.T) {
	repo := &stubCustomerRepo{createErr: errors.New("remote down")}
	store := newTestStore(repo, nil, nil)

	_, err := store.AddCustomer(context.Background(), domain.Customer{
		Name: "Jane", Email: "jane@x.com", Phone: "+60123456790",
		Address: "x", SubscriptionType: domain.SubscriptionQuarterly,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.Customers()) != 0 {
		t.Fatal("cache must be untouched after remote failure")
	}
}

func TestStore_GetCustomer(t *testing.T) {
	cached := domain.Customer{ID: "c-1", Name: "John"}
	remote := domain.Customer{ID: "c-2", Name: "Jane"}
	repo := &stubCustomerRepo{listResult: []domain.Customer{cached}, getResult: &remote}
	store := newTestStore(repo, nil, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	got, err := store.GetCustomer(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("get cached: %v", err)
	}
	if got.Name != "John" || repo.getCalls != 0 {
		t.Fatalf("cache hit must not call repo (calls=%d, got %+v)", repo.getCalls, got)
	}

	// A miss falls back to the repository and fills the cache.
	got, err = store.GetCustomer(context.Background(), "c-2")
	if err != nil {
		t.Fatalf("get uncached: %v", err)
	}
	if got.Name != "Jane" || repo.getCalls != 1 {
		t.Fatalf("expected one repo call for a miss (calls=%d, got %+v)", repo.getCalls, got)
	}
	if _, err := store.GetCustomer(context.Background(), "c-2"); err != nil || repo.getCalls != 1 {
		t.Fatalf("second lookup must be served from cache (calls=%d, err=%v)", repo.getCalls, err)
	}

	repo.getResult = nil
	if _, err := store.GetCustomer(context.Background(), "c-3"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id: %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteCustomerRemovesExactlyOne(t *testing.T) {
	repo := &stubCustomerRepo{listResult: []domain.Customer{{ID: "c-1"}, {ID: "c-2"}, {ID: "c-3"}}}
	store := newTestStore(repo, nil, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := store.DeleteCustomer(context.Background(), "c-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.lastDelete != "c-2" {
		t.Fatalf("expected repo delete for c-2, got %q", repo.lastDelete)
	}

	list := store.Customers()
	if len(list) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(list))
	}
	for _, c := range list {
		if c.ID == "c-2" {
			t.Fatal("c-2 still present after delete")
		}
	}
}

func TestStore_MarkPickupComplete(t *testing.T) {
	pickups := &stubPickupRepo{daily: []domain.DailyPickup{
		{CustomerID: "c-1", Name: "John"},
		{CustomerID: "c-2", Name: "Jane"},
	}}
	store := newTestStore(nil, pickups, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	cp, err := store.MarkPickupComplete(context.Background(), "c-1", "ring twice")
	if err != nil {
		t.Fatalf("mark complete: %v", err)
	}
	if cp.CustomerID != "c-1" || cp.Notes != "ring twice" {
		t.Fatalf("unexpected completed pickup %+v", cp)
	}

	if got := store.CompletedPickups(); len(got) != 1 {
		t.Fatalf("expected exactly one completed record, got %d", len(got))
	}
	for _, p := range store.DailyPickups() {
		if p.CustomerID == "c-1" && !p.IsCompleted {
			t.Fatal("daily pickup for c-1 not flipped to completed")
		}
		if p.CustomerID == "c-2" && p.IsCompleted {
			t.Fatal("daily pickup for c-2 must stay pending")
		}
	}
}

func TestStore_UpdateSettingsRejectsUnknownFrequency(t *testing.T) {
	store := newTestStore(nil, nil, nil)
	bad := domain.ReminderFrequency("hourly")
	_, err := store.UpdateSettings(context.Background(), domain.SettingsUpdate{ReminderFrequency: &bad})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStore_ApplyCustomerEvents(t *testing.T) {
	store := newTestStore(nil, nil, nil)

	insert, _ := json.Marshal(domain.Customer{ID: "c-1", Name: "John", PaymentStatus: domain.PaymentPending})
	store.applyCustomerEvent(changefeed.Event{Table: "customers", Type: changefeed.EventInsert, New: insert})

	update, _ := json.Marshal(domain.Customer{ID: "c-1", Name: "John", PaymentStatus: domain.PaymentPaid})
	store.applyCustomerEvent(changefeed.Event{Table: "customers", Type: changefeed.EventUpdate, New: update})

	list := store.Customers()
	if len(list) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(list))
	}
	// Last writer wins.
	if list[0].PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected paid after update event, got %s", list[0].PaymentStatus)
	}

	old, _ := json.Marshal(domain.Customer{ID: "c-1"})
	store.applyCustomerEvent(changefeed.Event{Table: "customers", Type: changefeed.EventDelete, Old: old})
	if len(store.Customers()) != 0 {
		t.Fatal("expected empty cache after delete event")
	}
}

func TestStore_ApplyPickupEventFlipsDaily(t *testing.T) {
	pickups := &stubPickupRepo{daily: []domain.DailyPickup{{CustomerID: "c-1", Name: "John"}}}
	store := newTestStore(nil, pickups, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	payload := []byte(`{
		"id": "cp-1",
		"customer_id": "c-1",
		"pickup_date": "2024-03-18",
		"completed_at": "2024-03-18T20:15:00+00:00",
		"notes": null,
		"created_at": "2024-03-18T20:15:00+00:00",
		"updated_at": "2024-03-18T20:15:00+00:00"
	}`)
	store.applyPickupEvent(changefeed.Event{Table: "completed_pickups", Type: changefeed.EventInsert, New: payload})

	if got := store.CompletedPickups(); len(got) != 1 || got[0].ID != "cp-1" {
		t.Fatalf("unexpected completed pickups %+v", got)
	}
	if !store.DailyPickups()[0].IsCompleted {
		t.Fatal("daily pickup not flipped by feed event")
	}
}

func TestStore_PickupFeedEchoNotDuplicated(t *testing.T) {
	pickups := &stubPickupRepo{daily: []domain.DailyPickup{{CustomerID: "c-1", Name: "John"}}}
	store := newTestStore(nil, pickups, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	cp, err := store.MarkPickupComplete(context.Background(), "c-1", "")
	if err != nil {
		t.Fatalf("mark complete: %v", err)
	}

	// The insert trigger echoes the same row back through the feed.
	echo := []byte(`{
		"id": "` + cp.ID + `",
		"customer_id": "c-1",
		"pickup_date": "2024-03-18",
		"completed_at": "2024-03-18T20:15:00+00:00",
		"notes": null,
		"created_at": "2024-03-18T20:15:00+00:00",
		"updated_at": "2024-03-18T20:15:00+00:00"
	}`)
	store.applyPickupEvent(changefeed.Event{Table: "completed_pickups", Type: changefeed.EventInsert, New: echo})
	if got := store.CompletedPickups(); len(got) != 1 {
		t.Fatalf("expected 1 completed record after feed echo, got %d: %+v", len(got), got)
	}

	// Delivery is at least once; a repeat of the same event is no different.
	store.applyPickupEvent(changefeed.Event{Table: "completed_pickups", Type: changefeed.EventInsert, New: echo})
	if got := store.CompletedPickups(); len(got) != 1 {
		t.Fatalf("expected 1 completed record after duplicate delivery, got %d", len(got))
	}
}

func TestStore_RunStopsWithContext(t *testing.T) {
	broker := changefeed.NewBroker(nil)
	store := New(&stubCustomerRepo{}, &stubPickupRepo{}, &stubSettingsRepo{}, broker, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	// Republish until applied; the subscription may not be up yet.
	insert, _ := json.Marshal(domain.Customer{ID: "c-1", Name: "John"})
	deadline := time.After(2 * time.Second)
	for len(store.Customers()) == 0 {
		broker.Publish(changefeed.Event{Table: "customers", Type: changefeed.EventInsert, New: insert})
		select {
		case <-deadline:
			t.Fatal("event never applied")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop with context")
	}

	// Events after teardown must not mutate the cache.
	late, _ := json.Marshal(domain.Customer{ID: "c-2", Name: "Late"})
	broker.Publish(changefeed.Event{Table: "customers", Type: changefeed.EventInsert, New: late})
	time.Sleep(20 * time.Millisecond)
	if len(store.Customers()) != 1 {
		t.Fatal("cache mutated after subscription teardown")
	}
}

func TestStore_Metrics(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c-1", SubscriptionType: domain.SubscriptionMonthly, PaymentStatus: domain.PaymentPaid},
		{ID: "c-2", SubscriptionType: domain.SubscriptionQuarterly, PaymentStatus: domain.PaymentPending},
		{ID: "c-3", SubscriptionType: domain.SubscriptionYearly, PaymentStatus: domain.PaymentPaid},
		{ID: "c-4", SubscriptionType: domain.SubscriptionMonthly, PaymentStatus: domain.PaymentOverdue},
	}
	daily := []domain.DailyPickup{
		{CustomerID: "c-1", IsCompleted: true},
		{CustomerID: "c-2"},
	}
	store := newTestStore(&stubCustomerRepo{listResult: customers}, &stubPickupRepo{daily: daily}, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	m := store.Metrics()
	if m.TotalCustomers != 4 {
		t.Fatalf("total customers = %d", m.TotalCustomers)
	}
	if m.TodaysPickups != 2 || m.CompletedToday != 1 {
		t.Fatalf("pickups = %d completed = %d", m.TodaysPickups, m.CompletedToday)
	}
	if m.MonthlyRevenue != 30+250 {
		t.Fatalf("monthly revenue = %d", m.MonthlyRevenue)
	}
	if m.PendingPayments != 2 {
		t.Fatalf("pending payments = %d", m.PendingPayments)
	}
}
