package pickup

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListDaily(ctx context.Context) ([]domain.DailyPickup, error) {
	const q = `
SELECT customer_id::text, name, phone, address, subscription_type, is_completed
FROM daily_pickups
ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("pickup repo: list daily error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var pickups []domain.DailyPickup
	for rows.Next() {
		var p domain.DailyPickup
		if err := rows.Scan(&p.CustomerID, &p.Name, &p.Phone, &p.Address, &p.SubscriptionType, &p.IsCompleted); err != nil {
			r.logger.Printf("pickup repo: list daily scan error=%v", err)
			return nil, err
		}
		pickups = append(pickups, p)
	}
	return pickups, rows.Err()
}

func (r *postgresRepo) ListCompleted(ctx context.Context) ([]domain.CompletedPickup, error) {
	const q = `
SELECT id::text, customer_id::text, pickup_date, completed_at, COALESCE(notes, ''), created_at, updated_at
FROM completed_pickups
ORDER BY completed_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("pickup repo: list completed error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var completed []domain.CompletedPickup
	for rows.Next() {
		var cp domain.CompletedPickup
		if err := scanCompleted(rows, &cp); err != nil {
			r.logger.Printf("pickup repo: list completed scan error=%v", err)
			return nil, err
		}
		completed = append(completed, cp)
	}
	return completed, rows.Err()
}

func (r *postgresRepo) MarkCompleted(ctx context.Context, customerID, notes string) (*domain.CompletedPickup, error) {
	var notesArg *string
	if notes != "" {
		notesArg = &notes
	}

	const q = `
SELECT id::text, customer_id::text, pickup_date, completed_at, COALESCE(notes, ''), created_at, updated_at
FROM mark_pickup_completed($1, $2)`

	var cp domain.CompletedPickup
	if err := scanCompleted(r.pool.QueryRow(ctx, q, customerID, notesArg), &cp); err != nil {
		var pgErr *pgconn.PgError
		// 23503: the customer id does not exist.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("pickup repo: mark completed customer=%s error=%v", customerID, err)
		return nil, err
	}
	return &cp, nil
}

func scanCompleted(row pgx.Row, cp *domain.CompletedPickup) error {
	return row.Scan(
		&cp.ID,
		&cp.CustomerID,
		&cp.PickupDate,
		&cp.CompletedAt,
		&cp.Notes,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
}
