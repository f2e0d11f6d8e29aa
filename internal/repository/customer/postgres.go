package customer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id::text, name, email, phone, address, subscription_type, payment_status, created_at, updated_at`

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY name, created_at`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("customer repo: list query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanInto(rows, &c); err != nil {
			r.logger.Printf("customer repo: list scan error=%v", err)
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	status := c.PaymentStatus
	if status == "" {
		status = domain.PaymentPending
	}

	const q = `
INSERT INTO customers (name, email, phone, address, subscription_type, payment_status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + customerColumns

	return r.scanCustomer(r.pool.QueryRow(
		ctx,
		q,
		c.Name,
		strings.ToLower(c.Email),
		c.Phone,
		c.Address,
		c.SubscriptionType,
		status,
	))
}

func (r *postgresRepo) Update(ctx context.Context, id string, u domain.CustomerUpdate) (*domain.Customer, error) {
	var email *string
	if u.Email != nil {
		lowered := strings.ToLower(*u.Email)
		email = &lowered
	}

	const q = `
UPDATE customers SET
    name              = COALESCE($2, name),
    email             = COALESCE($3, email),
    phone             = COALESCE($4, phone),
    address           = COALESCE($5, address),
    subscription_type = COALESCE($6, subscription_type),
    payment_status    = COALESCE($7, payment_status)
WHERE id = $1
RETURNING ` + customerColumns

	return r.scanCustomer(r.pool.QueryRow(
		ctx,
		q,
		id,
		u.Name,
		email,
		u.Phone,
		u.Address,
		u.SubscriptionType,
		u.PaymentStatus,
	))
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("customer repo: delete id=%s error=%v", id, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := scanInto(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	return &c, nil
}

func scanInto(row pgx.Row, c *domain.Customer) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.SubscriptionType,
		&c.PaymentStatus,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}
