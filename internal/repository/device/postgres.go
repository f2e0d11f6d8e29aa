package device

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

const deviceColumns = `id::text, device_id, device_name, verified, last_login, created_at, updated_at`

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

func (r *postgresRepo) Create(ctx context.Context, d domain.Device) (*domain.Device, error) {
	const q = `
INSERT INTO devices (device_id, device_name, verified, last_login)
VALUES ($1, $2, $3, now())
RETURNING ` + deviceColumns

	return r.scanDevice(r.pool.QueryRow(ctx, q, d.DeviceID, d.DeviceName, d.Verified))
}

func (r *postgresRepo) TouchLastLogin(ctx context.Context, deviceID string) (*domain.Device, error) {
	const q = `
UPDATE devices SET last_login = now()
WHERE device_id = $1 AND verified
RETURNING ` + deviceColumns

	return r.scanDevice(r.pool.QueryRow(ctx, q, deviceID))
}

func (r *postgresRepo) scanDevice(row pgx.Row) (*domain.Device, error) {
	var d domain.Device
	err := row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.DeviceName,
		&d.Verified,
		&d.LastLogin,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("device repo: scan error=%v", err)
		return nil, err
	}
	return &d, nil
}
