package settings

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsColumns = `id::text, email_pickup_reminders, email_payment_reminders, sms_pickup_reminders, sms_payment_reminders, reminder_frequency, created_at, updated_at`

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

func (r *postgresRepo) Get(ctx context.Context) (*domain.Settings, error) {
	const q = `SELECT ` + settingsColumns + ` FROM settings ORDER BY created_at LIMIT 1`
	return r.scanSettings(r.pool.QueryRow(ctx, q))
}

func (r *postgresRepo) Update(ctx context.Context, id string, u domain.SettingsUpdate) (*domain.Settings, error) {
	const q = `
UPDATE settings SET
    email_pickup_reminders  = COALESCE($2, email_pickup_reminders),
    email_payment_reminders = COALESCE($3, email_payment_reminders),
    sms_pickup_reminders    = COALESCE($4, sms_pickup_reminders),
    sms_payment_reminders   = COALESCE($5, sms_payment_reminders),
    reminder_frequency      = COALESCE($6, reminder_frequency)
WHERE id = $1
RETURNING ` + settingsColumns

	return r.scanSettings(r.pool.QueryRow(
		ctx,
		q,
		id,
		u.EmailPickupReminders,
		u.EmailPaymentReminders,
		u.SMSPickupReminders,
		u.SMSPaymentReminders,
		u.ReminderFrequency,
	))
}

func (r *postgresRepo) scanSettings(row pgx.Row) (*domain.Settings, error) {
	var s domain.Settings
	err := row.Scan(
		&s.ID,
		&s.EmailPickupReminders,
		&s.EmailPaymentReminders,
		&s.SMSPickupReminders,
		&s.SMSPaymentReminders,
		&s.ReminderFrequency,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("settings repo: scan error=%v", err)
		return nil, err
	}
	return &s, nil
}
