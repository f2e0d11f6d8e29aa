package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/azrishaharin/KonMari/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type customerSeed struct {
	Name             string `yaml:"name"`
	Email            string `yaml:"email"`
	Phone            string `yaml:"phone"`
	Address          string `yaml:"address"`
	SubscriptionType string `yaml:"subscription_type"`
	PaymentStatus    string `yaml:"payment_status"`
}

type fixtures struct {
	Customers []customerSeed `yaml:"customers"`
}

// Apply seeds the database for manual testing. Customers come from the YAML
// file at fixturesPath, or from the embedded demo fixtures when the path is
// empty. It is idempotent: customers upsert on email and the settings row is
// created only when missing.
func Apply(ctx context.Context, pool *pgxpool.Pool, fixturesPath string) error {
	fx, err := loadFixtures(fixturesPath)
	if err != nil {
		return err
	}

	if err := ensureSettings(ctx, pool); err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}

	for _, c := range fx.Customers {
		if !domain.SubscriptionType(c.SubscriptionType).Valid() {
			return fmt.Errorf("fixture %s: unknown subscription type %q", c.Email, c.SubscriptionType)
		}
		if !domain.PaymentStatus(c.PaymentStatus).Valid() {
			return fmt.Errorf("fixture %s: unknown payment status %q", c.Email, c.PaymentStatus)
		}
		if err := upsertCustomer(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert customer %s: %w", c.Email, err)
		}
	}

	return nil
}

// loadFixtures reads the YAML file at path, or the embedded demo fixtures
// when path is empty.
func loadFixtures(path string) (fixtures, error) {
	data := fixturesYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fixtures{}, fmt.Errorf("read fixtures: %w", err)
		}
		data = b
	}

	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	return fx, nil
}

func ensureSettings(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO settings (email_pickup_reminders, email_payment_reminders)
SELECT true, true
WHERE NOT EXISTS (SELECT 1 FROM settings)
`
	_, err := pool.Exec(ctx, q)
	return err
}

func upsertCustomer(ctx context.Context, pool *pgxpool.Pool, c customerSeed) error {
	const q = `
INSERT INTO customers (name, email, phone, address, subscription_type, payment_status)
VALUES ($1, lower($2), $3, $4, $5, $6)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    address = EXCLUDED.address,
    subscription_type = EXCLUDED.subscription_type,
    payment_status = EXCLUDED.payment_status
`
	_, err := pool.Exec(ctx, q, c.Name, c.Email, c.Phone, c.Address, c.SubscriptionType, c.PaymentStatus)
	return err
}
