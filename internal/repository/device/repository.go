package device

import (
	"context"

	"github.com/azrishaharin/KonMari/internal/domain"
)

// Repository persists registered devices keyed by their opaque device_id.
type Repository interface {
	Create(ctx context.Context, d domain.Device) (*domain.Device, error)
	// TouchLastLogin stamps last_login for a verified device and returns it.
	TouchLastLogin(ctx context.Context, deviceID string) (*domain.Device, error)
}
