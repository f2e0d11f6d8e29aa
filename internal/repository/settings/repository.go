package settings

import (
	"context"

	"github.com/azrishaharin/KonMari/internal/domain"
)

// Repository reads and updates the singleton settings row.
type Repository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, id string, u domain.SettingsUpdate) (*domain.Settings, error)
}
