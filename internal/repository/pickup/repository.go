package pickup

import (
	"context"

	"github.com/azrishaharin/KonMari/internal/domain"
)

// Repository reads the pickup board and records completions.
type Repository interface {
	ListDaily(ctx context.Context) ([]domain.DailyPickup, error)
	ListCompleted(ctx context.Context) ([]domain.CompletedPickup, error)
	// MarkCompleted atomically appends one completed_pickups row for the
	// current pickup date and returns it.
	MarkCompleted(ctx context.Context, customerID, notes string) (*domain.CompletedPickup, error)
}
