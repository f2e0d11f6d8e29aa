package customer

import (
	"context"

	"github.com/azrishaharin/KonMari/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, id string, u domain.CustomerUpdate) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}
