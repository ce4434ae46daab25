package port

import (
	"context"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

type OrderRepository interface {
	// SaveOrder persists a confirmed order together with its lines
	SaveOrder(ctx context.Context, order domain.Order) error

	// GetOrder loads an archived order by ID
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}
