package port

import (
	"context"

	"github.com/rl1809/scoop-shop/internal/core/domain"
)

type CartStore interface {
	// Load returns the session's cart, or an empty cart when nothing usable is stored
	Load(ctx context.Context, sessionID string) (domain.Cart, error)

	// Save replaces the whole stored snapshot for the session
	Save(ctx context.Context, sessionID string, cart domain.Cart) error

	// Delete drops the snapshot; the next Load sees an empty cart
	Delete(ctx context.Context, sessionID string) error
}
