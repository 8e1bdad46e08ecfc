package session

import (
	"context"
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

var ErrNoSession = errors.New("session id is empty")

// CartStore persists the cart of one anonymous session.
// Load returns an empty cart for unknown sessions.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (model.Cart, error)
	Save(ctx context.Context, sessionID string, cart model.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
