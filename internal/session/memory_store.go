package session

import (
	"context"
	"sync"

	"github.com/ikkim/storefront-backend/internal/app/model"
)

// MemoryCartStore is a process-local CartStore for tests and single-node dev runs.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]model.Cart)}
}

func (s *MemoryCartStore) Load(_ context.Context, sessionID string) (model.Cart, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := model.Cart{}
	for k, v := range s.carts[sessionID] {
		cart[k] = v
	}
	return cart, nil
}

func (s *MemoryCartStore) Save(_ context.Context, sessionID string, cart model.Cart) error {
	if sessionID == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cart) == 0 {
		delete(s.carts, sessionID)
		return nil
	}
	copied := make(model.Cart, len(cart))
	for k, v := range cart {
		copied[k] = v
	}
	s.carts[sessionID] = copied
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
