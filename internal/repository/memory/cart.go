package memory

import (
	"context"
	"sync"

	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// CartStore keeps carts in a map. Carts never expire.
type CartStore struct {
	mu    sync.Mutex
	carts map[uint64]map[uint64]int
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[uint64]map[uint64]int{}}
}

func (s *CartStore) SetItem(_ context.Context, tableID, dishID uint64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[tableID]
	if qty <= 0 {
		delete(cart, dishID)
		return nil
	}
	if cart == nil {
		cart = map[uint64]int{}
		s.carts[tableID] = cart
	}
	cart[dishID] = qty
	return nil
}

func (s *CartStore) Items(_ context.Context, tableID uint64) (map[uint64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint64]int, len(s.carts[tableID]))
	for k, v := range s.carts[tableID] {
		out[k] = v
	}
	return out, nil
}

func (s *CartStore) Clear(_ context.Context, tableID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, tableID)
	return nil
}

var _ repository.CartStore = (*CartStore)(nil)
