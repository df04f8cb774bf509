// Package memory provides in-memory implementations of the core's ports,
// used by the package tests and as the demo host's default storage.
package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// OrderStore keeps orders in a map guarded by a mutex. Transact snapshots the
// map, runs the callback against the snapshot, and swaps it in only on
// success, so a failed split leaves no partial state behind.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*order.Order)}
}

func (s *OrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = o.Clone()
	return nil
}

func (s *OrderStore) Save(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

func (s *OrderStore) Children(ctx context.Context, parentID string) ([]*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var children []*order.Order
	for _, o := range s.orders {
		if o.ParentID == parentID {
			children = append(children, o.Clone())
		}
	}
	return children, nil
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, id)
	return nil
}

// Transact holds the store lock for the whole unit, giving the single-writer
// behavior the split relies on.
func (s *OrderStore) Transact(ctx context.Context, fn func(order.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &OrderStore{orders: make(map[string]*order.Order, len(s.orders))}
	for id, o := range s.orders {
		tx.orders[id] = o.Clone()
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.orders = tx.orders
	return nil
}

// Len reports how many orders the store holds. Test helper.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
