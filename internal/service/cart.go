package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// CartItem is one pending dish in a table's cart.
type CartItem struct {
	DishID   uint64 `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

// CartService keeps the dishes a table picked before it sends them to the
// kitchen. Cart writes never reach the database; Checkout turns the cart
// into an order.
type CartService struct {
	base
	carts  repository.CartStore
	orders *OrderService
}

func NewCartService(d Deps, carts repository.CartStore) *CartService {
	return &CartService{base: newBase(d), carts: carts, orders: NewOrderService(d)}
}

// authorize checks that the table exists and, for a TABLE account, that the
// table is linked to it.
func (s *CartService) authorize(ctx context.Context, actor model.Actor, tableID uint64) error {
	return s.store.WithinTx(ctx, func(q repository.Querier) error {
		t, err := q.GetTable(ctx, tableID)
		if err != nil {
			return err
		}
		return ownsTable(actor, t)
	})
}

func ownsTable(actor model.Actor, t model.Table) error {
	if actor.Role != model.RoleTable {
		return nil
	}
	if t.UserID == nil || *t.UserID != actor.UserID {
		return fmt.Errorf("%w: table %d is not linked to this account", ErrForbidden, t.ID)
	}
	return nil
}

// SetItem stores qty for dishID. qty <= 0 removes the dish.
func (s *CartService) SetItem(ctx context.Context, actor model.Actor, tableID, dishID uint64, qty int) ([]CartItem, error) {
	if err := s.authorize(ctx, actor, tableID); err != nil {
		return nil, err
	}
	if qty > 0 {
		err := s.store.WithinTx(ctx, func(q repository.Querier) error {
			d, err := q.GetDish(ctx, dishID)
			if err != nil {
				return fmt.Errorf("dish %d: %w", dishID, err)
			}
			if !d.Available {
				return fmt.Errorf("%w: %s", ErrDishUnavailable, d.Name)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if err := s.carts.SetItem(ctx, tableID, dishID, qty); err != nil {
		return nil, fmt.Errorf("cart set item: %w", err)
	}
	return s.items(ctx, tableID)
}

func (s *CartService) Get(ctx context.Context, actor model.Actor, tableID uint64) ([]CartItem, error) {
	if err := s.authorize(ctx, actor, tableID); err != nil {
		return nil, err
	}
	return s.items(ctx, tableID)
}

func (s *CartService) Clear(ctx context.Context, actor model.Actor, tableID uint64) error {
	if err := s.authorize(ctx, actor, tableID); err != nil {
		return err
	}
	return s.carts.Clear(ctx, tableID)
}

// items returns the positive entries sorted by dish id.
func (s *CartService) items(ctx context.Context, tableID uint64) ([]CartItem, error) {
	raw, err := s.carts.Items(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("cart items: %w", err)
	}
	out := make([]CartItem, 0, len(raw))
	for dishID, qty := range raw {
		if qty <= 0 {
			continue
		}
		out = append(out, CartItem{DishID: dishID, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DishID < out[j].DishID })
	return out, nil
}

// Checkout creates a pending order without a waiter from the cart. The cart
// is cleared only once the order has committed; a failed checkout leaves it
// untouched.
func (s *CartService) Checkout(ctx context.Context, actor model.Actor, tableID uint64) (model.Order, error) {
	if err := s.authorize(ctx, actor, tableID); err != nil {
		return model.Order{}, err
	}
	items, err := s.items(ctx, tableID)
	if err != nil {
		return model.Order{}, err
	}
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	in := CreateOrderInput{TableID: tableID}
	for _, it := range items {
		in.Lines = append(in.Lines, LineInput{DishID: it.DishID, Quantity: it.Quantity})
	}

	var o model.Order
	err = s.store.WithinTx(ctx, func(q repository.Querier) error {
		var err error
		o, err = s.orders.createTx(ctx, q, in)
		return err
	})
	if err != nil {
		return model.Order{}, err
	}
	if err := s.carts.Clear(ctx, tableID); err != nil {
		s.log.Error("cart_clear_failed", err, map[string]any{"table_id": tableID, "order_id": o.ID})
	}
	s.log.Info("cart_checked_out", map[string]any{"table_id": tableID, "order_id": o.ID, "total": o.Total.String(), "actor_id": actor.UserID})
	s.emit(ctx, s.orders.createdEvent(o))
	return o, nil
}
