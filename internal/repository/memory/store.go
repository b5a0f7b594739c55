// Package memory implements the repository contracts on process memory. It
// backs the service and handler tests and local runs without MySQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

type state struct {
	seq map[string]uint64

	tables            map[uint64]model.Table
	categories        map[uint64]model.Category
	dishes            map[uint64]model.Dish
	orders            map[uint64]model.Order
	lines             map[uint64]model.OrderLine
	statusLog         []model.OrderStatusLog
	payments          map[uint64]model.Payment
	expenseCategories map[uint64]model.ExpenseCategory
	expenses          map[uint64]model.Expense
	register          *model.CashRegister
	movements         []model.CashMovement
	users             map[uint64]model.User
}

func newState() *state {
	return &state{
		seq:               map[string]uint64{},
		tables:            map[uint64]model.Table{},
		categories:        map[uint64]model.Category{},
		dishes:            map[uint64]model.Dish{},
		orders:            map[uint64]model.Order{},
		lines:             map[uint64]model.OrderLine{},
		payments:          map[uint64]model.Payment{},
		expenseCategories: map[uint64]model.ExpenseCategory{},
		expenses:          map[uint64]model.Expense{},
		users:             map[uint64]model.User{},
	}
}

func cloneMap[V any](m map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copies every table. Rows are values and are never mutated through
// shared pointers, so copying the maps is enough.
func (s *state) clone() *state {
	c := &state{
		seq:               make(map[string]uint64, len(s.seq)),
		tables:            cloneMap(s.tables),
		categories:        cloneMap(s.categories),
		dishes:            cloneMap(s.dishes),
		orders:            cloneMap(s.orders),
		lines:             cloneMap(s.lines),
		statusLog:         append([]model.OrderStatusLog(nil), s.statusLog...),
		payments:          cloneMap(s.payments),
		expenseCategories: cloneMap(s.expenseCategories),
		expenses:          cloneMap(s.expenses),
		movements:         append([]model.CashMovement(nil), s.movements...),
		users:             cloneMap(s.users),
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	if s.register != nil {
		r := *s.register
		c.register = &r
	}
	return c
}

func (s *state) next(kind string) uint64 {
	s.seq[kind]++
	return s.seq[kind]
}

// Store serializes units of work with one mutex. A failed unit leaves no
// trace: fn runs against a copy that replaces the live state only on
// success.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

type Option func(*Store)

// WithClock sets the source of created_at style timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(&Queries{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Queries is the view of one unit of work.
type Queries struct {
	st  *state
	now func() time.Time
}

var _ repository.Querier = (*Queries)(nil)

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
