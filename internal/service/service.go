// Package service holds the application services. Every operation runs as
// one unit of work: the primary write and its derived effects (order total,
// cash register, status log) commit together. Events are published after
// the commit and a failed publish never fails the operation.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

// UnitOfWork is implemented by repository.Store and memory.Store.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// Deps is shared by every service. Only Store is required.
type Deps struct {
	Store  UnitOfWork
	Events queue.Publisher
	Log    *logger.Logger
	Now    func() time.Time
}

type base struct {
	store  UnitOfWork
	events queue.Publisher
	log    *logger.Logger
	now    func() time.Time
}

func newBase(d Deps) base {
	b := base{store: d.Store, events: d.Events, log: d.Log, now: d.Now}
	if b.events == nil {
		b.events = queue.Nop{}
	}
	if b.log == nil {
		b.log = logger.NewWithWriter("pos", io.Discard)
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	return b
}

type pendingEvent struct {
	typ  queue.EventType
	key  string
	data any
}

func event(typ queue.EventType, id uint64, data any) pendingEvent {
	return pendingEvent{typ: typ, key: fmt.Sprintf("%d", id), data: data}
}

// emit publishes committed events. Failures are logged only.
func (b base) emit(ctx context.Context, evs ...pendingEvent) {
	for _, e := range evs {
		ev, err := queue.NewEvent(e.typ, e.key, e.data)
		if err != nil {
			b.log.Error("event_encode_failed", err, map[string]any{"type": e.typ})
			continue
		}
		if err := b.events.Publish(ctx, ev); err != nil {
			b.log.Error("event_publish_failed", err, map[string]any{"type": e.typ, "event_id": ev.ID})
		}
	}
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// checkScale rejects money with more decimals than the schema keeps.
func checkScale(field string, d decimal.Decimal) error {
	if !model.FitsMoneyScale(d) {
		return validation(fmt.Sprintf("%s %s has more than %d decimals", field, d.String(), model.MoneyScale))
	}
	return nil
}
