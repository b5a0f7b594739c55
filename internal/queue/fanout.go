package queue

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-pos/internal/config"
)

// Fanout publishes every event to all sinks.  A failing sink does not stop
// the others; the errors are joined.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop drops events.  Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// FromConfig builds the publisher for the enabled sinks: Nop when none is
// enabled, the single sink when one is, a Fanout otherwise.
func FromConfig(cfg config.EventsConfig) (Publisher, error) {
	var sinks Fanout
	if cfg.RabbitMQ.Enabled {
		sinks = append(sinks, NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange))
	}
	if cfg.Kafka.Enabled {
		kp, err := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, kp)
	}
	switch len(sinks) {
	case 0:
		return Nop{}, nil
	case 1:
		return sinks[0], nil
	}
	return sinks, nil
}
