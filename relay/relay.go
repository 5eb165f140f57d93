package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/destinyy00/skillswap/contract"
	"github.com/destinyy00/skillswap/domain/event"
	apperrors "github.com/destinyy00/skillswap/errors"
)

// Relay fans an event envelope out to the routing group of its target
// subject.
//
// Delivery is fire-and-forget with no guarantees regarding durability,
// retries or acknowledgment: an offline target produces zero deliveries and
// a broken member connection is skipped without affecting the others.
// Ordering holds per origin: Forward enqueues into each member's send queue
// synchronously in call order, so two events submitted by the same origin
// arrive at every member in submission order.
//
// Relay is safe for concurrent use by multiple goroutines.
type Relay struct {
	log      *slog.Logger
	registry contract.IRegistry
	metrics  Metrics
}

// Metrics receives per-delivery counters. A drop is a failed enqueue on an
// open member connection; offline targets and malformed kinds are not
// counted. Implemented by the monitoring manager; nil disables
// instrumentation entirely.
type Metrics interface {
	IncrDelivered()
	IncrDropped()
	IncrSlowConsumerKick()
}

func NewRelay(log *slog.Logger, registry contract.IRegistry) *Relay {
	return &Relay{log: log, registry: registry}
}

// Instrument attaches delivery counters. Called once at startup, before any
// connection is accepted.
func (r *Relay) Instrument(metrics Metrics) {
	r.metrics = metrics
}

// Forward delivers e to every connection of the target subject's routing
// group. Unknown kinds and per-member failures are absorbed here; the caller
// only ever learns "accepted for relay".
func (r *Relay) Forward(ctx context.Context, e event.Envelope) {
	if _, ok := e.Kind.Received(); !ok {
		r.log.Warn("Dropping envelope with unknown kind", "kind", e.Kind)
		return
	}

	sinks := r.registry.MembersOf(e.Target)
	if len(sinks) == 0 {
		// Normal case for an offline recipient: no durability, no error.
		r.log.Debug("No open connection for target", "target", e.Target, "kind", e.Kind)
		return
	}

	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug("Delivery to member connection failed",
				"target", e.Target,
				"kind", e.Kind,
				"error", err)
			if r.metrics != nil {
				r.metrics.IncrDropped()
				if errors.Is(err, apperrors.ErrSlowConsumer) {
					r.metrics.IncrSlowConsumerKick()
				}
			}
			continue
		}
		if r.metrics != nil {
			r.metrics.IncrDelivered()
		}
	}
}
