package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Publisher resolves an event's target connections from the store and fans
// the serialized event out to all of them in parallel.
//
// Delivery is best-effort, at-most-once. A dead target is pruned from the
// store; a transiently failing target is logged and kept, so the next
// organic broadcast acts as the retry. One slow or dead connection never
// blocks delivery to the rest.
type Publisher struct {
	store   ConnectionStore
	gateway Gateway
	logger  zerolog.Logger
}

// NewPublisher creates a Publisher. The gateway is an explicit, process
// scoped dependency: construct it once at startup and inject it here.
func NewPublisher(store ConnectionStore, gateway Gateway, logger zerolog.Logger) *Publisher {
	return &Publisher{
		store:   store,
		gateway: gateway,
		logger:  logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish broadcasts one event and returns after every delivery attempt has
// settled. It returns an error only when the target set could not be
// resolved — "no one was notified this time". Individual delivery failures
// are classified and logged, never surfaced: callers must not fail or roll
// back business mutations because a broadcast went badly.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	var (
		targets []ConnectionRecord
		err     error
	)
	if scope := event.EventScope(); scope == ScopeClinic {
		targets, err = p.store.ListAll(ctx)
	} else {
		targets, err = p.store.ListByScope(ctx, scope)
	}
	if err != nil {
		return fmt.Errorf("resolve targets for %s: %w", event.EventType(), err)
	}

	if len(targets) == 0 {
		return nil
	}

	data, err := Encode(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventType(), err)
	}

	var wg sync.WaitGroup
	for _, rec := range targets {
		wg.Add(1)
		go func(rec ConnectionRecord) {
			defer wg.Done()
			p.deliver(ctx, event.EventType(), rec, data)
		}(rec)
	}
	wg.Wait()

	return nil
}

// deliver attempts one target and classifies the outcome: success, prune on
// a confirmed-dead channel, or log-and-retain on anything else.
func (p *Publisher) deliver(ctx context.Context, eventType string, rec ConnectionRecord, data []byte) {
	err := p.gateway.Deliver(ctx, rec.ConnectionID, data)
	switch {
	case err == nil:

	case errors.Is(err, ErrGone):
		p.logger.Info().
			Str("connection_id", rec.ConnectionID).
			Str("event_type", eventType).
			Msg("pruning stale connection")
		if delErr := p.store.Delete(ctx, rec.ConnectionID); delErr != nil {
			p.logger.Error().Err(delErr).
				Str("connection_id", rec.ConnectionID).
				Msg("failed to prune stale connection record")
		}

	default:
		p.logger.Error().Err(err).
			Str("connection_id", rec.ConnectionID).
			Str("event_type", eventType).
			Msg("delivery failed, keeping connection record")
	}
}
