package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
)

// Subscriber consumes the change feed channels and decodes events onto a
// single ordered stream. A dropped connection is re-subscribed with
// exponential backoff; events published while disconnected are lost, which
// a reconciliation run repairs.
type Subscriber struct {
	client  *redis.Client
	prefix  string
	tables  []string
	events  chan domain.ChangeEvent
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewSubscriber creates a Subscriber for the given tables.
func NewSubscriber(client *redis.Client, prefix string, tables []string, logger zerolog.Logger, m *metrics.Metrics) *Subscriber {
	return &Subscriber{
		client:  client,
		prefix:  prefix,
		tables:  tables,
		events:  make(chan domain.ChangeEvent, 256),
		logger:  logger,
		metrics: m,
	}
}

// Events returns the decoded event stream.
func (s *Subscriber) Events() <-chan domain.ChangeEvent {
	return s.events
}

// Run subscribes and pumps events until the context is cancelled. The
// events channel is closed on return.
func (s *Subscriber) Run(ctx context.Context) {
	defer close(s.events)

	channels := make([]string, len(s.tables))
	for i, t := range s.tables {
		channels[i] = s.prefix + t
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // keep retrying until shutdown

	for {
		err := s.consume(ctx, channels)
		if ctx.Err() != nil {
			return
		}

		wait := bo.NextBackOff()
		s.logger.Warn().Err(err).Dur("retry_in", wait).Msg("change feed subscription lost, reconnecting")

		if s.metrics != nil {
			s.metrics.FeedReconnects.Inc()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (s *Subscriber) consume(ctx context.Context, channels []string) error {
	sub := s.client.Subscribe(ctx, channels...)
	defer sub.Close()

	// Force the subscription handshake so failures surface immediately.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	s.logger.Info().Strs("channels", channels).Msg("change feed subscribed")

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("subscription channel closed")
			}

			var ev domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Error().Err(err).Str("channel", msg.Channel).Msg("malformed change event dropped")
				continue
			}

			select {
			case s.events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
