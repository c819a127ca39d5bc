package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/domain"
)

// Publisher broadcasts committed writes onto the change feed, one redis
// channel per table. Repositories call Notify after their statement
// succeeds, so every event on the feed corresponds to a write that is
// visible in the store.
type Publisher struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewPublisher creates a new Publisher. prefix namespaces the channels,
// e.g. "feed:" yields "feed:balances".
func NewPublisher(client *redis.Client, prefix string, logger zerolog.Logger) *Publisher {
	return &Publisher{client: client, prefix: prefix, logger: logger}
}

// Notify publishes one change event. Publishing is best effort: a failure
// is logged, never propagated, because the write it describes already
// committed.
func (p *Publisher) Notify(ctx context.Context, table string, typ domain.EventType, entityID string, payload any) {
	ev := domain.ChangeEvent{
		Table:    table,
		Type:     typ,
		EntityID: entityID,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			p.logger.Error().Err(err).Str("table", table).Msg("failed to marshal change event payload")
			return
		}

		ev.New = raw
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Str("table", table).Msg("failed to marshal change event")
		return
	}

	err = p.client.Publish(ctx, p.prefix+table, body).Err()
	if err != nil {
		p.logger.Warn().Err(err).
			Str("table", table).
			Str("entity_id", entityID).
			Msg("change event publish failed")
	}
}
