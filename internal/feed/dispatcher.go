package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/infrastructure/metrics"
)

// Handler reduces one change event into local state. It runs on the
// dispatcher goroutine and must not block.
type Handler func(domain.ChangeEvent)

// Dispatcher is the single consumer of the change feed. Events arrive on a
// channel, are classified against the table's echo suppressor, and are
// handed to the table's reducer. Handling never happens re-entrantly inside
// a write: writers only ever talk to the suppressor, the dispatcher owns
// the reducers.
type Dispatcher struct {
	events      <-chan domain.ChangeEvent
	handlers    map[string]Handler
	suppressors map[string]*Suppressor
	window      time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewDispatcher creates a Dispatcher reading from events. metrics may be nil.
func NewDispatcher(events <-chan domain.ChangeEvent, window time.Duration, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Dispatcher{
		events:      events,
		handlers:    make(map[string]Handler),
		suppressors: make(map[string]*Suppressor),
		window:      window,
		logger:      logger,
		metrics:     m,
	}
}

// Register installs the reducer for a table and returns the table's
// suppressor, which writers use to track their own operations. Must be
// called before Run.
func (d *Dispatcher) Register(table string, h Handler) *Suppressor {
	s := NewSuppressor(d.window)
	d.handlers[table] = h
	d.suppressors[table] = s

	return s
}

// Tracker returns the suppressor registered for a table, or nil.
func (d *Dispatcher) Tracker(table string) *Suppressor {
	return d.suppressors[table]
}

// Run consumes events until ctx is cancelled. Expired suppressor entries are
// swept once per window.
func (d *Dispatcher) Run(ctx context.Context) error {
	sweep := time.NewTicker(d.window)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("feed dispatcher shutting down")
			return ctx.Err()

		case <-sweep.C:
			for _, s := range d.suppressors {
				s.Sweep()
			}

		case ev, ok := <-d.events:
			if !ok {
				d.logger.Info().Msg("feed channel closed")
				return nil
			}

			d.dispatch(ev)
		}
	}
}

func (d *Dispatcher) dispatch(ev domain.ChangeEvent) {
	if d.metrics != nil {
		d.metrics.FeedEvents.WithLabelValues(ev.Table, string(ev.Type)).Inc()
	}

	h, ok := d.handlers[ev.Table]
	if !ok {
		d.logger.Debug().Str("table", ev.Table).Msg("no reducer for table")
		return
	}

	if ev.EntityID == "" {
		d.logger.Error().Str("table", ev.Table).Str("type", string(ev.Type)).Msg("feed event without entity id")
		return
	}

	if d.suppressors[ev.Table].ShouldSuppress(ev.EntityID, ev.Type) {
		if d.metrics != nil {
			d.metrics.EchoesSuppressed.WithLabelValues(ev.Table).Inc()
		}

		d.logger.Debug().
			Str("table", ev.Table).
			Str("entity_id", ev.EntityID).
			Str("type", string(ev.Type)).
			Msg("own write echoed back")
	}

	// The reducer runs for echoes too: reducers replace rows wholesale, so
	// re-applying our own write is harmless and keeps the mirror carrying
	// the row this process just committed. Suppression only stops an echo
	// from counting as a foreign change.
	h(ev)
}
