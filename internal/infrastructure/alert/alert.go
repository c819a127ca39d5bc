package alert

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/infrastructure/metrics"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// LogAlerter writes alerts to the structured log.
type LogAlerter struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func NewLogAlerter(logger zerolog.Logger, m *metrics.Metrics) *LogAlerter {
	return &LogAlerter{logger: logger, metrics: m}
}

func (a *LogAlerter) Alert(_ context.Context, severity string, message string, fields map[string]string) {
	var ev *zerolog.Event
	switch severity {
	case SeverityCritical:
		ev = a.logger.Error()
	case SeverityWarning:
		ev = a.logger.Warn()
	default:
		ev = a.logger.Info()
	}
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Str("alert_severity", severity).Msg(message)

	if a.metrics != nil {
		a.metrics.AlertsSent.WithLabelValues(severity).Inc()
	}
}

// RedisAlerter publishes alerts to a redis channel for external consumers,
// and falls back to the log when publishing fails.
type RedisAlerter struct {
	client   *redis.Client
	channel  string
	fallback *LogAlerter
	metrics  *metrics.Metrics
}

func NewRedisAlerter(client *redis.Client, channel string, fallback *LogAlerter, m *metrics.Metrics) *RedisAlerter {
	return &RedisAlerter{client: client, channel: channel, fallback: fallback, metrics: m}
}

type alertPayload struct {
	Severity  string            `json:"severity"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (a *RedisAlerter) Alert(ctx context.Context, severity string, message string, fields map[string]string) {
	payload, err := json.Marshal(alertPayload{
		Severity:  severity,
		Message:   message,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	})
	if err == nil {
		err = a.client.Publish(ctx, a.channel, payload).Err()
	}
	if err != nil {
		if a.fallback != nil {
			a.fallback.logger.Warn().Err(err).Msg("alert publish failed, falling back to log")
			a.fallback.Alert(ctx, severity, message, fields)
		}

		return
	}

	if a.metrics != nil {
		a.metrics.AlertsSent.WithLabelValues(severity).Inc()
	}
}
