package alert

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestLogAlerter_WritesSeverityAndFields(t *testing.T) {
	var buf bytes.Buffer
	a := NewLogAlerter(zerolog.New(&buf), nil)

	a.Alert(context.Background(), SeverityWarning, "balances short after restore", map[string]string{"batch_id": "bat-1"})

	out := buf.String()
	for _, want := range []string{"balances short after restore", "warning", "bat-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q: %s", want, out)
		}
	}
}

func TestRedisAlerter_FallsBackToLogOnPublishFailure(t *testing.T) {
	var buf bytes.Buffer
	fallback := NewLogAlerter(zerolog.New(&buf), nil)

	// Nothing listens here, so every publish fails immediately.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	a := NewRedisAlerter(client, "alerts", fallback, nil)
	a.Alert(context.Background(), SeverityCritical, "reconciliation failed", nil)

	out := buf.String()
	if !strings.Contains(out, "alert publish failed") {
		t.Fatalf("expected fallback warning, got: %s", out)
	}
	if got := strings.Count(out, "reconciliation failed"); got != 1 {
		t.Fatalf("alert logged %d times, want exactly once: %s", got, out)
	}
}
