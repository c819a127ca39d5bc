package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

const pgErrUniqueViolation = "23505"

// ChangeNotifier publishes committed writes to the change feed. Repos call
// it after a statement succeeds; a nil notifier disables publishing.
type ChangeNotifier interface {
	Notify(ctx context.Context, table string, typ domain.EventType, entityID string, payload any)
}

func notify(ctx context.Context, n ChangeNotifier, table string, typ domain.EventType, entityID string, payload any) {
	if n != nil {
		n.Notify(ctx, table, typ, entityID, payload)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
