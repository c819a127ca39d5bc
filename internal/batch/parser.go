// Package batch turns raw multi-line settlement text into validated
// (amount, identity) line items.
package batch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

// ParsedLine is one validated line of a settlement batch. It only exists
// between parsing and normalization and is never persisted.
type ParsedLine struct {
	Amount   decimal.Decimal
	Identity string
}

func (l ParsedLine) key() string {
	return l.Amount.String() + "\x00" + l.Identity
}

// Parser parses settlement batch text. The zero value is usable; NewParser
// attaches a logger for reporting dropped duplicates.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a Parser that logs dropped duplicate lines.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse splits text into lines and validates each one. Lines producing an
// (amount, identity) pair already seen earlier in the same text are dropped,
// which protects against accidental copy-paste repeats within one submission.
// Any failing line fails the whole call with every line error aggregated;
// nothing is applied. The result preserves first-occurrence order.
func (p *Parser) Parse(text string) ([]ParsedLine, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoValidLines
	}

	var (
		parsed   []ParsedLine
		lineErrs []domain.LineError
	)

	seen := make(map[string]bool)

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		pl, err := parseLine(line)
		if err != nil {
			lineErrs = append(lineErrs, domain.LineError{Line: lineNo, Message: err.Error()})
			continue
		}

		if seen[pl.key()] {
			p.logger.Warn().
				Int("line", lineNo).
				Str("identity", pl.Identity).
				Str("amount", pl.Amount.String()).
				Msg("duplicate line dropped")

			continue
		}

		seen[pl.key()] = true
		parsed = append(parsed, pl)
	}

	if len(lineErrs) > 0 {
		return nil, &domain.ParseError{Lines: lineErrs}
	}

	if len(parsed) == 0 {
		return nil, domain.ErrNoValidLines
	}

	return parsed, nil
}

// parseLine splits a line of form "<amount> <identity>". The identity is
// everything after the first token, rejoined with single spaces.
func parseLine(line string) (ParsedLine, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ParsedLine{}, fmt.Errorf("invalid line %q: missing amount or identity", line)
	}

	amount, err := cleanAmount(fields[0])
	if err != nil {
		return ParsedLine{}, err
	}

	identity, err := cleanIdentity(strings.Join(fields[1:], " "))
	if err != nil {
		return ParsedLine{}, err
	}

	return ParsedLine{Amount: amount, Identity: identity}, nil
}

// unicodeMinus is the typographic minus some sources paste in place of '-'.
const unicodeMinus = "−"

func cleanAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}

	// Thousands separators are stripped, a leading typographic minus is
	// normalized, and stray non-numeric characters are dropped before the
	// string is validated.
	cleaned := strings.ReplaceAll(s, ",", "")
	cleaned = strings.ReplaceAll(cleaned, unicodeMinus, "-")
	cleaned = stripNonNumeric(cleaned)

	if strings.Count(cleaned, ".") > 1 {
		return decimal.Zero, fmt.Errorf("invalid amount %q: multiple decimal points", raw)
	}

	if strings.Count(cleaned, "-") > 1 {
		return decimal.Zero, fmt.Errorf("invalid amount %q: multiple minus signs", raw)
	}

	if i := strings.Index(cleaned, "-"); i > 0 {
		return decimal.Zero, fmt.Errorf("invalid amount %q: minus sign must be at the start", raw)
	}

	if strings.Trim(cleaned, "-.") == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q: not a valid number", raw)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: not a valid number", raw)
	}

	if amount.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid amount %q: amount cannot be zero", raw)
	}

	if amount.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: amount too large", raw)
	}

	if amount.LessThan(domain.MinAmount) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: amount too small", raw)
	}

	if fractionDigits(cleaned) > domain.MaxDecimalPlaces {
		return decimal.Zero, fmt.Errorf("invalid amount %q: maximum %d decimal places allowed", raw, domain.MaxDecimalPlaces)
	}

	return amount, nil
}

func cleanIdentity(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("identity cannot be empty")
	}

	if utf8.RuneCountInString(s) > domain.MaxIdentityLength {
		return "", fmt.Errorf("identity too long (max %d characters)", domain.MaxIdentityLength)
	}

	return s, nil
}

func stripNonNumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

func fractionDigits(s string) int {
	_, frac, ok := strings.Cut(s, ".")
	if !ok {
		return 0
	}

	return len(frac)
}
