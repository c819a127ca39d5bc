package batch

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazim/reckon/internal/domain"
)

func newTestParser() *Parser {
	return NewParser(zerolog.Nop())
}

func TestParse_OrderPreservingAndDeduplicating(t *testing.T) {
	lines, err := newTestParser().Parse("5 a\n5 a\n-3 b")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "a", lines[0].Identity)
	assert.True(t, lines[1].Amount.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, "b", lines[1].Identity)
}

func TestParse_ValidLines(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantAmount   string
		wantIdentity string
	}{
		{"plain integer", "10 alice", "10", "alice"},
		{"negative", "-4 bob", "-4", "bob"},
		{"two decimal places", "12.50 carol", "12.5", "carol"},
		{"thousands separators stripped", "1,234 dave", "1234", "dave"},
		{"unicode minus normalized", "−7 eve", "-7", "eve"},
		{"identity with internal spaces", "3 mary jane", "3", "mary jane"},
		{"extra whitespace collapsed", "  3   mary   jane  ", "3", "mary jane"},
		{"currency noise stripped", "$25 frank", "25", "frank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := newTestParser().Parse(tt.text)
			require.NoError(t, err)
			require.Len(t, lines, 1)

			assert.Equal(t, tt.wantAmount, lines[0].Amount.String())
			assert.Equal(t, tt.wantIdentity, lines[0].Identity)
		})
	}
}

func TestParse_RejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMsg string
	}{
		{"non-numeric amount", "abc 1 x", "not a valid number"},
		{"multiple decimal points", "1.2.3 alice", "multiple decimal points"},
		{"multiple minus signs", "--5 alice", "multiple minus signs"},
		{"minus not leading", "5-3 alice", "minus sign must be at the start"},
		{"zero amount", "0 alice", "amount cannot be zero"},
		{"zero with decimals", "0.00 alice", "amount cannot be zero"},
		{"too large", "1000000001 alice", "amount too large"},
		{"too small", "-1000000001 alice", "amount too small"},
		{"three decimal places", "1.234 alice", "maximum 2 decimal places"},
		{"missing identity", "5", "missing amount or identity"},
		{"identity too long", "5 " + strings.Repeat("x", 51), "identity too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser().Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_AggregatesAllLineErrors(t *testing.T) {
	_, err := newTestParser().Parse("abc alice\n5 bob\n0 carol")

	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Len(t, parseErr.Lines, 2)

	assert.Equal(t, 1, parseErr.Lines[0].Line)
	assert.Contains(t, parseErr.Lines[0].Message, "not a valid number")
	assert.Equal(t, 3, parseErr.Lines[1].Line)
	assert.Contains(t, parseErr.Lines[1].Message, "amount cannot be zero")

	// One message per failing line, newline-joined.
	assert.Len(t, strings.Split(err.Error(), "\n"), 2)
}

func TestParse_LineNumbersAreOneBasedAndSkipBlanks(t *testing.T) {
	_, err := newTestParser().Parse("\n\n5 alice\n\nbad bad bad\n")

	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Len(t, parseErr.Lines, 1)
	assert.Equal(t, 5, parseErr.Lines[0].Line)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n \n\t\n"} {
		_, err := newTestParser().Parse(text)
		assert.ErrorIs(t, err, domain.ErrNoValidLines, "text %q", text)
	}
}

func TestParse_DuplicateDetectionIsPairwise(t *testing.T) {
	// Same identity with different amounts, and same amount with different
	// identities, are all distinct.
	lines, err := newTestParser().Parse("5 a\n6 a\n5 b\n5 a")
	require.NoError(t, err)
	require.Len(t, lines, 3)
}
