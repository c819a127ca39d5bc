package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Lookup errors
	ErrBalanceNotFound    = errors.New("balance not found")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrBatchNotFound      = errors.New("settlement batch not found")
	ErrAdjustmentNotFound = errors.New("adjustment not found")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrCategoryNotFound   = errors.New("category not found")

	// State errors
	ErrBalanceExists        = errors.New("balance already exists for key")
	ErrAdjustmentNotPending = errors.New("adjustment is not pending")
	ErrReconcileRunning     = errors.New("reconciliation already in progress")
	ErrNoValidLines         = errors.New("no valid lines in batch text")
)

// LineError is one failed line of a settlement batch, 1-based.
type LineError struct {
	Line    int
	Message string
}

func (e LineError) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseError aggregates every line failure of one batch. A batch with any
// failing line applies nothing.
type ParseError struct {
	Lines []LineError
}

func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Lines))
	for i, le := range e.Lines {
		msgs[i] = le.String()
	}

	return strings.Join(msgs, "\n")
}

// ResolutionError reports an identity that could not be mapped to an owner.
type ResolutionError struct {
	Identity string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("owner not found for identity %q", e.Identity)
}

// ValidationError reports a missing or malformed field on an adjustment,
// batch, or entry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PartialApplicationError reports a multi-step apply that failed after some
// side effects already committed. The store offers no multi-row transaction,
// so the partial state stands until reconciliation repairs it.
type PartialApplicationError struct {
	Op        string
	BalanceID string
	Err       error
}

func (e *PartialApplicationError) Error() string {
	return fmt.Sprintf("%s left partial state on balance %s: %v", e.Op, e.BalanceID, e.Err)
}

func (e *PartialApplicationError) Unwrap() error {
	return e.Err
}
