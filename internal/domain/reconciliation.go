package domain

import "time"

// ReconcilePhase is one stage of a full reset-and-replay rebuild. Phases run
// strictly in order and each completes before the next starts.
type ReconcilePhase string

const (
	PhaseIdle                 ReconcilePhase = "IDLE"
	PhasePurgingEntries       ReconcilePhase = "PURGING_ENTRIES"
	PhaseZeroingBalances      ReconcilePhase = "ZEROING_BALANCES"
	PhaseReplayingAdjustments ReconcilePhase = "REPLAYING_ADJUSTMENTS"
	PhaseReplayingBatches     ReconcilePhase = "REPLAYING_BATCHES"
)

type RunStatus string

const (
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// ReconciliationRun records one rebuild for operators: how far it got, what
// it replayed, and the failure if any.
type ReconciliationRun struct {
	ID                  string
	Status              RunStatus
	Phase               ReconcilePhase
	EntriesPurged       int
	BalancesZeroed      int
	AdjustmentsReplayed int
	BatchesReplayed     int
	Error               string
	StartedAt           time.Time
	FinishedAt          time.Time
}
