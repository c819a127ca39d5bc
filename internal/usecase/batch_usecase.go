package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hazim/reckon/internal/batch"
	"github.com/hazim/reckon/internal/domain"
)

// BatchUseCase handles settlement batch business logic.
type BatchUseCase struct {
	parser       *batch.Parser
	batchRepo    BatchRepository
	entryRepo    EntryRepository
	ownerRepo    OwnerRepository
	categoryRepo CategoryRepository
	applier      *ApplierUseCase
	normalizer   *Normalizer
	batchTracker Tracker
	alerter      Alerter
	idGen        IDGenerator
}

// NewBatchUseCase creates a new BatchUseCase.
func NewBatchUseCase(
	parser *batch.Parser,
	batchRepo BatchRepository,
	entryRepo EntryRepository,
	ownerRepo OwnerRepository,
	categoryRepo CategoryRepository,
	applier *ApplierUseCase,
	normalizer *Normalizer,
	batchTracker Tracker,
	alerter Alerter,
	idGen IDGenerator,
) *BatchUseCase {
	return &BatchUseCase{
		parser:       parser,
		batchRepo:    batchRepo,
		entryRepo:    entryRepo,
		ownerRepo:    ownerRepo,
		categoryRepo: categoryRepo,
		applier:      applier,
		normalizer:   normalizer,
		batchTracker: batchTracker,
		alerter:      alerter,
		idGen:        idGen,
	}
}

// SubmitBatchInput represents input for submitting a settlement batch.
type SubmitBatchInput struct {
	RawText    string
	CategoryID int64
	Kind       domain.AccountKind
}

// Submit parses the batch text, resolves every identity to an owner, and
// only then persists the batch and applies its entries. A parse error or a
// single unresolvable identity rejects the whole submission with no
// balance changes.
func (uc *BatchUseCase) Submit(ctx context.Context, input SubmitBatchInput) (*domain.SettlementBatch, error) {
	if !input.Kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: "unknown account kind"}
	}

	_, err := uc.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	lines, err := uc.parser.Parse(input.RawText)
	if err != nil {
		return nil, err
	}

	owners, err := uc.resolveAll(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &domain.SettlementBatch{
		ID:         uc.idGen.Generate(),
		RawText:    input.RawText,
		CategoryID: input.CategoryID,
		Kind:       input.Kind,
		Status:     domain.BatchStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = b.Validate()
	if err != nil {
		return nil, err
	}

	uc.batchTracker.Track(b.ID, domain.EventInsert)

	err = uc.batchRepo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	applyErr := uc.applyLines(ctx, b, lines, owners)

	status := domain.BatchStatusProcessed
	if applyErr != nil {
		status = domain.BatchStatusFailed
	}

	uc.batchTracker.Track(b.ID, domain.EventUpdate)

	err = uc.batchRepo.UpdateStatus(ctx, b.ID, status, time.Now().UTC())
	if err != nil {
		if applyErr != nil {
			return b, applyErr
		}

		return b, err
	}

	b.Status = status

	return b, applyErr
}

// Update replaces a batch's text: the new text is parsed and resolved
// first, then the old derived entries are removed and the new ones
// applied. If applying the new entries fails, the old entries are restored
// best effort and the stored text reverts with them, so the batch row
// never claims text its entries do not reflect.
func (uc *BatchUseCase) Update(ctx context.Context, id string, rawText string) (*domain.SettlementBatch, error) {
	b, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := uc.parser.Parse(rawText)
	if err != nil {
		return nil, err
	}

	owners, err := uc.resolveAll(ctx, lines)
	if err != nil {
		return nil, err
	}

	oldEntries, err := uc.entryRepo.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, e := range oldEntries {
		err = uc.applier.Remove(ctx, e, false)
		if err != nil {
			return nil, err
		}
	}

	oldText := b.RawText

	b.RawText = rawText
	b.Status = domain.BatchStatusPending
	b.UpdatedAt = time.Now().UTC()

	uc.batchTracker.Track(b.ID, domain.EventUpdate)

	err = uc.batchRepo.Update(ctx, b)
	if err != nil {
		uc.restore(ctx, b, oldEntries)
		return nil, err
	}

	applyErr := uc.applyLines(ctx, b, lines, owners)

	status := domain.BatchStatusProcessed
	if applyErr != nil {
		// Put the previous entries back so balances reflect the text the
		// batch held before this update.
		restored := uc.restore(ctx, b, oldEntries)
		if restored {
			// The stored text has to match the entries in effect again,
			// or the next reconciliation would replay the text this
			// update just failed to apply.
			b.RawText = oldText
			b.UpdatedAt = time.Now().UTC()

			uc.batchTracker.Track(b.ID, domain.EventUpdate)

			err = uc.batchRepo.Update(ctx, b)
			if err != nil {
				status = domain.BatchStatusFailed

				uc.alerter.Alert(ctx, "critical", "failed to revert batch text after update failure", map[string]string{
					"batch_id": b.ID,
				})
			}
		} else {
			status = domain.BatchStatusFailed
		}
	}

	uc.batchTracker.Track(b.ID, domain.EventUpdate)

	err = uc.batchRepo.UpdateStatus(ctx, b.ID, status, time.Now().UTC())
	if err == nil {
		b.Status = status
	}

	return b, applyErr
}

// Delete removes a batch and all entries derived from it, reversing their
// amounts on the affected balances.
func (uc *BatchUseCase) Delete(ctx context.Context, id string) error {
	_, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	entries, err := uc.entryRepo.ListByBatch(ctx, id)
	if err != nil {
		return err
	}

	for _, e := range entries {
		err = uc.applier.Remove(ctx, e, false)
		if err != nil {
			return err
		}
	}

	uc.batchTracker.Track(id, domain.EventDelete)

	return uc.batchRepo.Delete(ctx, id)
}

// Replay re-applies a batch from its stored text during reconciliation.
// The batch row already exists; only its derived entries are recreated.
func (uc *BatchUseCase) Replay(ctx context.Context, b *domain.SettlementBatch) error {
	lines, err := uc.parser.Parse(b.RawText)
	if err != nil {
		return err
	}

	owners, err := uc.resolveAll(ctx, lines)
	if err != nil {
		return err
	}

	applyErr := uc.applyLines(ctx, b, lines, owners)

	status := domain.BatchStatusProcessed
	if applyErr != nil {
		status = domain.BatchStatusFailed
	}

	uc.batchTracker.Track(b.ID, domain.EventUpdate)

	err = uc.batchRepo.UpdateStatus(ctx, b.ID, status, time.Now().UTC())
	if err != nil {
		return err
	}

	b.Status = status

	return applyErr
}

// Get retrieves a batch by ID.
func (uc *BatchUseCase) Get(ctx context.Context, id string) (*domain.SettlementBatch, error) {
	return uc.batchRepo.GetByID(ctx, id)
}

// List returns all batches.
func (uc *BatchUseCase) List(ctx context.Context) ([]*domain.SettlementBatch, error) {
	return uc.batchRepo.List(ctx)
}

// Entries returns the ledger entries derived from a batch, oldest first.
func (uc *BatchUseCase) Entries(ctx context.Context, id string) ([]*domain.Entry, error) {
	_, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.entryRepo.ListByBatch(ctx, id)
}

// resolveAll maps every parsed line to an owner before anything is
// written. The result is index-aligned with lines.
func (uc *BatchUseCase) resolveAll(ctx context.Context, lines []batch.ParsedLine) ([]*domain.Owner, error) {
	owners := make([]*domain.Owner, len(lines))

	for i, line := range lines {
		owner, err := uc.ownerRepo.GetByIdentity(ctx, line.Identity)
		if err != nil {
			if errors.Is(err, domain.ErrOwnerNotFound) {
				return nil, &domain.ResolutionError{Identity: line.Identity}
			}

			return nil, err
		}

		owners[i] = owner
	}

	return owners, nil
}

func (uc *BatchUseCase) applyLines(ctx context.Context, b *domain.SettlementBatch, lines []batch.ParsedLine, owners []*domain.Owner) error {
	now := time.Now().UTC()

	for i, line := range lines {
		entry := uc.normalizer.FromBatchLine(line, owners[i], b, now)

		_, err := uc.applier.Apply(ctx, entry)
		if err != nil {
			return fmt.Errorf("apply line %d: %w", i+1, err)
		}
	}

	return nil
}

// restore re-applies previously removed entries, keeping their IDs and
// timestamps. Returns false when any entry could not be restored, which
// leaves balances short and is raised as a critical alert.
func (uc *BatchUseCase) restore(ctx context.Context, b *domain.SettlementBatch, entries []*domain.Entry) bool {
	ok := true

	for _, e := range entries {
		restored := *e

		_, err := uc.applier.Apply(ctx, &restored)
		if err != nil {
			ok = false

			uc.alerter.Alert(ctx, "critical", "failed to restore entry after batch update failure", map[string]string{
				"batch_id": b.ID,
				"entry_id": e.ID,
			})
		}
	}

	return ok
}
