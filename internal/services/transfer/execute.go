package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// execute locks every account of legs in ascending order and applies all
// postings in one unit under a shared correlation id.
func (s *service) execute(ctx context.Context, operation string, amount decimal.Decimal, legs []leg) (*Result, error) {
	start := time.Now()
	correlationID := uuid.NewString()
	t := newTracker(s.log, operation, correlationID)
	defer func() {
		s.metrics.RecordOperationDuration(operation, time.Since(start))
		s.metrics.RecordOperationResult(operation, string(t.state))
	}()

	ids := make([]uint, 0, len(legs))
	for _, l := range legs {
		ids = append(ids, l.accountID)
	}

	release, err := s.store.Acquire(ctx, ids...)
	if err != nil {
		s.metrics.RecordError(operation, "busy")
		t.reject()
		return nil, err
	}
	defer release()
	t.advance(StateLocked)

	// Versions under the lock tell a clean rollback from a partial one.
	before := make(map[uint]uint64, len(ids))
	for _, id := range ids {
		acc, err := s.store.Get(ctx, id)
		if err != nil {
			t.reject()
			return nil, err
		}
		before[id] = acc.Version
	}

	var entries []models.LedgerEntry
	err = s.store.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		entries = entries[:0]
		for _, l := range legs {
			op := l.operation
			if op == "" {
				op = operation
			}
			entry, err := s.engine.PostTx(ctx, tx, l.accountID, ledger.Posting{
				Kind:          l.kind,
				Amount:        amount,
				CorrelationID: correlationID,
				Operation:     op,
				Reference:     l.reference,
			})
			if err != nil {
				return err
			}
			entries = append(entries, *entry)
			t.advance(l.reached)
		}
		return nil
	})
	if err != nil {
		entries, err = s.recover(ctx, t, legs, before, err)
		if err != nil {
			return nil, err
		}
	} else {
		t.advance(StateCommitted)
	}

	s.metrics.RecordTransaction(operation, amount.InexactFloat64())
	return &Result{
		CorrelationID: correlationID,
		Operation:     operation,
		Balance:       entries[0].UpdatedBalance,
		Entries:       entries,
	}, nil
}

const (
	recoverAttempts = 3
	recoverBackoff  = 20 * time.Millisecond
)

// recover decides the outcome of a failed unit while the locks are still
// held. Unchanged accounts mean the unit rolled back. Every posting present
// means the unit committed although the commit reported an error. Anything
// else is a partial failure. The reads ignore the caller's cancellation,
// since a cancelled request is a common cause of the failed unit.
func (s *service) recover(ctx context.Context, t *tracker, legs []leg, before map[uint]uint64, cause error) ([]models.LedgerEntry, error) {
	correlationID, operation := t.correlation, t.op
	rctx := context.WithoutCancel(ctx)

	ids := make([]uint, 0, len(before))
	for id := range before {
		ids = append(ids, id)
	}

	want := make(map[uint]uint64, len(before))
	for _, l := range legs {
		want[l.accountID]++
	}

	after, err := s.versions(rctx, ids)
	if err != nil {
		s.log.Error("operation outcome unknown, manual reconciliation required",
			zap.String("operation", operation),
			zap.String("correlation_id", correlationID),
			zap.Uints("account_ids", ids),
			zap.NamedError("read_error", err),
			zap.Error(cause),
		)
		s.metrics.RecordError(operation, "outcome_unknown")
		t.advance(StateUnknown)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrOutcomeUnknown, operation, correlationID, cause)
	}

	unchanged, applied := true, true
	for id, version := range before {
		if after[id] != version {
			unchanged = false
		}
		if after[id] != version+want[id] {
			applied = false
		}
	}

	if unchanged {
		t.reject()
		s.metrics.RecordError(operation, errorKind(cause))
		return nil, cause
	}

	if applied {
		entries, err := s.correlated(rctx, correlationID)
		if err == nil && len(entries) == len(legs) {
			s.log.Warn("unit reported an error but every posting is durable",
				zap.String("correlation_id", correlationID),
				zap.Error(cause),
			)
			t.advance(StateCommitted)
			return orderLike(entries, legs), nil
		}
	}

	s.log.Error("partial failure, manual reconciliation required",
		zap.String("operation", operation),
		zap.String("correlation_id", correlationID),
		zap.Uints("account_ids", ids),
		zap.Error(cause),
	)
	s.metrics.RecordPartialFailure(operation)
	t.advance(StateFailed)
	return nil, fmt.Errorf("%w: %s %s: %v", ErrPartialFailure, operation, correlationID, cause)
}

// versions reads the current version of each account, retrying briefly.
func (s *service) versions(ctx context.Context, ids []uint) (map[uint]uint64, error) {
	var err error
	for attempt := 0; attempt < recoverAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(recoverBackoff)
		}
		out := make(map[uint]uint64, len(ids))
		for _, id := range ids {
			var acc *models.Account
			if acc, err = s.store.Get(ctx, id); err != nil {
				break
			}
			out[id] = acc.Version
		}
		if err == nil {
			return out, nil
		}
	}
	return nil, err
}

func (s *service) correlated(ctx context.Context, correlationID string) ([]models.LedgerEntry, error) {
	var (
		entries []models.LedgerEntry
		err     error
	)
	for attempt := 0; attempt < recoverAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(recoverBackoff)
		}
		if entries, err = s.engine.Correlated(ctx, correlationID); err == nil {
			return entries, nil
		}
	}
	return nil, err
}

// orderLike arranges entries in the order of legs.
func orderLike(entries []models.LedgerEntry, legs []leg) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(legs))
	used := make([]bool, len(entries))
	for _, l := range legs {
		for i, e := range entries {
			if !used[i] && e.AccountID == l.accountID && e.Kind == l.kind {
				used[i] = true
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, repositories.ErrVersionConflict):
		return "version_conflict"
	default:
		return "internal"
	}
}
