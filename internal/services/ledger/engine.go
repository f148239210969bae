// Package ledger applies single-account postings: a balance mutation and
// its immutable record, committed together.
package ledger

import (
	"context"
	"fmt"
	"time"

	"ledgerpay/internal/metrics"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/account"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Posting describes one balance mutation.
type Posting struct {
	Kind          models.EntryKind
	Amount        decimal.Decimal
	CorrelationID string
	Operation     string
	Reference     string
}

func (p *Posting) normalize() error {
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := account.ValidateAmount(p.Amount); err != nil {
		return err
	}
	if p.CorrelationID == "" {
		p.CorrelationID = uuid.NewString()
	}
	if p.Operation == "" {
		p.Operation = models.OperationFund
	}
	return nil
}

// Engine posts to accounts through the account store.
type Engine struct {
	repo    repositories.AccountRepository
	store   *account.Store
	log     *zap.Logger
	metrics metrics.Collector
}

// NewEngine creates a ledger engine.
func NewEngine(repo repositories.AccountRepository, store *account.Store, log *zap.Logger, m metrics.Collector) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = &metrics.NoopCollector{}
	}
	return &Engine{
		repo:    repo,
		store:   store,
		log:     log,
		metrics: m,
	}
}

// Post locks the account and commits the mutation and its record as one
// unit. If the record cannot be appended the mutation is discarded.
func (e *Engine) Post(ctx context.Context, accountID uint, p Posting) (*models.LedgerEntry, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	release, err := e.store.Acquire(ctx, accountID)
	if err != nil {
		e.metrics.RecordError("post", "busy")
		return nil, err
	}
	defer release()

	var entry *models.LedgerEntry
	err = e.store.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		var err error
		entry, err = e.PostTx(ctx, tx, accountID, p)
		return err
	})
	e.metrics.RecordOperationDuration("post", time.Since(start))
	if err != nil {
		e.metrics.RecordOperationResult("post", "rejected")
		return nil, err
	}

	e.metrics.RecordOperationResult("post", "committed")
	return entry, nil
}

// PostTx applies a posting inside the caller's unit. The caller must hold
// the account lock.
func (e *Engine) PostTx(ctx context.Context, tx repositories.AccountRepository, accountID uint, p Posting) (*models.LedgerEntry, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}

	var (
		acc *models.Account
		err error
	)
	if p.Kind == models.KindCredit {
		acc, err = e.store.Credit(ctx, tx, accountID, p.Amount)
	} else {
		acc, err = e.store.Debit(ctx, tx, accountID, p.Amount)
	}
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		AccountID:      accountID,
		Seq:            acc.Version,
		Kind:           p.Kind,
		Amount:         p.Amount,
		UpdatedBalance: acc.Balance,
		CorrelationID:  p.CorrelationID,
		Operation:      p.Operation,
		Reference:      p.Reference,
		CreatedAt:      acc.UpdatedAt,
	}
	if err := tx.AppendEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record %s on account %d: %w", p.Kind, accountID, err)
	}

	e.log.Debug("posted",
		zap.Uint("account_id", accountID),
		zap.String("kind", string(p.Kind)),
		zap.String("amount", p.Amount.StringFixed(2)),
		zap.String("balance", acc.Balance.StringFixed(2)),
		zap.String("correlation_id", p.CorrelationID),
	)
	return entry, nil
}

// History returns the account's records, newest first. A limit of zero
// returns every record.
func (e *Engine) History(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if _, err := e.repo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return e.repo.GetEntries(ctx, accountID, limit, offset)
}

// Correlated returns every record sharing correlationID.
func (e *Engine) Correlated(ctx context.Context, correlationID string) ([]models.LedgerEntry, error) {
	return e.repo.GetEntriesByCorrelation(ctx, correlationID)
}
