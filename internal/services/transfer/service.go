// Package transfer orchestrates multi-posting operations: transfers
// between accounts, funding and purchases.
package transfer

import (
	"context"
	"errors"
	"strconv"

	"ledgerpay/internal/events"
	"ledgerpay/internal/metrics"
	"ledgerpay/internal/models"
	"ledgerpay/internal/services/account"
	"ledgerpay/internal/services/ledger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	store     *account.Store
	engine    *ledger.Engine
	catalog   Catalog
	publisher events.Publisher
	config    Config
	log       *zap.Logger
	metrics   metrics.Collector
}

// NewService creates a transfer service.
func NewService(
	store *account.Store,
	engine *ledger.Engine,
	catalog Catalog,
	publisher events.Publisher,
	config Config,
	log *zap.Logger,
	m metrics.Collector,
) Service {
	if store == nil {
		panic("account store is required")
	}
	if engine == nil {
		panic("ledger engine is required")
	}
	if catalog == nil {
		panic("catalog is required")
	}

	// Events and metrics are optional
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = &metrics.NoopCollector{}
	}

	return &service{
		store:     store,
		engine:    engine,
		catalog:   catalog,
		publisher: publisher,
		config:    config,
		log:       log,
		metrics:   m,
	}
}

// Transfer debits fromID and credits toID with the same amount.
func (s *service) Transfer(ctx context.Context, fromID, toID uint, amount decimal.Decimal) (*Result, error) {
	if fromID == toID {
		return nil, ErrSelfTransfer
	}
	if err := account.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if _, err := s.store.Get(ctx, toID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	legs := []leg{
		{accountID: fromID, kind: models.KindDebit, reference: strconv.FormatUint(uint64(toID), 10), reached: StateDebited},
		{accountID: toID, kind: models.KindCredit, reference: strconv.FormatUint(uint64(fromID), 10), reached: StateCredited},
	}
	res, err := s.execute(ctx, models.OperationTransfer, amount, legs)
	if err != nil {
		return nil, err
	}
	res.ToBalance = res.Entries[1].UpdatedBalance

	s.publish(ctx, res, &events.LedgerOperationCompleted{
		FromAccount: fromID,
		ToAccount:   toID,
		Amount:      amount,
	})
	return res, nil
}

// Fund credits accountID. No funds check applies.
func (s *service) Fund(ctx context.Context, accountID uint, amount decimal.Decimal) (*Result, error) {
	if err := account.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if s.config.MaxFundAmount.IsPositive() && amount.GreaterThan(s.config.MaxFundAmount) {
		return nil, ErrFundLimitExceeded
	}

	legs := []leg{
		{accountID: accountID, kind: models.KindCredit, reached: StateCredited},
	}
	res, err := s.execute(ctx, models.OperationFund, amount, legs)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, res, &events.LedgerOperationCompleted{
		ToAccount: accountID,
		Amount:    amount,
	})
	return res, nil
}

// Buy debits the product price from accountID. When a revenue account is
// configured it is credited in the same unit.
func (s *service) Buy(ctx context.Context, accountID, productID uint) (*Result, error) {
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := account.ValidateAmount(product.Price); err != nil {
		return nil, err
	}

	ref := strconv.FormatUint(uint64(product.ID), 10)
	legs := []leg{
		{accountID: accountID, kind: models.KindDebit, reference: ref, reached: StateDebited},
	}
	revenue := s.config.RevenueAccount
	if revenue != 0 && revenue != accountID {
		legs = append(legs, leg{
			accountID: revenue,
			kind:      models.KindCredit,
			reference: ref,
			operation: models.OperationRevenue,
			reached:   StateCredited,
		})
	}

	res, err := s.execute(ctx, models.OperationPurchase, product.Price, legs)
	if err != nil {
		return nil, err
	}

	event := &events.LedgerOperationCompleted{
		FromAccount: accountID,
		Amount:      product.Price,
		Reference:   ref,
	}
	if len(legs) > 1 {
		event.ToAccount = revenue
	}
	s.publish(ctx, res, event)
	return res, nil
}

// publish emits the completion event. Failures are logged only; the
// operation is already committed.
func (s *service) publish(ctx context.Context, res *Result, event *events.LedgerOperationCompleted) {
	event.CorrelationID = res.CorrelationID
	event.Operation = res.Operation
	event.OccurredAt = res.Entries[len(res.Entries)-1].CreatedAt
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.RecordError(res.Operation, "publish")
		s.log.Warn("failed to publish ledger event",
			zap.String("correlation_id", res.CorrelationID),
			zap.Error(err),
		)
	}
}
