package wallet

import (
	"context"

	"ledgerpay/internal/models"
	"ledgerpay/internal/services/account"
	"ledgerpay/internal/services/ledger"
	"ledgerpay/internal/services/rates"

	"go.uber.org/zap"
)

type service struct {
	store  *account.Store
	engine *ledger.Engine
	rates  rates.Provider
	log    *zap.Logger
}

// NewService creates a new wallet service
func NewService(store *account.Store, engine *ledger.Engine, provider rates.Provider, log *zap.Logger) Service {
	if store == nil {
		panic("account store is required")
	}
	if engine == nil {
		panic("ledger engine is required")
	}
	if provider == nil {
		panic("rate provider is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		store:  store,
		engine: engine,
		rates:  provider,
		log:    log,
	}
}

func (s *service) Account(ctx context.Context, userID uint) (*models.Account, error) {
	return s.store.GetByUser(ctx, userID)
}

func (s *service) Balance(ctx context.Context, userID uint, currency string) (*BalanceView, error) {
	acc, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &BalanceView{
		Balance:  acc.Balance.Round(2),
		Currency: acc.Currency,
		Version:  acc.Version,
	}
	if currency == "" {
		return view, nil
	}

	target, err := rates.Normalize(currency)
	if err != nil {
		return nil, err
	}
	if target == acc.Currency {
		return view, nil
	}

	converted, err := rates.Convert(ctx, s.rates, acc.Balance, acc.Currency, target)
	if err != nil {
		s.log.Warn("balance conversion failed",
			zap.Uint("account_id", acc.ID),
			zap.String("currency", target),
			zap.Error(err),
		)
		return nil, err
	}
	view.Balance = converted
	view.Currency = target
	return view, nil
}

func (s *service) Statement(ctx context.Context, userID uint, limit, offset int) ([]StatementLine, error) {
	acc, err := s.store.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.engine.History(ctx, acc.ID, limit, offset)
	if err != nil {
		return nil, err
	}

	lines := make([]StatementLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, newStatementLine(e))
	}
	return lines, nil
}

func (s *service) Reconcile(ctx context.Context, accountID uint) (*ledger.Audit, error) {
	return s.engine.Verify(ctx, accountID)
}
