package memory

import (
	"context"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
)

// tx is a unit of work over a Store. Reads see the unit's own writes;
// nothing becomes visible to others before commit.
type tx struct {
	store    *Store
	accounts map[uint]models.Account
	base     map[uint]uint64
	created  []*models.Account
	entries  []*models.LedgerEntry
}

func newTx(s *Store) *tx {
	return &tx{
		store:    s,
		accounts: make(map[uint]models.Account),
		base:     make(map[uint]uint64),
	}
}

func (t *tx) Create(ctx context.Context, account *models.Account) error {
	t.created = append(t.created, account)
	return nil
}

func (t *tx) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	if a, ok := t.accounts[id]; ok {
		return &a, nil
	}
	return t.store.GetByID(ctx, id)
}

func (t *tx) GetByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	a, err := t.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t.GetByID(ctx, a.ID)
}

func (t *tx) GetForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	return t.GetByID(ctx, id)
}

func (t *tx) UpdateBalance(ctx context.Context, account *models.Account, expectedVersion uint64) error {
	current, err := t.GetByID(ctx, account.ID)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	if _, seen := t.base[account.ID]; !seen {
		t.base[account.ID] = expectedVersion
	}
	current.Balance = account.Balance
	current.Version = account.Version
	current.UpdatedAt = account.UpdatedAt
	t.accounts[account.ID] = *current
	return nil
}

func (t *tx) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	t.entries = append(t.entries, entry)
	return nil
}

func (t *tx) GetEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, error) {
	all, err := t.store.GetEntries(ctx, accountID, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range t.entries {
		if e.AccountID == accountID {
			all = append(all, *e)
		}
	}
	return page(newestFirst(all), limit, offset), nil
}

func (t *tx) GetEntriesAscending(ctx context.Context, accountID uint) ([]models.LedgerEntry, error) {
	all, err := t.store.GetEntriesAscending(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, e := range t.entries {
		if e.AccountID == accountID {
			all = append(all, *e)
		}
	}
	return all, nil
}

func (t *tx) GetEntriesByCorrelation(ctx context.Context, correlationID string) ([]models.LedgerEntry, error) {
	all, err := t.store.GetEntriesByCorrelation(ctx, correlationID)
	if err != nil {
		return nil, err
	}
	for _, e := range t.entries {
		if e.CorrelationID == correlationID {
			all = append(all, *e)
		}
	}
	return all, nil
}

func (t *tx) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	total := decimal.Zero
	for id, a := range t.store.accounts {
		if pending, ok := t.accounts[id]; ok {
			a = pending
		}
		total = total.Add(a.Balance)
	}
	return total, nil
}

// ExecuteInTransaction on an open unit joins it.
func (t *tx) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	return fn(t)
}

// commit publishes all buffered writes atomically. A version moved by
// another writer aborts the whole unit.
func (t *tx) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, version := range t.base {
		current, ok := s.accounts[id]
		if !ok {
			return repositories.ErrAccountNotFound
		}
		if current.Version != version {
			return repositories.ErrVersionConflict
		}
	}
	if err := t.checkCreatedLocked(); err != nil {
		return err
	}

	for _, a := range t.created {
		if err := s.insertLocked(a); err != nil {
			return err
		}
	}
	for id, a := range t.accounts {
		s.accounts[id] = a
	}
	for _, e := range t.entries {
		s.appendLocked(e)
	}
	return nil
}

// checkCreatedLocked rejects the batch of new accounts when any of them
// would collide with a stored account or with another one in the batch,
// assigning ids the same way insertLocked does.
func (t *tx) checkCreatedLocked() error {
	s := t.store
	next := s.nextAccID
	users := make(map[uint]struct{}, len(t.created))
	ids := make(map[uint]struct{}, len(t.created))
	for _, a := range t.created {
		if _, exists := s.byUser[a.UserID]; exists {
			return repositories.ErrDuplicateAccount
		}
		if _, dup := users[a.UserID]; dup {
			return repositories.ErrDuplicateAccount
		}
		users[a.UserID] = struct{}{}

		id := a.ID
		if id == 0 {
			next++
			id = next
		} else if id > next {
			next = id
		}
		if _, exists := s.accounts[id]; exists {
			return repositories.ErrDuplicateAccount
		}
		if _, dup := ids[id]; dup {
			return repositories.ErrDuplicateAccount
		}
		ids[id] = struct{}{}
	}
	return nil
}

var _ repositories.AccountRepository = (*tx)(nil)
