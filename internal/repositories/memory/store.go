// Package memory is an in-process implementation of the account repository.
// Transactions buffer their writes and publish them at once on commit, so a
// failed unit leaves no trace.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
)

// Store keeps accounts and ledger entries in memory. It is safe for
// concurrent use.
type Store struct {
	mu        sync.RWMutex
	accounts  map[uint]models.Account
	byUser    map[uint]uint
	entries   []models.LedgerEntry
	nextAccID uint
	nextEntID uint
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uint]models.Account),
		byUser:   make(map[uint]uint),
		now:      time.Now,
	}
}

func (s *Store) Create(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(account)
}

func (s *Store) insertLocked(account *models.Account) error {
	if _, exists := s.byUser[account.UserID]; exists {
		return repositories.ErrDuplicateAccount
	}
	if account.ID == 0 {
		s.nextAccID++
		account.ID = s.nextAccID
	} else if account.ID > s.nextAccID {
		s.nextAccID = account.ID
	}
	if _, exists := s.accounts[account.ID]; exists {
		return repositories.ErrDuplicateAccount
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}
	now := s.now()
	account.Balance = decimal.Zero
	account.Version = 0
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = *account
	s.byUser[account.UserID] = account.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return &a, nil
}

func (s *Store) GetByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	a := s.accounts[id]
	return &a, nil
}

// GetForUpdate outside a transaction is a plain read; exclusive access is
// provided by the caller's account locks.
func (s *Store) GetForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) UpdateBalance(ctx context.Context, account *models.Account, expectedVersion uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[account.ID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if current.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	current.Balance = account.Balance
	current.Version = account.Version
	current.UpdatedAt = account.UpdatedAt
	s.accounts[account.ID] = current
	return nil
}

func (s *Store) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(entry)
	return nil
}

func (s *Store) appendLocked(entry *models.LedgerEntry) {
	s.nextEntID++
	entry.ID = s.nextEntID
	s.entries = append(s.entries, *entry)
}

func (s *Store) GetEntries(ctx context.Context, accountID uint, limit, offset int) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	out := filterEntries(s.entries, func(e models.LedgerEntry) bool { return e.AccountID == accountID })
	s.mu.RUnlock()
	return page(newestFirst(out), limit, offset), nil
}

func (s *Store) GetEntriesAscending(ctx context.Context, accountID uint) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	out := filterEntries(s.entries, func(e models.LedgerEntry) bool { return e.AccountID == accountID })
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *Store) GetEntriesByCorrelation(ctx context.Context, correlationID string) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterEntries(s.entries, func(e models.LedgerEntry) bool { return e.CorrelationID == correlationID }), nil
}

func (s *Store) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

// Entries returns a copy of every committed entry in insertion order.
func (s *Store) Entries() []models.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	tx := newTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func filterEntries(entries []models.LedgerEntry, keep func(models.LedgerEntry) bool) []models.LedgerEntry {
	var out []models.LedgerEntry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func newestFirst(entries []models.LedgerEntry) []models.LedgerEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Seq > entries[j].Seq
	})
	return entries
}

func page(entries []models.LedgerEntry, limit, offset int) []models.LedgerEntry {
	if offset > 0 {
		if offset >= len(entries) {
			return nil
		}
		entries = entries[offset:]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

var _ repositories.AccountRepository = (*Store)(nil)
