package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledgerpay/internal/events"
	"ledgerpay/internal/metrics"
	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/repositories/memory"
	"ledgerpay/internal/services/account"
	"ledgerpay/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	errAppend     = errors.New("append refused")
	errUpdate     = errors.New("update refused")
	errCommitLost = errors.New("commit acknowledgement lost")
	errRead       = errors.New("read refused")
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newSQLiteRepo(t *testing.T) repositories.AccountRepository {
	t.Helper()
	db, err := repositories.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = repositories.Close(db) })
	return repositories.NewAccountRepository(db)
}

func backends(t *testing.T) map[string]repositories.AccountRepository {
	return map[string]repositories.AccountRepository{
		"memory": memory.NewStore(),
		"sqlite": newSQLiteRepo(t),
	}
}

type fakeCatalog map[uint]*models.Product

func (c fakeCatalog) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, repositories.ErrProductNotFound
	}
	return p, nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *events.LedgerOperationCompleted) error {
	return m.Called(ctx, event).Error(0)
}

// countingCollector counts partial failures.
type countingCollector struct {
	metrics.NoopCollector
	partial atomic.Int32
}

func (c *countingCollector) RecordPartialFailure(string) {
	c.partial.Add(1)
}

type fixture struct {
	repo    repositories.AccountRepository
	store   *account.Store
	engine  *ledger.Engine
	svc     Service
	metrics *countingCollector
}

type option func(*fixtureOptions)

type fixtureOptions struct {
	config      Config
	publisher   events.Publisher
	lockTimeout time.Duration
	catalog     Catalog
}

func withConfig(c Config) option              { return func(o *fixtureOptions) { o.config = c } }
func withPublisher(p events.Publisher) option { return func(o *fixtureOptions) { o.publisher = p } }
func withLockTimeout(t time.Duration) option  { return func(o *fixtureOptions) { o.lockTimeout = t } }

func newFixture(repo repositories.AccountRepository, opts ...option) *fixture {
	o := fixtureOptions{
		lockTimeout: 5 * time.Second,
		catalog: fakeCatalog{
			1: {ID: 1, Name: "Coffee", Price: d("40.00")},
			2: {ID: 2, Name: "Laptop", Price: d("900.00")},
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &countingCollector{}
	store := account.NewStore(repo, o.lockTimeout, m)
	engine := ledger.NewEngine(repo, store, nil, m)
	return &fixture{
		repo:    repo,
		store:   store,
		engine:  engine,
		svc:     NewService(store, engine, o.catalog, o.publisher, o.config, nil, m),
		metrics: m,
	}
}

// open creates an account holding balance.
func (f *fixture) open(t *testing.T, userID uint, balance string) uint {
	t.Helper()
	acc, err := f.store.Open(context.Background(), userID, "INR")
	require.NoError(t, err)
	if amount := d(balance); amount.IsPositive() {
		_, err := f.svc.Fund(context.Background(), acc.ID, amount)
		require.NoError(t, err)
	}
	return acc.ID
}

func (f *fixture) balance(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	acc, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

// failingRepo refuses entries for one account; units stay atomic.
type failingRepo struct {
	repositories.AccountRepository
	failFor uint
}

func (r *failingRepo) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.AccountID == r.failFor {
		return errAppend
	}
	return r.AccountRepository.AppendEntry(ctx, entry)
}

func (r *failingRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	return r.AccountRepository.ExecuteInTransaction(ctx, func(tx repositories.AccountRepository) error {
		return fn(&failingRepo{AccountRepository: tx, failFor: r.failFor})
	})
}

// nonAtomicRepo applies writes immediately, so a failed unit leaves its
// earlier writes behind.
type nonAtomicRepo struct {
	repositories.AccountRepository
	failUpdateFor uint
}

func (r *nonAtomicRepo) UpdateBalance(ctx context.Context, acc *models.Account, expected uint64) error {
	if acc.ID == r.failUpdateFor {
		return errUpdate
	}
	return r.AccountRepository.UpdateBalance(ctx, acc, expected)
}

func (r *nonAtomicRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	return fn(r)
}

// lossyCommitRepo commits units but reports an error afterwards.
type lossyCommitRepo struct {
	repositories.AccountRepository
	lose atomic.Bool
}

func (r *lossyCommitRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	if err := r.AccountRepository.ExecuteInTransaction(ctx, fn); err != nil {
		return err
	}
	if r.lose.Load() {
		return errCommitLost
	}
	return nil
}

// cancelingRepo cancels the caller's context while crediting one account,
// as a client disconnecting mid-request would.
type cancelingRepo struct {
	repositories.AccountRepository
	cancelOn uint
	cancel   context.CancelFunc
}

func (r *cancelingRepo) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.AccountID == r.cancelOn && entry.Kind == models.KindCredit {
		r.cancel()
		return ctx.Err()
	}
	return r.AccountRepository.AppendEntry(ctx, entry)
}

func (r *cancelingRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	return r.AccountRepository.ExecuteInTransaction(ctx, func(tx repositories.AccountRepository) error {
		return fn(&cancelingRepo{AccountRepository: tx, cancelOn: r.cancelOn, cancel: r.cancel})
	})
}

// blindRepo refuses entries for one account and, once it has, stops
// answering account reads.
type blindRepo struct {
	repositories.AccountRepository
	failFor uint
	blind   atomic.Bool
}

func (r *blindRepo) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	if r.blind.Load() {
		return nil, errRead
	}
	return r.AccountRepository.GetByID(ctx, id)
}

func (r *blindRepo) ExecuteInTransaction(ctx context.Context, fn func(repositories.AccountRepository) error) error {
	err := r.AccountRepository.ExecuteInTransaction(ctx, func(tx repositories.AccountRepository) error {
		return fn(&failingRepo{AccountRepository: tx, failFor: r.failFor})
	})
	if errors.Is(err, errAppend) {
		r.blind.Store(true)
	}
	return err
}
