package transfer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"ledgerpay/internal/repositories/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_OppositeTransfersComplete(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(repo)
			a := f.open(t, 1, "1000")
			b := f.open(t, 2, "1000")

			const rounds = 100
			var wg sync.WaitGroup
			for i := 0; i < rounds; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, err := f.svc.Transfer(ctx, a, b, d("3"))
					assert.NoError(t, err)
				}()
				go func() {
					defer wg.Done()
					_, err := f.svc.Transfer(ctx, b, a, d("2"))
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			assert.True(t, f.balance(t, a).Equal(d("900")), "a=%s", f.balance(t, a))
			assert.True(t, f.balance(t, b).Equal(d("1100")), "b=%s", f.balance(t, b))
		})
	}
}

func TestService_StaleReadDebitRejected(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(repo)
			a := f.open(t, 1, "100")
			b := f.open(t, 2, "0")

			// Every goroutine sees 100 before it starts; only one 70 debit fits.
			snapshot := f.balance(t, a)
			require.True(t, snapshot.Equal(d("100")))

			var (
				wg        sync.WaitGroup
				succeeded atomic.Int32
				rejected  atomic.Int32
			)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.svc.Transfer(ctx, a, b, d("70"))
					switch {
					case err == nil:
						succeeded.Add(1)
					case errors.Is(err, ErrInsufficientFunds):
						rejected.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), succeeded.Load())
			assert.Equal(t, int32(9), rejected.Load())
			assert.True(t, f.balance(t, a).Equal(d("30")))
			assert.True(t, f.balance(t, b).Equal(d("70")))
			assert.Zero(t, f.metrics.partial.Load())

			for _, id := range []uint{a, b} {
				_, err := f.engine.Verify(ctx, id)
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_ConservationUnderLoad(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore()
	f := newFixture(repo)

	const accounts = 6
	ids := make([]uint, accounts)
	for i := range ids {
		ids[i] = f.open(t, uint(i+1), "0")
	}

	var (
		mu        sync.Mutex
		funded    = decimal.Zero
		purchased = decimal.Zero
		wg        sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 150; i++ {
				from := ids[rng.Intn(accounts)]
				switch rng.Intn(3) {
				case 0:
					amount := decimal.New(int64(rng.Intn(5000)+1), -2)
					if _, err := f.svc.Fund(ctx, from, amount); assert.NoError(t, err) {
						mu.Lock()
						funded = funded.Add(amount)
						mu.Unlock()
					}
				case 1:
					to := ids[rng.Intn(accounts)]
					if to == from {
						continue
					}
					amount := decimal.New(int64(rng.Intn(3000)+1), -2)
					_, err := f.svc.Transfer(ctx, from, to, amount)
					if err != nil && !errors.Is(err, ErrInsufficientFunds) {
						t.Errorf("transfer: %v", err)
					}
				case 2:
					res, err := f.svc.Buy(ctx, from, 1)
					if err == nil {
						mu.Lock()
						purchased = purchased.Add(res.Entries[0].Amount)
						mu.Unlock()
					} else if !errors.Is(err, ErrInsufficientFunds) {
						t.Errorf("buy: %v", err)
					}
				}
			}
		}(int64(w))
	}
	wg.Wait()

	total, err := repo.TotalBalance(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(funded.Sub(purchased)), "total %s, funded %s, purchased %s", total, funded, purchased)

	for _, id := range ids {
		assert.False(t, f.balance(t, id).IsNegative())
		audit, err := f.engine.Verify(ctx, id)
		assert.NoError(t, err)
		if audit != nil {
			assert.True(t, audit.OK())
		}
	}

	// Both sides of every transfer share an amount and a correlation id.
	byCorrelation := make(map[string][]decimal.Decimal)
	for _, e := range repo.Entries() {
		if e.Operation == "transfer" {
			byCorrelation[e.CorrelationID] = append(byCorrelation[e.CorrelationID], e.Amount)
		}
	}
	for id, amounts := range byCorrelation {
		if assert.Len(t, amounts, 2, id) {
			assert.True(t, amounts[0].Equal(amounts[1]), id)
		}
	}
}
