package ledger

import (
	"context"
	"fmt"
	"strings"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Audit is the result of replaying an account's records.
type Audit struct {
	AccountID uint            `json:"account_id"`
	Entries   int             `json:"entries"`
	Balance   decimal.Decimal `json:"balance"`
	Replayed  decimal.Decimal `json:"replayed"`
	Version   uint64          `json:"version"`
	Problems  []string        `json:"problems,omitempty"`
}

// OK reports whether the records fully explain the balance.
func (a *Audit) OK() bool {
	return len(a.Problems) == 0
}

// Verify replays the account's records from a zero balance and checks each
// snapshot, the sequence and the stored balance. Any mismatch is returned
// as ErrPartialFailure. The account lock is held while reading so the
// balance and the records come from the same point in time.
func (e *Engine) Verify(ctx context.Context, accountID uint) (*Audit, error) {
	release, err := e.store.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		acc     *models.Account
		entries []models.LedgerEntry
	)
	err = e.store.WithinTx(ctx, func(tx repositories.AccountRepository) error {
		var err error
		if acc, err = tx.GetByID(ctx, accountID); err != nil {
			return err
		}
		entries, err = tx.GetEntriesAscending(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	audit := &Audit{
		AccountID: accountID,
		Entries:   len(entries),
		Balance:   acc.Balance,
		Version:   acc.Version,
	}

	running := decimal.Zero
	for i, entry := range entries {
		if entry.Seq != uint64(i+1) {
			audit.Problems = append(audit.Problems,
				fmt.Sprintf("entry %d has seq %d, want %d", entry.ID, entry.Seq, i+1))
		}
		if entry.Kind == models.KindCredit {
			running = running.Add(entry.Amount)
		} else {
			running = running.Sub(entry.Amount)
		}
		if running.IsNegative() {
			audit.Problems = append(audit.Problems,
				fmt.Sprintf("balance negative after entry %d", entry.ID))
		}
		if !entry.UpdatedBalance.Equal(running) {
			audit.Problems = append(audit.Problems,
				fmt.Sprintf("entry %d snapshot %s, replayed %s", entry.ID,
					entry.UpdatedBalance.StringFixed(2), running.StringFixed(2)))
		}
	}
	audit.Replayed = running

	if !running.Equal(acc.Balance) {
		audit.Problems = append(audit.Problems,
			fmt.Sprintf("stored balance %s, replayed %s", acc.Balance.StringFixed(2), running.StringFixed(2)))
	}
	if acc.Version != uint64(len(entries)) {
		audit.Problems = append(audit.Problems,
			fmt.Sprintf("version %d but %d entries", acc.Version, len(entries)))
	}

	if !audit.OK() {
		e.log.Error("ledger audit failed, manual reconciliation required",
			zap.Uint("account_id", accountID),
			zap.Strings("problems", audit.Problems),
		)
		e.metrics.RecordPartialFailure("audit")
		return audit, fmt.Errorf("%w: account %d: %s", ErrPartialFailure, accountID, strings.Join(audit.Problems, "; "))
	}
	return audit, nil
}
