package statement

import (
	"fmt"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

// ReconcileError describes a transaction whose balance does not follow from
// the previous balance and its amount.
type ReconcileError struct {
	Line     int
	Key      string
	Expected string
	Actual   string
}

func (e ReconcileError) Error() string {
	return fmt.Sprintf("line %d [%s]: expected balance %s, got %s", e.Line, e.Key, e.Expected, e.Actual)
}

// Reconcile checks that every balance equals the previous balance plus the
// transaction amount. newestFirst gives the listing order of stmt.
func Reconcile(stmt *model.Statement, newestFirst bool) []ReconcileError {
	txs := stmt.Transactions
	var errs []ReconcileError

	for i := 1; i < len(txs); i++ {
		older, newer := txs[i-1], txs[i]
		if newestFirst {
			older, newer = txs[i], txs[i-1]
		}

		expected := older.NewBalance.Add(newer.Amount)
		if !expected.Equal(newer.NewBalance) {
			errs = append(errs, ReconcileError{
				Line:     newer.Line,
				Key:      newer.Key,
				Expected: expected.StringFixed(2),
				Actual:   newer.NewBalance.StringFixed(2),
			})
		}
	}

	return errs
}
