package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single movement parsed from a bank statement line.
type Transaction struct {
	Date        time.Time
	ValueDate   time.Time
	Description string
	Amount      decimal.Decimal // negative = debit, positive = credit
	NewBalance  decimal.Decimal // balance after this movement
	Key         string          // stable identifier, set by Statement.Finish
	Line        int             // 1-based line number in the source text
}

// IsDebit reports whether the transaction takes money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}
