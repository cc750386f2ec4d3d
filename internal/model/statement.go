package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cgdscraper/internal/id"
)

// Statement is the list of transactions of one account, in source order.
type Statement struct {
	AccountNumber    string
	AccountType      AccountType
	Currency         string
	DecimalSeparator string

	Transactions []Transaction

	FromDate       time.Time
	ToDate         time.Time
	ClosingBalance decimal.Decimal
	ClosingDate    time.Time
	Finished       bool
}

// NewStatement returns an empty EUR checking statement for account.
func NewStatement(account string) *Statement {
	return &Statement{
		AccountNumber:    account,
		AccountType:      AccountTypeChecking,
		Currency:         "EUR",
		DecimalSeparator: ",",
	}
}

// Add appends a transaction. It does not reorder existing ones.
func (s *Statement) Add(tx Transaction) {
	s.Transactions = append(s.Transactions, tx)
	s.Finished = false
}

// Len returns the number of transactions.
func (s *Statement) Len() int { return len(s.Transactions) }

// Newest returns the most recent transaction given the listing order.
func (s *Statement) Newest(newestFirst bool) (Transaction, bool) {
	if len(s.Transactions) == 0 {
		return Transaction{}, false
	}
	if newestFirst {
		return s.Transactions[0], true
	}
	return s.Transactions[len(s.Transactions)-1], true
}

// Finish computes the statement period and closing balance and assigns
// every transaction a stable key. Transactions keep their source order.
// Calling Finish again recomputes the same values.
func (s *Statement) Finish(newestFirst bool) {
	s.FromDate = time.Time{}
	s.ToDate = time.Time{}
	s.ClosingBalance = decimal.Zero
	s.ClosingDate = time.Time{}

	keys := make([]string, len(s.Transactions))
	for i, tx := range s.Transactions {
		if s.FromDate.IsZero() || tx.Date.Before(s.FromDate) {
			s.FromDate = tx.Date
		}
		if tx.Date.After(s.ToDate) {
			s.ToDate = tx.Date
		}
		keys[i] = id.TransactionKey(s.AccountNumber, tx.Date, tx.ValueDate, tx.Description,
			tx.Amount.StringFixed(2), tx.NewBalance.StringFixed(2))
	}
	for i, key := range id.Dedupe(keys) {
		s.Transactions[i].Key = key
	}

	if newest, ok := s.Newest(newestFirst); ok {
		s.ClosingBalance = newest.NewBalance
		s.ClosingDate = newest.Date
	}
	s.Finished = true
}
