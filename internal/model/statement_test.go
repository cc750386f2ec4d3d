package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// newestFirstStatement lists transactions the way CGD exports them.
func newestFirstStatement() *Statement {
	s := NewStatement("000123123312")
	s.Add(Transaction{Date: date(2009, 5, 4), ValueDate: date(2009, 5, 4), Description: "TRF SALARIO", Amount: dec("1500.00"), NewBalance: dec("2722.50")})
	s.Add(Transaction{Date: date(2009, 5, 3), ValueDate: date(2009, 5, 3), Description: "COMPRA", Amount: dec("-12.50"), NewBalance: dec("1222.50")})
	s.Add(Transaction{Date: date(2009, 5, 1), ValueDate: date(2009, 5, 2), Description: "LEVANTAMENTO", Amount: dec("-40.00"), NewBalance: dec("1235.00")})
	return s
}

func TestNewStatementDefaults(t *testing.T) {
	s := NewStatement("42")
	assert.Equal(t, "42", s.AccountNumber)
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, ",", s.DecimalSeparator)
	assert.Equal(t, AccountTypeChecking, s.AccountType)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Finished)
}

func TestFinish_NewestFirst(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(true)

	assert.True(t, s.Finished)
	assert.Equal(t, date(2009, 5, 1), s.FromDate)
	assert.Equal(t, date(2009, 5, 4), s.ToDate)
	assert.Equal(t, "2722.50", s.ClosingBalance.StringFixed(2))
	assert.Equal(t, date(2009, 5, 4), s.ClosingDate)
}

func TestFinish_OldestFirst(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(false)

	assert.Equal(t, "1235.00", s.ClosingBalance.StringFixed(2))
	assert.Equal(t, date(2009, 5, 1), s.ClosingDate)
}

func TestFinish_PreservesOrder(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(true)

	require.Len(t, s.Transactions, 3)
	assert.Equal(t, "TRF SALARIO", s.Transactions[0].Description)
	assert.Equal(t, "COMPRA", s.Transactions[1].Description)
	assert.Equal(t, "LEVANTAMENTO", s.Transactions[2].Description)
}

func TestFinish_AssignsKeys(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(true)

	seen := make(map[string]bool)
	for _, tx := range s.Transactions {
		assert.NotEmpty(t, tx.Key)
		assert.False(t, seen[tx.Key], "duplicate key %s", tx.Key)
		seen[tx.Key] = true
	}
}

func TestFinish_DuplicateLinesGetDistinctKeys(t *testing.T) {
	s := NewStatement("1")
	tx := Transaction{Date: date(2009, 5, 4), ValueDate: date(2009, 5, 4), Description: "PORTAGEM", Amount: dec("-1.10"), NewBalance: dec("10.00")}
	s.Add(tx)
	s.Add(tx)
	s.Finish(true)

	assert.NotEqual(t, s.Transactions[0].Key, s.Transactions[1].Key)
	assert.Equal(t, s.Transactions[0].Key+"-2", s.Transactions[1].Key)
}

func TestFinish_Idempotent(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(true)
	first := make([]Transaction, len(s.Transactions))
	copy(first, s.Transactions)
	closing := s.ClosingBalance

	s.Finish(true)
	assert.Equal(t, first, s.Transactions)
	assert.True(t, closing.Equal(s.ClosingBalance))
}

func TestFinish_Empty(t *testing.T) {
	s := NewStatement("1")
	s.Finish(true)

	assert.True(t, s.Finished)
	assert.True(t, s.FromDate.IsZero())
	assert.True(t, s.ClosingBalance.IsZero())
}

func TestAdd_ResetsFinished(t *testing.T) {
	s := newestFirstStatement()
	s.Finish(true)
	s.Add(Transaction{Date: date(2009, 5, 5)})
	assert.False(t, s.Finished)
}

func TestTransactionIsDebit(t *testing.T) {
	assert.True(t, Transaction{Amount: dec("-0.01")}.IsDebit())
	assert.False(t, Transaction{Amount: dec("0.01")}.IsDebit())
}
