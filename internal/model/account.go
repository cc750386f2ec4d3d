package model

// AccountType classifies the bank account a statement belongs to.
type AccountType string

const (
	AccountTypeChecking    AccountType = "CHECKING"
	AccountTypeSavings     AccountType = "SAVINGS"
	AccountTypeMoneyMarket AccountType = "MONEYMRKT"
	AccountTypeCreditLine  AccountType = "CREDITLINE"
)
