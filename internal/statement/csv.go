package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

// Header is the CSV header written before the transactions of a statement.
const Header = "account,date,value_date,description,amount,balance,key"

const (
	numFields     = 7
	dateFormat    = "2006-01-02"
	colAccount    = 0
	colDate       = 1
	colValueDate  = 2
	colDesc       = 3
	colAmount     = 4
	colNewBalance = 5
	colKey        = 6
)

// WriteCSV writes the statement's transactions, header first.
func WriteCSV(w io.Writer, stmt *model.Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range stmt.Transactions {
		if err := cw.Write(MarshalTransaction(stmt.AccountNumber, tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(account string, tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colAccount] = account
	row[colDate] = tx.Date.Format(dateFormat)
	row[colValueDate] = tx.ValueDate.Format(dateFormat)
	row[colDesc] = tx.Description
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colNewBalance] = tx.NewBalance.StringFixed(2)
	row[colKey] = tx.Key
	return row
}
