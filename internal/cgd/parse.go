package cgd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

// Column positions of a well-formed six-field line. Lines with more fields
// carry stray delimiters inside the description; their amount columns are
// counted from the end instead.
const (
	numFields     = 6
	colDate       = 0
	colValueDate  = 1
	colDesc       = 2
	colDebit      = 3
	colCredit     = 4
	colNewBalance = 5
)

// ParseLine converts one line of an export into a Transaction. ok is false
// when the line does not start with a transaction date and must be skipped.
func ParseLine(format Format, line string) (tx model.Transaction, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	if !format.matches(line) {
		return model.Transaction{}, false, nil
	}

	fields := format.split(line)
	n := len(fields)
	if n < numFields {
		return model.Transaction{}, true, fmt.Errorf("expected at least %d fields, got %d", numFields, n)
	}

	desc := fields[colDesc]
	debit, credit, balance := fields[colDebit], fields[colCredit], fields[colNewBalance]
	if n > numFields {
		desc = strings.Join(fields[colDesc:n-3], "")
		debit, credit, balance = fields[n-3], fields[n-2], fields[n-1]
	}

	date, err := ParseDate(fields[colDate])
	if err != nil {
		return model.Transaction{}, true, fmt.Errorf("parsing date %q: %w", fields[colDate], err)
	}
	valueDate, err := ParseDate(fields[colValueDate])
	if err != nil {
		return model.Transaction{}, true, fmt.Errorf("parsing value date %q: %w", fields[colValueDate], err)
	}

	tx = model.Transaction{
		Date:        date,
		ValueDate:   valueDate,
		Description: desc,
	}

	// An empty debit column marks a credit.
	if debit == "" {
		tx.Amount, err = ParseAmount(credit)
		if err != nil {
			return model.Transaction{}, true, fmt.Errorf("parsing credit %q: %w", credit, err)
		}
	} else {
		amount, err := ParseAmount(debit)
		if err != nil {
			return model.Transaction{}, true, fmt.Errorf("parsing debit %q: %w", debit, err)
		}
		tx.Amount = amount.Abs().Neg()
	}

	tx.NewBalance, err = ParseAmount(balance)
	if err != nil {
		return model.Transaction{}, true, fmt.Errorf("parsing balance %q: %w", balance, err)
	}

	return tx, true, nil
}

// ParseLines builds a statement for account from the lines of an export, in
// order. Lines without a leading transaction date are skipped.
func ParseLines(format Format, account string, lines []string) (*model.Statement, error) {
	stmt := model.NewStatement(account)
	for i, line := range lines {
		if err := addLine(stmt, format, i+1, line); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// Parse reads an export line by line. The reader must yield UTF-8; see
// Decode for legacy charsets.
func Parse(r io.Reader, format Format, account string) (*model.Statement, error) {
	stmt := model.NewStatement(account)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		if err := addLine(stmt, format, lineNum, sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s export: %w", format, err)
	}
	return stmt, nil
}

func addLine(stmt *model.Statement, format Format, lineNum int, line string) error {
	tx, ok, err := ParseLine(format, line)
	if err != nil {
		return fmt.Errorf("line %d: %w", lineNum, err)
	}
	if !ok {
		return nil
	}
	tx.Line = lineNum
	stmt.Add(tx)
	return nil
}
