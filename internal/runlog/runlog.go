// Package runlog keeps a CSV history of scraper runs.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

// FileName is the run log file inside the log directory.
const FileName = "scrape-log.csv"

// Header is the CSV header of the run log.
const Header = "timestamp,scraper,account,transactions,closing_balance,output"

const (
	numFields         = 6
	colTimestamp      = 0
	colScraper        = 1
	colAccount        = 2
	colTransactions   = 3
	colClosingBalance = 4
	colOutput         = 5
)

// Entry records one completed scraper run.
type Entry struct {
	Timestamp      time.Time
	Scraper        string
	Account        string
	Transactions   int
	ClosingBalance decimal.Decimal
	Output         string
}

// NewEntry summarizes a finished statement.
func NewEntry(at time.Time, scraper string, stmt *model.Statement, output string) Entry {
	return Entry{
		Timestamp:      at,
		Scraper:        scraper,
		Account:        stmt.AccountNumber,
		Transactions:   stmt.Len(),
		ClosingBalance: stmt.ClosingBalance,
		Output:         output,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colScraper] = e.Scraper
	row[colAccount] = e.Account
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colClosingBalance] = e.ClosingBalance.StringFixed(2)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	n, err := strconv.Atoi(record[colTransactions])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTransactions], err)
	}
	balance, err := decimal.NewFromString(record[colClosingBalance])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing closing balance %q: %w", record[colClosingBalance], err)
	}

	return Entry{
		Timestamp:      ts,
		Scraper:        record[colScraper],
		Account:        record[colAccount],
		Transactions:   n,
		ClosingBalance: balance,
		Output:         record[colOutput],
	}, nil
}

// Append writes entries to <dir>/scrape-log.csv, creating the directory,
// file and header if needed.
func Append(dir string, entries ...Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/scrape-log.csv, or nil if the file
// does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
