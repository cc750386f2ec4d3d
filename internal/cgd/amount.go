package cgd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var errEmptyAmount = errors.New("empty amount")

var dateLayouts = []string{"02-01-2006", "02-01-06"}

// ParseAmount converts Portuguese notation ("1.234,56", "-0,50") into a
// decimal. The "." thousands separator is removed and "," is the decimal
// point.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Decimal{}, errEmptyAmount
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ParseDate parses "dd-mm-yyyy", falling back to "dd-mm-yy".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %w", firstErr)
}
