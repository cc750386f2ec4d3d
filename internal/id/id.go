package id

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const (
	keyPrefix  = "cgd"
	keyDate    = "20060102"
	hashLength = 12
)

// TransactionKey returns a stable key like "cgd_20090502_3f2a9c0b1d4e".
// The hash covers every field of the line so re-importing the same file
// yields the same keys.
func TransactionKey(account string, date, valueDate time.Time, description, amount, balance string) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s",
		account, date.Format(keyDate), valueDate.Format(keyDate), description, amount, balance)
	sum := hex.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s_%s_%s", keyPrefix, date.Format(keyDate), sum[:hashLength])
}

// Dedupe suffixes repeated keys with "-2", "-3", ... in order of appearance.
func Dedupe(keys []string) []string {
	seen := make(map[string]int, len(keys))
	out := make([]string, len(keys))
	for i, k := range keys {
		seen[k]++
		if n := seen[k]; n > 1 {
			out[i] = k + "-" + strconv.Itoa(n)
			continue
		}
		out[i] = k
	}
	return out
}
