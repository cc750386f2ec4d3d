package cgd

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultCharset is the charset CGD uses for its exports.
const DefaultCharset = "windows-1252"

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Decode returns data as UTF-8. Valid UTF-8 input only loses its byte order
// mark; anything else is decoded from charset (DefaultCharset when empty).
func Decode(data []byte, charset string) ([]byte, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	if charset == "" {
		charset = DefaultCharset
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", charset, err)
	}
	return out, nil
}

// SplitLines decodes data and splits it into lines without terminators.
func SplitLines(data []byte, charset string) ([]string, error) {
	text, err := Decode(data, charset)
	if err != nil {
		return nil, err
	}
	s := strings.ReplaceAll(string(text), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}
