// Package cgd parses the delimited statement exports of Caixa Geral de
// Depositos into model.Statement values.
package cgd

import (
	"fmt"
	"regexp"
	"strings"
)

// Format identifies the layout of a statement export.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

var (
	csvLinePattern = regexp.MustCompile(`^"\d{2}-\d{2}-\d{2}`)
	tsvLinePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{2}`)
)

// ParseFormat maps a file type argument ("csv" or "tsv") to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatTSV:
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("unknown file type %q: use \"csv\" or \"tsv\"", s)
	}
}

// Delimiter returns the field separator of the format.
func (f Format) Delimiter() string {
	if f == FormatTSV {
		return "\t"
	}
	return ";"
}

// matches reports whether line starts with a transaction date.
func (f Format) matches(line string) bool {
	if f == FormatTSV {
		return tsvLinePattern.MatchString(line)
	}
	return csvLinePattern.MatchString(line)
}

// split breaks a transaction line into fields. Quotes are dropped from CSV
// lines before splitting, trailing whitespace is trimmed from every field
// and trailing empty fields are discarded.
func (f Format) split(line string) []string {
	if f == FormatCSV {
		line = strings.ReplaceAll(line, `"`, "")
	}
	fields := strings.Split(line, f.Delimiter())
	for i := range fields {
		fields[i] = strings.TrimRight(fields[i], " \t\r\n")
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}
