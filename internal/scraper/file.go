package scraper

import (
	"context"
	"fmt"
	"os"

	"github.com/cleared-dev/cgdscraper/internal/cgd"
	"github.com/cleared-dev/cgdscraper/internal/model"
)

// FileScraperName is the registry name of the local file scraper.
const FileScraperName = "cgd-file"

// FileScraper reads a statement export that was downloaded by hand, for
// periods the portal no longer offers.
type FileScraper struct {
	path    string
	format  cgd.Format
	account string
	charset string
}

// NewFileScraper expects "path file_type account_number".
func NewFileScraper(args Args, opts Options) (Scraper, error) {
	path, fileType, account := args.At(0), args.At(1), args.At(2)
	if path == "" || fileType == "" || account == "" {
		return nil, fmt.Errorf("%w: pass absolute path, file type ('csv' or 'tsv') and account number as \"path file_type account_number\"", ErrMissingArgs)
	}

	format, err := cgd.ParseFormat(fileType)
	if err != nil {
		return nil, err
	}

	return &FileScraper{
		path:    path,
		format:  format,
		account: account,
		charset: opts.Charset,
	}, nil
}

// Name returns the scraper name.
func (s *FileScraper) Name() string { return FileScraperName }

// Fetch reads the file and returns its lines as UTF-8.
func (s *FileScraper) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return cgd.SplitLines(data, s.charset)
}

// Parse converts the lines into a statement.
func (s *FileScraper) Parse(lines []string) (*model.Statement, error) {
	return cgd.ParseLines(s.format, s.account, lines)
}
