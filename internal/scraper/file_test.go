package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cgdscraper/internal/cgd"
)

func TestNewFileScraper_MissingArgs(t *testing.T) {
	for _, args := range []string{"", "/tmp/x.csv", "/tmp/x.csv csv"} {
		_, err := NewFileScraper(ParseArgs(args), Options{})
		require.Error(t, err, "args %q", args)
		assert.ErrorIs(t, err, ErrMissingArgs)
		assert.Contains(t, err.Error(), "path file_type account_number")
	}
}

func TestNewFileScraper_UnknownType(t *testing.T) {
	_, err := NewFileScraper(ParseArgs("/tmp/x.xls xls 1"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown file type")
}

func TestFileScraper_CSV(t *testing.T) {
	path, err := filepath.Abs("../../testdata/statement.csv")
	require.NoError(t, err)

	s, err := NewFileScraper(ParseArgs(path+" csv 000123123312"), Options{Charset: cgd.DefaultCharset})
	require.NoError(t, err)
	assert.Equal(t, "cgd-file", s.Name())

	stmt, err := Run(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, 4, stmt.Len())
	assert.Equal(t, "000123123312", stmt.AccountNumber)
	assert.Equal(t, "PAGAMENTO SERVIÇOS", stmt.Transactions[2].Description)
	assert.Equal(t, "2697.20", stmt.ClosingBalance.StringFixed(2))
}

func TestFileScraper_TSV(t *testing.T) {
	s, err := NewFileScraper(ParseArgs("../../testdata/statement.tsv TSV 000123123312"), Options{})
	require.NoError(t, err)
	assert.Equal(t, cgd.FormatTSV, s.(*FileScraper).format)

	stmt, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 4, stmt.Len())
}

func TestFileScraper_MissingFile(t *testing.T) {
	s, err := NewFileScraper(ParseArgs(filepath.Join(t.TempDir(), "none.csv")+" csv 1"), Options{})
	require.NoError(t, err)

	_, err = s.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileScraper_CancelledContext(t *testing.T) {
	s, err := NewFileScraper(ParseArgs("../../testdata/statement.csv csv 1"), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
