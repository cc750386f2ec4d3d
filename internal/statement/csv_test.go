package statement

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cgdscraper/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// testStatement is listed newest first and reconciles.
func testStatement() *model.Statement {
	s := model.NewStatement("000123123312")
	s.Add(model.Transaction{Date: date(2009, 5, 4), ValueDate: date(2009, 5, 4), Description: "TRF SALARIO", Amount: dec("1500"), NewBalance: dec("2697.20"), Line: 8})
	s.Add(model.Transaction{Date: date(2009, 5, 3), ValueDate: date(2009, 5, 3), Description: "COMPRA CONTINENTE;LOJA 12", Amount: dec("-12.50"), NewBalance: dec("1197.20"), Line: 9})
	s.Add(model.Transaction{Date: date(2009, 5, 2), ValueDate: date(2009, 5, 2), Description: "PAGAMENTO SERVIÇOS", Amount: dec("-25.30"), NewBalance: dec("1209.70"), Line: 10})
	s.Add(model.Transaction{Date: date(2009, 5, 1), ValueDate: date(2009, 5, 2), Description: "LEVANTAMENTO", Amount: dec("-40"), NewBalance: dec("1235.00"), Line: 11})
	s.Finish(true)
	return s
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testStatement()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, strings.Split(Header, ","), records[0])
	assert.Equal(t, []string{"000123123312", "2009-05-04", "2009-05-04", "TRF SALARIO", "1500.00", "2697.20"}, records[1][:6])
	assert.Regexp(t, `^cgd_20090504_[0-9a-f]{12}$`, records[1][colKey])
	assert.Equal(t, "COMPRA CONTINENTE;LOJA 12", records[2][colDesc])
	assert.Equal(t, "-12.50", records[2][colAmount])
}

func TestWriteCSV_QuotesDescriptions(t *testing.T) {
	s := model.NewStatement("1")
	s.Add(model.Transaction{Date: date(2009, 5, 1), ValueDate: date(2009, 5, 1), Description: `PAG, "LUZ"`, Amount: dec("-1"), NewBalance: dec("1")})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s))
	assert.Contains(t, buf.String(), `"PAG, ""LUZ"""`)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, model.NewStatement("1")))
	assert.Equal(t, Header+"\n", buf.String())
}
