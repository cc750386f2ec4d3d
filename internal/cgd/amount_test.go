package cgd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12,50", "12.50"},
		{"1.234,56", "1234.56"},
		{"-0,50", "-0.50"},
		{" 1 234,00 ", "1234.00"},
		{"1 234,00", "1234.00"},
		{"7", "7.00"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got.StringFixed(2), "input: %q", tt.input)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1,2,3"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "input: %q", in)
	}
}

func TestParseAmount_EmptyIsSentinel(t *testing.T) {
	_, err := ParseAmount("")
	assert.ErrorIs(t, err, errEmptyAmount)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("02-05-2009")
	require.NoError(t, err)
	assert.Equal(t, date(2009, 5, 2), got)

	got, err = ParseDate("02-05-09")
	require.NoError(t, err)
	assert.Equal(t, date(2009, 5, 2), got)

	_, err = ParseDate("2009-05-02")
	assert.Error(t, err)
}
