package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

func TestRoundTrip(t *testing.T) {
	txns := []model.CoreTransaction{
		{ID: "chk-20250103-001", AccountID: "chk", Amount: 400, Datetime: date(2025, 1, 3), Merchant: "GitHub", Name: "GITHUB *PRO, SUBSCRIPTION"},
		{ID: "chk-20250110-001", AccountID: "chk", Amount: -350000, Datetime: date(2025, 1, 10), Name: "ACME PAYROLL"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))
	assert.Contains(t, buf.String(), ",-3500.00,")

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	assert.Equal(t, txns, got)
}

func TestReadTransactions_Errors(t *testing.T) {
	_, err := ReadTransactions(strings.NewReader(Header + "\nx,2025-01-01,chk,1.00,m\n"))
	assert.Error(t, err)

	_, err = ReadTransactions(strings.NewReader(Header + "\nx,01/01/2025,chk,1.00,m,n\n"))
	assert.ErrorContains(t, err, "parsing date")

	_, err = ReadTransactions(strings.NewReader(Header + "\nx,2025-01-01,chk,1.005,m,n\n"))
	assert.ErrorContains(t, err, "more than 2 decimal places")

	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAmounts(t *testing.T) {
	assert.Equal(t, "12.34", FormatAmount(1234))
	assert.Equal(t, "-0.05", FormatAmount(-5))
	assert.Equal(t, "0.00", FormatAmount(0))

	for in, want := range map[string]int64{"12.34": 1234, "-4": -400, " 0.5 ": 50, "3500.00": 350000} {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAmount("twelve")
	assert.ErrorContains(t, err, "parsing amount")
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
