package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "chk", Name: "Joint Checking", Type: model.AccountTypeChecking, Institution: "Chase", Description: "Bills, payroll"},
		{ID: "ira", Name: "IRA", Type: model.AccountTypeInvestment},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_HeaderOnly(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(strings.Join(Header, ",") + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	_, err := UnmarshalAccount([]string{"chk", "Checking", "checking"})
	assert.ErrorContains(t, err, "expected 5 fields")

	_, err = UnmarshalAccount([]string{"", "Checking", "checking", "", ""})
	assert.ErrorContains(t, err, "empty account_id")

	_, err = UnmarshalAccount([]string{"chk", "Checking", "asset", "", ""})
	assert.ErrorContains(t, err, `unknown account type "asset"`)
}

func TestDefaultAccounts(t *testing.T) {
	ids := make(map[string]bool)
	for _, a := range DefaultAccounts() {
		assert.False(t, ids[a.ID], "duplicate id %s", a.ID)
		ids[a.ID] = true
	}
	assert.True(t, ids["checking"])
	assert.True(t, ids["savings"])
}
