package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

func TestChaseParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/chase_checking.csv")
	require.NoError(t, err)
	defer f.Close()

	p := &ChaseParser{}
	txns, err := p.Parse(f, "chk")
	require.NoError(t, err)
	require.Len(t, txns, 6)

	first := txns[0]
	assert.Equal(t, "chk", first.AccountID)
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", first.Name)
	assert.Equal(t, "GITHUB", first.Merchant)
	assert.Equal(t, int64(400), first.Amount)
	assert.Equal(t, "2025-01-03", first.Date())
	assert.Empty(t, first.ID)

	payroll := txns[3]
	assert.Equal(t, "ACME PAYROLL", payroll.Name)
	assert.Equal(t, int64(-350000), payroll.Amount)

	assert.Equal(t, "2025-01-22", txns[5].Date())
}

func TestChaseParser_AmountsNegated(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseHeader+
		"DEBIT,01/03/2025,COFFEE,-4.50,DEBIT_CARD,100.00,\n"+
		"CREDIT,01/04/2025,REFUND,12.00,ACH_CREDIT,112.00,\n"), "chk")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(450), txns[0].Amount)
	assert.Equal(t, int64(-1200), txns[1].Amount)
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseHeader), "chk")
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestChaseParser_BadDate(t *testing.T) {
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(chaseHeader+"DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"), "chk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing date")
	assert.Contains(t, err.Error(), "row 2")
}

func TestChaseParser_BadAmount(t *testing.T) {
	p := &ChaseParser{}
	_, err := p.Parse(strings.NewReader(chaseHeader+"DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"), "chk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestChaseParser_Format(t *testing.T) {
	assert.Equal(t, "chase", (&ChaseParser{}).Format())
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"GITHUB *PRO SUBSCRIPTION", "GITHUB"},
		{"WHOLE FOODS #10234", "WHOLE FOODS"},
		{"ONLINE TRANSFER TO SAV 4421", "ONLINE TRANSFER TO SAV"},
		{"ACME PAYROLL", "ACME PAYROLL"},
		{"SQ *BLUE BOTTLE", "SQ"},
		{"7-ELEVEN 12345", "7-ELEVEN 12345"},
		{"  LANDLORD   PROPERTY MGMT ", "LANDLORD PROPERTY MGMT"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, merchantName(tt.desc))
		})
	}
}
