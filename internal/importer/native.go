package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/greenbacks-app/greenbacks/internal/ledger"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// NativeParser reads the greenbacks interchange CSV:
//
//	date,account_id,amount,merchant,name
//
// Amounts use the raw feed convention where money coming in is negative.
// An empty account_id falls back to the account given to Parse.
type NativeParser struct{}

const (
	nativeNumFields   = 5
	nativeColDate     = 0
	nativeColAccount  = 1
	nativeColAmount   = 2
	nativeColMerchant = 3
	nativeColName     = 4
)

// Format returns the parser name.
func (p *NativeParser) Format() string { return "greenbacks" }

// Parse reads a native CSV.
func (p *NativeParser) Parse(r io.Reader, accountID string) ([]model.CoreTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = nativeNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading greenbacks CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.CoreTransaction
	for i, rec := range records[1:] {
		date, err := time.Parse(model.DateFormat, strings.TrimSpace(rec[nativeColDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[nativeColDate], err)
		}
		amount, err := ledger.ParseAmount(rec[nativeColAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		account := strings.TrimSpace(rec[nativeColAccount])
		if account == "" {
			account = accountID
		}
		if account == "" {
			return nil, fmt.Errorf("row %d: no account", i+2)
		}
		txns = append(txns, model.CoreTransaction{
			AccountID: account,
			Amount:    amount,
			Datetime:  date,
			Merchant:  rec[nativeColMerchant],
			Name:      rec[nativeColName],
		})
	}
	return txns, nil
}
