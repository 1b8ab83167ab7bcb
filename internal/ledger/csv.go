// Package ledger stores transactions as CSV files, one per calendar month.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,account_id,amount,merchant,name"

const (
	numFields   = 6
	colID       = 0
	colDate     = 1
	colAcctID   = 2
	colAmount   = 3
	colMerchant = 4
	colName     = 5
)

// ReadTransactions reads every row of a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.CoreTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.CoreTransaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

// WriteTransactions writes a header followed by txns.
func WriteTransactions(w io.Writer, txns []model.CoreTransaction) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return AppendTransactions(w, txns)
}

// AppendTransactions writes txns without a header.
func AppendTransactions(w io.Writer, txns []model.CoreTransaction) error {
	cw := csv.NewWriter(w)
	for i, tx := range txns {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing transaction %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row. Amounts are
// written in major units with two decimals.
func MarshalTransaction(tx model.CoreTransaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colDate] = tx.Datetime.Format(model.DateFormat)
	row[colAcctID] = tx.AccountID
	row[colAmount] = FormatAmount(tx.Amount)
	row[colMerchant] = tx.Merchant
	row[colName] = tx.Name
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction.
func UnmarshalTransaction(record []string) (model.CoreTransaction, error) {
	if len(record) != numFields {
		return model.CoreTransaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return model.CoreTransaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := ParseAmount(record[colAmount])
	if err != nil {
		return model.CoreTransaction{}, err
	}

	return model.CoreTransaction{
		ID:        record[colID],
		AccountID: record[colAcctID],
		Amount:    amount,
		Datetime:  date,
		Merchant:  record[colMerchant],
		Name:      record[colName],
	}, nil
}

// FormatAmount renders minor units as a decimal string: 1234 -> "12.34".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

// ParseAmount converts a decimal string in major units to minor units.
// More than two decimal places is an error.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return ToMinor(d)
}

// ToMinor converts a major-unit decimal to minor units.
func ToMinor(d decimal.Decimal) (int64, error) {
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than 2 decimal places", d)
	}
	return cents.IntPart(), nil
}
