package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/greenbacks-app/greenbacks/internal/ledger"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// ChaseParser parses Chase checking CSV exports. Chase writes money out
// of the account as a negative amount, so amounts are negated on import.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns raw transactions for accountID.
func (p *ChaseParser) Parse(r io.Reader, accountID string) ([]model.CoreTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.CoreTransaction
	for i, rec := range records[1:] {
		tx, err := parseChaseRow(rec, accountID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

func parseChaseRow(rec []string, accountID string) (model.CoreTransaction, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.CoreTransaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.CoreTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}
	minor, err := ledger.ToMinor(amount.Neg())
	if err != nil {
		return model.CoreTransaction{}, err
	}

	desc := strings.TrimSpace(rec[chaseColDesc])
	return model.CoreTransaction{
		AccountID: accountID,
		Amount:    minor,
		Datetime:  date,
		Merchant:  merchantName(desc),
		Name:      desc,
	}, nil
}

// merchantName keeps the leading words of a bank description up to the
// first word holding a digit or marker: "GITHUB *PRO SUBSCRIPTION" -> "GITHUB".
func merchantName(desc string) string {
	var words []string
	for _, w := range strings.Fields(desc) {
		if strings.ContainsAny(w, "*#") || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			break
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return desc
	}
	return strings.Join(words, " ")
}
