// Package filter applies user-defined rules to transactions.
package filter

import (
	"github.com/shopspring/decimal"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// Classify labels tx with the first filter in filters whose matchers all
// accept it. When nothing matches the result is unclassified and untagged.
func Classify(tx model.CoreTransaction, typ model.TransactionType, filters []model.Filter) model.Transaction {
	out := model.Transaction{CoreTransaction: tx, Type: typ}
	for _, f := range filters {
		if !Matches(tx, f) {
			continue
		}
		out.Category = f.Category
		out.Tag = f.Tag
		out.Variability = f.Variability
		out.FilteredBy = f.ID
		return out
	}
	return out
}

// ClassifyAll classifies every transaction in txns.
func ClassifyAll(txns []model.CoreTransaction, typ model.TransactionType, filters []model.Filter) []model.Transaction {
	if len(txns) == 0 {
		return nil
	}
	out := make([]model.Transaction, len(txns))
	for i, tx := range txns {
		out[i] = Classify(tx, typ, filters)
	}
	return out
}

// Matches reports whether every matcher of f accepts tx. A filter without
// matchers accepts everything.
func Matches(tx model.CoreTransaction, f model.Filter) bool {
	for _, m := range f.Matchers {
		if !MatcherMatches(tx, m) {
			return false
		}
	}
	return true
}

// MatcherMatches applies a single matcher. Unknown properties and
// non-numeric operands of an ordering comparator never match.
func MatcherMatches(tx model.CoreTransaction, m model.Matcher) bool {
	value, ok := tx.Value(m.Property)
	if !ok {
		return false
	}

	switch m.Comparator.Normalize() {
	case "", model.ComparatorEquals:
		return value == m.ExpectedValue
	case model.ComparatorGreaterThan:
		cmp, ok := compareNumeric(value, m.ExpectedValue)
		return ok && cmp > 0
	case model.ComparatorLessThan:
		cmp, ok := compareNumeric(value, m.ExpectedValue)
		return ok && cmp < 0
	default:
		return false
	}
}

func compareNumeric(a, b string) (int, bool) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return 0, false
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return 0, false
	}
	return da.Cmp(db), true
}
