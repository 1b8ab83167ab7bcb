package report

import (
	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// Untagged returns the transactions of type typ without a tag that either
// belong to category or are unclassified, largest amount first.
func Untagged(txns []model.Transaction, typ model.TransactionType, category model.Category) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.Type != typ || t.Tag != "" {
			continue
		}
		if t.Category != category && t.Category != model.CategoryUnclassified {
			continue
		}
		out = append(out, t)
	}
	if out == nil {
		return nil
	}
	return group.SortByAmount(out)
}

// NaturalType is the transaction type a category is usually made of.
func NaturalType(category model.Category) model.TransactionType {
	if category == model.CategoryEarning {
		return model.TypeCredit
	}
	return model.TypeDebit
}
