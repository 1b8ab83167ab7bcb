// Package reconcile splits a raw transaction feed into credits, debits and
// transfers between the user's own accounts.
package reconcile

import "github.com/greenbacks-app/greenbacks/internal/model"

// Result is the partition produced by Reconcile. Credit amounts are negated
// so every amount in the result is a non-negative magnitude.
type Result struct {
	Credits   []model.CoreTransaction
	Debits    []model.CoreTransaction
	Transfers []model.Transfer
}

type candidate struct {
	tx       model.CoreTransaction
	consumed bool
}

// Reconcile partitions raw by sign and pairs each debit with the first
// unconsumed credit of the same amount held in a different account. Paired
// records become a Transfer and leave both the credit and debit sets.
//
// Amounts of zero are treated as debits. When several credits share an
// amount the earliest one in feed order wins, regardless of date.
func Reconcile(raw []model.CoreTransaction) Result {
	var credits []*candidate
	byAmount := make(map[int64][]*candidate)
	var debits []model.CoreTransaction

	for _, tx := range raw {
		if tx.Amount < 0 {
			tx.Amount = -tx.Amount
			c := &candidate{tx: tx}
			credits = append(credits, c)
			byAmount[tx.Amount] = append(byAmount[tx.Amount], c)
			continue
		}
		debits = append(debits, tx)
	}

	var result Result
	for _, debit := range debits {
		match := firstOtherAccount(byAmount[debit.Amount], debit.AccountID)
		if match == nil {
			result.Debits = append(result.Debits, debit)
			continue
		}
		match.consumed = true
		result.Transfers = append(result.Transfers, model.Transfer{
			ID:                   debit.ID,
			Amount:               debit.Amount,
			Datetime:             debit.Datetime,
			Merchant:             debit.Merchant,
			Name:                 debit.Name,
			SourceAccountID:      debit.AccountID,
			DestinationAccountID: match.tx.AccountID,
		})
	}

	for _, c := range credits {
		if !c.consumed {
			result.Credits = append(result.Credits, c.tx)
		}
	}
	return result
}

func firstOtherAccount(bucket []*candidate, accountID string) *candidate {
	for _, c := range bucket {
		if !c.consumed && c.tx.AccountID != accountID {
			return c
		}
	}
	return nil
}
