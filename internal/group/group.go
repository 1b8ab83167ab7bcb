// Package group buckets classified transactions by a chosen dimension.
package group

import (
	"sort"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// By is the grouping dimension.
type By string

const (
	ByDate        By = "date"
	ByMonth       By = "month"
	ByTag         By = "tag"
	ByCategory    By = "category"
	ByVariability By = "variability"
)

// GroupSort orders groups.
type GroupSort string

const (
	SortGroupsByKey   GroupSort = "key"
	SortGroupsByTotal GroupSort = "total"
	SortGroupsByCount GroupSort = "count"
)

// TransactionSort orders transactions inside a group.
type TransactionSort string

const (
	SortTransactionsByKey    TransactionSort = "key"
	SortTransactionsByAmount TransactionSort = "amount"
)

// Keys for members lacking the grouped field.
const (
	UnclassifiedKey = "Unclassified"
	UnspecifiedKey  = "Unspecified"
)

// Options controls Transactions. The zero value groups by date and orders
// groups by key with members in input order.
type Options struct {
	GroupBy            By
	SortGroupsBy       GroupSort
	SortTransactionsBy TransactionSort
}

// KeyFunc returns the key extractor for a dimension.
func KeyFunc(by By) func(model.Transaction) string {
	switch by {
	case ByMonth:
		return func(t model.Transaction) string { return t.Month() }
	case ByTag:
		return model.Transaction.TagOrUntagged
	case ByCategory:
		return func(t model.Transaction) string {
			if t.Category == model.CategoryUnclassified {
				return UnclassifiedKey
			}
			return string(t.Category)
		}
	case ByVariability:
		return func(t model.Transaction) string {
			if t.Variability == model.VariabilityUnspecified {
				return UnspecifiedKey
			}
			return string(t.Variability)
		}
	default:
		return func(t model.Transaction) string { return t.Date() }
	}
}

func amountOf(t model.Transaction) int64 { return t.Amount }

// Transactions groups txns. It returns nil for empty input, which callers
// treat as "no data" rather than an error. Every input transaction appears
// in exactly one group.
func Transactions(txns []model.Transaction, opts Options) []model.Group {
	buckets := Partition(txns, KeyFunc(opts.GroupBy), amountOf)
	if buckets == nil {
		return nil
	}

	groups := make([]model.Group, len(buckets))
	for i, b := range buckets {
		members := b.Items
		if opts.SortTransactionsBy == SortTransactionsByAmount {
			members = SortByAmount(members)
		}
		groups[i] = model.Group{Key: b.Key, Total: b.Total, Transactions: members}
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	switch opts.SortGroupsBy {
	case SortGroupsByTotal:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
	case SortGroupsByCount:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count() > groups[j].Count() })
	}
	return groups
}

// SortByAmount returns a copy of txns ordered by amount, largest first.
// Equal amounts keep input order.
func SortByAmount(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// Find returns the group with key.
func Find(groups []model.Group, key string) (model.Group, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return model.Group{}, false
}

// Members returns the transactions of the group with key, or nil.
func Members(groups []model.Group, key string) []model.Transaction {
	g, _ := Find(groups, key)
	return g.Transactions
}

// Flatten concatenates the members of groups in order.
func Flatten(groups []model.Group) []model.Transaction {
	var out []model.Transaction
	for _, g := range groups {
		out = append(out, g.Transactions...)
	}
	return out
}

// Split returns the first n groups and the rest. A negative n keeps
// every group.
func Split(groups []model.Group, n int) (top, rest []model.Group) {
	if n < 0 || n >= len(groups) {
		return groups, nil
	}
	return groups[:n], groups[n:]
}

// Total sums the amounts of txns.
func Total(txns []model.Transaction) int64 {
	var sum int64
	for _, t := range txns {
		sum += t.Amount
	}
	return sum
}
