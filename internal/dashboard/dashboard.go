// Package dashboard runs the full pipeline from a raw transaction feed to
// categorised transactions, and serves report views over query windows.
package dashboard

import (
	"time"

	"github.com/greenbacks-app/greenbacks/internal/filter"
	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/reconcile"
	"github.com/greenbacks-app/greenbacks/internal/timeline"
)

// Result holds a window's transactions split by category. Hidden
// transactions are dropped.
type Result struct {
	Earning      []model.Transaction `json:"earning"`
	Saving       []model.Transaction `json:"saving"`
	Spending     []model.Transaction `json:"spending"`
	Unclassified []model.Transaction `json:"unclassified"`
	Transfers    []model.Transfer    `json:"transfers"`
	Hidden       int                 `json:"hidden"`
}

// Build reconciles raw, classifies the credits and debits with filters and
// splits the outcome by category.
func Build(raw []model.CoreTransaction, filters []model.Filter) Result {
	rec := reconcile.Reconcile(raw)
	classified := append(
		filter.ClassifyAll(rec.Credits, model.TypeCredit, filters),
		filter.ClassifyAll(rec.Debits, model.TypeDebit, filters)...,
	)

	res := Result{Transfers: rec.Transfers}
	for _, t := range classified {
		switch t.Category {
		case model.CategoryEarning:
			res.Earning = append(res.Earning, t)
		case model.CategorySaving:
			res.Saving = append(res.Saving, t)
		case model.CategorySpending:
			res.Spending = append(res.Spending, t)
		case model.CategoryHidden:
			res.Hidden++
		default:
			res.Unclassified = append(res.Unclassified, t)
		}
	}
	return res
}

// All returns every visible transaction, classified or not.
func (r Result) All() []model.Transaction {
	out := make([]model.Transaction, 0, len(r.Earning)+len(r.Saving)+len(r.Spending)+len(r.Unclassified))
	out = append(out, r.Earning...)
	out = append(out, r.Saving...)
	out = append(out, r.Spending...)
	return append(out, r.Unclassified...)
}

// Category returns the transactions of category c.
func (r Result) Category(c model.Category) []model.Transaction {
	switch c {
	case model.CategoryEarning:
		return r.Earning
	case model.CategorySaving:
		return r.Saving
	case model.CategorySpending:
		return r.Spending
	case model.CategoryUnclassified:
		return r.Unclassified
	default:
		return nil
	}
}

// TimelineInput splits spending by variability for the timeline builder.
// Spending without a variability is in neither series.
func (r Result) TimelineInput() timeline.Input {
	groups := group.Transactions(r.Spending, group.Options{GroupBy: group.ByVariability})
	return timeline.Input{
		Earning:          r.Earning,
		Saving:           r.Saving,
		FixedSpending:    group.Members(groups, string(model.VariabilityFixed)),
		VariableSpending: group.Members(groups, string(model.VariabilityVariable)),
	}
}

// Timeline builds the running balance of r, padded to the given dates.
func (r Result) Timeline(earliest, latest time.Time) []model.Totals {
	return timeline.Build(r.TimelineInput(), earliest, latest)
}
