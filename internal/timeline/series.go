package timeline

import (
	"sort"

	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// Series names a line of the cashflow views.
type Series string

const (
	SeriesEarning               Series = "earning"
	SeriesSaving                Series = "saving"
	SeriesAfterSaving           Series = "afterSaving"
	SeriesFixedSpending         Series = "fixedSpending"
	SeriesAfterFixedSpending    Series = "afterFixedSpending"
	SeriesVariableSpending      Series = "variableSpending"
	SeriesAfterVariableSpending Series = "afterVariableSpending"
)

// AllSeries lists every series in display order.
var AllSeries = []Series{
	SeriesEarning,
	SeriesSaving,
	SeriesAfterSaving,
	SeriesFixedSpending,
	SeriesAfterFixedSpending,
	SeriesVariableSpending,
	SeriesAfterVariableSpending,
}

// Values maps a series to its value. A missing series has not been
// computed, which is distinct from a computed zero.
type Values map[Series]int64

// Get returns the value of s and whether it is present.
func (v Values) Get(s Series) (int64, bool) {
	n, ok := v[s]
	return n, ok
}

// TotalsBySeries reads the series totals from the last day of totals that
// carries data. It returns nil when no day does.
func TotalsBySeries(totals []model.Totals) Values {
	last, ok := lastWithData(totals)
	if !ok {
		return nil
	}
	return Values{
		SeriesEarning:               *last.Earning,
		SeriesSaving:                last.Saving.Width(),
		SeriesAfterSaving:           last.Saving[1],
		SeriesFixedSpending:         last.FixedSpending.Width(),
		SeriesAfterFixedSpending:    last.FixedSpending[1],
		SeriesVariableSpending:      last.VariableSpending.Width(),
		SeriesAfterVariableSpending: *last.AfterVariableSpending,
	}
}

// RemainingBySeries returns the balance left after each outgoing series,
// taken from the last day of totals that carries data.
func RemainingBySeries(totals []model.Totals) Values {
	last, ok := lastWithData(totals)
	if !ok {
		return nil
	}
	return Values{
		SeriesEarning:          *last.Earning,
		SeriesSaving:           last.Saving[1],
		SeriesFixedSpending:    last.FixedSpending[1],
		SeriesVariableSpending: last.VariableSpending[1],
	}
}

func lastWithData(totals []model.Totals) (model.Totals, bool) {
	for i := len(totals) - 1; i >= 0; i-- {
		if totals[i].HasData() {
			return totals[i], true
		}
	}
	return model.Totals{}, false
}

// MonthTotal is the per-month summary of the four input series.
type MonthTotal struct {
	Month  string `json:"month"`
	Values Values `json:"values"`
}

// MonthTotals sums each series per calendar month and derives the
// remaining balance after saving, fixed spending and variable spending.
// A series with no transactions in a month is absent from that month's
// values and counts as zero in the derived balances, which are always set.
// Months are returned in ascending order.
func MonthTotals(in Input) []MonthTotal {
	byMonth := make(map[string]Values)
	add := func(s Series, txns []model.Transaction) {
		for _, g := range group.Transactions(txns, group.Options{GroupBy: group.ByMonth}) {
			if byMonth[g.Key] == nil {
				byMonth[g.Key] = Values{}
			}
			byMonth[g.Key][s] = g.Total
		}
	}
	add(SeriesEarning, in.Earning)
	add(SeriesSaving, in.Saving)
	add(SeriesFixedSpending, in.FixedSpending)
	add(SeriesVariableSpending, in.VariableSpending)
	if len(byMonth) == 0 {
		return nil
	}

	out := make([]MonthTotal, 0, len(byMonth))
	for month, v := range byMonth {
		afterSaving := v[SeriesEarning] - v[SeriesSaving]
		afterFixed := afterSaving - v[SeriesFixedSpending]
		v[SeriesAfterSaving] = afterSaving
		v[SeriesAfterFixedSpending] = afterFixed
		v[SeriesAfterVariableSpending] = afterFixed - v[SeriesVariableSpending]
		out = append(out, MonthTotal{Month: month, Values: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
