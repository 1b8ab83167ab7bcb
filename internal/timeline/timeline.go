// Package timeline builds daily running-balance series from categorised
// transactions.
package timeline

import (
	"time"

	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// Input holds the four series a timeline is built from. Spending is
// expected to be split by variability already.
type Input struct {
	Earning          []model.Transaction
	Saving           []model.Transaction
	FixedSpending    []model.Transaction
	VariableSpending []model.Transaction
}

// Build returns one Totals per day from the first to the last observed
// transaction date. A non-zero earliest or latest outside that range adds
// key-only padding days. With no transactions in any series the result is
// nil, whatever window was asked for.
//
// Each band spans the cumulative total of its series:
//
//	saving           [E, E-S]
//	fixedSpending    [E-S, E-S-F]
//	variableSpending [E-S-F, E-S-F-V]
func Build(in Input, earliest, latest time.Time) []model.Totals {
	earning := dailyTotals(in.Earning)
	saving := dailyTotals(in.Saving)
	fixed := dailyTotals(in.FixedSpending)
	variable := dailyTotals(in.VariableSpending)

	first, last, ok := observedRange(earning, saving, fixed, variable)
	if !ok {
		return nil
	}

	var out []model.Totals
	if !earliest.IsZero() {
		for d := day(earliest); d.Before(first); d = d.AddDate(0, 0, 1) {
			out = append(out, model.Totals{Key: d.Format(model.DateFormat)})
		}
	}

	var e, s, f, v int64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(model.DateFormat)
		e += earning[key]
		s += saving[key]
		f += fixed[key]
		v += variable[key]

		afterSaving := e - s
		afterFixed := afterSaving - f
		afterVariable := afterFixed - v
		out = append(out, model.Totals{
			Key:                   key,
			Earning:               ptr(e),
			Saving:                &model.Band{e, afterSaving},
			FixedSpending:         &model.Band{afterSaving, afterFixed},
			VariableSpending:      &model.Band{afterFixed, afterVariable},
			AfterVariableSpending: ptr(afterVariable),
		})
	}

	if !latest.IsZero() {
		for d := last.AddDate(0, 0, 1); !d.After(day(latest)); d = d.AddDate(0, 0, 1) {
			out = append(out, model.Totals{Key: d.Format(model.DateFormat)})
		}
	}
	return out
}

func dailyTotals(txns []model.Transaction) map[string]int64 {
	groups := group.Transactions(txns, group.Options{GroupBy: group.ByDate})
	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[g.Key] = g.Total
	}
	return out
}

func observedRange(series ...map[string]int64) (first, last time.Time, ok bool) {
	var lo, hi string
	for _, s := range series {
		for key := range s {
			if lo == "" || key < lo {
				lo = key
			}
			if key > hi {
				hi = key
			}
		}
	}
	if lo == "" {
		return time.Time{}, time.Time{}, false
	}
	first, _ = time.Parse(model.DateFormat, lo)
	last, _ = time.Parse(model.DateFormat, hi)
	return first, last, true
}

// day truncates t to its calendar date in UTC, matching parsed keys.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ptr(v int64) *int64 { return &v }
