package report

import (
	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// DefaultProjectionMonths is the number of prior months projections
// average over.
const DefaultProjectionMonths = 3

// Projection is the expected fixed earning and spending for a month.
type Projection struct {
	FixedEarning  int64 `json:"fixedEarning"`
	FixedSpending int64 `json:"fixedSpending"`
}

// Projections averages the fixed earning and fixed spending in txns over
// months, which is the length of the window txns were read from. Months
// without transactions still count.
func Projections(earning, spending []model.Transaction, months int) Projection {
	return Projection{
		FixedEarning:  average(fixedTotal(earning), months),
		FixedSpending: average(fixedTotal(spending), months),
	}
}

func fixedTotal(txns []model.Transaction) int64 {
	groups := group.Transactions(txns, group.Options{GroupBy: group.ByVariability})
	g, _ := group.Find(groups, string(model.VariabilityFixed))
	return g.Total
}
