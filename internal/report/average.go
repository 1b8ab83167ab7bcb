package report

import (
	"github.com/shopspring/decimal"

	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// RemainderKey labels the bucket holding tags past the visible limit.
const RemainderKey = "All other transactions"

// DefaultVisibleTags is the number of tags listed before the remainder.
const DefaultVisibleTags = 5

// TagAverage is a tag's monthly average over the summary's months.
type TagAverage struct {
	Tag     string        `json:"tag"`
	Total   int64         `json:"total"`
	Average int64         `json:"average"`
	Months  []model.Group `json:"months"`
}

// AverageSummary describes average monthly amounts, overall and per tag.
type AverageSummary struct {
	MonthCount     int           `json:"monthCount"`
	MonthlyAverage int64         `json:"monthlyAverage"`
	Months         []model.Group `json:"months"`
	Tags           []TagAverage  `json:"tags"`
	// Remainder folds every tag past the visible limit. It is nil when
	// there are no such tags or their average is not positive.
	Remainder *TagAverage `json:"remainder,omitempty"`
}

// AverageByTag averages txns per month with at least one transaction.
// Tags are ordered by total and the first visible are listed; a negative
// visible lists every tag. It returns a zero summary for empty input.
func AverageByTag(txns []model.Transaction, visible int) AverageSummary {
	months := group.Transactions(txns, group.Options{GroupBy: group.ByMonth})
	if months == nil {
		return AverageSummary{}
	}
	n := len(months)

	tags := group.Transactions(txns, group.Options{GroupBy: group.ByTag, SortGroupsBy: group.SortGroupsByTotal})
	top, rest := group.Split(tags, visible)

	summary := AverageSummary{
		MonthCount:     n,
		MonthlyAverage: average(group.Total(txns), n),
		Months:         months,
		Tags:           make([]TagAverage, 0, len(top)),
	}
	for _, g := range top {
		summary.Tags = append(summary.Tags, tagAverage(g.Key, g.Transactions, n))
	}
	if len(rest) > 0 {
		remainder := tagAverage(RemainderKey, group.Flatten(rest), n)
		if remainder.Average > 0 {
			summary.Remainder = &remainder
		}
	}
	return summary
}

func tagAverage(tag string, txns []model.Transaction, months int) TagAverage {
	total := group.Total(txns)
	return TagAverage{
		Tag:     tag,
		Total:   total,
		Average: average(total, months),
		Months:  group.Transactions(txns, group.Options{GroupBy: group.ByMonth}),
	}
}

// average divides total by n, rounding half away from zero.
func average(total int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(n))).Round(0).IntPart()
}
