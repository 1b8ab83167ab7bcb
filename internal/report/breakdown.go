// Package report derives the summary views shown for a query window from
// classified transactions. Everything here is built on the group package.
package report

import (
	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

// VariabilityGroup is one side of a category breakdown.
type VariabilityGroup struct {
	Total        int64               `json:"total"`
	Transactions []model.Transaction `json:"transactions,omitempty"`
	Tags         []model.Group       `json:"tags,omitempty"`
}

// Breakdown splits a category's transactions by variability.
type Breakdown struct {
	Category    model.Category   `json:"category"`
	Total       int64            `json:"total"`
	Fixed       VariabilityGroup `json:"fixed"`
	Variable    VariabilityGroup `json:"variable"`
	Unspecified VariabilityGroup `json:"unspecified"`
}

// SplitCategory builds the breakdown of txns, which should all belong to
// category. Tags inside each side are ordered by total, largest first.
func SplitCategory(category model.Category, txns []model.Transaction) Breakdown {
	groups := group.Transactions(txns, group.Options{GroupBy: group.ByVariability})
	return Breakdown{
		Category:    category,
		Total:       group.Total(txns),
		Fixed:       variabilityGroup(groups, string(model.VariabilityFixed)),
		Variable:    variabilityGroup(groups, string(model.VariabilityVariable)),
		Unspecified: variabilityGroup(groups, group.UnspecifiedKey),
	}
}

func variabilityGroup(groups []model.Group, key string) VariabilityGroup {
	g, ok := group.Find(groups, key)
	if !ok {
		return VariabilityGroup{}
	}
	return VariabilityGroup{
		Total:        g.Total,
		Transactions: g.Transactions,
		Tags: group.Transactions(g.Transactions, group.Options{
			GroupBy:      group.ByTag,
			SortGroupsBy: group.SortGroupsByTotal,
		}),
	}
}
