package model

// Group is one bucket of the aggregation engine.
type Group struct {
	Key          string        `json:"key"`
	Total        int64         `json:"total"`
	Transactions []Transaction `json:"transactions"`
}

// Count returns the number of member transactions.
func (g Group) Count() int { return len(g.Transactions) }

// Band is a [before, after] balance pair drawn as a filled region.
type Band [2]int64

// Width returns band[0] - band[1].
func (b Band) Width() int64 { return b[0] - b[1] }

// Totals is one day of a running-balance timeline. Padding days carry only
// Key.
type Totals struct {
	Key                   string `json:"key"`
	Earning               *int64 `json:"earning,omitempty"`
	Saving                *Band  `json:"saving,omitempty"`
	FixedSpending         *Band  `json:"fixedSpending,omitempty"`
	VariableSpending      *Band  `json:"variableSpending,omitempty"`
	AfterVariableSpending *int64 `json:"afterVariableSpending,omitempty"`
}

// HasData reports whether the day carries numeric fields.
func (t Totals) HasData() bool { return t.Earning != nil }
