package model

import (
	"strconv"
	"time"
)

// DateFormat is the ISO calendar date layout used for keys and storage.
const DateFormat = "2006-01-02"

// MonthFormat is the layout of month keys. It sorts lexically in
// chronological order.
const MonthFormat = "2006-01"

// Untagged is the reserved tag for transactions without an assigned tag.
const Untagged = "Untagged"

// CoreTransaction is a transaction as supplied by a bank feed or store.
// Amount is in minor currency units; in a raw feed a negative amount is
// money coming into the account.
type CoreTransaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Amount    int64     `json:"amount"`
	Datetime  time.Time `json:"datetime"`
	Merchant  string    `json:"merchant"`
	Name      string    `json:"name"`
}

// Date returns the transaction's calendar date as an ISO string.
func (t CoreTransaction) Date() string {
	return t.Datetime.Format(DateFormat)
}

// Month returns the transaction's calendar month as "YYYY-MM".
func (t CoreTransaction) Month() string {
	return t.Datetime.Format(MonthFormat)
}

// Value returns the string form of the named field. The second result is
// false when the property is not a transaction field.
func (t CoreTransaction) Value(p Property) (string, bool) {
	switch p {
	case PropertyAccountID:
		return t.AccountID, true
	case PropertyAmount:
		return strconv.FormatInt(t.Amount, 10), true
	case PropertyDatetime:
		return t.Date(), true
	case PropertyID:
		return t.ID, true
	case PropertyMerchant:
		return t.Merchant, true
	case PropertyName:
		return t.Name, true
	default:
		return "", false
	}
}

// Category is the top-level classification assigned by a filter.
type Category string

const (
	// CategoryUnclassified marks a transaction no filter matched.
	CategoryUnclassified Category = ""
	CategoryEarning      Category = "Earning"
	CategorySaving       Category = "Saving"
	CategorySpending     Category = "Spending"
	// CategoryHidden suppresses a transaction from every aggregate.
	CategoryHidden Category = "Hidden"
)

// Categories lists the assignable categories in display order.
var Categories = []Category{CategoryEarning, CategorySaving, CategorySpending, CategoryHidden}

// Valid reports whether c is an assignable category.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// TransactionType records how reconciliation saw a transaction.
type TransactionType string

const (
	TypeCredit   TransactionType = "Credit"
	TypeDebit    TransactionType = "Debit"
	TypeTransfer TransactionType = "Transfer"
)

// Variability sub-classifies a transaction within its category.
type Variability string

const (
	VariabilityUnspecified Variability = ""
	VariabilityFixed       Variability = "Fixed"
	VariabilityVariable    Variability = "Variable"
)

// Valid reports whether v is unspecified or a known variability.
func (v Variability) Valid() bool {
	return v == VariabilityUnspecified || v == VariabilityFixed || v == VariabilityVariable
}

// Transaction is a CoreTransaction labelled by the filter engine. Amount is
// a positive magnitude for both credits and debits.
type Transaction struct {
	CoreTransaction
	Category    Category        `json:"category,omitempty"`
	Type        TransactionType `json:"type"`
	Tag         string          `json:"tag,omitempty"`
	Variability Variability     `json:"variability,omitempty"`
	// FilteredBy is the ID of the filter that classified the transaction.
	FilteredBy string `json:"filteredBy,omitempty"`
}

// TagOrUntagged returns the tag, or Untagged when none is set.
func (t Transaction) TagOrUntagged() string {
	if t.Tag == "" {
		return Untagged
	}
	return t.Tag
}

// Transfer is a reconciled debit/credit pair of equal magnitude across two
// accounts.
type Transfer struct {
	ID                   string    `json:"id"`
	Amount               int64     `json:"amount"`
	Datetime             time.Time `json:"datetime"`
	Merchant             string    `json:"merchant"`
	Name                 string    `json:"name"`
	SourceAccountID      string    `json:"sourceAccountId"`
	DestinationAccountID string    `json:"destinationAccountId"`
}
