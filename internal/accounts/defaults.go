package accounts

import "github.com/greenbacks-app/greenbacks/internal/model"

// DefaultAccounts returns the accounts a new workspace starts with.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{ID: "checking", Name: "Checking", Type: model.AccountTypeChecking, Description: "Everyday account"},
		{ID: "savings", Name: "Savings", Type: model.AccountTypeSavings, Description: "Emergency fund"},
		{ID: "card", Name: "Credit Card", Type: model.AccountTypeCredit},
	}
}
