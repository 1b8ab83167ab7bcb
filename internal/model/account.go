package model

// AccountType classifies the accounts a workspace tracks.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
)

// Account represents a row in accounts/accounts.csv.
type Account struct {
	ID          string
	Name        string
	Type        AccountType
	Institution string
	Description string
}
