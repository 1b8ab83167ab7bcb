package ledger

import (
	"errors"
	"fmt"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

// ErrDuplicateID is wrapped by validation errors for repeated IDs.
var ErrDuplicateID = errors.New("duplicate transaction id")

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	ID          string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.ID, e.Description)
}

// Unwrap exposes ErrDuplicateID for invariant 1.
func (e ValidationError) Unwrap() error {
	if e.Invariant == 1 {
		return ErrDuplicateID
	}
	return nil
}

// AccountChecker tests whether an account ID exists.
type AccountChecker interface {
	Exists(id string) bool
}

// ValidateTransactions enforces the month file invariants:
//  1. IDs are unique
//  2. IDs are non-empty
//  3. accounts exist
//  4. dates fall in the file's month
//  5. each row has a name or merchant
func ValidateTransactions(txns []model.CoreTransaction, accounts AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(txns))

	for _, tx := range txns {
		if tx.ID == "" {
			errs = append(errs, ValidationError{Invariant: 2, Description: "missing id"})
		} else if seen[tx.ID] {
			errs = append(errs, ValidationError{Invariant: 1, ID: tx.ID, Description: "id already used this month"})
		}
		seen[tx.ID] = true

		if !accounts.Exists(tx.AccountID) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				ID:          tx.ID,
				Description: fmt.Sprintf("unknown account %q", tx.AccountID),
			})
		}

		if tx.Datetime.Year() != year || int(tx.Datetime.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   4,
				ID:          tx.ID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", tx.Date(), year, month),
			})
		}

		if tx.Name == "" && tx.Merchant == "" {
			errs = append(errs, ValidationError{Invariant: 5, ID: tx.ID, Description: "needs a name or merchant"})
		}
	}
	return errs
}
