// Package id formats the identifiers given to imported transactions.
package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "20060102"

// Format returns a transaction ID like "chk-20250103-002": the account,
// the posting date and a per-account, per-day sequence starting at 1.
func Format(accountID string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", accountID, date.Format(dateLayout), seq)
}

// Parse splits an ID produced by Format. Account IDs may themselves
// contain dashes.
func Parse(id string) (accountID string, date time.Time, seq int, err error) {
	last := strings.LastIndex(id, "-")
	if last < 0 {
		return "", time.Time{}, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}
	mid := strings.LastIndex(id[:last], "-")
	if mid <= 0 {
		return "", time.Time{}, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}

	date, err = time.Parse(dateLayout, id[mid+1:last])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("invalid date in transaction ID %q: %w", id, err)
	}
	seq, err = strconv.Atoi(id[last+1:])
	if err != nil {
		return "", time.Time{}, 0, fmt.Errorf("invalid sequence in transaction ID %q: %w", id, err)
	}
	return id[:mid], date, seq, nil
}

// Prefix returns the part of an ID shared by every transaction of an
// account on one day: "chk-20250103-".
func Prefix(accountID string, date time.Time) string {
	return accountID + "-" + date.Format(dateLayout) + "-"
}
