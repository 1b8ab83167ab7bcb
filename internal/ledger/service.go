package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/greenbacks-app/greenbacks/internal/id"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/period"
)

const fileName = "transactions.csv"

// Service reads and appends month files under a workspace root.
type Service struct {
	root     string
	accounts AccountChecker
}

// NewService creates a ledger Service.
func NewService(root string, accounts AccountChecker) *Service {
	return &Service{root: root, accounts: accounts}
}

// Append assigns IDs to transactions that lack one, validates each
// affected month together with what is already stored, and appends the
// new rows. Nothing is written if any month fails validation. If writing
// a month fails, the months already appended are restored to their
// previous contents. It returns the transactions as stored.
func (s *Service) Append(ctx context.Context, txns []model.CoreTransaction) ([]model.CoreTransaction, error) {
	type monthKey struct{ year, month int }
	byMonth := make(map[monthKey][]model.CoreTransaction)
	var order []monthKey
	for _, tx := range txns {
		k := monthKey{tx.Datetime.Year(), int(tx.Datetime.Month())}
		if _, ok := byMonth[k]; !ok {
			order = append(order, k)
		}
		byMonth[k] = append(byMonth[k], tx)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	for _, k := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		existing, err := s.ReadMonth(k.year, k.month)
		if err != nil {
			return nil, err
		}
		assignIDs(existing, byMonth[k])

		all := append(existing, byMonth[k]...)
		if verrs := ValidateTransactions(all, s.accounts, k.year, k.month); len(verrs) > 0 {
			errs := make([]error, len(verrs))
			for i, ve := range verrs {
				errs[i] = ve
			}
			return nil, fmt.Errorf("validation failed for %04d-%02d: %w", k.year, k.month, errors.Join(errs...))
		}
	}

	var (
		stored []model.CoreTransaction
		undo   []func() error
	)
	for _, k := range order {
		restore, err := s.appendMonth(k.year, k.month, byMonth[k])
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				if rerr := undo[i](); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return nil, err
		}
		undo = append(undo, restore)
		stored = append(stored, byMonth[k]...)
	}
	return stored, nil
}

// assignIDs gives every ID-less transaction in added the next free
// sequence for its account and day.
func assignIDs(existing, added []model.CoreTransaction) {
	next := make(map[string]int)
	bump := func(txID string) {
		account, date, seq, err := id.Parse(txID)
		if err != nil {
			return
		}
		p := id.Prefix(account, date)
		if seq >= next[p] {
			next[p] = seq + 1
		}
	}
	for _, tx := range existing {
		bump(tx.ID)
	}
	for _, tx := range added {
		bump(tx.ID)
	}
	for i := range added {
		if added[i].ID != "" {
			continue
		}
		p := id.Prefix(added[i].AccountID, added[i].Datetime)
		if next[p] == 0 {
			next[p] = 1
		}
		added[i].ID = id.Format(added[i].AccountID, added[i].Datetime, next[p])
		next[p]++
	}
}

// appendMonth appends txns to the month file and returns a function that
// restores the file to its state before the call. A failed append is
// restored before returning.
func (s *Service) appendMonth(year, month int, txns []model.CoreTransaction) (func() error, error) {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	restore := func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("restoring ledger %s: %w", path, err)
		}
		return nil
	}
	isNew := true
	if info, err := os.Stat(path); err == nil {
		isNew = false
		size := info.Size()
		restore = func() error {
			if err := os.Truncate(path, size); err != nil {
				return fmt.Errorf("restoring ledger %s: %w", path, err)
			}
			return nil
		}
	}

	if err := writeMonth(path, isNew, txns); err != nil {
		if rerr := restore(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return nil, err
	}
	return restore, nil
}

func writeMonth(path string, isNew bool, txns []model.CoreTransaction) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendTransactions(f, txns); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return f.Close()
}

// ReadMonth reads all transactions stored for year/month.
func (s *Service) ReadMonth(year, month int) ([]model.CoreTransaction, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

// Transactions returns the stored transactions dated within [start, end],
// in file order.
func (s *Service) Transactions(ctx context.Context, start, end time.Time) ([]model.CoreTransaction, error) {
	w := period.Window{Start: period.Date(start), End: period.Date(end)}
	var out []model.CoreTransaction
	for _, m := range w.Months() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txns, err := s.ReadMonth(m.Start.Year(), int(m.Start.Month()))
		if err != nil {
			return nil, err
		}
		for _, tx := range txns {
			if w.Contains(tx.Datetime) {
				out = append(out, tx)
			}
		}
	}
	return out, nil
}

// Months lists the "YYYY-MM" keys that have a month file, ascending.
func (s *Service) Months() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", fileName))
	if err != nil {
		return nil, fmt.Errorf("listing ledger months: %w", err)
	}
	months := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(s.root, filepath.Dir(m))
		if err != nil {
			return nil, err
		}
		months = append(months, strings.ReplaceAll(filepath.ToSlash(rel), "/", "-"))
	}
	sort.Strings(months)
	return months, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), fileName)
}
