// Package storage keeps transactions and filters in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/greenbacks-app/greenbacks/internal/id"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/rules"
)

// ErrDuplicateID is returned when an inserted transaction ID is taken.
var ErrDuplicateID = errors.New("duplicate transaction id")

// SQLiteRepository stores transactions and the ordered filter list.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath
// and migrates it.
func NewSQLiteRepository(dbPath string, log zerolog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &SQLiteRepository{db: db, log: log}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append inserts txns in one transaction, assigning IDs to rows without
// one. It returns the transactions as stored.
func (r *SQLiteRepository) Append(ctx context.Context, txns []model.CoreTransaction) ([]model.CoreTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transactions`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
	}

	stored := make([]model.CoreTransaction, len(txns))
	for i, t := range txns {
		if t.ID == "" {
			t.ID, err = nextID(ctx, tx, t)
			if err != nil {
				return nil, err
			}
		}
		seq++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, account_id, amount_minor, posted_on, merchant, name, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.AccountID, t.Amount, t.Datetime.Format(model.DateFormat), t.Merchant, t.Name, seq)
		if err != nil {
			var exists int
			if qerr := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE id = ?`, t.ID).Scan(&exists); qerr == nil && exists > 0 {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
			}
			return nil, fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
		stored[i] = t
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	r.log.Info().Int("transactions", len(stored)).Msg("transactions saved to SQLite")
	return stored, nil
}

func nextID(ctx context.Context, tx *sql.Tx, t model.CoreTransaction) (string, error) {
	prefix := id.Prefix(t.AccountID, t.Datetime)
	rows, err := tx.QueryContext(ctx, `SELECT id FROM transactions WHERE id LIKE ? || '%'`, prefix)
	if err != nil {
		return "", fmt.Errorf("read ids: %w", err)
	}
	defer rows.Close()

	maxSeq := 0
	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return "", fmt.Errorf("scan id: %w", err)
		}
		account, _, seq, err := id.Parse(existing)
		if err == nil && account == t.AccountID && seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read ids: %w", err)
	}
	return id.Format(t.AccountID, t.Datetime, maxSeq+1), nil
}

// Transactions returns transactions posted within [start, end] in
// insertion order.
func (r *SQLiteRepository) Transactions(ctx context.Context, start, end time.Time) ([]model.CoreTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, amount_minor, posted_on, merchant, name
		 FROM transactions
		 WHERE posted_on BETWEEN ? AND ?
		 ORDER BY seq`,
		start.Format(model.DateFormat), end.Format(model.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.CoreTransaction
	for rows.Next() {
		var t model.CoreTransaction
		var posted string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &posted, &t.Merchant, &t.Name); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Datetime, err = time.Parse(model.DateFormat, posted)
		if err != nil {
			return nil, fmt.Errorf("parse date of %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return out, nil
}

// Filters returns the filters in evaluation order.
func (r *SQLiteRepository) Filters(ctx context.Context) ([]model.Filter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.id, f.category, f.tag, f.variability,
		        COALESCE(m.property, ''), COALESCE(m.comparator, ''), COALESCE(m.expected_value, ''), m.position IS NOT NULL
		 FROM filters f
		 LEFT JOIN filter_matchers m ON m.filter_id = f.id
		 ORDER BY f.position, m.position`)
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer rows.Close()

	var out []model.Filter
	for rows.Next() {
		var f model.Filter
		var m model.Matcher
		var hasMatcher bool
		if err := rows.Scan(&f.ID, &f.Category, &f.Tag, &f.Variability, &m.Property, &m.Comparator, &m.ExpectedValue, &hasMatcher); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ID != f.ID {
			out = append(out, f)
		}
		if hasMatcher {
			last := &out[len(out)-1]
			last.Matchers = append(last.Matchers, m)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	return out, nil
}

// SaveFilters replaces the stored filter list.
func (r *SQLiteRepository) SaveFilters(ctx context.Context, filters []model.Filter) error {
	for _, f := range filters {
		if err := rules.Validate(f); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM filter_matchers`); err != nil {
		return fmt.Errorf("clear matchers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM filters`); err != nil {
		return fmt.Errorf("clear filters: %w", err)
	}
	for i, f := range filters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO filters (id, position, category, tag, variability) VALUES (?, ?, ?, ?, ?)`,
			f.ID, i, string(f.Category), f.Tag, string(f.Variability)); err != nil {
			return fmt.Errorf("insert filter %s: %w", f.ID, err)
		}
		for j, m := range f.Matchers {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO filter_matchers (filter_id, position, property, comparator, expected_value) VALUES (?, ?, ?, ?, ?)`,
				f.ID, j, string(m.Property), string(m.Comparator.Normalize()), m.ExpectedValue); err != nil {
				return fmt.Errorf("insert matcher %d of %s: %w", j, f.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Int("filters", len(filters)).Msg("filters saved to SQLite")
	return nil
}
