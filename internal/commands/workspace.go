package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/accounts"
	"github.com/greenbacks-app/greenbacks/internal/config"
	"github.com/greenbacks-app/greenbacks/internal/dashboard"
	"github.com/greenbacks-app/greenbacks/internal/gitops"
	"github.com/greenbacks-app/greenbacks/internal/ledger"
	"github.com/greenbacks-app/greenbacks/internal/logger"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/rules"
	"github.com/greenbacks-app/greenbacks/internal/storage"
)

// transactionStore is the part of a storage backend the commands use.
type transactionStore interface {
	Transactions(ctx context.Context, start, end time.Time) ([]model.CoreTransaction, error)
	Append(ctx context.Context, txns []model.CoreTransaction) ([]model.CoreTransaction, error)
}

// workspace is an opened greenbacks directory. It implements
// dashboard.Source over the configured backend.
type workspace struct {
	root     string
	cfg      *config.Config
	accounts *accounts.Service
	store    transactionStore
	rules    *rules.Store
	db       *storage.SQLiteRepository
	log      zerolog.Logger
}

func openWorkspace(cmd *cobra.Command, opts *rootOptions) (*workspace, error) {
	root, err := filepath.Abs(opts.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace: %w", err)
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(cmd.Context())
	if opts.logLevel == "" {
		log = log.Level(logger.ParseLevel(cfg.LogLevel))
	}
	log = log.With().Str("workspace", cfg.Workspace.Name).Logger()

	accts, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		root:     root,
		cfg:      cfg,
		accounts: accts,
		rules:    rules.NewStore(root),
		log:      log,
	}
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := storage.NewSQLiteRepository(filepath.Join(root, cfg.Storage.SQLitePath), log)
		if err != nil {
			return nil, err
		}
		ws.db = db
		ws.store = db
	default:
		ws.store = ledger.NewService(root, accts)
	}
	log.Debug().Str("backend", cfg.Storage.Backend).Str("root", root).Msg("opened workspace")
	return ws, nil
}

func (w *workspace) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

func (w *workspace) Transactions(ctx context.Context, start, end time.Time) ([]model.CoreTransaction, error) {
	return w.store.Transactions(ctx, start, end)
}

// Filters reads from the database on the sqlite backend, which mirrors
// rules/filters.yaml through syncFilters.
func (w *workspace) Filters(ctx context.Context) ([]model.Filter, error) {
	if w.db != nil {
		return w.db.Filters(ctx)
	}
	return w.rules.Filters(ctx)
}

// syncFilters copies the filter file into the database, if there is one.
func (w *workspace) syncFilters(ctx context.Context) error {
	if w.db == nil {
		return nil
	}
	filters, err := w.rules.List()
	if err != nil {
		return err
	}
	return w.db.SaveFilters(ctx, filters)
}

func (w *workspace) dashboard() (*dashboard.Service, error) {
	return dashboard.NewService(w, w.log)
}

// commit records the workspace state in git when auto_commit is on. It
// returns the short hash, or "" when nothing was committed.
func (w *workspace) commit(ctx context.Context, message string) (string, error) {
	if !w.cfg.Git.AutoCommit || !gitops.IsRepo(w.root) {
		return "", nil
	}
	repo := gitops.Repo{Dir: w.root, AuthorName: w.cfg.Git.AuthorName, AuthorEmail: w.cfg.Git.AuthorEmail}
	hash, err := repo.Commit(ctx, message)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	w.log.Info().Str("commit", hash).Msg(message)
	return hash, nil
}
