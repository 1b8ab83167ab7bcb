package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/accounts"
	"github.com/greenbacks-app/greenbacks/internal/config"
	"github.com/greenbacks-app/greenbacks/internal/gitops"
	"github.com/greenbacks-app/greenbacks/internal/logger"
	"github.com/greenbacks-app/greenbacks/internal/rules"
	"github.com/greenbacks-app/greenbacks/internal/storage"
)

type initOptions struct {
	name    string
	backend string
	noGit   bool
}

func newInitCommand() *cobra.Command {
	var o initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new greenbacks workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, o)
		},
	}

	cmd.Flags().StringVar(&o.name, "name", "", "workspace name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&o.backend, "backend", config.BackendCSV, "transaction storage: csv or sqlite")
	cmd.Flags().BoolVar(&o.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, o initOptions) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already contains %s", dir, config.FileName)
	}

	cfg := config.Default(o.name)
	cfg.Storage.Backend = o.backend
	if o.noGit {
		cfg.Git.AutoCommit = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dirs := []string{
		"accounts",
		"rules",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := accounts.NewService(accounts.DefaultAccounts()).Save(dir); err != nil {
		return fmt.Errorf("writing accounts: %w", err)
	}

	if err := rules.NewStore(dir).Save(nil); err != nil {
		return fmt.Errorf("writing filters: %w", err)
	}

	// The database and import history are local; the ledger and rules are
	// what gets versioned.
	gitignore := "data/\nlogs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if cfg.Storage.Backend == config.BackendSQLite {
		db, err := storage.NewSQLiteRepository(filepath.Join(dir, cfg.Storage.SQLitePath), logger.FromContext(cmd.Context()))
		if err != nil {
			return fmt.Errorf("creating database: %w", err)
		}
		if err := db.Close(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if o.noGit {
		fmt.Fprintf(out, "Initialized greenbacks workspace at %s\n", dir)
		return nil
	}

	repo := gitops.Repo{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	if err := repo.Init(cmd.Context()); err != nil {
		return err
	}
	hash, err := repo.Commit(cmd.Context(), "init: Initialize "+o.name)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized greenbacks workspace at %s (%s)\n", dir, hash)
	return nil
}
