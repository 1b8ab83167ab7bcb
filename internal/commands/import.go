package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/importer"
	"github.com/greenbacks-app/greenbacks/internal/importlog"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/period"
)

type importOptions struct {
	format  string
	account string
	feed    string
	keep    bool
}

func newImportCommand(root *rootOptions) *cobra.Command {
	var o importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank exports into the ledger",
		Long: "Import bank exports into the ledger. Without arguments every CSV in\n" +
			"import/ is imported and then moved to import/processed/. Rows already\n" +
			"in the ledger are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()
			return runImport(cmd, root, ws, o, args)
		},
	}

	cmd.Flags().StringVar(&o.format, "format", "", "export format ("+strings.Join(importer.DefaultRegistry().Formats(), ", ")+")")
	cmd.Flags().StringVar(&o.account, "account", "", "account the rows belong to")
	cmd.Flags().StringVar(&o.feed, "feed", "", "feed from greenbacks.yaml supplying format and account")
	cmd.Flags().BoolVar(&o.keep, "keep", false, "leave scanned files in import/")

	return cmd
}

func runImport(cmd *cobra.Command, root *rootOptions, ws *workspace, o importOptions, args []string) error {
	ctx := cmd.Context()

	format, account := o.format, o.account
	if o.feed != "" {
		feed, ok := ws.cfg.Feed(o.feed)
		if !ok {
			return fmt.Errorf("unknown feed %q", o.feed)
		}
		if format == "" {
			format = feed.Format
		}
		if account == "" {
			account = feed.AccountID
		}
	}
	if format == "" {
		format = (&importer.NativeParser{}).Format()
	}

	registry := importer.DefaultRegistry()
	parser := registry.Get(format)
	if parser == nil {
		return fmt.Errorf("unknown format %q (known: %s)", format, strings.Join(registry.Formats(), ", "))
	}
	if account != "" && !ws.accounts.Exists(account) {
		return fmt.Errorf("unknown account %q", account)
	}

	scanned := len(args) == 0
	paths := args
	if scanned {
		files, err := importer.Scan(ws.root)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import")
		return nil
	}

	var entries []importlog.Entry
	added := 0
	for _, path := range paths {
		entry, err := importFile(ctx, ws, parser, account, path)
		if err != nil {
			return fmt.Errorf("importing %s: %w", filepath.Base(path), err)
		}
		entries = append(entries, entry)
		added += entry.Added

		if scanned && !o.keep {
			if err := importer.MarkProcessed(ws.root, filepath.Base(path)); err != nil {
				return err
			}
		}
	}

	if added > 0 {
		hash, err := ws.commit(ctx, fmt.Sprintf("import: %d transactions from %d file(s)", added, len(entries)))
		if err != nil {
			return err
		}
		for i := range entries {
			entries[i].Commit = hash
		}
	}
	if err := importlog.Append(ws.root, entries...); err != nil {
		return err
	}

	return render(cmd, root, entries, func(w io.Writer) {
		row(w, "FILE", "FORMAT", "ACCOUNT", "PARSED", "ADDED", "SKIPPED")
		for _, e := range entries {
			row(w, e.File, e.Format, orDash(e.AccountID), e.Parsed, e.Added, e.Skipped())
		}
	})
}

func importFile(ctx context.Context, ws *workspace, parser importer.Parser, account, path string) (importlog.Entry, error) {
	entry := importlog.Entry{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		File:      filepath.Base(path),
		Format:    parser.Format(),
		AccountID: account,
	}

	f, err := os.Open(path)
	if err != nil {
		return entry, err
	}
	parsed, err := parser.Parse(f, account)
	f.Close()
	if err != nil {
		return entry, err
	}
	entry.Parsed = len(parsed)
	if len(parsed) == 0 {
		return entry, nil
	}

	for _, tx := range parsed {
		if !ws.accounts.Exists(tx.AccountID) {
			return entry, fmt.Errorf("unknown account %q", tx.AccountID)
		}
	}

	first, last := dateRange(parsed)
	existing, err := ws.Transactions(ctx, first, last)
	if err != nil {
		return entry, err
	}
	fresh := importer.NewOnly(existing, parsed)
	if len(fresh) == 0 {
		ws.log.Info().Str("file", entry.File).Int("parsed", entry.Parsed).Msg("already imported")
		return entry, nil
	}

	stored, err := ws.store.Append(ctx, fresh)
	if err != nil {
		return entry, err
	}
	entry.Added = len(stored)
	ws.log.Info().
		Str("file", entry.File).
		Str("format", entry.Format).
		Int("parsed", entry.Parsed).
		Int("added", entry.Added).
		Msg("imported transactions")
	return entry, nil
}

func dateRange(txns []model.CoreTransaction) (first, last time.Time) {
	first, last = txns[0].Datetime, txns[0].Datetime
	for _, tx := range txns[1:] {
		if tx.Datetime.Before(first) {
			first = tx.Datetime
		}
		if tx.Datetime.After(last) {
			last = tx.Datetime
		}
	}
	return period.Date(first), period.Date(last)
}
