package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/ledger"
)

// render writes v as indented JSON when --json is set, and otherwise
// hands a tab-aligned writer to table.
func render(cmd *cobra.Command, opts *rootOptions, v any, table func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func money(minor int64) string { return ledger.FormatAmount(minor) }

// optMoney formats an optional amount, "-" when absent.
func optMoney(v *int64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
