package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/filter"
	"github.com/greenbacks-app/greenbacks/internal/model"
)

func newFilterCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage the filters that classify transactions",
	}
	cmd.AddCommand(
		newFilterAddCommand(root),
		newFilterListCommand(root),
		newFilterRemoveCommand(root),
		newFilterMoveCommand(root),
		newFilterTagsCommand(root),
	)
	return cmd
}

// parseMatcher reads "property=value", "property>value" or
// "property<value".
func parseMatcher(expr string) (model.Matcher, error) {
	i := strings.IndexAny(expr, "=<>")
	if i <= 0 {
		return model.Matcher{}, fmt.Errorf("invalid matcher %q: want property=value, property>value or property<value", expr)
	}
	m := model.Matcher{
		Property:      model.Property(strings.TrimSpace(expr[:i])),
		ExpectedValue: expr[i+1:],
	}
	switch expr[i] {
	case '>':
		m.Comparator = model.ComparatorGreaterThan
	case '<':
		m.Comparator = model.ComparatorLessThan
	}
	return m, nil
}

func formatMatcher(m model.Matcher) string {
	op := "="
	switch m.Comparator {
	case model.ComparatorGreaterThan:
		op = ">"
	case model.ComparatorLessThan:
		op = "<"
	}
	return string(m.Property) + op + m.ExpectedValue
}

func newFilterAddCommand(root *rootOptions) *cobra.Command {
	var (
		f        model.Filter
		matches  []string
		position int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a filter",
		Example: "  greenbacks filter add --match merchant='WHOLE FOODS' --category Spending --tag Groceries --variability Variable\n" +
			"  greenbacks filter add --match name=PAYROLL --match 'amount<-100000' --category Earning --position 0",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, expr := range matches {
				m, err := parseMatcher(expr)
				if err != nil {
					return err
				}
				f.Matchers = append(f.Matchers, m)
			}

			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()

			added, err := ws.rules.Add(f, position)
			if err != nil {
				return err
			}
			if err := ws.syncFilters(cmd.Context()); err != nil {
				return err
			}
			if _, err := ws.commit(cmd.Context(), "filters: add "+added.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added filter %s\n", added.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.ID, "id", "", "filter id (generated when empty)")
	cmd.Flags().StringArrayVar(&matches, "match", nil, "matcher, repeatable: property=value, property>value, property<value")
	cmd.Flags().StringVar((*string)(&f.Category), "category", "", "category to assign: Earning, Saving, Spending or Hidden")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "tag to assign")
	cmd.Flags().StringVar((*string)(&f.Variability), "variability", "", "variability to assign: Fixed or Variable")
	cmd.Flags().IntVar(&position, "position", -1, "position in the evaluation order (default last)")

	return cmd
}

func newFilterListCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List filters in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()

			filters, err := ws.rules.List()
			if err != nil {
				return err
			}
			return render(cmd, root, filters, func(w io.Writer) {
				row(w, "#", "ID", "CATEGORY", "TAG", "VARIABILITY", "MATCHERS")
				for i, f := range filters {
					ms := make([]string, len(f.Matchers))
					for j, m := range f.Matchers {
						ms[j] = formatMatcher(m)
					}
					row(w, i, f.ID, orDash(string(f.Category)), orDash(f.Tag), orDash(string(f.Variability)), strings.Join(ms, " & "))
				}
			})
		},
	}
}

func newFilterRemoveCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.rules.Remove(args[0]); err != nil {
				return err
			}
			if err := ws.syncFilters(cmd.Context()); err != nil {
				return err
			}
			if _, err := ws.commit(cmd.Context(), "filters: remove "+args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed filter %s\n", args[0])
			return nil
		},
	}
}

func newFilterMoveCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a filter to a new position in the evaluation order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}

			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.rules.Move(args[0], pos); err != nil {
				return err
			}
			if err := ws.syncFilters(cmd.Context()); err != nil {
				return err
			}
			if _, err := ws.commit(cmd.Context(), fmt.Sprintf("filters: move %s to %d", args[0], pos)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved filter %s to %d\n", args[0], pos)
			return nil
		},
	}
}

func newFilterTagsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with the filters that assign them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd, root)
			if err != nil {
				return err
			}
			defer ws.Close()

			filters, err := ws.rules.List()
			if err != nil {
				return err
			}
			byTag := filter.GroupByTag(filters)
			return render(cmd, root, byTag, func(w io.Writer) {
				row(w, "TAG", "FILTERS", "IDS")
				for _, g := range byTag {
					ids := make([]string, len(g.Filters))
					for i, f := range g.Filters {
						ids[i] = f.ID
					}
					row(w, g.Tag, len(g.Filters), strings.Join(ids, ","))
				}
			})
		},
	}
}
