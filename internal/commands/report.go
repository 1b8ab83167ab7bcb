package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenbacks-app/greenbacks/internal/dashboard"
	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/period"
	"github.com/greenbacks-app/greenbacks/internal/report"
	"github.com/greenbacks-app/greenbacks/internal/timeline"
)

// now is replaced in tests.
var now = time.Now

type windowOptions struct {
	month    string
	start    string
	end      string
	trailing int
}

// resolve picks the query window from the flags, in order: --month,
// --start/--end, --trailing, then fallback.
func (o windowOptions) resolve(fallback period.Window) (period.Window, error) {
	switch {
	case o.month != "":
		return period.ParseMonth(o.month)
	case o.start != "" || o.end != "":
		if o.start == "" || o.end == "" {
			return period.Window{}, fmt.Errorf("--start and --end must be given together")
		}
		return period.Parse(o.start, o.end)
	case o.trailing > 0:
		return period.Trailing(now(), o.trailing), nil
	}
	return fallback, nil
}

func parseCategory(s string) (model.Category, error) {
	if s == group.UnclassifiedKey {
		return model.CategoryUnclassified, nil
	}
	c := model.Category(s)
	if !c.Valid() || c == model.CategoryHidden {
		return "", fmt.Errorf("invalid category %q: must be one of Earning, Saving, Spending, Unclassified", s)
	}
	return c, nil
}

// reportContext is what every report subcommand works from.
type reportContext struct {
	ws     *workspace
	svc    *dashboard.Service
	window period.Window
}

func (rc *reportContext) close() {
	rc.svc.Close()
	rc.ws.Close()
}

func newReportCommand(root *rootOptions) *cobra.Command {
	var wo windowOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries of classified transactions over a window",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&wo.month, "month", "", "month to report on (YYYY-MM)")
	flags.StringVar(&wo.start, "start", "", "first date of the window (YYYY-MM-DD)")
	flags.StringVar(&wo.end, "end", "", "last date of the window (YYYY-MM-DD)")
	flags.IntVar(&wo.trailing, "trailing", 0, "report on the N full months before this one")

	// open loads the workspace and resolves the window. trend selects the
	// trailing trend months as the default window instead of this month.
	open := func(cmd *cobra.Command, trend bool) (*reportContext, error) {
		ws, err := openWorkspace(cmd, root)
		if err != nil {
			return nil, err
		}
		fallback := period.Month(now())
		if trend {
			fallback = period.Trailing(now(), ws.cfg.Dashboard.TrendMonths)
		}
		w, err := wo.resolve(fallback)
		if err != nil {
			ws.Close()
			return nil, err
		}
		svc, err := ws.dashboard()
		if err != nil {
			ws.Close()
			return nil, err
		}
		return &reportContext{ws: ws, svc: svc, window: w}, nil
	}

	cmd.AddCommand(
		newReportTimelineCommand(root, open),
		newReportMonthsCommand(root, open),
		newReportTagsCommand(root, open),
		newReportBreakdownCommand(root, open),
		newReportUntaggedCommand(root, open),
		newReportTransfersCommand(root, open),
		newReportGroupsCommand(root, open),
		newReportProjectionsCommand(root, open),
	)
	return cmd
}

type openFunc func(cmd *cobra.Command, trend bool) (*reportContext, error)

func bandWidth(b *model.Band) string {
	if b == nil {
		return "-"
	}
	return money(b.Width())
}

func seriesCol(v timeline.Values, s timeline.Series) string {
	n, ok := v.Get(s)
	if !ok {
		return "-"
	}
	return money(n)
}

func newReportTimelineCommand(root *rootOptions, open openFunc) *cobra.Command {
	var byMonth bool

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Running balance of earning, saving and spending, day by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			if byMonth {
				return renderMonthlyTimelines(cmd, root, rc)
			}

			totals, err := rc.svc.Timeline(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			return render(cmd, root, totals, func(w io.Writer) {
				row(w, "DATE", "EARNING", "SAVING", "FIXED", "VARIABLE", "LEFT")
				for _, t := range totals {
					row(w, t.Key, optMoney(t.Earning), bandWidth(t.Saving), bandWidth(t.FixedSpending),
						bandWidth(t.VariableSpending), optMoney(t.AfterVariableSpending))
				}
			})
		},
	}
	cmd.Flags().BoolVar(&byMonth, "by-month", false, "summarise each month of the window separately")
	return cmd
}

type monthSummary struct {
	Month     string          `json:"month"`
	Totals    timeline.Values `json:"totals,omitempty"`
	Remaining timeline.Values `json:"remaining,omitempty"`
}

func renderMonthlyTimelines(cmd *cobra.Command, root *rootOptions, rc *reportContext) error {
	monthly, err := rc.svc.MonthlyTimelines(cmd.Context(), rc.window)
	if err != nil {
		return err
	}
	months := rc.window.Months()
	summaries := make([]monthSummary, len(months))
	for i, m := range months {
		summaries[i] = monthSummary{
			Month:     m.Key(),
			Totals:    timeline.TotalsBySeries(monthly[i]),
			Remaining: timeline.RemainingBySeries(monthly[i]),
		}
	}
	return render(cmd, root, summaries, func(w io.Writer) {
		row(w, "MONTH", "EARNING", "SAVING", "FIXED", "VARIABLE", "LEFT")
		for _, s := range summaries {
			row(w, s.Month,
				seriesCol(s.Totals, timeline.SeriesEarning),
				seriesCol(s.Totals, timeline.SeriesSaving),
				seriesCol(s.Totals, timeline.SeriesFixedSpending),
				seriesCol(s.Totals, timeline.SeriesVariableSpending),
				seriesCol(s.Remaining, timeline.SeriesVariableSpending))
		}
	})
}

func newReportMonthsCommand(root *rootOptions, open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "Per-month totals for each series (defaults to the trend months)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer rc.close()

			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			totals := timeline.MonthTotals(res.TimelineInput())
			return render(cmd, root, totals, func(w io.Writer) {
				row(w, "MONTH", "EARNING", "SAVING", "AFTER SAVING", "FIXED", "AFTER FIXED", "VARIABLE", "LEFT")
				for _, m := range totals {
					row(w, m.Month,
						seriesCol(m.Values, timeline.SeriesEarning),
						seriesCol(m.Values, timeline.SeriesSaving),
						seriesCol(m.Values, timeline.SeriesAfterSaving),
						seriesCol(m.Values, timeline.SeriesFixedSpending),
						seriesCol(m.Values, timeline.SeriesAfterFixedSpending),
						seriesCol(m.Values, timeline.SeriesVariableSpending),
						seriesCol(m.Values, timeline.SeriesAfterVariableSpending))
				}
			})
		},
	}
}

func newReportTagsCommand(root *rootOptions, open openFunc) *cobra.Command {
	var (
		category string
		visible  int
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Monthly average per tag (defaults to the trend months)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseCategory(category)
			if err != nil {
				return err
			}
			rc, err := open(cmd, true)
			if err != nil {
				return err
			}
			defer rc.close()

			if !cmd.Flags().Changed("visible") {
				visible = rc.ws.cfg.Dashboard.VisibleTags
			}
			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			summary := report.AverageByTag(res.Category(c), visible)
			return render(cmd, root, summary, func(w io.Writer) {
				row(w, "TAG", "TOTAL", "AVERAGE", "MONTHS")
				for _, t := range summary.Tags {
					row(w, t.Tag, money(t.Total), money(t.Average), len(t.Months))
				}
				if r := summary.Remainder; r != nil {
					row(w, r.Tag, money(r.Total), money(r.Average), len(r.Months))
				}
				row(w, "Monthly average", "", money(summary.MonthlyAverage), summary.MonthCount)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(model.CategorySpending), "category to average")
	cmd.Flags().IntVar(&visible, "visible", report.DefaultVisibleTags, "tags listed before the remainder (-1 for all)")
	return cmd
}

func newReportBreakdownCommand(root *rootOptions, open openFunc) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "A category split into fixed and variable, by tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseCategory(category)
			if err != nil {
				return err
			}
			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			b := report.SplitCategory(c, res.Category(c))
			return render(cmd, root, b, func(w io.Writer) {
				row(w, "VARIABILITY", "TAG", "COUNT", "TOTAL")
				sides := []struct {
					name string
					vg   report.VariabilityGroup
				}{
					{string(model.VariabilityFixed), b.Fixed},
					{string(model.VariabilityVariable), b.Variable},
					{group.UnspecifiedKey, b.Unspecified},
				}
				for _, side := range sides {
					if len(side.vg.Transactions) == 0 {
						continue
					}
					row(w, side.name, "", len(side.vg.Transactions), money(side.vg.Total))
					for _, g := range side.vg.Tags {
						row(w, "", g.Key, g.Count(), money(g.Total))
					}
				}
				row(w, "Total", "", "", money(b.Total))
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", string(model.CategorySpending), "category to break down")
	return cmd
}

func transactionTable(w io.Writer, txns []model.Transaction) {
	row(w, "DATE", "ACCOUNT", "AMOUNT", "MERCHANT", "NAME", "CATEGORY", "TAG")
	for _, t := range txns {
		category := string(t.Category)
		if t.Category == model.CategoryUnclassified {
			category = group.UnclassifiedKey
		}
		row(w, t.Date(), t.AccountID, money(t.Amount), orDash(t.Merchant), orDash(t.Name), category, orDash(t.Tag))
	}
}

func newReportUntaggedCommand(root *rootOptions, open openFunc) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "untagged",
		Short: "Transactions with no tag, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := parseCategory(category)
			if err != nil {
				return err
			}
			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			candidates := make([]model.Transaction, 0, len(res.Category(c))+len(res.Unclassified))
			candidates = append(candidates, res.Category(c)...)
			if c != model.CategoryUnclassified {
				candidates = append(candidates, res.Unclassified...)
			}
			txns := report.Untagged(candidates, report.NaturalType(c), c)
			return render(cmd, root, txns, func(w io.Writer) { transactionTable(w, txns) })
		},
	}
	cmd.Flags().StringVar(&category, "category", string(model.CategorySpending), "category to list")
	return cmd
}

func newReportTransfersCommand(root *rootOptions, open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "transfers",
		Short: "Money moved between your own accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			return render(cmd, root, res.Transfers, func(w io.Writer) {
				row(w, "DATE", "FROM", "TO", "AMOUNT", "NAME")
				for _, t := range res.Transfers {
					row(w, t.Datetime.Format(model.DateFormat), t.SourceAccountID, t.DestinationAccountID, money(t.Amount), orDash(t.Name))
				}
			})
		},
	}
}

type groupsResult struct {
	Groups []model.Group `json:"groups"`
	Rest   *model.Group  `json:"rest,omitempty"`
}

func newReportGroupsCommand(root *rootOptions, open openFunc) *cobra.Command {
	var (
		by       string
		sortBy   string
		category string
		top      int
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group transactions by date, month, tag, category or variability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := group.Options{
				GroupBy:            group.By(by),
				SortGroupsBy:       group.GroupSort(sortBy),
				SortTransactionsBy: group.SortTransactionsByAmount,
			}
			switch opts.GroupBy {
			case group.ByDate, group.ByMonth, group.ByTag, group.ByCategory, group.ByVariability:
			default:
				return fmt.Errorf("invalid --by %q: must be one of date, month, tag, category, variability", by)
			}
			switch opts.SortGroupsBy {
			case group.SortGroupsByKey, group.SortGroupsByTotal, group.SortGroupsByCount:
			default:
				return fmt.Errorf("invalid --sort %q: must be one of key, total, count", sortBy)
			}

			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			res, err := rc.svc.Window(cmd.Context(), rc.window)
			if err != nil {
				return err
			}
			txns := res.All()
			if category != "" {
				c, err := parseCategory(category)
				if err != nil {
					return err
				}
				txns = res.Category(c)
			}

			groups := group.Transactions(txns, opts)
			shown, rest := group.Split(groups, top)
			out := groupsResult{Groups: shown}
			if len(rest) > 0 {
				members := group.Flatten(rest)
				out.Rest = &model.Group{Key: report.RemainderKey, Total: group.Total(members), Transactions: members}
			}
			return render(cmd, root, out, func(w io.Writer) {
				row(w, "KEY", "COUNT", "TOTAL")
				for _, g := range out.Groups {
					row(w, g.Key, g.Count(), money(g.Total))
				}
				if out.Rest != nil {
					row(w, out.Rest.Key, out.Rest.Count(), money(out.Rest.Total))
				}
			})
		},
	}
	cmd.Flags().StringVar(&by, "by", string(group.ByTag), "grouping: date, month, tag, category or variability")
	cmd.Flags().StringVar(&sortBy, "sort", string(group.SortGroupsByTotal), "group order: key, total or count")
	cmd.Flags().StringVar(&category, "category", "", "only this category (default every visible transaction)")
	cmd.Flags().IntVar(&top, "top", -1, "show the first N groups and fold the rest")
	return cmd
}

func newReportProjectionsCommand(root *rootOptions, open openFunc) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "projections",
		Short: "Expected fixed earning and spending per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := open(cmd, false)
			if err != nil {
				return err
			}
			defer rc.close()

			if !cmd.Flags().Changed("months") {
				months = rc.ws.cfg.Dashboard.ProjectionMonths
			}
			// Projections look back from the month the window starts in.
			p, err := rc.svc.Projections(cmd.Context(), rc.window.Start, months)
			if err != nil {
				return err
			}
			return render(cmd, root, p, func(w io.Writer) {
				row(w, "", "PER MONTH")
				row(w, "Fixed earning", money(p.FixedEarning))
				row(w, "Fixed spending", money(p.FixedSpending))
				row(w, "Left after fixed", money(p.FixedEarning-p.FixedSpending))
			})
		},
	}
	cmd.Flags().IntVar(&months, "months", report.DefaultProjectionMonths, "months to average over")
	return cmd
}
