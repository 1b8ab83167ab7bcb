package dashboard

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/group"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/period"
)

func raw(id, account string, amount int64, date, name string) model.CoreTransaction {
	d, err := time.Parse(model.DateFormat, date)
	if err != nil {
		panic(err)
	}
	return model.CoreTransaction{ID: id, AccountID: account, Amount: amount, Datetime: d, Name: name}
}

func nameFilter(id, name string, c model.Category, tag string, v model.Variability) model.Filter {
	return model.Filter{
		ID:          id,
		Matchers:    []model.Matcher{{Property: model.PropertyName, ExpectedValue: name}},
		Category:    c,
		Tag:         tag,
		Variability: v,
	}
}

var testFilters = []model.Filter{
	nameFilter("f1", "ACME PAYROLL", model.CategoryEarning, "Salary", model.VariabilityFixed),
	nameFilter("f2", "LANDLORD", model.CategorySpending, "Rent", model.VariabilityFixed),
	nameFilter("f3", "GROCER", model.CategorySpending, "Groceries", model.VariabilityVariable),
	nameFilter("f4", "BROKERAGE", model.CategorySaving, "Index fund", ""),
	nameFilter("f5", "CARD PAYMENT", model.CategoryHidden, "", ""),
}

func testFeed() []model.CoreTransaction {
	return []model.CoreTransaction{
		raw("1", "chk", -300000, "2024-01-01", "ACME PAYROLL"),
		raw("2", "chk", 120000, "2024-01-02", "LANDLORD"),
		raw("3", "card", 4500, "2024-01-03", "GROCER"),
		raw("4", "chk", 50000, "2024-01-04", "BROKERAGE"),
		raw("5", "chk", 20000, "2024-01-05", "TO SAVINGS"),
		raw("6", "sav", -20000, "2024-01-05", "FROM CHECKING"),
		raw("7", "chk", 9999, "2024-01-06", "CARD PAYMENT"),
		raw("8", "chk", 1234, "2024-01-07", "UNKNOWN SHOP"),
	}
}

func TestBuild(t *testing.T) {
	res := Build(testFeed(), testFilters)

	require.Len(t, res.Transfers, 1)
	assert.Equal(t, "chk", res.Transfers[0].SourceAccountID)
	assert.Equal(t, "sav", res.Transfers[0].DestinationAccountID)

	require.Len(t, res.Earning, 1)
	assert.Equal(t, int64(300000), res.Earning[0].Amount)
	assert.Equal(t, model.TypeCredit, res.Earning[0].Type)
	assert.Equal(t, "f1", res.Earning[0].FilteredBy)

	assert.Len(t, res.Spending, 2)
	assert.Len(t, res.Saving, 1)
	require.Len(t, res.Unclassified, 1)
	assert.Equal(t, "8", res.Unclassified[0].ID)
	assert.Equal(t, 1, res.Hidden)
	assert.Len(t, res.All(), 5)
}

func TestBuild_HiddenNeverAggregated(t *testing.T) {
	res := Build(testFeed(), testFilters)
	for _, c := range []model.Category{model.CategoryEarning, model.CategorySaving, model.CategorySpending} {
		for _, g := range group.Transactions(res.Category(c), group.Options{GroupBy: group.ByTag}) {
			for _, tx := range g.Transactions {
				assert.NotEqual(t, "7", tx.ID)
			}
		}
	}
}

func TestResult_Timeline(t *testing.T) {
	res := Build(testFeed(), testFilters)
	in := res.TimelineInput()
	assert.Len(t, in.FixedSpending, 1)
	assert.Len(t, in.VariableSpending, 1)

	w, err := period.ParseMonth("2024-01")
	require.NoError(t, err)
	totals := res.Timeline(w.Start, w.End)
	require.Len(t, totals, 31)

	last := totals[3]
	assert.Equal(t, "2024-01-04", last.Key)
	assert.Equal(t, int64(300000-50000-120000-4500), *last.AfterVariableSpending)
	assert.False(t, totals[30].HasData())
}

func TestResult_TimelineSkipsUnspecifiedSpending(t *testing.T) {
	filters := []model.Filter{
		nameFilter("pay", "ACME PAYROLL", model.CategoryEarning, "Salary", model.VariabilityFixed),
		nameFilter("misc", "HARDWARE", model.CategorySpending, "Home", ""),
	}
	res := Build([]model.CoreTransaction{
		raw("1", "chk", -1000, "2024-01-01", "ACME PAYROLL"),
		raw("2", "chk", 300, "2024-01-02", "HARDWARE"),
	}, filters)
	require.Len(t, res.Spending, 1)

	in := res.TimelineInput()
	assert.Empty(t, in.FixedSpending)
	assert.Empty(t, in.VariableSpending)

	totals := res.Timeline(time.Time{}, time.Time{})
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1000), *totals[0].AfterVariableSpending)
}

type fakeSource struct {
	mu       sync.Mutex
	txns     []model.CoreTransaction
	filters  []model.Filter
	calls    int
	failWith error
}

func (f *fakeSource) Transactions(_ context.Context, start, end time.Time) ([]model.CoreTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	w := period.Window{Start: start, End: end}
	var out []model.CoreTransaction
	for _, t := range f.txns {
		if w.Contains(t.Datetime) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) Filters(context.Context) ([]model.Filter, error) {
	return f.filters, nil
}

func newTestService(t *testing.T, src Source) (*Service, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	svc, err := NewService(src, zerolog.New(buf))
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, buf
}

func TestService_WindowCaches(t *testing.T) {
	src := &fakeSource{txns: testFeed(), filters: testFilters}
	svc, logs := newTestService(t, src)
	ctx := context.Background()
	w, _ := period.ParseMonth("2024-01")

	first, err := svc.Window(ctx, w)
	require.NoError(t, err)
	second, err := svc.Window(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
	assert.Contains(t, logs.String(), "built dashboard window")

	svc.Invalidate()
	_, err = svc.Window(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestService_SourceError(t *testing.T) {
	src := &fakeSource{failWith: errors.New("disk gone")}
	svc, _ := newTestService(t, src)
	w, _ := period.ParseMonth("2024-01")

	_, err := svc.Window(context.Background(), w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestService_MonthlyTimelines(t *testing.T) {
	feed := append(testFeed(),
		raw("9", "chk", -300000, "2024-02-01", "ACME PAYROLL"),
		raw("10", "chk", 120000, "2024-03-02", "LANDLORD"),
	)
	svc, _ := newTestService(t, &fakeSource{txns: feed, filters: testFilters})

	w, err := period.Parse("2024-01-01", "2024-03-31")
	require.NoError(t, err)
	timelines, err := svc.MonthlyTimelines(context.Background(), w)
	require.NoError(t, err)
	require.Len(t, timelines, 3)
	assert.Len(t, timelines[0], 31)
	assert.Len(t, timelines[1], 29)
	assert.Equal(t, "2024-02-01", timelines[1][0].Key)
	assert.Len(t, timelines[2], 31)
}

func TestService_Projections(t *testing.T) {
	feed := []model.CoreTransaction{
		raw("1", "chk", -300000, "2024-01-01", "ACME PAYROLL"),
		raw("2", "chk", -300000, "2024-02-01", "ACME PAYROLL"),
		raw("3", "chk", -300000, "2024-03-01", "ACME PAYROLL"),
		raw("4", "chk", 120000, "2024-03-02", "LANDLORD"),
		raw("5", "chk", -999999, "2024-04-01", "ACME PAYROLL"),
	}
	svc, _ := newTestService(t, &fakeSource{txns: feed, filters: testFilters})

	p, err := svc.Projections(context.Background(), time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), p.FixedEarning)
	assert.Equal(t, int64(40000), p.FixedSpending)
}
