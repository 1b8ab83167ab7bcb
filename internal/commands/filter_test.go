package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/filter"
	"github.com/greenbacks-app/greenbacks/internal/model"
	"github.com/greenbacks-app/greenbacks/internal/report"
)

func TestFilter_AddListMoveRemove(t *testing.T) {
	dir := newWorkspace(t)

	out, err := run(t, "-C", dir, "filter", "add", "--id", "rent",
		"--match", "merchant=LANDLORD PROPERTY MGMT", "--category", "Spending", "--tag", "Rent", "--variability", "Fixed")
	require.NoError(t, err)
	assert.Contains(t, out, "Added filter rent")

	_, err = run(t, "-C", dir, "filter", "add", "--id", "stock-up",
		"--match", "merchant=WHOLE FOODS", "--match", "amount>20000", "--category", "Spending", "--tag", "Groceries")
	require.NoError(t, err)

	out, err = run(t, "-C", dir, "filter", "add", "--match", "name=ACME PAYROLL", "--category", "Earning", "--position", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Added filter ")

	var filters []model.Filter
	runJSON(t, &filters, "-C", dir, "filter", "list")
	require.Len(t, filters, 3)
	assert.Len(t, filters[0].ID, 36, "generated ids are uuids")
	assert.Equal(t, "rent", filters[1].ID)
	assert.Equal(t, "stock-up", filters[2].ID)
	assert.Equal(t, []model.Matcher{
		{Property: model.PropertyMerchant, ExpectedValue: "WHOLE FOODS"},
		{Property: model.PropertyAmount, Comparator: model.ComparatorGreaterThan, ExpectedValue: "20000"},
	}, filters[2].Matchers)

	out, err = run(t, "-C", dir, "filter", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "merchant=WHOLE FOODS & amount>20000")

	_, err = run(t, "-C", dir, "filter", "move", "stock-up", "0")
	require.NoError(t, err)
	runJSON(t, &filters, "-C", dir, "filter", "list")
	assert.Equal(t, "stock-up", filters[0].ID)

	_, err = run(t, "-C", dir, "filter", "remove", "rent")
	require.NoError(t, err)
	filters = nil
	runJSON(t, &filters, "-C", dir, "filter", "list")
	require.Len(t, filters, 2)
	for _, f := range filters {
		assert.NotEqual(t, "rent", f.ID)
	}
}

func TestFilter_Tags(t *testing.T) {
	var groups []filter.TagFilters
	runJSON(t, &groups, "-C", testdataWorkspace, "filter", "tags")
	require.NotEmpty(t, groups)

	tags := make([]string, len(groups))
	for i, g := range groups {
		tags[i] = g.Tag
	}
	assert.Contains(t, tags, "Rent")
	assert.Contains(t, tags, model.Untagged, "card-payment assigns no tag")
}

func TestFilter_Errors(t *testing.T) {
	dir := newWorkspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"matcher without operator", []string{"add", "--match", "merchant", "--category", "Spending"}, "invalid matcher"},
		{"unknown property", []string{"add", "--match", "memo=x", "--category", "Spending"}, "unknown property"},
		{"missing category", []string{"add", "--match", "name=x"}, "invalid category"},
		{"bad variability", []string{"add", "--match", "name=x", "--category", "Spending", "--variability", "Sometimes"}, "invalid variability"},
		{"remove unknown", []string{"remove", "nope"}, "filter not found"},
		{"move unknown", []string{"move", "nope", "1"}, "filter not found"},
		{"move bad position", []string{"move", "nope", "first"}, "invalid position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"-C", dir, "filter"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFilter_SQLiteBackendUsesSyncedFilters(t *testing.T) {
	dir := newWorkspace(t, "--backend", "sqlite")
	_, err := run(t, "-C", dir, "import", chaseExport, "--format", "chase", "--account", "checking")
	require.NoError(t, err)

	_, err = run(t, "-C", dir, "filter", "add", "--id", "rent",
		"--match", "merchant=LANDLORD PROPERTY MGMT", "--category", "Spending", "--tag", "Rent", "--variability", "Fixed")
	require.NoError(t, err)

	var summary report.AverageSummary
	runJSON(t, &summary, "-C", dir, "report", "tags", "--month", "2025-01")
	require.Len(t, summary.Tags, 1)
	assert.Equal(t, "Rent", summary.Tags[0].Tag)
	assert.Equal(t, int64(185000), summary.Tags[0].Total)
}
