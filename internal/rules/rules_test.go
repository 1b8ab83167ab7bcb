package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

func rent(id string) model.Filter {
	return model.Filter{
		ID:          id,
		Matchers:    []model.Matcher{{Property: model.PropertyName, ExpectedValue: "LANDLORD"}},
		Category:    model.CategorySpending,
		Tag:         "Rent",
		Variability: model.VariabilityFixed,
	}
}

func ids(filters []model.Filter) []string {
	out := make([]string, len(filters))
	for i, f := range filters {
		out[i] = f.ID
	}
	return out
}

func TestList_MissingFile(t *testing.T) {
	filters, err := NewStore(t.TempDir()).List()
	require.NoError(t, err)
	assert.Empty(t, filters)
}

func TestAdd_AssignsUUID(t *testing.T) {
	store := NewStore(t.TempDir())
	f, err := store.Add(rent(""), -1)
	require.NoError(t, err)
	_, err = uuid.Parse(f.ID)
	assert.NoError(t, err)

	filters, err := store.Filters(context.Background())
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, f, filters[0])
}

func TestAdd_PositionAndOrder(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Add(rent(id), -1)
		require.NoError(t, err)
	}
	_, err := store.Add(rent("first"), 0)
	require.NoError(t, err)

	filters, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "a", "b", "c"}, ids(filters))

	_, err = store.Add(rent("a"), -1)
	assert.ErrorContains(t, err, "already exists")
}

func TestRemoveMove(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save([]model.Filter{rent("a"), rent("b"), rent("c")}))

	require.NoError(t, store.Move("c", 0))
	filters, _ := store.List()
	assert.Equal(t, []string{"c", "a", "b"}, ids(filters))

	require.NoError(t, store.Move("c", 99))
	filters, _ = store.List()
	assert.Equal(t, []string{"a", "b", "c"}, ids(filters))

	require.NoError(t, store.Remove("b"))
	filters, _ = store.List()
	assert.Equal(t, []string{"a", "c"}, ids(filters))

	assert.ErrorIs(t, store.Remove("zzz"), ErrFilterNotFound)
	assert.ErrorIs(t, store.Move("zzz", 0), ErrFilterNotFound)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(rent("ok")))

	bad := rent("x")
	bad.Category = ""
	assert.ErrorContains(t, Validate(bad), "invalid category")

	bad = rent("x")
	bad.Matchers[0].Property = "colour"
	assert.ErrorContains(t, Validate(bad), `unknown property "colour"`)

	bad = rent("x")
	bad.Matchers[0].Comparator = "contains"
	assert.ErrorContains(t, Validate(bad), "unknown comparator")

	bad = rent("x")
	bad.Variability = "Sometimes"
	assert.ErrorContains(t, Validate(bad), "invalid variability")

	assert.ErrorContains(t, Validate(model.Filter{Category: model.CategoryHidden}), "no id")
}

func TestYAMLFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save([]model.Filter{rent("rent")}))

	data, err := os.ReadFile(filepath.Join(dir, "rules", "filters.yaml"))
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "expected_value: LANDLORD")
	assert.Contains(t, contents, "category: Spending")
	assert.Contains(t, contents, "variability: Fixed")
	assert.NotContains(t, contents, "comparator")

	require.NoError(t, store.Save(nil))
	data, err = os.ReadFile(filepath.Join(dir, "rules", "filters.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "filters: []\n", string(data))
}

func TestList_TitleCaseEquals(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rules"), 0o755))
	yaml := `filters:
  - id: rent
    matchers:
      - property: name
        comparator: Equals
        expected_value: LANDLORD
    category: Spending
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules", "filters.yaml"), []byte(yaml), 0o644))

	filters, err := NewStore(dir).List()
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, model.ComparatorEquals, filters[0].Matchers[0].Comparator)
	assert.NoError(t, Validate(filters[0]))

	f := rent("raw")
	f.Matchers[0].Comparator = "Equals"
	assert.NoError(t, Validate(f))
}

func TestLoadTestdata(t *testing.T) {
	filters, err := NewStore("../../testdata/workspace").List()
	require.NoError(t, err)
	require.NotEmpty(t, filters)
	for _, f := range filters {
		assert.NoError(t, Validate(f))
	}
}
