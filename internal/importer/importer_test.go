package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenbacks-app/greenbacks/internal/model"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	p := r.Get("chase")
	require.NotNil(t, p)
	assert.Equal(t, "chase", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("chase"))
	assert.NotNil(t, r.Get("greenbacks"))
	assert.Equal(t, []string{"chase", "greenbacks"}, r.Formats())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "bank.csv", files[0].Name)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	processedDir := filepath.Join(importDir, "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "bank.csv")
	require.NoError(t, err)

	// Source gone.
	_, err = os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}

func TestMarkProcessed_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "a.csv"), []byte("data"), 0o644))

	err := MarkProcessed(dir, "a.csv")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "import", "processed"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func raw(account, date string, amount int64, name string) model.CoreTransaction {
	d, _ := time.Parse(model.DateFormat, date)
	return model.CoreTransaction{AccountID: account, Datetime: d, Amount: amount, Name: name}
}

func TestFingerprint_IgnoresID(t *testing.T) {
	a := raw("chk", "2025-01-03", 400, "GITHUB")
	b := a
	b.ID = "chk-20250103-001"
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Equal(t, "chk|2025-01-03|400|GITHUB", Fingerprint(a))
}

func TestNewOnly(t *testing.T) {
	coffee := raw("chk", "2025-01-03", 450, "COFFEE")
	rent := raw("chk", "2025-01-06", 185000, "RENT")
	pay := raw("chk", "2025-01-15", -350000, "PAYROLL")

	tests := []struct {
		name     string
		existing []model.CoreTransaction
		incoming []model.CoreTransaction
		want     []model.CoreTransaction
	}{
		{"nothing stored", nil, []model.CoreTransaction{coffee, rent}, []model.CoreTransaction{coffee, rent}},
		{"all stored", []model.CoreTransaction{rent, coffee}, []model.CoreTransaction{coffee, rent}, nil},
		{"partial overlap", []model.CoreTransaction{coffee}, []model.CoreTransaction{coffee, pay}, []model.CoreTransaction{pay}},
		{"repeated rows counted", []model.CoreTransaction{coffee}, []model.CoreTransaction{coffee, coffee}, []model.CoreTransaction{coffee}},
		{"empty incoming", []model.CoreTransaction{coffee}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewOnly(tt.existing, tt.incoming))
		})
	}
}
