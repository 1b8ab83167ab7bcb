package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// RelPath is the import history file, relative to the workspace.
const RelPath = "logs/import-log.csv"

// Entry records one import run for one source file.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	File      string    `json:"file"`
	Format    string    `json:"format"`
	AccountID string    `json:"accountId,omitempty"`
	Parsed    int       `json:"parsed"`
	Added     int       `json:"added"`
	Commit    string    `json:"commit,omitempty"`
}

// Skipped is the number of parsed rows already present in the ledger.
func (e Entry) Skipped() int { return e.Parsed - e.Added }

// Header lists the import-log.csv columns.
var Header = []string{"timestamp", "file", "format", "account_id", "parsed", "added", "commit"}

const (
	numFields    = 7
	colTimestamp = 0
	colFile      = 1
	colFormat    = 2
	colAccount   = 3
	colParsed    = 4
	colAdded     = 5
	colCommit    = 6
)

func marshal(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colFile] = e.File
	row[colFormat] = e.Format
	row[colAccount] = e.AccountID
	row[colParsed] = strconv.Itoa(e.Parsed)
	row[colAdded] = strconv.Itoa(e.Added)
	row[colCommit] = e.Commit
	return row
}

func unmarshal(rec []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, rec[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", rec[colTimestamp], err)
	}
	parsed, err := strconv.Atoi(rec[colParsed])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing parsed count %q: %w", rec[colParsed], err)
	}
	added, err := strconv.Atoi(rec[colAdded])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing added count %q: %w", rec[colAdded], err)
	}
	return Entry{
		Timestamp: ts,
		File:      rec[colFile],
		Format:    rec[colFormat],
		AccountID: rec[colAccount],
		Parsed:    parsed,
		Added:     added,
		Commit:    rec[colCommit],
	}, nil
}

// Append adds entries to <root>/logs/import-log.csv, writing the header
// when the file is new.
func Append(root string, entries ...Entry) error {
	path := filepath.Join(root, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(marshal(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry in the import log, oldest first. A missing
// log reads as empty.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, RelPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()
	return read(f)
}

func read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		e, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
