package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mrc-sim/mrc-sim/sim"
)

// CSVTrace reads accesses from a CSV file with columns
// "object_id,size[,op]". A leading header row is skipped when its first
// field is not numeric. Reset seeks back to the start of the file, so the
// same file handle replays identically across passes.
type CSVTrace struct {
	path   string
	file   *os.File
	reader *csv.Reader
	line   int64
}

// OpenCSVTrace opens a CSV trace file for streaming.
func OpenCSVTrace(path string) (*CSVTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace %s: %w", path, err)
	}
	t := &CSVTrace{path: path, file: f}
	t.newReader()
	return t, nil
}

func (t *CSVTrace) newReader() {
	t.reader = csv.NewReader(t.file)
	t.reader.FieldsPerRecord = -1 // op column is optional
	t.reader.TrimLeadingSpace = true
	t.line = 0
}

func (t *CSVTrace) ReadOne() (*sim.Request, error) {
	for {
		record, err := t.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("reading trace %s: %w", t.path, err)
		}
		t.line++
		if len(record) < 2 {
			return nil, fmt.Errorf("trace %s line %d: want object_id,size[,op], got %d fields", t.path, t.line, len(record))
		}
		id, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			if t.line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("trace %s line %d: bad object id %q", t.path, t.line, record[0])
		}
		size, err := strconv.ParseUint(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("trace %s line %d: bad size %q", t.path, t.line, record[1])
		}
		op := sim.OpRead
		if len(record) >= 3 && record[2] != "" {
			op = sim.Op(strings.ToLower(record[2]))
		}
		return &sim.Request{
			ID:    id,
			Size:  size,
			Time:  t.line,
			Op:    op,
			Valid: true,
		}, nil
	}
}

func (t *CSVTrace) Reset() error {
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding trace %s: %w", t.path, err)
	}
	t.newReader()
	return nil
}

func (t *CSVTrace) Name() string { return t.path }

// Close releases the underlying file.
func (t *CSVTrace) Close() error { return t.file.Close() }

// ExportCSVTrace writes requests as a CSV trace file, the inverse of
// OpenCSVTrace. Used by tests and tooling to round-trip traces.
func ExportCSVTrace(path string, reqs []sim.Request) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"object_id", "size", "op"}); err != nil {
		return err
	}
	for i := range reqs {
		op := string(reqs[i].Op)
		if op == "" {
			op = string(sim.OpRead)
		}
		rec := []string{
			strconv.FormatUint(reqs[i].ID, 10),
			strconv.FormatUint(reqs[i].Size, 10),
			op,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
