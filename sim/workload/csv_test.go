package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrc-sim/mrc-sim/sim"
)

func TestCSVTrace_RoundTrip(t *testing.T) {
	reqs := []sim.Request{
		{ID: 1, Size: 100, Op: sim.OpRead},
		{ID: 2, Size: 250, Op: sim.OpWrite},
		{ID: 1, Size: 100, Op: sim.OpRead},
	}
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, ExportCSVTrace(path, reqs))

	trace, err := OpenCSVTrace(path)
	require.NoError(t, err)
	defer trace.Close()

	got := readAll(t, trace)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(100), got[0].Size)
	assert.Equal(t, sim.OpWrite, got[1].Op)
	assert.True(t, got[2].Valid)
}

func TestCSVTrace_ResetReplaysIdentically(t *testing.T) {
	reqs := []sim.Request{
		{ID: 5, Size: 1},
		{ID: 6, Size: 2},
		{ID: 5, Size: 1},
	}
	path := filepath.Join(t.TempDir(), "trace.csv")
	require.NoError(t, ExportCSVTrace(path, reqs))

	trace, err := OpenCSVTrace(path)
	require.NoError(t, err)
	defer trace.Close()

	first := readAll(t, trace)
	require.NoError(t, trace.Reset())
	second := readAll(t, trace)
	assert.Equal(t, first, second)
}

func TestCSVTrace_NoHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.csv")
	require.NoError(t, os.WriteFile(path, []byte("10,64\n11,32,write\n"), 0o644))

	trace, err := OpenCSVTrace(path)
	require.NoError(t, err)
	defer trace.Close()

	got := readAll(t, trace)
	require.Len(t, got, 2, "headerless files must parse from the first line")
	assert.Equal(t, sim.OpRead, got[0].Op, "op defaults to read")
	assert.Equal(t, sim.OpWrite, got[1].Op)
}

func TestCSVTrace_MalformedRowFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("object_id,size,op\n1,notasize\n"), 0o644))

	trace, err := OpenCSVTrace(path)
	require.NoError(t, err)
	defer trace.Close()

	_, err = trace.ReadOne()
	assert.Error(t, err)
}

func TestOpenCSVTrace_MissingFile(t *testing.T) {
	_, err := OpenCSVTrace(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
