package matrix

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix() *core.Matrix {
	return &core.Matrix{
		Columns: []core.Column{{Group: "MP41", Timepoint: 1}, {Group: "Mel202", Timepoint: 3}},
		Rows: []core.Row{
			{Peak: 500.1242, Cells: []core.Intensity{core.Some(5), core.None()}},
			{Peak: 650.3, Cells: []core.Intensity{core.Some(0.0001235), core.Some(1235000)}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testMatrix(), ','))

	want := "group,MP41,Mel202\n" +
		"timepoint,1,3\n" +
		"peak,,\n" +
		"500.1242,5,\n" +
		"650.3,0.0001235,1235000\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top_peaks.txt")
	require.NoError(t, WriteFile(path, testMatrix(), '\t'))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "group\tMP41\tMel202\n")
	assert.Contains(t, string(data), "500.1242\t5\t\n")
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &core.Matrix{}, ','))
	assert.Equal(t, "group\ntimepoint\npeak\n", buf.String())
}
