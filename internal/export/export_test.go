package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"phddash/adapters/tsv"
	"phddash/domain/dataset"
	"phddash/internal/testkit"
)

func loadFixture(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := tsv.Parse(bytes.NewReader(testkit.NewPhDDataGenerator(testkit.DefaultPhDConfig()).TSV()))
	require.NoError(t, err)
	return table
}

func TestWriteXLSX(t *testing.T) {
	table := dataset.FilterByYear(loadFixture(t), 1965)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, table.Len()+1)
	assert.Equal(t, table.Columns, rows[0])
	assert.Equal(t, "1958", rows[1][0])
	assert.Equal(t, "1965", rows[len(rows)-1][0])
	assert.Equal(t, "1960s", rows[len(rows)-1][3])
}

func TestWriteTSV_RoundTrip(t *testing.T) {
	table := dataset.FilterByYear(loadFixture(t), 1980)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, table))

	reparsed, err := tsv.Parse(&buf)
	require.NoError(t, err)
	assert.True(t, table.Equal(reparsed))
}
