package data_quality

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"datacleanse-service/service/models"
	"datacleanse-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

func TestDropMissingRows_SingleColumn(t *testing.T) {
	table := models.NewTable(
		testutil.SparseColumn("age", 100, 5, 6, 7),
		testutil.SparseColumn("cabin", 100, testutil.Rows(0, 70)...),
	)
	logger, buf := newBufferLogger()

	records, err := DropMissingRows(table, []string{"age"}, 100, logger)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, DropRecord{Column: "age", Dropped: 3, Percent: 3}, records[0])
	assert.Equal(t, 97, table.RowCount())

	age, _ := table.Column("age")
	assert.Zero(t, age.MissingCount())

	// cabin 的缺失行只因 age 删除而减少
	cabin, _ := table.Column("cabin")
	assert.Equal(t, 67, cabin.MissingCount())
	assert.Len(t, cabin.Values, 97)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Dropped 3 rows due to nan values in age column, corresponding to a 3.0% of the dataset length", entry["msg"])
	assert.Equal(t, "age", entry["column"])
	assert.Equal(t, float64(3), entry["dropped"])
}

func TestDropMissingRows_OrderDependentPercent(t *testing.T) {
	table := models.NewTable(
		testutil.SparseColumn("a", 100, 0, 1, 2, 3, 4),
		testutil.SparseColumn("b", 100, 3, 4, 50),
	)
	logger, buf := newBufferLogger()

	records, err := DropMissingRows(table, []string{"a", "b"}, 100, logger)
	require.NoError(t, err)

	assert.Equal(t, []DropRecord{
		{Column: "a", Dropped: 5, Percent: 5},
		{Column: "b", Dropped: 1, Percent: 1},
	}, records)
	assert.Equal(t, 94, table.RowCount())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestDropMissingRows_PercentRounding(t *testing.T) {
	table := models.NewTable(testutil.SparseColumn("x", 7, 2))

	records, err := DropMissingRows(table, []string{"x"}, 7, slog.Default())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, 14.286, records[0].Percent)
	assert.Equal(t, "Dropped 1 rows due to nan values in x column, corresponding to a 14.286% of the dataset length", records[0].Message())
}

func TestDropMissingRows_PercentHalfEven(t *testing.T) {
	table := models.NewTable(testutil.SparseColumn("x", 64, 3))

	records, err := DropMissingRows(table, []string{"x"}, 64, nil)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, 1.562, records[0].Percent)
	assert.Equal(t, "Dropped 1 rows due to nan values in x column, corresponding to a 1.562% of the dataset length", records[0].Message())
}

func TestDropMissingRows_ColumnNotFound(t *testing.T) {
	table := models.NewTable(testutil.SparseColumn("a", 10, 1))

	records, err := DropMissingRows(table, []string{"a", "ghost"}, 10, nil)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Nil(t, records)
	assert.Equal(t, 10, table.RowCount(), "表不应被修改")
}

func TestDropMissingRows_NoColumns(t *testing.T) {
	table := models.NewTable(testutil.SparseColumn("a", 10, 1))

	records, err := DropMissingRows(table, nil, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 10, table.RowCount())
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0.0, roundPercent(3, 0))
	assert.Equal(t, 33.333, roundPercent(1, 3))
	assert.Equal(t, 66.667, roundPercent(2, 3))
	assert.Equal(t, 100.0, roundPercent(4, 4))

	// 二进制精确中点取偶
	assert.Equal(t, 1.562, roundPercent(1, 64))
	assert.Equal(t, 4.688, roundPercent(3, 64))
	assert.Equal(t, 0.781, roundPercent(1, 128))
}

func TestFormatPercent(t *testing.T) {
	testCases := map[float64]string{
		0:      "0.0",
		3:      "3.0",
		100:    "100.0",
		14.286: "14.286",
		1.562:  "1.562",
		0.5:    "0.5",
	}
	for p, want := range testCases {
		assert.Equal(t, want, formatPercent(p), "percent %v", p)
	}
}
