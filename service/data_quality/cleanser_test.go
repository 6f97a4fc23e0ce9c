/*
 * @module service/data_quality/cleanser_test
 * @description 数据清洗器单元测试，覆盖完整清洗流程的典型场景与性质
 * @architecture 测试层
 * @documentReference DESIGN.md
 * @stateFlow 构建表 -> 清洗 -> 验证结果表与待填充列
 * @rules 删行列清洗后无缺失；替换列不触发删行；二次清洗幂等
 * @dependencies testing, testify
 * @refs cleanser.go
 */

package data_quality

import (
	"testing"

	"datacleanse-service/service/models"
	"datacleanse-service/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCleanser(t *testing.T, threshold float64) *Cleanser {
	t.Helper()
	logger, _ := newBufferLogger()
	monitor, err := NewQualityMonitor(prometheus.NewRegistry())
	require.NoError(t, err)
	cleanser, err := NewCleanser(threshold, logger, monitor)
	require.NoError(t, err)
	return cleanser
}

func TestNewCleanser_InvalidThreshold(t *testing.T) {
	_, err := NewCleanser(1.5, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	c, err := NewCleanser(DefaultThreshold, nil, nil)
	require.NoError(t, err)
	_, err = c.WithThreshold(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, DefaultThreshold, c.Threshold())
}

func TestCleanNaNValues_LowMissingnessDropsRows(t *testing.T) {
	table := models.NewTable(
		testutil.SparseColumn("id", 100),
		testutil.SparseColumn("age", 100, 10, 20, 30),
	)

	cleaned, replace, err := CleanNaNValues(table)
	require.NoError(t, err)

	assert.Empty(t, replace)
	assert.Equal(t, 97, cleaned.RowCount())
	age, _ := cleaned.Column("age")
	assert.Zero(t, age.MissingCount())
}

func TestCleanNaNValues_HighMissingnessFlagged(t *testing.T) {
	table := models.NewTable(
		testutil.SparseColumn("id", 100),
		testutil.SparseColumn("cabin", 100, testutil.Rows(0, 70)...),
	)

	cleaned, replace, err := CleanNaNValues(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"cabin"}, replace)
	assert.Equal(t, 100, cleaned.RowCount())
	cabin, _ := cleaned.Column("cabin")
	assert.Equal(t, 70, cabin.MissingCount())
}

func TestCleanNaNValues_EmptyTable(t *testing.T) {
	table := models.NewTable(testutil.FloatColumn("a"), testutil.StringColumn("b"))

	result, err := newTestCleanser(t, DefaultThreshold).CleanNaNValues(table)
	require.NoError(t, err)

	assert.Same(t, table, result.Table)
	assert.Empty(t, result.ReplaceCandidates)
	assert.Empty(t, result.DropCandidates)
	assert.Empty(t, result.Drops)
	assert.Zero(t, result.RowsBefore)
	assert.Zero(t, result.RowsAfter)
}

func TestCleanNaNValues_MalformedTable(t *testing.T) {
	cleanser := newTestCleanser(t, DefaultThreshold)

	testCases := []struct {
		name  string
		table *models.Table
	}{
		{name: "空指针表", table: nil},
		{name: "空列", table: models.NewTable(testutil.SparseColumn("a", 3, 1), nil)},
		{name: "行数不一致", table: models.NewTable(testutil.SparseColumn("a", 3, 1), testutil.SparseColumn("b", 2))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				result *CleanResult
				err    error
			)
			require.NotPanics(t, func() {
				result, err = cleanser.CleanNaNValues(tc.table)
			})
			assert.ErrorIs(t, err, ErrInvalidTable)
			assert.Nil(t, result)
		})
	}

	require.NotPanics(t, func() {
		_, _, err := CleanNaNValues(nil)
		assert.ErrorIs(t, err, ErrInvalidTable)
	})
}

func TestCleanNaNValues_OverlappingDropColumns(t *testing.T) {
	table := models.NewTable(
		testutil.SparseColumn("a", 100, 0, 1, 2, 3, 4),
		testutil.SparseColumn("b", 100, 3, 4, 60),
	)

	result, err := newTestCleanser(t, DefaultThreshold).CleanNaNValues(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, result.DropCandidates)
	assert.Equal(t, []DropRecord{
		{Column: "a", Dropped: 5, Percent: 5},
		{Column: "b", Dropped: 1, Percent: 1},
	}, result.Drops)
	assert.Equal(t, 100, result.RowsBefore)
	assert.Equal(t, 94, result.RowsAfter)
	assert.NotEmpty(t, result.RunID)
}

func TestCleanNaNValues_Properties(t *testing.T) {
	newTable := func() *models.Table {
		return models.NewTable(
			testutil.SparseColumn("id", 200),
			testutil.SparseColumn("age", 200, 1, 50, 99),
			testutil.SparseColumn("fare", 200, 50, 150),
			testutil.SparseColumn("cabin", 200, testutil.Rows(0, 120)...),
			testutil.SparseColumn("deck", 200, testutil.Rows(100, 130)...),
		)
	}

	for _, threshold := range []float64{0, 0.01, DefaultThreshold, 0.2, 1} {
		table := newTable()
		cleanser := newTestCleanser(t, threshold)

		result, err := cleanser.CleanNaNValues(table)
		require.NoError(t, err)

		// 两个集合互不相交，且每列至少有一个缺失值
		seen := map[string]bool{}
		for _, name := range append(append([]string{}, result.ReplaceCandidates...), result.DropCandidates...) {
			assert.False(t, seen[name], "column %s classified twice", name)
			seen[name] = true
		}
		for name := range seen {
			assert.Contains(t, []string{"age", "fare", "cabin", "deck"}, name)
		}
		assert.NotContains(t, seen, "id")

		// 删行列清洗后没有缺失值
		for _, name := range result.DropCandidates {
			c, _ := result.Table.Column(name)
			assert.Zero(t, c.MissingCount(), "threshold %v column %s", threshold, name)
		}

		// 没有删行列时行数不变
		if len(result.DropCandidates) == 0 {
			assert.Equal(t, 200, result.Table.RowCount())
		}

		// 二次清洗不再删除任何行
		second, err := cleanser.CleanNaNValues(result.Table)
		require.NoError(t, err)
		assert.Equal(t, result.RowsAfter, second.RowsAfter)
		assert.Empty(t, second.Drops)
		assert.Equal(t, result.ReplaceCandidates, second.ReplaceCandidates, "threshold %v", threshold)
	}
}

func TestCleanNaNValues_ReplaceColumnsDoNotDropRows(t *testing.T) {
	// cabin 缺失的行在其它列都是完整的，清洗后应全部保留
	table := models.NewTable(
		testutil.SparseColumn("age", 100, 90, 91),
		testutil.SparseColumn("cabin", 100, testutil.Rows(0, 40)...),
	)

	result, err := newTestCleanser(t, DefaultThreshold).CleanNaNValues(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"cabin"}, result.ReplaceCandidates)
	assert.Equal(t, 98, result.RowsAfter)
	cabin, _ := result.Table.Column("cabin")
	assert.Equal(t, 40, cabin.MissingCount())
}
