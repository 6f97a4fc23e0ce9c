/*
 * @module service/datasource/csv_loader_test
 * @description CSV 数据源单元测试
 * @architecture 测试层
 * @documentReference DESIGN.md
 * @stateFlow 构造 CSV 文本 -> 加载 -> 验证列类型与缺失值
 * @rules 覆盖类型推断、缺失文本、字符集和格式错误
 * @dependencies testing, testify, golang.org/x/text
 * @refs csv_loader.go
 */

package datasource

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"datacleanse-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var defaultTokens = []string{"", "NA", "NaN", "null", "None"}

func TestCSVLoader_Load(t *testing.T) {
	input := "PassengerId,Age,Cabin,Survived,Boarded,Name\n" +
		"1,22.5,C85,true,2024-01-02,Braund\n" +
		"2,NA,,false,2024-01-03,Cumings\n" +
		"3,38,None,true,NaN,Heikkinen\n"

	table, err := NewCSVLoader(defaultTokens).Load(strings.NewReader(input), "")
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	assert.Equal(t, []string{"PassengerId", "Age", "Cabin", "Survived", "Boarded", "Name"}, table.ColumnNames())
	assert.Equal(t, 3, table.RowCount())

	testCases := []struct {
		column  string
		colType models.ColumnType
		missing int
	}{
		{column: "PassengerId", colType: models.ColumnTypeInt, missing: 0},
		{column: "Age", colType: models.ColumnTypeFloat, missing: 1},
		{column: "Cabin", colType: models.ColumnTypeString, missing: 2},
		{column: "Survived", colType: models.ColumnTypeBool, missing: 0},
		{column: "Boarded", colType: models.ColumnTypeTime, missing: 1},
		{column: "Name", colType: models.ColumnTypeString, missing: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.column, func(t *testing.T) {
			c, ok := table.Column(tc.column)
			require.True(t, ok)
			assert.Equal(t, tc.colType, c.Type)
			assert.Equal(t, tc.missing, c.MissingCount())
		})
	}

	id, _ := table.Column("PassengerId")
	assert.Equal(t, int64(1), id.Values[0].Data)
	age, _ := table.Column("Age")
	assert.Equal(t, 22.5, age.Values[0].Data)
	assert.True(t, age.Values[1].IsMissing())
	boarded, _ := table.Column("Boarded")
	assert.Equal(t, 2024, boarded.Values[0].Data.(time.Time).Year())
}

func TestCSVLoader_AllMissingColumn(t *testing.T) {
	table, err := NewCSVLoader(defaultTokens).Load(strings.NewReader("a,b\n1,\n2,NA\n"), "utf-8")
	require.NoError(t, err)

	b, _ := table.Column("b")
	assert.Equal(t, models.ColumnTypeString, b.Type)
	assert.Equal(t, 2, b.MissingCount())
}

func TestCSVLoader_HeaderOnly(t *testing.T) {
	table, err := NewCSVLoader(defaultTokens).Load(strings.NewReader("a,b\n"), "")
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
	assert.Len(t, table.Columns, 2)
}

func TestCSVLoader_UTF8BOM(t *testing.T) {
	table, err := NewCSVLoader(defaultTokens).Load(strings.NewReader("\ufeffid\n1\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, table.ColumnNames())
}

func TestCSVLoader_GBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("姓名,年龄\n张三,30\n李四,NA\n")
	require.NoError(t, err)

	table, err := NewCSVLoader(defaultTokens).Load(bytes.NewReader([]byte(encoded)), "GBK")
	require.NoError(t, err)

	assert.Equal(t, []string{"姓名", "年龄"}, table.ColumnNames())
	name, _ := table.Column("姓名")
	assert.Equal(t, "张三", name.Values[0].Data)
	age, _ := table.Column("年龄")
	assert.Equal(t, models.ColumnTypeInt, age.Type)
	assert.Equal(t, 1, age.MissingCount())
}

func TestCSVLoader_Errors(t *testing.T) {
	loader := NewCSVLoader(defaultTokens)

	_, err := loader.Load(strings.NewReader(""), "")
	assert.Error(t, err, "空内容")

	_, err = loader.Load(strings.NewReader("a,b\n1\n"), "")
	assert.Error(t, err, "列数不一致")

	_, err = loader.Load(strings.NewReader("a\n1\n"), "latin-9")
	assert.Error(t, err, "未知字符集")
}
