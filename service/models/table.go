/*
 * @module service/models/table
 * @description 内存表模型，列有显式类型，缺失值以显式空值表示
 * @architecture 数据模型层
 * @documentReference DESIGN.md
 * @stateFlow 调用方构建表 -> 清洗流程就地删除行 -> 返回调用方
 * @rules 列名唯一，所有列行数一致，缺失值只能是 Valid=false
 * @dependencies github.com/spf13/cast
 * @refs service/data_quality
 */

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ColumnType 列的逻辑类型
type ColumnType string

const (
	ColumnTypeString ColumnType = "string"
	ColumnTypeInt    ColumnType = "int"
	ColumnTypeFloat  ColumnType = "float"
	ColumnTypeBool   ColumnType = "bool"
	ColumnTypeTime   ColumnType = "time"
)

// IsValid 判断列类型是否受支持
func (t ColumnType) IsValid() bool {
	switch t {
	case ColumnTypeString, ColumnTypeInt, ColumnTypeFloat, ColumnTypeBool, ColumnTypeTime:
		return true
	}
	return false
}

// Value 可空单元格
type Value struct {
	Valid bool
	Data  interface{}
}

// Null 返回缺失值
func Null() Value {
	return Value{}
}

// NewValue 包装一个原始值，nil 视为缺失
func NewValue(data interface{}) Value {
	if data == nil {
		return Value{}
	}
	return Value{Valid: true, Data: data}
}

// IsMissing 是否为缺失值
func (v Value) IsMissing() bool {
	return !v.Valid
}

// MarshalJSON 缺失值编码为 null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Data)
}

// UnmarshalJSON null 解码为缺失值，其余保留原始 JSON 值，类型由 Table.Normalize 统一转换。
// 数字保留为 json.Number，避免大整数经 float64 丢失精度
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	*v = NewValue(raw)
	return nil
}

// ConvertValue 按列类型转换原始值
// float 类型的 NaN 会被转换为缺失值
func ConvertValue(colType ColumnType, raw interface{}) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if n, ok := raw.(json.Number); ok && colType != ColumnTypeInt && colType != ColumnTypeFloat {
		raw = numberValue(n)
	}

	switch colType {
	case ColumnTypeString:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return Null(), err
		}
		return NewValue(s), nil
	case ColumnTypeInt:
		i, err := toInt64(raw)
		if err != nil {
			return Null(), err
		}
		return NewValue(i), nil
	case ColumnTypeFloat:
		if n, ok := raw.(json.Number); ok {
			raw = n.String()
		}
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return Null(), err
		}
		if math.IsNaN(f) {
			return Null(), nil
		}
		return NewValue(f), nil
	case ColumnTypeBool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return Null(), err
		}
		return NewValue(b), nil
	case ColumnTypeTime:
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return Null(), err
		}
		return NewValue(t), nil
	default:
		return Null(), fmt.Errorf("不支持的列类型: %s", colType)
	}
}

// toInt64 严格转换为整数：字符串按十进制解析，避免前导 0 被当作八进制；
// 带小数部分或超出 int64 范围的值返回错误，不做截断
func toInt64(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		return parseIntText(v.String())
	case string:
		return parseIntText(v)
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	default:
		return cast.ToInt64E(raw)
	}
}

func parseIntText(s string) (int64, error) {
	s = strings.TrimSpace(s)
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i, nil
	}
	// 允许 1.0、1e3 这类整数值的写法
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return 0, err
	}
	return floatToInt64(f)
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v 不是整数", f)
	}
	// 2^53 以上的浮点数已无法区分相邻整数
	if math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%v 超出可精确表示的整数范围", f)
	}
	return int64(f), nil
}

// numberValue 把 json.Number 转为 int64 或 float64
func numberValue(n json.Number) interface{} {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// Column 表中的一列
type Column struct {
	Name   string     `json:"name"`
	Type   ColumnType `json:"type"`
	Values []Value    `json:"values"`
}

// NewColumn 创建列
func NewColumn(name string, colType ColumnType, values ...Value) *Column {
	return &Column{Name: name, Type: colType, Values: values}
}

// MissingCount 统计缺失值数量
func (c *Column) MissingCount() int {
	count := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			count++
		}
	}
	return count
}

// Table 内存表
type Table struct {
	Columns []*Column `json:"columns"`
}

// NewTable 创建表
func NewTable(columns ...*Column) *Table {
	return &Table{Columns: columns}
}

// RowCount 返回行数，空表为 0
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 || t.Columns[0] == nil {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames 按顺序返回列名
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Column 按名称查找列
func (t *Table) Column(name string) (*Column, bool) {
	if t == nil {
		return nil, false
	}
	for _, c := range t.Columns {
		if c != nil && c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Validate 校验列名唯一、类型合法、行数一致
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("表不能为空")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	rows := t.RowCount()
	for i, c := range t.Columns {
		if c == nil {
			return fmt.Errorf("第 %d 列为空", i)
		}
		if c.Name == "" {
			return fmt.Errorf("第 %d 列缺少列名", i)
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("列名重复: %s", c.Name)
		}
		seen[c.Name] = struct{}{}
		if !c.Type.IsValid() {
			return fmt.Errorf("列 %s 的类型不受支持: %q", c.Name, c.Type)
		}
		if len(c.Values) != rows {
			return fmt.Errorf("列 %s 行数为 %d，期望 %d", c.Name, len(c.Values), rows)
		}
	}
	return nil
}

// Normalize 将每个非空值转换为列类型对应的 Go 类型
func (t *Table) Normalize() error {
	for _, c := range t.Columns {
		for i, v := range c.Values {
			if v.IsMissing() {
				continue
			}
			converted, err := ConvertValue(c.Type, v.Data)
			if err != nil {
				return fmt.Errorf("列 %s 第 %d 行无法转换为 %s: %w", c.Name, i, c.Type, err)
			}
			c.Values[i] = converted
		}
	}
	return nil
}

// RemoveRows 就地删除 drop 返回 true 的行，返回删除行数
func (t *Table) RemoveRows(drop func(row int) bool) int {
	rows := t.RowCount()
	keep := make([]bool, rows)
	kept := 0
	for i := 0; i < rows; i++ {
		if !drop(i) {
			keep[i] = true
			kept++
		}
	}
	if kept == rows {
		return 0
	}

	for _, c := range t.Columns {
		n := 0
		for i, v := range c.Values {
			if keep[i] {
				c.Values[n] = v
				n++
			}
		}
		// 清理尾部引用
		for i := n; i < len(c.Values); i++ {
			c.Values[i] = Value{}
		}
		c.Values = c.Values[:n]
	}
	return rows - kept
}

// Clone 深拷贝表结构和单元格
func (t *Table) Clone() *Table {
	clone := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		clone.Columns[i] = &Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return clone
}
