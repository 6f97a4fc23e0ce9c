/*
 * @module service/datasource/csv_loader
 * @description CSV 数据源，把 CSV 文本解析为带类型的内存表，支持 GBK/GB18030 编码
 * @architecture 数据源层
 * @documentReference DESIGN.md
 * @stateFlow 字符集解码 -> 读取表头 -> 读取记录 -> 推断列类型 -> 构建表
 * @rules 缺失文本统一转换为显式空值；列类型按 int、float、bool、time、string 顺序推断
 * @dependencies encoding/csv, golang.org/x/text, github.com/spf13/cast
 * @refs service/models/table.go
 */

package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"datacleanse-service/service/models"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVLoader CSV 表加载器
type CSVLoader struct {
	missing map[string]struct{}
}

// NewCSVLoader 创建 CSV 加载器，missingTokens 中的文本（去除首尾空白后比较）视为缺失值
func NewCSVLoader(missingTokens []string) *CSVLoader {
	missing := make(map[string]struct{}, len(missingTokens)+1)
	missing[""] = struct{}{}
	for _, token := range missingTokens {
		missing[strings.TrimSpace(token)] = struct{}{}
	}
	return &CSVLoader{missing: missing}
}

// decoderFor 根据字符集返回解码器
func decoderFor(charset string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "gbk":
		return simplifiedchinese.GBK.NewDecoder(), nil
	case "gb18030":
		return simplifiedchinese.GB18030.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("不支持的字符集: %s", charset)
	}
}

// Load 读取 CSV，第一行为表头
func (l *CSVLoader) Load(r io.Reader, charset string) (*models.Table, error) {
	decoder, err := decoderFor(charset)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, decoder))
	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV 内容为空")
	}
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	cells := make([][]*string, len(headers))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 CSV 记录失败: %w", err)
		}
		for i, raw := range record {
			cell := strings.TrimSpace(raw)
			if _, ok := l.missing[cell]; ok {
				cells[i] = append(cells[i], nil)
				continue
			}
			cells[i] = append(cells[i], &cell)
		}
	}

	table := models.NewTable()
	for i, header := range headers {
		column, err := buildColumn(strings.TrimSpace(header), cells[i])
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, column)
	}
	return table, nil
}

// buildColumn 推断列类型并转换单元格
func buildColumn(name string, cells []*string) (*models.Column, error) {
	colType := inferColumnType(cells)
	values := make([]models.Value, len(cells))
	for i, cell := range cells {
		if cell == nil {
			continue
		}
		v, err := parseCell(colType, *cell)
		if err != nil {
			return nil, fmt.Errorf("列 %s 第 %d 行解析失败: %w", name, i+1, err)
		}
		values[i] = v
	}
	return models.NewColumn(name, colType, values...), nil
}

func inferColumnType(cells []*string) models.ColumnType {
	candidates := []models.ColumnType{
		models.ColumnTypeInt,
		models.ColumnTypeFloat,
		models.ColumnTypeBool,
		models.ColumnTypeTime,
	}
	seen := false
	for _, cell := range cells {
		if cell == nil {
			continue
		}
		seen = true
		kept := candidates[:0]
		for _, t := range candidates {
			if _, err := parseCell(t, *cell); err == nil {
				kept = append(kept, t)
			}
		}
		candidates = kept
		if len(candidates) == 0 {
			break
		}
	}
	// 全空列没有类型信息，按字符串处理
	if !seen || len(candidates) == 0 {
		return models.ColumnTypeString
	}
	return candidates[0]
}

func parseCell(colType models.ColumnType, cell string) (models.Value, error) {
	switch colType {
	case models.ColumnTypeInt:
		i, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return models.Null(), err
		}
		return models.NewValue(i), nil
	case models.ColumnTypeFloat:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return models.Null(), err
		}
		return models.ConvertValue(models.ColumnTypeFloat, f)
	case models.ColumnTypeBool:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return models.Null(), err
		}
		return models.NewValue(b), nil
	case models.ColumnTypeTime:
		t, err := cast.ToTimeE(cell)
		if err != nil {
			return models.Null(), err
		}
		return models.NewValue(t), nil
	default:
		return models.NewValue(cell), nil
	}
}
