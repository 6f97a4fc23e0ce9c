/*
 * @module service/data_quality/validator
 * @description 输入校验器，校验表结构并把单元格转换为列类型
 * @architecture 分层架构 - 数据清洗层
 * @documentReference DESIGN.md
 * @stateFlow 外部输入表 -> 结构校验 -> 类型归一化
 * @rules 校验失败统一返回 ErrInvalidTable
 * @dependencies datacleanse-service/service/models
 * @refs quality_engine.go
 */

package data_quality

import (
	"datacleanse-service/service/models"
)

// Validator 表校验器
type Validator struct{}

// NewValidator 创建表校验器实例
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStructure 只校验表结构，不修改单元格
func (v *Validator) ValidateStructure(table *models.Table) error {
	if err := table.Validate(); err != nil {
		return invalidTable(err)
	}
	return nil
}

// ValidateTable 校验表结构并归一化单元格类型
func (v *Validator) ValidateTable(table *models.Table) error {
	if err := v.ValidateStructure(table); err != nil {
		return err
	}
	if err := table.Normalize(); err != nil {
		return invalidTable(err)
	}
	return nil
}
