package data_quality

import (
	"errors"
	"fmt"
)

// ErrorType 清洗错误类型
type ErrorType string

const (
	ErrorTypeColumnNotFound  ErrorType = "column_not_found" // 引用的列不存在
	ErrorTypeInvalidArgument ErrorType = "invalid_argument" // 阈值等参数非法
	ErrorTypeInvalidTable    ErrorType = "invalid_table"    // 表结构非法
)

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidTable    = errors.New("invalid table")
)

var errNilTable = errors.New("表不能为空")

// CleanError 清洗错误详情
type CleanError struct {
	Type    ErrorType `json:"type"`
	Column  string    `json:"column,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *CleanError) Error() string {
	msg := e.Message
	if e.Column != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Column)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CleanError) Unwrap() error {
	return e.Cause
}

// Is 允许通过 errors.Is 匹配哨兵错误
func (e *CleanError) Is(target error) bool {
	switch e.Type {
	case ErrorTypeColumnNotFound:
		return target == ErrColumnNotFound
	case ErrorTypeInvalidArgument:
		return target == ErrInvalidArgument
	case ErrorTypeInvalidTable:
		return target == ErrInvalidTable
	}
	return false
}

func columnNotFound(column string) error {
	return &CleanError{Type: ErrorTypeColumnNotFound, Column: column, Message: "列不存在"}
}

func invalidArgument(format string, args ...interface{}) error {
	return &CleanError{Type: ErrorTypeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func invalidTable(cause error) error {
	return &CleanError{Type: ErrorTypeInvalidTable, Message: "表结构非法", Cause: cause}
}
