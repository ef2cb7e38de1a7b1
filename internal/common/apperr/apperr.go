package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// 业务层统一错误分类：
// - ValidationError: 入参校验失败（包含全部违规字段，而不是只报第一个）
// - NotFoundError:   引用的实体不存在
// - ConflictError:   因存在依赖关系而拒绝的写操作
// - InvalidTransitionError: 当前生命周期状态下不允许的操作
// 所有错误同步返回给调用方，不做自动重试。

// FieldError 单个字段的校验错误。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 校验错误集合。调用方应修正入参后重试。
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add 追加一条字段错误，便于校验逻辑逐项累积。
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors 是否存在至少一条字段错误。
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// NotFoundError 实体不存在。
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFound 创建 NotFoundError。
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError 因存在依赖而拒绝的操作（例如删除仍被引用的线路）。
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s conflict: %s", e.Resource, e.ID, e.Reason)
}

// InvalidTransitionError 非法的生命周期状态流转。
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition: %s -> %s", e.Entity, e.From, e.To)
}

// IsValidation 判断是否为校验错误。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound 判断是否为实体不存在。
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict 判断是否为依赖冲突。
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsInvalidTransition 判断是否为非法状态流转。
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}
