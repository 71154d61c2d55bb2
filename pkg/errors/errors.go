package errors

import (
	"errors"
	"sort"
	"strings"
)

// ── 通用业务错误分类 ──
//
// 上层通过 errors.Is / errors.As 判断类别，Handler 统一映射为 HTTP 状态码。

var (
	// ErrNotFound 外键或主键无法解析
	ErrNotFound = errors.New("资源不存在")
	// ErrForbidden 权限策略拒绝（对外不暴露具体原因）
	ErrForbidden = errors.New("无权操作")
	// ErrConflict 唯一约束冲突
	ErrConflict = errors.New("数据冲突")
	// ErrGenerationExhausted 工单号多次重试后仍冲突
	ErrGenerationExhausted = errors.New("工单号生成失败，请稍后重试")
	// ErrStorage 文件写入失败
	ErrStorage = errors.New("文件存储失败")
)

// ValidationError 字段级校验错误，Fields 为 字段名 → 错误信息
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError 创建单字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add 追加字段错误（同一字段保留第一条）
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors 是否存在字段错误
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Error 以字段名排序输出，保证日志稳定
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

// IsValidation 判断是否为字段校验错误
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
