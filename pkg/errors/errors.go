// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"

	// 课表编辑相关
	CodeFixedEntry       Code = "FIXED_ENTRY"       // 固定课程不可调整
	CodeStaleSuggestion  Code = "STALE_SUGGESTION"  // 调课建议已过期
	CodeScheduleConflict Code = "SCHEDULE_CONFLICT" // 放置违反硬约束
	CodeSearchCancelled  Code = "SEARCH_CANCELLED"  // 搜索被取代
	CodeValidationFail   Code = "VALIDATION_FAILED"

	// 数据相关
	CodeDatabaseError    Code = "DATABASE_ERROR"
	CodePersistenceError Code = "PERSISTENCE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码（供外部 REST 层使用）
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFixedEntry, CodeStaleSuggestion, CodeScheduleConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定错误码
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// 预定义错误
var (
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrInternal     = New(CodeInternal, "内部错误")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// FixedEntry 创建固定课程错误
func FixedEntry(classID, subjectID int64) *AppError {
	return New(CodeFixedEntry, fmt.Sprintf("班级%d科目%d为固定课程，不可调整", classID, subjectID))
}

// StaleSuggestion 创建过期建议错误
func StaleSuggestion(classID, subjectID int64, slot string) *AppError {
	return New(CodeStaleSuggestion, fmt.Sprintf("调课建议已过期：班级%d科目%d已不在%s", classID, subjectID, slot))
}

// LessonNotFound 创建课程不存在错误
func LessonNotFound(classID, subjectID, teacherID int64) *AppError {
	return New(CodeNotFound, fmt.Sprintf("课程不存在：班级%d科目%d教师%d", classID, subjectID, teacherID))
}

// Persistence 创建持久化错误
func Persistence(key string, cause error) *AppError {
	return Wrap(cause, CodePersistenceError, fmt.Sprintf("历史持久化失败: %s", key))
}
