package xerr

import (
	"errors"
	"fmt"
)

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

// 常用预定义错误
var (
	ErrSuccess      = New(OK, "Success")
	ErrServerError  = New(InternalServerError, "internal error, please contact support")
	ErrParam        = New(BadRequest, "invalid parameters")
	ErrUnauthorized = New(Unauthorized, "unauthorized")
	ErrForbidden    = New(Forbidden, "permission denied")
	ErrNotFound     = New(NotFound, "resource not found")
	ErrConflict     = New(Conflict, "resource was modified concurrently, please retry")
	ErrUnavailable  = New(ServiceUnavailable, "service unavailable")
)

// As 提取错误链中的 CodeError
func As(err error) (*CodeError, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
