package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindDependencyFailure
)

// String 返回稳定的分类名，写入响应的 kind 字段
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDependencyFailure:
		return "dependency_failure"
	default:
		return "unknown"
	}
}

// HTTPStatus 分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error 业务错误，Msg 面向调用者，Err 保留内部原因
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation 参数校验失败
func Validation(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

// Conflict 唯一性冲突
func Conflict(msg string) *Error {
	return newError(KindConflict, msg, nil)
}

// Unauthorized 需要登录
func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, msg, nil)
}

// Forbidden 已登录但无权操作
func Forbidden(msg string) *Error {
	return newError(KindForbidden, msg, nil)
}

// NotFound 资源不存在
func NotFound(msg string) *Error {
	return newError(KindNotFound, msg, nil)
}

// Dependency 存储或数据库故障
func Dependency(msg string, err error) *Error {
	return newError(KindDependencyFailure, msg, err)
}

// KindOf 提取错误分类，非业务错误视为依赖故障
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependencyFailure
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage 返回可以展示给调用者的信息，依赖故障不泄露内部细节
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindDependencyFailure && e.Kind != KindUnknown {
		return e.Msg
	}
	return "Internal server error"
}
