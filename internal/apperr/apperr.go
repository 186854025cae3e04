package apperr

import (
	"errors"
	"net/http"
)

// Kind 错误分类，决定HTTP状态码
type Kind int

const (
	// Unauthenticated 会话缺失/无效/过期（401）
	Unauthenticated Kind = iota
	// Forbidden 会话有效但缺少所需角色（403）
	Forbidden
	// ValidationFailed 参数校验失败（400）
	ValidationFailed
	// Conflict 唯一性冲突（409）
	Conflict
	// ReferentialBlock 存在依赖关系，拒绝删除（400）
	ReferentialBlock
	// NotFound 引用的记录不存在（404）
	NotFound
	// Internal 持久层或未预期的失败（500，详情只记日志不返回给调用方）
	Internal
)

// Error 业务错误，携带分类和面向调用方的消息
type Error struct {
	Kind    Kind
	Message string
	Err     error // 底层错误（可选，仅用于日志）
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建业务错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误为业务错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// HTTPStatus 错误分类到HTTP状态码的映射
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case ValidationFailed, ReferentialBlock:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// KindOf 提取错误的分类；非业务错误一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
