package pkg

import (
	"errors"
	"net/http"
)

// Kind 业务错误分类，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindCapacity
	KindPersistence
)

var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrCapacity    = &Error{Kind: KindCapacity}
	ErrPersistence = &Error{Kind: KindPersistence}
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按分类匹配，errors.Is(err, pkg.ErrConflict) 即可判断
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindCapacity:
		return "capacity reached"
	case KindPersistence:
		return "persistence failure"
	}
	return "internal error"
}

// Status 分类对应的 HTTP 状态码
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict, KindCapacity:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func Auth(msg string) error       { return &Error{Kind: KindAuth, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func Capacity(msg string) error   { return &Error{Kind: KindCapacity, Msg: msg} }

// Persistence 内存状态已提交但落盘失败
func Persistence(err error) error {
	return &Error{Kind: KindPersistence, Msg: "Failed to save changes", Err: err}
}

// KindOf 非业务错误一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message 面向客户端的错误信息，不暴露底层原因
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "Internal server error"
}
