package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure so handlers can map it to a status code
// without knowing which package produced it.
type Kind int

const (
	KindNotFound Kind = iota
	KindForbidden
	KindConflict
	KindDuplicate
	KindInvalid
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func NotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s with id=%d was not found", entity, id)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Duplicatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicate, Msg: fmt.Sprintf(format, args...)}
}

func Invalidf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err and reports its kind, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

func IsConflict(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindConflict || k == KindDuplicate)
}

func IsForbidden(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindForbidden
}
