// Package domain defines the error taxonomy shared by the pill, schedule
// and user services. Expected failures carry a stable Code that the HTTP
// layer maps to a (status, message) pair; anything without a Code is an
// infrastructure fault.
package domain

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNullValue        Code = "NULL_VALUE"
	CodeNoPillName       Code = "NO_PILL_NAME"
	CodePillCountOver    Code = "PILL_COUNT_OVER"
	CodeNoUser           Code = "NO_USER"
	CodeNoMember         Code = "NO_MEMBER"
	CodeNoPill           Code = "NO_PILL"
	CodePillUnauthorized Code = "PILL_UNAUTHORIZED"
	CodeAlreadyStopped   Code = "ALREADY_PILL_STOP"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func E(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf reports the domain code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

func HasCode(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
