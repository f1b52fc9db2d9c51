// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a coordinator failure.
type ErrorCode int32

const (
	// CodeAuthentication is returned when an inbound message does not come
	// from the trusted remote registered for its source chain.
	CodeAuthentication ErrorCode = iota + 1
	// CodeConfiguration is returned when a required address or role is unset.
	CodeConfiguration
	// CodeArithmetic is returned for zero denominators, overflows and
	// insufficient balances or fees.
	CodeArithmetic
	// CodeUnauthorizedCaller is returned when a caller lacks the role an
	// operation requires.
	CodeUnauthorizedCaller
	// CodeMalformed is returned for payloads that cannot be decoded or that
	// carry a message type the receiver does not accept.
	CodeMalformed
)

func (c ErrorCode) String() string {
	switch c {
	case CodeAuthentication:
		return "authentication"
	case CodeConfiguration:
		return "configuration"
	case CodeArithmetic:
		return "arithmetic"
	case CodeUnauthorizedCaller:
		return "unauthorized caller"
	case CodeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

var (
	ErrAuthentication     = &Error{Code: CodeAuthentication, Message: "untrusted source"}
	ErrConfiguration      = &Error{Code: CodeConfiguration, Message: "not configured"}
	ErrArithmetic         = &Error{Code: CodeArithmetic, Message: "arithmetic failure"}
	ErrUnauthorizedCaller = &Error{Code: CodeUnauthorizedCaller, Message: "unauthorized caller"}
	ErrMalformed          = &Error{Code: CodeMalformed, Message: "malformed message"}
)

// Error represents a coordinator error
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so wrapped errors match
// the sentinel values with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Errorf builds an error of the given code.
func Errorf(code ErrorCode, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsPermanent reports whether err must never be retried: untrusted or
// malformed messages are dropped, everything else may succeed on a later
// attempt once an operator acts.
func IsPermanent(err error) bool {
	switch CodeOf(err) {
	case CodeAuthentication, CodeMalformed:
		return true
	default:
		return false
	}
}
