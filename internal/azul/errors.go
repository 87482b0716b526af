package azul

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a rejected game operation.
type ErrorCode string

const (
	CodeInvalidTurn     ErrorCode = "INVALID_TURN"
	CodeInvalidState    ErrorCode = "INVALID_STATE"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeArgumentInvalid ErrorCode = "ARGUMENT_INVALID"
)

// RuleError is returned by every engine operation that rejects a request.
// A RuleError is always returned before any state has been modified.
type RuleError struct {
	Code    ErrorCode
	Message string
}

func (e RuleError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("[%s]", e.Code)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches any RuleError with the same code, so callers can write
// errors.Is(err, azul.ErrInvalidTurn).
func (e RuleError) Is(target error) bool {
	t, ok := target.(RuleError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidTurn     = RuleError{Code: CodeInvalidTurn}
	ErrInvalidState    = RuleError{Code: CodeInvalidState}
	ErrNotFound        = RuleError{Code: CodeNotFound}
	ErrArgumentInvalid = RuleError{Code: CodeArgumentInvalid}
)

// CodeOf extracts the code of a RuleError anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var re RuleError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return "", false
}

func invalidTurn(format string, args ...any) error {
	return RuleError{Code: CodeInvalidTurn, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) error {
	return RuleError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return RuleError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func argumentInvalid(format string, args ...any) error {
	return RuleError{Code: CodeArgumentInvalid, Message: fmt.Sprintf(format, args...)}
}
