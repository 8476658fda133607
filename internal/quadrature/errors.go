package quadrature

import (
	"errors"
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// RequestError reports a request that cannot be computed. It is raised
// before any sampling takes place.
type RequestError struct {
	// Code identifies the error category.
	Code RequestErrorCode

	// Rule is the requested rule name.
	Rule ir.Rule

	// N is the requested number of subintervals.
	N int

	// Message is a human-readable description.
	Message string
}

// RequestErrorCode categorizes request errors.
type RequestErrorCode string

const (
	// ErrCodeNotPositive indicates n <= 0.
	ErrCodeNotPositive RequestErrorCode = "N_NOT_POSITIVE"

	// ErrCodeNotDivisible indicates n is not a multiple of the rule's panel size.
	ErrCodeNotDivisible RequestErrorCode = "N_NOT_DIVISIBLE"

	// ErrCodeUnknownRule indicates the rule name is not recognized.
	ErrCodeUnknownRule RequestErrorCode = "UNKNOWN_RULE"

	// ErrCodeInvalidBounds indicates a or b is NaN or infinite.
	ErrCodeInvalidBounds RequestErrorCode = "INVALID_BOUNDS"
)

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRequestError reports whether err is a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsDivisibilityError reports whether err rejects n for not being a
// multiple of the rule's panel size.
func IsDivisibilityError(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNotDivisible
	}
	return false
}

// ErrorCode returns the code of a *RequestError, or "" for other errors.
func ErrorCode(err error) RequestErrorCode {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newNotPositiveError(r Rule, n int) *RequestError {
	return &RequestError{
		Code:    ErrCodeNotPositive,
		Rule:    r.Name,
		N:       n,
		Message: fmt.Sprintf("n must be positive, got %d (%s needs %s)", n, r.Title, r.requirement()),
	}
}

func newNotDivisibleError(r Rule, n int) *RequestError {
	return &RequestError{
		Code:    ErrCodeNotDivisible,
		Rule:    r.Name,
		N:       n,
		Message: fmt.Sprintf("n must be %s, got %d", r.requirement(), n),
	}
}

func newUnknownRuleError(name ir.Rule) *RequestError {
	return &RequestError{
		Code:    ErrCodeUnknownRule,
		Rule:    name,
		Message: fmt.Sprintf("unknown rule %q", string(name)),
	}
}

func newInvalidBoundsError(name ir.Rule, req ir.Request) *RequestError {
	return &RequestError{
		Code: ErrCodeInvalidBounds,
		Rule: name,
		N:    req.N,
		Message: fmt.Sprintf("bounds must be finite, got a=%s b=%s",
			ir.FormatFloat(req.A), ir.FormatFloat(req.B)),
	}
}
