package function

import (
	"errors"
	"fmt"
)

// Kind classifies why an input was rejected.
type Kind int

const (
	KindSyntax Kind = iota + 1
	KindNotExpression
	KindVariableCount
	KindConstantName
	KindDuplicate
	KindParameter
	KindUndefined
	KindTooLong
)

var (
	ErrSyntax        = errors.New("invalid syntax")
	ErrNotExpression = errors.New("not an expression")
	ErrVariableCount = errors.New("exactly one variable required")
	ErrConstantName  = errors.New("invalid constant name")
	ErrDuplicate     = errors.New("function already exists")
	ErrParameter     = errors.New("invalid parameter")
	ErrUndefined     = errors.New("division by zero")
	ErrTooLong       = errors.New("expression too long")
)

var kindSentinels = map[Kind]error{
	KindSyntax:        ErrSyntax,
	KindNotExpression: ErrNotExpression,
	KindVariableCount: ErrVariableCount,
	KindConstantName:  ErrConstantName,
	KindDuplicate:     ErrDuplicate,
	KindParameter:     ErrParameter,
	KindUndefined:     ErrUndefined,
	KindTooLong:       ErrTooLong,
}

var kindNames = map[Kind]string{
	KindSyntax:        "syntax",
	KindNotExpression: "not_expression",
	KindVariableCount: "variable_count",
	KindConstantName:  "constant_name",
	KindDuplicate:     "duplicate",
	KindParameter:     "parameter",
	KindUndefined:     "undefined",
	KindTooLong:       "too_long",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ValidationError is returned for any user input that cannot become or
// evaluate a Function. errors.Is matches the sentinel of its Kind.
type ValidationError struct {
	Kind    Kind
	Input   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Input == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Input)
}

func (e *ValidationError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(kind Kind, input string, err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Input: input, Message: fmt.Sprintf(format, args...), Err: err}
}
