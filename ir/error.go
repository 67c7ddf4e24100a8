package ir

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyUnit      = errors.New("compilation unit has no rules")
	ErrDuplicate      = errors.New("name defined more than once")
	ErrUnresolved     = errors.New("unresolved reference")
	ErrBadConstant    = errors.New("constant is neither a value nor a name")
	ErrNotResolved    = errors.New("unit must be resolved first")
	ErrLeftRecursion  = errors.New("unbounded left recursion")
	ErrNullableRepeat = errors.New("repetition of an expression that can match nothing")
)

// StructuralError is a compile-time error in the grammar, found by Resolve
// or Finalize before any code is generated.
type StructuralError struct {
	// Rule is the name of the rule (or constant) where the error was found.
	Rule string

	// Name is the offending reference, if any.
	Name string

	Err error
}

func (e *StructuralError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %v: %s", e.Rule, e.Err, e.Name)
	}
	return fmt.Sprintf("%s: %v", e.Rule, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
