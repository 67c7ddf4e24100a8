package vm

import (
	"strings"

	"github.com/tokay-lang/tokay-sub003/value"
)

// BuiltinFunc is a function callable from rules. It answers with the same
// Accept/Reject protocol as a rule: returning a *Reject rejects, any other
// error is a hard reject at the current offset.
type BuiltinFunc func(ctx *Context, args []value.Value) (Accept, error)

// Builtin is an entry of a program's builtin table.
type Builtin struct {
	Name string
	Func BuiltinFunc
}

// DefaultBuiltins returns the builtins every program can use.
//
//   offset()        the current reader offset
//   consumed()      the input consumed by the calling rule so far
//   error(msg...)   hard reject with the arguments as message
//
func DefaultBuiltins() map[string]BuiltinFunc {
	return map[string]BuiltinFunc{
		"offset":   builtinOffset,
		"consumed": builtinConsumed,
		"error":    builtinError,
	}
}

func builtinOffset(ctx *Context, args []value.Value) (Accept, error) {
	return Push(value.Int(ctx.Reader().Tell())), nil
}

func builtinConsumed(ctx *Context, args []value.Value) (Accept, error) {
	r := ctx.Reader()
	return Push(value.Str(r.Slice(ctx.Start, r.Tell()))), nil
}

func builtinError(ctx *Context, args []value.Value) (Accept, error) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg != nil {
			parts = append(parts, arg.String())
		}
	}
	return Accept{}, ctx.Error(strings.Join(parts, " "))
}
