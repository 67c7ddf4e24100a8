// Package compiler lowers a grammar unit into a vm.Program.
//
// Compile resolves and finalizes the unit if that has not happened yet, so
// structural errors are all reported before any code is generated. Each
// rule is then lowered construct by construct into instructions with
// relative jumps only.
package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tokay-lang/tokay-sub003/config"
	"github.com/tokay-lang/tokay-sub003/ir"
	"github.com/tokay-lang/tokay-sub003/vm"
)

// Compiler holds the options and builtins that programs are compiled with.
type Compiler struct {
	opts     config.Options
	builtins map[string]vm.BuiltinFunc
	trace    *vm.Tracer
}

// New returns a compiler that knows vm.DefaultBuiltins.
func New(opts config.Options) *Compiler {
	return &Compiler{
		opts:     opts,
		builtins: vm.DefaultBuiltins(),
		trace:    vm.NewTracer(opts.Listing, opts.Color),
	}
}

// Register makes a builtin callable by name, replacing any builtin of the
// same name.
func (c *Compiler) Register(name string, fn vm.BuiltinFunc) {
	c.builtins[name] = fn
}

// SetOutput redirects the listing written when Options.Listing is set.
func (c *Compiler) SetOutput(w io.Writer) {
	c.trace.SetOutput(w)
}

// Compile compiles u with the default options.
func Compile(u *ir.Unit) (*vm.Program, error) {
	return New(config.Default()).Compile(u)
}

// Compile compiles u. Errors in the grammar are returned joined, as
// *ir.StructuralError values; no program is returned in that case.
func (c *Compiler) Compile(u *ir.Unit) (*vm.Program, error) {
	if !u.Resolved() {
		if err := ir.Resolve(u); err != nil {
			return nil, err
		}
	}
	if !u.Finalized() {
		if err := ir.Finalize(u); err != nil {
			return nil, err
		}
	}

	t := newTables(u.Statics)
	l := &lowerer{c: c, unit: u, t: t}
	p := &vm.Program{Options: c.opts}
	for _, r := range u.Rules {
		p.Rules = append(p.Rules, l.lowerRule(r))
	}
	if len(l.errs) != 0 {
		return nil, errors.Join(l.errs...)
	}
	t.fill(p)

	if err := p.Validate(); err != nil {
		panic(err)
	}

	if c.trace.Enabled() {
		c.trace.Section("listing")
		if err := c.trace.Listing(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// assert panics if cond is false.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		var buf bytes.Buffer
		buf.WriteString("assertion failed: ")
		fmt.Fprintf(&buf, format, args...)
		panic(errors.New(buf.String()))
	}
}
