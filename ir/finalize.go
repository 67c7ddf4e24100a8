package ir

import (
	"errors"
	"fmt"
)

// Props is what Finalize knows about a construct.
type Props struct {
	// Consumes is true if some execution path may advance the reader.
	Consumes bool

	// Nullable is true if the construct may accept without advancing the
	// reader.
	Nullable bool
}

// guard is an entry of the "currently analyzing" stack. Only calls in left
// position (nothing consumed since the rule at the bottom of the stack was
// entered) are followed, so the stack is always a chain of left calls and a
// rule found on it again is left recursive.
type guard struct {
	rule int
}

type finalizer struct {
	unit    *Unit
	stack   []guard
	visited map[int]bool
	changed bool

	report   bool
	errs     []error
	leftrec  map[int]bool
	repeated map[*Repeat]bool
}

// Finalize computes Consumes and Nullable for every rule of u and checks the
// grammar for unbounded left recursion and for repetitions that could loop
// without consuming.
//
// Rule properties are computed as a fixed point: every rule starts as
// neither consuming nor nullable, and all rules are re-analyzed until no
// value changes. Values only ever go from false to true, so this terminates
// after at most 2*len(u.Rules)+1 rounds. A final round reports errors
// against the stable values.
func Finalize(u *Unit) error {
	if !u.resolved {
		return ErrNotResolved
	}

	f := &finalizer{
		unit:     u,
		leftrec:  make(map[int]bool),
		repeated: make(map[*Repeat]bool),
	}
	for _, r := range u.Rules {
		r.Consumes = false
		r.Nullable = false
	}

	for {
		f.changed = false
		f.round()
		if !f.changed {
			break
		}
	}

	f.report = true
	f.round()
	assert(!f.changed, "rule properties changed after the fixed point")

	if len(f.errs) != 0 {
		return errors.Join(f.errs...)
	}
	u.finalized = true
	return nil
}

func (f *finalizer) round() {
	for i := range f.unit.Rules {
		f.visited = make(map[int]bool)
		f.rule(i)
	}
}

// rule analyzes a rule reached in left position and returns its properties.
func (f *finalizer) rule(i int) Props {
	r := f.unit.Rules[i]
	for _, g := range f.stack {
		if g.rule == i {
			if f.report && !f.leftrec[i] {
				f.leftrec[i] = true
				f.errs = append(f.errs, &StructuralError{Rule: r.Name, Err: ErrLeftRecursion})
			}
			return Props{r.Consumes, r.Nullable}
		}
	}
	if f.visited[i] {
		return Props{r.Consumes, r.Nullable}
	}
	f.visited[i] = true

	f.stack = append(f.stack, guard{rule: i})
	p := f.node(r.Body, true)
	f.stack = f.stack[:len(f.stack)-1]

	if p.Consumes && !r.Consumes {
		r.Consumes = true
		f.changed = true
	}
	if p.Nullable && !r.Nullable {
		r.Nullable = true
		f.changed = true
	}
	return Props{r.Consumes, r.Nullable}
}

// current returns the rule whose body is being analyzed.
func (f *finalizer) current() *Rule {
	assert(len(f.stack) != 0, "empty guard stack")
	return f.unit.Rules[f.stack[len(f.stack)-1].rule]
}

var (
	consuming = Props{Consumes: true, Nullable: false}
	empty     = Props{Consumes: false, Nullable: true}
	never     = Props{Consumes: false, Nullable: false}
)

// node computes the properties of n. left is true if nothing has been
// consumed since the current rule was entered.
func (f *finalizer) node(n Node, left bool) Props {
	switch x := n.(type) {
	case nil:
		return empty

	case *Match:
		if x.Text == "" {
			return empty
		}
		return consuming

	case *Char:
		return consuming

	case *EOF, *Const, *Load, *Static, *Continue:
		return empty

	case *Reject:
		return never

	case *Sequence:
		return f.sequence(x.Items, left)

	case *Builtin:
		p := f.sequence(x.Args, left)
		p.Consumes = p.Consumes || x.Consumes
		return p

	case *Alternation:
		var p Props
		for _, alt := range x.Alts {
			q := f.node(alt, left)
			p.Consumes = p.Consumes || q.Consumes
			p.Nullable = p.Nullable || q.Nullable
		}
		return p

	case *Repeat:
		b := f.node(x.Body, left)
		if b.Nullable && f.report && !f.repeated[x] {
			f.repeated[x] = true
			f.errs = append(f.errs, &StructuralError{
				Rule: f.current().Name,
				Name: f.unit.Describe(x),
				Err:  ErrNullableRepeat,
			})
		}
		return Props{b.Consumes, x.Min == 0 || b.Nullable}

	case *Loop:
		// A soft reject in the first iteration leaves the loop empty.
		p := f.sequence([]Node{x.Init, x.Cond, x.Body}, left)
		return Props{p.Consumes, true}

	case *Negation:
		f.node(x.Body, left)
		return empty

	case *Lookahead:
		f.node(x.Body, left)
		return empty

	case *Commitment:
		return f.node(x.Body, left)

	case *If:
		c := f.node(x.Cond, left)
		t := f.node(x.Then, left && c.Nullable)
		e := f.node(x.Else, left && c.Nullable)
		return Props{
			Consumes: c.Consumes || t.Consumes || e.Consumes,
			Nullable: c.Nullable && (t.Nullable || e.Nullable),
		}

	case *Alias:
		return f.node(x.Body, left)
	case *Discard:
		return f.node(x.Body, left)
	case *Not:
		return f.node(x.Value, left)
	case *Store:
		return f.node(x.Value, left)
	case *Break:
		return f.node(x.Value, left)
	case *Accept:
		return f.node(x.Value, left)

	case *Call:
		assert(x.Rule >= 0 && x.Rule < len(f.unit.Rules), "call to rule #%d out of range", x.Rule)
		if left {
			return f.rule(x.Rule)
		}
		r := f.unit.Rules[x.Rule]
		return Props{r.Consumes, r.Nullable}

	case *Symbol:
		panic(fmt.Errorf("ir: unresolved symbol %q survived Resolve", x.Name))
	}
	panic(fmt.Errorf("ir: unknown node %T", n))
}

func (f *finalizer) sequence(items []Node, left bool) Props {
	p := Props{Nullable: true}
	for _, item := range items {
		q := f.node(item, left)
		p.Consumes = p.Consumes || q.Consumes
		p.Nullable = p.Nullable && q.Nullable
		left = left && q.Nullable
	}
	return p
}

// assert panics if cond is false.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Errorf("assertion failed: "+format, args...))
	}
}
