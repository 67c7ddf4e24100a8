// Package ir is the construct-level representation of a grammar: the
// combinator tree of every rule, plus the passes that prepare it for code
// generation (Resolve, then Finalize).
package ir

import (
	"bytes"
	"fmt"

	"github.com/tokay-lang/tokay-sub003/charclass"
	"github.com/tokay-lang/tokay-sub003/value"
)

// Node is a construct. The set of implementations is closed; a Node owns its
// children exclusively and rules refer to each other only through Symbol and
// Call handles, so the tree stays acyclic.
type Node interface {
	node()
}

// Match matches a literal. A silent match ("touch") produces no capture.
type Match struct {
	Text   string
	Silent bool
}

// Char matches one rune of Class, or a greedy run of one or more with Many.
type Char struct {
	Class  charclass.Matcher
	Many   bool
	Silent bool
}

// EOF accepts at the end of the input only.
type EOF struct{}

type Sequence struct {
	Items []Node
}

// Alternation tries Alts in order and takes the first that accepts.
type Alternation struct {
	Alts []Node
}

// Repeat matches Body at least Min and, unless Max is 0, at most Max times.
type Repeat struct {
	Body Node
	Min  int
	Max  int
}

// Loop runs Init once, then repeats: stop when Cond (if any) rejects or is
// false, else run Body. Captures of an iteration are discarded.
type Loop struct {
	Init Node
	Cond Node
	Body Node
}

// Negation accepts without consuming iff Body soft-rejects.
type Negation struct {
	Body Node
}

// Lookahead runs Body and puts the reader back where it was.
type Lookahead struct {
	Body Node
}

// Commitment turns a soft reject of Body into a hard error. An empty Message
// is replaced by "Expecting <body>".
type Commitment struct {
	Body    Node
	Message string
}

// If runs Then when Cond accepts with a true value, Else otherwise.
type If struct {
	Cond Node
	Then Node
	Else Node
}

// Alias names the value of Body, so collection builds a dict.
type Alias struct {
	Name string
	Body Node
}

// Discard evaluates Body and drops its value.
type Discard struct {
	Body Node
}

type Const struct {
	Value value.Value
}

// Not evaluates Value and pushes its negated truth value.
type Not struct {
	Value Node
}

// Load pushes the value of a rule-local slot.
type Load struct {
	Slot int
}

// Store sets a rule-local slot.
type Store struct {
	Slot  int
	Value Node
}

// Builtin calls a named primitive registered with the compiler. Consumes
// declares whether the primitive may advance the reader.
type Builtin struct {
	Name     string
	Args     []Node
	Consumes bool
}

// Break leaves the innermost loop, optionally with a value.
type Break struct {
	Value Node
}

type Continue struct{}

// Accept returns from the current rule, optionally with a value.
type Accept struct {
	Value Node
}

// Reject makes the current rule reject, whatever frames are open.
type Reject struct{}

// Symbol is an unresolved reference by name.
type Symbol struct {
	Name string
}

// Call is a resolved reference to a rule of the unit.
type Call struct {
	Rule int
}

// Static is a resolved reference to a constant value of the unit.
type Static struct {
	Index int
}

func (*Match) node()       {}
func (*Char) node()        {}
func (*EOF) node()         {}
func (*Sequence) node()    {}
func (*Alternation) node() {}
func (*Repeat) node()      {}
func (*Loop) node()        {}
func (*Negation) node()    {}
func (*Lookahead) node()   {}
func (*Commitment) node()  {}
func (*If) node()          {}
func (*Alias) node()       {}
func (*Discard) node()     {}
func (*Const) node()       {}
func (*Not) node()         {}
func (*Load) node()        {}
func (*Store) node()       {}
func (*Builtin) node()     {}
func (*Break) node()       {}
func (*Continue) node()    {}
func (*Accept) node()      {}
func (*Reject) node()      {}
func (*Symbol) node()      {}
func (*Call) node()        {}
func (*Static) node()      {}

// Describe renders n for diagnostics. Rule calls are rendered by index;
// use (*Unit).Describe to get rule names.
func Describe(n Node) string {
	var buf bytes.Buffer
	describe(&buf, n, nil)
	return buf.String()
}

func describe(buf *bytes.Buffer, n Node, u *Unit) {
	list := func(items []Node, sep string) {
		for i, item := range items {
			if i != 0 {
				buf.WriteString(sep)
			}
			describe(buf, item, u)
		}
	}

	switch x := n.(type) {
	case nil:
		buf.WriteString("void")
	case *Match:
		buf.WriteString(x.Text)
	case *Char:
		buf.WriteString(x.Class.String())
		if x.Many {
			buf.WriteByte('+')
		}
	case *EOF:
		buf.WriteString("EOF")
	case *Sequence:
		buf.WriteByte('(')
		list(x.Items, " ")
		buf.WriteByte(')')
	case *Alternation:
		buf.WriteByte('(')
		list(x.Alts, " | ")
		buf.WriteByte(')')
	case *Repeat:
		describe(buf, x.Body, u)
		switch {
		case x.Min == 0 && x.Max == 0:
			buf.WriteByte('*')
		case x.Min == 1 && x.Max == 0:
			buf.WriteByte('+')
		case x.Min == 0 && x.Max == 1:
			buf.WriteByte('?')
		case x.Max == 0:
			fmt.Fprintf(buf, "{%d,}", x.Min)
		default:
			fmt.Fprintf(buf, "{%d,%d}", x.Min, x.Max)
		}
	case *Loop:
		buf.WriteString("loop ")
		if x.Cond != nil {
			describe(buf, x.Cond, u)
			buf.WriteByte(' ')
		}
		buf.WriteByte('{')
		describe(buf, x.Body, u)
		buf.WriteByte('}')
	case *Negation:
		buf.WriteString("not ")
		describe(buf, x.Body, u)
	case *Lookahead:
		buf.WriteString("peek ")
		describe(buf, x.Body, u)
	case *Commitment:
		buf.WriteString("expect ")
		describe(buf, x.Body, u)
	case *If:
		buf.WriteString("if ")
		describe(buf, x.Cond, u)
		buf.WriteByte(' ')
		describe(buf, x.Then, u)
		if x.Else != nil {
			buf.WriteString(" else ")
			describe(buf, x.Else, u)
		}
	case *Alias:
		fmt.Fprintf(buf, "%s => ", x.Name)
		describe(buf, x.Body, u)
	case *Discard:
		describe(buf, x.Body, u)
	case *Const:
		buf.WriteString(value.Repr(x.Value))
	case *Not:
		buf.WriteByte('!')
		describe(buf, x.Value, u)
	case *Load:
		fmt.Fprintf(buf, "$%d", x.Slot)
	case *Store:
		fmt.Fprintf(buf, "$%d = ", x.Slot)
		describe(buf, x.Value, u)
	case *Builtin:
		buf.WriteString(x.Name)
		buf.WriteByte('(')
		list(x.Args, ", ")
		buf.WriteByte(')')
	case *Break:
		buf.WriteString("break")
		if x.Value != nil {
			buf.WriteByte(' ')
			describe(buf, x.Value, u)
		}
	case *Continue:
		buf.WriteString("continue")
	case *Accept:
		buf.WriteString("accept")
		if x.Value != nil {
			buf.WriteByte(' ')
			describe(buf, x.Value, u)
		}
	case *Reject:
		buf.WriteString("reject")
	case *Symbol:
		buf.WriteString(x.Name)
	case *Call:
		if u != nil && x.Rule >= 0 && x.Rule < len(u.Rules) {
			buf.WriteString(u.Rules[x.Rule].Name)
		} else {
			fmt.Fprintf(buf, "rule#%d", x.Rule)
		}
	case *Static:
		if u != nil && x.Index >= 0 && x.Index < len(u.Statics) {
			buf.WriteString(value.Repr(u.Statics[x.Index]))
		} else {
			fmt.Fprintf(buf, "static#%d", x.Index)
		}
	default:
		panic(fmt.Errorf("ir: unknown node %T", n))
	}
}
