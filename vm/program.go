package vm

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tokay-lang/tokay-sub003/charclass"
	"github.com/tokay-lang/tokay-sub003/config"
	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
)

// Rule is a compiled rule.
type Rule struct {
	Name string
	Code []Op

	// Locals is the number of local slots a Context for this rule gets.
	Locals int

	// Consumes is true iff the rule can consume input.
	Consumes bool
}

// Program is a compiled unit, ready to run.
type Program struct {
	// Rules holds the code of every rule. Rules[Main] is the entry point.
	Rules []*Rule
	Main  int

	// Statics is the table of constant values, referenced by STATIC.
	Statics []value.Value

	// Literals is the table of literals, referenced by MATCH.
	Literals []string

	// Classes is the table of character classes, referenced by CHAR.
	Classes []charclass.Matcher

	// Builtins is the table of builtins, referenced by BUILTIN.
	Builtins []Builtin

	// Strings holds messages and alias names, referenced by ERROR and
	// ALIAS.
	Strings []string

	Options config.Options
}

// Validate checks that every operand of every instruction is in range. A
// program produced by the compiler always validates.
func (p *Program) Validate() error {
	if p.Main < 0 || p.Main >= len(p.Rules) {
		return &ValidateError{Err: ErrIndexRange, Rule: "<main>"}
	}
	for _, r := range p.Rules {
		for xp, op := range r.Code {
			if err := p.validateOp(r, xp, op); err != nil {
				return &ValidateError{Err: err, Rule: r.Name, XP: xp, Op: op}
			}
		}
	}
	return nil
}

func (p *Program) validateOp(r *Rule, xp int, op Op) error {
	meta := op.Code.Meta()
	if meta.Illegal {
		return ErrUnknownOpcode
	}
	for _, x := range []struct {
		m ImmMeta
		v int
	}{{meta.N, op.N}, {meta.Arg, op.Arg}} {
		if !x.m.IsPresent(x.v) {
			continue
		}
		var limit int
		switch x.m.Type {
		case ImmCodeOffset:
			if t := xp + x.v; t < 0 || t > len(r.Code) {
				return ErrCodeOffset
			}
			continue
		case ImmCloseMode:
			limit = len(closeModeNames)
		case ImmStringIdx:
			limit = len(p.Strings)
		case ImmRuleIdx:
			limit = len(p.Rules)
		case ImmLiteralIdx:
			limit = len(p.Literals)
		case ImmClassIdx:
			limit = len(p.Classes)
		case ImmStaticIdx:
			limit = len(p.Statics)
		case ImmSlot:
			limit = r.Locals
		case ImmBuiltinIdx:
			limit = len(p.Builtins)
		default:
			continue
		}
		if x.v < 0 || x.v >= limit {
			return ErrIndexRange
		}
	}
	return nil
}

// Disassemble writes an assembly listing of the program to w.
func (p *Program) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	tables := false
	for i, v := range p.Statics {
		fmt.Fprintf(&buf, "%%static %d %s\n", i, value.Repr(v))
		tables = true
	}
	for i, lit := range p.Literals {
		fmt.Fprintf(&buf, "%%literal %d %q\n", i, lit)
		tables = true
	}
	for i, m := range p.Classes {
		fmt.Fprintf(&buf, "%%class %d %s\n", i, m.String())
		tables = true
	}
	for i, b := range p.Builtins {
		fmt.Fprintf(&buf, "%%builtin %d %s\n", i, b.Name)
		tables = true
	}
	for i, s := range p.Strings {
		fmt.Fprintf(&buf, "%%string %d %q\n", i, s)
		tables = true
	}
	if err := flush(); err != nil {
		return total, err
	}

	labels := p.makeLabels()
	for ri, r := range p.Rules {
		if tables || ri > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(r.Name)
		buf.WriteByte(':')
		var notes []string
		if ri == p.Main {
			notes = append(notes, "main")
		}
		if r.Consumes {
			notes = append(notes, "consuming")
		}
		if r.Locals > 0 {
			notes = append(notes, fmt.Sprintf("locals %d", r.Locals))
		}
		if len(notes) > 0 {
			buf.WriteString(" ; ")
			buf.WriteString(strings.Join(notes, ", "))
		}
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}

		for xp := 0; xp <= len(r.Code); xp++ {
			if label := labels.Find(ri, xp); label != nil {
				buf.WriteString(label.Name)
				buf.WriteString(":\n")
			}
			if xp == len(r.Code) {
				break
			}
			buf.WriteByte('\t')
			p.writeOp(&buf, labels, ri, xp, r.Code[xp])
			buf.WriteByte('\n')
			if err := flush(); err != nil {
				return total, err
			}
		}
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) writeOp(buf *bytes.Buffer, labels Labels, ri, xp int, op Op) {
	meta := op.Code.Meta()
	r := p.Rules[ri]

	first := true
	f := func(m ImmMeta, v int) {
		if !m.IsPresent(v) {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.WriteByte(' ')
		first = false

		bad := func(what string, n int) bool {
			if v < 0 || v >= n {
				fmt.Fprintf(buf, "%d <bad-%s>", v, what)
				return true
			}
			return false
		}

		switch m.Type {
		case ImmCodeOffset:
			if label := labels.Find(ri, xp+v); label != nil {
				fmt.Fprintf(buf, "%s <.%+d>", label.Name, v)
			} else {
				fmt.Fprintf(buf, "<.%+d>", v)
			}

		case ImmCloseMode:
			buf.WriteString(CloseMode(v).String())

		case ImmFlag:
			buf.WriteString("value")

		case ImmCharFlags:
			var words []string
			if v&FlagMany != 0 {
				words = append(words, "many")
			}
			if v&FlagSilent != 0 {
				words = append(words, "silent")
			}
			buf.WriteString(strings.Join(words, " "))

		case ImmStringIdx:
			if !bad("string", len(p.Strings)) {
				fmt.Fprintf(buf, "%q", p.Strings[v])
			}

		case ImmRuleIdx:
			if !bad("rule", len(p.Rules)) {
				buf.WriteString(p.Rules[v].Name)
			}

		case ImmLiteralIdx:
			if !bad("literal", len(p.Literals)) {
				fmt.Fprintf(buf, "%q", p.Literals[v])
			}

		case ImmClassIdx:
			if !bad("class", len(p.Classes)) {
				buf.WriteString(p.Classes[v].String())
			}

		case ImmStaticIdx:
			if !bad("static", len(p.Statics)) {
				buf.WriteString(value.Repr(p.Statics[v]))
			}

		case ImmSlot:
			if !bad("slot", r.Locals) {
				fmt.Fprintf(buf, "$%d", v)
			}

		case ImmBuiltinIdx:
			if !bad("builtin", len(p.Builtins)) {
				buf.WriteString(p.Builtins[v].Name)
			}

		default:
			fmt.Fprintf(buf, "%d", v)
		}
	}

	buf.WriteString(meta.Name)
	f(meta.N, op.N)
	f(meta.Arg, op.Arg)
}

// String returns the disassembly listing.
func (p *Program) String() string {
	var sb strings.Builder
	p.Disassemble(&sb)
	return sb.String()
}

// Exec prepares a parse of input.
func (p *Program) Exec(input string) *Runtime {
	return newRuntime(p, reader.New(input))
}

// ExecReader prepares a parse of the input behind r.
func (p *Program) ExecReader(r *reader.Reader) *Runtime {
	return newRuntime(p, r)
}

// Run parses input and returns the result of the main rule.
func (p *Program) Run(input string) (value.Value, error) {
	return p.Exec(input).Run()
}
