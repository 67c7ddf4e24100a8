package compiler

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/tokay-lang/tokay-sub003/charclass"
	"github.com/tokay-lang/tokay-sub003/config"
	"github.com/tokay-lang/tokay-sub003/ir"
	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
	"github.com/tokay-lang/tokay-sub003/vm"
)

var reNL = regexp.MustCompile(`(?m)^`)

func diff(l, r string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(l, r, false)
	pretty := dmp.DiffPrettyText(diffs)
	return reNL.ReplaceAllLiteralString(pretty, "\t")
}

func lit(s string) ir.Node         { return &ir.Match{Text: s} }
func seq(items ...ir.Node) ir.Node { return &ir.Sequence{Items: items} }
func alt(alts ...ir.Node) ir.Node  { return &ir.Alternation{Alts: alts} }
func num(i int64) ir.Node          { return &ir.Const{Value: value.Int(i)} }
func str(s string) ir.Node         { return &ir.Const{Value: value.Str(s)} }
func sym(name string) ir.Node      { return &ir.Symbol{Name: name} }

func below(ctx *vm.Context, args []value.Value) (vm.Accept, error) {
	return vm.Push(value.Bool(args[0].(value.Int) < args[1].(value.Int))), nil
}

func add(ctx *vm.Context, args []value.Value) (vm.Accept, error) {
	return vm.Push(args[0].(value.Int) + args[1].(value.Int)), nil
}

func newTestCompiler(opts config.Options) *Compiler {
	c := New(opts)
	c.Register("below", below)
	c.Register("add", add)
	return c
}

// counterUnit is
//
//   main : i = 0; loop below(i, 3) { . ; i = add(i, 1) }; i
//
func counterUnit() *ir.Unit {
	u := ir.NewUnit()
	u.AddRule("main", seq(
		&ir.Store{Slot: 0, Value: num(0)},
		&ir.Loop{
			Cond: &ir.Builtin{Name: "below", Args: []ir.Node{&ir.Load{Slot: 0}, num(3)}},
			Body: seq(
				&ir.Char{Class: charclass.Any(), Silent: true},
				&ir.Store{Slot: 0, Value: &ir.Builtin{Name: "add", Args: []ir.Node{&ir.Load{Slot: 0}, num(1)}}},
			),
		},
		&ir.Load{Slot: 0},
	))
	return u
}

func TestCompile_Listing(t *testing.T) {
	type testrow struct {
		Name     string
		Unit     func() *ir.Unit
		Expected string
	}

	data := []testrow{
		{
			Name: "commitment",
			Unit: func() *ir.Unit {
				u := ir.NewUnit()
				u.AddRule("main", &ir.Commitment{Body: lit("x")})
				return u
			},
			Expected: `
			%literal 0 "x"
			%string 0 "Expecting x"

			main: ; main, consuming
				FRAME .L0 <.+3>
				MATCH "x"
				FORWARD .L1 <.+2>
			.L0:
				ERROR "Expecting x"
			.L1:
				CLOSE keep
			`,
		},
		{
			Name: "counter",
			Unit: counterUnit,
			Expected: `
			%static 0 0
			%static 1 3
			%static 2 1
			%class 0 .
			%builtin 0 below
			%builtin 1 add

			main: ; main, consuming, locals 1
				STATIC 0
				STORE $0
				LOOP .L2 <.+18>
				FRAME .L0 <.+6>
				LOAD $0
				STATIC 3
				BUILTIN below, 2
				CLOSE cond
				FORWARDIFTRUE .L1 <.+2>
			.L0:
				BREAK
			.L1:
				FRAME
				CHAR ., silent
				FRAME
				LOAD $0
				STATIC 1
				BUILTIN add, 2
				CLOSE value
				STORE $0
				CLOSE collect
				CONTINUE
			.L2:
				LOAD $0
			`,
		},
		{
			Name: "choice",
			Unit: func() *ir.Unit {
				u := ir.NewUnit()
				u.AddRule("main", alt(lit("a"), &ir.Negation{Body: lit("b")}, &ir.Lookahead{Body: sym("X")}))
				u.AddRule("X", &ir.Repeat{Body: lit("x")})
				return u
			},
			Expected: `
			%literal 0 "a"
			%literal 1 "b"
			%literal 2 "x"

			main: ; main, consuming
				FRAME .L0 <.+4>
				MATCH "a"
				CLOSE keep
				FORWARD .L3 <.+12>
			.L0:
				FRAME .L2 <.+7>
				FRAME .L1 <.+4>
				MATCH "b"
				CLOSE discard
				NEXT
			.L1:
				CLOSE keep
				FORWARD .L3 <.+5>
			.L2:
				FRAME
				CALL X
				RESET
				CLOSE discard
			.L3:

			X: ; consuming
				FRAME .L5 <.+3>
			.L4:
				MATCH "x"
				SEGMENT .L4 <.-1>
			.L5:
			`,
		},
	}

	for _, row := range data {
		p, err := newTestCompiler(config.Default()).Compile(row.Unit())
		if err != nil {
			t.Errorf("%s/%s: error: %v", t.Name(), row.Name, err)
			continue
		}
		var buf bytes.Buffer
		if _, err := p.Disassemble(&buf); err != nil {
			t.Errorf("%s/%s: error: %v", t.Name(), row.Name, err)
			continue
		}
		actual := buf.String()
		expected := dedent.Dedent(row.Expected)[1:]
		if actual != expected {
			t.Errorf("%s/%s: wrong output:\n%s", t.Name(), row.Name, diff(expected, actual))
		}
	}
}

func TestCompile_Run(t *testing.T) {
	type testrow struct {
		Name      string
		Rules     []*ir.Rule
		Constants []*ir.Constant
		Input     string
		Result    string
		End       reader.Offset
		Err       error
		Message   string
	}

	rule := func(name string, body ir.Node) *ir.Rule {
		return &ir.Rule{Name: name, Body: body}
	}
	digits := &ir.Char{Class: charclass.Ranges(charclass.Range{Lo: '0', Hi: '9'}), Many: true, Silent: true}

	data := []testrow{
		{
			Name:   "commit",
			Rules:  []*ir.Rule{rule("main", &ir.Commitment{Body: lit("x")})},
			Input:  "x",
			Result: `"x"`,
			End:    1,
		},
		{
			Name:    "commit-fail",
			Rules:   []*ir.Rule{rule("main", &ir.Commitment{Body: lit("x")})},
			Input:   "y",
			End:     0,
			Err:     vm.ErrHardReject,
			Message: "Expecting x",
		},
		{
			Name:    "commit-rollback",
			Rules:   []*ir.Rule{rule("main", seq(lit("a"), &ir.Commitment{Body: seq(lit("b"), lit("c"))}))},
			Input:   "abx",
			End:     1,
			Err:     vm.ErrHardReject,
			Message: "Expecting (b c)",
		},
		{
			Name:    "commit-message",
			Rules:   []*ir.Rule{rule("main", &ir.Commitment{Body: lit("x"), Message: "need an x"})},
			Input:   "",
			Err:     vm.ErrHardReject,
			Message: "need an x",
		},
		{
			Name:   "negation",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Negation{Body: lit("a")}, &ir.Char{Class: charclass.Any()}))},
			Input:  "b",
			Result: `"b"`,
			End:    1,
		},
		{
			Name:  "negation-fail",
			Rules: []*ir.Rule{rule("main", seq(&ir.Negation{Body: lit("a")}, &ir.Char{Class: charclass.Any()}))},
			Input: "a",
			End:   1,
			Err:   vm.ErrNoMatch,
		},
		{
			Name:  "negation-empty",
			Rules: []*ir.Rule{rule("main", seq(&ir.Negation{Body: &ir.Lookahead{Body: lit("a")}}, &ir.Char{Class: charclass.Any()}))},
			Input: "ab",
			End:   0,
			Err:   vm.ErrNoMatch,
		},
		{
			Name:  "negation-const",
			Rules: []*ir.Rule{rule("main", seq(&ir.Negation{Body: num(1)}, &ir.Char{Class: charclass.Any()}))},
			Input: "x",
			End:   0,
			Err:   vm.ErrNoMatch,
		},
		{
			Name:   "lookahead",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Lookahead{Body: lit("ab")}, lit("a")))},
			Input:  "ab",
			Result: `"a"`,
			End:    1,
		},
		{
			Name:    "hard-through-lookahead",
			Rules:   []*ir.Rule{rule("main", &ir.Lookahead{Body: &ir.Commitment{Body: lit("x")}})},
			Input:   "y",
			Err:     vm.ErrHardReject,
			Message: "Expecting x",
		},
		{
			Name:    "hard-through-negation",
			Rules:   []*ir.Rule{rule("main", &ir.Negation{Body: &ir.Commitment{Body: lit("x")}})},
			Input:   "y",
			Err:     vm.ErrHardReject,
			Message: "Expecting x",
		},
		{
			Name:   "counter",
			Rules:  counterUnit().Rules,
			Input:  "abcd",
			Result: "3",
			End:    3,
		},
		{
			Name:   "counter-short",
			Rules:  counterUnit().Rules,
			Input:  "ab",
			Result: "2",
			End:    2,
		},
		{
			Name:   "loop-exit",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Loop{Body: lit("a")}, lit("b")))},
			Input:  "aaab",
			Result: `"b"`,
			End:    4,
		},
		{
			Name:   "loop-exit-partial",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Loop{Body: seq(lit("a"), lit("b"))}, lit("ax")))},
			Input:  "abax",
			Result: `"ax"`,
			End:    4,
		},
		{
			Name:   "alternation",
			Rules:  []*ir.Rule{rule("main", alt(lit("a"), lit("b"), lit("c")))},
			Input:  "c",
			Result: `"c"`,
			End:    1,
		},
		{
			Name:   "nested",
			Rules:  []*ir.Rule{rule("main", seq(alt(seq(lit("a"), lit("b")), lit("c")), lit("d")))},
			Input:  "abd",
			Result: `(("a", "b"), "d")`,
			End:    3,
		},
		{
			Name:   "plus",
			Rules:  []*ir.Rule{rule("main", &ir.Repeat{Body: lit("a"), Min: 1})},
			Input:  "aaab",
			Result: `("a", "a", "a")`,
			End:    3,
		},
		{
			Name:  "plus-none",
			Rules: []*ir.Rule{rule("main", &ir.Repeat{Body: lit("a"), Min: 1})},
			Input: "b",
			Err:   vm.ErrNoMatch,
		},
		{
			Name:   "bounded",
			Rules:  []*ir.Rule{rule("main", &ir.Repeat{Body: lit("a"), Min: 2, Max: 3})},
			Input:  "aaaa",
			Result: `("a", "a", "a")`,
			End:    3,
		},
		{
			Name:   "optional-absent",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Repeat{Body: lit("a"), Max: 1}, lit("b")))},
			Input:  "b",
			Result: `"b"`,
			End:    1,
		},
		{
			Name:   "optional-present",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Repeat{Body: lit("a"), Max: 1}, lit("b")))},
			Input:  "ab",
			Result: `("a", "b")`,
			End:    2,
		},
		{
			Name:   "if-then",
			Rules:  []*ir.Rule{rule("main", &ir.If{Cond: lit("a"), Then: str("yes"), Else: str("no")})},
			Input:  "a",
			Result: `"yes"`,
			End:    1,
		},
		{
			Name:   "if-else",
			Rules:  []*ir.Rule{rule("main", &ir.If{Cond: lit("a"), Then: str("yes"), Else: str("no")})},
			Input:  "b",
			Result: `"no"`,
			End:    0,
		},
		{
			Name:   "not",
			Rules:  []*ir.Rule{{Name: "main", Locals: 1, Body: &ir.If{Cond: &ir.Not{Value: &ir.Load{Slot: 0}}, Then: str("unset")}}},
			Input:  "",
			Result: `"unset"`,
		},
		{
			Name:   "alias",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Alias{Name: "x", Body: lit("a")}, &ir.Alias{Name: "y", Body: lit("b")}))},
			Input:  "ab",
			Result: `(x => "a", y => "b")`,
			End:    2,
		},
		{
			Name:   "discard",
			Rules:  []*ir.Rule{rule("main", seq(&ir.Discard{Body: lit("a")}, lit("b")))},
			Input:  "ab",
			Result: `"b"`,
			End:    2,
		},
		{
			Name: "right-recursion",
			Rules: []*ir.Rule{
				rule("main", sym("R")),
				rule("R", alt(seq(lit("a"), sym("R")), lit("b"))),
			},
			Input:  "aab",
			Result: `"b"`,
			End:    3,
		},
		{
			Name: "reject",
			Rules: []*ir.Rule{
				rule("main", alt(sym("B"), lit("a"))),
				rule("B", seq(lit("a"), &ir.Reject{})),
			},
			Input:  "a",
			Result: `"a"`,
			End:    1,
		},
		{
			Name:   "accept",
			Rules:  []*ir.Rule{rule("main", seq(lit("a"), &ir.Accept{Value: num(7)}, lit("never")))},
			Input:  "a",
			Result: "7",
			End:    1,
		},
		{
			Name:   "break",
			Rules:  []*ir.Rule{rule("main", &ir.Loop{Body: seq(lit("a"), &ir.Break{Value: str("stop")})})},
			Input:  "a",
			Result: `"stop"`,
			End:    1,
		},
		{
			Name:  "eof",
			Rules: []*ir.Rule{rule("main", seq(lit("a"), &ir.EOF{}))},
			Input: "ab",
			End:   1,
			Err:   vm.ErrNoMatch,
		},
		{
			Name:    "builtin-error",
			Rules:   []*ir.Rule{rule("main", seq(lit("a"), &ir.Builtin{Name: "error", Args: []ir.Node{str("bad")}}))},
			Input:   "a",
			End:     1,
			Err:     vm.ErrHardReject,
			Message: "bad",
		},
		{
			Name:   "builtin-offset",
			Rules:  []*ir.Rule{rule("main", seq(lit("a"), &ir.Builtin{Name: "offset"}))},
			Input:  "a",
			Result: "1",
			End:    1,
		},
		{
			Name:   "builtin-consumed",
			Rules:  []*ir.Rule{rule("main", seq(digits, &ir.Builtin{Name: "consumed"}))},
			Input:  "123x",
			Result: `"123"`,
			End:    3,
		},
		{
			Name:      "constant",
			Rules:     []*ir.Rule{rule("main", seq(lit("a"), sym("ANSWER")))},
			Constants: []*ir.Constant{{Name: "ANSWER", Value: num(42)}},
			Input:     "a",
			Result:    "42",
			End:       1,
		},
	}

	for _, row := range data {
		u := ir.NewUnit(row.Rules...)
		u.Constants = row.Constants
		p, err := newTestCompiler(config.Default()).Compile(u)
		if err != nil {
			t.Errorf("%s/%s: compile error: %v", t.Name(), row.Name, err)
			continue
		}

		rt := p.Exec(row.Input)
		v, err := rt.Run()
		if row.Err == nil {
			if err != nil {
				t.Errorf("%s/%s: unexpected error: %v", t.Name(), row.Name, err)
				continue
			}
			if actual := value.Repr(v); actual != row.Result {
				t.Errorf("%s/%s: wrong result:\n\texpected: %s\n\tactual: %s", t.Name(), row.Name, row.Result, actual)
			}
			if actual := rt.Reader.Tell(); actual != row.End {
				t.Errorf("%s/%s: wrong end offset: expected %d, got %d", t.Name(), row.Name, row.End, actual)
			}
			continue
		}

		var d *vm.Diagnostic
		if !errors.As(err, &d) || !errors.Is(err, row.Err) {
			t.Errorf("%s/%s: expected %v diagnostic, got %v", t.Name(), row.Name, row.Err, err)
			continue
		}
		if row.Message != "" && d.Message != row.Message {
			t.Errorf("%s/%s: wrong message: expected %q, got %q", t.Name(), row.Name, row.Message, d.Message)
		}
		if d.Position.Offset != row.End {
			t.Errorf("%s/%s: wrong position: expected %d, got %d", t.Name(), row.Name, row.End, d.Position.Offset)
		}
		if rt.Reader.Tell() != 0 {
			t.Errorf("%s/%s: reader not rolled back: %d", t.Name(), row.Name, rt.Reader.Tell())
		}
	}
}

func TestCompile_Memoize(t *testing.T) {
	type testrow struct {
		Memoize bool
		Count   int
	}

	data := []testrow{
		{Memoize: true, Count: 1},
		{Memoize: false, Count: 3},
	}

	for i, row := range data {
		var count int
		opts := config.Default()
		opts.Memoize = row.Memoize
		c := New(opts)
		c.Register("count", func(ctx *vm.Context, args []value.Value) (vm.Accept, error) {
			count++
			return vm.Accept{}, nil
		})

		// main : peek A; peek A; A
		// A    : "a" count()
		u := ir.NewUnit()
		u.AddRule("main", seq(&ir.Lookahead{Body: sym("A")}, &ir.Lookahead{Body: sym("A")}, sym("A")))
		u.AddRule("A", seq(lit("a"), &ir.Builtin{Name: "count"}))

		p, err := c.Compile(u)
		if err != nil {
			t.Fatalf("%s/%03d: compile error: %v", t.Name(), i, err)
		}
		v, err := p.Run("a")
		if err != nil {
			t.Errorf("%s/%03d: unexpected error: %v", t.Name(), i, err)
			continue
		}
		if value.Repr(v) != `"a"` {
			t.Errorf("%s/%03d: wrong result %s", t.Name(), i, value.Repr(v))
		}
		if count != row.Count {
			t.Errorf("%s/%03d: A ran %d times, expected %d", t.Name(), i, count, row.Count)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	type testrow struct {
		Name string
		Body ir.Node
		Err  error
		What string
	}

	data := []testrow{
		{
			Name: "left-recursion",
			Body: alt(seq(sym("main"), lit("x")), lit("x")),
			Err:  ir.ErrLeftRecursion,
		},
		{
			Name: "unresolved",
			Body: sym("nowhere"),
			Err:  ir.ErrUnresolved,
			What: "nowhere",
		},
		{
			Name: "unknown-builtin",
			Body: &ir.Builtin{Name: "nope"},
			Err:  ir.ErrUnresolved,
			What: "nope()",
		},
		{
			Name: "break",
			Body: seq(lit("a"), &ir.Break{}),
			Err:  ErrLoopControl,
			What: "break",
		},
		{
			Name: "continue",
			Body: &ir.Continue{},
			Err:  ErrLoopControl,
			What: "continue",
		},
		{
			Name: "repeat",
			Body: &ir.Repeat{Body: lit("a"), Min: 3, Max: 2},
			Err:  ErrBadRepeat,
			What: "a{3,2}",
		},
		{
			Name: "slot",
			Body: &ir.Load{Slot: -1},
			Err:  ErrBadSlot,
			What: "$-1",
		},
	}

	for _, row := range data {
		u := ir.NewUnit()
		u.AddRule("main", row.Body)
		p, err := Compile(u)
		if p != nil {
			t.Errorf("%s/%s: expected no program", t.Name(), row.Name)
		}
		if !errors.Is(err, row.Err) {
			t.Errorf("%s/%s: expected %v, got %v", t.Name(), row.Name, row.Err, err)
			continue
		}
		var se *ir.StructuralError
		if !errors.As(err, &se) {
			t.Errorf("%s/%s: expected *ir.StructuralError, got %T", t.Name(), row.Name, err)
			continue
		}
		if se.Rule != "main" {
			t.Errorf("%s/%s: wrong rule %q", t.Name(), row.Name, se.Rule)
		}
		if row.What != "" && se.Name != row.What {
			t.Errorf("%s/%s: wrong name: expected %q, got %q", t.Name(), row.Name, row.What, se.Name)
		}
	}
}

func TestCompile_ListingOption(t *testing.T) {
	opts := config.Default()
	opts.Listing = true
	opts.Color = config.ColorNever
	c := New(opts)
	var buf bytes.Buffer
	c.SetOutput(&buf)

	u := ir.NewUnit()
	u.AddRule("main", &ir.Commitment{Body: lit("x")})
	if _, err := c.Compile(u); err != nil {
		t.Fatalf("compile error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"=== listing ===", "main: ; main, consuming", "\tERROR \"Expecting x\"\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing lacks %q:\n%s", want, out)
		}
	}
}
