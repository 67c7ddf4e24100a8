package ir

import (
	"errors"
	"strings"
	"testing"

	"github.com/tokay-lang/tokay-sub003/charclass"
	"github.com/tokay-lang/tokay-sub003/value"
)

func mustResolve(t *testing.T, u *Unit) {
	t.Helper()
	if err := Resolve(u); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}

func TestFinalize_Props(t *testing.T) {
	type testrow struct {
		Name     string
		Body     Node
		Consumes bool
		Nullable bool
	}

	x := func() Node { return &Match{Text: "x"} }
	data := []testrow{
		testrow{"match", x(), true, false},
		testrow{"empty-match", &Match{Text: ""}, false, true},
		testrow{"char", &Char{Class: charclass.Any()}, true, false},
		testrow{"eof", &EOF{}, false, true},
		testrow{"sequence", &Sequence{Items: []Node{x(), &EOF{}}}, true, false},
		testrow{"optional", &Repeat{Body: x(), Max: 1}, true, true},
		testrow{"plus", &Repeat{Body: x(), Min: 1}, true, false},
		testrow{"alternation", &Alternation{Alts: []Node{x(), &EOF{}}}, true, true},
		testrow{"negation", &Negation{Body: x()}, false, true},
		testrow{"lookahead", &Lookahead{Body: x()}, false, true},
		testrow{"commitment", &Commitment{Body: x()}, true, false},
		testrow{"loop", &Loop{Body: x()}, true, true},
		testrow{"reject", &Reject{}, false, false},
		testrow{"const", &Const{Value: value.Int(1)}, false, true},
		testrow{"builtin", &Builtin{Name: "take", Consumes: true}, true, true},
		testrow{"if", &If{Cond: &Const{Value: value.True}, Then: x()}, true, true},
		testrow{"call", &Symbol{Name: "X"}, true, false},
	}

	for _, row := range data {
		t.Run(row.Name, func(t *testing.T) {
			u := NewUnit()
			u.AddRule("main", row.Body)
			u.AddRule("X", x())
			mustResolve(t, u)
			if err := Finalize(u); err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			r := u.Rules[0]
			if r.Consumes != row.Consumes || r.Nullable != row.Nullable {
				t.Errorf("expected (consumes=%v, nullable=%v), got (%v, %v)", row.Consumes, row.Nullable, r.Consumes, r.Nullable)
			}
			if !u.Finalized() {
				t.Errorf("unit not marked as finalized")
			}
		})
	}
}

func TestFinalize_FixedPoint(t *testing.T) {
	// A = "a" B | ""
	// B = A
	//
	// B only learns that A is nullable and consuming once A has been
	// analyzed; both must end up with the same properties.
	u := NewUnit()
	u.AddRule("A", &Alternation{Alts: []Node{
		&Sequence{Items: []Node{&Match{Text: "a"}, &Symbol{Name: "B"}}},
		&Match{Text: ""},
	}})
	u.AddRule("B", &Symbol{Name: "A"})
	mustResolve(t, u)
	if err := Finalize(u); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	for _, r := range u.Rules {
		if !r.Consumes || !r.Nullable {
			t.Errorf("rule %s: expected consumes and nullable, got (%v, %v)", r.Name, r.Consumes, r.Nullable)
		}
	}
}

func TestFinalize_LeftRecursion(t *testing.T) {
	type testrow struct {
		Name  string
		Build func(u *Unit)
		Rules []string
	}

	data := []testrow{
		testrow{
			// R = R "x" | "x"
			Name: "direct",
			Build: func(u *Unit) {
				u.AddRule("R", &Alternation{Alts: []Node{
					&Sequence{Items: []Node{&Symbol{Name: "R"}, &Match{Text: "x"}}},
					&Match{Text: "x"},
				}})
			},
			Rules: []string{"R"},
		},
		testrow{
			// A = B "a"; B = A "b" | "b"
			Name: "indirect",
			Build: func(u *Unit) {
				u.AddRule("A", &Sequence{Items: []Node{&Symbol{Name: "B"}, &Match{Text: "a"}}})
				u.AddRule("B", &Alternation{Alts: []Node{
					&Sequence{Items: []Node{&Symbol{Name: "A"}, &Match{Text: "b"}}},
					&Match{Text: "b"},
				}})
			},
			Rules: []string{"A", "B"},
		},
		testrow{
			// O = "o"?; R = O R "x" | "x"
			Name: "hidden",
			Build: func(u *Unit) {
				u.AddRule("R", &Alternation{Alts: []Node{
					&Sequence{Items: []Node{&Symbol{Name: "O"}, &Symbol{Name: "R"}, &Match{Text: "x"}}},
					&Match{Text: "x"},
				}})
				u.AddRule("O", &Repeat{Body: &Match{Text: "o"}, Max: 1})
			},
			Rules: []string{"R"},
		},
		testrow{
			// R = peek R
			Name: "lookahead",
			Build: func(u *Unit) {
				u.AddRule("R", &Lookahead{Body: &Symbol{Name: "R"}})
			},
			Rules: []string{"R"},
		},
	}

	for _, row := range data {
		t.Run(row.Name, func(t *testing.T) {
			u := NewUnit()
			row.Build(u)
			mustResolve(t, u)
			err := Finalize(u)
			if !errors.Is(err, ErrLeftRecursion) {
				t.Fatalf("expected ErrLeftRecursion, got %v", err)
			}
			for _, name := range row.Rules {
				if !strings.Contains(err.Error(), name+": "+ErrLeftRecursion.Error()) {
					t.Errorf("rule %s not reported in %q", name, err)
				}
			}
			if u.Finalized() {
				t.Errorf("unit marked as finalized despite errors")
			}
		})
	}
}

func TestFinalize_RightRecursionAccepted(t *testing.T) {
	// R = "x" R | "x"
	u := NewUnit()
	u.AddRule("R", &Alternation{Alts: []Node{
		&Sequence{Items: []Node{&Match{Text: "x"}, &Symbol{Name: "R"}}},
		&Match{Text: "x"},
	}})
	mustResolve(t, u)
	if err := Finalize(u); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestFinalize_NullableRepeat(t *testing.T) {
	u := NewUnit()
	u.AddRule("main", &Repeat{Body: &Repeat{Body: &Match{Text: "x"}, Max: 1}})
	mustResolve(t, u)
	err := Finalize(u)
	if !errors.Is(err, ErrNullableRepeat) {
		t.Fatalf("expected ErrNullableRepeat, got %v", err)
	}
	var se *StructuralError
	if !errors.As(err, &se) || se.Rule != "main" || se.Name != "x?*" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFinalize_RequiresResolve(t *testing.T) {
	u := NewUnit()
	u.AddRule("main", &Match{Text: "x"})
	if err := Finalize(u); !errors.Is(err, ErrNotResolved) {
		t.Errorf("expected ErrNotResolved, got %v", err)
	}
}
