package compiler

import (
	"fmt"

	"github.com/tokay-lang/tokay-sub003/charclass"
	"github.com/tokay-lang/tokay-sub003/value"
	"github.com/tokay-lang/tokay-sub003/vm"
)

// tables interns the operands that instructions refer to by index.
type tables struct {
	statics    []value.Value
	staticIdx  map[string]int
	literals   []string
	literalIdx map[string]int
	classes    []charclass.Matcher
	classIdx   map[string]int
	builtins   []vm.Builtin
	builtinIdx map[string]int
	strings    []string
	stringIdx  map[string]int
}

func newTables(statics []value.Value) *tables {
	t := &tables{
		staticIdx:  make(map[string]int),
		literalIdx: make(map[string]int),
		classIdx:   make(map[string]int),
		builtinIdx: make(map[string]int),
		stringIdx:  make(map[string]int),
	}
	// Static handles from the resolver index the unit's table directly.
	t.statics = append(t.statics, statics...)
	for i, v := range statics {
		if _, found := t.staticIdx[staticKey(v)]; !found {
			t.staticIdx[staticKey(v)] = i
		}
	}
	return t
}

func staticKey(v value.Value) string {
	return fmt.Sprintf("%T %s", v, value.Repr(v))
}

func (t *tables) static(v value.Value) int {
	key := staticKey(v)
	if i, found := t.staticIdx[key]; found {
		return i
	}
	i := len(t.statics)
	t.statics = append(t.statics, v)
	t.staticIdx[key] = i
	return i
}

func (t *tables) literal(s string) int {
	if i, found := t.literalIdx[s]; found {
		return i
	}
	i := len(t.literals)
	t.literals = append(t.literals, s)
	t.literalIdx[s] = i
	return i
}

func (t *tables) class(m charclass.Matcher) int {
	m = m.Optimize()
	key := m.String()
	if i, found := t.classIdx[key]; found {
		return i
	}
	i := len(t.classes)
	t.classes = append(t.classes, m)
	t.classIdx[key] = i
	return i
}

func (t *tables) builtin(name string, fn vm.BuiltinFunc) int {
	if i, found := t.builtinIdx[name]; found {
		return i
	}
	i := len(t.builtins)
	t.builtins = append(t.builtins, vm.Builtin{Name: name, Func: fn})
	t.builtinIdx[name] = i
	return i
}

func (t *tables) str(s string) int {
	if i, found := t.stringIdx[s]; found {
		return i
	}
	i := len(t.strings)
	t.strings = append(t.strings, s)
	t.stringIdx[s] = i
	return i
}

func (t *tables) fill(p *vm.Program) {
	p.Statics = t.statics
	p.Literals = t.literals
	p.Classes = t.classes
	p.Builtins = t.builtins
	p.Strings = t.strings
}
