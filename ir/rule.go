package ir

import (
	"bytes"

	"github.com/tokay-lang/tokay-sub003/value"
)

// Rule is a named parselet.
type Rule struct {
	Name string
	Body Node

	// Locals is the number of rule-local slots used by Load and Store.
	Locals int

	// Index is the rule's position in Unit.Rules, assigned by Resolve.
	Index int

	// Consumes and Nullable are computed by Finalize.
	//
	// - Consumes: some execution path of Body advances the reader.
	//
	// - Nullable: Body can accept without advancing the reader.
	//
	Consumes bool
	Nullable bool
}

// Constant is a named definition that is not a rule: either a value
// (a *Const) or another name (a *Symbol) that resolves to a rule or to
// another constant.
type Constant struct {
	Name  string
	Value Node
}

// Unit is everything compiled together. Rules[0] is the entry rule.
type Unit struct {
	Rules     []*Rule
	Constants []*Constant

	// Statics is the table that Static handles point into, filled by
	// Resolve.
	Statics []value.Value

	resolved  bool
	finalized bool
}

// NewUnit returns a Unit holding rules, in order.
func NewUnit(rules ...*Rule) *Unit {
	return &Unit{Rules: rules}
}

// AddRule appends a rule and returns it.
func (u *Unit) AddRule(name string, body Node) *Rule {
	r := &Rule{Name: name, Body: body, Index: len(u.Rules)}
	u.Rules = append(u.Rules, r)
	return r
}

// AddConstant appends a named constant.
func (u *Unit) AddConstant(name string, v Node) {
	u.Constants = append(u.Constants, &Constant{Name: name, Value: v})
}

// Resolved reports whether Resolve has completed on u.
func (u *Unit) Resolved() bool { return u.resolved }

// Finalized reports whether Finalize has completed on u.
func (u *Unit) Finalized() bool { return u.finalized }

// Describe renders n with rule names and static values filled in.
func (u *Unit) Describe(n Node) string {
	var buf bytes.Buffer
	describe(&buf, n, u)
	return buf.String()
}
