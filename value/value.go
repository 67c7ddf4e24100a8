// Package value holds the small set of result values that rules produce and
// pass around. A nil Value stands for void (no value).
package value

import (
	"bytes"
	"strconv"
)

// Value is an immutable result value.
type Value interface {
	// String returns the value as plain text.
	String() string

	// Repr returns a source-like rendering, used in listings and traces.
	Repr() string
}

type Str string
type Int int64
type Bool bool
type List []Value

var (
	_ Value = Str("")
	_ Value = Int(0)
	_ Value = Bool(false)
	_ Value = List(nil)
	_ Value = (*Dict)(nil)
)

const (
	True  = Bool(true)
	False = Bool(false)
)

func (s Str) String() string { return string(s) }
func (s Str) Repr() string   { return strconv.Quote(string(s)) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Repr() string   { return i.String() }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (b Bool) Repr() string   { return b.String() }

func (l List) String() string { return l.Repr() }

func (l List) Repr() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, v := range l {
		if i != 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(Repr(v))
	}
	if len(l) == 1 {
		buf.WriteByte(',')
	}
	buf.WriteByte(')')
	return buf.String()
}

// Dict is an insertion-ordered string-keyed map.
type Dict struct {
	Keys  []string
	Items map[string]Value
}

func NewDict() *Dict {
	return &Dict{Items: make(map[string]Value)}
}

// Set inserts or replaces key k.
func (d *Dict) Set(k string, v Value) {
	if _, found := d.Items[k]; !found {
		d.Keys = append(d.Keys, k)
	}
	d.Items[k] = v
}

func (d *Dict) Get(k string) (Value, bool) {
	v, found := d.Items[k]
	return v, found
}

func (d *Dict) Len() int { return len(d.Keys) }

func (d *Dict) String() string { return d.Repr() }

func (d *Dict) Repr() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i, k := range d.Keys {
		if i != 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(k)
		buf.WriteString(" => ")
		buf.WriteString(Repr(d.Items[k]))
	}
	buf.WriteByte(')')
	return buf.String()
}

// Repr is Value.Repr with void rendered as "void".
func Repr(v Value) string {
	if v == nil {
		return "void"
	}
	return v.Repr()
}

// Truthy reports whether v counts as true in a condition.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Str:
		return x != ""
	case List:
		return len(x) != 0
	case *Dict:
		return x.Len() != 0
	}
	return true
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.Keys {
			if y.Keys[i] != k || !Equal(x.Items[k], y.Items[k]) {
				return false
			}
		}
		return true
	}
	return a == b
}
