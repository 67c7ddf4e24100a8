package charclass

import "unicode/utf8"

// Any returns a Matcher that matches every rune.
func Any() Matcher { return singletonAny }

type mAny struct{}

var _ Matcher = (*mAny)(nil)
var singletonAny = &mAny{}

func (m *mAny) Match(r rune) bool { return true }
func (m *mAny) Optimize() Matcher { return singletonAny }
func (m *mAny) String() string    { return "." }
func (m *mAny) asRanges() []Range { return []Range{{0, utf8.MaxRune}} }

// None returns a Matcher that matches no rune at all.
func None() Matcher { return singletonNone }

type mNone struct{}

var _ Matcher = (*mNone)(nil)
var singletonNone = &mNone{}

func (m *mNone) Match(r rune) bool { return false }
func (m *mNone) Optimize() Matcher { return singletonNone }
func (m *mNone) String() string    { return "[]" }
func (m *mNone) asRanges() []Range { return nil }
