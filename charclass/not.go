package charclass

// Not returns a Matcher that inverts the given Matcher.
//
// • Match performance: fast (limited by inner matcher)
//
// • Usefulness: situational
//
func Not(m Matcher) Matcher {
	return &mNegation{Inner: m}
}

type mNegation struct {
	Inner Matcher
}

var _ Matcher = (*mNegation)(nil)

func (m *mNegation) Match(r rune) bool {
	return !m.Inner.Match(r)
}

func (m *mNegation) Optimize() Matcher {
	if sub, ok := m.Inner.(*mNegation); ok {
		return sub.Inner.Optimize()
	}
	inner := m.Inner.Optimize()
	switch inner.(type) {
	case *mAny:
		return None()
	case *mNone:
		return Any()
	}
	if rs, ok := RangesOf(inner); ok {
		return (&mRange{Ranges: complementRanges(rs)}).Optimize()
	}
	return &mNegation{Inner: inner}
}

func (m *mNegation) String() string {
	if rs, ok := RangesOf(m.Inner); ok {
		return rangeString(rs, true)
	}
	return "!" + m.Inner.String()
}
