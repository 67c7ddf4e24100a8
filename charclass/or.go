package charclass

// Or returns a Matcher that matches iff any of the given Matchers match.
//
// • Match performance: moderate (limited by inner matchers)
//
// • Usefulness: situational
//
func Or(ms ...Matcher) Matcher {
	l := make([]Matcher, len(ms))
	copy(l, ms)
	return &mUnion{List: l}
}

type mUnion struct {
	List []Matcher
}

var _ Matcher = (*mUnion)(nil)

func (m *mUnion) Match(r rune) bool {
	for _, sub := range m.List {
		if sub.Match(r) {
			return true
		}
	}
	return false
}

func (m *mUnion) Optimize() Matcher {
	switch len(m.List) {
	case 0:
		return None()
	case 1:
		return m.List[0].Optimize()
	}
	list := make([]Matcher, len(m.List))
	var all []Range
	ranged := true
	for i, sub := range m.List {
		list[i] = sub.Optimize()
		if rs, ok := RangesOf(list[i]); ok {
			all = append(all, rs...)
		} else {
			ranged = false
		}
	}
	if ranged {
		return makeRange(all).Optimize()
	}
	return &mUnion{List: list}
}

func (m *mUnion) String() string {
	if rs, ok := RangesOf(m.Optimize()); ok {
		return rangeString(rs, false)
	}
	s := "("
	for i, sub := range m.List {
		if i != 0 {
			s += "|"
		}
		s += sub.String()
	}
	return s + ")"
}
