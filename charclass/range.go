package charclass

import (
	"sort"
	"unicode/utf8"
)

// Range represents a range of consecutive runes.
//
// If Lo < Hi, then this Range represents the runes Lo, Lo+1, ..., Hi-1, Hi.
//
// If Lo == Hi, then this Range represents the single rune Lo.
//
// If Lo > Hi, then this Range represents the null set.
//
type Range struct {
	Lo rune
	Hi rune
}

// Ranges returns a Matcher that matches any rune that falls in one of the
// given Range entries.
//
// • Match performance: moderate (binary search)
//
// • Usefulness: broad
//
// This is the usual representation of a bracketed class like [a-zA-Z_].
//
func Ranges(rs ...Range) Matcher {
	return makeRange(rs)
}

type mRange struct {
	Ranges []Range
}

var _ Matcher = (*mRange)(nil)

func (m *mRange) Match(r rune) bool {
	i := sort.Search(len(m.Ranges), func(i int) bool {
		return m.Ranges[i].Hi >= r
	})
	if i >= len(m.Ranges) {
		return false
	}
	return m.Ranges[i].Lo <= r
}

func (m *mRange) Optimize() Matcher {
	switch {
	case len(m.Ranges) == 0:
		return None()
	case len(m.Ranges) == 1 && m.Ranges[0].Lo == 0 && m.Ranges[0].Hi == utf8.MaxRune:
		return Any()
	case len(m.Ranges) == 1 && m.Ranges[0].Lo == m.Ranges[0].Hi:
		return Exactly(m.Ranges[0].Lo)
	}
	return m
}

func (m *mRange) String() string {
	return rangeString(m.Ranges, false)
}

func (m *mRange) asRanges() []Range {
	return m.Ranges
}

func makeRange(rs []Range) *mRange {
	return &mRange{Ranges: coalesceRanges(rs)}
}

func coalesceRanges(a []Range) []Range {
	// (*mRange).Match relies on the following:
	//
	// - All Range entries have Lo <= Hi
	//
	// - There are no overlapping Range entries
	//
	// - The Range entries are sorted by Lo
	//
	// Adjacent-but-non-overlapping ranges are merged as well.

	b := make([]Range, 0, len(a))
	for _, r := range a {
		if r.Hi >= r.Lo {
			b = append(b, r)
		}
	}
	sort.Slice(b, func(i, j int) bool { return b[i].Lo < b[j].Lo })

	if len(b) < 2 {
		return b
	}

	// Entries are sorted by Lo ascending, which leaves three cases:
	//
	// 1. Disjoint:             [a..b] [c..d], b+1 < c  → keep both
	//
	// 2. Adjacent/overlapping: [a..b][c..d],  b+1 >= c → [a..max(b,d)]
	//
	// 3. Contained:            [a....b] ⊇ [c..d]        → discard [c..d]
	//
	c := make([]Range, 0, len(b))
	for _, r := range b {
		n := len(c)
		switch {
		case n != 0 && c[n-1].Hi >= r.Hi:
			// Case 3
		case n != 0 && c[n-1].Hi+1 >= r.Lo:
			// Case 2
			c[n-1].Hi = r.Hi
		default:
			// Case 1
			c = append(c, r)
		}
	}
	return c
}

// complementRanges returns the ranges of [0, MaxRune] not covered by rs,
// which must already be coalesced.
func complementRanges(rs []Range) []Range {
	out := make([]Range, 0, len(rs)+1)
	next := rune(0)
	for _, r := range rs {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= utf8.MaxRune {
		out = append(out, Range{next, utf8.MaxRune})
	}
	return out
}
