// Package charclass implements predicates over runes, used by the terminal
// constructs that match single characters or runs of characters.
package charclass

// Matcher is a predicate that returns true for certain runes.
//
// Implementations of Matcher must *not* change their state on a call to
// Match; compiled programs share them between concurrent parses.
//
type Matcher interface {
	// Match returns true iff rune r is in the class.
	Match(r rune) bool

	// Optimize returns a Matcher that matches the same set of runes, but
	// possibly in a more efficient way. If no better implementation can be
	// found, returns this matcher.
	Optimize() Matcher

	// String returns a representation of the class in bracket syntax.
	String() string
}

// asRanger is implemented by matchers that can describe themselves as a
// sorted, coalesced list of ranges.
type asRanger interface {
	asRanges() []Range
}

// RangesOf returns the coalesced ranges matched by m and true, or nil and false
// if m cannot be expressed as a finite list of ranges.
func RangesOf(m Matcher) ([]Range, bool) {
	if mr, ok := m.(asRanger); ok {
		return mr.asRanges(), true
	}
	return nil, false
}
