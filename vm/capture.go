package vm

import (
	"strconv"

	"github.com/tokay-lang/tokay-sub003/value"
)

// Rank orders captures when a frame's captures are collected: only the
// captures of the highest rank present survive.
type Rank uint8

const (
	// RankText is the rank of text pushed by MATCH and CHAR.
	RankText Rank = 1

	// RankValue is the rank of computed values: rule results, constants,
	// locals and builtin results.
	RankValue Rank = 5
)

// Capture is one entry of the capture stack.
type Capture struct {
	Value value.Value
	Alias string
	Rank  Rank
}

func (c Capture) String() string {
	s := value.Repr(c.Value)
	if c.Alias != "" {
		s = c.Alias + " => " + s
	}
	return s + "/" + strconv.Itoa(int(c.Rank))
}

// collect reduces the captures of a frame to at most one.
//
// - Captures below the highest rank present are dropped.
//
// - A single survivor is promoted as is, unless it is aliased, in which case
//   it becomes a one-entry dict.
//
// - Several survivors become a list, or a dict if any of them is aliased.
//   Unaliased entries of a dict are keyed by their position.
//
func collect(ks []Capture) (Capture, bool) {
	if len(ks) == 0 {
		return Capture{}, false
	}

	var max Rank
	var n int
	for _, c := range ks {
		if c.Rank > max {
			max = c.Rank
			n = 0
		}
		if c.Rank == max {
			n++
		}
	}

	aliased := false
	picked := make([]Capture, 0, n)
	for _, c := range ks {
		if c.Rank == max {
			picked = append(picked, c)
			aliased = aliased || c.Alias != ""
		}
	}

	if len(picked) == 1 && !aliased {
		return Capture{Value: picked[0].Value, Rank: max}, true
	}

	if aliased {
		d := value.NewDict()
		for i, c := range picked {
			key := c.Alias
			if key == "" {
				key = strconv.Itoa(i)
			}
			d.Set(key, c.Value)
		}
		return Capture{Value: d, Rank: max}, true
	}

	l := make(value.List, len(picked))
	for i, c := range picked {
		l[i] = c.Value
	}
	return Capture{Value: l, Rank: max}, true
}
