package vm

import (
	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
)

type memoKey struct {
	rule int
	off  reader.Offset
}

// memoEntry is the outcome of one invocation of a rule at one offset.
// While the invocation is still running, only running is set.
type memoEntry struct {
	running bool
	end     reader.Offset
	result  value.Value
	rej     *Reject
}

// memoTable is unbounded: an in-progress marker must stay visible until its
// invocation completes.
type memoTable map[memoKey]*memoEntry

func (t memoTable) lookup(rule int, off reader.Offset) (*memoEntry, bool) {
	e, found := t[memoKey{rule, off}]
	return e, found
}

func (t memoTable) begin(rule int, off reader.Offset) {
	t[memoKey{rule, off}] = &memoEntry{running: true}
}

func (t memoTable) complete(rule int, off, end reader.Offset, result value.Value, rej *Reject) {
	t[memoKey{rule, off}] = &memoEntry{end: end, result: result, rej: rej}
}
