// Package reader provides the input cursor that parses advance over.
//
// Offsets are byte offsets into the input; the advance primitives always step
// over whole runes so an offset produced by the Reader never splits a UTF-8
// sequence.
package reader

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/tokay-lang/tokay-sub003/charclass"
)

// Offset is a position in the input.
type Offset int

// Position is a human-friendly Offset.
type Position struct {
	Offset Offset
	Line   int
	Column int
}

// Reader is a cursor over an input string.
type Reader struct {
	src string
	off int
}

// New returns a Reader positioned at the start of src.
func New(src string) *Reader {
	return &Reader{src: src}
}

// FromReader reads all of r and returns a Reader over its contents.
func FromReader(r io.Reader) (*Reader, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return nil, err
	}
	return New(sb.String()), nil
}

// Tell returns the current offset.
func (r *Reader) Tell() Offset {
	return Offset(r.off)
}

// Reset moves the cursor back (or forward) to a previously told offset.
func (r *Reader) Reset(off Offset) {
	if off < 0 || int(off) > len(r.src) {
		panic("reader: offset out of range")
	}
	r.off = int(off)
}

// Len returns the total length of the input.
func (r *Reader) Len() int {
	return len(r.src)
}

// EOF reports whether the whole input has been consumed.
func (r *Reader) EOF() bool {
	return r.off >= len(r.src)
}

// Peek returns the next rune and its encoded width without consuming it.
// At end of input, width is 0.
func (r *Reader) Peek() (rune, int) {
	if r.off >= len(r.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(r.src[r.off:])
}

// MatchString consumes s if the input continues with it.
func (r *Reader) MatchString(s string) bool {
	if !strings.HasPrefix(r.src[r.off:], s) {
		return false
	}
	r.off += len(s)
	return true
}

// MatchClass consumes one rune in m. With many set, it keeps consuming
// while runes are in m. Returns false without consuming anything if the
// next rune is not in m.
func (r *Reader) MatchClass(m charclass.Matcher, many bool) bool {
	ch, n := r.Peek()
	if n == 0 || !m.Match(ch) {
		return false
	}
	r.off += n
	for many {
		ch, n = r.Peek()
		if n == 0 || !m.Match(ch) {
			break
		}
		r.off += n
	}
	return true
}

// Slice returns the input between two offsets.
func (r *Reader) Slice(from, to Offset) string {
	return r.src[from:to]
}

// Position computes line and column (both 1-based, columns in runes) of off.
func (r *Reader) Position(off Offset) Position {
	p := Position{Offset: off, Line: 1, Column: 1}
	for _, ch := range r.src[:off] {
		if ch == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	return p
}
