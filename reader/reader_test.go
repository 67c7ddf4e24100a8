package reader

import (
	"strings"
	"testing"

	"github.com/tokay-lang/tokay-sub003/charclass"
)

func TestReader_MatchString(t *testing.T) {
	r := New("hello world")
	if !r.MatchString("hello") {
		t.Fatalf("MatchString(hello) failed")
	}
	if r.Tell() != 5 {
		t.Errorf("expected offset 5, got %d", r.Tell())
	}
	if r.MatchString("world") {
		t.Errorf("MatchString(world) matched at offset 5")
	}
	if r.Tell() != 5 {
		t.Errorf("failed match moved the cursor to %d", r.Tell())
	}
	r.Reset(0)
	if r.Tell() != 0 || r.EOF() {
		t.Errorf("Reset(0) left cursor at %d", r.Tell())
	}
}

func TestReader_MatchClass(t *testing.T) {
	digits := charclass.Ranges(charclass.Range{Lo: '0', Hi: '9'})

	type testrow struct {
		Input    string
		Many     bool
		Matched  bool
		Expected Offset
	}

	data := []testrow{
		testrow{"123x", false, true, 1},
		testrow{"123x", true, true, 3},
		testrow{"x123", true, false, 0},
		testrow{"", false, false, 0},
		testrow{"42", true, true, 2},
	}

	for i, row := range data {
		r := New(row.Input)
		matched := r.MatchClass(digits, row.Many)
		if matched != row.Matched || r.Tell() != row.Expected {
			t.Errorf("%s/%03d: expected (%v, %d), got (%v, %d)", t.Name(), i, row.Matched, row.Expected, matched, r.Tell())
		}
	}
}

func TestReader_Unicode(t *testing.T) {
	r := New("äb")
	if !r.MatchClass(charclass.Any(), false) {
		t.Fatalf("MatchClass(Any) failed")
	}
	if r.Tell() != 2 {
		t.Errorf("expected to step over a two-byte rune, at %d", r.Tell())
	}
	if ch, n := r.Peek(); ch != 'b' || n != 1 {
		t.Errorf("Peek returned (%q, %d)", ch, n)
	}
}

func TestReader_Position(t *testing.T) {
	r, err := FromReader(strings.NewReader("ab\ncdé\nf"))
	if err != nil {
		t.Fatal(err)
	}

	type testrow struct {
		Offset Offset
		Line   int
		Column int
	}

	data := []testrow{
		testrow{0, 1, 1},
		testrow{2, 1, 3},
		testrow{3, 2, 1},
		testrow{7, 2, 4},
		testrow{8, 3, 1},
	}

	for i, row := range data {
		p := r.Position(row.Offset)
		if p.Line != row.Line || p.Column != row.Column {
			t.Errorf("%s/%03d: offset %d: expected %d:%d, got %d:%d", t.Name(), i, row.Offset, row.Line, row.Column, p.Line, p.Column)
		}
	}
}
