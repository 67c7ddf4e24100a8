package charclass

import (
	"bytes"
	"fmt"
	"unicode"
)

var wellKnownControls = map[rune]byte{
	0x07: 'a',
	0x08: 'b',
	0x09: 't',
	0x0a: 'n',
	0x0b: 'v',
	0x0c: 'f',
	0x0d: 'r',
}

func rangeString(rs []Range, negated bool) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	if negated {
		buf.WriteByte('^')
	}
	for _, r := range rs {
		writeClassRune(&buf, r.Lo)
		if r.Hi != r.Lo {
			buf.WriteByte('-')
			writeClassRune(&buf, r.Hi)
		}
	}
	buf.WriteByte(']')
	return buf.String()
}

func writeClassRune(buf *bytes.Buffer, r rune) {
	if ctrl, found := wellKnownControls[r]; found {
		buf.WriteByte('\\')
		buf.WriteByte(ctrl)
	} else if r == '\\' || r == ']' || r == '-' || r == '^' {
		buf.WriteByte('\\')
		buf.WriteRune(r)
	} else if unicode.IsPrint(r) {
		buf.WriteRune(r)
	} else if r <= 0xffff {
		fmt.Fprintf(buf, "\\u%04x", r)
	} else {
		fmt.Fprintf(buf, "\\U%08x", r)
	}
}
