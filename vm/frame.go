package vm

import (
	"github.com/tokay-lang/tokay-sub003/reader"
)

const noFuse = -1

// frame is a single frame on a Context's frame stack.
type frame struct {
	// IsLoop is true iff this frame was pushed by LOOP, or false iff it
	// was pushed by FRAME.
	IsLoop bool

	// DP is the reader offset to restore if the frame is rolled back.
	// LOOP frames move it forward at every CONTINUE.
	DP reader.Offset

	// KS is the capture stack length to restore if the frame is rolled
	// back.
	KS int

	// Fuse is where execution continues after a soft reject stops at this
	// frame, or noFuse. For LOOP frames it is the instruction following
	// the loop.
	Fuse int

	// Body is the first instruction of the loop body.
	// (This field is only meaningful for LOOP frames.)
	Body int
}

// HasFuse reports whether a soft reject stops at this frame.
func (fr frame) HasFuse() bool {
	return fr.Fuse != noFuse
}
