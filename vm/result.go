package vm

import (
	"fmt"

	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
)

// AcceptKind says how execution proceeds after a successful step.
type AcceptKind uint8

const (
	// AcceptNext continues with the next instruction.
	AcceptNext AcceptKind = iota

	// AcceptPush pushes Capture and continues.
	AcceptPush

	// AcceptBreak leaves the innermost loop, with Capture as its value
	// if Capture.Value is not nil.
	AcceptBreak

	// AcceptContinue starts the next iteration of the innermost loop.
	AcceptContinue

	// AcceptReturn leaves the current rule with Capture.Value as result.
	AcceptReturn
)

var acceptKindNames = []string{"next", "push", "break", "continue", "return"}

func (k AcceptKind) String() string {
	if int(k) < len(acceptKindNames) {
		return acceptKindNames[k]
	}
	return fmt.Sprintf("AcceptKind(%d)", k)
}

// Accept is the successful outcome of a rule, a builtin or a single step.
type Accept struct {
	Kind    AcceptKind
	Capture Capture
}

// Push returns an Accept that pushes v as a value.
func Push(v value.Value) Accept {
	return Accept{Kind: AcceptPush, Capture: Capture{Value: v, Rank: RankValue}}
}

// RejectKind says how far a rejection propagates.
type RejectKind uint8

const (
	// RejectNext is a soft reject: the innermost fuse takes over.
	RejectNext RejectKind = iota

	// RejectError is a hard reject: it aborts the parse.
	RejectError

	// RejectReturn rejects the current rule without consulting fuses.
	RejectReturn
)

var rejectKindNames = []string{"next", "error", "return"}

func (k RejectKind) String() string {
	if int(k) < len(rejectKindNames) {
		return rejectKindNames[k]
	}
	return fmt.Sprintf("RejectKind(%d)", k)
}

// Reject is the unsuccessful outcome of a rule, a builtin or a single step.
type Reject struct {
	Kind    RejectKind
	Message string
	Offset  reader.Offset
}

var _ error = (*Reject)(nil)

func (r *Reject) Error() string {
	if r.Message == "" {
		return fmt.Sprintf("reject (%s) @ %d", r.Kind, r.Offset)
	}
	return fmt.Sprintf("reject (%s) @ %d: %s", r.Kind, r.Offset, r.Message)
}

var softReject = &Reject{Kind: RejectNext}

// asReject converts any error into a *Reject. Errors that are not rejects
// already are hard rejects at off.
func asReject(err error, off reader.Offset) *Reject {
	if rej, ok := err.(*Reject); ok {
		return rej
	}
	return &Reject{Kind: RejectError, Message: err.Error(), Offset: off}
}
