package vm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tokay-lang/tokay-sub003/reader"
)

var (
	ErrNoMatch       = errors.New("input does not match")
	ErrHardReject    = errors.New("parse aborted")
	ErrCodeOffset    = errors.New("code offset out of range")
	ErrIndexRange    = errors.New("index out of range")
	ErrBadCloseMode  = errors.New("unknown close mode")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// Diagnostic is the error returned when a parse does not succeed. Err is
// ErrNoMatch or ErrHardReject.
type Diagnostic struct {
	Err      error
	Message  string
	Position reader.Position
}

func (d *Diagnostic) Error() string {
	msg := d.Message
	if msg == "" {
		msg = d.Err.Error()
	}
	return fmt.Sprintf("line %d, column %d: %s", d.Position.Line, d.Position.Column, msg)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// ValidateError is an error found while checking a compiled program. It
// means the compiler produced broken code.
type ValidateError struct {
	Err  error
	Rule string
	XP   int
	Op   Op
}

func (e *ValidateError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "vm: invalid program @ %s+%d: ", e.Rule, e.XP)
	buf.WriteString(e.Op.Code.Meta().Name)
	buf.WriteString(": ")
	buf.WriteString(e.Err.Error())
	return buf.String()
}

func (e *ValidateError) Unwrap() error {
	return e.Err
}
