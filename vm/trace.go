package vm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/tokay-lang/tokay-sub003/config"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
)

// Tracer writes execution traces and listings when enabled.
type Tracer struct {
	enabled bool
	out     io.Writer
	color   string
	paint   bool
	id      string
}

// NewTracer creates a tracer writing to os.Stderr. color is one of the
// config.Color* values.
func NewTracer(enabled bool, color string) *Tracer {
	t := &Tracer{enabled: enabled, color: color}
	t.SetOutput(os.Stderr)
	return t
}

// SetOutput sets the output writer for the tracer.
func (t *Tracer) SetOutput(w io.Writer) {
	t.out = w
	switch t.color {
	case config.ColorAlways:
		t.paint = true
	case config.ColorNever:
		t.paint = false
	default:
		t.paint = false
		if f, ok := w.(*os.File); ok {
			fd := f.Fd()
			t.paint = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
}

// SetID sets the identifier printed at the start of every line.
func (t *Tracer) SetID(id string) {
	t.id = id
}

// Enabled returns whether the tracer is enabled.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

func (t *Tracer) prefix() string {
	if t.id == "" {
		return "[tokay] "
	}
	return "[tokay " + t.id + "] "
}

// Log prints a formatted message, indented by depth.
func (t *Tracer) Log(depth int, format string, args ...interface{}) {
	if t.Enabled() {
		fmt.Fprintf(t.out, t.prefix()+strings.Repeat("  ", depth)+format+"\n", args...)
	}
}

// Section prints a section header.
func (t *Tracer) Section(name string) {
	if t.Enabled() {
		fmt.Fprintf(t.out, "\n%s=== %s ===\n", t.prefix(), t.highlight(ansiBold, name))
	}
}

// Listing writes the disassembly of p.
func (t *Tracer) Listing(p *Program) error {
	if !t.Enabled() {
		return nil
	}
	_, err := p.Disassemble(t.out)
	return err
}

func (t *Tracer) highlight(code, s string) string {
	if !t.paint {
		return s
	}
	return code + s + ansiReset
}

func (t *Tracer) accepted(s string) string { return t.highlight(ansiGreen, s) }
func (t *Tracer) rejected(s string) string { return t.highlight(ansiRed, s) }
func (t *Tracer) memoized(s string) string { return t.highlight(ansiCyan, s) }
