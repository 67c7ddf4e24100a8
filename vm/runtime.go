package vm

import (
	"github.com/google/uuid"

	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
)

// Stats counts events of one parse.
type Stats struct {
	Calls    int
	MemoHits int
}

// Runtime is the state of one parse.
type Runtime struct {
	// P is the program being run.
	P *Program

	// ID identifies this parse in trace output.
	ID string

	// Reader is the input cursor.
	Reader *reader.Reader

	// KS is the capture stack, shared by all rule invocations.
	KS []Capture

	Stats Stats

	memo     memoTable
	trace    *Tracer
	depth    int
	farthest reader.Offset
}

func newRuntime(p *Program, r *reader.Reader) *Runtime {
	id := uuid.NewString()[:8]
	t := NewTracer(p.Options.Trace, p.Options.Color)
	t.SetID(id)
	return &Runtime{
		P:      p,
		ID:     id,
		Reader: r,
		KS:     make([]Capture, 0, 16),
		memo:   make(memoTable),
		trace:  t,
	}
}

// Tracer returns the runtime's tracer, e.g. to redirect its output.
func (rt *Runtime) Tracer() *Tracer {
	return rt.trace
}

// Run executes the main rule from the current reader offset. It returns the
// main rule's result, or a *Diagnostic.
func (rt *Runtime) Run() (value.Value, error) {
	main := rt.P.Rules[rt.P.Main]
	rt.trace.Section("run " + main.Name)
	v, rej := rt.call(rt.P.Main)
	if rej == nil {
		return v, nil
	}

	d := new(Diagnostic)
	if rej.Kind == RejectError {
		d.Err = ErrHardReject
		d.Message = rej.Message
		d.Position = rt.Reader.Position(rej.Offset)
	} else {
		d.Err = ErrNoMatch
		d.Position = rt.Reader.Position(rt.farthest)
	}
	return nil, d
}

// call invokes a rule at the current offset, consulting the memo table
// first.
func (rt *Runtime) call(idx int) (value.Value, *Reject) {
	assert(idx >= 0 && idx < len(rt.P.Rules), "CALL rule index %d out of range", idx)
	r := rt.P.Rules[idx]
	start := rt.Reader.Tell()
	if !rt.P.Options.Memoize {
		return rt.invoke(r, start)
	}

	if e, found := rt.memo.lookup(idx, start); found {
		if e.running {
			rt.trace.Log(rt.depth, "%s @%d %s", r.Name, start, rt.trace.memoized("in progress"))
			return nil, softReject
		}
		rt.Stats.MemoHits++
		rt.trace.Log(rt.depth, "%s @%d %s @%d", r.Name, start, rt.trace.memoized("memo"), e.end)
		rt.Reader.Reset(e.end)
		return e.result, e.rej
	}

	rt.memo.begin(idx, start)
	v, rej := rt.invoke(r, start)
	rt.memo.complete(idx, start, rt.Reader.Tell(), v, rej)
	return v, rej
}

func (rt *Runtime) invoke(r *Rule, start reader.Offset) (value.Value, *Reject) {
	rt.Stats.Calls++
	rt.trace.Log(rt.depth, "%s @%d", r.Name, start)
	rt.depth++
	ctx := newContext(rt, r)
	v, rej := ctx.run()
	rt.depth--

	if rej != nil {
		if rej.Kind == RejectReturn {
			rej = softReject
		}
		if rt.trace.Enabled() {
			rt.trace.Log(rt.depth, "%s @%d %s", r.Name, start, rt.trace.rejected(rej.Error()))
		}
		return nil, rej
	}
	if rt.trace.Enabled() {
		rt.trace.Log(rt.depth, "%s @%d %s @%d %s", r.Name, start, rt.trace.accepted("accept"), rt.Reader.Tell(), value.Repr(v))
	}
	return v, nil
}

func (rt *Runtime) push(c Capture) {
	rt.KS = append(rt.KS, c)
}

func (rt *Runtime) pop(base int) Capture {
	assert(len(rt.KS) > base, "capture stack underflow")
	i := len(rt.KS) - 1
	c := rt.KS[i]
	rt.KS = rt.KS[:i]
	return c
}

func (rt *Runtime) truncate(n int) {
	assert(n <= len(rt.KS), "capture stack truncated upwards (%d > %d)", n, len(rt.KS))
	rt.KS = rt.KS[:n]
}

func (rt *Runtime) noteReject() {
	if off := rt.Reader.Tell(); off > rt.farthest {
		rt.farthest = off
	}
}
