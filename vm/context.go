package vm

import (
	"github.com/tokay-lang/tokay-sub003/reader"
	"github.com/tokay-lang/tokay-sub003/value"
)

// Context is the state of one rule invocation.
type Context struct {
	rt *Runtime

	// Rule is the rule being executed.
	Rule *Rule

	// Locals holds the rule's local slots.
	Locals []value.Value

	// Start is the reader offset at which the rule was entered.
	Start reader.Offset

	// Base is the capture stack length at which the rule was entered.
	// Captures below Base belong to the callers.
	Base int

	// XP is the index into Rule.Code of the instruction to execute
	// *next*, i.e. after the current one completes.
	XP int

	// cs is the stack of FRAME and LOOP frames.
	//
	// - FRAME and LOOP push a frame. CLOSE pops a FRAME frame.
	//
	// - A soft reject pops frames until one with a fuse is found, then
	//   restores it and continues at its fuse.
	//
	// - BREAK and CONTINUE pop frames down to the innermost LOOP frame.
	//
	// - The stack must be empty when the code runs out.
	//
	cs []frame
}

func newContext(rt *Runtime, r *Rule) *Context {
	return &Context{
		rt:     rt,
		Rule:   r,
		Locals: make([]value.Value, r.Locals),
		Start:  rt.Reader.Tell(),
		Base:   len(rt.KS),
	}
}

// Runtime returns the runtime this context belongs to.
func (ctx *Context) Runtime() *Runtime { return ctx.rt }

// Reader returns the input cursor.
func (ctx *Context) Reader() *reader.Reader { return ctx.rt.Reader }

// Error returns a hard reject with msg at the current offset.
func (ctx *Context) Error(msg string) *Reject {
	return &Reject{Kind: RejectError, Message: msg, Offset: ctx.rt.Reader.Tell()}
}

func (ctx *Context) top() *frame {
	assert(len(ctx.cs) > 0, "%s: empty frame stack", ctx.Rule.Name)
	fr := &ctx.cs[len(ctx.cs)-1]
	assert(!fr.IsLoop, "%s: expected FRAME frame, found LOOP frame", ctx.Rule.Name)
	return fr
}

func (ctx *Context) popFrame() (frame, bool) {
	if len(ctx.cs) == 0 {
		return frame{}, false
	}
	i := len(ctx.cs) - 1
	fr := ctx.cs[i]
	ctx.cs = ctx.cs[:i]
	return fr, true
}

// restore rolls reader and captures back to fr's checkpoint.
func (ctx *Context) restore(fr frame) {
	ctx.rt.Reader.Reset(fr.DP)
	ctx.rt.truncate(fr.KS)
}

// fuse handles a soft reject inside the rule. It returns false if no frame
// has a fuse.
func (ctx *Context) fuse() bool {
	for {
		fr, ok := ctx.popFrame()
		if !ok {
			return false
		}
		if fr.HasFuse() {
			ctx.restore(fr)
			ctx.XP = fr.Fuse
			return true
		}
	}
}

// rollback abandons the rule, restoring the state it was entered with.
// A hard reject keeps the offset it was raised at in Reject.Offset; that is
// the position reported to the caller, not the reader's.
func (ctx *Context) rollback() {
	ctx.cs = ctx.cs[:0]
	ctx.restore(frame{DP: ctx.Start, KS: ctx.Base})
}

// leaveLoop implements BREAK (cont == false) and CONTINUE (cont == true).
func (ctx *Context) leaveLoop(c Capture, cont bool) {
	for {
		assert(len(ctx.cs) > 0, "%s: BREAK or CONTINUE outside of a loop", ctx.Rule.Name)
		fr := ctx.cs[len(ctx.cs)-1]
		if !fr.IsLoop {
			ctx.cs = ctx.cs[:len(ctx.cs)-1]
			continue
		}
		ctx.rt.truncate(fr.KS)
		if cont {
			ctx.cs[len(ctx.cs)-1].DP = ctx.rt.Reader.Tell()
			ctx.XP = fr.Body
			return
		}
		ctx.cs = ctx.cs[:len(ctx.cs)-1]
		ctx.XP = fr.Fuse
		if c.Value != nil {
			ctx.rt.push(c)
		}
		return
	}
}

// result reduces the rule's captures to its result.
func (ctx *Context) result() value.Value {
	c, ok := collect(ctx.rt.KS[ctx.Base:])
	ctx.rt.truncate(ctx.Base)
	if !ok {
		return nil
	}
	return c.Value
}

func (ctx *Context) run() (value.Value, *Reject) {
	code := ctx.Rule.Code
	for ctx.XP < len(code) {
		at := ctx.XP
		op := code[at]
		ctx.XP++

		acc, err := ctx.step(at, op)
		if err != nil {
			rej := asReject(err, ctx.rt.Reader.Tell())
			if rej.Kind == RejectNext {
				ctx.rt.noteReject()
				if ctx.fuse() {
					continue
				}
			}
			ctx.rollback()
			return nil, rej
		}

		switch acc.Kind {
		case AcceptNext:
			// pass

		case AcceptPush:
			ctx.rt.push(acc.Capture)

		case AcceptBreak:
			ctx.leaveLoop(acc.Capture, false)

		case AcceptContinue:
			ctx.leaveLoop(Capture{}, true)

		case AcceptReturn:
			ctx.cs = ctx.cs[:0]
			ctx.rt.truncate(ctx.Base)
			return acc.Capture.Value, nil

		default:
			assert(false, "unknown AcceptKind %d", acc.Kind)
		}
	}

	assert(len(ctx.cs) == 0, "%s: %d frames left open", ctx.Rule.Name, len(ctx.cs))
	return ctx.result(), nil
}

func (ctx *Context) step(at int, op Op) (Accept, error) {
	rt := ctx.rt
	p := rt.P
	r := rt.Reader

	switch op.Code {
	case OpNOP:
		// pass

	case OpFRAME:
		fuse := noFuse
		if op.N != 0 {
			fuse = at + op.N
		}
		ctx.cs = append(ctx.cs, frame{DP: r.Tell(), KS: len(rt.KS), Fuse: fuse})

	case OpSEGMENT:
		fr := ctx.top()
		if r.Tell() == fr.DP {
			ctx.cs = ctx.cs[:len(ctx.cs)-1]
			rt.truncate(fr.KS)
			ctx.XP = fr.Fuse
			break
		}
		fr.DP = r.Tell()
		fr.KS = len(rt.KS)
		ctx.XP = at + op.N

	case OpCLOSE:
		fr := *ctx.top()
		ctx.cs = ctx.cs[:len(ctx.cs)-1]
		return ctx.close(fr, CloseMode(op.N))

	case OpRESET:
		r.Reset(ctx.top().DP)

	case OpFORWARD:
		ctx.XP = at + op.N

	case OpFORWARDIFTRUE:
		if value.Truthy(rt.pop(ctx.Base).Value) {
			ctx.XP = at + op.N
		}

	case OpLOOP:
		ctx.cs = append(ctx.cs, frame{
			IsLoop: true,
			DP:     r.Tell(),
			KS:     len(rt.KS),
			Fuse:   at + op.N,
			Body:   at + 1,
		})

	case OpBREAK:
		var c Capture
		if op.N != 0 {
			c = rt.pop(ctx.Base)
		}
		return Accept{Kind: AcceptBreak, Capture: c}, nil

	case OpCONTINUE:
		return Accept{Kind: AcceptContinue}, nil

	case OpDISCARD:
		rt.pop(ctx.Base)

	case OpINVERT:
		c := rt.pop(ctx.Base)
		return Push(value.Bool(!value.Truthy(c.Value))), nil

	case OpERROR:
		return Accept{}, ctx.Error(p.Strings[op.N])

	case OpNEXT:
		return Accept{}, softReject

	case OpREJECT:
		return Accept{}, &Reject{Kind: RejectReturn, Offset: r.Tell()}

	case OpACCEPT:
		if op.N != 0 {
			c := rt.pop(ctx.Base)
			return Accept{Kind: AcceptReturn, Capture: c}, nil
		}
		return Accept{Kind: AcceptReturn, Capture: Capture{Value: ctx.result(), Rank: RankValue}}, nil

	case OpCALL:
		v, rej := rt.call(op.N)
		if rej != nil {
			return Accept{}, rej
		}
		if v != nil {
			return Push(v), nil
		}

	case OpMATCH:
		lit := p.Literals[op.N]
		if !r.MatchString(lit) {
			return Accept{}, softReject
		}
		if op.Arg&FlagSilent == 0 {
			return Accept{Kind: AcceptPush, Capture: Capture{Value: value.Str(lit), Rank: RankText}}, nil
		}

	case OpCHAR:
		start := r.Tell()
		if !r.MatchClass(p.Classes[op.N], op.Arg&FlagMany != 0) {
			return Accept{}, softReject
		}
		if op.Arg&FlagSilent == 0 {
			return Accept{Kind: AcceptPush, Capture: Capture{Value: value.Str(r.Slice(start, r.Tell())), Rank: RankText}}, nil
		}

	case OpEOF:
		if !r.EOF() {
			return Accept{}, softReject
		}

	case OpSTATIC:
		return Push(p.Statics[op.N]), nil

	case OpLOAD:
		return Push(ctx.Locals[op.N]), nil

	case OpSTORE:
		ctx.Locals[op.N] = rt.pop(ctx.Base).Value

	case OpBUILTIN:
		assert(len(rt.KS)-op.Arg >= ctx.Base, "BUILTIN %s: missing arguments", p.Builtins[op.N].Name)
		n := len(rt.KS) - op.Arg
		args := make([]value.Value, op.Arg)
		for i, c := range rt.KS[n:] {
			args[i] = c.Value
		}
		rt.truncate(n)
		acc, err := p.Builtins[op.N].Func(ctx, args)
		if err != nil {
			return Accept{}, asReject(err, r.Tell())
		}
		return acc, nil

	case OpALIAS:
		c := rt.pop(ctx.Base)
		c.Alias = p.Strings[op.N]
		return Accept{Kind: AcceptPush, Capture: c}, nil

	default:
		assert(false, "%s: unknown opcode %d", ctx.Rule.Name, op.Code)
	}
	return Accept{}, nil
}

func (ctx *Context) close(fr frame, mode CloseMode) (Accept, error) {
	rt := ctx.rt
	if mode == CloseKeep {
		return Accept{}, nil
	}

	c, ok := collect(rt.KS[fr.KS:])
	rt.truncate(fr.KS)
	switch mode {
	case CloseDiscard:
		// pass

	case CloseCollect:
		if ok {
			return Accept{Kind: AcceptPush, Capture: c}, nil
		}

	case CloseValue:
		if !ok {
			c = Capture{Rank: RankValue}
		}
		return Accept{Kind: AcceptPush, Capture: c}, nil

	case CloseCond:
		if !ok {
			c = Capture{Value: value.True, Rank: RankValue}
		}
		return Accept{Kind: AcceptPush, Capture: c}, nil

	default:
		assert(false, "%s: unknown close mode %d", ctx.Rule.Name, mode)
	}
	return Accept{}, nil
}
