package compiler

import (
	"fmt"

	"github.com/tokay-lang/tokay-sub003/ir"
	"github.com/tokay-lang/tokay-sub003/vm"
)

// lowerer turns one rule's construct tree into code. Every construct is
// lowered to a self-contained fragment whose jumps stay inside it, so
// fragments are built bottom-up and concatenated without patching.
type lowerer struct {
	c      *Compiler
	unit   *ir.Unit
	t      *tables
	rule   *ir.Rule
	loops  int
	locals int
	errs   []error
}

func (l *lowerer) fail(err error, name string) {
	l.errs = append(l.errs, &ir.StructuralError{Rule: l.rule.Name, Name: name, Err: err})
}

func (l *lowerer) lowerRule(r *ir.Rule) *vm.Rule {
	l.rule = r
	l.loops = 0
	l.locals = r.Locals

	var code []vm.Op
	switch x := r.Body.(type) {
	case *ir.Sequence:
		code = l.items(x.Items)
	case *ir.Repeat:
		code = l.repeat(x)
	default:
		code = l.node(r.Body)
	}

	return &vm.Rule{
		Name:     r.Name,
		Code:     code,
		Locals:   l.locals,
		Consumes: r.Consumes,
	}
}

func join(frags ...[]vm.Op) []vm.Op {
	var n int
	for _, f := range frags {
		n += len(f)
	}
	out := make([]vm.Op, 0, n)
	for _, f := range frags {
		out = append(out, f...)
	}
	return out
}

func ops(list ...vm.Op) []vm.Op {
	return list
}

func flags(silent, many bool) int {
	var f int
	if silent {
		f |= vm.FlagSilent
	}
	if many {
		f |= vm.FlagMany
	}
	return f
}

// framed wraps code so that its captures are reduced by mode.
func framed(code []vm.Op, mode vm.CloseMode) []vm.Op {
	return join(ops(vm.Frame(0)), code, ops(vm.Close(mode)))
}

// value lowers n so that it pushes exactly one capture.
func (l *lowerer) value(n ir.Node) []vm.Op {
	switch n.(type) {
	case *ir.Const, *ir.Static, *ir.Load, *ir.Not:
		return l.node(n)
	}
	return framed(l.node(n), vm.CloseValue)
}

func (l *lowerer) slot(s int) bool {
	if s < 0 {
		l.fail(ErrBadSlot, fmt.Sprintf("$%d", s))
		return false
	}
	if s >= l.locals {
		l.locals = s + 1
	}
	return true
}

func (l *lowerer) items(items []ir.Node) []vm.Op {
	var out []vm.Op
	for _, item := range items {
		if seq, ok := item.(*ir.Sequence); ok {
			out = append(out, l.items(seq.Items)...)
			continue
		}
		out = append(out, l.node(item)...)
	}
	return out
}

func (l *lowerer) repeat(x *ir.Repeat) []vm.Op {
	if x.Min < 0 || (x.Max != 0 && x.Max < x.Min) {
		l.fail(ErrBadRepeat, l.unit.Describe(x))
		return nil
	}

	body := l.node(x.Body)
	n := len(body)
	var out []vm.Op
	for i := 0; i < x.Min; i++ {
		out = append(out, body...)
	}

	if x.Max == 0 {
		return join(out, ops(vm.Frame(n+2)), body, ops(vm.Segment(-n)))
	}

	var opt []vm.Op
	for i := x.Min; i < x.Max; i++ {
		opt = join(ops(vm.Frame(n+len(opt)+2)), body, opt, ops(vm.Close(vm.CloseKeep)))
	}
	return join(out, opt)
}

func (l *lowerer) alternation(alts []ir.Node) []vm.Op {
	if len(alts) == 0 {
		return ops(vm.Next())
	}
	frags := make([][]vm.Op, len(alts))
	for i, alt := range alts {
		frags[i] = l.node(alt)
	}
	tail := frags[len(frags)-1]
	for i := len(frags) - 2; i >= 0; i-- {
		alt := frags[i]
		tail = join(
			ops(vm.Frame(len(alt)+3)),
			alt,
			ops(vm.Close(vm.CloseKeep), vm.Forward(len(tail)+1)),
			tail)
	}
	return tail
}

func (l *lowerer) loop(x *ir.Loop) []vm.Op {
	var init []vm.Op
	if x.Init != nil {
		init = l.node(x.Init)
	}

	l.loops++
	var head []vm.Op
	if x.Cond != nil {
		cond := l.node(x.Cond)
		head = join(
			ops(vm.Frame(len(cond)+3)),
			cond,
			ops(vm.Close(vm.CloseCond), vm.ForwardIfTrue(2), vm.Break(false)))
	}
	var body []vm.Op
	if x.Body != nil {
		body = l.node(x.Body)
	}
	l.loops--

	return join(init, ops(vm.Loop(len(head)+len(body)+2)), head, body, ops(vm.Continue()))
}

func (l *lowerer) cond(x *ir.If) []vm.Op {
	cond := l.node(x.Cond)
	then := l.node(x.Then)
	var els []vm.Op
	if x.Else != nil {
		els = l.node(x.Else)
	}
	c, t, e := len(cond), len(then), len(els)
	return join(
		ops(vm.Frame(c+t+5)),
		cond,
		ops(vm.Close(vm.CloseCond), vm.ForwardIfTrue(2), vm.Forward(t+2)),
		then,
		ops(vm.Forward(e+1)),
		els)
}

func (l *lowerer) node(n ir.Node) []vm.Op {
	switch x := n.(type) {
	case *ir.Match:
		return ops(vm.Match(l.t.literal(x.Text), flags(x.Silent, false)))

	case *ir.Char:
		return ops(vm.Char(l.t.class(x.Class), flags(x.Silent, x.Many)))

	case *ir.EOF:
		return ops(vm.EOF())

	case *ir.Sequence:
		code := l.items(x.Items)
		if len(x.Items) < 2 {
			return code
		}
		return framed(code, vm.CloseCollect)

	case *ir.Alternation:
		return l.alternation(x.Alts)

	case *ir.Repeat:
		code := l.repeat(x)
		if x.Max == 1 {
			return code
		}
		return framed(code, vm.CloseCollect)

	case *ir.Loop:
		return l.loop(x)

	case *ir.Negation:
		body := l.node(x.Body)
		return join(ops(vm.Frame(len(body)+3)), body, ops(vm.Close(vm.CloseDiscard), vm.Next()))

	case *ir.Lookahead:
		body := l.node(x.Body)
		return join(ops(vm.Frame(0)), body, ops(vm.Reset(), vm.Close(vm.CloseDiscard)))

	case *ir.Commitment:
		msg := x.Message
		if msg == "" {
			msg = "Expecting " + l.unit.Describe(x.Body)
		}
		body := l.node(x.Body)
		return join(
			ops(vm.Frame(len(body)+2)),
			body,
			ops(vm.Forward(2), vm.Error(l.t.str(msg)), vm.Close(vm.CloseKeep)))

	case *ir.If:
		return l.cond(x)

	case *ir.Alias:
		return join(l.value(x.Body), ops(vm.Alias(l.t.str(x.Name))))

	case *ir.Discard:
		return join(l.value(x.Body), ops(vm.Discard()))

	case *ir.Const:
		return ops(vm.Static(l.t.static(x.Value)))

	case *ir.Static:
		return ops(vm.Static(x.Index))

	case *ir.Not:
		return join(l.value(x.Value), ops(vm.Invert()))

	case *ir.Load:
		if !l.slot(x.Slot) {
			return nil
		}
		return ops(vm.Load(x.Slot))

	case *ir.Store:
		if !l.slot(x.Slot) {
			return nil
		}
		var v []vm.Op
		if x.Value != nil {
			v = l.value(x.Value)
		} else {
			v = ops(vm.Static(l.t.static(nil)))
		}
		return join(v, ops(vm.Store(x.Slot)))

	case *ir.Builtin:
		fn, found := l.c.builtins[x.Name]
		if !found {
			l.fail(ir.ErrUnresolved, x.Name+"()")
			return nil
		}
		var args []vm.Op
		for _, arg := range x.Args {
			args = append(args, l.value(arg)...)
		}
		return join(args, ops(vm.CallBuiltin(l.t.builtin(x.Name, fn), len(x.Args))))

	case *ir.Break:
		if l.loops == 0 {
			l.fail(ErrLoopControl, "break")
			return nil
		}
		if x.Value == nil {
			return ops(vm.Break(false))
		}
		return join(l.value(x.Value), ops(vm.Break(true)))

	case *ir.Continue:
		if l.loops == 0 {
			l.fail(ErrLoopControl, "continue")
			return nil
		}
		return ops(vm.Continue())

	case *ir.Accept:
		if x.Value == nil {
			return ops(vm.AcceptRule(false))
		}
		return join(l.value(x.Value), ops(vm.AcceptRule(true)))

	case *ir.Reject:
		return ops(vm.RejectRule())

	case *ir.Call:
		return ops(vm.Call(x.Rule))

	case *ir.Symbol:
		assert(false, "%s: unresolved symbol %q after Resolve", l.rule.Name, x.Name)
	}
	assert(false, "%s: unknown construct %T", l.rule.Name, n)
	return nil
}
