// Package vm implements the execution engine: a stack-based interpreter for
// compiled rules, with backtracking frames, a shared capture stack and
// packrat memoization.
//
//
// Every rule of a Program is a flat list of instructions (Op). Jumps are
// relative to the instruction that carries them, so a rule's code can be cut
// and concatenated freely by the compiler.
//
// A Runtime exists once per parse; it owns the Reader, the capture stack
// (KS) and the memo table. Each rule invocation runs in its own Context,
// which owns the instruction pointer (XP) and a stack of frames (CS).
//
// A frame checkpoints the reader offset (DP) and the capture stack length.
// A frame may carry a fuse: the address to continue at when a soft reject
// reaches the frame. Reaching the fuse pops the frame and rolls DP and KS
// back to the checkpoint, both at once. Every frame is left exactly once:
// through its CLOSE, through its fuse, or by unwinding.
//
// Rejects come in three kinds:
//
// • Next: a soft reject. It unwinds frames up to the innermost fuse, or out
// of the rule if there is none. The caller sees a soft reject.
//
// • Error: a hard reject carrying a message. It unwinds everything up to the
// top-level driver, which reports it as a Diagnostic.
//
// • Return: rejects the current rule regardless of fuses. The caller sees a
// soft reject.
//
// When a rule rejects, DP and KS are rolled back to where they were when it
// was entered.
//
//
// The instructions follow, in Go-like pseudocode. `at` is the address of the
// instruction being executed.
//
// • NOP
//
// Does nothing.
//
// • FRAME [n]
//
//   ctx.CS.push({DP: rt.DP, KS: len(rt.KS), Fuse: n != 0 ? at + n : none})
//
// Opens a frame. Without n the frame is a plain checkpoint.
//
// • SEGMENT n
//
//   frame := ctx.CS.top()
//   if rt.DP == frame.DP { ctx.CS.pop(); ctx.XP = frame.Fuse; return }
//   frame.DP = rt.DP
//   frame.KS = len(rt.KS)
//   ctx.XP = at + n
//
// Moves the checkpoint of the innermost frame up to the current state and
// jumps. Used to implement greedy repetition: each successful iteration
// becomes the new rollback point, and the first failing one lands on the
// fuse. An iteration that consumed nothing leaves through the fuse as well.
//
// • CLOSE mode
//
//   frame := ctx.CS.pop()
//   inner := rt.KS[frame.KS:]
//   switch mode {
//   case discard: rt.KS = rt.KS[:frame.KS]
//   case keep:    // nothing
//   case collect: rt.KS = rt.KS[:frame.KS]; if c, ok := collect(inner); ok { push(c) }
//   case value:   rt.KS = rt.KS[:frame.KS]; push(collect(inner) or void)
//   case cond:    rt.KS = rt.KS[:frame.KS]; push(collect(inner) or true)
//   }
//
// Closes the innermost frame. Whether the captures produced inside survive is
// decided by mode, never by the construct that emitted the frame.
//
// • RESET
//
//   rt.DP = ctx.CS.top().DP
//
// Puts the reader back to the checkpoint of the innermost frame.
//
// • FORWARD n
//
//   ctx.XP = at + n
//
// • FORWARDIFTRUE n
//
//   if truthy(rt.KS.pop().Value) { ctx.XP = at + n }
//
// • LOOP n
//
//   ctx.CS.push({IsLoop: true, DP: rt.DP, KS: len(rt.KS), Body: at + 1, Fuse: at + n})
//
// Opens a loop frame. The loop body ends with CONTINUE. The fuse of a loop
// frame is the end of the loop: a soft reject in an iteration undoes that
// iteration and leaves the loop.
//
// • BREAK [value]
//
// Leaves the innermost loop: closes every frame above the loop frame, drops
// the captures produced since the loop started and continues at its fuse. With
// value, the top capture is taken first and pushed again afterwards.
//
// • CONTINUE
//
// Like BREAK, but keeps the loop frame, moves its DP up to the current
// offset and continues at its first instruction.
//
// • DISCARD
//
//   rt.KS.pop()
//
// • INVERT
//
//   c := rt.KS.pop(); push(!truthy(c.Value))
//
// • ERROR s
//
// Hard reject with message s.
//
// • NEXT
//
// Soft reject.
//
// • REJECT
//
// Rejects the current rule.
//
// • ACCEPT [value]
//
// Returns from the current rule. Without value, the rule's result is the
// collection of its captures, as if the end of the code had been reached.
//
// • CALL r
//
// Invokes rule r in a new Context. With Options.Memoize, rules are memoized
// on (r, DP): a hit replays the outcome and moves DP to where the first
// invocation left it; a hit on an invocation that is still running (live
// left recursion) is a soft reject. A non-void result is pushed.
//
// • MATCH l [silent]
//
// Consumes the literal l or soft-rejects. Pushes the matched text unless
// silent.
//
// • CHAR c [many] [silent]
//
// Consumes one rune of class c (with many, as many as possible, at least one)
// or soft-rejects. Pushes the matched text unless silent.
//
// • EOF
//
// Soft-rejects unless the whole input has been consumed.
//
// • STATIC i, LOAD s, STORE s
//
// Pushes static constant i, pushes local slot s, pops into local slot s.
//
// • BUILTIN b n
//
// Pops n arguments and calls builtin b, which answers with the same
// Accept/Reject protocol as a rule.
//
// • ALIAS s
//
// Names the top capture s. Collecting several captures of which at least one
// is named builds a dict instead of a list.
//
package vm
