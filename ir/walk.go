package ir

import "fmt"

// slots returns pointers to the child slots of n, in evaluation order.
// Absent optional children are returned as pointers to nil slots.
func slots(n Node) []*Node {
	switch x := n.(type) {
	case *Sequence:
		out := make([]*Node, len(x.Items))
		for i := range x.Items {
			out[i] = &x.Items[i]
		}
		return out
	case *Alternation:
		out := make([]*Node, len(x.Alts))
		for i := range x.Alts {
			out[i] = &x.Alts[i]
		}
		return out
	case *Builtin:
		out := make([]*Node, len(x.Args))
		for i := range x.Args {
			out[i] = &x.Args[i]
		}
		return out
	case *Repeat:
		return []*Node{&x.Body}
	case *Loop:
		return []*Node{&x.Init, &x.Cond, &x.Body}
	case *Negation:
		return []*Node{&x.Body}
	case *Lookahead:
		return []*Node{&x.Body}
	case *Commitment:
		return []*Node{&x.Body}
	case *If:
		return []*Node{&x.Cond, &x.Then, &x.Else}
	case *Alias:
		return []*Node{&x.Body}
	case *Discard:
		return []*Node{&x.Body}
	case *Not:
		return []*Node{&x.Value}
	case *Store:
		return []*Node{&x.Value}
	case *Break:
		return []*Node{&x.Value}
	case *Accept:
		return []*Node{&x.Value}
	case *Match, *Char, *EOF, *Const, *Load, *Continue, *Reject, *Symbol, *Call, *Static:
		return nil
	}
	panic(fmt.Errorf("ir: unknown node %T", n))
}

// Walk calls f on every slot of the tree rooted at *root, parents before
// children. f may replace the node in the slot; Walk then descends into the
// replacement.
func Walk(root *Node, f func(slot *Node)) {
	if *root == nil {
		return
	}
	f(root)
	if *root == nil {
		return
	}
	for _, s := range slots(*root) {
		Walk(s, f)
	}
}
