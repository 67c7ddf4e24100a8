package ir

import (
	"errors"
)

type bindingKind uint8

const (
	bindRule bindingKind = iota
	bindStatic
)

type binding struct {
	kind  bindingKind
	index int
}

func (b binding) node() Node {
	if b.kind == bindRule {
		return &Call{Rule: b.index}
	}
	return &Static{Index: b.index}
}

// Resolve replaces every Symbol in u with a Call or a Static handle.
//
// Rule names are bound first. Constants are then bound in passes, since a
// constant may name another constant defined after it; passes repeat while
// they make progress. Finally every rule body is walked once and its symbols
// are replaced. Structural errors are collected and returned together.
//
func Resolve(u *Unit) error {
	if len(u.Rules) == 0 {
		return ErrEmptyUnit
	}

	var errs []error
	bindings := make(map[string]binding, len(u.Rules)+len(u.Constants))
	for i, r := range u.Rules {
		r.Index = i
		if _, found := bindings[r.Name]; found {
			errs = append(errs, &StructuralError{Rule: r.Name, Name: r.Name, Err: ErrDuplicate})
			continue
		}
		bindings[r.Name] = binding{bindRule, i}
	}

	pending := make([]*Constant, 0, len(u.Constants))
	seen := make(map[string]bool, len(u.Constants))
	for _, c := range u.Constants {
		if _, found := bindings[c.Name]; found || seen[c.Name] {
			errs = append(errs, &StructuralError{Rule: c.Name, Name: c.Name, Err: ErrDuplicate})
			continue
		}
		seen[c.Name] = true
		pending = append(pending, c)
	}

	for progress := true; progress && len(pending) != 0; {
		progress = false
		rest := pending[:0]
		for _, c := range pending {
			b, ok, err := u.bindConstant(c, bindings)
			switch {
			case err != nil:
				errs = append(errs, err)
				progress = true
			case ok:
				bindings[c.Name] = b
				progress = true
			default:
				rest = append(rest, c)
			}
		}
		pending = rest
	}
	for _, c := range pending {
		name := ""
		if sym, ok := c.Value.(*Symbol); ok {
			name = sym.Name
		}
		errs = append(errs, &StructuralError{Rule: c.Name, Name: name, Err: ErrUnresolved})
	}

	for _, r := range u.Rules {
		Walk(&r.Body, func(slot *Node) {
			sym, ok := (*slot).(*Symbol)
			if !ok {
				return
			}
			b, found := bindings[sym.Name]
			if !found {
				errs = append(errs, &StructuralError{Rule: r.Name, Name: sym.Name, Err: ErrUnresolved})
				return
			}
			*slot = b.node()
		})
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}
	u.resolved = true
	return nil
}

func (u *Unit) bindConstant(c *Constant, bindings map[string]binding) (binding, bool, error) {
	switch x := c.Value.(type) {
	case *Const:
		u.Statics = append(u.Statics, x.Value)
		return binding{bindStatic, len(u.Statics) - 1}, true, nil
	case *Static:
		return binding{bindStatic, x.Index}, true, nil
	case *Call:
		return binding{bindRule, x.Rule}, true, nil
	case *Symbol:
		b, found := bindings[x.Name]
		return b, found, nil
	}
	return binding{}, false, &StructuralError{Rule: c.Name, Err: ErrBadConstant}
}
