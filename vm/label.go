package vm

import (
	"fmt"
	"sort"
)

// Label names a code address in a disassembly listing.
type Label struct {
	Rule   int
	Offset int
	Name   string
}

// Labels is an implementation of sort.Interface for *Label slices.
type Labels []*Label

var _ sort.Interface = (Labels)(nil)

func (x Labels) Len() int {
	return len(x)
}

func (x Labels) Less(i, j int) bool {
	a, b := x[i], x[j]
	if a.Rule != b.Rule {
		return a.Rule < b.Rule
	}
	return a.Offset < b.Offset
}

func (x Labels) Swap(i, j int) {
	x[i], x[j] = x[j], x[i]
}

// Find returns the label for the given address, or nil.
func (x Labels) Find(rule, offset int) *Label {
	i := sort.Search(len(x), func(i int) bool {
		l := x[i]
		return l.Rule > rule || (l.Rule == rule && l.Offset >= offset)
	})
	if i < len(x) && x[i].Rule == rule && x[i].Offset == offset {
		return x[i]
	}
	return nil
}

// makeLabels assigns a local label to every jump target in the program.
func (p *Program) makeLabels() Labels {
	var out Labels
	seen := make(map[[2]int]struct{})
	for ri, r := range p.Rules {
		for xp, op := range r.Code {
			meta := op.Code.Meta()
			if meta.N.Type != ImmCodeOffset || !meta.N.IsPresent(op.N) {
				continue
			}
			key := [2]int{ri, xp + op.N}
			if _, found := seen[key]; found {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, &Label{Rule: ri, Offset: xp + op.N})
		}
	}
	sort.Sort(out)
	for i, l := range out {
		l.Name = fmt.Sprintf(".L%d", i)
	}
	return out
}
