package templates

import (
	"fmt"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Order compares the specificity of two signature positions.
type Order uint8

const (
	Same Order = iota
	LeftBetter
	RightBetter
	Incomparable
)

func (o Order) String() string {
	switch o {
	case Same:
		return "same"
	case LeftBetter:
		return "left"
	case RightBetter:
		return "right"
	default:
		return "incomparable"
	}
}

func (o Order) flip() Order {
	switch o {
	case LeftBetter:
		return RightBetter
	case RightBetter:
		return LeftBetter
	}
	return o
}

// combine merges the orders of two components of one composite.
func combine(a, b Order) Order {
	switch {
	case a == Same:
		return b
	case b == Same || a == b:
		return a
	}
	return Incomparable
}

// ComparePatterns orders two patterns that both matched the same
// argument. Concrete beats everything parametric; a composite shape beats
// a bare parameter; equal composite shapes compare component-wise.
func ComparePatterns(l, r Pattern) Order {
	_, lc := l.(*Concrete)
	_, rc := r.(*Concrete)
	_, lp := l.(*ParamRef)
	_, rp := r.(*ParamRef)
	switch {
	case lc && rc, lp && rp:
		return Same
	case lc:
		return LeftBetter
	case rc:
		return RightBetter
	case lp:
		return RightBetter
	case rp:
		return LeftBetter
	}

	switch x := l.(type) {
	case *ArrayOf:
		if y, ok := r.(*ArrayOf); ok {
			return combine(ComparePatterns(x.Elem, y.Elem), ComparePatterns(x.Size, y.Size))
		}
	case *TupleOf:
		if y, ok := r.(*TupleOf); ok && len(x.Elems) == len(y.Elems) {
			return compareLists(x.Elems, y.Elems)
		}
	case *PointerTo:
		if y, ok := r.(*PointerTo); ok {
			return ComparePatterns(x.Elem, y.Elem)
		}
	case *FunctionOf:
		if y, ok := r.(*FunctionOf); ok && len(x.Params) == len(y.Params) {
			o := ComparePatterns(x.Ret, y.Ret)
			for i := range x.Params {
				o = combine(o, ComparePatterns(x.Params[i].Type, y.Params[i].Type))
			}
			return o
		}
	case *GenericApp:
		if y, ok := r.(*GenericApp); ok && len(x.Args) == len(y.Args) {
			return compareLists(x.Args, y.Args)
		}
	}
	return Incomparable
}

func compareLists(l, r []Pattern) Order {
	o := Same
	for i := range l {
		o = combine(o, ComparePatterns(l[i], r[i]))
		if o == Incomparable {
			break
		}
	}
	return o
}

// Dominates reports whether x is at least as specific as y in each of the
// first n positions and strictly more specific in at least one.
func Dominates(x, y []Pattern, n int) bool {
	better := false
	for i := 0; i < n && i < len(x) && i < len(y); i++ {
		switch ComparePatterns(x[i], y[i]) {
		case LeftBetter:
			better = true
		case Same:
		default:
			return false
		}
	}
	return better
}

// Candidate is one generic considered for a use site.
type Candidate struct {
	Generic   *Generic
	Deduction *Deduction
	Failure   *Failure
}

// SelectBest picks the candidate that dominates every other surviving
// candidate over the first positions signature positions. Errors are
// reported at site; what names the thing being resolved.
func (e *Engine) SelectBest(cands []Candidate, positions int, site source.Span, what string, rep diag.Reporter) (*Candidate, bool) {
	survivors := make([]*Candidate, 0, len(cands))
	for i := range cands {
		if cands[i].Failure == nil {
			survivors = append(survivors, &cands[i])
		}
	}
	if len(survivors) == 0 {
		e.reportNoMatch(cands, site, what, rep)
		return nil, false
	}

	best := survivors[:0:0]
	for _, s := range survivors {
		dominated := false
		for _, t := range survivors {
			if t != s && Dominates(t.Generic.Signature, s.Generic.Signature, positions) {
				dominated = true
				break
			}
		}
		if !dominated {
			best = append(best, s)
		}
	}
	if len(best) == 1 {
		return best[0], true
	}

	b := diag.ReportError(rep, diag.TplAmbiguous, site,
		fmt.Sprintf("ambiguous template specialization for %s: %d candidates match equally", what, len(best)))
	for _, c := range best {
		b.WithNote(c.Generic.Span, "candidate "+e.GenericLabel(c.Generic))
	}
	b.Emit()
	return nil, false
}

func (e *Engine) reportNoMatch(cands []Candidate, site source.Span, what string, rep diag.Reporter) {
	if len(cands) == 1 {
		c := cands[0]
		diag.ReportError(rep, diag.TplDeductionFailed, site,
			fmt.Sprintf("template arguments deduction failed for %s: %s", what, e.Describe(c.Generic, c.Failure))).
			WithNote(c.Generic.Span, "declared here").
			Emit()
		return
	}
	b := diag.ReportError(rep, diag.TplNoMatch, site, fmt.Sprintf("no matching template for %s", what))
	for _, c := range cands {
		b.WithNote(c.Generic.Span, fmt.Sprintf("candidate %s: %s", e.GenericLabel(c.Generic), e.Describe(c.Generic, c.Failure)))
	}
	b.Emit()
}
