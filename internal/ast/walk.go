package ast

// Inspect traverses e depth-first. f returning false stops descent into
// the children of the current node.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch x := e.(type) {
	case *ApplyExpr:
		Inspect(x.Base, f)
		for _, a := range x.Args {
			Inspect(a, f)
		}
	case *ArrayTypeExpr:
		Inspect(x.Elem, f)
		Inspect(x.Size, f)
	case *TupleTypeExpr:
		for _, el := range x.Elems {
			Inspect(el, f)
		}
	case *PointerTypeExpr:
		Inspect(x.Elem, f)
	case *FuncTypeExpr:
		for _, p := range x.Params {
			Inspect(p.Type, f)
		}
		Inspect(x.Ret, f)
	case *UnaryExpr:
		Inspect(x.X, f)
	case *BinaryExpr:
		Inspect(x.X, f)
		Inspect(x.Y, f)
	case *MemberExpr:
		Inspect(x.X, f)
	case *CallExpr:
		Inspect(x.Callee, f)
		for _, a := range x.Args {
			Inspect(a, f)
		}
	}
}
