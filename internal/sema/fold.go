package sema

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/ast"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/diag"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/templates"
	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// convertConst gives constant v the type t. Untyped integers must be
// representable; typed constants must already have type t.
func (tc *typeChecker) convertConst(v templates.Value, t types.TypeID, sp source.Span, rep diag.Reporter) (templates.Value, bool) {
	if !v.Untyped {
		if v.Arg.Type != t {
			diag.ReportError(rep, diag.SemaTypeMismatch, sp,
				fmt.Sprintf("expected %s, got %s", tc.label(t), tc.describe(v))).
				Emit()
			return templates.Value{}, false
		}
		return v, true
	}
	switch tc.types.KindOf(t) {
	case types.KindInt, types.KindUint, types.KindSize, types.KindChar, types.KindByte:
	default:
		diag.ReportError(rep, diag.SemaTypeMismatch, sp,
			fmt.Sprintf("expected %s, got %s", tc.label(t), tc.describe(v))).
			Emit()
		return templates.Value{}, false
	}
	n := int64(v.Arg.Bits) //nolint:gosec // untyped constants keep int64 bits
	if !tc.types.FitsSigned(t, n) {
		diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, sp,
			fmt.Sprintf("value %d does not fit into %s", n, tc.label(t))).
			Emit()
		return templates.Value{}, false
	}
	return constValue(t, tc.types.Normalize(t, v.Arg.Bits)), true
}

// defaultType is the type an untyped constant takes when nothing else
// decides it.
func (tc *typeChecker) defaultType(v templates.Value, sp source.Span, rep diag.Reporter) (templates.Value, bool) {
	if !v.Untyped {
		return v, true
	}
	return tc.convertConst(v, tc.types.Builtins().I32, sp, rep)
}

func (tc *typeChecker) unary(sc *Scope, x *ast.UnaryExpr, rep diag.Reporter) templates.Value {
	if lit, ok := x.X.(*ast.IntLit); ok && x.Op == ast.OpNeg {
		if t, signed := tc.signedSuffix(lit.Suffix); signed {
			return tc.negativeLiteral(lit, t, x, rep)
		}
	}
	v := tc.eval(sc, x.X, rep)
	if v.Kind == templates.ValueInvalid {
		return v
	}
	b := tc.types.Builtins()
	switch x.Op {
	case ast.OpNeg:
		switch {
		case v.Kind == templates.ValueConst && v.Untyped:
			n := int64(v.Arg.Bits) //nolint:gosec // untyped constants keep int64 bits
			if n == math.MinInt64 {
				break
			}
			return untypedValue(-n)
		case v.Kind == templates.ValueConst && tc.types.IsSigned(v.Arg.Type):
			n := int64(v.Arg.Bits) //nolint:gosec // signed constants are sign-extended
			if n == math.MinInt64 || !tc.types.FitsSigned(v.Arg.Type, -n) {
				diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
					fmt.Sprintf("negation of %d overflows %s", n, tc.label(v.Arg.Type))).
					Emit()
				return templates.Value{}
			}
			return constValue(v.Arg.Type, tc.types.Normalize(v.Arg.Type, uint64(-n))) //nolint:gosec // two's complement
		case v.Kind == templates.ValueRuntime && tc.types.IsSigned(v.Arg.Type):
			return runtimeValue(v.Arg.Type, false)
		}
	case ast.OpNot:
		switch {
		case v.Kind == templates.ValueConst && v.Arg.Type == b.Bool:
			return constValue(b.Bool, v.Arg.Bits^1)
		case v.Kind == templates.ValueRuntime && v.Arg.Type == b.Bool:
			return runtimeValue(b.Bool, false)
		}
	}
	diag.ReportError(rep, diag.SemaInvalidUnaryOperand, x.Span(),
		fmt.Sprintf("invalid operand for unary operator: %s", tc.describe(v))).
		Emit()
	return templates.Value{}
}

func isComparison(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return true
	}
	return false
}

func isLogical(op ast.BinaryOp) bool {
	return op == ast.OpAnd || op == ast.OpOr
}

func (tc *typeChecker) binary(sc *Scope, x *ast.BinaryExpr, rep diag.Reporter) templates.Value {
	l := tc.eval(sc, x.X, rep)
	r := tc.eval(sc, x.Y, rep)
	if l.Kind == templates.ValueInvalid || r.Kind == templates.ValueInvalid {
		return templates.Value{}
	}
	valueKind := func(v templates.Value) bool {
		return v.Kind == templates.ValueConst || v.Kind == templates.ValueRuntime
	}
	if !valueKind(l) || !valueKind(r) {
		return tc.badOperands(x, l, r, rep)
	}

	// untyped operands take the type of the other side
	switch {
	case l.Untyped && r.Untyped:
	case l.Untyped:
		var ok bool
		if l, ok = tc.convertConst(l, r.Arg.Type, x.X.Span(), rep); !ok {
			return templates.Value{}
		}
	case r.Untyped:
		var ok bool
		if r, ok = tc.convertConst(r, l.Arg.Type, x.Y.Span(), rep); !ok {
			return templates.Value{}
		}
	}
	if !l.Untyped && l.Arg.Type != r.Arg.Type {
		return tc.badOperands(x, l, r, rep)
	}

	b := tc.types.Builtins()
	t := l.Arg.Type
	switch {
	case isLogical(x.Op):
		if t != b.Bool {
			return tc.badOperands(x, l, r, rep)
		}
	case isComparison(x.Op):
		if !l.Untyped && !tc.types.IsValueParamType(t) && !tc.isFloat(t) {
			return tc.badOperands(x, l, r, rep)
		}
	default:
		if !l.Untyped && !tc.types.IsInteger(t) && !tc.isFloat(t) {
			return tc.badOperands(x, l, r, rep)
		}
	}

	if l.Kind == templates.ValueRuntime || r.Kind == templates.ValueRuntime {
		if isComparison(x.Op) || isLogical(x.Op) {
			return runtimeValue(b.Bool, false)
		}
		return runtimeValue(t, false)
	}
	if tc.isFloat(t) {
		diag.ReportError(rep, diag.SemaConstNotConstant, x.Span(), "floating point constants are not supported").Emit()
		return templates.Value{}
	}
	return tc.fold(x, l, r, rep)
}

func (tc *typeChecker) isFloat(t types.TypeID) bool {
	return tc.types.KindOf(t) == types.KindFloat
}

func (tc *typeChecker) badOperands(x *ast.BinaryExpr, l, r templates.Value, rep diag.Reporter) templates.Value {
	diag.ReportError(rep, diag.SemaInvalidBinaryOperands, x.Span(),
		fmt.Sprintf("invalid operands for %s: %s and %s", x.Op, tc.describe(l), tc.describe(r))).
		Emit()
	return templates.Value{}
}

// fold evaluates a binary operator over two constants of one type (or two
// untyped constants).
func (tc *typeChecker) fold(x *ast.BinaryExpr, l, r templates.Value, rep diag.Reporter) templates.Value {
	b := tc.types.Builtins()
	boolean := func(v bool) templates.Value {
		if v {
			return constValue(b.Bool, 1)
		}
		return constValue(b.Bool, 0)
	}
	t := l.Arg.Type
	_, signed, _ := tc.types.ValueRepr(t)
	signed = signed || l.Untyped

	if isLogical(x.Op) {
		if x.Op == ast.OpAnd {
			return boolean(l.Arg.Bits != 0 && r.Arg.Bits != 0)
		}
		return boolean(l.Arg.Bits != 0 || r.Arg.Bits != 0)
	}
	if isComparison(x.Op) {
		var c int
		if signed {
			a, bb := int64(l.Arg.Bits), int64(r.Arg.Bits) //nolint:gosec // sign-extended bits
			c = cmpInt(a, bb)
		} else {
			c = cmpUint(l.Arg.Bits, r.Arg.Bits)
		}
		switch x.Op {
		case ast.OpEq:
			return boolean(c == 0)
		case ast.OpNe:
			return boolean(c != 0)
		case ast.OpLt:
			return boolean(c < 0)
		case ast.OpLe:
			return boolean(c <= 0)
		case ast.OpGt:
			return boolean(c > 0)
		default:
			return boolean(c >= 0)
		}
	}

	if (x.Op == ast.OpDiv || x.Op == ast.OpRem) && r.Arg.Bits == 0 {
		diag.ReportError(rep, diag.SemaDivisionByZero, x.Span(), "division by zero in constant expression").Emit()
		return templates.Value{}
	}
	var (
		res      uint64
		overflow bool
	)
	if signed {
		var n int64
		n, overflow = foldSigned(x.Op, int64(l.Arg.Bits), int64(r.Arg.Bits)) //nolint:gosec // sign-extended bits
		if !overflow && !l.Untyped {
			overflow = !tc.types.FitsSigned(t, n)
		}
		res = uint64(n) //nolint:gosec // two's complement
	} else {
		res, overflow = foldUnsigned(x.Op, l.Arg.Bits, r.Arg.Bits)
		if !overflow {
			overflow = !tc.types.FitsUnsigned(t, res)
		}
	}
	if overflow {
		label := "untyped constant"
		if !l.Untyped {
			label = tc.label(t)
		}
		diag.ReportError(rep, diag.SemaIntLiteralOutOfRange, x.Span(),
			fmt.Sprintf("constant expression overflows %s", label)).
			Emit()
		return templates.Value{}
	}
	if l.Untyped {
		return untypedValue(int64(res)) //nolint:gosec // two's complement
	}
	return constValue(t, tc.types.Normalize(t, res))
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func foldSigned(op ast.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ast.OpAdd:
		s := a + b
		return s, (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0)
	case ast.OpSub:
		s := a - b
		return s, (a >= 0 && b < 0 && s < 0) || (a < 0 && b > 0 && s >= 0)
	case ast.OpMul:
		if a == 0 || b == 0 {
			return 0, false
		}
		s := a * b
		return s, s/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64)
	case ast.OpDiv:
		if a == math.MinInt64 && b == -1 {
			return 0, true
		}
		return a / b, false
	case ast.OpRem:
		if b == -1 {
			return 0, false
		}
		return a % b, false
	}
	return 0, true
}

func foldUnsigned(op ast.BinaryOp, a, b uint64) (uint64, bool) {
	switch op {
	case ast.OpAdd:
		s, carry := bits.Add64(a, b, 0)
		return s, carry != 0
	case ast.OpSub:
		s, borrow := bits.Sub64(a, b, 0)
		return s, borrow != 0
	case ast.OpMul:
		hi, lo := bits.Mul64(a, b)
		return lo, hi != 0
	case ast.OpDiv:
		return a / b, false
	case ast.OpRem:
		return a % b, false
	}
	return 0, true
}
