package types

import (
	"testing"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Void == NoTypeID || b.Bool == NoTypeID || b.Size == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	if id, ok := in.Fundamental("usize"); !ok || id != b.Size {
		t.Fatalf("usize should name size_type")
	}
	if b.U64 == b.Size {
		t.Fatalf("size_type must differ from u64")
	}
}

func TestStructuralTypesAreDeduplicated(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if in.Array(b.I32, 3) != in.Array(b.I32, 3) {
		t.Fatalf("array types should be deduplicated")
	}
	if in.Array(b.I32, 3) == in.Array(b.I32, 4) {
		t.Fatalf("array size must be part of identity")
	}
	if in.Tuple([]TypeID{b.I32, b.Bool}) != in.Tuple([]TypeID{b.I32, b.Bool}) {
		t.Fatalf("tuple types should be deduplicated")
	}
	f1 := in.Function(FnInfo{Params: []FnParam{{Type: b.I32, Ref: true, Mut: true}}, Result: b.Void})
	f2 := in.Function(FnInfo{Params: []FnParam{{Type: b.I32, Ref: true}}, Result: b.Void})
	if f1 == f2 {
		t.Fatalf("parameter mutability must affect function identity")
	}
	if f1 != in.Function(FnInfo{Params: []FnParam{{Type: b.I32, Ref: true, Mut: true}}, Result: b.Void}) {
		t.Fatalf("function types should be deduplicated")
	}
}

func TestClassesAreNominal(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	name := strs.Intern("Box")
	a := in.RegisterClass(name, source.NoSpan)
	b := in.RegisterClass(name, source.NoSpan)
	if a == b {
		t.Fatalf("two class registrations must be distinct types")
	}
	args := []Arg{TypeArg(in.Builtins().I32), ValueArg(in.Builtins().Size, 3)}
	in.SetClassOrigin(a, 7, args, args)
	if got := Label(in, a); got != "Box</i32, 3/>" {
		t.Fatalf("label = %q", got)
	}
}

func TestNormalizeAndFits(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if got := in.Normalize(b.I8, 0xFF); got != ^uint64(0) {
		t.Fatalf("i8 0xFF should sign-extend, got %#x", got)
	}
	if got := in.Normalize(b.U8, 0x1FF); got != 0xFF {
		t.Fatalf("u8 should truncate, got %#x", got)
	}
	if in.FitsSigned(b.Size, -1) {
		t.Fatalf("-1 must not fit size_type")
	}
	if !in.FitsSigned(b.I8, -128) || in.FitsSigned(b.I8, 128) {
		t.Fatalf("i8 range check is wrong")
	}
	if !in.IsValueParamType(b.Char8) || in.IsValueParamType(b.F32) {
		t.Fatalf("value parameter type classification is wrong")
	}
}

func TestLabels(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{in.Array(b.F64, 4), "[f64, 4]"},
		{in.Pointer(b.I32), "$(i32)"},
		{in.Tuple([]TypeID{b.I32, b.Bool}), "tup[i32, bool]"},
		{in.Function(FnInfo{Params: []FnParam{{Type: b.I32}, {Type: b.F32, Ref: true, Mut: true}}, Result: b.Bool}), "fn(i32, &mut f32) : bool"},
	}
	for _, tc := range cases {
		if got := Label(in, tc.id); got != tc.want {
			t.Fatalf("Label = %q, want %q", got, tc.want)
		}
	}
	if got := ValueLabel(in, b.I32, in.Normalize(b.I32, uint64(0xFFFFFFFD))); got != "-3" {
		t.Fatalf("ValueLabel = %q", got)
	}
}
