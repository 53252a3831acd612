package types

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Builtins stores TypeIDs for fundamental types.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Bool    TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
	Size    TypeID
	Char8   TypeID
	Char16  TypeID
	Char32  TypeID
	Byte8   TypeID
	Byte16  TypeID
	Byte32  TypeID
	Byte64  TypeID
	F32     TypeID
	F64     TypeID
}

// Interner provides stable TypeIDs. Structural types (fundamentals, arrays,
// pointers, tuples, functions) are deduplicated; classes and enums are
// nominal and get a fresh id per registration.
type Interner struct {
	Strings *source.Interner

	types     []Type
	index     map[typeKey]TypeID
	composite map[string]TypeID
	builtins  Builtins
	byName    map[string]TypeID
	tuples    []TupleInfo
	fns       []FnInfo
	classes   []ClassInfo
	enums     []EnumInfo
}

// NewInterner constructs an interner seeded with fundamental types.
func NewInterner(strings *source.Interner) *Interner {
	if strings == nil {
		strings = source.NewInterner()
	}
	in := &Interner{
		Strings:   strings,
		index:     make(map[typeKey]TypeID, 64),
		composite: make(map[string]TypeID, 16),
		byName:    make(map[string]TypeID, 24),
		tuples:    []TupleInfo{{}},
		fns:       []FnInfo{{}},
		classes:   []ClassInfo{{}},
		enums:     []EnumInfo{{}},
	}
	b := &in.builtins
	b.Invalid = in.internRaw(Type{Kind: KindInvalid})
	b.Void = in.fundamental("void", Type{Kind: KindVoid})
	b.Bool = in.fundamental("bool", Type{Kind: KindBool})
	b.I8 = in.fundamental("i8", MakeInt(Width8))
	b.I16 = in.fundamental("i16", MakeInt(Width16))
	b.I32 = in.fundamental("i32", MakeInt(Width32))
	b.I64 = in.fundamental("i64", MakeInt(Width64))
	b.U8 = in.fundamental("u8", MakeUint(Width8))
	b.U16 = in.fundamental("u16", MakeUint(Width16))
	b.U32 = in.fundamental("u32", MakeUint(Width32))
	b.U64 = in.fundamental("u64", MakeUint(Width64))
	b.Size = in.fundamental("size_type", Type{Kind: KindSize, Width: Width64})
	b.Char8 = in.fundamental("char8", MakeChar(Width8))
	b.Char16 = in.fundamental("char16", MakeChar(Width16))
	b.Char32 = in.fundamental("char32", MakeChar(Width32))
	b.Byte8 = in.fundamental("byte8", MakeByte(Width8))
	b.Byte16 = in.fundamental("byte16", MakeByte(Width16))
	b.Byte32 = in.fundamental("byte32", MakeByte(Width32))
	b.Byte64 = in.fundamental("byte64", MakeByte(Width64))
	b.F32 = in.fundamental("f32", MakeFloat(Width32))
	b.F64 = in.fundamental("f64", MakeFloat(Width64))
	in.byName["usize"] = b.Size
	return in
}

func (in *Interner) fundamental(name string, t Type) TypeID {
	id := in.Intern(t)
	in.byName[name] = id
	return id
}

// Builtins returns TypeIDs for fundamental types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Fundamental looks up a fundamental type by its keyword.
func (in *Interner) Fundamental(name string) (TypeID, bool) {
	id, ok := in.byName[name]
	return id, ok
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[typeKey(t)]; ok {
		return id
	}
	return in.internRaw(t)
}

// Array returns the array type [elem, count].
func (in *Interner) Array(elem TypeID, count uint64) TypeID {
	return in.Intern(MakeArray(elem, count))
}

// Pointer returns the raw pointer type $(elem).
func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.Intern(MakePointer(elem))
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return tt.Kind
}

// Len reports the number of interned types including the invalid sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

type typeKey Type

func slot(n int, what string) uint32 {
	s, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s overflow: %w", what, err))
	}
	return s
}
