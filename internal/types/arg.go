package types

import "math"

// ArgKind tags a template argument.
type ArgKind uint8

const (
	ArgType ArgKind = iota + 1
	ArgValue
)

func (k ArgKind) String() string {
	switch k {
	case ArgType:
		return "type"
	case ArgValue:
		return "value"
	default:
		return "invalid"
	}
}

// Arg is a template argument: a type, or a compile-time constant given by
// its type and normalised bit pattern. Because bits are normalised, two
// Args are equal exactly when == holds.
type Arg struct {
	Kind ArgKind
	Type TypeID
	Bits uint64
}

// TypeArg wraps a type as an argument.
func TypeArg(id TypeID) Arg {
	return Arg{Kind: ArgType, Type: id}
}

// ValueArg wraps a constant as an argument. bits must already be normalised.
func ValueArg(id TypeID, bits uint64) Arg {
	return Arg{Kind: ArgValue, Type: id, Bits: bits}
}

func (a Arg) IsType() bool  { return a.Kind == ArgType }
func (a Arg) IsValue() bool { return a.Kind == ArgValue }

// ValueRepr describes how constants of id are stored: bit width and
// signedness. ok is false for types that cannot carry template values.
func (in *Interner) ValueRepr(id TypeID) (width Width, signed, ok bool) {
	tt, found := in.Lookup(id)
	if !found {
		return 0, false, false
	}
	switch tt.Kind {
	case KindInt:
		return tt.Width, true, true
	case KindUint, KindSize, KindChar, KindByte:
		return tt.Width, false, true
	case KindBool:
		return Width8, false, true
	case KindEnum:
		info := in.enumInfo(id)
		if info == nil || info.Base == NoTypeID {
			return 0, false, false
		}
		return in.ValueRepr(info.Base)
	}
	return 0, false, false
}

// IsValueParamType reports whether constants of id may be template arguments.
func (in *Interner) IsValueParamType(id TypeID) bool {
	_, _, ok := in.ValueRepr(id)
	return ok
}

// IsInteger reports whether id supports integer arithmetic.
func (in *Interner) IsInteger(id TypeID) bool {
	switch in.KindOf(id) {
	case KindInt, KindUint, KindSize:
		return true
	}
	return false
}

// IsSigned reports whether id is a signed integer.
func (in *Interner) IsSigned(id TypeID) bool {
	return in.KindOf(id) == KindInt
}

// Normalize truncates bits to the width of id, sign-extending signed types.
func (in *Interner) Normalize(id TypeID, bits uint64) uint64 {
	width, signed, ok := in.ValueRepr(id)
	if !ok || width >= Width64 {
		return bits
	}
	shift := 64 - uint(width)
	if signed {
		return uint64(int64(bits<<shift) >> shift) //nolint:gosec // intended two's complement reinterpretation
	}
	return bits << shift >> shift
}

// FitsSigned reports whether v is representable in the integer type id.
func (in *Interner) FitsSigned(id TypeID, v int64) bool {
	width, signed, ok := in.ValueRepr(id)
	if !ok {
		return false
	}
	if signed {
		lo, hi := signedRange(width)
		return v >= lo && v <= hi
	}
	if v < 0 {
		return false
	}
	return uint64(v) <= unsignedMax(width)
}

// FitsUnsigned reports whether v is representable in the integer type id.
func (in *Interner) FitsUnsigned(id TypeID, v uint64) bool {
	width, signed, ok := in.ValueRepr(id)
	if !ok {
		return false
	}
	if signed {
		_, hi := signedRange(width)
		return v <= uint64(hi)
	}
	return v <= unsignedMax(width)
}

func signedRange(width Width) (lo, hi int64) {
	switch width {
	case Width8:
		return math.MinInt8, math.MaxInt8
	case Width16:
		return math.MinInt16, math.MaxInt16
	case Width32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func unsignedMax(width Width) uint64 {
	switch width {
	case Width8:
		return math.MaxUint8
	case Width16:
		return math.MaxUint16
	case Width32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}
