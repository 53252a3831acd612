package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindUint
	KindSize
	KindChar
	KindFloat
	KindArray
	KindTuple
	KindPointer
	KindFunction
	KindClass
	KindEnum
	// KindByte is raw storage: same width as an unsigned integer but a
	// distinct type without arithmetic.
	KindByte
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindSize:
		return "size"
	case KindChar:
		return "char"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	case KindByte:
		return "byte"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers, chars and floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type. Tuples, functions,
// classes and enums keep their details in side tables addressed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // arrays, pointers
	Count   uint64 // arrays
	Width   Width
	Payload uint32
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeChar describes a character type of the given code unit width.
func MakeChar(width Width) Type {
	return Type{Kind: KindChar, Width: width}
}

// MakeByte describes a byte type of the given width.
func MakeByte(width Width) Type {
	return Type{Kind: KindByte, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes a fixed-size array.
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakePointer describes a raw pointer.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}
