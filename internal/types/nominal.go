package types

import (
	"slices"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// ClassState tracks how far a class declaration has been built.
type ClassState uint8

const (
	ClassDeclared ClassState = iota // prototype only
	ClassBuilding                   // fields being resolved
	ClassComplete
	ClassFailed
)

// Field describes a single field inside a class.
type Field struct {
	Name source.StringID
	Type TypeID
	Span source.Span
}

// Origin records which generic declaration produced a class instance.
// Args are the deduced parameter values in parameter order; SignatureArgs
// are the values of the signature positions the instance was requested
// with, defaults included.
type Origin struct {
	Generic       uint32
	Args          []Arg
	SignatureArgs []Arg
}

// ClassInfo stores metadata for a class type.
type ClassInfo struct {
	Name   source.StringID
	Decl   source.Span
	Fields []Field
	State  ClassState
	Origin *Origin
}

// EnumMember is a named constant of an enum.
type EnumMember struct {
	Name  source.StringID
	Value uint64
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name    source.StringID
	Decl    source.Span
	Base    TypeID
	Members []EnumMember
}

// RegisterClass allocates a nominal class slot and returns its TypeID.
func (in *Interner) RegisterClass(name source.StringID, decl source.Span) TypeID {
	in.classes = append(in.classes, ClassInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindClass, Payload: slot(len(in.classes)-1, "class info")})
}

// SetClassOrigin marks the class as an instance of generic.
func (in *Interner) SetClassOrigin(id TypeID, generic uint32, args, signatureArgs []Arg) {
	if info := in.classInfo(id); info != nil {
		info.Origin = &Origin{
			Generic:       generic,
			Args:          slices.Clone(args),
			SignatureArgs: slices.Clone(signatureArgs),
		}
	}
}

// SetClassFields stores the resolved fields.
func (in *Interner) SetClassFields(id TypeID, fields []Field) {
	if info := in.classInfo(id); info != nil {
		info.Fields = slices.Clone(fields)
	}
}

// SetClassState moves the class to state.
func (in *Interner) SetClassState(id TypeID, state ClassState) {
	if info := in.classInfo(id); info != nil {
		info.State = state
	}
}

// ClassInfo returns metadata for the provided class TypeID.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	info := in.classInfo(id)
	return info, info != nil
}

// ClassSlot returns the registration index of a class, stable for the
// lifetime of the interner.
func (in *Interner) ClassSlot(id TypeID) uint32 {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass {
		return 0
	}
	return tt.Payload
}

func (in *Interner) classInfo(id TypeID) *ClassInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil
	}
	return &in.classes[tt.Payload]
}

// RegisterEnum allocates a nominal enum slot and returns its TypeID.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Span) TypeID {
	in.enums = append(in.enums, EnumInfo{Name: name, Decl: decl})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot(len(in.enums)-1, "enum info")})
}

// SetEnumBase stores the underlying integer type.
func (in *Interner) SetEnumBase(id, base TypeID) {
	if info := in.enumInfo(id); info != nil {
		info.Base = base
	}
}

// SetEnumMembers stores the resolved members.
func (in *Interner) SetEnumMembers(id TypeID, members []EnumMember) {
	if info := in.enumInfo(id); info != nil {
		info.Members = slices.Clone(members)
	}
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(id)
	return info, info != nil
}

// EnumSlot returns the registration index of an enum.
func (in *Interner) EnumSlot(id TypeID) uint32 {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum {
		return 0
	}
	return tt.Payload
}

func (in *Interner) enumInfo(id TypeID) *EnumInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}
