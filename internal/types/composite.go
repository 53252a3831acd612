package types

import (
	"encoding/binary"
	"slices"
)

// TupleInfo stores the element types for a tuple type.
type TupleInfo struct {
	Elems []TypeID
}

// FnParam is one parameter of a function type.
type FnParam struct {
	Type TypeID
	Ref  bool
	Mut  bool
}

// FnInfo stores metadata for function types.
type FnInfo struct {
	Params []FnParam
	Result TypeID
	RetRef bool
	RetMut bool
	Unsafe bool
}

// Tuple creates or finds the tuple type with the given elements.
func (in *Interner) Tuple(elems []TypeID) TypeID {
	buf := make([]byte, 0, 1+4*len(elems))
	buf = append(buf, 't')
	for _, e := range elems {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e))
	}
	key := string(buf)
	if id, ok := in.composite[key]; ok {
		return id
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: slices.Clone(elems)})
	id := in.internRaw(Type{Kind: KindTuple, Payload: slot(len(in.tuples)-1, "tuple info")})
	in.composite[key] = id
	return id
}

// TupleInfo returns the element types for a tuple TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

// Function creates or finds a function type.
func (in *Interner) Function(info FnInfo) TypeID {
	buf := make([]byte, 0, 8+5*len(info.Params))
	buf = append(buf, 'f', flagsByte(info.RetRef, info.RetMut, info.Unsafe))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(info.Result))
	for _, p := range info.Params {
		buf = append(buf, flagsByte(p.Ref, p.Mut, false))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Type))
	}
	key := string(buf)
	if id, ok := in.composite[key]; ok {
		return id
	}
	info.Params = slices.Clone(info.Params)
	in.fns = append(in.fns, info)
	id := in.internRaw(Type{Kind: KindFunction, Payload: slot(len(in.fns)-1, "fn info")})
	in.composite[key] = id
	return id
}

// FnInfo retrieves function type metadata by TypeID.
func (in *Interner) FnInfo(id TypeID) (*FnInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindFunction || int(tt.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[tt.Payload], true
}

func flagsByte(a, b, c bool) byte {
	var f byte
	if a {
		f |= 1
	}
	if b {
		f |= 2
	}
	if c {
		f |= 4
	}
	return f
}
