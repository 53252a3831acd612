package templates

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/types"
)

// Key identifies one instantiation: a generic and its deduced arguments.
//
// The encoding is prefix-free: every argument starts with a kind tag and
// every type with a kind byte followed by self-delimiting fields, so two
// different argument vectors never produce the same bytes. Types are
// encoded by structure, never by name; class instances are encoded by the
// generic and arguments that produced them.
type Key string

// Hex renders the key for reports.
func (k Key) Hex() string {
	return hex.EncodeToString([]byte(k))
}

const (
	tagType  = 'T'
	tagValue = 'V'

	tagInstance = 'G'
	tagClass    = 'C'
	tagEnum     = 'E'
)

// EncodeKey builds the key of generic id applied to args.
func EncodeKey(in *types.Interner, id GenericID, args []types.Arg) Key {
	buf := make([]byte, 0, 8+8*len(args))
	buf = binary.AppendUvarint(buf, uint64(id))
	buf = appendArgs(buf, in, args)
	return Key(buf)
}

func appendArgs(buf []byte, in *types.Interner, args []types.Arg) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(args)))
	for _, a := range args {
		if a.IsType() {
			buf = append(buf, tagType)
			buf = appendType(buf, in, a.Type)
			continue
		}
		buf = append(buf, tagValue)
		buf = appendType(buf, in, a.Type)
		buf = binary.AppendUvarint(buf, a.Bits)
	}
	return buf
}

func appendType(buf []byte, in *types.Interner, id types.TypeID) []byte {
	tt, ok := in.Lookup(id)
	if !ok {
		return append(buf, byte(types.KindInvalid))
	}
	switch tt.Kind {
	case types.KindArray:
		buf = append(buf, byte(tt.Kind))
		buf = appendType(buf, in, tt.Elem)
		return binary.AppendUvarint(buf, tt.Count)
	case types.KindPointer:
		buf = append(buf, byte(tt.Kind))
		return appendType(buf, in, tt.Elem)
	case types.KindTuple:
		buf = append(buf, byte(tt.Kind))
		info, _ := in.TupleInfo(id)
		if info == nil {
			return binary.AppendUvarint(buf, 0)
		}
		buf = binary.AppendUvarint(buf, uint64(len(info.Elems)))
		for _, el := range info.Elems {
			buf = appendType(buf, in, el)
		}
		return buf
	case types.KindFunction:
		buf = append(buf, byte(tt.Kind))
		info, _ := in.FnInfo(id)
		if info == nil {
			return binary.AppendUvarint(buf, 0)
		}
		buf = append(buf, refFlags(info.RetRef, info.RetMut, info.Unsafe))
		buf = binary.AppendUvarint(buf, uint64(len(info.Params)))
		for _, p := range info.Params {
			buf = append(buf, refFlags(p.Ref, p.Mut, false))
			buf = appendType(buf, in, p.Type)
		}
		return appendType(buf, in, info.Result)
	case types.KindClass:
		info, _ := in.ClassInfo(id)
		if info != nil && info.Origin != nil {
			buf = append(buf, tagInstance)
			buf = binary.AppendUvarint(buf, uint64(info.Origin.Generic))
			return appendArgs(buf, in, info.Origin.Args)
		}
		buf = append(buf, tagClass)
		return binary.AppendUvarint(buf, uint64(in.ClassSlot(id)))
	case types.KindEnum:
		buf = append(buf, tagEnum)
		return binary.AppendUvarint(buf, uint64(in.EnumSlot(id)))
	}
	return append(buf, byte(tt.Kind), byte(tt.Width))
}

func refFlags(ref, mut, unsafe bool) byte {
	var b byte
	if ref {
		b |= 1
	}
	if mut {
		b |= 2
	}
	if unsafe {
		b |= 4
	}
	return b
}
