package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Panzerschrek/U-00DC-Sprache-sub002/internal/source"
)

// Label returns a user-friendly label for a TypeID.
func Label(in *Interner, id TypeID) string {
	return labelDepth(in, id, 0)
}

func labelDepth(in *Interner, id TypeID, depth int) string {
	if in == nil || id == NoTypeID {
		return "?"
	}
	if depth > 8 {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("u%d", tt.Width)
	case KindSize:
		return "size_type"
	case KindChar:
		return fmt.Sprintf("char%d", tt.Width)
	case KindByte:
		return fmt.Sprintf("byte%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", tt.Width)
	case KindArray:
		return fmt.Sprintf("[%s, %d]", labelDepth(in, tt.Elem, depth+1), tt.Count)
	case KindPointer:
		return "$(" + labelDepth(in, tt.Elem, depth+1) + ")"
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return "tup[?]"
		}
		parts := make([]string, len(info.Elems))
		for i, e := range info.Elems {
			parts[i] = labelDepth(in, e, depth+1)
		}
		return "tup[" + strings.Join(parts, ", ") + "]"
	case KindFunction:
		return formatFn(in, id, depth)
	case KindClass:
		info, ok := in.ClassInfo(id)
		if !ok {
			return "?"
		}
		name := lookupName(in.Strings, info.Name)
		if info.Origin == nil {
			return name
		}
		return name + "</" + argsLabelDepth(in, info.Origin.SignatureArgs, depth+1) + "/>"
	case KindEnum:
		info, ok := in.EnumInfo(id)
		if !ok {
			return "?"
		}
		return lookupName(in.Strings, info.Name)
	}
	return "?"
}

func formatFn(in *Interner, id TypeID, depth int) string {
	info, ok := in.FnInfo(id)
	if !ok {
		return "fn(?)"
	}
	var sb strings.Builder
	sb.WriteString("fn(")
	for i, p := range info.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(refPrefix(p.Ref, p.Mut))
		sb.WriteString(labelDepth(in, p.Type, depth+1))
	}
	sb.WriteString(")")
	if info.Unsafe {
		sb.WriteString(" unsafe")
	}
	sb.WriteString(" : ")
	sb.WriteString(refPrefix(info.RetRef, info.RetMut))
	sb.WriteString(labelDepth(in, info.Result, depth+1))
	return sb.String()
}

func refPrefix(ref, mut bool) string {
	switch {
	case ref && mut:
		return "&mut "
	case ref:
		return "&imut "
	}
	return ""
}

// ArgLabel renders a template argument: types by Label, constants by value.
func ArgLabel(in *Interner, a Arg) string {
	return argLabelDepth(in, a, 0)
}

// ArgsLabel renders a comma separated argument list.
func ArgsLabel(in *Interner, args []Arg) string {
	return argsLabelDepth(in, args, 0)
}

func argsLabelDepth(in *Interner, args []Arg, depth int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = argLabelDepth(in, a, depth)
	}
	return strings.Join(parts, ", ")
}

func argLabelDepth(in *Interner, a Arg, depth int) string {
	if a.Kind == ArgType {
		return labelDepth(in, a.Type, depth)
	}
	return ValueLabel(in, a.Type, a.Bits)
}

// ValueLabel renders a constant of type id.
func ValueLabel(in *Interner, id TypeID, bits uint64) string {
	switch in.KindOf(id) {
	case KindBool:
		if bits != 0 {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(int64(bits), 10) //nolint:gosec // bits are sign-extended
	case KindChar:
		if bits < 0x80 && strconv.IsPrint(rune(bits)) {
			return strconv.QuoteRune(rune(bits))
		}
		return strconv.FormatUint(bits, 10)
	case KindEnum:
		info, ok := in.EnumInfo(id)
		if !ok {
			break
		}
		for _, m := range info.Members {
			if m.Value == bits {
				return lookupName(in.Strings, info.Name) + "::" + lookupName(in.Strings, m.Name)
			}
		}
		return fmt.Sprintf("%s(%d)", lookupName(in.Strings, info.Name), bits)
	}
	return strconv.FormatUint(bits, 10)
}

func lookupName(strs *source.Interner, id source.StringID) string {
	if strs == nil {
		return "_"
	}
	if s, ok := strs.Lookup(id); ok && s != "" {
		return s
	}
	return "_"
}
