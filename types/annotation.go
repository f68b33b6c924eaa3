package types

import (
	"fmt"
	"strings"
)

var annotations = map[string]Type{
	"None":  Void,
	"int":   I64,
	"float": F64,
	"bool":  Bool,
	"bytes": Bytes,
	"str":   Str,
}

// ParseAnnotation maps a source annotation spelling to a lattice type.
// Recognized forms: the primitive names above, List[T], Optional[T] and
// Union[T, None]. Unions with more than one non-null alternative are
// unsupported.
func ParseAnnotation(s string) (Type, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "typing.")

	if t, ok := annotations[s]; ok {
		return t, nil
	}

	head, arg, ok := splitGeneric(s)
	if !ok {
		return Inv, fmt.Errorf("unknown type annotation %q", s)
	}

	switch head {
	case "List":
		elem, err := ParseAnnotation(arg)
		if err != nil {
			return Inv, err
		}
		return Array{Elem: elem}, nil

	case "Optional":
		return optional(arg)

	case "Union":
		alts := splitArgs(arg)
		var nonNull []string
		for _, alt := range alts {
			if alt != "None" {
				nonNull = append(nonNull, alt)
			}
		}
		if len(nonNull) != 1 {
			return Inv, fmt.Errorf("unsupported union annotation %q: a union may only combine one type with None", s)
		}
		return optional(nonNull[0])

	default:
		return Inv, fmt.Errorf("unknown type annotation %q", s)
	}
}

// optional wraps elem in a pointer unless it is already pointer-shaped.
func optional(arg string) (Type, error) {
	elem, err := ParseAnnotation(arg)
	if err != nil {
		return Inv, err
	}
	if elem.Kind() == ArrayKind || elem.Kind() == PtrKind {
		return elem, nil
	}
	return Ptr{Elem: elem}, nil
}

// splitGeneric splits "Head[Arg]" into its parts.
func splitGeneric(s string) (head, arg string, ok bool) {
	open := strings.Index(s, "[")
	if open < 0 || !strings.HasSuffix(s, "]") {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// splitArgs splits a bracketed argument list at top-level commas.
func splitArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}
