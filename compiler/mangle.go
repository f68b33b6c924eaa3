package compiler

import "github.com/venom-lang/venom/types"

// PREFIX separates the segments of a specialization's mangled name.
const PREFIX = "$"

// Mangle composes the unique name of one specialization: the base name, one
// type code per argument, and the return type code.
//
//	range(I64) -> I64   =>   $range$l$l
//	len([I64]) -> I64   =>   $len$Pl$l
func Mangle(funcName string, args []types.Type, ret types.Type) string {
	mangled := PREFIX + funcName
	for _, arg := range args {
		mangled += PREFIX + arg.Mangle()
	}
	return mangled + PREFIX + ret.Mangle()
}
