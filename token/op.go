package token

import "strconv"

// Operator kinds as produced by the front-end. They are closed sets: the
// analyzer and the IR builder switch over them exhaustively.

type UnaryOp int

const (
	UAdd   UnaryOp = iota // +x
	USub                  // -x
	Not                   // not x
	Invert                // ~x
)

var unaryOps = [...]string{
	UAdd:   "+",
	USub:   "-",
	Not:    "not",
	Invert: "~",
}

func (op UnaryOp) String() string {
	if int(op) < len(unaryOps) {
		return unaryOps[op]
	}
	return "unaryop(" + strconv.Itoa(int(op)) + ")"
}

type BinaryOp int

const (
	Add      BinaryOp = iota // a + b
	Sub                      // a - b
	Mul                      // a * b
	Div                      // a / b
	FloorDiv                 // a // b
	Mod                      // a % b
	Pow                      // a ** b
	BitAnd                   // a & b
	BitOr                    // a | b
	BitXor                   // a ^ b
	RShift                   // a >> b
	LShift                   // a << b
)

var binaryOps = [...]string{
	Add:      "+",
	Sub:      "-",
	Mul:      "*",
	Div:      "/",
	FloorDiv: "//",
	Mod:      "%",
	Pow:      "**",
	BitAnd:   "&",
	BitOr:    "|",
	BitXor:   "^",
	RShift:   ">>",
	LShift:   "<<",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return "binop(" + strconv.Itoa(int(op)) + ")"
}

type CompareOp int

const (
	Eq   CompareOp = iota // a == b
	NotEq                 // a != b
	Lt                    // a < b
	LtEq                  // a <= b
	Gt                    // a > b
	GtEq                  // a >= b
)

var compareOps = [...]string{
	Eq:    "==",
	NotEq: "!=",
	Lt:    "<",
	LtEq:  "<=",
	Gt:    ">",
	GtEq:  ">=",
}

func (op CompareOp) String() string {
	if int(op) < len(compareOps) {
		return compareOps[op]
	}
	return "cmpop(" + strconv.Itoa(int(op)) + ")"
}

type BoolOp int

const (
	And BoolOp = iota // a and b
	Or                // a or b
)

func (op BoolOp) String() string {
	if op == Or {
		return "or"
	}
	return "and"
}
