package types

import "github.com/venom-lang/venom/token"

// Rank orders the primitive types for widening decisions: the higher-ranked
// operand of a mixed binary operation wins and the other is promoted.
func Rank(t Type) int {
	switch t.Kind() {
	case FloatKind:
		return 3
	case IntKind:
		return 2
	case BoolKind:
		return 1
	default:
		return 0
	}
}

// Widen returns the higher-ranked of two types.
func Widen(a, b Type) Type {
	if Rank(b) > Rank(a) {
		return b
	}
	return a
}

func isNumeric(t Type) bool {
	return Equal(t, I64) || Equal(t, F64)
}

// CoerceBinary resolves the result type of a binary operation, or Inv when
// the operator does not exist for the operand pair. An Inv operand
// short-circuits the whole expression.
func CoerceBinary(op token.BinaryOp, left, right Type) Type {
	if left.Kind() == InvalidKind || right.Kind() == InvalidKind {
		return Inv
	}

	switch op {
	case token.Add, token.Sub, token.Mul, token.Mod, token.Pow:
		// Float64 dominance.
		if Equal(left, F64) || Equal(right, F64) {
			if isNumeric(left) && isNumeric(right) {
				return F64
			}
			return Inv
		}
		if Equal(left, I64) && Equal(right, I64) {
			return I64
		}
		return Inv

	case token.Div:
		// True division always promotes to float.
		if isNumeric(left) && isNumeric(right) {
			return F64
		}
		return Inv

	case token.FloorDiv:
		if Equal(left, I64) && Equal(right, I64) {
			return I64
		}
		if (Equal(left, F64) || Equal(right, F64)) && isNumeric(left) && isNumeric(right) {
			return F64
		}
		return Inv

	case token.BitAnd, token.BitOr, token.BitXor, token.RShift, token.LShift:
		// No operand checking beyond operator existence.
		return I64

	default:
		return Inv
	}
}

// CoerceUnary resolves the result type of a unary operation, or Inv when the
// operator does not exist for the operand type.
func CoerceUnary(op token.UnaryOp, operand Type) Type {
	if operand.Kind() == InvalidKind {
		return Inv
	}

	switch op {
	case token.Not:
		return Bool
	case token.UAdd:
		return operand
	case token.USub:
		if Equal(operand, I64) || Equal(operand, F64) {
			return operand
		}
		return Inv
	case token.Invert:
		if Equal(operand, I64) {
			return I64
		}
		return Inv
	default:
		return Inv
	}
}
