package ilvm

import (
	"math"
	"strconv"
	"strings"

	"github.com/bablakeluke/nitrassic-go/internal/emit"
)

// evalBinary implements every emit.BinOp directly against the two
// operands' runtime kind tags, the same home spec gives operator
// evaluation once it's no longer a CallResolver concern (internal/ctx
// already picked the static result type at resolve time; this is just
// doing the arithmetic/comparison the emitted ConvertGeneric calls around
// the call site have already made type-consistent).
func evalBinary(op emit.BinOp, lhs, rhs value) value {
	switch op {
	case emit.OpAdd:
		if lhs.kind == kString || rhs.kind == kString {
			return strVal(lhs.toStringValue() + rhs.toStringValue())
		}
		return numericBinary(lhs, rhs, func(a, b float64) float64 { return a + b })
	case emit.OpSub:
		return numericBinary(lhs, rhs, func(a, b float64) float64 { return a - b })
	case emit.OpMul:
		return numericBinary(lhs, rhs, func(a, b float64) float64 { return a * b })
	case emit.OpDiv:
		return numericBinary(lhs, rhs, func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			return a / b
		})
	case emit.OpMod:
		return numericBinary(lhs, rhs, func(a, b float64) float64 {
			if b == 0 {
				return 0
			}
			r := int64(a) % int64(b)
			return float64(r)
		})
	case emit.OpShl:
		return i32Val(int32(lhs.i32) << (uint32(rhs.i32) & 31))
	case emit.OpShr:
		return i32Val(int32(lhs.i32) >> (uint32(rhs.i32) & 31))
	case emit.OpUshr:
		return u32Val(uint32(lhs.i32) >> (uint32(rhs.i32) & 31))
	case emit.OpBitAnd:
		return i32Val(lhs.i32 & rhs.i32)
	case emit.OpBitOr:
		return i32Val(lhs.i32 | rhs.i32)
	case emit.OpBitXor:
		return i32Val(lhs.i32 ^ rhs.i32)
	case emit.OpLess:
		return compareOrdered(lhs, rhs, func(c int) bool { return c < 0 })
	case emit.OpLessEq:
		return compareOrdered(lhs, rhs, func(c int) bool { return c <= 0 })
	case emit.OpGreater:
		return compareOrdered(lhs, rhs, func(c int) bool { return c > 0 })
	case emit.OpGreaterEq:
		return compareOrdered(lhs, rhs, func(c int) bool { return c >= 0 })
	case emit.OpLooseEq:
		return boolVal(looseEqual(lhs, rhs))
	case emit.OpLooseNe:
		return boolVal(!looseEqual(lhs, rhs))
	case emit.OpStrictEq:
		return boolVal(lhs.equalStrict(rhs))
	case emit.OpStrictNe:
		return boolVal(!lhs.equalStrict(rhs))
	case emit.OpInstanceOf:
		if lhs.kind == kObject && rhs.kind == kObject {
			return boolVal(lhs.obj.class == rhs.obj.class)
		}
		return boolVal(false)
	case emit.OpIn:
		if rhs.kind == kObject && rhs.obj.fields != nil {
			_, ok := rhs.obj.fields[lhs.toStringValue()]
			return boolVal(ok)
		}
		return boolVal(false)
	default:
		return undefined()
	}
}

func numericBinary(lhs, rhs value, f func(a, b float64) float64) value {
	res := f(lhs.toFloat64(), rhs.toFloat64())
	if lhs.kind == kI32 && rhs.kind == kI32 {
		return i32Val(int32(res))
	}
	if lhs.kind == kU32 && rhs.kind == kU32 {
		return u32Val(uint32(res))
	}
	return f64Val(res)
}

// compareOrdered implements the relational operators: string/string
// compares lexicographically, anything else widens to float64 the same
// way types.CommonNumeric does statically.
func compareOrdered(lhs, rhs value, pred func(c int) bool) value {
	if lhs.kind == kString && rhs.kind == kString {
		switch {
		case lhs.str < rhs.str:
			return boolVal(pred(-1))
		case lhs.str > rhs.str:
			return boolVal(pred(1))
		default:
			return boolVal(pred(0))
		}
	}
	a, b := lhs.toFloat64(), rhs.toFloat64()
	switch {
	case a < b:
		return boolVal(pred(-1))
	case a > b:
		return boolVal(pred(1))
	default:
		return boolVal(pred(0))
	}
}

// looseEqual backs OpLooseEq/OpLooseNe's abstract-equality-flavored
// comparison: same kind falls back to strict equality; undefined and null
// compare equal to each other and nothing else; a numeric/string pairing
// converts the string side the way ToNumber would.
func looseEqual(lhs, rhs value) bool {
	if lhs.kind == rhs.kind {
		return lhs.equalStrict(rhs)
	}
	if (lhs.kind == kUndefined || lhs.kind == kNull) && (rhs.kind == kUndefined || rhs.kind == kNull) {
		return true
	}
	strToNumber := func(s string) float64 {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	if lhs.kind == kString && rhs.kind != kString {
		return strToNumber(lhs.str) == rhs.toFloat64()
	}
	if rhs.kind == kString && lhs.kind != kString {
		return lhs.toFloat64() == strToNumber(rhs.str)
	}
	if lhs.isNumericKind() && rhs.isNumericKind() {
		return lhs.toFloat64() == rhs.toFloat64()
	}
	return false
}

func (v value) isNumericKind() bool {
	return v.kind == kI32 || v.kind == kU32 || v.kind == kF64
}

func evalUnary(op emit.UnOp, v value) value {
	switch op {
	case emit.OpNeg:
		switch v.kind {
		case kI32:
			return i32Val(-v.i32)
		case kU32:
			return f64Val(-float64(v.u32))
		default:
			return f64Val(-v.toFloat64())
		}
	case emit.OpPos:
		return f64Val(v.toFloat64())
	case emit.OpNot:
		return boolVal(!v.truthy())
	case emit.OpBitNot:
		return i32Val(^v.i32)
	case emit.OpTypeOf:
		return strVal(typeOfString(v))
	case emit.OpVoidOf:
		return undefined()
	default:
		return undefined()
	}
}

func typeOfString(v value) string {
	switch v.kind {
	case kUndefined:
		return "undefined"
	case kNull:
		return "object"
	case kBool:
		return "boolean"
	case kI32, kU32, kF64:
		return "number"
	case kString:
		return "string"
	case kMethod:
		return "function"
	default:
		return "object"
	}
}
