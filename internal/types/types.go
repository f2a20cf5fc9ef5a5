// Package types defines the small, closed set of static types that flow
// through the compiler: the native primitive kinds every script value is
// specialized to whenever possible, plus the universal ("boxed") type used
// at dynamic edges and after a type collapse.
package types

import "fmt"

// Kind is the tag of a Type.
type Kind uint8

const (
	Undefined Kind = iota // the value of a variable/return that is never assigned/returned
	Null
	Boolean
	I32 // small integer fast path
	U32 // array/string index fast path
	F64 // general numeric type; arithmetic's "common numeric type" lands here unless both sides are identical
	String
	Object // a reference to an instance of some Prototype (see internal/proto)
	Any    // the universal/boxed type; the collapse target for every other kind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case F64:
		return "f64"
	case String:
		return "string"
	case Object:
		return "object"
	case Any:
		return "any"
	}
	return "?"
}

// Type is a static type: a Kind, plus — for Object — the name of the
// prototype the reference is shaped as. Two Object types with different
// PrototypeName are distinct for ApplyType's collapse-on-disagreement
// rule (spec §4.7) even though both carry Kind == Object.
type Type struct {
	Kind          Kind
	PrototypeName string
}

func (t Type) String() string {
	if t.Kind == Object && t.PrototypeName != "" {
		return t.PrototypeName
	}
	return t.Kind.String()
}

// Equal reports whether t and o denote the identical static type.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == Object {
		return t.PrototypeName == o.PrototypeName
	}
	return true
}

// Universal is the Any type — the collapse target for every variable,
// return-type accumulator and property once two disagreeing facts about
// it are observed.
var Universal = Type{Kind: Any}

// UndefinedT is the type of a function with no return statement.
var UndefinedT = Type{Kind: Undefined}

// IsNumeric reports whether t is one of the three numeric kinds the
// common-numeric-type rule (spec §4.7) operates over.
func (t Type) IsNumeric() bool {
	return t.Kind == I32 || t.Kind == U32 || t.Kind == F64
}

// CommonNumeric implements spec §4.7's rule: if both operand types are
// numeric, the result is F64 unless both are exactly the same type (in
// which case that type is kept); if either operand is not numeric the
// result collapses to Universal.
func CommonNumeric(a, b Type) Type {
	if !a.IsNumeric() || !b.IsNumeric() {
		return Universal
	}
	if a.Kind == b.Kind {
		return a
	}
	return Type{Kind: F64}
}

// ObjectOf returns the Object type shaped as the named prototype.
func ObjectOf(prototypeName string) Type { return Type{Kind: Object, PrototypeName: prototypeName} }

// ConstState is the three-valued constant-tracking lattice from spec §4.7:
// a variable/property starts unset (the zero value), the first assignment
// stores a concrete value, and any later assignment that disagrees
// collapses it permanently to non-constant.
type ConstState struct {
	set   bool
	value any
	non   bool
}

// TrySet applies spec §4.7's TrySetConstant: DEFAULT -> v, v == v
// unchanged, any disagreement -> NON-CONSTANT. It returns the state after
// applying v.
func (c ConstState) TrySet(v any) ConstState {
	if c.non {
		return c
	}
	if !c.set {
		return ConstState{set: true, value: v}
	}
	if constEqual(c.value, v) {
		return c
	}
	return ConstState{non: true}
}

func constEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && sameType(a, b)
}

func sameType(a, b any) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// IsConstant reports whether the value has stabilized to a single concrete
// constant (never been assigned a second, disagreeing value).
func (c ConstState) IsConstant() bool { return c.set && !c.non }

// IsNonConstant reports whether two disagreeing assignments were observed.
func (c ConstState) IsNonConstant() bool { return c.non }

// Value returns the stored constant value and whether one is present.
func (c ConstState) Value() (any, bool) { return c.value, c.set && !c.non }
