package types

import "testing"

func TestTypeEqualTreatsDifferentPrototypesAsDistinct(t *testing.T) {
	a := ObjectOf("Point")
	b := ObjectOf("Point")
	c := ObjectOf("Vector")
	if !a.Equal(b) {
		t.Fatalf("expected two Object types with the same prototype name to be equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected two Object types with different prototype names to be distinct")
	}
}

func TestTypeStringPrefersPrototypeNameForObjects(t *testing.T) {
	if got := ObjectOf("Point").String(); got != "Point" {
		t.Fatalf("expected an Object type's String() to be its prototype name, got %q", got)
	}
	if got := (Type{Kind: I32}).String(); got != "i32" {
		t.Fatalf("expected i32's String() to be %q, got %q", "i32", got)
	}
}

func TestCommonNumericKeepsIdenticalKindButWidensOnDisagreement(t *testing.T) {
	i32, u32, f64 := Type{Kind: I32}, Type{Kind: U32}, Type{Kind: F64}

	if got := CommonNumeric(i32, i32); got.Kind != I32 {
		t.Fatalf("expected CommonNumeric(i32, i32) to stay i32, got %v", got)
	}
	if got := CommonNumeric(i32, u32); got.Kind != F64 {
		t.Fatalf("expected CommonNumeric(i32, u32) to widen to f64, got %v", got)
	}
	if got := CommonNumeric(i32, f64); got.Kind != F64 {
		t.Fatalf("expected CommonNumeric(i32, f64) to widen to f64, got %v", got)
	}
}

func TestCommonNumericCollapsesToUniversalForNonNumericOperands(t *testing.T) {
	i32, str := Type{Kind: I32}, Type{Kind: String}
	if got := CommonNumeric(i32, str); got.Kind != Any {
		t.Fatalf("expected a non-numeric operand to collapse CommonNumeric to Universal, got %v", got)
	}
}

func TestConstStateTrySetTransitionsThroughTheLattice(t *testing.T) {
	var c ConstState
	if _, ok := c.Value(); ok {
		t.Fatalf("expected a zero-value ConstState to carry no value")
	}

	c = c.TrySet(int64(5))
	if !c.IsConstant() {
		t.Fatalf("expected the first TrySet to produce a constant state")
	}
	val, ok := c.Value()
	if !ok || val != int64(5) {
		t.Fatalf("expected the stored value to be 5, got %v ok=%v", val, ok)
	}

	// A repeated, agreeing TrySet leaves the state unchanged.
	c2 := c.TrySet(int64(5))
	if !c2.IsConstant() {
		t.Fatalf("expected an agreeing second TrySet to remain constant")
	}

	// A disagreeing TrySet collapses permanently to NON-CONSTANT.
	c3 := c.TrySet(int64(6))
	if c3.IsConstant() || !c3.IsNonConstant() {
		t.Fatalf("expected a disagreeing TrySet to collapse to non-constant")
	}
	if _, ok := c3.Value(); ok {
		t.Fatalf("expected a non-constant state to report no value")
	}

	// Collapse is permanent: a later agreeing TrySet never un-collapses it.
	c4 := c3.TrySet(int64(6))
	if !c4.IsNonConstant() {
		t.Fatalf("expected non-constant to be sticky even if the new value agrees with the one before collapse")
	}
}

func TestConstStateTrySetComparesNumericValuesByMagnitudeAcrossGoTypes(t *testing.T) {
	var c ConstState
	c = c.TrySet(int64(5))
	c = c.TrySet(float64(5))
	if !c.IsConstant() {
		t.Fatalf("expected int64(5) and float64(5) to be treated as the same constant value")
	}
}

func TestConstStateTrySetDistinguishesStringFromBool(t *testing.T) {
	var c ConstState
	c = c.TrySet("true")
	c = c.TrySet(true)
	if !c.IsNonConstant() {
		t.Fatalf("expected a string and a bool with the same Sprint form to disagree")
	}
}
