package scope

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/types"
)

func TestNewFunctionScopeBindsThisAtIndexZero(t *testing.T) {
	s := NewFunctionScope(nil, types.Type{Kind: types.Object, PrototypeName: "Widget"})
	v, ok := s.Names["this"]
	if !ok {
		t.Fatalf("expected a bound 'this' entry")
	}
	if v.Kind != KindArgument || v.ArgIndex != 0 {
		t.Fatalf("expected 'this' to be argument index 0, got kind=%v index=%d", v.Kind, v.ArgIndex)
	}
}

func TestLookupFindsNearestEnclosingDeclaration(t *testing.T) {
	outer := NewDeclarative(nil, KindFunction)
	outer.DeclareVariable("x", types.Type{Kind: types.I32})

	inner := NewDeclarative(outer, KindFunction)
	inner.DeclareVariable("x", types.Type{Kind: types.String})

	v, foundScope, ok := inner.Lookup("x")
	if !ok {
		t.Fatalf("expected to find x")
	}
	if foundScope != inner {
		t.Fatalf("expected the inner scope's own x to shadow the outer one")
	}
	if v.Type().Kind != types.String {
		t.Fatalf("expected the inner x's type, got %v", v.Type())
	}
}

func TestApplyTypeCollapsesOnDisagreement(t *testing.T) {
	v := NewDeclared("x")
	if v.HasType() {
		t.Fatalf("a fresh declared variable should have no type yet")
	}
	collapsed := v.ApplyType(types.Type{Kind: types.I32})
	if collapsed {
		t.Fatalf("the first ApplyType should never report a collapse")
	}
	if v.Type().Kind != types.I32 {
		t.Fatalf("expected the first applied type to stick, got %v", v.Type())
	}

	collapsed = v.ApplyType(types.Type{Kind: types.String})
	if !collapsed {
		t.Fatalf("a disagreeing second ApplyType should report a collapse")
	}
	if v.Type().Kind != types.Any {
		t.Fatalf("expected the variable to collapse to Universal, got %v", v.Type())
	}

	collapsed = v.ApplyType(types.Type{Kind: types.Boolean})
	if collapsed {
		t.Fatalf("a variable that is already Universal should never report a further collapse")
	}
	if v.Type().Kind != types.Any {
		t.Fatalf("a collapsed variable must never un-collapse, got %v", v.Type())
	}
}

func TestApplyTypeAgreeingTwiceDoesNotCollapse(t *testing.T) {
	v := NewDeclared("x")
	v.ApplyType(types.Type{Kind: types.I32})
	collapsed := v.ApplyType(types.Type{Kind: types.I32})
	if collapsed {
		t.Fatalf("applying the same type twice should not collapse")
	}
	if v.Type().Kind != types.I32 {
		t.Fatalf("expected the type to remain i32, got %v", v.Type())
	}
}

func TestConstantTrackingPromotesToNonConstantOnDisagreement(t *testing.T) {
	v := NewDeclared("x")
	v.TrySetConstant(int64(5))
	if !v.IsConstant() {
		t.Fatalf("expected a single assigned value to be constant")
	}
	val, ok := v.ConstantValue()
	if !ok || val != int64(5) {
		t.Fatalf("expected constant value 5, got %v ok=%v", val, ok)
	}

	v.TrySetConstant(int64(5))
	if !v.IsConstant() {
		t.Fatalf("re-asserting the same constant value should not promote to non-constant")
	}

	v.TrySetConstant(int64(6))
	if v.IsConstant() {
		t.Fatalf("a disagreeing second assignment should promote to NON-CONSTANT")
	}
}

func TestWithScopeForwardsDeclarationsToEnclosingFunctionScope(t *testing.T) {
	fn := NewDeclarative(nil, KindFunction)
	withScope := NewObjectScope(fn, KindWith, fakeBacking{}, false, true)

	v := withScope.DeclareVariable("y", types.Type{Kind: types.I32})
	if v == nil {
		t.Fatalf("expected the declaration to forward to the enclosing function scope")
	}
	if _, ok := fn.Names["y"]; !ok {
		t.Fatalf("expected 'y' to be hoisted onto the enclosing function scope, not the with scope")
	}
}

type fakeBacking struct{}

func (fakeBacking) LookupVariable(name string) (*Variable, bool) { return nil, false }
