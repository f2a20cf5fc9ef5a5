package proto

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/types"
)

func TestGetPropertyWalksSiblingChain(t *testing.T) {
	objectProto := New("Object", nil)
	objectProto.AddProperty("toString", types.Universal, DefaultAttrs)

	arrayProto := New("Array", objectProto)
	arrayProto.AddProperty("push", types.Universal, DefaultAttrs)

	if _, ok := arrayProto.GetProperty("push"); !ok {
		t.Fatalf("expected Array.prototype's own 'push' to resolve")
	}
	if _, ok := arrayProto.GetProperty("toString"); !ok {
		t.Fatalf("expected inherited 'toString' to resolve through the sibling chain")
	}
	if _, ok := arrayProto.GetProperty("nope"); ok {
		t.Fatalf("expected an unknown name to fail")
	}
}

func TestAddPropertyIsIdempotentAndCollapsesOnDisagreement(t *testing.T) {
	p := New("Point", nil)
	v1 := p.AddProperty("x", types.Type{Kind: types.I32}, DefaultAttrs)
	v2 := p.AddProperty("x", types.Type{Kind: types.I32}, DefaultAttrs)
	if v1 != v2 {
		t.Fatalf("expected a repeated AddProperty with an agreeing type to return the same Variable")
	}
	if v1.Type().Kind != types.I32 {
		t.Fatalf("expected x to remain i32, got %v", v1.Type())
	}

	v3 := p.AddProperty("x", types.Type{Kind: types.String}, DefaultAttrs)
	if v3 != v1 {
		t.Fatalf("expected the same Variable identity after a disagreeing AddProperty")
	}
	if v3.Type().Kind != types.Any {
		t.Fatalf("expected x to collapse to Universal, got %v", v3.Type())
	}
}

func TestNamesPreservesInsertionOrder(t *testing.T) {
	p := New("Obj", nil)
	p.AddProperty("z", types.Universal, DefaultAttrs)
	p.AddProperty("a", types.Universal, DefaultAttrs)
	p.AddProperty("m", types.Universal, DefaultAttrs)

	got := p.Names()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMethodGroupAddPreservesInsertionOrderForTieBreaking(t *testing.T) {
	g := &MethodGroup{Name: "f"}
	g.Add(Overload{ParamTypes: []types.Type{{Kind: types.I32}}})
	g.Add(Overload{ParamTypes: []types.Type{{Kind: types.F64}}})

	if len(g.Overloads) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(g.Overloads))
	}
	if g.Overloads[0].ParamTypes[0].Kind != types.I32 {
		t.Fatalf("expected the first-added overload to stay first")
	}
}
