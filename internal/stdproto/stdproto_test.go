package stdproto

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

func newRegistry() *Registry {
	return New(ilvm.NewProgram())
}

func TestPrototypeForMapsPrimitiveKindsToBuiltinPrototypes(t *testing.T) {
	r := newRegistry()

	cases := []struct {
		t    types.Type
		want *proto.Prototype
	}{
		{types.Type{Kind: types.String}, r.String},
		{types.Type{Kind: types.I32}, r.Number},
		{types.Type{Kind: types.U32}, r.Number},
		{types.Type{Kind: types.F64}, r.Number},
		{types.ObjectOf(""), r.Object},
		{types.ObjectOf(ClassArray), r.Array},
		{types.ObjectOf(ClassMath), r.Math},
	}
	for _, c := range cases {
		got, ok := r.PrototypeFor(c.t)
		if !ok {
			t.Errorf("PrototypeFor(%v): expected a match", c.t)
			continue
		}
		if got != c.want {
			t.Errorf("PrototypeFor(%v) = %v, want %v", c.t, got.Name, c.want.Name)
		}
	}
}

func TestPrototypeForRejectsUnknownKindsAndNames(t *testing.T) {
	r := newRegistry()
	if _, ok := r.PrototypeFor(types.Type{Kind: types.Undefined}); ok {
		t.Fatalf("expected Undefined to have no built-in prototype")
	}
	if _, ok := r.PrototypeFor(types.ObjectOf("NeverRegistered")); ok {
		t.Fatalf("expected an unknown prototype name to fail until an instance is created")
	}
}

func TestArrayPrototypeExposesItsMethodsWithCorrectShape(t *testing.T) {
	r := newRegistry()

	v, ok := r.Array.GetProperty("push")
	if !ok {
		t.Fatalf("expected Array.prototype.push to exist")
	}
	group := methodGroup(t, v)
	if len(group.Overloads) != 1 {
		t.Fatalf("expected exactly one push overload, got %d", len(group.Overloads))
	}
	ov := group.Overloads[0]
	if !ov.HasThisObjParam {
		t.Fatalf("expected push to carry a this-object parameter")
	}
	if ov.ReturnType.Kind != types.I32 {
		t.Fatalf("expected push to return i32 (new length), got %v", ov.ReturnType)
	}
}

func TestArrayPrototypeInheritsObjectMethods(t *testing.T) {
	r := newRegistry()
	r.Object.AddProperty("toString", types.Universal, proto.DefaultAttrs)
	if _, ok := r.Array.GetProperty("toString"); !ok {
		t.Fatalf("expected Array.prototype to inherit Object.prototype's members via its sibling chain")
	}
}

func TestMathMethodsHaveNoThisObjParam(t *testing.T) {
	r := newRegistry()
	v, ok := r.Math.GetProperty("sqrt")
	if !ok {
		t.Fatalf("expected Math.sqrt to exist")
	}
	group := methodGroup(t, v)
	if group.Overloads[0].HasThisObjParam {
		t.Fatalf("expected Math's namespace functions to have no this-object parameter")
	}
}

func TestInstancePrototypeIsCreatedOnceAndChainedToObject(t *testing.T) {
	r := newRegistry()
	gen := &ctx.Generator{Name: "Point"}

	p1 := r.InstancePrototype(gen)
	p2 := r.InstancePrototype(gen)
	if p1 != p2 {
		t.Fatalf("expected repeated InstancePrototype calls for the same generator to return the same prototype")
	}
	if p1.Name != "Point" {
		t.Fatalf("expected the instance prototype to take the generator's name, got %q", p1.Name)
	}

	r.Object.AddProperty("toString", types.Universal, proto.DefaultAttrs)
	if _, ok := p1.GetProperty("toString"); !ok {
		t.Fatalf("expected a synthesized instance prototype to chain to Object.prototype")
	}
}

func TestInstancePrototypeDefaultsAnonymousName(t *testing.T) {
	r := newRegistry()
	gen := &ctx.Generator{}
	p := r.InstancePrototype(gen)
	if p.Name != "AnonymousClass" {
		t.Fatalf("expected an unnamed generator's instance prototype to be called AnonymousClass, got %q", p.Name)
	}
}

func TestInstancePrototypeIsReachableThroughPrototypeForOnceCreated(t *testing.T) {
	r := newRegistry()
	gen := &ctx.Generator{Name: "Widget"}
	p := r.InstancePrototype(gen)

	got, ok := r.PrototypeFor(types.ObjectOf("Widget"))
	if !ok {
		t.Fatalf("expected PrototypeFor to find a previously created instance prototype")
	}
	if got != p {
		t.Fatalf("expected PrototypeFor to return the same prototype InstancePrototype created")
	}
}

func methodGroup(t *testing.T, v *scope.Variable) *proto.MethodGroup {
	t.Helper()
	val, ok := v.ConstantValue()
	if !ok {
		t.Fatalf("expected a built-in method property to carry its MethodGroup as a constant value")
	}
	group, ok := val.(*proto.MethodGroup)
	if !ok {
		t.Fatalf("expected the constant value to be a *proto.MethodGroup, got %T", val)
	}
	return group
}
