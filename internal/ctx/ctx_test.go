package ctx

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parser.ParseProgram(lexer.New(src, "test.js"))
	if len(errs) > 0 {
		t.Fatalf("%q: unexpected parse errors: %v", src, errs)
	}
	return prog
}

func newGlobalScope() *scope.Scope {
	p := proto.New("global", nil)
	return scope.NewObjectScope(nil, scope.KindGlobalObject, p, true, true)
}

func TestResolveProgramInfersArithmeticLiteralType(t *testing.T) {
	prog := parseProgram(t, "var x = 2 + 3;")
	rc := ResolveProgram(prog, newGlobalScope(), nil)
	if len(rc.Errors) > 0 {
		t.Fatalf("unexpected resolve errors: %v", rc.Errors)
	}

	vs := prog.Body[0].(*ast.VarStatement)
	binding := vs.Declarations[0].Binding
	if binding == nil {
		t.Fatalf("expected x to be bound")
	}
	if binding.Type().Kind != types.I32 {
		t.Fatalf("expected x's type to be i32, got %v", binding.Type())
	}
	if !binding.IsConstant() {
		t.Fatalf("expected x to be tracked as constant")
	}
	val, ok := binding.ConstantValue()
	if !ok {
		t.Fatalf("expected a constant value")
	}
	if val != int64(5) {
		t.Fatalf("expected constant value 5, got %v", val)
	}
}

func TestResolveProgramCollapsesVariableOnDisagreeingAssignment(t *testing.T) {
	prog := parseProgram(t, `var s = ""; for (var i = 0; i < 3; i = i + 1) { s = i; }`)
	rc := ResolveProgram(prog, newGlobalScope(), nil)
	if len(rc.Errors) > 0 {
		t.Fatalf("unexpected resolve errors: %v", rc.Errors)
	}
	vs := prog.Body[0].(*ast.VarStatement)
	binding := vs.Declarations[0].Binding
	if binding.Type().Kind != types.Any {
		t.Fatalf("expected s to collapse to Universal after a disagreeing assignment (string -> i32), got %v", binding.Type())
	}
}

func TestIfWithConstantConditionElidesDeadBranch(t *testing.T) {
	prog := parseProgram(t, `if (true) { a = 1; } else { a = 2; }`)
	ifs := prog.Body[0].(*ast.IfStatement)

	rc := New(newGlobalScope(), nil, false)
	rc.Root = prog
	rc.resolveIfStatement(ifs)
	if len(rc.Errors) > 0 {
		t.Fatalf("unexpected resolve errors: %v", rc.Errors)
	}

	// Only the consequent branch should have been resolved; a's constant
	// value must come from it (1) and never from the dead alternate (2),
	// which a later disagreeing write would have collapsed to non-constant.
	gv, _, ok := rc.Scope.Lookup("a")
	if !ok {
		t.Fatalf("expected the live branch's assignment to declare global 'a'")
	}
	val, ok := gv.ConstantValue()
	if !ok || val != int64(1) {
		t.Fatalf("expected a's constant value to be 1 from the live branch only, got %v ok=%v", val, ok)
	}
}

func TestAccumulateReturnCollapsesOnDisagreement(t *testing.T) {
	c := New(newGlobalScope(), nil, false)
	c.AccumulateReturn(types.Type{Kind: types.I32})
	rt, ok := c.ReturnType()
	if !ok || rt.Kind != types.I32 {
		t.Fatalf("expected the first return's type to stick, got %v ok=%v", rt, ok)
	}
	c.AccumulateReturn(types.Type{Kind: types.String})
	rt, _ = c.ReturnType()
	if rt.Kind != types.Any {
		t.Fatalf("expected a disagreeing second return to collapse to Universal, got %v", rt)
	}
}

func TestPushLoopClaimsPendingLabels(t *testing.T) {
	c := New(newGlobalScope(), nil, false)
	c.PushLabel("outer")
	frame := c.PushLoop(emit.Label{}, emit.Label{})
	if !frame.Labels["outer"] {
		t.Fatalf("expected the pending label to be claimed by the new loop frame")
	}
	if found, ok := c.FindLoop("outer"); !ok || found != frame {
		t.Fatalf("expected FindLoop(\"outer\") to resolve to the pushed frame")
	}
	if _, ok := c.FindLoop("missing"); ok {
		t.Fatalf("expected an unknown label to not resolve")
	}
	c.PopLoop()
	if _, ok := c.FindLoop("outer"); ok {
		t.Fatalf("expected the frame to be gone after PopLoop")
	}
}
