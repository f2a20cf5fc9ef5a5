package cache

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// resolveSource parses src and runs ResolveProgram over a fresh global
// scope, the same setup pkg/engine.New wires for a real run.
func resolveSource(t *testing.T, src string) (*ctx.Ctx, *scope.Scope) {
	t.Helper()
	prog, errs := parser.ParseProgram(lexer.New(src, "test.js"))
	if len(errs) > 0 {
		t.Fatalf("%q: unexpected parse errors: %v", src, errs)
	}
	g := proto.New("global", nil)
	global := scope.NewObjectScope(nil, scope.KindGlobalObject, g, true, true)
	rc := ctx.ResolveProgram(prog, global, nil)
	if len(rc.Errors) > 0 {
		t.Fatalf("%q: unexpected resolve errors: %v", src, rc.Errors)
	}
	return rc, global
}

func generatorFor(t *testing.T, rc *ctx.Ctx, global *scope.Scope, name string) *ctx.Generator {
	t.Helper()
	v, _, ok := global.Lookup(name)
	if !ok {
		t.Fatalf("expected %s to be hoisted onto the global scope", name)
	}
	val, ok := v.ConstantValue()
	if !ok {
		t.Fatalf("expected %s's binding to carry its Generator as a constant value", name)
	}
	gen, ok := val.(*ctx.Generator)
	if !ok {
		t.Fatalf("expected %s's constant value to be a *ctx.Generator, got %T", name, val)
	}
	return gen
}

func newTestCache() *Cache {
	prog := ilvm.NewProgram()
	return New(prog.NewEmitterFactory(), nil)
}

func TestGetCompiledCompilesOnceAndCachesBySpecialization(t *testing.T) {
	rc, global := resolveSource(t, `function add(a, b) { return a + b; }`)
	gen := generatorFor(t, rc, global, "add")

	c := newTestCache()
	fg := c.SaveAs(c.GetNextID(), gen)

	i32 := types.Type{Kind: types.I32}
	argTypes := []types.Type{types.Universal, i32, i32}

	s1, err := c.GetCompiled(fg, argTypes, false)
	if err != nil {
		t.Fatalf("unexpected error compiling the first specialization: %v", err)
	}
	if s1.ReturnType.Kind != types.I32 {
		t.Fatalf("expected add(i32,i32) to return i32, got %v", s1.ReturnType)
	}

	s2, err := c.GetCompiled(fg, argTypes, false)
	if err != nil {
		t.Fatalf("unexpected error on the cached lookup: %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected a repeated call with the same argument-type vector to return the same specialization")
	}
	if len(fg.Specializations()) != 1 {
		t.Fatalf("expected exactly one specialization to have been compiled, got %d", len(fg.Specializations()))
	}
}

func TestGetCompiledSpecializesSeparatelyPerArgumentTypeVector(t *testing.T) {
	rc, global := resolveSource(t, `function add(a, b) { return a + b; }`)
	gen := generatorFor(t, rc, global, "add")

	c := newTestCache()
	fg := c.SaveAs(c.GetNextID(), gen)

	i32, str := types.Type{Kind: types.I32}, types.Type{Kind: types.String}

	intSpec, err := c.GetCompiled(fg, []types.Type{types.Universal, i32, i32}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strSpec, err := c.GetCompiled(fg, []types.Type{types.Universal, str, str}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if intSpec == strSpec {
		t.Fatalf("expected distinct argument-type vectors to compile distinct specializations")
	}
	if strSpec.ReturnType.Kind != types.String {
		t.Fatalf("expected add(string,string) to return string (concatenation), got %v", strSpec.ReturnType)
	}
	if len(fg.Specializations()) != 2 {
		t.Fatalf("expected two specializations, got %d", len(fg.Specializations()))
	}
}

// TestGetCompiledLeavesEntryInSpecializationTable checks that after
// GetCompiled returns, the specialization's table entry is present in
// fg.byKey under its argument-type key. It does not observe the order in
// which the entry is registered relative to ResolveFunctionBody; the
// recursive-call case needs a real dispatch.Resolver (internal/dispatch)
// and is not exercised here.
func TestGetCompiledLeavesEntryInSpecializationTable(t *testing.T) {
	rc, global := resolveSource(t, `function identity(n) { return n; }`)
	gen := generatorFor(t, rc, global, "identity")

	c := newTestCache()
	fg := c.SaveAs(c.GetNextID(), gen)

	i32 := types.Type{Kind: types.I32}
	argTypes := []types.Type{types.Universal, i32}
	key := argKey(argTypes)

	if _, err := c.GetCompiled(fg, argTypes, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fg.mu.Lock()
	_, ok := fg.byKey[key]
	fg.mu.Unlock()
	if !ok {
		t.Fatalf("expected the specialization's table entry to persist after compilation")
	}
}

func TestForgetClearsGeneratorState(t *testing.T) {
	rc, global := resolveSource(t, `function add(a, b) { return a + b; }`)
	gen := generatorFor(t, rc, global, "add")

	c := newTestCache()
	id := c.GetNextID()
	fg := c.SaveAs(id, gen)

	i32 := types.Type{Kind: types.I32}
	if _, err := c.GetCompiled(fg, []types.Type{types.Universal, i32, i32}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Forget(id)
	if fg.Literal != nil {
		t.Fatalf("expected Forget to clear the generator's AST")
	}
	if len(fg.Specializations()) != 0 {
		t.Fatalf("expected Forget to clear compiled specializations")
	}
}

func TestShutdownForgetsEveryGenerator(t *testing.T) {
	rc, global := resolveSource(t, `function add(a, b) { return a + b; }`)
	gen := generatorFor(t, rc, global, "add")

	c := newTestCache()
	id := c.GetNextID()
	fg := c.SaveAs(id, gen)

	i32 := types.Type{Kind: types.I32}
	s, err := c.GetCompiled(fg, []types.Type{types.Universal, i32, i32}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Shutdown()
	if fg.Literal != nil {
		t.Fatalf("expected Shutdown to forget every live generator")
	}
	if _, ok := c.ReverseLookup(s.Handle); ok {
		t.Fatalf("expected Shutdown to clear the reverse handle index")
	}
}

func TestArgKeyDistinguishesArgumentTypeVectors(t *testing.T) {
	i32, f64 := types.Type{Kind: types.I32}, types.Type{Kind: types.F64}
	a := argKey([]types.Type{i32, i32})
	b := argKey([]types.Type{i32, f64})
	if a == b {
		t.Fatalf("expected distinct argument-type vectors to produce distinct keys")
	}
	if argKey([]types.Type{i32, i32}) != a {
		t.Fatalf("expected argKey to be deterministic for the same vector")
	}
}
