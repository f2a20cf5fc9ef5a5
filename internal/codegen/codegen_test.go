package codegen_test

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/cache"
	"github.com/bablakeluke/nitrassic-go/internal/codegen"
	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/dispatch"
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/stdproto"
)

// run parses, resolves and generates src as a top-level program against a
// fresh ilvm.Program/VM wired with the real stdproto/dispatch/cache
// pipeline — the same construction order pkg/engine.New uses — then calls
// the compiled method. A nil CallResolver would leave every call
// expression (user-function calls, for-in/for-of's GetEnumerator/
// MoveNext/GetCurrent dispatch, §4.8 specialization) permanently
// Unresolved, so this package's tests need the real wiring, not a stub, to
// exercise code generation the way the engine actually drives it.
func run(t *testing.T, src string) ilvm.Value {
	t.Helper()
	prog, errs := parser.ParseProgram(lexer.New(src, "test.js"))
	if len(errs) > 0 {
		t.Fatalf("%q: unexpected parse errors: %v", src, errs)
	}

	ilprog := ilvm.NewProgram()
	protos := stdproto.New(ilprog)
	c := cache.New(ilprog.NewEmitterFactory(), nil)
	resolver := dispatch.New(c, protos)
	c.Resolver = resolver

	g := proto.New("global", nil)
	global := scope.NewObjectScope(nil, scope.KindGlobalObject, g, true, true)
	rc := ctx.ResolveProgram(prog, global, resolver)
	if len(rc.Errors) > 0 {
		t.Fatalf("%q: unexpected resolve errors: %v", src, rc.Errors)
	}

	em := ilprog.NewEmitterFactory()()
	handle, err := codegen.GenerateProgram(rc, em, prog)
	if err != nil {
		t.Fatalf("%q: unexpected codegen error: %v", src, err)
	}

	vm := ilvm.New(ilprog)
	v, err := vm.Call(handle)
	if err != nil {
		t.Fatalf("%q: unexpected runtime error: %v", src, err)
	}
	return v
}

func TestForOfIteratesArrayElementsInOrder(t *testing.T) {
	src := `var sum = 0;
	for (var x of [1, 2, 3]) {
		sum = sum + x;
	}
	return sum;`
	if got := run(t, src).Float64(); got != 6 {
		t.Fatalf("got %v, want 6 (1+2+3)", got)
	}
}

func TestForOfRebindsTheLoopVariableEachPass(t *testing.T) {
	// Each pass through the loop must see this iteration's element, not a
	// value left over from (or shared with) the previous one: rebinding
	// x to 10 inside the body must not leak into the next element.
	src := `var seen = "";
	for (var x of [1, 2, 3]) {
		seen = seen + x;
		x = 10;
	}
	return seen;`
	if got := run(t, src).String(); got != "123" {
		t.Fatalf("got %q, want %q — the loop variable must be reassigned fresh from the next element every iteration", got, "123")
	}
}

func TestForOfBreakAndContinue(t *testing.T) {
	src := `var sum = 0;
	for (var x of [1, 2, 3, 4, 5]) {
		if (x == 4) { break; }
		if (x % 2 == 0) { continue; }
		sum = sum + x;
	}
	return sum;`
	if got := run(t, src).Float64(); got != 4 {
		t.Fatalf("got %v, want 4 (1+3, stopping before 4)", got)
	}
}

func TestFunctionArgumentsExposesExtraPositionalArguments(t *testing.T) {
	src := `function sum() {
		var total = 0;
		var i = 0;
		while (i < 4) {
			total = total + arguments[i];
			i = i + 1;
		}
		return total;
	}
	return sum(1, 2, 3, 4);`
	if got := run(t, src).Float64(); got != 10 {
		t.Fatalf("got %v, want 10 (1+2+3+4), arguments must expose every call-site argument even though sum() declares none", got)
	}
}

func TestFunctionArgumentsMatchesNamedParameterValues(t *testing.T) {
	src := `function f(a, b) { return arguments[0] + arguments[1]; }
	return f(3, 4);`
	if got := run(t, src).Float64(); got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestFunctionWithoutArgumentsReferenceStillWorks(t *testing.T) {
	// A function that never names "arguments" must not trip over the
	// synthesized binding or accidentally resolve the identifier as an
	// implicit global.
	src := `function add(a, b) { return a + b; } return add(2, 5);`
	if got := run(t, src).Float64(); got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestArithmeticAndConcatenation(t *testing.T) {
	if got := run(t, `return 2 + 3;`).Float64(); got != 5 {
		t.Fatalf("got %v, want 5", got)
	}
	if got := run(t, `return "a" + "b";`).String(); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
	if got := run(t, `return 10 - 4 * 2;`).Float64(); got != 2 {
		t.Fatalf("expected precedence to bind * tighter than -, got %v", got)
	}
}

func TestIfElseGeneratesBothBranches(t *testing.T) {
	if got := run(t, `if (1 < 2) { return "yes"; } else { return "no"; }`).String(); got != "yes" {
		t.Fatalf("got %q, want %q", got, "yes")
	}
	if got := run(t, `if (2 < 1) { return "yes"; } else { return "no"; }`).String(); got != "no" {
		t.Fatalf("got %q, want %q", got, "no")
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	src := `var s = 0; var i = 0; while (i < 5) { s = s + i; i = i + 1; } return s;`
	if got := run(t, src).Float64(); got != 10 {
		t.Fatalf("got %v, want 10 (0+1+2+3+4)", got)
	}
}

func TestForLoopWithBreakAndContinue(t *testing.T) {
	src := `var s = 0;
	for (var i = 0; i < 10; i = i + 1) {
		if (i == 5) { break; }
		if (i % 2 == 0) { continue; }
		s = s + i;
	}
	return s;`
	if got := run(t, src).Float64(); got != 4 {
		t.Fatalf("got %v, want 4 (1+3)", got)
	}
}

func TestDoWhileRunsBodyAtLeastOnce(t *testing.T) {
	src := `var i = 0; do { i = i + 1; } while (false); return i;`
	if got := run(t, src).Float64(); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestLogicalOperatorsShortCircuit(t *testing.T) {
	src := `var calls = 0;
	function sideEffect() { calls = calls + 1; return true; }
	var r = false && sideEffect();
	return calls;`
	if got := run(t, src).Float64(); got != 0 {
		t.Fatalf("expected && to short-circuit and never call its right operand, got calls=%v", got)
	}

	src2 := `var calls = 0;
	function sideEffect() { calls = calls + 1; return true; }
	var r = true || sideEffect();
	return calls;`
	if got := run(t, src2).Float64(); got != 0 {
		t.Fatalf("expected || to short-circuit and never call its right operand, got calls=%v", got)
	}
}

func TestFunctionCallAndRecursion(t *testing.T) {
	src := `function fact(n) { if (n <= 1) { return 1; } return n * fact(n - 1); } return fact(5);`
	if got := run(t, src).Float64(); got != 120 {
		t.Fatalf("got %v, want 120", got)
	}
}

func TestTryCatchRecoversFromThrow(t *testing.T) {
	src := `var r = "";
	try {
		throw "boom";
	} catch (e) {
		r = e;
	}
	return r;`
	if got := run(t, src).String(); got != "boom" {
		t.Fatalf("got %q, want %q", got, "boom")
	}
}

func TestTryFinallyAlwaysRuns(t *testing.T) {
	src := `var order = "";
	function f() {
		try {
			order = order + "a";
			return 1;
		} finally {
			order = order + "b";
		}
	}
	f();
	return order;`
	if got := run(t, src).String(); got != "ab" {
		t.Fatalf("expected finally to run even after an early return, got %q", got)
	}
}

func TestTernaryEvaluatesOnlyTheSelectedBranch(t *testing.T) {
	src := `var calls = 0;
	function sideEffect() { calls = calls + 1; return 99; }
	var r = true ? 1 : sideEffect();
	return calls;`
	if got := run(t, src).Float64(); got != 0 {
		t.Fatalf("expected the untaken ternary branch to never execute, got calls=%v", got)
	}
}
