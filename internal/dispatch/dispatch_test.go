package dispatch

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

func TestScoreOverloadExactMatchScoresZero(t *testing.T) {
	ov := proto.Overload{ParamTypes: []types.Type{{Kind: types.I32}, {Kind: types.I32}}}
	penalty, ok := scoreOverload(ov, []types.Type{{Kind: types.I32}, {Kind: types.I32}}, types.Type{}, false)
	if !ok {
		t.Fatalf("expected an exact argument-type vector to match its own declared overload")
	}
	if penalty != 0 {
		t.Fatalf("expected a zero score for an exact match, got %d", penalty)
	}
}

func TestScoreOverloadRejectsArityMismatch(t *testing.T) {
	ov := proto.Overload{ParamTypes: []types.Type{{Kind: types.I32}}}
	if _, ok := scoreOverload(ov, []types.Type{{Kind: types.I32}, {Kind: types.I32}}, types.Type{}, false); ok {
		t.Fatalf("expected too many arguments to reject a non-variadic overload")
	}
}

func TestScoreOverloadParamsArrayAbsorbsExtraArguments(t *testing.T) {
	ov := proto.Overload{
		ParamTypes:  []types.Type{{Kind: types.String}, {Kind: types.Any}},
		ParamsArray: true,
	}
	_, ok := scoreOverload(ov, []types.Type{{Kind: types.String}, {Kind: types.I32}, {Kind: types.String}, {Kind: types.Boolean}}, types.Type{}, false)
	if !ok {
		t.Fatalf("expected a trailing params array to absorb any number of extra arguments")
	}
}

func TestSelectAndBuildPrefersLowerPenaltyOverload(t *testing.T) {
	g := &proto.MethodGroup{Name: "f"}
	g.Add(proto.Overload{ParamTypes: []types.Type{{Kind: types.F64}}, ReturnType: types.Type{Kind: types.F64}})
	g.Add(proto.Overload{ParamTypes: []types.Type{{Kind: types.I32}}, ReturnType: types.Type{Kind: types.I32}})

	target, ret := selectAndBuild(g, []types.Type{{Kind: types.I32}}, types.Type{}, false)
	if target.Unresolved {
		t.Fatalf("expected a resolved call target")
	}
	if ret.Kind != types.I32 {
		t.Fatalf("expected the exact-match i32 overload to win over the widening f64 one, got return type %v", ret)
	}
}

func TestSelectAndBuildBreaksTiesTowardEarliestOverload(t *testing.T) {
	g := &proto.MethodGroup{Name: "f"}
	g.Add(proto.Overload{ParamTypes: []types.Type{{Kind: types.Any}}, ReturnType: types.Type{Kind: types.String}})
	g.Add(proto.Overload{ParamTypes: []types.Type{{Kind: types.Any}}, ReturnType: types.Type{Kind: types.Boolean}})

	_, ret := selectAndBuild(g, []types.Type{{Kind: types.Any}}, types.Type{}, false)
	if ret.Kind != types.String {
		t.Fatalf("expected the first-added overload to win an exact tie, got return type %v", ret)
	}
}

func TestSelectAndBuildReturnsUnresolvedWhenNoOverloadMatches(t *testing.T) {
	g := &proto.MethodGroup{Name: "f"}
	g.Add(proto.Overload{ParamTypes: []types.Type{{Kind: types.I32}}})

	target, _ := selectAndBuild(g, []types.Type{{Kind: types.I32}, {Kind: types.I32}}, types.Type{}, false)
	if !target.Unresolved {
		t.Fatalf("expected an unresolved call target when no overload's arity matches")
	}
}

func TestTypeDistanceOrdering(t *testing.T) {
	i32, f64, str, any_ := types.Type{Kind: types.I32}, types.Type{Kind: types.F64}, types.Type{Kind: types.String}, types.Universal

	if d := typeDistance(i32, i32); d != 0 {
		t.Errorf("expected identity to score 0, got %d", d)
	}
	if d := typeDistance(i32, f64); d != 1 {
		t.Errorf("expected widening i32->f64 to score 1, got %d", d)
	}
	if d := typeDistance(f64, i32); d != 2 {
		t.Errorf("expected narrowing f64->i32 to score 2, got %d", d)
	}
	if d := typeDistance(i32, any_); d != 3 {
		t.Errorf("expected conversion through Any to score the highest, got %d", d)
	}
	if d := typeDistance(i32, str); d < 0 {
		t.Errorf("expected a numeric-to-string conversion to be possible")
	}
}
