// Package dispatch implements C8: the resolver that converts `a.b(c)` and
// `new F(...)` into concrete target methods — overload selection over a
// proto.MethodGroup, and per-argument-vector specialization of user
// functions via internal/cache. It implements internal/ctx's CallResolver
// interface; ctx never imports this package, since specializing a callee
// recursively re-enters ResolveVariables on the callee's own body.
package dispatch

import (
	"sync"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/cache"
	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Prototypes is the minimal surface dispatch needs from wherever the
// engine's built-in type layout lives (internal/stdproto's registry, in
// this module's own tests and CLI): the prototype backing a static type,
// and the per-generator instance prototype `new` constructs against.
type Prototypes interface {
	PrototypeFor(t types.Type) (*proto.Prototype, bool)
	InstancePrototype(gen *ctx.Generator) *proto.Prototype
}

// Resolver is the concrete ctx.CallResolver.
type Resolver struct {
	Cache  *cache.Cache
	Protos Prototypes

	mu    sync.Mutex
	known map[*ctx.Generator]*cache.FunctionMethodGenerator
}

// New creates a Resolver. c must share the same Cache instance that the
// emitter-producing code (internal/cache.Cache.NewEmitter) uses, since
// GetCompiled's specialization table lives there.
func New(c *cache.Cache, protos Prototypes) *Resolver {
	return &Resolver{Cache: c, Protos: protos, known: map[*ctx.Generator]*cache.FunctionMethodGenerator{}}
}

// generatorFor returns (creating on first sight) the cache-level
// FunctionMethodGenerator backing gen, mirroring spec §4.12's SaveAs/
// LoadGenerator pair but keyed by the ctx.Generator's own identity rather
// than by a pre-known id — dispatch is the first place in the pipeline
// that actually needs a function specialized, so it's also the natural
// place to mint its cache id.
func (r *Resolver) generatorFor(gen *ctx.Generator) *cache.FunctionMethodGenerator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fg, ok := r.known[gen]; ok {
		return fg
	}
	id := r.Cache.GetNextID()
	fg := r.Cache.SaveAs(id, gen)
	r.known[gen] = fg
	return fg
}

// ResolveMemberCall implements spec §4.8's member-access call lowering:
// `a.b(args...)`. The member's prototype property is resolved by walking
// typeOf(a)'s prototype chain; a constant callable property (method
// group, or a user-function generator) is dispatched directly; anything
// else is left unresolved (the call site will report a type error).
func (r *Resolver) ResolveMemberCall(c *ctx.Ctx, objType types.Type, member string, computed bool, argTypes []types.Type, isNew bool) (ast.CallTarget, types.Type) {
	if computed {
		// A computed member call (`a[expr()](...)`) has no statically known
		// property name to resolve against a method group; reserved, not
		// emitted (mirrors spec §4.8's own "reserved" note for fully dynamic
		// dispatch — see DESIGN.md).
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	p, ok := r.Protos.PrototypeFor(objType)
	if !ok {
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	v, ok := p.GetProperty(member)
	if !ok || !v.IsConstant() {
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	constVal, _ := v.ConstantValue()
	return r.resolveConstantCallee(constVal, objType, argTypes, isNew)
}

// ResolveBareCall implements spec §4.8's `f(args...)`/`new f(...)`
// lowering: a name tracked as a constant user-function generator
// dispatches directly; otherwise calleeType's own prototype (e.g.
// Function.prototype for a first-class function value) supplies the
// OnCall/OnConstruct entry.
func (r *Resolver) ResolveBareCall(c *ctx.Ctx, calleeType types.Type, calleeConst any, argTypes []types.Type, isNew bool) (ast.CallTarget, types.Type) {
	if calleeConst != nil {
		return r.resolveConstantCallee(calleeConst, types.UndefinedT, argTypes, isNew)
	}
	p, ok := r.Protos.PrototypeFor(calleeType)
	if !ok {
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	entry := p.OnCall
	if isNew {
		entry = p.OnConstruct
	}
	group, ok := entry.(*proto.MethodGroup)
	if !ok {
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	return selectAndBuild(group, argTypes, types.Type{}, false)
}

// resolveConstantCallee dispatches a resolved constant property/name
// value: a *proto.MethodGroup goes through ordinary overload selection; a
// *ctx.Generator goes through user-function specialization, with thisType
// prepended to argTypes as the vector's position 0 (or, for `new`, the
// function's own instance-prototype type instead of the caller's `this`).
func (r *Resolver) resolveConstantCallee(constVal any, thisType types.Type, argTypes []types.Type, isNew bool) (ast.CallTarget, types.Type) {
	switch v := constVal.(type) {
	case *proto.MethodGroup:
		return selectAndBuild(v, argTypes, thisType, true)
	case *ctx.Generator:
		if isNew {
			thisType = types.ObjectOf(r.Protos.InstancePrototype(v).Name)
		}
		vec := make([]types.Type, 0, len(argTypes)+1)
		vec = append(vec, thisType)
		vec = append(vec, argTypes...)
		fg := r.generatorFor(v)
		spec, err := r.Cache.GetCompiled(fg, vec, isNew)
		if err != nil {
			return ast.CallTarget{Unresolved: true}, types.Universal
		}
		return ast.CallTarget{
			Handle:      spec.Handle,
			ParamTypes:  vec[1:], // vec[0] is `this`, which generateCallLike pushes itself
			HasThisObj:  true,
			HasEngine:   false,
		}, spec.ReturnType
	default:
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
}

// --- overload selection (spec §4.8) -----------------------------------------

// selectAndBuild scores group's overloads against argTypes (the actual
// call-site arguments, not including this/engine), then builds the
// CallTarget for the winner. includeThis controls whether the leading
// engine/thisObj formals are matched against thisType before the ordinary
// positional parameters (a bare call's OnCall entry has no receiver to
// match against, only its own declared parameters).
func selectAndBuild(group *proto.MethodGroup, argTypes []types.Type, thisType types.Type, includeThis bool) (ast.CallTarget, types.Type) {
	best, bestPenalty := -1, -1
	for i, ov := range group.Overloads {
		penalty, ok := scoreOverload(ov, argTypes, thisType, includeThis)
		if !ok {
			continue
		}
		if best == -1 || penalty < bestPenalty {
			best, bestPenalty = i, penalty
		}
		// Ties break toward the earliest-added overload (spec §9's
		// documented limitation): a later equal-penalty candidate never
		// overwrites best.
	}
	if best == -1 {
		return ast.CallTarget{Unresolved: true}, types.Universal
	}
	ov := group.Overloads[best]
	handle, _ := ov.Target.(emit.Method)
	start := 0
	if ov.HasEngineParam {
		start++
	}
	if ov.HasThisObjParam {
		start++
	}
	return ast.CallTarget{
		Handle:      handle,
		ParamTypes:  ov.ParamTypes[start:], // drop the engine/this placeholder slots scoreOverload consumed; generateCallLike aligns the rest 1:1 against the real call-site arguments
		ParamsArray: ov.ParamsArray,
		HasEngine:   ov.HasEngineParam,
		HasThisObj:  ov.HasThisObjParam,
	}, ov.ReturnType
}

// scoreOverload reports ov's total conversion penalty against argTypes,
// or ok == false if arity or any single argument is incompatible.
func scoreOverload(ov proto.Overload, argTypes []types.Type, thisType types.Type, includeThis bool) (int, bool) {
	start := 0
	if ov.HasEngineParam {
		start++ // engine handle carries no static argument of its own
	}
	penalty := 0
	if ov.HasThisObjParam {
		if start >= len(ov.ParamTypes) {
			return 0, false
		}
		if includeThis {
			d := typeDistance(thisType, ov.ParamTypes[start])
			if d < 0 {
				return 0, false
			}
			penalty += d
		}
		start++
	}
	formals := ov.ParamTypes[start:]
	fixedCount := len(formals)
	if ov.ParamsArray {
		fixedCount--
	}
	minFixed := fixedCount - len(ov.Defaults)
	if minFixed < 0 {
		minFixed = 0
	}
	if len(argTypes) < minFixed {
		return 0, false
	}
	if !ov.ParamsArray && len(argTypes) > fixedCount {
		return 0, false
	}
	for i, at := range argTypes {
		var pt types.Type
		switch {
		case ov.ParamsArray && i >= fixedCount:
			pt = formals[fixedCount] // variadic element type
		case i < fixedCount:
			pt = formals[i]
		default:
			return 0, false
		}
		d := typeDistance(at, pt)
		if d < 0 {
			return 0, false
		}
		penalty += d
	}
	return penalty, true
}

// typeDistance scores a's assignability to param type p: 0 exact, 1 an
// implicit numeric widening, 2 an explicit (narrowing) conversion, 3 a
// conversion through the universal/Any type — spec's documented ordering
// ("explicit conversion penalized more than implicit, conversion via a
// registered universal converter the most") — or -1 if nothing converts.
func typeDistance(a, p types.Type) int {
	if a.Equal(p) {
		return 0
	}
	if p.Kind == types.Any || a.Kind == types.Any {
		return 3
	}
	if a.IsNumeric() && p.Kind == types.F64 {
		return 1 // widening to the common numeric type
	}
	if (a.Kind == types.I32 && p.Kind == types.U32) || (a.Kind == types.U32 && p.Kind == types.I32) {
		return 1
	}
	if a.IsNumeric() && p.IsNumeric() {
		return 2 // narrowing (e.g. f64 -> i32) still convertible, just penalized harder
	}
	if p.Kind == types.String || a.Kind == types.String {
		return 2 // explicit ToString/ToNumber-style conversion
	}
	return -1
}
