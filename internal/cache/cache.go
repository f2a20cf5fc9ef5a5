// Package cache implements C10: the process-wide method cache (spec
// §4.12). It owns one FunctionMethodGenerator per source function and,
// within each, a specialization table keyed by argument-type vector —
// the "exactly one generator per source function; exactly one compiled
// specialization per (generator, argument-type-vector)" invariant.
package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/codegen"
	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Specialization is one compiled entry: the argument-type vector (this at
// position 0) that produced it, its accumulated return type, the emitted
// method handle, and — when Cache.Disassemble is set — a disassembly
// listing for "nitrassic compile --disassemble".
type Specialization struct {
	ArgTypes   []types.Type
	ReturnType types.Type
	Handle     emit.Method
	Disasm     string
}

// FunctionMethodGenerator owns one source function's AST plus every
// specialization compiled for it so far.
type FunctionMethodGenerator struct {
	ID      scope.MethodID
	Literal *ast.FunctionLiteral
	Name    string
	Closure *scope.Scope // scope chain active where the literal was written

	mu    sync.Mutex
	byKey map[string]*Specialization
	all   []*Specialization
}

func newGenerator(id scope.MethodID, g *ctx.Generator) *FunctionMethodGenerator {
	return &FunctionMethodGenerator{
		ID: id, Literal: g.Literal, Name: g.Name, Closure: g.Closure,
		byKey: map[string]*Specialization{},
	}
}

// Specializations returns every specialization compiled so far, in
// compilation order.
func (g *FunctionMethodGenerator) Specializations() []*Specialization {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*Specialization(nil), g.all...)
}

func argKey(argTypes []types.Type) string {
	var sb strings.Builder
	for i, t := range argTypes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// Cache is the process-wide registry: a coarse-locked id-keyed dictionary
// of generators, a reverse index from emitted handle back to its
// specialization, and the policy knobs GetCompiled needs to actually
// drive compilation (an emitter factory and the resolver every callee's
// own ResolveVariables pass needs).
type Cache struct {
	NewEmitter  func() emit.Emitter // invoked once per specialization compiled
	Resolver    ctx.CallResolver
	Disassemble bool

	// Warn, if set, is called when GetCompiled finds a constructor
	// specialization (isCtor) whose body returned an explicit object
	// instead of falling off the end into an implicit `this` (spec §9
	// Open Question 1). The constructed reference is never changed
	// either way; Warn exists purely for an embedder's CollapseWarning
	// diagnostic (pkg/engine.WithCollapseWarning).
	Warn func(msg string)

	mu         sync.Mutex
	nextID     scope.MethodID
	generators map[scope.MethodID]*FunctionMethodGenerator
	reverse    map[emit.Method]*Specialization

	allocCount int
	PruneEvery int
}

// New creates an empty cache.
func New(newEmitter func() emit.Emitter, resolver ctx.CallResolver) *Cache {
	return &Cache{
		NewEmitter: newEmitter,
		Resolver:   resolver,
		generators: map[scope.MethodID]*FunctionMethodGenerator{},
		reverse:    map[emit.Method]*Specialization{},
		PruneEvery: 256,
	}
}

// GetNextID allocates a monotonically increasing id, periodically
// sweeping generators explicitly Forgotten (spec's "periodically prunes
// dead entries"). This module keeps every live generator resident —
// "garbage-collection of emitted code across type collapses" is an
// explicit Non-goal — so nothing is pruned unless Forget named it first.
func (c *Cache) GetNextID() scope.MethodID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.allocCount++
	if c.allocCount%c.PruneEvery == 0 {
		c.pruneLocked()
	}
	return c.nextID
}

func (c *Cache) pruneLocked() {
	for id, g := range c.generators {
		if g.Literal == nil {
			delete(c.generators, id)
		}
	}
}

// SaveAs stores a freshly hoisted function's generator metadata under id.
func (c *Cache) SaveAs(id scope.MethodID, gen *ctx.Generator) *FunctionMethodGenerator {
	c.mu.Lock()
	defer c.mu.Unlock()
	fg := newGenerator(id, gen)
	c.generators[id] = fg
	return fg
}

// LoadGenerator is SaveAs's inverse.
func (c *Cache) LoadGenerator(id scope.MethodID) (*FunctionMethodGenerator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.generators[id]
	return g, ok
}

// Forget drops a generator's AST and compiled specializations, so a
// later GetNextID sweep can reclaim its id. Never called automatically.
func (c *Cache) Forget(id scope.MethodID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.generators[id]; ok {
		g.Literal = nil
		g.all = nil
		g.byKey = map[string]*Specialization{}
	}
}

// Shutdown forgets every live generator, releasing every AST and compiled
// specialization the cache holds — an embedder's engine.Close() calls
// this once, rather than relying on a GC pass this module has no weak
// references to trigger (spec §9's documented fallback).
func (c *Cache) Shutdown() {
	c.mu.Lock()
	ids := make([]scope.MethodID, 0, len(c.generators))
	for id := range c.generators {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	for _, id := range ids {
		c.Forget(id)
	}
	c.mu.Lock()
	c.reverse = map[emit.Method]*Specialization{}
	c.mu.Unlock()
}

// ReverseLookup maps an emitted method handle back to the specialization
// that produced it, for identifying a stack frame from its method handle.
func (c *Cache) ReverseLookup(m emit.Method) (*Specialization, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.reverse[m]
	return s, ok
}

// GetCompiled implements spec §4.8's user-function specialization:
// returns fg's existing specialization for argTypes (this at position 0)
// or compiles a new one. A freshly created entry is registered in fg's
// table before ResolveFunctionBody/GenerateFunction runs, so a function
// that calls itself — directly, or through a chain of other
// specializations — resolves back to this same entry rather than
// recursing forever through the dispatch resolver. The tradeoff: a
// recursive caller observes this entry's ReturnType/Handle as still
// zero-valued until the outermost GetCompiled call finishes (see
// DESIGN.md — spec documents the existing-entry behavior but not how a
// recursive caller should read a return type not yet known).
func (c *Cache) GetCompiled(fg *FunctionMethodGenerator, argTypes []types.Type, isCtor bool) (*Specialization, error) {
	key := argKey(argTypes)

	fg.mu.Lock()
	if s, ok := fg.byKey[key]; ok {
		fg.mu.Unlock()
		return s, nil
	}
	s := &Specialization{ArgTypes: append([]types.Type(nil), argTypes...)}
	fg.byKey[key] = s
	fg.all = append(fg.all, s)
	fg.mu.Unlock()

	fnScope := buildArgumentScope(fg, argTypes)
	rc := ctx.ResolveFunctionBody(fg.Literal, fnScope, c.Resolver)
	if len(rc.Errors) > 0 {
		return nil, rc.Errors[0]
	}
	retType, _ := rc.ReturnType()
	s.ReturnType = retType
	if isCtor && retType.Kind == types.Object && c.Warn != nil {
		c.Warn(fmt.Sprintf("%s: constructor returned an explicit object; the `new` reference is unchanged", fg.Name))
	}

	e := c.NewEmitter()
	handle, err := codegen.GenerateFunction(rc, e, fg.Literal)
	if err != nil {
		return nil, err
	}
	s.Handle = handle
	if c.Disassemble {
		if d, ok := e.(interface{ Disassembly() string }); ok {
			s.Disasm = d.Disassembly()
		}
	}

	c.mu.Lock()
	c.reverse[handle] = s
	c.mu.Unlock()

	return s, nil
}

// buildArgumentScope rebuilds the ArgVariable vector spec §4.8 describes:
// fg's declared parameters reused for their original positions, with
// missing formals (fewer actual arguments than parameters) set to the
// undefined singleton type. Extra positional arguments beyond fg's own
// parameter list have no named formal to bind to — they get no Variable of
// their own, only a slot count (ArgCount) internal/codegen can LoadArgument
// over when materializing "arguments" (spec §4.8's "filler slots" are
// reachable that way, through the arguments object, not as named locals).
func buildArgumentScope(fg *FunctionMethodGenerator, argTypes []types.Type) *scope.Scope {
	thisType := types.Universal
	if len(argTypes) > 0 {
		thisType = argTypes[0]
	}
	fnScope := scope.NewFunctionScope(fg.Closure, thisType)
	for i, param := range fg.Literal.Params {
		t := types.UndefinedT
		if i+1 < len(argTypes) {
			t = argTypes[i+1]
		}
		v := scope.NewArgument(param.Name, i+1, t)
		fnScope.Names[param.Name] = v
		fnScope.Order = append(fnScope.Order, param.Name)
	}
	if fnScope.ArgCount = len(argTypes) - 1; fnScope.ArgCount < 0 {
		fnScope.ArgCount = 0
	}
	fnScope.DeclareArgumentsBinding()
	return fnScope
}
