// Package scope implements the declarative/object scope chain and the
// four Variable kinds of spec §3/§4.4: argument, declared local, global
// field, and prototype property.
package scope

import (
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// MethodID is the method cache's monotonic key (spec §3, "Method cache
// entry"). It is defined here, not in internal/cache, because
// GlobalVariable must record which compiled methods use it (for
// recompilation, spec §4.12) without internal/scope importing
// internal/cache — cache is the higher-level package and depends on
// scope, not the reverse.
type MethodID int64

// Kind tags which of the four Variable shapes a Variable value is.
type Kind uint8

const (
	KindArgument Kind = iota
	KindDeclared
	KindGlobal
	KindProperty
)

// Variable is polymorphic over {read, write, read-type, mark-constant} via
// the methods below; Kind and the type-specific fields distinguish the
// four concrete shapes spec §3 describes.
type Variable struct {
	Kind Kind
	Name string

	typ     types.Type
	typeSet bool
	const_  types.ConstState

	// Argument fields.
	ArgIndex   int
	Properties map[string]types.Type // property types this function is observed to assign via its "this"/arg

	// Declared-local fields.
	Slot        emit.Local
	Initialized bool // guards hoisted function-declaration init from re-running

	// Global fields.
	Field emit.Field
	Users map[MethodID]bool // compiled methods recorded as readers/writers, for collapse-triggered recompilation

	// Property fields (internal/proto.Prototype stores one of these per
	// property slot).
	Getter, Setter   any // opaque accessor reference (a *cache.Specialization or built-in thunk), resolved by internal/dispatch
	IndexerKeyType   types.Type
	Writable         bool
	Enumerable       bool
	Configurable     bool
	Sealed           bool
}

// NewArgument creates an argument-kind Variable at position idx.
func NewArgument(name string, idx int, t types.Type) *Variable {
	return &Variable{Kind: KindArgument, Name: name, ArgIndex: idx, typ: t, typeSet: true, Properties: map[string]types.Type{}}
}

// NewDeclared creates a local with no type yet (types.Type{} is the
// "unset" sentinel per spec §3: "a type that is null until its first
// write").
func NewDeclared(name string) *Variable {
	return &Variable{Kind: KindDeclared, Name: name}
}

// NewGlobal creates a global field-backed variable.
func NewGlobal(name string, f emit.Field) *Variable {
	return &Variable{Kind: KindGlobal, Name: name, Field: f, Users: map[MethodID]bool{}}
}

// NewProperty creates a prototype-slot variable.
func NewProperty(name string, t types.Type, writable, enumerable, configurable bool) *Variable {
	return &Variable{Kind: KindProperty, Name: name, typ: t, typeSet: true, Writable: writable, Enumerable: enumerable, Configurable: configurable}
}

// Type returns the variable's current static type. For a declared local
// whose type is still unset this is the zero types.Type (Kind ==
// types.Undefined with no prior write observed); callers should check
// HasType.
func (v *Variable) Type() types.Type { return v.typ }

// HasType reports whether the variable has received its first ApplyType
// yet (spec §3: "null until its first write").
func (v *Variable) HasType() bool { return v.typeSet }

// ApplyType implements spec §4.7's ApplyType(ctx, type): the first applied
// type on a variable becomes its type; a later disagreeing application
// collapses it to Universal and, for a declared variable, invalidates any
// already allocated IL slot. It returns true if this application caused a
// collapse (the caller uses this to decide whether to record an
// invalidation / re-resolution obligation).
func (v *Variable) ApplyType(t types.Type) (collapsed bool) {
	if v.typeSet && v.typ.Kind == types.Any {
		return false // already collapsed; monotone, never un-collapses
	}
	if !v.typeSet {
		v.typ = t
		v.typeSet = true
		return false
	}
	if v.typ.Equal(t) {
		return false
	}
	v.typ = types.Universal
	if v.Kind == KindDeclared {
		v.Slot = emit.Local{} // drop the stale slot; Scope.Reset also clears these in bulk before each specialization
	}
	return true
}

// TrySetConstant applies spec §4.7's constant-tracking rule.
func (v *Variable) TrySetConstant(value any) { v.const_ = v.const_.TrySet(value) }

// ConstantValue returns the variable's tracked constant value, if any.
func (v *Variable) ConstantValue() (any, bool) { return v.const_.Value() }

// IsConstant reports whether the variable's value has stabilized to one
// concrete constant.
func (v *Variable) IsConstant() bool { return v.const_.IsConstant() }

// RecordUser marks id as having read or written this global, so that a
// future collapse schedules it for recompilation (spec §4.12).
func (v *Variable) RecordUser(id MethodID) {
	if v.Kind == KindGlobal {
		v.Users[id] = true
	}
}

// Object scope / declarative scope -----------------------------------------

// Scope is a linked lexical scope. Declarative scopes (function, catch,
// eval) own Names directly; object scopes (global, with) delegate lookups
// to Object instead (spec §4.4).
type Scope struct {
	Parent *Scope
	Kind   ScopeKind

	Names map[string]*Variable
	Order []string // insertion order, needed for hoisted function-declaration initialization order

	// ArgCount is the total number of actual positional arguments this
	// function scope was specialized against, "this" excluded — spec
	// §4.8's filler slots for arguments beyond the declared parameter
	// list only exist reachable through this count (internal/codegen's
	// "arguments" materialization loop), never as named Variables.
	ArgCount int

	// Object-scope fields.
	Object             ObjectBacking
	CanDeclareVars     bool
	ProvidesImplicitThis bool
}

// ScopeKind distinguishes the declarative/object scope variants named in
// spec §3/§4.4.
type ScopeKind uint8

const (
	KindFunction ScopeKind = iota
	KindCatch
	KindEval
	KindGlobalObject
	KindWith
)

// ObjectBacking is the minimal surface internal/scope needs from
// internal/proto.Prototype (GetProperty by name) without importing it —
// proto.Prototype satisfies this interface directly.
type ObjectBacking interface {
	LookupVariable(name string) (*Variable, bool)
}

// NewDeclarative creates a function/catch/eval scope.
func NewDeclarative(parent *Scope, kind ScopeKind) *Scope {
	return &Scope{Parent: parent, Kind: kind, Names: map[string]*Variable{}, CanDeclareVars: true}
}

// NewFunctionScope creates a function scope whose first entry is always
// "this" at argument index 0 (spec §4.4). The caller adds "arguments"
// afterward via DeclareArgumentsBinding once ArgCount is known.
func NewFunctionScope(parent *Scope, thisType types.Type) *Scope {
	s := NewDeclarative(parent, KindFunction)
	thisVar := NewArgument("this", 0, thisType)
	s.Names["this"] = thisVar
	s.Order = append(s.Order, "this")
	return s
}

// DeclareArgumentsBinding adds the implicit "arguments" binding spec §4.4
// describes ("conditionally added if the function's optimization hints
// flag it") unless a parameter or earlier declaration already claimed the
// name. The binding always exists in the scope chain so an ordinary name
// lookup finds it instead of falling through to implicit global creation;
// whether internal/codegen actually materializes an array-like object for
// it is what the "conditional" part of spec §4.4 controls, gated on
// ctx.MethodHints.ArgumentsReferenced once resolution has observed whether
// the body ever names it.
func (s *Scope) DeclareArgumentsBinding() {
	if _, exists := s.Names["arguments"]; exists {
		return
	}
	v := NewDeclared("arguments")
	v.Initialized = true
	v.ApplyType(types.Universal)
	s.Names["arguments"] = v
	s.Order = append(s.Order, "arguments")
}

// NewCatchScope creates a single-entry declarative scope binding name to
// the caught exception value.
func NewCatchScope(parent *Scope, name string) *Scope {
	s := NewDeclarative(parent, KindCatch)
	v := NewDeclared(name)
	v.Initialized = true
	s.Names[name] = v
	s.Order = append(s.Order, name)
	return s
}

// NewObjectScope creates a global or "with" object scope, backed by
// backing (typically a *proto.Prototype). CanDeclareVars is false so that
// var-hoisting inside a "with" forwards to the enclosing function scope
// (spec §4.4); the global object scope sets it true since top-level `var`
// does declare directly on the global object.
func NewObjectScope(parent *Scope, kind ScopeKind, backing ObjectBacking, canDeclareVars, implicitThis bool) *Scope {
	return &Scope{Parent: parent, Kind: kind, Object: backing, CanDeclareVars: canDeclareVars, ProvidesImplicitThis: implicitThis}
}

// Lookup walks outward from s for name, returning the nearest enclosing
// binding.
func (s *Scope) Lookup(name string) (*Variable, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Object != nil {
			if v, ok := cur.Object.LookupVariable(name); ok {
				return v, cur, true
			}
			continue
		}
		if v, ok := cur.Names[name]; ok {
			return v, cur, true
		}
	}
	return nil, nil, false
}

// DeclareVariable implements spec §4.4's DeclareVariable(name, type,
// initializer?): it either creates a new declared variable in the nearest
// scope whose CanDeclareVars is true, or refines the type of an existing
// one in that same scope. A declaration attempted in a scope with
// CanDeclareVars == false is transparently forwarded to the parent.
func (s *Scope) DeclareVariable(name string, t types.Type) *Variable {
	target := s
	for !target.CanDeclareVars {
		target = target.Parent
	}
	if target.Object != nil {
		if v, ok := target.Object.LookupVariable(name); ok {
			if t != (types.Type{}) {
				v.ApplyType(t)
			}
			return v
		}
		// Object scopes materialize a new property through their backing
		// store; internal/proto.Prototype.AddProperty is invoked by the
		// caller (internal/ctx) rather than here, to keep this package free
		// of a dependency on internal/proto.
		return nil
	}
	if v, ok := target.Names[name]; ok {
		if t != (types.Type{}) {
			v.ApplyType(t)
		}
		return v
	}
	v := NewDeclared(name)
	if t != (types.Type{}) {
		v.typ = t
	}
	target.Names[name] = v
	target.Order = append(target.Order, name)
	return v
}

// Reset clears cached IL local slots before each specialization compile,
// per spec §4.10: "Scope.Reset() clears cached slots before each
// specialization."
func (s *Scope) Reset() {
	for _, name := range s.Order {
		if v := s.Names[name]; v != nil && v.Kind == KindDeclared {
			v.Slot = emit.Local{}
			v.Initialized = false
		}
	}
}
