// Package proto implements the per-host-type property layout (spec §3/§4.5
// and §4.8): Prototype (whose properties are *scope.Variable values),
// Indexer, Overload and MethodGroup.
package proto

import (
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Indexer handles numeric-keyed reads/writes (obj[i]) via a pair of
// get/set subroutines, pre-coercing the key to KeyType.
type Indexer struct {
	KeyType types.Type
	ValType types.Type
	Get     any // opaque accessor (built-in thunk or *cache.Specialization), resolved by internal/dispatch/internal/codegen
	Set     any
}

// Prototype is the unit of property layout for a host type: an ordered
// name -> property map, an optional indexer, optional OnCall/OnConstruct
// built-in entries, and a sibling chain for built-in inheritance (e.g.
// Array.prototype -> Object.prototype).
type Prototype struct {
	Name    string
	Parent  *Prototype // sibling chain established at prototype creation
	order   []string
	members map[string]*scope.Variable

	Indexer     *Indexer
	OnCall      any // built-in call target, e.g. Function.prototype's [[Call]]
	OnConstruct any
}

// New creates an empty prototype named name, optionally chained to parent
// for fallback lookup (e.g. built-in types inheriting from Object.prototype).
func New(name string, parent *Prototype) *Prototype {
	return &Prototype{Name: name, Parent: parent, members: map[string]*scope.Variable{}}
}

// GetProperty walks self then the sibling chain, per spec §4.5.
func (p *Prototype) GetProperty(name string) (*scope.Variable, bool) {
	for cur := p; cur != nil; cur = cur.Parent {
		if v, ok := cur.members[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupVariable satisfies scope.ObjectBacking so a Prototype can back a
// global or "with" object scope directly.
func (p *Prototype) LookupVariable(name string) (*scope.Variable, bool) { return p.GetProperty(name) }

// AddProperty is idempotent (spec §4.5): adding the same name twice with
// an identical type is a no-op; adding it again with a different type
// collapses the slot to the universal type. The first AddProperty for a
// name also performs the add; it returns the (possibly pre-existing)
// Variable.
func (p *Prototype) AddProperty(name string, t types.Type, attrs Attrs) *scope.Variable {
	if v, ok := p.members[name]; ok {
		v.ApplyType(t)
		return v
	}
	v := scope.NewProperty(name, t, attrs.Writable, attrs.Enumerable, attrs.Configurable)
	v.Sealed = attrs.Sealed
	p.members[name] = v
	p.order = append(p.order, name)
	return v
}

// SetIndexer installs or replaces the prototype's indexer.
func (p *Prototype) SetIndexer(idx *Indexer) { p.Indexer = idx }

// GetIndexer returns the nearest indexer on self or the sibling chain,
// walked the same way GetProperty does. kt is not compared against the
// indexer's KeyType.
func (p *Prototype) GetIndexer(kt types.Type) (*Indexer, bool) {
	for cur := p; cur != nil; cur = cur.Parent {
		if cur.Indexer != nil {
			return cur.Indexer, true
		}
	}
	return nil, false
}

// Names returns property names in insertion order (self only, not the
// sibling chain), used by for-in enumeration ordering.
func (p *Prototype) Names() []string { return append([]string(nil), p.order...) }

// Attrs bundles a property's ES5 attribute bits.
type Attrs struct {
	Writable, Enumerable, Configurable, Sealed bool
}

// DefaultAttrs is the attribute set for ordinary script-declared
// properties: writable, enumerable, configurable.
var DefaultAttrs = Attrs{Writable: true, Enumerable: true, Configurable: true}

// Overload is a single candidate signature in a MethodGroup.
type Overload struct {
	ParamTypes      []types.Type
	HasEngineParam  bool // leading parameter is the engine/this-shaped handle
	HasThisObjParam bool // second formal is conventionally named thisObj
	ParamsArray     bool // a trailing params-style array absorbs extra positional args
	Defaults        []any
	ReturnType      types.Type
	Target          any // opaque: a built-in Go func value or *cache.Specialization
}

// MethodGroup is an ordered bundle of overloads sharing a name, from which
// internal/dispatch's overload selection picks at most one (spec §4.8).
// Candidates are kept in the order they were added; ties in the scorer
// break toward the earliest-added overload (spec §9's documented
// limitation, kept rather than redesigned — see DESIGN.md).
type MethodGroup struct {
	Name      string
	Overloads []Overload
	JumpTable bool // one integer dispatches to one of several calls via emit.Switch
}

// Add appends an overload, preserving insertion-order tie-breaking.
func (g *MethodGroup) Add(o Overload) { g.Overloads = append(g.Overloads, o) }
