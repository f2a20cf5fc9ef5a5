// Package stdproto populates the handful of built-in prototypes
// (Object, Array, String, Number, Math) internal/dispatch needs a real
// method group to select against, backed by native functions registered
// against an internal/ilvm.Program. It implements internal/dispatch's
// Prototypes interface, playing the role the teacher's
// internal/interp/builtins registry plays for its own evaluator: a
// catalog of Go-native implementations behind script-visible names,
// just resolved statically (one emit.Method per overload) instead of
// looked up by name at call time.
package stdproto

import (
	"sync"

	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Host class names this package synthesizes prototypes for, beyond the
// ordinary primitive kinds. ArrayEnumerator/ObjectEnumerator back the
// for-in/for-of GetEnumerator/MoveNext/GetCurrent protocol
// internal/codegen's generateForEach drives (see enumerator.go).
const (
	ClassArray           = "Array"
	ClassMath            = "Math"
	ClassArrayEnumerator = "ArrayEnumerator"
	ClassObjectEnumerator = "ObjectEnumerator"
)

// Registry is the concrete dispatch.Prototypes implementation this
// module ships. One Registry is created per running engine, sharing the
// ilvm.Program its native methods are registered against.
type Registry struct {
	Object *proto.Prototype
	Array  *proto.Prototype
	String *proto.Prototype
	Number *proto.Prototype
	Math   *proto.Prototype

	arrayEnum  *proto.Prototype
	objectEnum *proto.Prototype

	mu        sync.Mutex
	instances map[*ctx.Generator]*proto.Prototype
}

// New builds every built-in prototype, registering their methods against
// prog, and returns the Registry ready for internal/dispatch.New.
func New(prog *ilvm.Program) *Registry {
	r := &Registry{instances: map[*ctx.Generator]*proto.Prototype{}}
	r.Object = proto.New("Object", nil)
	r.Array = proto.New("Array", r.Object)
	r.String = proto.New("String", r.Object)
	r.Number = proto.New("Number", r.Object)
	r.Math = proto.New("Math", nil)
	r.arrayEnum = proto.New(ClassArrayEnumerator, nil)
	r.objectEnum = proto.New(ClassObjectEnumerator, nil)

	registerObjectMethods(r, prog)
	registerArrayMethods(r, prog)
	registerStringMethods(r, prog)
	registerNumberMethods(r, prog)
	registerMathMethods(r, prog)
	registerEnumeratorMethods(r, prog)
	return r
}

// PrototypeFor implements dispatch.Prototypes: it maps a static type to
// the prototype internal/dispatch walks for a.b(...) resolution.
// Object-kind types dispatch on PrototypeName; every other kind maps to
// exactly one built-in prototype, since this module never specializes
// per-instance layouts for primitives.
func (r *Registry) PrototypeFor(t types.Type) (*proto.Prototype, bool) {
	switch t.Kind {
	case types.String:
		return r.String, true
	case types.I32, types.U32, types.F64:
		return r.Number, true
	case types.Object:
		switch t.PrototypeName {
		case "", "Object": // a plain object literal's static type
			return r.Object, true
		case ClassArray:
			return r.Array, true
		case ClassMath:
			return r.Math, true
		case ClassArrayEnumerator:
			return r.arrayEnum, true
		case ClassObjectEnumerator:
			return r.objectEnum, true
		default:
			r.mu.Lock()
			defer r.mu.Unlock()
			for _, p := range r.instances {
				if p.Name == t.PrototypeName {
					return p, true
				}
			}
			return nil, false
		}
	default:
		return nil, false
	}
}

// InstancePrototype returns (creating on first sight) the synthesized
// host class prototype backing `new gen(...)`'s constructed instances,
// chained to Object.prototype for fallback lookup the same way Array.
// prototype and String.prototype are.
func (r *Registry) InstancePrototype(gen *ctx.Generator) *proto.Prototype {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.instances[gen]; ok {
		return p
	}
	name := gen.Name
	if name == "" {
		name = "AnonymousClass"
	}
	p := proto.New(name, r.Object)
	r.instances[gen] = p
	return p
}

// addMethod registers fn as built-in and adds it as the sole overload of
// a fresh method group under name on p — the common case for the
// non-overloaded built-ins this package defines. hasThis is true for
// every instance method (Array.prototype.push and friends): codegen
// pushes the receiver before the fixed arguments, so fn's own args
// slice sees it at index 0. Math's namespace functions have none.
func addMethod(p *proto.Prototype, prog *ilvm.Program, name string, hasThis bool, paramTypes []types.Type, returnType types.Type, fn func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error)) {
	arity := len(paramTypes)
	full := paramTypes
	if hasThis {
		arity++
		full = append([]types.Type{types.Universal}, paramTypes...)
	}
	handle := prog.Register(p.Name+"."+name, arity, fn)
	group := &proto.MethodGroup{Name: name}
	group.Add(proto.Overload{
		ParamTypes:      full,
		HasThisObjParam: hasThis,
		ReturnType:      returnType,
		Target:          handle,
	})
	v := p.AddProperty(name, types.Universal, proto.Attrs{})
	v.TrySetConstant(group)
}
