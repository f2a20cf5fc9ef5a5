package stdproto

import (
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerArrayMethods gives Array.prototype the handful of real
// overloads SPEC_FULL names (push, pop, indexOf, join, slice) plus the
// GetEnumerator leg of the for-of protocol — grounded in shape, not in
// exact signature count, on the teacher's CategoryArray registrations
// (Length/Copy/IndexOf/Reverse/...).
func registerArrayMethods(r *Registry, prog *ilvm.Program) {
	addMethod(r.Array, prog, "push", true,
		[]types.Type{types.Universal}, types.Type{Kind: types.I32},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			this := args[0]
			this.Push(args[1])
			return ilvm.Int32(int32(this.Len())), nil
		})

	addMethod(r.Array, prog, "pop", true, nil, types.Universal,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return args[0].Pop(), nil
		})

	addMethod(r.Array, prog, "indexOf", true,
		[]types.Type{types.Universal}, types.Type{Kind: types.I32},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			this, target := args[0], args[1]
			for i := 0; i < this.Len(); i++ {
				if this.Elem(i).String() == target.String() {
					return ilvm.Int32(int32(i)), nil
				}
			}
			return ilvm.Int32(-1), nil
		})

	addMethod(r.Array, prog, "join", true,
		[]types.Type{{Kind: types.String}}, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			this, sep := args[0], args[1].String()
			s := ""
			for i := 0; i < this.Len(); i++ {
				if i > 0 {
					s += sep
				}
				s += this.Elem(i).String()
			}
			return ilvm.Str(s), nil
		})

	addMethod(r.Array, prog, "slice", true,
		[]types.Type{{Kind: types.I32}, {Kind: types.I32}}, types.ObjectOf(ClassArray),
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			this := args[0]
			n := this.Len()
			start, end := clampIndex(int(args[1].Float64()), n), clampIndex(int(args[2].Float64()), n)
			if end < start {
				end = start
			}
			out := ilvm.Array(0)
			for i := start; i < end; i++ {
				out.Push(this.Elem(i))
			}
			return out, nil
		})

	addMethod(r.Array, prog, "GetEnumerator", true, nil, types.ObjectOf(ClassArrayEnumerator),
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := ilvm.Obj(ClassArrayEnumerator)
			e.Set("target", args[0])
			e.Set("index", ilvm.Int32(-1))
			return e, nil
		})
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
