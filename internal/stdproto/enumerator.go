package stdproto

import (
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerEnumeratorMethods backs the MoveNext/GetCurrent legs of the
// for-in/for-of enumerate/MoveNext/GetCurrent protocol (spec §4.9) that
// Array.prototype.GetEnumerator and Object.prototype.GetEnumerator hand
// out enumerator instances for — internal/codegen's generateForEach
// calls all three as ordinary resolved method calls, so from dispatch's
// point of view an enumerator is just another host-class instance with
// its own prototype and methods.
func registerEnumeratorMethods(r *Registry, prog *ilvm.Program) {
	boolT := types.Type{Kind: types.Boolean}

	addMethod(r.arrayEnum, prog, "MoveNext", true, nil, boolT,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := args[0]
			target := e.Get("target")
			next := int(e.Get("index").Float64()) + 1
			e.Set("index", ilvm.Int32(int32(next)))
			return ilvm.Bool(next < target.Len()), nil
		})
	addMethod(r.arrayEnum, prog, "GetCurrent", true, nil, types.Universal,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := args[0]
			return e.Get("target").Elem(int(e.Get("index").Float64())), nil
		})

	addMethod(r.objectEnum, prog, "MoveNext", true, nil, boolT,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := args[0]
			next := int(e.Get("index").Float64()) + 1
			e.Set("index", ilvm.Int32(int32(next)))
			return ilvm.Bool(next < len(e.Get("target").Names())), nil
		})
	addMethod(r.objectEnum, prog, "GetCurrent", true, nil, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := args[0]
			names := e.Get("target").Names()
			i := int(e.Get("index").Float64())
			if i < 0 || i >= len(names) {
				return ilvm.Str(""), nil
			}
			return ilvm.Str(names[i]), nil
		})
}
