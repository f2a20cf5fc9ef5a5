package stdproto

import (
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerObjectMethods gives Object.prototype — the root every other
// built-in and every synthesized host class chains to — hasOwnProperty
// and the GetEnumerator leg of the for-in protocol (spec §4.9): for-in
// walks an object's own field names, letting ObjectEnumerator's
// MoveNext/GetCurrent (enumerator.go) do the stepping.
func registerObjectMethods(r *Registry, prog *ilvm.Program) {
	addMethod(r.Object, prog, "hasOwnProperty", true,
		[]types.Type{{Kind: types.String}}, types.Type{Kind: types.Boolean},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			this := args[0]
			name := args[1].String()
			for _, n := range this.Names() {
				if n == name {
					return ilvm.Bool(true), nil
				}
			}
			return ilvm.Bool(false), nil
		})

	addMethod(r.Object, prog, "GetEnumerator", true, nil, types.ObjectOf(ClassObjectEnumerator),
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			e := ilvm.Obj(ClassObjectEnumerator)
			e.Set("target", args[0])
			e.Set("index", ilvm.Int32(-1))
			return e, nil
		})
}
