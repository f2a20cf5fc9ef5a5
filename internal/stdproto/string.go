package stdproto

import (
	"strings"

	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerStringMethods gives String.prototype charAt/indexOf/slice/
// toUpperCase/toLowerCase — grounded on the teacher's CategoryString
// registrations (strings_basic.go's UpperCase/LowerCase/Pos/Copy). A
// string value has no field map of its own at the ilvm runtime level
// (it's a primitive, not an object), so unlike Array/Object there is no
// GetEnumerator entry here: iterating a string's characters isn't part
// of the in-scope for-of surface this module exercises.
func registerStringMethods(r *Registry, prog *ilvm.Program) {
	addMethod(r.String, prog, "charAt", true,
		[]types.Type{{Kind: types.I32}}, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			s := []rune(args[0].String())
			i := int(args[1].Float64())
			if i < 0 || i >= len(s) {
				return ilvm.Str(""), nil
			}
			return ilvm.Str(string(s[i])), nil
		})

	addMethod(r.String, prog, "indexOf", true,
		[]types.Type{{Kind: types.String}}, types.Type{Kind: types.I32},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Int32(int32(strings.Index(args[0].String(), args[1].String()))), nil
		})

	addMethod(r.String, prog, "slice", true,
		[]types.Type{{Kind: types.I32}, {Kind: types.I32}}, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			s := []rune(args[0].String())
			n := len(s)
			start, end := clampIndex(int(args[1].Float64()), n), clampIndex(int(args[2].Float64()), n)
			if end < start {
				end = start
			}
			return ilvm.Str(string(s[start:end])), nil
		})

	addMethod(r.String, prog, "toUpperCase", true, nil, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Str(strings.ToUpper(args[0].String())), nil
		})

	addMethod(r.String, prog, "toLowerCase", true, nil, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Str(strings.ToLower(args[0].String())), nil
		})
}
