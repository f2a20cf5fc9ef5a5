package stdproto

import (
	"strconv"

	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerNumberMethods gives Number.prototype toFixed/toString,
// grounded on the teacher's CategoryConversion registrations
// (FloatToStr/IntToStr) — collapsed to the two script-visible overloads
// a numeric value's own method call site can reach.
func registerNumberMethods(r *Registry, prog *ilvm.Program) {
	addMethod(r.Number, prog, "toFixed", true,
		[]types.Type{{Kind: types.I32}}, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			prec := int(args[1].Float64())
			return ilvm.Str(strconv.FormatFloat(args[0].Float64(), 'f', prec, 64)), nil
		})

	addMethod(r.Number, prog, "toString", true, nil, types.Type{Kind: types.String},
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Str(args[0].String()), nil
		})
}
