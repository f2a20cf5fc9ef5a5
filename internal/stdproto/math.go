package stdproto

import (
	"math"
	"math/rand"

	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// registerMathMethods gives the Math namespace object floor/ceil/round/
// abs/max/min/sqrt/pow/random — grounded on the teacher's CategoryMath
// registrations (math_basic.go's Floor/Ceil/Round/Abs/Min/Max/Sqrt,
// math_convert.go's Power). None of these take a meaningful receiver
// (Math itself carries no per-call state), so every overload here is
// registered with hasThis=false, unlike Array/String/Object's instance
// methods.
func registerMathMethods(r *Registry, prog *ilvm.Program) {
	f64 := types.Type{Kind: types.F64}

	unary := func(name string, fn func(float64) float64) {
		addMethod(r.Math, prog, name, false, []types.Type{f64}, f64,
			func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
				return ilvm.Float64(fn(args[0].Float64())), nil
			})
	}
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("round", math.Round)
	unary("abs", math.Abs)
	unary("sqrt", math.Sqrt)

	addMethod(r.Math, prog, "max", false, []types.Type{f64, f64}, f64,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Float64(math.Max(args[0].Float64(), args[1].Float64())), nil
		})

	addMethod(r.Math, prog, "min", false, []types.Type{f64, f64}, f64,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Float64(math.Min(args[0].Float64(), args[1].Float64())), nil
		})

	addMethod(r.Math, prog, "pow", false, []types.Type{f64, f64}, f64,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Float64(math.Pow(args[0].Float64(), args[1].Float64())), nil
		})

	addMethod(r.Math, prog, "random", false, nil, f64,
		func(vm *ilvm.VM, args []ilvm.Value) (ilvm.Value, error) {
			return ilvm.Float64(rand.Float64()), nil
		})
}
