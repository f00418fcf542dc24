/*
Copyright © 2024 the GETM domain authors.
This file is part of mossco-getm.

mossco-getm is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

mossco-getm is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with mossco-getm.  If not, see <http://www.gnu.org/licenses/>.
*/

package getm

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
	"github.com/spf13/cast"
)

// expressionFuncs are the functions available in depth expressions.
var expressionFuncs = map[string]govaluate.ExpressionFunction{
	"exp":  unaryFunc("exp", math.Exp),
	"sqrt": unaryFunc("sqrt", math.Sqrt),
	"abs":  unaryFunc("abs", math.Abs),
	"sin":  unaryFunc("sin", math.Sin),
	"cos":  unaryFunc("cos", math.Cos),
	"tanh": unaryFunc("tanh", math.Tanh),
	"min": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("getm: got %d arguments for function 'min', but needs 2", len(args))
		}
		a, b, err := numbers2("min", args)
		if err != nil {
			return nil, err
		}
		return math.Min(a, b), nil
	},
	"max": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("getm: got %d arguments for function 'max', but needs 2", len(args))
		}
		a, b, err := numbers2("max", args)
		if err != nil {
			return nil, err
		}
		return math.Max(a, b), nil
	},
}

func unaryFunc(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("getm: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		v, err := number(name, args[0])
		if err != nil {
			return nil, err
		}
		return f(v), nil
	}
}

// number converts a function argument to a float64.
func number(name string, arg interface{}) (float64, error) {
	v, err := cast.ToFloat64E(arg)
	if err != nil {
		return 0, fmt.Errorf("getm: argument of function '%s' is not a number: %v", name, err)
	}
	return v, nil
}

func numbers2(name string, args []interface{}) (a, b float64, err error) {
	if a, err = number(name, args[0]); err != nil {
		return
	}
	b, err = number(name, args[1])
	return
}

// DepthExpression evaluates expr at every cell centre of g and returns
// the result as a depth array suitable for Bathymetry.SetDepth. The
// expression may refer to the variables x and y [m], lon and lat [°],
// and the cell indices i and j, and may call exp, sqrt, abs, sin, cos,
// tanh, min and max. For example:
//
//	10 + 20 * (1 - exp(-x / 5000))
func DepthExpression(g *Geometry, expr string) (*sparse.DenseArray, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, expressionFuncs)
	if err != nil {
		return nil, fmt.Errorf("getm: parsing depth expression: %v", err)
	}
	z := g.Points(Z)
	sources := map[string]*sparse.DenseArray{"x": z.X, "y": z.Y, "lon": z.Lon, "lat": z.Lat}
	for _, v := range e.Vars() {
		if v == "i" || v == "j" {
			continue
		}
		a, ok := sources[v]
		if !ok {
			return nil, fmt.Errorf("getm: depth expression uses unknown variable %q", v)
		}
		if a == nil {
			return nil, fmt.Errorf("getm: depth expression uses %q, which is not available on a %v grid without projection", v, g.Type())
		}
	}
	nx := g.Nx()
	out := familyArray(Z, nx, g.Ny())
	params := make(map[string]interface{}, 6)
	for n := range out.Elements {
		params["i"] = float64(n % nx)
		params["j"] = float64(n / nx)
		for name, a := range sources {
			if a != nil {
				params[name] = a.Elements[n]
			}
		}
		r, err := e.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("getm: evaluating depth expression at %v: %v", Index{n / nx, n % nx}, err)
		}
		v, ok := r.(float64)
		if !ok {
			return nil, fmt.Errorf("getm: depth expression returned %T, not a number", r)
		}
		out.Elements[n] = v
	}
	return out, nil
}
