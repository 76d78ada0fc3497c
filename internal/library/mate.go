// Package library implements the 8 built-in modules SPEC_FULL.md's
// DOMAIN STACK table names, each registered with an internal/module.Loader
// under its ":nombre" path (§4.8) and exercising the third-party library
// this module assigns it. Grounded on sentra/internal/vm/*_bindings.go
// files (RegisterXBindings(vm) installing NativeFunctions backed by a
// manager struct), adapted from sentra's VM-global registration
// style to this runtime's per-module value.MapObj export object.
package library

import (
	"math"

	"agal/internal/numeric"
	"agal/internal/value"
)

func nativeFn(name string, arity int, fn value.NativeFunc) *value.NativeFunction {
	return &value.NativeFunction{Name: name, Arity: arity, Func: fn}
}

func numArg(args []value.Value, i int) (numeric.Number, bool) {
	if i >= len(args) {
		return numeric.Number{}, false
	}
	n, ok := args[i].(numeric.Number)
	return n, ok
}

// NewMate builds the `:mate` module (§4's DOMAIN STACK: "stdlib `math`
// (Number itself is hand-rolled, see DESIGN.md)"). Float64 round-trips
// are used only at this native boundary — internal/vm's own arithmetic
// opcodes stay entirely within numeric.Number's arbitrary-precision
// decimal arithmetic.
func NewMate() value.Value {
	m := value.NewMapObj()
	m.Set("techo", nativeFn("techo", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("techo", "numero")
		}
		return n.Ceil(), nil
	}))
	m.Set("suelo", nativeFn("suelo", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("suelo", "numero")
		}
		return n.Floor(), nil
	}))
	m.Set("redondeo", nativeFn("redondeo", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("redondeo", "numero")
		}
		return n.Round(), nil
	}))
	m.Set("max", nativeFn("max", 2, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		a, aok := numArg(args, 0)
		b, bok := numArg(args, 1)
		if !aok || !bok {
			return nil, errArg("max", "dos numeros")
		}
		cmp, ok := a.Cmp(b)
		if ok && cmp < 0 {
			return b, nil
		}
		return a, nil
	}))
	m.Set("min", nativeFn("min", 2, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		a, aok := numArg(args, 0)
		b, bok := numArg(args, 1)
		if !aok || !bok {
			return nil, errArg("min", "dos numeros")
		}
		cmp, ok := a.Cmp(b)
		if ok && cmp > 0 {
			return b, nil
		}
		return a, nil
	}))
	m.Set("esInfinito", nativeFn("esInfinito", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		n, ok := numArg(args, 0)
		if !ok {
			return nil, errArg("esInfinito", "numero")
		}
		return value.FromBool(n.IsInf()), nil
	}))
	m.Set("PI", numeric.Parse(formatFloat(math.Pi)))
	m.Set("E", numeric.Parse(formatFloat(math.E)))
	m.Set("TAU", numeric.Parse(formatFloat(math.Pi*2)))
	return m
}
