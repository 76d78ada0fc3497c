package library

import (
	"fmt"

	"agal/internal/value"
)

// NewConsola builds the `:consola` module (§4's DOMAIN STACK: "stdlib
// only (ambient)" — console output needs nothing beyond fmt, matching
// OpConsoleOut's own fmt.Println in internal/vm/dispatch.go). `pinta`
// (print) writes the display form of each argument; `inspecciona`
// (inspect) is the distinct structural/debug formatter §9 supplements
// (original_source's console lib had both; the distillation kept only
// the bare ConsoleOut opcode).
func NewConsola() value.Value {
	m := value.NewMapObj()
	m.Set("pinta", nativeFn("pinta", -1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		for i, a := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(value.ToDisplayString(a))
		}
		fmt.Println()
		return value.Never, nil
	}))
	m.Set("inspecciona", nativeFn("inspecciona", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		if len(args) == 0 {
			return nil, errArg("inspecciona", "un valor")
		}
		return value.String(inspect(args[0])), nil
	}))
	return m
}

// inspect renders a %#v-ish structural view, distinct from
// ToDisplayString's user-facing form (e.g. strings are quoted).
func inspect(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return fmt.Sprintf("%q", string(t))
	case *value.ArrayObj:
		out := "["
		for i := 0; i < t.Len(); i++ {
			if i > 0 {
				out += ", "
			}
			item, _ := t.At(i)
			out += inspect(item)
		}
		return out + "]"
	default:
		return value.ToDisplayString(v)
	}
}
