package library

import (
	"fmt"
	"strconv"
)

// errArg is the shared argument-validation error shape every native
// export in this package raises; internal/vm's toRuntimeError wraps it
// as a §7 TypeMismatch at the call site.
func errArg(fn, want string) error {
	return fmt.Errorf("%s espera %s", fn, want)
}

// formatFloat renders a float64 constant (math.Pi, math.E, ...) in the
// decimal literal form numeric.Parse accepts, the bridge between Go's
// float constants and this runtime's arbitrary-precision Number.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
