package library

import (
	"testing"

	"agal/internal/numeric"
	"agal/internal/value"
)

func callNative(t *testing.T, fn *value.NativeFunction, args ...value.Value) value.Value {
	t.Helper()
	v, err := fn.Func(value.Null, args, nil, nil)
	if err != nil {
		t.Fatalf("%s: %v", fn.Name, err)
	}
	return v
}

func mateFn(t *testing.T, name string) *value.NativeFunction {
	t.Helper()
	m, ok := NewMate().(*value.MapObj)
	if !ok {
		t.Fatalf("NewMate() did not return a *value.MapObj")
	}
	v, ok := m.Get(name)
	if !ok {
		t.Fatalf("%q missing from :mate", name)
	}
	fn, ok := v.(*value.NativeFunction)
	if !ok {
		t.Fatalf("%q is not a native function, got %T", name, v)
	}
	return fn
}

func TestMateTechoSuelo(t *testing.T) {
	n := numeric.Parse("2.3")
	got := callNative(t, mateFn(t, "techo"), n).(numeric.Number)
	if want := numeric.FromInt64(3); !got.Equals(want) {
		t.Fatalf("techo(2.3) = %s, want %s", got, want)
	}
	got = callNative(t, mateFn(t, "suelo"), n).(numeric.Number)
	if want := numeric.FromInt64(2); !got.Equals(want) {
		t.Fatalf("suelo(2.3) = %s, want %s", got, want)
	}
}

func TestMateMaxMin(t *testing.T) {
	a, b := numeric.FromInt64(3), numeric.FromInt64(7)
	if got := callNative(t, mateFn(t, "max"), a, b).(numeric.Number); !got.Equals(b) {
		t.Fatalf("max(3,7) = %s, want 7", got)
	}
	if got := callNative(t, mateFn(t, "min"), a, b).(numeric.Number); !got.Equals(a) {
		t.Fatalf("min(3,7) = %s, want 3", got)
	}
}

func TestMateEsInfinito(t *testing.T) {
	got := callNative(t, mateFn(t, "esInfinito"), numeric.PosInf())
	if got != value.FromBool(true) {
		t.Fatalf("esInfinito(Inf) = %v, want true", got)
	}
	got = callNative(t, mateFn(t, "esInfinito"), numeric.FromInt64(1))
	if got != value.FromBool(false) {
		t.Fatalf("esInfinito(1) = %v, want false", got)
	}
}

func TestMateConstants(t *testing.T) {
	m := NewMate().(*value.MapObj)
	pi, ok := m.Get("PI")
	if !ok {
		t.Fatalf("PI missing from :mate")
	}
	n, ok := pi.(numeric.Number)
	if !ok {
		t.Fatalf("PI is not a numeric.Number, got %T", pi)
	}
	if n.String()[:4] != "3.14" {
		t.Fatalf("PI = %s, want to start with 3.14", n)
	}
}
