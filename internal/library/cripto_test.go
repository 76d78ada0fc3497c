package library

import (
	"testing"

	"agal/internal/numeric"
	"agal/internal/value"
)

func criptoFn(t *testing.T, name string) *value.NativeFunction {
	t.Helper()
	m := NewCripto().(*value.MapObj)
	v, ok := m.Get(name)
	if !ok {
		t.Fatalf("%q missing from :cripto", name)
	}
	return v.(*value.NativeFunction)
}

func TestCriptoHashSHA256KnownVector(t *testing.T) {
	got := callNative(t, criptoFn(t, "hash_sha256"), value.String(""))
	want := value.String("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if got != value.Value(want) {
		t.Fatalf("hash_sha256(\"\") = %v, want %s", got, want)
	}
}

func TestCriptoAleatorioLength(t *testing.T) {
	got := callNative(t, criptoFn(t, "aleatorio"), numeric.FromInt64(16)).(value.String)
	if len(got) != 32 {
		t.Fatalf("aleatorio(16) produced %d hex chars, want 32", len(got))
	}
}

func TestCriptoEnteroAleatorioBounded(t *testing.T) {
	fn := criptoFn(t, "entero_aleatorio")
	for i := 0; i < 20; i++ {
		got := callNative(t, fn, numeric.FromInt64(10))
		n, ok := got.(numeric.Number)
		if !ok {
			t.Fatalf("entero_aleatorio did not return a numeric.Number, got %T", got)
		}
		v, ok := n.AsUsize()
		if !ok || v < 0 || v >= 10 {
			t.Fatalf("entero_aleatorio(10) = %v, out of [0,10)", got)
		}
	}
}
