package library

import (
	"testing"

	"agal/internal/numeric"
	"agal/internal/value"
)

func TestInspectQuotesStrings(t *testing.T) {
	if got, want := inspect(value.String("hola")), `"hola"`; got != want {
		t.Fatalf("inspect(string) = %s, want %s", got, want)
	}
}

func TestInspectArrayIsRecursive(t *testing.T) {
	arr := value.NewArrayObj(value.String("a"), numeric.FromInt64(1))
	if got, want := inspect(arr), `["a", 1]`; got != want {
		t.Fatalf("inspect(array) = %s, want %s", got, want)
	}
}

func TestConsolaInspeccionaNoArgsErrors(t *testing.T) {
	m := NewConsola().(*value.MapObj)
	v, _ := m.Get("inspecciona")
	fn := v.(*value.NativeFunction)
	if _, err := fn.Func(value.Null, nil, nil, nil); err == nil {
		t.Fatalf("inspecciona() with no args should error")
	}
}
