package module

import (
	"testing"

	"agal/internal/ast"
	"agal/internal/value"
)

func TestResolveBuiltinCachesValue(t *testing.T) {
	calls := 0
	l := NewLoader(nil)
	l.RegisterBuiltin(":saludos", func() value.Value {
		calls++
		m := value.NewMapObj()
		m.Set("hola", value.String("mundo"))
		return m
	})

	v1, err := l.Resolve(":saludos", "/main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v2, err := l.Resolve(":saludos", "/otro/camino")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v1 != v2 {
		t.Fatalf("expected the same cached module value on repeat resolve")
	}
	if calls != 1 {
		t.Fatalf("factory called %d times, want 1", calls)
	}
}

func TestResolveUnknownBuiltinErrors(t *testing.T) {
	l := NewLoader(nil)
	if _, err := l.Resolve(":inexistente", "/main"); err == nil {
		t.Fatalf("expected an error resolving an unregistered builtin")
	}
}

func TestResolveRelativePathJoinsFromDir(t *testing.T) {
	l := NewLoader(nil)
	l.RegisterProgram("/paquete/util", &ast.Program{})

	v, err := l.Resolve("./util", "/paquete/main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := v.(*value.MapObj); !ok {
		t.Fatalf("expected an export bag MapObj, got %T", v)
	}
}

func TestExportDropsSilentlyOutsideResolve(t *testing.T) {
	l := NewLoader(nil)
	// Export with no module currently resolving at this path must not
	// panic; it's simply a no-op.
	l.Export("/no/en/progreso", "x", value.Null)
}
