package errors

import "testing"

func TestErrorMessageIncludesLocation(t *testing.T) {
	err := NewTypeMismatch("se esperaba Numero", Location{Line: 12, Frame: "sumar"})
	got := err.Error()
	want := "TypeMismatch: se esperaba Numero (line 12, en sumar)"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestWithStackAppendsFrames(t *testing.T) {
	err := NewArityError("se esperaban 2 argumentos", Location{Line: 3, Frame: "f"}).
		WithStack([]StackFrame{{Frame: "g", Line: 9}, {Frame: "<script>", Line: 20}})
	if len(err.CallStack) != 2 {
		t.Fatalf("expected 2 stack frames, got %d", len(err.CallStack))
	}
}

func TestAddFrameAppendsInOrder(t *testing.T) {
	err := NewNameResolution("x no declarado", Location{Line: 1})
	err.AddFrame("a", 1).AddFrame("b", 2)
	if err.CallStack[0].Frame != "a" || err.CallStack[1].Frame != "b" {
		t.Fatalf("unexpected frame order: %+v", err.CallStack)
	}
}

func TestLocationStringWithoutFrame(t *testing.T) {
	loc := Location{Line: 5}
	if loc.String() != "line 5" {
		t.Fatalf("Location.String() = %q, want %q", loc.String(), "line 5")
	}
}
