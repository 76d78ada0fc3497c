package value

import (
	"fmt"
	"testing"

	"agal/internal/numeric"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null, false},
		{"never", Never, false},
		{"false", False, false},
		{"true", True, true},
		{"zero number", numeric.Zero(), false},
		{"nonzero number", numeric.FromInt64(1), true},
		{"empty string", String(""), false},
		{"nonempty string", String("a"), true},
		{"empty array", NewArrayObj(), false},
		{"nonempty array", NewArrayObj(String("x")), true},
	}
	for _, c := range cases {
		if got := Truthy(c.v); got != c.want {
			t.Errorf("%s: Truthy = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestEqualsNumbersByCanonicalString(t *testing.T) {
	a := numeric.FromInt64(5)
	b := numeric.FromInt64(5)
	if !Equals(a, b) {
		t.Fatalf("equal numbers should compare equal")
	}
}

func TestEqualsRefIsTransparent(t *testing.T) {
	a := String("x")
	r := NewRef(a)
	if !Equals(a, r) {
		t.Fatalf("Ref should be transparent to Equals")
	}
}

func TestMapObjPreservesInsertionOrder(t *testing.T) {
	m := NewMapObj()
	m.Set("b", numeric.FromInt64(2))
	m.Set("a", numeric.FromInt64(1))
	if fmt.Sprint(m.Order) != "[b a]" {
		t.Fatalf("unexpected order: %v", m.Order)
	}
}

func TestInstancePrivateVisibility(t *testing.T) {
	base := NewClass("Animal")
	base.Instance.Set("secreto", String("shh"), false)
	base.Instance.Set("nombre", String("x"), true)

	if _, ok := base.Instance.Lookup("secreto", false); ok {
		t.Fatalf("private member must not be visible from outside the class")
	}
	if _, ok := base.Instance.Lookup("secreto", true); !ok {
		t.Fatalf("private member must be visible from inside the class")
	}
	if _, ok := base.Instance.Lookup("nombre", false); !ok {
		t.Fatalf("public member must always be visible")
	}
}

func TestInstanceSubclassSeesParentPrivate(t *testing.T) {
	base := NewClass("Animal")
	base.Instance.Set("secreto", String("shh"), false)
	child := NewClass("Perro")
	child.Extend(base)
	live := NewLiveInstance(child)
	if _, ok := live.Lookup("secreto", true); !ok {
		t.Fatalf("subclass instance should see inherited private member when inside class scope")
	}
	if _, ok := live.Lookup("secreto", false); ok {
		t.Fatalf("outside code must not see inherited private member")
	}
}

func TestPromiseMonotonic(t *testing.T) {
	p := NewPromise()
	p.Resolve(String("first"))
	p.Resolve(String("second"))
	if p.State() != PromiseOk {
		t.Fatalf("expected Ok state")
	}
	if p.Value() != String("first") {
		t.Fatalf("second resolve must not overwrite first: got %v", p.Value())
	}
}

func TestPromiseOnSettleFiresOnceAfterSettlement(t *testing.T) {
	p := NewPromise()
	var got Value
	p.OnSettle(func(_ PromiseState, v Value) { got = v })
	p.Resolve(String("done"))
	if got != String("done") {
		t.Fatalf("OnSettle callback should fire with resolved value, got %v", got)
	}
}

func TestPromiseOnSettleFiresImmediatelyIfAlreadySettled(t *testing.T) {
	p := NewPromise()
	p.Resolve(String("done"))
	var got Value
	p.OnSettle(func(_ PromiseState, v Value) { got = v })
	if got != String("done") {
		t.Fatalf("OnSettle on an already-settled promise should fire immediately, got %v", got)
	}
}

func TestLazyMemoizesAfterFirstForce(t *testing.T) {
	calls := 0
	l := NewLazy(nil)
	call := func(Value) (Value, error) {
		calls++
		return numeric.FromInt64(7), nil
	}
	v1, _ := l.Force(call)
	v2, _ := l.Force(call)
	if calls != 1 {
		t.Fatalf("thunk should run exactly once, ran %d times", calls)
	}
	if !Equals(v1, v2) {
		t.Fatalf("memoized value should be stable across forces")
	}
}

func TestLazyRejectsReentrantForce(t *testing.T) {
	l := NewLazy(nil)
	var innerErr error
	call := func(Value) (Value, error) {
		_, innerErr = l.Force(func(Value) (Value, error) { return nil, nil })
		return Null, nil
	}
	_, _ = l.Force(call)
	if innerErr == nil {
		t.Fatalf("expected self-referential Force to fail")
	}
}

func TestTypeName(t *testing.T) {
	if TypeName(numeric.Zero()) != "Numero" {
		t.Fatalf("expected Numero")
	}
	if TypeName(NewArrayObj()) != "Lista" {
		t.Fatalf("expected Lista")
	}
	if TypeName(Null) != "Nulo" {
		t.Fatalf("expected Nulo")
	}
}
