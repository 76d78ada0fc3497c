package native

import (
	"errors"
	"testing"
	"time"

	"agal/internal/value"
)

func waitSettled(t *testing.T, p *value.Promise) {
	t.Helper()
	deadline := time.After(time.Second)
	for p.IsPending() {
		select {
		case <-deadline:
			t.Fatalf("promise never settled")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPoolRunResolvesOnSuccess(t *testing.T) {
	p := NewPool(2, 4)
	defer p.Close()

	promise := p.Run(func() (value.Value, error) {
		return value.String("listo"), nil
	})
	waitSettled(t, promise)
	if v := promise.Value(); v != value.String("listo") {
		t.Fatalf("Value() = %v, want %q", v, "listo")
	}
}

func TestPoolRunRejectsOnError(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Close()

	promise := p.Run(func() (value.Value, error) {
		return nil, errors.New("boom")
	})
	waitSettled(t, promise)
	if v := promise.Value(); v != value.String("boom") {
		t.Fatalf("Value() = %v, want rejection reason %q", v, "boom")
	}
}

func TestPoolRunRecoversPanic(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Close()

	promise := p.Run(func() (value.Value, error) {
		panic("algo salió mal")
	})
	waitSettled(t, promise)
	if promise.IsPending() {
		t.Fatalf("panicking job should still settle its promise")
	}
}
