package value

import "sync"

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseOk
	PromiseErr
)

// Promise is the Object wrapping an async result (§3, §4.6): it starts
// Pending and transitions exactly once, to either Ok or Err — §8's
// monotonicity invariant. OnSettle registers callbacks that run once at
// settlement; the ProcessManager does not use them and polls the state of
// an awaited promise each round instead.
type Promise struct {
	mu       sync.Mutex
	state    PromiseState
	value    Value
	onSettle []func(PromiseState, Value)
	settled  bool
}

func NewPromise() *Promise {
	return &Promise{state: PromisePending}
}

func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Promise) Value() Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Resolve settles the promise Ok, if it has not already settled. Later
// calls (Resolve or Reject) after the first are no-ops, preserving
// monotonicity.
func (p *Promise) Resolve(v Value) {
	p.settle(PromiseOk, v)
}

func (p *Promise) Reject(err Value) {
	p.settle(PromiseErr, err)
}

func (p *Promise) settle(state PromiseState, v Value) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.state = state
	p.value = v
	callbacks := p.onSettle
	p.onSettle = nil
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(state, v)
	}
}

// OnSettle registers cb to run once the promise settles; if it has
// already settled, cb runs immediately with the existing result.
func (p *Promise) OnSettle(cb func(PromiseState, Value)) {
	p.mu.Lock()
	if p.settled {
		state, v := p.state, p.value
		p.mu.Unlock()
		cb(state, v)
		return
	}
	p.onSettle = append(p.onSettle, cb)
	p.mu.Unlock()
}

func (p *Promise) IsPending() bool {
	return p.State() == PromisePending
}
