package vm

import "agal/internal/value"

// CallValue lets native code (a library export) invoke a user callback
// synchronously (§4.5, §6) — e.g. an event handler registered with
// `:red`. It reuses
// callThunkSync's nested-thread machinery, which already knows how to
// drive a *value.Function/*value.ScriptFunction to completion.
func (t *Thread) CallValue(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	f, ok := fn.(*value.Function)
	if !ok {
		return t.callThunkSync(fn)
	}
	sub := &Thread{modules: t.modules, modulePath: t.modulePath, pool: t.pool}
	if err := sub.callFunction(f, this, args, nil); err != nil {
		return nil, err
	}
	for {
		switch sub.Resume() {
		case signalDone:
			return sub.result, nil
		case signalErr:
			return nil, sub.err
		case signalYield:
			continue
		}
	}
}

// NewPromise allocates a Pending promise; native code resolves or
// rejects it later (typically from a goroutine spawned by RunBlocking).
func (t *Thread) NewPromise() *value.Promise {
	return value.NewPromise()
}

// RunBlocking submits job to the bounded native thread pool (§9's
// "native thread pool" note; internal/native.Pool implements
// BlockingRunner) and returns the Promise it resolves into. With no pool
// configured (e.g. a thunk run via callThunkSync) it falls back to
// running job synchronously, settling the Promise immediately.
func (t *Thread) RunBlocking(job func() (value.Value, error)) *value.Promise {
	if t.pool != nil {
		return t.pool.Run(job)
	}
	p := value.NewPromise()
	v, err := job()
	if err != nil {
		p.Reject(value.String(err.Error()))
	} else {
		p.Resolve(v)
	}
	return p
}
