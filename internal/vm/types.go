// Package vm implements the execution engine (§4.5-§4.7): CallFrame/
// Thread hold one fiber's call stack and scope chain over a shared
// operand stack; ProcessManager drives the four-queue round robin
// (interrupt threads, async sub-threads, waiting threads, the main
// module thread) that schedules them to completion. Grounded on
// sentra/internal/vm/vm.go's EnhancedVM/EnhancedCallFrame shape — a
// shared operand stack plus a per-frame locals area — generalized from
// sentra's single synchronous VM into this module's explicit
// multi-fiber ProcessManager and reworked from slot-indexed locals to
// the internal/vars.Scope chain internal/compiler already targets.
package vm

import (
	"agal/internal/bytecode"
	"agal/internal/errors"
	"agal/internal/value"
	"agal/internal/vars"
)

type threadSignal int

const (
	signalContinue threadSignal = iota
	signalYield
	signalDone
	signalErr
)

// CallFrame is one activation record: its own bytecode position and
// scope chain, plus the arguments it was invoked with (kept as a plain
// slice rather than pushed onto the shared operand stack, so a trailing
// rest parameter can unambiguously claim "everything not yet consumed"
// without entangling the caller's own stack contents — see DESIGN.md).
type CallFrame struct {
	chunk   *bytecode.ChunkGroup
	ip      int
	scope   *vars.Scope
	label   string
	args    []value.Value
	argIdx  int

	hasReturnOverride bool
	returnOverride    value.Value
}

// tryHandler is one pending Try's catch target (§4.3/§4.6): frameDepth is
// the call-stack depth the try-body frame was pushed at, so an error
// raised anywhere inside it (or inside something it calls) unwinds back
// to exactly that depth before invoking catchFn.
type tryHandler struct {
	frameDepth int
	catchFn    *value.Function
}

// ModuleSystem is the narrow capability internal/module's Loader
// implements (§4.8), injected rather than imported directly so this
// package never depends on internal/module (which itself depends on
// this package and on internal/compiler to run an imported module's
// body) — the same narrow-interface trick value.NativeContext uses to
// avoid a value<->vm cycle.
type ModuleSystem interface {
	Resolve(path, fromPath string) (value.Value, error)
	Export(fromPath, name string, v value.Value)
}

// BlockingRunner submits blocking native work (file/network/db I/O) to a
// bounded OS-thread pool and returns a Promise that resolves with its
// result (§9's native thread pool note; internal/native implements this).
type BlockingRunner interface {
	Run(job func() (value.Value, error)) *value.Promise
}

// Thread is one fiber sharing nothing with other fibers except the
// ModuleSystem/BlockingRunner it was constructed with; the main module
// thread and every async sub-thread spawned by Promised (§9 design note)
// are all the same type.
type Thread struct {
	frames []*CallFrame
	stack  []value.Value

	tryStack []tryHandler

	modules    ModuleSystem
	modulePath string
	pool       BlockingRunner

	// proc is the owning ProcessManager, set once the thread is handed to
	// Run/spawnSubThread/spawnInterrupt; nil for a Thread driven directly
	// (e.g. runToCompletion's synchronous nested thunk runner), which is
	// why Promised only registers a sub-thread when proc is non-nil.
	proc *ProcessManager

	// donePromise is non-nil only for async sub-threads (spawned by
	// Promised); it is resolved/rejected when the thread finishes.
	donePromise *value.Promise
	// awaitingPromise is set by dispatchOp when Resume yields because the
	// top of stack is a still-Pending promise under Await; ProcessManager
	// uses it to route the thread into the "waiting" queue rather than
	// the plain round-robin "sub-threads" queue (§4.7).
	awaitingPromise *value.Promise

	result value.Value
	err    *errors.RuntimeError

	currentOpPos int
}

// NewMainThread builds the thread that runs a script's (or a module's)
// top-level ScriptFunction (§3 Program rule).
func NewMainThread(fn *value.ScriptFunction, modules ModuleSystem, modulePath string, pool BlockingRunner) *Thread {
	scope := fn.Scope
	if scope == nil {
		scope = vars.NewScope()
	}
	t := &Thread{modules: modules, modulePath: modulePath, pool: pool}
	t.frames = []*CallFrame{{chunk: fn.Chunk, scope: scope, label: "<script>"}}
	return t
}

func (t *Thread) frame() *CallFrame { return t.frames[len(t.frames)-1] }

func (t *Thread) popFrame() *CallFrame {
	f := t.frame()
	t.frames = t.frames[:len(t.frames)-1]
	return f
}

func (t *Thread) push(v value.Value) { t.stack = append(t.stack, v) }

func (t *Thread) pop() value.Value {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return v
}

// peekAt returns the value depthFromTop below the current top (0 is the
// top itself) without popping anything.
func (t *Thread) peekAt(depthFromTop int) value.Value {
	return t.stack[len(t.stack)-1-depthFromTop]
}

func (t *Thread) fetch() bytecode.OpCode {
	f := t.frame()
	op := bytecode.OpCode(f.chunk.At(f.ip))
	f.ip++
	return op
}

func (t *Thread) readByte() byte {
	f := t.frame()
	b := f.chunk.At(f.ip)
	f.ip++
	return b
}

func (t *Thread) readUint16() uint16 {
	hi := t.readByte()
	lo := t.readByte()
	return uint16(hi)<<8 | uint16(lo)
}

func (t *Thread) constantAt(opPos int, idx byte) value.Value {
	return t.frame().chunk.ConstantAt(opPos, idx)
}

func (t *Thread) loc() errors.Location {
	f := t.frame()
	return errors.Location{Line: f.chunk.LineAt(t.currentOpPos), Frame: f.label}
}

// raise either hands err to the innermost pending Try handler (unwinding
// frames back to where that try-body started and invoking its catch
// function) or, with no handler left, fails the whole thread (§7, §4.3).
func (t *Thread) raise(err *errors.RuntimeError) threadSignal {
	if len(t.tryStack) > 0 {
		h := t.tryStack[len(t.tryStack)-1]
		t.tryStack = t.tryStack[:len(t.tryStack)-1]
		t.frames = t.frames[:h.frameDepth]
		if h.catchFn != nil {
			t.callFunction(h.catchFn, value.Null, []value.Value{value.String(err.Message)}, nil)
		}
		return signalContinue
	}
	t.err = err
	t.frames = nil
	return signalErr
}

// Resume executes one opcode, the scheduling quantum, and reports whether
// the thread can continue, has finished, has errored, or yielded on a
// still-pending Await. §4.7's ProcessManager calls this once per round
// for every thread in its sub-thread/waiting queues and for the main
// thread.
func (t *Thread) Resume() threadSignal {
	t.awaitingPromise = nil
	if len(t.frames) == 0 {
		return signalDone
	}
	opPos := t.frame().ip
	t.currentOpPos = opPos
	op := t.fetch()
	return t.dispatchOp(op, opPos)
}
