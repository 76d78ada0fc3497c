package vm

import (
	"fmt"

	"agal/internal/bytecode"
	"agal/internal/errors"
	"agal/internal/numeric"
	"agal/internal/value"
	"agal/internal/vars"
)

// flattenArgs expands any *value.Iterator (splat marker, §4.2/§4.3) found
// among raw into its elements, in place of the single Iterator value.
func flattenArgs(raw []value.Value) []value.Value {
	out := make([]value.Value, 0, len(raw))
	for _, v := range raw {
		if it, ok := v.(*value.Iterator); ok {
			out = append(out, it.Elements()...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func labelOf(fn *value.Function) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "<anonima>"
}

// callFunction pushes a new frame invoking fn (§4.5 dispatch for a
// Function callee, also used for a Class's constructor). returnOverride,
// if non-nil, replaces whatever value fn's own Return leaves on the stack
// (used so a constructor call still yields the instance, not whatever its
// body happens to return).
func (t *Thread) callFunction(fn *value.Function, this value.Value, args []value.Value, returnOverride value.Value) *errors.RuntimeError {
	required := fn.ParamsLen
	if fn.HasRest {
		required--
	}
	if len(args) < required || (!fn.HasRest && len(args) > fn.ParamsLen) {
		return errors.NewArityError(
			fmt.Sprintf("%s espera %d argumento(s), recibió %d", labelOf(fn), fn.ParamsLen, len(args)),
			t.loc())
	}

	parent := fn.Scope
	if parent == nil {
		parent = vars.NewScope()
	}
	scope := parent.Child()
	scope.SetThis(this)

	frame := &CallFrame{chunk: fn.Chunk, scope: scope, label: labelOf(fn), args: args}
	if returnOverride != nil {
		frame.hasReturnOverride = true
		frame.returnOverride = returnOverride
	}
	t.frames = append(t.frames, frame)
	return nil
}

// dispatchCall implements the §4.5 Call-dispatch routine: pop nArgs
// (flattening splats), pop callee, pop this, then branch on callee's
// concrete kind (Number: implicit multiplication; Class: construct +
// optional constructor; NativeFunction: direct Go call; Function: push a
// new frame).
func (t *Thread) dispatchCall(flags byte) threadSignal {
	nArgs := int(flags & bytecode.CallArgsMask)
	raw := make([]value.Value, nArgs)
	for i := nArgs - 1; i >= 0; i-- {
		raw[i] = t.pop()
	}
	args := flattenArgs(raw)
	callee := t.pop()
	this := t.pop()

	switch fn := callee.(type) {
	case numeric.Number:
		if len(args) != 1 {
			return t.raise(errors.NewArityError("multiplicación implícita espera exactamente un argumento", t.loc()))
		}
		arg, ok := args[0].(numeric.Number)
		if !ok {
			return t.raise(errors.NewTypeMismatch("no se puede multiplicar un número por un valor no numérico", t.loc()))
		}
		t.push(fn.Mul(arg))
		return signalContinue
	case *value.Class:
		return t.dispatchConstruct(fn, args)
	case *value.NativeFunction:
		result, err := fn.Func(this, args, t, fn.CustomData)
		if err != nil {
			return t.raise(toRuntimeError(err, t.loc()))
		}
		t.push(result)
		return signalContinue
	case *value.Function:
		if err := t.callFunction(fn, this, args, nil); err != nil {
			return t.raise(err)
		}
		return signalContinue
	default:
		return t.raise(errors.NewTypeMismatch(fmt.Sprintf("%s no es invocable", value.TypeName(callee)), t.loc()))
	}
}

func (t *Thread) dispatchConstruct(class *value.Class, args []value.Value) threadSignal {
	inst := value.NewLiveInstance(class)
	ctorVal, hasCtor := inst.Lookup("__constructor__", true)
	switch ctor := ctorVal.(type) {
	case *value.Function:
		if err := t.callFunction(ctor, inst, args, inst); err != nil {
			return t.raise(err)
		}
		return signalContinue
	case *value.NativeFunction:
		// A native class's constructor (e.g. internal/library's Ruta)
		// runs synchronously here instead of pushing a frame, mutating inst
		// in place; its own return value is discarded in favor of inst,
		// same substitution OpReturn's returnOverride does for a scripted
		// constructor.
		if _, err := ctor.Func(inst, args, t, ctor.CustomData); err != nil {
			return t.raise(toRuntimeError(err, t.loc()))
		}
	default:
		if hasCtor {
			return t.raise(errors.NewTypeMismatch("constructor inválido", t.loc()))
		}
	}
	t.push(inst)
	return signalContinue
}

// moduleThunk defers an Import path resolution (ImportLazy, §4.8) until
// something actually reads the binding; callThunkSync recognizes it.
type moduleThunk struct {
	path     string
	fromPath string
}

// callThunkSync runs a zero-arg Callable (or a deferred module
// resolution) to completion synchronously, used by Lazy.Force (§9
// "memoization on first read") and by a lazily resolved Import. For a
// script/function thunk it is a best-effort nested loop: if the thunk's
// body awaits a promise that never settles it spins rather than yielding
// back into the owning ProcessManager, since thunks are expected to be
// synchronous.
func (t *Thread) callThunkSync(thunk value.Value) (value.Value, error) {
	switch fn := thunk.(type) {
	case *value.ScriptFunction:
		scope := fn.Scope
		if scope == nil {
			scope = vars.NewScope()
		}
		return t.runToCompletion(fn.Chunk, scope)
	case *value.Function:
		parent := fn.Scope
		if parent == nil {
			parent = vars.NewScope()
		}
		scope := parent.Child()
		scope.SetThis(value.Null)
		return t.runToCompletion(fn.Chunk, scope)
	case moduleThunk:
		return t.modules.Resolve(fn.path, fn.fromPath)
	default:
		return thunk, nil
	}
}

// runToCompletion drives a brand-new nested Thread (sharing this
// Thread's module system and native pool) over chunk/scope until it
// finishes or errors.
func (t *Thread) runToCompletion(chunk *bytecode.ChunkGroup, scope *vars.Scope) (value.Value, error) {
	sub := &Thread{
		frames:     []*CallFrame{{chunk: chunk, scope: scope, label: "<perezoso>"}},
		modules:    t.modules,
		modulePath: t.modulePath,
		pool:       t.pool,
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

// toRuntimeError wraps an error surfaced from outside the VM's own
// dispatch (a NativeFunction call, a module resolution failure) into the
// §7 taxonomy. These are foreign to the six VM-internal categories, so by
// convention they are reported as TypeMismatch (the closest fit: "this
// operation got a value/outcome it cannot work with") — see DESIGN.md.
func toRuntimeError(err error, loc errors.Location) *errors.RuntimeError {
	if re, ok := err.(*errors.RuntimeError); ok {
		return re
	}
	return errors.NewTypeMismatch(err.Error(), loc)
}
