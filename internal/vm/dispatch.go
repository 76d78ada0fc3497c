package vm

import (
	"fmt"

	"agal/internal/bytecode"
	"agal/internal/errors"
	"agal/internal/numeric"
	"agal/internal/value"
)

// numBinOp pops b then a, applies f, and pushes the result, raising
// TypeMismatch if either operand is not a Number (§4.1, §4.2).
func (t *Thread) numBinOp(name string, f func(a, b numeric.Number) numeric.Number) threadSignal {
	b := t.pop()
	a := t.pop()
	an, aok := a.(numeric.Number)
	bn, bok := b.(numeric.Number)
	if !aok || !bok {
		return t.raise(errors.NewTypeMismatch(fmt.Sprintf("%s espera dos números", name), t.loc()))
	}
	t.push(f(an, bn))
	return signalContinue
}

func (t *Thread) numCompare(name string, want int) threadSignal {
	b := t.pop()
	a := t.pop()
	an, aok := a.(numeric.Number)
	bn, bok := b.(numeric.Number)
	if !aok || !bok {
		return t.raise(errors.NewTypeMismatch(fmt.Sprintf("%s espera dos números", name), t.loc()))
	}
	cmp, ok := an.Cmp(bn)
	if !ok {
		t.push(value.False)
		return signalContinue
	}
	if want > 0 {
		t.push(value.FromBool(cmp > 0))
	} else {
		t.push(value.FromBool(cmp < 0))
	}
	return signalContinue
}

// dispatchOp executes one already-fetched opcode, reading any operand
// bytes it needs (opPos is the flattened position of the opcode byte
// itself, needed to resolve Constant/name operands against the right
// chunk's pool, §4.2 "from current chunk's pool").
func (t *Thread) dispatchOp(op bytecode.OpCode, opPos int) threadSignal {
	switch op {
	case bytecode.OpConstant:
		idx := t.readByte()
		t.push(t.constantAt(opPos, idx))

	case bytecode.OpCopy:
		t.push(t.peekAt(0))

	case bytecode.OpPop:
		t.pop()

	case bytecode.OpAdd:
		b := t.pop()
		a := t.pop()
		switch av := a.(type) {
		case numeric.Number:
			bv, ok := b.(numeric.Number)
			if !ok {
				return t.raise(errors.NewTypeMismatch("+ espera dos números o dos cadenas", t.loc()))
			}
			t.push(av.Add(bv))
		case value.String:
			t.push(value.String(string(av) + value.ToDisplayString(b)))
		default:
			return t.raise(errors.NewTypeMismatch("+ espera dos números o dos cadenas", t.loc()))
		}

	case bytecode.OpSubtract:
		return t.numBinOp("-", numeric.Number.Sub)
	case bytecode.OpMultiply:
		return t.numBinOp("*", numeric.Number.Mul)
	case bytecode.OpDivide:
		return t.numBinOp("/", numeric.Number.Div)
	case bytecode.OpModulo:
		return t.numBinOp("%", numeric.Number.Mod)
	case bytecode.OpExponential:
		return t.numBinOp("**", numeric.Number.Pow)

	case bytecode.OpNegate:
		v := t.pop()
		n, ok := v.(numeric.Number)
		if !ok {
			return t.raise(errors.NewTypeMismatch("- unario espera un número", t.loc()))
		}
		t.push(n.Neg())

	case bytecode.OpApproximate:
		v := t.pop()
		n, ok := v.(numeric.Number)
		if !ok {
			return t.raise(errors.NewTypeMismatch("~ espera un número", t.loc()))
		}
		t.push(n.Trunc())

	case bytecode.OpNot:
		v := t.pop()
		t.push(value.FromBool(!value.Truthy(v)))

	case bytecode.OpToBoolean:
		v := t.pop()
		t.push(value.FromBool(value.Truthy(v)))

	case bytecode.OpToString:
		v := t.pop()
		t.push(value.String(value.ToDisplayString(v)))

	case bytecode.OpEquals:
		b := t.pop()
		a := t.pop()
		t.push(value.FromBool(value.Equals(a, b)))

	case bytecode.OpGreaterThan:
		return t.numCompare(">", 1)
	case bytecode.OpLessThan:
		return t.numCompare("<", -1)

	case bytecode.OpAnd:
		b := t.pop()
		a := t.pop()
		if !value.Truthy(a) {
			t.push(a)
		} else {
			t.push(b)
		}
	case bytecode.OpOr:
		b := t.pop()
		a := t.pop()
		if value.Truthy(a) {
			t.push(a)
		} else {
			t.push(b)
		}
	case bytecode.OpNullish:
		b := t.pop()
		a := t.pop()
		if value.IsNull(a) || value.IsNever(a) {
			t.push(b)
		} else {
			t.push(a)
		}

	case bytecode.OpVarDecl, bytecode.OpConstDecl:
		idx := t.readByte()
		name := string(t.constantAt(opPos, idx).(value.String))
		val := t.pop()
		if err := t.frame().scope.Declare(name, val, op == bytecode.OpConstDecl); err != nil {
			return t.raise(errors.NewNameResolution(err.Error(), t.loc()))
		}

	case bytecode.OpArgDecl:
		nameIdx := t.readByte()
		meta := t.readByte()
		name := string(t.constantAt(opPos, nameIdx).(value.String))
		f := t.frame()
		if meta&bytecode.ArgIsRest != 0 {
			rest := append([]value.Value{}, f.args[f.argIdx:]...)
			f.scope.Declare(name, value.NewArrayObj(rest...), false)
			f.argIdx = len(f.args)
		} else {
			var v value.Value = value.Never
			if f.argIdx < len(f.args) {
				v = f.args[f.argIdx]
				f.argIdx++
			}
			f.scope.Declare(name, v, false)
		}

	case bytecode.OpSetVar:
		nameVal := t.pop()
		val := t.pop()
		name := string(nameVal.(value.String))
		if err := t.frame().scope.Assign(name, val); err != nil {
			return t.raise(errors.NewNameResolution(err.Error(), t.loc()))
		}
		t.push(val)

	case bytecode.OpGetVar:
		nameVal := t.pop()
		name := string(nameVal.(value.String))
		v, ok := t.frame().scope.Get(name)
		if !ok {
			return t.raise(errors.NewNameResolution(fmt.Sprintf("variable no declarada: %q", name), t.loc()))
		}
		if lazy, ok2 := v.(*value.Lazy); ok2 {
			forced, err := lazy.Force(t.callThunkSync)
			if err != nil {
				return t.raise(toRuntimeError(err, t.loc()))
			}
			t.frame().scope.Assign(name, forced)
			t.push(forced)
		} else {
			t.push(v)
		}

	case bytecode.OpDelVar:
		nameVal := t.pop()
		name := string(nameVal.(value.String))
		if err := t.frame().scope.Remove(name); err != nil {
			return t.raise(errors.NewNameResolution(err.Error(), t.loc()))
		}

	case bytecode.OpSetMember:
		meta := t.readByte()
		val := t.pop()
		key := t.pop()
		obj := t.pop()
		if err := setMember(obj, key, val, meta); err != nil {
			return t.raise(errors.NewPropertyAccess(err.Error(), t.loc()))
		}
		t.push(val)

	case bytecode.OpGetMember:
		flag := t.readByte()
		key := t.pop()
		obj := t.pop()
		v, err := getMember(obj, key, flag == bytecode.MemberInstanceLookup)
		if err != nil {
			return t.raise(errors.NewPropertyAccess(err.Error(), t.loc()))
		}
		t.push(v)

	case bytecode.OpGetInstance:
		v := t.pop()
		cls, ok := v.(*value.Class)
		if !ok {
			return t.raise(errors.NewTypeMismatch("GetInstance espera una clase", t.loc()))
		}
		t.push(cls.Instance)

	case bytecode.OpJumpIfFalse:
		offset := t.readUint16()
		cond := t.pop()
		if !value.Truthy(cond) {
			t.frame().ip = int(offset)
		}

	case bytecode.OpJump:
		offset := t.readUint16()
		t.frame().ip = int(offset)

	case bytecode.OpLoop:
		offset := t.readUint16()
		t.frame().ip -= int(offset)

	case bytecode.OpNewLocals:
		f := t.frame()
		f.scope = f.scope.Child()

	case bytecode.OpRemoveLocals:
		f := t.frame()
		if parent := f.scope.Parent(); parent != nil {
			f.scope = parent
		}

	case bytecode.OpReturn:
		v := t.pop()
		frame := t.popFrame()
		if frame.hasReturnOverride {
			v = frame.returnOverride
		}
		if len(t.tryStack) > 0 && len(t.frames) == t.tryStack[len(t.tryStack)-1].frameDepth {
			t.tryStack = t.tryStack[:len(t.tryStack)-1]
		}
		if len(t.frames) == 0 {
			t.result = v
			return signalDone
		}
		t.push(v)

	case bytecode.OpBreak, bytecode.OpContinue:
		// No-op at the VM level: the real control transfer is the
		// compiler's own conditionally emitted RemoveLocals+Jump pair
		// (internal/compiler/stmt.go); reached with nothing following only
		// when romper/continuar is used outside any enclosing loop, which
		// is then a harmless no-op rather than a dispatch error.

	case bytecode.OpCall:
		flags := t.readByte()
		return t.dispatchCall(flags)

	case bytecode.OpSetScope:
		v := t.pop()
		switch fn := v.(type) {
		case *value.Function:
			clone := *fn
			clone.Scope = t.frame().scope
			t.push(&clone)
		case *value.Lazy:
			if sf, ok := fn.Thunk.(*value.ScriptFunction); ok {
				clonedThunk := *sf
				clonedThunk.Scope = t.frame().scope
				t.push(value.NewLazy(&clonedThunk))
			} else {
				t.push(fn)
			}
		default:
			t.push(v)
		}

	case bytecode.OpPromised:
		newFrame := t.popFrame()
		p := value.NewPromise()
		async := &Thread{
			frames:      []*CallFrame{newFrame},
			modules:     t.modules,
			modulePath:  t.modulePath,
			pool:        t.pool,
			donePromise: p,
		}
		if t.proc != nil {
			t.proc.spawnSubThread(async)
		}
		t.push(p)

	case bytecode.OpAwait:
		v := t.peekAt(0)
		if p, ok := v.(*value.Promise); ok && p.State() == value.PromisePending {
			t.awaitingPromise = p
			t.frame().ip = opPos
			return signalYield
		}

	case bytecode.OpUnPromise:
		v := t.pop()
		p, ok := v.(*value.Promise)
		if !ok {
			t.push(v)
			break
		}
		switch p.State() {
		case value.PromiseOk:
			t.push(p.Value())
		case value.PromiseErr:
			return t.raise(errors.NewTypeMismatch(value.ToDisplayString(p.Value()), t.loc()))
		default:
			t.push(value.Null)
		}

	case bytecode.OpInClass:
		v := t.pop()
		owner := t.peekAt(1)
		if fn, ok := v.(*value.Function); ok {
			switch o := owner.(type) {
			case *value.Instance:
				fn.InClass = o.OwnerClass
			case *value.Class:
				fn.InClass = o
			}
		}
		t.push(v)

	case bytecode.OpExtendClass:
		parentVal := t.pop()
		childVal := t.pop()
		parent, ok1 := parentVal.(*value.Class)
		child, ok2 := childVal.(*value.Class)
		if !ok1 || !ok2 {
			return t.raise(errors.NewTypeMismatch("ExtendClass espera dos clases", t.loc()))
		}
		child.Extend(parent)
		t.push(child)

	case bytecode.OpImport:
		meta := t.readByte()
		nameIdx := t.readByte()
		pathVal := t.pop()
		path, ok := pathVal.(value.String)
		if !ok {
			return t.raise(errors.NewTypeMismatch("Import espera una ruta de texto", t.loc()))
		}
		name := string(t.constantAt(opPos, nameIdx).(value.String))
		if t.modules == nil {
			return t.raise(errors.NewNameResolution("no hay sistema de módulos disponible", t.loc()))
		}
		var mod value.Value
		if meta&bytecode.ImportLazy != 0 {
			mod = value.NewLazy(moduleThunk{path: string(path), fromPath: t.modulePath})
		} else {
			resolved, err := t.modules.Resolve(string(path), t.modulePath)
			if err != nil {
				return t.raise(toRuntimeError(err, t.loc()))
			}
			mod = resolved
		}
		if meta&bytecode.ImportAlias != 0 && name != "" {
			t.frame().scope.Declare(name, mod, false)
		}
		t.push(mod)

	case bytecode.OpExport:
		nameIdx := t.readByte()
		name := string(t.constantAt(opPos, nameIdx).(value.String))
		v, ok := t.frame().scope.Get(name)
		if !ok {
			return t.raise(errors.NewNameResolution(fmt.Sprintf("variable no declarada: %q", name), t.loc()))
		}
		if t.modules != nil {
			t.modules.Export(t.modulePath, name, v)
		}

	case bytecode.OpAt:
		v := t.pop()
		t.push(value.NewIterator(v))

	case bytecode.OpAsRef:
		v := t.pop()
		t.push(value.NewRef(v))

	case bytecode.OpTry:
		catchVal := t.pop()
		tryVal := t.pop()
		tryFn, ok := tryVal.(*value.Function)
		if !ok {
			return t.raise(errors.NewInvalidBytecode("Try espera dos funciones", t.loc()))
		}
		catchFn, _ := catchVal.(*value.Function)
		t.tryStack = append(t.tryStack, tryHandler{frameDepth: len(t.frames), catchFn: catchFn})
		if err := t.callFunction(tryFn, value.Null, nil, nil); err != nil {
			return t.raise(err)
		}

	case bytecode.OpThrow:
		v := t.pop()
		return t.raise(errors.NewControlMisuse(value.ToDisplayString(v), t.loc()))

	case bytecode.OpConsoleOut:
		v := t.pop()
		fmt.Println(value.ToDisplayString(v))

	case bytecode.OpMakeArray:
		n := int(t.readUint16())
		items := make([]value.Value, n)
		for i := n - 1; i >= 0; i-- {
			items[i] = t.pop()
		}
		t.push(value.NewArrayObj(flattenArgs(items)...))

	case bytecode.OpMakeMap:
		n := int(t.readUint16())
		type pair struct{ k, v value.Value }
		pairs := make([]pair, n)
		for i := n - 1; i >= 0; i-- {
			pairs[i].v = t.pop()
			pairs[i].k = t.pop()
		}
		m := value.NewMapObj()
		for _, p := range pairs {
			m.Set(keyName(p.k), p.v)
		}
		t.push(m)

	default:
		return t.raise(errors.NewInvalidBytecode(fmt.Sprintf("código de operación desconocido: %v", op), t.loc()))
	}
	return signalContinue
}
