package vm

import (
	"testing"

	"agal/internal/bytecode"
	"agal/internal/numeric"
	"agal/internal/value"
	"agal/internal/vars"
)

// runChunk builds a ScriptFunction around g and drives it to completion on
// a single thread with no module system or native pool, the shape every
// plain-expression test below needs.
func runChunk(t *testing.T, g *bytecode.ChunkGroup) (value.Value, *Thread) {
	t.Helper()
	fn := &value.ScriptFunction{Path: "<test>", Chunk: g, Scope: vars.NewScope()}
	th := NewMainThread(fn, nil, "<test>", nil)
	for {
		switch th.Resume() {
		case signalDone:
			return th.result, th
		case signalErr:
			t.Fatalf("unexpected runtime error: %v", th.err)
			return nil, th
		case signalYield:
			continue
		}
	}
}

func constNum(g *bytecode.ChunkGroup, n int64) byte {
	return g.AddConstant(numeric.FromInt64(n))
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       bytecode.OpCode
		a, b     int64
		expected int64
	}{
		{"addition", bytecode.OpAdd, 10, 20, 30},
		{"subtraction", bytecode.OpSubtract, 50, 20, 30},
		{"multiplication", bytecode.OpMultiply, 5, 6, 30},
		{"division", bytecode.OpDivide, 60, 2, 30},
		{"modulo", bytecode.OpModulo, 17, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := bytecode.NewChunkGroup()
			ca := constNum(g, tt.a)
			cb := constNum(g, tt.b)
			g.WriteOp(bytecode.OpConstant, 1)
			g.WriteByte(ca, 1)
			g.WriteOp(bytecode.OpConstant, 1)
			g.WriteByte(cb, 1)
			g.WriteOp(tt.op, 1)
			g.WriteOp(bytecode.OpReturn, 1)

			got, _ := runChunk(t, g)
			want := numeric.FromInt64(tt.expected)
			if gn, ok := got.(numeric.Number); !ok || !gn.Equals(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestNegateAndApproximate(t *testing.T) {
	g := bytecode.NewChunkGroup()
	c := constNum(g, 42)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c, 1)
	g.WriteOp(bytecode.OpNegate, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(-42)) {
		t.Fatalf("got %v, want -42", got)
	}

	g2 := bytecode.NewChunkGroup()
	c2 := g2.AddConstant(numeric.Parse("2.7"))
	g2.WriteOp(bytecode.OpConstant, 1)
	g2.WriteByte(c2, 1)
	g2.WriteOp(bytecode.OpApproximate, 1)
	g2.WriteOp(bytecode.OpReturn, 1)

	got2, _ := runChunk(t, g2)
	if gn, ok := got2.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(2)) {
		t.Fatalf("got %v, want 2 (~2.7 truncates)", got2)
	}
}

func TestVarDeclGetSetVar(t *testing.T) {
	g := bytecode.NewChunkGroup()
	name := g.AddConstant(value.String("x"))
	c1 := constNum(g, 1)
	c2 := constNum(g, 41)

	// x = 1
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c1, 1)
	g.WriteOp(bytecode.OpVarDecl, 1)
	g.WriteByte(name, 1)

	// x = x + 41 (via SetVar: push value, push name, SetVar leaves value on stack)
	g.WriteOp(bytecode.OpConstant, 2)
	g.WriteByte(name, 2)
	g.WriteOp(bytecode.OpGetVar, 2)
	g.WriteOp(bytecode.OpConstant, 2)
	g.WriteByte(c2, 2)
	g.WriteOp(bytecode.OpAdd, 2)
	g.WriteOp(bytecode.OpConstant, 2)
	g.WriteByte(name, 2)
	g.WriteOp(bytecode.OpSetVar, 2)
	g.WriteOp(bytecode.OpReturn, 2)

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(42)) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestMakeArrayAndGetMember(t *testing.T) {
	g := bytecode.NewChunkGroup()
	c1 := constNum(g, 1)
	c2 := constNum(g, 2)
	c3 := constNum(g, 3)
	idx := g.AddConstant(numeric.FromInt64(1))

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c1, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c2, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c3, 1)
	g.WriteOp(bytecode.OpMakeArray, 1)
	g.WriteUint16(3, 1)

	// arr[1]
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(idx, 1)
	g.WriteOp(bytecode.OpGetMember, 1)
	g.WriteByte(bytecode.MemberObjectLookup, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(2)) {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestMakeMapAndGetMember(t *testing.T) {
	g := bytecode.NewChunkGroup()
	key := g.AddConstant(value.String("nombre"))
	val := g.AddConstant(value.String("agal"))

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(key, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(val, 1)
	g.WriteOp(bytecode.OpMakeMap, 1)
	g.WriteUint16(1, 1)

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(key, 1)
	g.WriteOp(bytecode.OpGetMember, 1)
	g.WriteByte(bytecode.MemberObjectLookup, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gs, ok := got.(value.String); !ok || gs != "agal" {
		t.Fatalf("got %v, want \"agal\"", got)
	}
}

func TestJumpIfFalseSkipsThenBranch(t *testing.T) {
	g := bytecode.NewChunkGroup()
	cFalse := g.AddConstant(value.False)
	cThen := constNum(g, 1)
	cElse := constNum(g, 2)

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(cFalse, 1)
	jumpIfFalsePos := g.WriteOp(bytecode.OpJumpIfFalse, 1)
	g.WriteUint16(0, 1)

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(cThen, 1)
	jumpPos := g.WriteOp(bytecode.OpJump, 1)
	g.WriteUint16(0, 1)

	elseTarget := g.Len()
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(cElse, 1)

	end := g.Len()
	g.WriteOp(bytecode.OpReturn, 1)

	g.PatchUint16(jumpIfFalsePos+1, uint16(elseTarget))
	g.PatchUint16(jumpPos+1, uint16(end))

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(2)) {
		t.Fatalf("got %v, want 2 (else branch)", got)
	}
}

func TestLoopJumpsBackward(t *testing.T) {
	// i = 0; while (i < 3) { i = i + 1 }; return i
	g := bytecode.NewChunkGroup()
	iName := g.AddConstant(value.String("i"))
	c0 := constNum(g, 0)
	c1 := constNum(g, 1)
	c3 := constNum(g, 3)

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c0, 1)
	g.WriteOp(bytecode.OpVarDecl, 1)
	g.WriteByte(iName, 1)

	loopStart := g.Len()
	g.WriteOp(bytecode.OpConstant, 2)
	g.WriteByte(iName, 2)
	g.WriteOp(bytecode.OpGetVar, 2)
	g.WriteOp(bytecode.OpConstant, 2)
	g.WriteByte(c3, 2)
	g.WriteOp(bytecode.OpLessThan, 2)
	condJump := g.WriteOp(bytecode.OpJumpIfFalse, 2)
	g.WriteUint16(0, 2)

	g.WriteOp(bytecode.OpConstant, 3)
	g.WriteByte(iName, 3)
	g.WriteOp(bytecode.OpGetVar, 3)
	g.WriteOp(bytecode.OpConstant, 3)
	g.WriteByte(c1, 3)
	g.WriteOp(bytecode.OpAdd, 3)
	g.WriteOp(bytecode.OpConstant, 3)
	g.WriteByte(iName, 3)
	g.WriteOp(bytecode.OpSetVar, 3)
	g.WriteOp(bytecode.OpPop, 3)

	loopOpPos := g.WriteOp(bytecode.OpLoop, 3)
	backOffset := g.Len() + 2 - loopStart
	g.WriteUint16(uint16(backOffset), 3)
	_ = loopOpPos

	loopEnd := g.Len()
	g.WriteOp(bytecode.OpConstant, 4)
	g.WriteByte(iName, 4)
	g.WriteOp(bytecode.OpGetVar, 4)
	g.WriteOp(bytecode.OpReturn, 4)

	g.PatchUint16(condJump+1, uint16(loopEnd))

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(3)) {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestBreakContinueAreNoOpsOutsideLoop(t *testing.T) {
	g := bytecode.NewChunkGroup()
	c := constNum(g, 7)
	g.WriteOp(bytecode.OpBreak, 1)
	g.WriteOp(bytecode.OpContinue, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(c, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(7)) {
		t.Fatalf("Break/Continue outside a loop should be no-ops, got %v", got)
	}
}

// TestFunctionCallWithRestParams exercises OpCall + OpArgDecl's rest-param
// collection path by constructing the callee Function directly (argument
// parsing / compilation of parameter lists is internal/compiler's concern,
// not this package's).
func TestFunctionCallWithRestParams(t *testing.T) {
	inner := bytecode.NewChunkGroup()
	restName := inner.AddConstant(value.String("resto"))
	lenKey := inner.AddConstant(value.String("longitud"))

	inner.WriteOp(bytecode.OpArgDecl, 1)
	inner.WriteByte(restName, 1)
	inner.WriteByte(bytecode.ArgIsRest, 1)

	inner.WriteOp(bytecode.OpConstant, 2)
	inner.WriteByte(restName, 2)
	inner.WriteOp(bytecode.OpGetVar, 2)
	inner.WriteOp(bytecode.OpConstant, 2)
	inner.WriteByte(lenKey, 2)
	inner.WriteOp(bytecode.OpGetMember, 2)
	inner.WriteByte(bytecode.MemberObjectLookup, 2)
	inner.WriteOp(bytecode.OpReturn, 2)

	fn := &value.Function{Name: "contar", ParamsLen: 1, HasRest: true, Chunk: inner}

	g := bytecode.NewChunkGroup()
	fnIdx := g.AddConstant(fn)
	nullIdx := g.AddConstant(value.Null)
	a1 := constNum(g, 1)
	a2 := constNum(g, 2)
	a3 := constNum(g, 3)

	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(nullIdx, 1) // this
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(fnIdx, 1) // callee
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(a1, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(a2, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(a3, 1)
	g.WriteOp(bytecode.OpCall, 1)
	g.WriteByte(3, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gn, ok := got.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(3)) {
		t.Fatalf("got %v, want 3 (rest param collected all 3 args)", got)
	}
}

func TestTryThrowCatchRecoversValue(t *testing.T) {
	tryBody := bytecode.NewChunkGroup()
	tryBody.WriteOp(bytecode.OpConstant, 1)
	tryBody.WriteByte(tryBody.AddConstant(value.String("boom")), 1)
	tryBody.WriteOp(bytecode.OpThrow, 1)
	tryBody.WriteOp(bytecode.OpReturn, 1) // unreachable

	catchBody := bytecode.NewChunkGroup()
	msgName := catchBody.AddConstant(value.String("mensaje"))
	catchBody.WriteOp(bytecode.OpArgDecl, 1)
	catchBody.WriteByte(msgName, 1)
	catchBody.WriteByte(0, 1)
	catchBody.WriteOp(bytecode.OpConstant, 2)
	catchBody.WriteByte(msgName, 2)
	catchBody.WriteOp(bytecode.OpGetVar, 2)
	catchBody.WriteOp(bytecode.OpReturn, 2)

	tryFn := &value.Function{Name: "<intentar>", Chunk: tryBody}
	catchFn := &value.Function{Name: "<capturar>", ParamsLen: 1, Chunk: catchBody}

	g := bytecode.NewChunkGroup()
	tryIdx := g.AddConstant(tryFn)
	catchIdx := g.AddConstant(catchFn)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(tryIdx, 1)
	g.WriteOp(bytecode.OpConstant, 1)
	g.WriteByte(catchIdx, 1)
	g.WriteOp(bytecode.OpTry, 1)
	g.WriteOp(bytecode.OpReturn, 1)

	got, _ := runChunk(t, g)
	if gs, ok := got.(value.String); !ok || gs != "boom" {
		t.Fatalf("got %v, want \"boom\" recovered by the catch handler", got)
	}
}

func TestClassConstructionAndMemberVisibility(t *testing.T) {
	class := value.NewClass("Punto")
	class.Instance.Set("x", numeric.FromInt64(0), true)

	inst := value.NewLiveInstance(class)
	inst.Set("x", numeric.FromInt64(5), true)
	inst.Set("secreto", value.String("oculto"), false)

	v, err := getMember(inst, value.String("x"), false)
	if err != nil {
		t.Fatalf("unexpected error reading public field: %v", err)
	}
	if gn, ok := v.(numeric.Number); !ok || !gn.Equals(numeric.FromInt64(5)) {
		t.Fatalf("got %v, want 5", v)
	}

	if _, err := getMember(inst, value.String("secreto"), false); err == nil {
		t.Fatalf("expected a property-access error reading a private field from outside the class")
	}
	if v, err := getMember(inst, value.String("secreto"), true); err != nil || v != value.String("oculto") {
		t.Fatalf("expected private field readable from inside the class, got %v, %v", v, err)
	}
}

func TestSetMemberPreservesExistingVisibility(t *testing.T) {
	inst := value.NewInstance("X", nil, nil)
	inst.Set("y", numeric.FromInt64(1), true)

	// Plain reassignment (MetaIsPublic not set) must not flip an existing
	// public field private.
	if err := setMember(inst, value.String("y"), numeric.FromInt64(2), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inst.PublicSet["y"] {
		t.Fatalf("reassigning an existing public field must preserve its visibility")
	}
}

func TestAsyncPromisedAwaitUnPromise(t *testing.T) {
	asyncBody := bytecode.NewChunkGroup()
	c := asyncBody.AddConstant(value.String("listo"))
	asyncBody.WriteOp(bytecode.OpPromised, 1)
	asyncBody.WriteOp(bytecode.OpConstant, 2)
	asyncBody.WriteByte(c, 2)
	asyncBody.WriteOp(bytecode.OpReturn, 2)

	asyncFn := &value.Function{Name: "tarea", IsAsync: true, Chunk: asyncBody}

	main := bytecode.NewChunkGroup()
	fnIdx := main.AddConstant(asyncFn)
	nullIdx := main.AddConstant(value.Null)
	main.WriteOp(bytecode.OpConstant, 1)
	main.WriteByte(nullIdx, 1)
	main.WriteOp(bytecode.OpConstant, 1)
	main.WriteByte(fnIdx, 1)
	main.WriteOp(bytecode.OpCall, 1)
	main.WriteByte(0, 1)
	main.WriteOp(bytecode.OpAwait, 2)
	main.WriteOp(bytecode.OpUnPromise, 2)
	main.WriteOp(bytecode.OpReturn, 2)

	scriptFn := &value.ScriptFunction{Path: "<test>", Chunk: main, Scope: vars.NewScope()}
	mainThread := NewMainThread(scriptFn, nil, "<test>", nil)
	pm := NewProcessManager(mainThread)

	result, rerr := pm.Run()
	if rerr != nil {
		t.Fatalf("unexpected runtime error: %v", rerr)
	}
	if gs, ok := result.(value.String); !ok || gs != "listo" {
		t.Fatalf("got %v, want the async body's \"listo\" result unwrapped by UnPromise", result)
	}
}
