package compiler

import (
	"reflect"
	"testing"

	"agal/internal/ast"
	"agal/internal/bytecode"
	"agal/internal/numeric"
)

// operandWidth is the number of operand bytes following each opcode, used
// by opsOf to walk a flattened instruction stream ignoring operand values
// (sentra's vm_test.go asserts on literal byte slices; AST-driven
// compilation makes the opcode sequence the more stable thing to assert
// on instead).
var operandWidth = map[bytecode.OpCode]int{
	bytecode.OpConstant:   1,
	bytecode.OpVarDecl:    1,
	bytecode.OpConstDecl:  1,
	bytecode.OpArgDecl:    2,
	bytecode.OpSetMember:  1,
	bytecode.OpGetMember:  1,
	bytecode.OpJumpIfFalse: 2,
	bytecode.OpJump:       2,
	bytecode.OpLoop:       2,
	bytecode.OpCall:       1,
	bytecode.OpImport:     2,
	bytecode.OpExport:     1,
	bytecode.OpMakeArray:  2,
	bytecode.OpMakeMap:    2,
}

func opsOf(t *testing.T, g *bytecode.ChunkGroup) []bytecode.OpCode {
	t.Helper()
	var out []bytecode.OpCode
	for _, c := range g.Chunks {
		i := 0
		for i < len(c.Code) {
			op := bytecode.OpCode(c.Code[i])
			out = append(out, op)
			i += 1 + operandWidth[op]
		}
	}
	return out
}

func compileExprStmt(e ast.Expr) *bytecode.ChunkGroup {
	prog := &ast.Program{Stmts: []ast.Stmt{&ast.ExprStmt{Expr: e}}}
	fn := Compile("<test>", prog)
	return fn.Chunk
}

func TestCompileBinaryAddition(t *testing.T) {
	code := compileExprStmt(&ast.Binary{
		Op:    "+",
		Left:  &ast.Literal{Value: numeric.FromInt64(1)},
		Right: &ast.Literal{Value: numeric.FromInt64(2)},
	})
	got := opsOf(t, code)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals,
		bytecode.OpConstant, bytecode.OpConstant, bytecode.OpAdd,
		bytecode.OpRemoveLocals,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileIfExpressionWithoutElse(t *testing.T) {
	code := compileExprStmt(&ast.If{
		Cond: &ast.Literal{Value: true},
		Then: &ast.Literal{Value: numeric.FromInt64(1)},
	})
	got := opsOf(t, code)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals,
		bytecode.OpConstant,       // cond
		bytecode.OpJumpIfFalse,
		bytecode.OpConstant,       // then
		bytecode.OpJump,
		bytecode.OpConstant,       // implicit nada else branch
		bytecode.OpRemoveLocals,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileWhileLoopWithBreak(t *testing.T) {
	loop := &ast.WhileStmt{
		Cond: &ast.Literal{Value: true},
		Body: &ast.Block{Stmts: []ast.Stmt{&ast.BreakStmt{}}},
	}
	prog := &ast.Program{Stmts: []ast.Stmt{loop}}
	fn := Compile("<test>", prog)
	got := opsOf(t, fn.Chunk)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals, // program block
		bytecode.OpConstant,  // while cond
		bytecode.OpJumpIfFalse,
		bytecode.OpNewLocals, // while body block
		bytecode.OpBreak,
		bytecode.OpRemoveLocals, // early unwind from break
		bytecode.OpJump,         // break's forward jump
		bytecode.OpConstant,     // body tail (Never, since Break isn't an ExprStmt)
		bytecode.OpRemoveLocals, // while body block close
		bytecode.OpPop,          // discard per-iteration body value
		bytecode.OpLoop,
		bytecode.OpConstant,     // program tail seed (Never, loop isn't ExprStmt)
		bytecode.OpRemoveLocals, // program block close
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileMemberCallPutsArgsAboveCalleeAndThis(t *testing.T) {
	code := compileExprStmt(&ast.Call{
		Callee: &ast.Member{
			Object:   &ast.Identifier{Name: "obj"},
			Property: &ast.Identifier{Name: "metodo"},
		},
		Args: []ast.Expr{&ast.Literal{Value: numeric.FromInt64(1)}},
	})
	got := opsOf(t, code)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals,
		bytecode.OpConstant, bytecode.OpGetVar, // obj
		bytecode.OpCopy,                        // duplicate receiver as `this`
		bytecode.OpConstant,                    // "metodo" key
		bytecode.OpGetMember,
		bytecode.OpConstant, // arg
		bytecode.OpCall,
		bytecode.OpRemoveLocals,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileNonMemberCallPushesNullAsThis(t *testing.T) {
	code := compileExprStmt(&ast.Call{
		Callee: &ast.Identifier{Name: "f"},
	})
	got := opsOf(t, code)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals,
		bytecode.OpConstant,                    // Null `this`
		bytecode.OpConstant, bytecode.OpGetVar, // callee f
		bytecode.OpCall,
		bytecode.OpRemoveLocals,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileAsyncFunctionEmitsPromisedFirst(t *testing.T) {
	lit := &ast.FunctionLit{
		IsAsync: true,
		Body:    &ast.Block{},
	}
	// Promised must be the very first opcode of the function's own chunk,
	// not the enclosing program's (§9 design note).
	c := New("<test>")
	c.fn = &funcCtx{chunk: bytecode.NewChunkGroup()}
	body := c.compileFunctionBody(lit)
	if body.Chunks[0].Code[0] != byte(bytecode.OpPromised) {
		t.Fatalf("expected Promised as first opcode of async body, got %v", body.Chunks[0].Code[0])
	}
}

func TestCompileVarDeclConstWithoutInitializerPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for constante without initializer")
		}
	}()
	prog := &ast.Program{Stmts: []ast.Stmt{
		&ast.VarDeclStmt{Name: "x", IsConst: true},
	}}
	Compile("<test>", prog)
}

func TestCompileClassLiteralEmitsMemberInstallationPerProperty(t *testing.T) {
	lit := &ast.ClassLit{
		Name: "Animal",
		Properties: []ast.ClassProperty{
			{Key: &ast.Literal{Value: "nombre"}, Value: &ast.Literal{Value: "x"}, Public: true},
		},
	}
	code := compileExprStmt(lit)
	got := opsOf(t, code)
	want := []bytecode.OpCode{
		bytecode.OpNewLocals,
		bytecode.OpConstant,    // push class
		bytecode.OpGetInstance, // non-static: swap for instance template
		bytecode.OpConstant,    // "nombre" key
		bytecode.OpConstant,    // "x" value
		bytecode.OpInClass,
		bytecode.OpSetMember,
		bytecode.OpPop,
		bytecode.OpConstant, // push class again (expression result)
		bytecode.OpRemoveLocals,
		bytecode.OpPop, bytecode.OpConstant, bytecode.OpReturn,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
