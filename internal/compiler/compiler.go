// Package compiler lowers an *ast.Program into bytecode (§4.3): one
// ChunkGroup per function/script, emitted by walking the tree with the
// visitor pattern. Grounded on sentra/internal/compiler/compiler.go's
// Visit*Expr dispatch and byte-index jump patching, generalized from a
// single flat Chunk to the ChunkGroup spill-chain and from sentra's
// handful of opcodes to the full set in internal/bytecode.
//
// The AST carries no source positions (lexing/parsing are out of this
// module's scope, per internal/ast's package doc), so every emitted
// instruction is recorded at line 0; a front end wiring real positions
// would thread them through ast nodes and into the WriteOp/WriteByte
// calls here.
package compiler

import (
	"fmt"

	"agal/internal/ast"
	"agal/internal/bytecode"
	"agal/internal/numeric"
	"agal/internal/value"
	"agal/internal/vars"
)

const line = 0

// loopCtx tracks the pending forward jump-patch lists for one enclosing
// loop. Break jumps always target just past the loop; continue jumps
// target whatever each loop form considers its "next iteration" point
// (the condition check for while/do-while, the update step for a
// C-style for) — a location only known once the rest of that loop is
// compiled, hence the forward-patch lists rather than a fixed target.
type loopCtx struct {
	breakJumps    []int
	continueJumps []int
}

// funcCtx is the compiler's state for one function/script body: its own
// ChunkGroup and loop-context stack. Nested FunctionLit/ClassLit bodies
// push a fresh funcCtx and compile into it.
type funcCtx struct {
	chunk *bytecode.ChunkGroup
	loops []*loopCtx
}

type Compiler struct {
	path string
	fn   *funcCtx
}

func New(path string) *Compiler {
	return &Compiler{path: path}
}

// Compile lowers a whole program into a ScriptFunction (§3, §4.3 Program
// rule): compiles its block, pops the block's tail value, pushes Never,
// emits Return — a program's completion value is never the last
// expression's value, only Never.
func Compile(path string, prog *ast.Program) *value.ScriptFunction {
	c := New(path)
	c.fn = &funcCtx{chunk: bytecode.NewChunkGroup()}
	c.compileStmtsTail(prog.Stmts)
	c.emit(bytecode.OpPop)
	c.emitConstant(value.Never)
	c.emit(bytecode.OpReturn)
	return &value.ScriptFunction{Path: path, Chunk: c.fn.chunk, Scope: vars.NewScope()}
}

func (c *Compiler) chunk() *bytecode.ChunkGroup { return c.fn.chunk }

func (c *Compiler) emit(op bytecode.OpCode) int { return c.chunk().WriteOp(op, line) }

func (c *Compiler) emitByte(b byte) int { return c.chunk().WriteByte(b, line) }

func (c *Compiler) emitConstant(val interface{}) {
	idx := c.chunk().AddConstant(val)
	c.emit(bytecode.OpConstant)
	c.emitByte(idx)
}

// emitJump writes op followed by a placeholder 16-bit operand, returning
// its position for a later PatchUint16 (sentra's byte-index pattern,
// generalized to flattened ChunkGroup offsets).
func (c *Compiler) emitJump(op bytecode.OpCode) int {
	c.emit(op)
	pos := c.chunk().Len()
	c.chunk().WriteUint16(0, line)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	c.patchJumpTo(pos, c.chunk().Len())
}

// patchJumpTo patches the 16-bit operand at pos (written by emitJump) to
// an explicit target rather than the current chunk position — used to
// retarget a loop's continue jumps to its condition/update point.
func (c *Compiler) patchJumpTo(pos int, target int) {
	c.chunk().PatchUint16(pos, uint16(target))
}

// emitLoop emits a backward Loop jump to start; the VM interprets the
// operand as a byte count to step ip back by, measured from just after
// the operand.
func (c *Compiler) emitLoop(start int) {
	c.emit(bytecode.OpLoop)
	pos := c.chunk().Len()
	offset := pos + 2 - start
	c.chunk().WriteUint16(uint16(offset), line)
}

// CompileExpr compiles e so its value is left on the stack.
func (c *Compiler) CompileExpr(e ast.Expr) {
	e.Accept(c)
}

func (c *Compiler) VisitLiteral(e *ast.Literal) interface{} {
	switch v := e.Value.(type) {
	case nil:
		c.emitConstant(value.Null)
	case numeric.Number:
		c.emitConstant(v)
	case string:
		c.emitConstant(value.String(v))
	case bool:
		c.emitConstant(value.FromBool(v))
	default:
		c.emitConstant(v)
	}
	return nil
}

func (c *Compiler) VisitIdentifier(e *ast.Identifier) interface{} {
	c.emitConstant(value.String(e.Name))
	c.emit(bytecode.OpGetVar)
	return nil
}

var binaryOps = map[string]bytecode.OpCode{
	"+": bytecode.OpAdd, "-": bytecode.OpSubtract, "*": bytecode.OpMultiply,
	"/": bytecode.OpDivide, "%": bytecode.OpModulo, "**": bytecode.OpExponential,
	"==": bytecode.OpEquals, ">": bytecode.OpGreaterThan, "<": bytecode.OpLessThan,
}

func (c *Compiler) VisitBinary(e *ast.Binary) interface{} {
	c.CompileExpr(e.Left)
	c.CompileExpr(e.Right)
	switch e.Op {
	case "!=":
		c.emit(bytecode.OpEquals)
		c.emit(bytecode.OpNot)
	case ">=":
		c.emit(bytecode.OpLessThan)
		c.emit(bytecode.OpNot)
	case "<=":
		c.emit(bytecode.OpGreaterThan)
		c.emit(bytecode.OpNot)
	default:
		op, ok := binaryOps[e.Op]
		if !ok {
			panic(fmt.Sprintf("compiler: unknown binary operator %q", e.Op))
		}
		c.emit(op)
	}
	return nil
}

// VisitLogical short-circuits via jumps (§4.2): `&&`/`||`/`??` do not
// evaluate Right unless needed. The compiler never emits the And/Or/
// Nullish opcodes; the VM implements them as non-short-circuit
// two-value forms.
func (c *Compiler) VisitLogical(e *ast.Logical) interface{} {
	c.CompileExpr(e.Left)
	switch e.Op {
	case "&&":
		c.emit(bytecode.OpCopy)
		jumpFalse := c.emitJump(bytecode.OpJumpIfFalse)
		c.emit(bytecode.OpPop)
		c.CompileExpr(e.Right)
		c.patchJump(jumpFalse)
	case "||":
		c.emit(bytecode.OpCopy)
		c.emit(bytecode.OpNot)
		jumpTrue := c.emitJump(bytecode.OpJumpIfFalse)
		c.emit(bytecode.OpPop)
		c.CompileExpr(e.Right)
		c.patchJump(jumpTrue)
	case "??":
		c.emit(bytecode.OpCopy)
		c.emitConstant(value.Null)
		c.emit(bytecode.OpEquals)
		jumpNotNull := c.emitJump(bytecode.OpJumpIfFalse)
		c.emit(bytecode.OpPop)
		c.CompileExpr(e.Right)
		c.patchJump(jumpNotNull)
	default:
		panic(fmt.Sprintf("compiler: unknown logical operator %q", e.Op))
	}
	return nil
}

func (c *Compiler) VisitUnary(e *ast.Unary) interface{} {
	c.CompileExpr(e.Operand)
	switch e.Op {
	case "-":
		c.emit(bytecode.OpNegate)
	case "!":
		c.emit(bytecode.OpNot)
	case "~":
		c.emit(bytecode.OpApproximate)
	default:
		panic(fmt.Sprintf("compiler: unknown unary operator %q", e.Op))
	}
	return nil
}

// VisitAssign compiles both identifier and member targets. SetVar/
// SetMember each leave the assigned value on the stack so the assignment
// itself is a usable expression (§4.3); statement context then pops it.
func (c *Compiler) VisitAssign(e *ast.Assign) interface{} {
	switch target := e.Target.(type) {
	case *ast.Identifier:
		c.CompileExpr(e.Value)
		c.emitConstant(value.String(target.Name))
		c.emit(bytecode.OpSetVar)
	case *ast.Member:
		c.CompileExpr(target.Object)
		if target.Computed {
			c.CompileExpr(target.Property)
		} else {
			ident, ok := target.Property.(*ast.Identifier)
			if !ok {
				panic("compiler: non-computed member property must be an identifier")
			}
			c.emitConstant(value.String(ident.Name))
		}
		c.CompileExpr(e.Value)
		meta := byte(0)
		if target.IsInstanceAccess {
			meta |= bytecode.MetaIsInstance
		}
		c.emit(bytecode.OpSetMember)
		c.emitByte(meta)
	default:
		panic("compiler: invalid assignment target")
	}
	return nil
}

// VisitCall compiles callee(args...) (§4.3, §4.5): `this` then callee are
// resolved first, then arguments, then Call nArgs — so at dispatch time
// the stack (bottom to top) reads [this, callee, arg1, ..., argN] and the
// VM's documented pop order (args first, then callee, then this) lines up
// with what is actually on top. When Callee is a Member, the receiver
// doubles as `this` via Copy so the callee is still reachable after the
// member load consumes its own object+key operands; a non-member callee
// pushes Null as `this` so Call's pop shape stays uniform either way.
func (c *Compiler) VisitCall(e *ast.Call) interface{} {
	flags := byte(0)
	if member, ok := e.Callee.(*ast.Member); ok {
		c.CompileExpr(member.Object)
		c.emit(bytecode.OpCopy) // duplicate receiver: one for GetMember, one as `this`
		c.compileMemberKey(member)
		lookup := byte(bytecode.MemberObjectLookup)
		if member.IsInstanceAccess {
			lookup = bytecode.MemberInstanceLookup
		}
		c.emit(bytecode.OpGetMember)
		c.emitByte(lookup)
		flags |= bytecode.CallHasThis
	} else {
		c.emitConstant(value.Null)
		c.CompileExpr(e.Callee)
	}
	for _, arg := range e.Args {
		c.CompileExpr(arg)
	}
	flags |= byte(len(e.Args)) & bytecode.CallArgsMask
	c.emit(bytecode.OpCall)
	c.emitByte(flags)
	return nil
}

func (c *Compiler) compileMemberKey(m *ast.Member) {
	if m.Computed {
		c.CompileExpr(m.Property)
		return
	}
	ident, ok := m.Property.(*ast.Identifier)
	if !ok {
		panic("compiler: non-computed member property must be an identifier")
	}
	c.emitConstant(value.String(ident.Name))
}

// VisitMember compiles a plain (non-call) member read.
func (c *Compiler) VisitMember(e *ast.Member) interface{} {
	c.CompileExpr(e.Object)
	c.compileMemberKey(e)
	flag := byte(bytecode.MemberObjectLookup)
	if e.IsInstanceAccess {
		flag = bytecode.MemberInstanceLookup
	}
	c.emit(bytecode.OpGetMember)
	c.emitByte(flag)
	return nil
}

// VisitIf compiles the expression form: both branches always leave a
// value, a missing else pushes nada (§4.3).
func (c *Compiler) VisitIf(e *ast.If) interface{} {
	c.CompileExpr(e.Cond)
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.CompileExpr(e.Then)
	endJump := c.emitJump(bytecode.OpJump)
	c.patchJump(elseJump)
	if e.Else != nil {
		c.CompileExpr(e.Else)
	} else {
		c.emitConstant(value.Never)
	}
	c.patchJump(endJump)
	return nil
}

// VisitBlock compiles { stmt; stmt; tailExpr } (§4.3 Block rule): every
// statement but the last is compiled for effect, the last is compiled as
// the block's tail value.
func (c *Compiler) VisitBlock(e *ast.Block) interface{} {
	c.compileStmtsTail(e.Stmts)
	return nil
}

func (c *Compiler) VisitArrayLit(e *ast.ArrayLit) interface{} {
	for _, el := range e.Elements {
		c.CompileExpr(el)
	}
	c.emit(bytecode.OpMakeArray)
	c.chunk().WriteUint16(uint16(len(e.Elements)), line)
	return nil
}

func (c *Compiler) VisitMapLit(e *ast.MapLit) interface{} {
	for i := range e.Keys {
		c.CompileExpr(e.Keys[i])
		c.CompileExpr(e.Values[i])
	}
	c.emit(bytecode.OpMakeMap)
	c.chunk().WriteUint16(uint16(len(e.Keys)), line)
	return nil
}

// VisitSpread compiles `...expr` as the expression followed by At, the
// splat marker later expanded at the enclosing Call/ArrayLit site (§4.2,
// §3 "Iterator ... splat marker").
func (c *Compiler) VisitSpread(e *ast.Spread) interface{} {
	c.CompileExpr(e.Expr)
	c.emit(bytecode.OpAt)
	return nil
}

func (c *Compiler) VisitRefExpr(e *ast.RefExpr) interface{} {
	c.CompileExpr(e.Expr)
	c.emit(bytecode.OpAsRef)
	return nil
}

// VisitInterpolation folds every part with string coercion and Add
// (§4.3): parts compile left to right, each non-first part gets ToString
// then Add against the accumulator.
func (c *Compiler) VisitInterpolation(e *ast.Interpolation) interface{} {
	if len(e.Parts) == 0 {
		c.emitConstant(value.String(""))
		return nil
	}
	c.CompileExpr(e.Parts[0])
	c.emit(bytecode.OpToString)
	for _, part := range e.Parts[1:] {
		c.CompileExpr(part)
		c.emit(bytecode.OpToString)
		c.emit(bytecode.OpAdd)
	}
	return nil
}

// VisitAwaitExpr compiles Await followed by UnPromise (§4.3): Await
// yields control until the promise settles, UnPromise unwraps Ok/Err into
// a plain value or a thrown error.
func (c *Compiler) VisitAwaitExpr(e *ast.AwaitExpr) interface{} {
	c.CompileExpr(e.Expr)
	c.emit(bytecode.OpAwait)
	c.emit(bytecode.OpUnPromise)
	return nil
}
