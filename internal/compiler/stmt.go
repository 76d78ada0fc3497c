package compiler

import (
	"agal/internal/ast"
	"agal/internal/bytecode"
	"agal/internal/numeric"
	"agal/internal/value"
)

// compileStmtsTail lowers a statement sequence the way §4.3's Block rule
// describes: NewLocals, each statement but the last compiled for effect,
// the last compiled as the block's tail value (an ExprStmt's value is
// left unpopped; anything else yields Never), RemoveLocals.
func (c *Compiler) compileStmtsTail(stmts []ast.Stmt) {
	c.emit(bytecode.OpNewLocals)
	if len(stmts) == 0 {
		c.emitConstant(value.Never)
	} else {
		for _, s := range stmts[:len(stmts)-1] {
			c.compileStmtEffect(s)
		}
		last := stmts[len(stmts)-1]
		if tail, ok := last.(*ast.ExprStmt); ok {
			c.CompileExpr(tail.Expr)
		} else {
			c.compileStmtEffect(last)
			c.emitConstant(value.Never)
		}
	}
	c.emit(bytecode.OpRemoveLocals)
}

// compileStmtEffect compiles s for its side effects only; every
// StmtVisitor method below is responsible for leaving the evaluation
// stack exactly as it found it.
func (c *Compiler) compileStmtEffect(s ast.Stmt) {
	s.Accept(c)
}

func (c *Compiler) VisitExprStmt(s *ast.ExprStmt) interface{} {
	c.CompileExpr(s.Expr)
	c.emit(bytecode.OpPop)
	return nil
}

// VisitVarDeclStmt compiles `variable x = expr` / `constante x = expr`
// (§4.3): VarDecl/ConstDecl itself consumes the computed value.
func (c *Compiler) VisitVarDeclStmt(s *ast.VarDeclStmt) interface{} {
	if s.Value != nil {
		c.CompileExpr(s.Value)
	} else {
		if s.IsConst {
			panic("compiler: constante without an initializer")
		}
		c.emitConstant(value.Never)
	}
	nameIdx := c.chunk().AddConstant(value.String(s.Name))
	if s.IsConst {
		c.emit(bytecode.OpConstDecl)
	} else {
		c.emit(bytecode.OpVarDecl)
	}
	c.emitByte(nameIdx)
	return nil
}

func (c *Compiler) VisitWhileStmt(s *ast.WhileStmt) interface{} {
	loopStart := c.chunk().Len()
	c.CompileExpr(s.Cond)
	exitJump := c.emitJump(bytecode.OpJumpIfFalse)

	lc := &loopCtx{}
	c.fn.loops = append(c.fn.loops, lc)
	c.compileStmtsTail(s.Body.Stmts)
	c.emit(bytecode.OpPop)
	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, loopStart)
	}
	return nil
}

func (c *Compiler) VisitDoWhileStmt(s *ast.DoWhileStmt) interface{} {
	bodyStart := c.chunk().Len()

	lc := &loopCtx{}
	c.fn.loops = append(c.fn.loops, lc)
	c.compileStmtsTail(s.Body.Stmts)
	c.emit(bytecode.OpPop)
	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]

	condStart := c.chunk().Len()
	c.CompileExpr(s.Cond)
	c.emit(bytecode.OpJumpIfFalse)
	exitPos := c.chunk().Len()
	c.chunk().WriteUint16(0, line)
	c.emitLoop(bodyStart)
	c.patchJump(exitPos)

	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, condStart)
	}
	return nil
}

func (c *Compiler) VisitForStmt(s *ast.ForStmt) interface{} {
	c.emit(bytecode.OpNewLocals)
	if s.Init != nil {
		c.compileStmtEffect(s.Init)
	}

	condStart := c.chunk().Len()
	hasCond := s.Cond != nil
	var exitJump int
	if hasCond {
		c.CompileExpr(s.Cond)
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
	}

	lc := &loopCtx{}
	c.fn.loops = append(c.fn.loops, lc)
	c.compileStmtsTail(s.Body.Stmts)
	c.emit(bytecode.OpPop)
	c.fn.loops = c.fn.loops[:len(c.fn.loops)-1]

	updateStart := c.chunk().Len()
	if s.Update != nil {
		c.CompileExpr(s.Update)
		c.emit(bytecode.OpPop)
	}
	c.emitLoop(condStart)
	if hasCond {
		c.patchJump(exitJump)
	}
	for _, j := range lc.breakJumps {
		c.patchJump(j)
	}
	for _, j := range lc.continueJumps {
		c.patchJumpTo(j, updateStart)
	}
	c.emit(bytecode.OpRemoveLocals)
	return nil
}

// VisitForInStmt desugars iteration over the collection into a synthetic
// index-counted while loop, reusing the ordinary Member/Binary/Assign
// compilation rather than hand-emitting bytecode twice (supplemented from
// original_source, not present in spec.md's opcode set itself: §4.2 has
// no dedicated iteration opcode, so a generic Array index + "longitud"
// member length probe realizes it, matching the Member/Call machinery
// every other expression already goes through).
func (c *Compiler) VisitForInStmt(s *ast.ForInStmt) interface{} {
	const srcName = "$origen"
	const idxName = "$indice"

	body := append([]ast.Stmt{
		&ast.VarDeclStmt{Name: s.Var, Value: &ast.Member{
			Object:   &ast.Identifier{Name: srcName},
			Property: &ast.Identifier{Name: idxName},
			Computed: true,
		}},
	}, s.Body.Stmts...)
	body = append(body, &ast.ExprStmt{Expr: &ast.Assign{
		Target: &ast.Identifier{Name: idxName},
		Value: &ast.Binary{Op: "+",
			Left:  &ast.Identifier{Name: idxName},
			Right: &ast.Literal{Value: numeric.FromInt64(1)},
		},
	}})

	wrapped := &ast.Block{Stmts: []ast.Stmt{
		&ast.VarDeclStmt{Name: srcName, Value: s.Collection},
		&ast.VarDeclStmt{Name: idxName, Value: &ast.Literal{Value: numeric.Zero()}},
		&ast.WhileStmt{
			Cond: &ast.Binary{Op: "<",
				Left: &ast.Identifier{Name: idxName},
				Right: &ast.Member{
					Object:   &ast.Identifier{Name: srcName},
					Property: &ast.Identifier{Name: "longitud"},
				},
			},
			Body: &ast.Block{Stmts: body},
		},
	}}
	c.CompileExpr(wrapped)
	c.emit(bytecode.OpPop)
	return nil
}

// compileBreakStmt/compileContinueStmt: inside a loop, these become the
// compiler-patched jumps §4.3 describes (an early RemoveLocals unwinds
// the body scope the mid-body jump would otherwise skip); outside any
// loop there is no enclosing loopCtx to patch against, so the bare
// opcode is left in place and the VM dispatches it as a no-op.
func (c *Compiler) VisitBreakStmt(s *ast.BreakStmt) interface{} {
	c.emit(bytecode.OpBreak)
	if len(c.fn.loops) == 0 {
		return nil
	}
	lc := c.fn.loops[len(c.fn.loops)-1]
	c.emit(bytecode.OpRemoveLocals)
	pos := c.emitJump(bytecode.OpJump)
	lc.breakJumps = append(lc.breakJumps, pos)
	return nil
}

func (c *Compiler) VisitContinueStmt(s *ast.ContinueStmt) interface{} {
	c.emit(bytecode.OpContinue)
	if len(c.fn.loops) == 0 {
		return nil
	}
	lc := c.fn.loops[len(c.fn.loops)-1]
	c.emit(bytecode.OpRemoveLocals)
	pos := c.emitJump(bytecode.OpJump)
	lc.continueJumps = append(lc.continueJumps, pos)
	return nil
}

func (c *Compiler) VisitReturnStmt(s *ast.ReturnStmt) interface{} {
	if s.Value != nil {
		c.CompileExpr(s.Value)
	} else {
		c.emitConstant(value.Never)
	}
	c.emit(bytecode.OpReturn)
	return nil
}

// VisitImportStmt compiles module-fiber-only Import (§4.3, §4.8): path
// string, meta/name operands, then discards the pushed module value as a
// statement (a binding, if requested via Alias, has already happened
// inside the opcode).
func (c *Compiler) VisitImportStmt(s *ast.ImportStmt) interface{} {
	c.emitConstant(value.String(s.Path))
	meta := byte(0)
	if s.Alias != "" {
		meta |= bytecode.ImportAlias
	}
	if s.Lazy {
		meta |= bytecode.ImportLazy
	}
	nameIdx := c.chunk().AddConstant(value.String(s.Alias))
	c.emit(bytecode.OpImport)
	c.emitByte(meta)
	c.emitByte(nameIdx)
	c.emit(bytecode.OpPop)
	return nil
}

// VisitExportStmt compiles the inner declaration (binding the name
// locally) then Export nIdx, which re-reads that binding by name at
// runtime rather than needing the value pushed again (§4.3, §4.8).
func (c *Compiler) VisitExportStmt(s *ast.ExportStmt) interface{} {
	c.compileStmtEffect(s.Decl)
	nameIdx := c.chunk().AddConstant(value.String(s.Name))
	c.emit(bytecode.OpExport)
	c.emitByte(nameIdx)
	return nil
}

// VisitTryStmt compiles try/catch as two inner zero/one-arg script
// functions (§4.3): a catch binding becomes the catch function's sole
// parameter.
func (c *Compiler) VisitTryStmt(s *ast.TryStmt) interface{} {
	var tryStmts []ast.Stmt
	if s.Try != nil {
		tryStmts = s.Try.Stmts
	}
	tryFn := c.compileInnerFunction("<intentar>", tryStmts, nil)

	var catchStmts []ast.Stmt
	if s.Catch != nil {
		catchStmts = s.Catch.Stmts
	}
	var catchParams []ast.Param
	if s.CatchVar != "" {
		catchParams = []ast.Param{{Name: s.CatchVar}}
	}
	catchFn := c.compileInnerFunction("<capturar>", catchStmts, catchParams)

	c.emitConstant(tryFn)
	c.emit(bytecode.OpSetScope)
	c.emitConstant(catchFn)
	c.emit(bytecode.OpSetScope)
	c.emit(bytecode.OpTry)
	return nil
}

// compileInnerFunction compiles stmts (with optional params) into its own
// ChunkGroup, used by Try (§4.3) and available to any other construct
// needing a synthesized sub-function.
func (c *Compiler) compileInnerFunction(label string, stmts []ast.Stmt, params []ast.Param) *value.Function {
	outer := c.fn
	c.fn = &funcCtx{chunk: bytecode.NewChunkGroup()}
	for _, p := range params {
		nameIdx := c.chunk().AddConstant(value.String(p.Name))
		c.emit(bytecode.OpArgDecl)
		c.emitByte(nameIdx)
		c.emitByte(0)
	}
	c.compileStmtsTail(stmts)
	c.emit(bytecode.OpReturn)
	body := c.fn.chunk
	c.fn = outer
	return &value.Function{Name: label, ParamsLen: len(params), Chunk: body}
}

func (c *Compiler) VisitThrowStmt(s *ast.ThrowStmt) interface{} {
	c.CompileExpr(s.Value)
	c.emit(bytecode.OpThrow)
	return nil
}
