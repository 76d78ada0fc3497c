package compiler

import (
	"agal/internal/ast"
	"agal/internal/bytecode"
	"agal/internal/value"
)

// compileFunctionBody lowers params+body into a fresh ChunkGroup (§4.3
// Function rule): ArgDecl per parameter (rest, if any, is validated to be
// last by the parser/front end — this compiler trusts Params is already
// well-formed, since AST construction is out of its scope), async
// functions prepend Promised, body (or a bare Never seed) is always
// followed by Return.
func (c *Compiler) compileFunctionBody(fn *ast.FunctionLit) *bytecode.ChunkGroup {
	outer := c.fn
	c.fn = &funcCtx{chunk: bytecode.NewChunkGroup()}
	defer func() { c.fn = outer }()

	if fn.IsAsync {
		// §9 design note: Promised must be the body's first opcode so the
		// caller receives a Promise and the rest runs in a new fiber.
		c.emit(bytecode.OpPromised)
	}
	for i, p := range fn.Params {
		nameIdx := c.chunk().AddConstant(value.String(p.Name))
		c.emit(bytecode.OpArgDecl)
		c.emitByte(nameIdx)
		meta := byte(0)
		if p.Rest && i == len(fn.Params)-1 {
			meta |= bytecode.ArgIsRest
		}
		c.emitByte(meta)
	}
	if fn.Body != nil {
		c.compileStmtsTail(fn.Body.Stmts)
	} else {
		c.emitConstant(value.Never)
	}
	c.emit(bytecode.OpReturn)
	return c.fn.chunk
}

// VisitFunctionLit compiles a function literal to its Function skeleton
// value (pushed via Constant) followed by SetScope, which the VM clones
// with the defining frame's live scope attached so every evaluation of
// the literal produces a proper closure (§4.3: "pushed and followed by
// SetScope").
func (c *Compiler) VisitFunctionLit(e *ast.FunctionLit) interface{} {
	hasRest := len(e.Params) > 0 && e.Params[len(e.Params)-1].Rest
	body := c.compileFunctionBody(e)
	fn := &value.Function{
		Name:      e.Name,
		ParamsLen: len(e.Params),
		HasRest:   hasRest,
		IsAsync:   e.IsAsync,
		Chunk:     body,
	}
	c.emitConstant(fn)
	c.emit(bytecode.OpSetScope)
	return nil
}

// VisitLazyExpr compiles `perezoso expr` into a zero-arg script function
// wrapped in a Lazy value, followed by SetScope so the thunk captures the
// defining scope (§4.3 Lazy rule).
func (c *Compiler) VisitLazyExpr(e *ast.LazyExpr) interface{} {
	outer := c.fn
	c.fn = &funcCtx{chunk: bytecode.NewChunkGroup()}
	c.CompileExpr(e.Expr)
	c.emit(bytecode.OpReturn)
	thunkChunk := c.fn.chunk
	c.fn = outer

	thunk := &value.ScriptFunction{Path: "<perezoso>", Chunk: thunkChunk}
	lazyVal := value.NewLazy(thunk)
	c.emitConstant(lazyVal)
	c.emit(bytecode.OpSetScope)
	return nil
}

// VisitClassLit compiles a class literal per §4.3's Class rule: a
// compile-time Class skeleton constant, per-property installation onto
// either the class's static map or its instance template, an optional
// ExtendClass, and a final binding via ConstDecl handled by the VarDecl
// statement that wraps this expression (classes used as statement
// declarations bind through VisitVarDeclStmt like any other constant).
func (c *Compiler) VisitClassLit(e *ast.ClassLit) interface{} {
	class := value.NewClass(e.Name)
	classIdx := c.chunk().AddConstant(class)

	for _, prop := range e.Properties {
		c.emit(bytecode.OpConstant)
		c.emitByte(classIdx)
		if !prop.Static {
			c.emit(bytecode.OpGetInstance)
		}
		c.compileClassKey(prop.Key)
		c.CompileExpr(prop.Value)
		c.emit(bytecode.OpInClass)

		meta := byte(0)
		if !prop.Static {
			meta |= bytecode.MetaIsInstance
			if prop.Public {
				meta |= bytecode.MetaIsPublic
			}
		}
		meta |= bytecode.MetaIsClassDecl
		c.emit(bytecode.OpSetMember)
		c.emitByte(meta)
		c.emit(bytecode.OpPop)
	}

	c.emit(bytecode.OpConstant)
	c.emitByte(classIdx)
	if e.Extends != nil {
		c.CompileExpr(e.Extends)
		c.emit(bytecode.OpExtendClass)
	}
	return nil
}

func (c *Compiler) compileClassKey(key ast.Expr) {
	if lit, ok := key.(*ast.Literal); ok {
		if s, ok := lit.Value.(string); ok {
			c.emitConstant(value.String(s))
			return
		}
	}
	c.CompileExpr(key)
}
