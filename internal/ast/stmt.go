package ast

// Stmt is any node compiled for effect; a Block's trailing statement is
// allowed to be an ExprStmt whose value is NOT popped (the block's tail
// value), everything else is popped (§4.3 Block rule).
type Stmt interface {
	Accept(v StmtVisitor) interface{}
}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	Expr Expr
}

func (s *ExprStmt) Accept(v StmtVisitor) interface{} { return v.VisitExprStmt(s) }

// VarDeclStmt is `variable x = expr` or `constante x = expr`. A const
// declaration without an initializer is a compile error (§4.3).
type VarDeclStmt struct {
	Name    string
	Value   Expr // nil => compiles Never
	IsConst bool
}

func (s *VarDeclStmt) Accept(v StmtVisitor) interface{} { return v.VisitVarDeclStmt(s) }

// WhileStmt / DoWhileStmt / ForStmt bodies are wrapped in NewLocals/
// RemoveLocals by the compiler (§4.3).
type WhileStmt struct {
	Cond Expr
	Body *Block
}

func (s *WhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitWhileStmt(s) }

type DoWhileStmt struct {
	Body *Block
	Cond Expr
}

func (s *DoWhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitDoWhileStmt(s) }

type ForStmt struct {
	Init   Stmt // may be nil
	Cond   Expr // may be nil (treated as always-true)
	Update Expr // may be nil
	Body   *Block
}

func (s *ForStmt) Accept(v StmtVisitor) interface{} { return v.VisitForStmt(s) }

// ForInStmt iterates an Array by index, from 0 up to its `longitud`;
// other collections, Iterator values included, are not expanded.
// Supplemented from original_source (not
// named explicitly in spec.md but present in the dropped distillation).
type ForInStmt struct {
	Var        string
	Collection Expr
	Body       *Block
}

func (s *ForInStmt) Accept(v StmtVisitor) interface{} { return v.VisitForInStmt(s) }

type BreakStmt struct{}

func (s *BreakStmt) Accept(v StmtVisitor) interface{} { return v.VisitBreakStmt(s) }

type ContinueStmt struct{}

func (s *ContinueStmt) Accept(v StmtVisitor) interface{} { return v.VisitContinueStmt(s) }

// ReturnStmt; Value nil compiles a Never seed before Return (§4.3).
type ReturnStmt struct {
	Value Expr
}

func (s *ReturnStmt) Accept(v StmtVisitor) interface{} { return v.VisitReturnStmt(s) }

// ImportStmt is module-fiber-only (§4.8); MetaByte is derived by the
// compiler from Alias/Lazy, not stored here.
type ImportStmt struct {
	Path  string
	Alias string // "" => no binding requested
	Lazy  bool
}

func (s *ImportStmt) Accept(v StmtVisitor) interface{} { return v.VisitImportStmt(s) }

// ExportStmt re-exposes the name bound by Decl on the module's export
// object (§4.3, §4.8).
type ExportStmt struct {
	Name string
	Decl Stmt
}

func (s *ExportStmt) Accept(v StmtVisitor) interface{} { return v.VisitExportStmt(s) }

// TryStmt compiles Try/Catch each into their own zero/one-arg script
// function and emits a single Try opcode (§4.3).
type TryStmt struct {
	Try      *Block
	CatchVar string // "" => catch takes no argument
	Catch    *Block
}

func (s *TryStmt) Accept(v StmtVisitor) interface{} { return v.VisitTryStmt(s) }

// ThrowStmt raises a runtime error from the string coercion of Value.
type ThrowStmt struct {
	Value Expr
}

func (s *ThrowStmt) Accept(v StmtVisitor) interface{} { return v.VisitThrowStmt(s) }

// StmtVisitor dispatches over every statement kind.
type StmtVisitor interface {
	VisitExprStmt(s *ExprStmt) interface{}
	VisitVarDeclStmt(s *VarDeclStmt) interface{}
	VisitWhileStmt(s *WhileStmt) interface{}
	VisitDoWhileStmt(s *DoWhileStmt) interface{}
	VisitForStmt(s *ForStmt) interface{}
	VisitForInStmt(s *ForInStmt) interface{}
	VisitBreakStmt(s *BreakStmt) interface{}
	VisitContinueStmt(s *ContinueStmt) interface{}
	VisitReturnStmt(s *ReturnStmt) interface{}
	VisitImportStmt(s *ImportStmt) interface{}
	VisitExportStmt(s *ExportStmt) interface{}
	VisitTryStmt(s *TryStmt) interface{}
	VisitThrowStmt(s *ThrowStmt) interface{}
}
