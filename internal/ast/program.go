package ast

// Program is the root of one compilation unit (a script or a module
// body). The compiler lowers it by compiling Stmts as a block, popping the
// trailing value, pushing Never, and emitting Return (§4.3 Program rule).
type Program struct {
	Stmts []Stmt
}
