package main

import (
	"agal/internal/ast"
	"agal/internal/numeric"
)

// demoProgram builds, by hand, the *ast.Program a lexer+parser would
// normally produce from:
//
//	importar ":consola" como consola
//	importar ":mate" como mate
//
//	variable area = mate.PI * 2
//	consola.pinta("circunferencia unidad:", area)
//
//	variable obtenerValor = asincrona funcion () {
//	    retornar 42
//	}
//	variable promesa = obtenerValor()
//	variable valor = esperar promesa
//	consola.pinta("valor asincrono:", valor)
//
// This module has no front end (out of scope, per internal/ast's
// package doc), so this is the only way cmd/agal has something to run.
func demoProgram() *ast.Program {
	member := func(objName, prop string) *ast.Member {
		return &ast.Member{Object: &ast.Identifier{Name: objName}, Property: &ast.Identifier{Name: prop}}
	}
	call := func(callee ast.Expr, args ...ast.Expr) *ast.Call {
		return &ast.Call{Callee: callee, Args: args}
	}

	return &ast.Program{Stmts: []ast.Stmt{
		&ast.ImportStmt{Path: ":consola", Alias: "consola"},
		&ast.ImportStmt{Path: ":mate", Alias: "mate"},

		&ast.VarDeclStmt{Name: "area", Value: &ast.Binary{
			Op:    "*",
			Left:  member("mate", "PI"),
			Right: &ast.Literal{Value: numeric.FromInt64(2)},
		}},
		&ast.ExprStmt{Expr: call(member("consola", "pinta"),
			&ast.Literal{Value: "circunferencia unidad:"},
			&ast.Identifier{Name: "area"},
		)},

		&ast.VarDeclStmt{Name: "obtenerValor", Value: &ast.FunctionLit{
			Name: "obtenerValor",
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.Literal{Value: numeric.FromInt64(42)}},
			}},
			IsAsync: true,
		}},
		&ast.VarDeclStmt{Name: "promesa", Value: call(&ast.Identifier{Name: "obtenerValor"})},
		&ast.VarDeclStmt{Name: "valor", Value: &ast.AwaitExpr{Expr: &ast.Identifier{Name: "promesa"}}},
		&ast.ExprStmt{Expr: call(member("consola", "pinta"),
			&ast.Literal{Value: "valor asincrono:"},
			&ast.Identifier{Name: "valor"},
		)},
	}}
}
