// cmd/agal/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"agal/internal/compiler"
	"agal/internal/library"
	"agal/internal/module"
	"agal/internal/native"
	"agal/internal/vm"
)

const version = "0.1.0"

// commandAliases mirrors sentra's cmd/sentra/main.go one-letter shortcuts
// (cmd/sentra/main.go's commandAliases map), trimmed to the three
// commands this runtime actually has something to run.
var commandAliases = map[string]string{
	"r": "ejecutar",
	"c": "compilar",
	"h": "ayuda",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "ayuda", "--help", "-h":
		showUsage()
	case "version", "--version", "-v":
		fmt.Println("agal", version)
	case "compilar":
		runDemo(true)
	case "ejecutar":
		runDemo(false)
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido: %s\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`agal — entorno de ejecución del lenguaje agal

Uso:
  agal ejecutar     compila y corre el programa incorporado de demostración
  agal compilar     solo compila el programa de demostración y muestra su tamaño
  agal ayuda        muestra esta ayuda
  agal version      muestra la versión

Este binario no incluye analizador léxico ni sintáctico (fuera de
alcance); "ejecutar"/"compilar" operan sobre un *ast.Program construido
a mano en cmd/agal/demo.go que ejercita :consola, :mate y el modelo
async/await del runtime. Para correr otros programas, construye su
*ast.Program y regístralo con un internal/module.Loader.RegisterProgram.`)
}

// runDemo compiles the embedded demoProgram (demo.go) and, unless
// compileOnly, runs it to completion through a fresh ProcessManager
// wired to every internal/library builtin.
func runDemo(compileOnly bool) {
	prog := demoProgram()
	fn := compiler.Compile("/demo", prog)

	if compileOnly {
		total := 0
		for _, c := range fn.Chunk.Chunks {
			total += len(c.Code)
		}
		fmt.Printf("compilado: %d fragmento(s), %d bytes de bytecode\n", len(fn.Chunk.Chunks), total)
		return
	}

	pool := native.NewPool(4, 16)
	defer pool.Close()

	loader := module.NewLoader(pool)
	library.RegisterAll(loader)

	main := vm.NewMainThread(fn, loader, "/demo", pool)
	pm := vm.NewProcessManager(main)
	if _, err := pm.Run(); err != nil {
		log.Fatalf("error en tiempo de ejecución: %v", err)
	}
}
