// Package module implements the Import/Export module system of §4.8:
// path resolution (":"-prefixed names resolve against a built-in
// registry, everything else against the importing module's own logical
// path), a module-as-object export model, and a per-resolved-path cache
// so importing the same module twice returns the same value rather than
// re-running its body. Grounded on sentra/internal/vm/vm.go's module
// cache idea, generalized to a real Resolve/Export split and wired to
// internal/compiler + internal/vm to actually run an imported module's
// top-level script (sentra ran modules inline, without a
// front-door Loader type).
package module

import (
	"fmt"
	gopath "path"

	"agal/internal/ast"
	"agal/internal/compiler"
	"agal/internal/value"
	"agal/internal/vm"
)

// Loader implements vm.ModuleSystem. It has no lexer/parser (out of
// scope, per internal/ast's package doc) so relative-path modules must
// be pre-registered as parsed programs via RegisterProgram; built-ins
// are pre-registered as value factories via RegisterBuiltin.
type Loader struct {
	builtins map[string]func() value.Value
	programs map[string]*ast.Program
	cache    map[string]value.Value
	exports  map[string]*value.MapObj
	pool     vm.BlockingRunner
}

func NewLoader(pool vm.BlockingRunner) *Loader {
	return &Loader{
		builtins: map[string]func() value.Value{},
		programs: map[string]*ast.Program{},
		cache:    map[string]value.Value{},
		exports:  map[string]*value.MapObj{},
		pool:     pool,
	}
}

// RegisterBuiltin wires a ":nombre"-style library (§4.8's built-in
// registry; internal/library's packages call this once at startup).
func (l *Loader) RegisterBuiltin(name string, factory func() value.Value) {
	l.builtins[name] = factory
}

// RegisterProgram makes a parsed program importable at resolvedPath
// (the caller — typically cmd/agal — is responsible for turning source
// text into an *ast.Program and choosing its logical path, since parsing
// is outside this module's scope).
func (l *Loader) RegisterProgram(resolvedPath string, prog *ast.Program) {
	l.programs[resolvedPath] = prog
}

// resolvePath mirrors §4.8's rule: a ":"-prefixed path names a built-in
// directly; anything else is resolved relative to the importing module's
// own directory, the way a filesystem-style `require` would, but over
// the logical "/"-separated path space rather than real files.
func resolvePath(path, fromPath string) string {
	if len(path) > 0 && path[0] == ':' {
		return path
	}
	if len(path) > 0 && path[0] == '/' {
		return gopath.Clean(path)
	}
	return gopath.Clean(gopath.Join(gopath.Dir(fromPath), path))
}

// Resolve implements vm.ModuleSystem (§4.8): returns the cached module
// value if this exact resolved path was already run, otherwise runs it
// (a built-in factory, or a registered program's top-level script) and
// caches the result before returning it.
func (l *Loader) Resolve(path, fromPath string) (value.Value, error) {
	resolved := resolvePath(path, fromPath)

	if cached, ok := l.cache[resolved]; ok {
		return cached, nil
	}

	if resolved[0] == ':' {
		factory, ok := l.builtins[resolved]
		if !ok {
			return nil, fmt.Errorf("biblioteca incorporada no encontrada: %q", resolved)
		}
		v := factory()
		l.cache[resolved] = v
		return v, nil
	}

	prog, ok := l.programs[resolved]
	if !ok {
		return nil, fmt.Errorf("módulo no encontrado: %q", resolved)
	}

	exportBag := value.NewMapObj()
	l.exports[resolved] = exportBag

	fn := compiler.Compile(resolved, prog)
	main := vm.NewMainThread(fn, l, resolved, l.pool)
	pm := vm.NewProcessManager(main)
	if _, err := pm.Run(); err != nil {
		delete(l.exports, resolved)
		return nil, fmt.Errorf("error al importar %q: %w", resolved, err)
	}

	delete(l.exports, resolved)
	l.cache[resolved] = exportBag
	return exportBag, nil
}

// Export implements vm.ModuleSystem (§4.8's Export rule): installs name
// into the exports bag of the module currently running at fromPath. A
// call from a module not currently mid-Resolve (shouldn't happen via the
// compiler's own emission, but defensive against a malformed program) is
// silently dropped rather than panicking.
func (l *Loader) Export(fromPath, name string, v value.Value) {
	bag, ok := l.exports[fromPath]
	if !ok {
		return
	}
	bag.Set(name, v)
}
