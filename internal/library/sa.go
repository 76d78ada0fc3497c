package library

import (
	"os"
	"path/filepath"

	"agal/internal/value"
)

// NewSa builds the `:sa` (sistema de archivos) module (§4's DOMAIN
// STACK: stdlib os/path/filepath). Grounded on
// sentra/internal/filesystem.FileSystemModule's os/path/filepath use,
// trimmed from its security-scanning baseline/watcher machinery down to
// the plain read/write/list operations §4 lists. Every call that touches
// disk is submitted to ctx.RunBlocking (§9's native thread pool note)
// rather than running inline on the VM's own goroutine.
func NewSa() value.Value {
	m := value.NewMapObj()
	m.Set("leer_archivo", nativeFn("leer_archivo", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("leer_archivo", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			return value.String(data), nil
		}), nil
	}))
	m.Set("escribir_archivo", nativeFn("escribir_archivo", 2, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		contents, ok2 := strArg(args, 1)
		if !ok || !ok2 {
			return nil, errArg("escribir_archivo", "una ruta y un contenido")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
				return nil, err
			}
			return value.Never, nil
		}), nil
	}))
	m.Set("leer_carpeta", nativeFn("leer_carpeta", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("leer_carpeta", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, err
			}
			items := make([]value.Value, len(entries))
			for i, e := range entries {
				items[i] = value.String(e.Name())
			}
			return value.NewArrayObj(items...), nil
		}), nil
	}))
	m.Set("crear_archivo", nativeFn("crear_archivo", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("crear_archivo", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return nil, err
			}
			f.Close()
			return value.Never, nil
		}), nil
	}))
	m.Set("borrar_archivo", nativeFn("borrar_archivo", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("borrar_archivo", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			return value.Never, os.Remove(path)
		}), nil
	}))
	m.Set("crear_carpeta", nativeFn("crear_carpeta", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("crear_carpeta", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			return value.Never, os.MkdirAll(path, 0o755)
		}), nil
	}))
	m.Set("borrar_carpeta", nativeFn("borrar_carpeta", 1, func(_ value.Value, args []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("borrar_carpeta", "una ruta")
		}
		return ctx.RunBlocking(func() (value.Value, error) {
			return value.Never, os.RemoveAll(path)
		}), nil
	}))
	m.Set("Ruta", newRutaClass())
	return m
}

func strArg(args []value.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(value.String)
	return string(s), ok
}

// newRutaClass builds the `Ruta` path-value wrapper (§4's supplemented
// feature list: present in original_source/src/tokens.rs's `:sa` export
// table, dropped by the distillation). Its methods work on the stored
// path string; es_archivo calls os.Stat inline rather than through
// RunBlocking, and the others are pure string functions.
func newRutaClass() *value.Class {
	class := value.NewClass("Ruta")
	inst := class.Instance
	inst.Set("__constructor__", nativeMethod("Ruta", 1, func(this value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		path, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("Ruta", "una ruta")
		}
		inst, ok := this.(*value.Instance)
		if !ok {
			return nil, errArg("Ruta", "una instancia")
		}
		inst.Set("valor", value.String(path), false)
		return value.Never, nil
	}), true)
	inst.Set("es_archivo", nativeMethod("es_archivo", 0, func(this value.Value, _ []value.Value, ctx value.NativeContext, _ interface{}) (value.Value, error) {
		path, err := rutaValue(this)
		if err != nil {
			return nil, err
		}
		info, statErr := os.Stat(path)
		return value.FromBool(statErr == nil && !info.IsDir()), nil
	}), true)
	inst.Set("obtener_padre", nativeMethod("obtener_padre", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		path, err := rutaValue(this)
		if err != nil {
			return nil, err
		}
		return value.String(filepath.Dir(path)), nil
	}), true)
	inst.Set("obtener_nombre", nativeMethod("obtener_nombre", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		path, err := rutaValue(this)
		if err != nil {
			return nil, err
		}
		return value.String(filepath.Base(path)), nil
	}), true)
	inst.Set("obtener_extension", nativeMethod("obtener_extension", 0, func(this value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		path, err := rutaValue(this)
		if err != nil {
			return nil, err
		}
		return value.String(filepath.Ext(path)), nil
	}), true)
	return class
}

func rutaValue(this value.Value) (string, error) {
	inst, ok := this.(*value.Instance)
	if !ok {
		return "", errArg("Ruta", "una instancia")
	}
	v, ok := inst.Lookup("valor", true)
	if !ok {
		return "", errArg("Ruta", "una instancia inicializada")
	}
	s, ok := v.(value.String)
	if !ok {
		return "", errArg("Ruta", "un valor de texto")
	}
	return string(s), nil
}

func nativeMethod(name string, arity int, fn value.NativeFunc) *value.NativeFunction {
	return nativeFn(name, arity, fn)
}
