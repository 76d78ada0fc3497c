package library

import (
	"github.com/google/uuid"

	"agal/internal/value"
)

// NewConstructores builds the `:constructores` module (§4's DOMAIN
// STACK: `github.com/google/uuid`). Grounded on sentra's own use of
// google/uuid for session/request identifiers (internal/server), reused
// here for Identificador's id_v4/id_v7, plus the Cadena/Lista helper
// constructors §4 supplements from original_source's builtins table.
func NewConstructores() value.Value {
	m := value.NewMapObj()
	m.Set("Identificador", newIdentificadorModule())
	m.Set("Cadena", nativeFn("Cadena", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		if len(args) == 0 {
			return value.String(""), nil
		}
		return value.String(value.ToDisplayString(args[0])), nil
	}))
	m.Set("Lista", nativeFn("Lista", -1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		return value.NewArrayObj(args...), nil
	}))
	return m
}

func newIdentificadorModule() value.Value {
	m := value.NewMapObj()
	m.Set("v4", nativeFn("v4", 0, func(_ value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		return value.String(uuid.NewString()), nil
	}))
	m.Set("v7", nativeFn("v7", 0, func(_ value.Value, _ []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		return value.String(id.String()), nil
	}))
	m.Set("es_valido", nativeFn("es_valido", 1, func(_ value.Value, args []value.Value, _ value.NativeContext, _ interface{}) (value.Value, error) {
		text, ok := strArg(args, 0)
		if !ok {
			return nil, errArg("es_valido", "una cadena")
		}
		_, err := uuid.Parse(text)
		return value.FromBool(err == nil), nil
	}))
	return m
}
