// Package value implements the tagged value universe of §3: primitives,
// the Map/Array/Function/Class object family, and the Iterator/Ref/
// Promise/Lazy wrapper kinds. Grounded on sentra/internal/vm/value.go's
// `type Value interface{}` idea, generalized to the full value set §3
// enumerates (sentra/internal/vm/value.go only had a bare Function/PrintValue).
package value

import (
	"fmt"
	"strings"

	"agal/internal/numeric"
)

// Value is any runtime value. Concrete kinds are: numeric.Number, String,
// Char, Byte, Bool, Null, Never, *MapObj, *ArrayObj, Callable
// (Script/Function/Native), *Class, *Instance, *Iterator, *Ref, *Promise,
// *Lazy.
type Value interface{}

type String string
type Char rune
type Byte byte
type Bool bool

// nullType and neverType are distinct absence markers (§3: "Null ...and
// Never ...are distinct").
type nullType struct{}
type neverType struct{}

func (nullType) String() string  { return "nulo" }
func (neverType) String() string { return "nada" }

var (
	Null  Value = nullType{}
	Never Value = neverType{}
	True  Value = Bool(true)
	False Value = Bool(false)
)

func IsNull(v Value) bool  { _, ok := v.(nullType); return ok }
func IsNever(v Value) bool { _, ok := v.(neverType); return ok }

func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Truthy implements the coercion used by JumpIfFalse, ToBoolean, And/Or
// (§4.2). Null, Never, false, zero numbers, zero Char/Byte, empty
// strings/arrays/maps and instances with no own properties are falsy; a
// Ref or Iterator takes the truthiness of its inner value; everything
// else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nullType, neverType:
		return false
	case Bool:
		return bool(t)
	case numeric.Number:
		return t.IsTruthy()
	case String:
		return len(t) > 0
	case Char:
		return t != 0
	case Byte:
		return t != 0
	case *ArrayObj:
		return len(t.Items) > 0
	case *MapObj:
		return len(t.Props) > 0
	case *Instance:
		return len(t.Props) > 0
	case *Ref:
		return Truthy(t.Inner)
	case *Iterator:
		return Truthy(t.Inner)
	default:
		return true
	}
}

// ToDisplayString implements the ToString opcode / string coercion used by
// interpolation, Add-on-strings, and ConsoleOut (§4.2, §6).
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case nullType:
		return "nulo"
	case neverType:
		return "nada"
	case Bool:
		if bool(t) {
			return "cierto"
		}
		return "falso"
	case numeric.Number:
		return t.String()
	case String:
		return string(t)
	case Char:
		return string(rune(t))
	case Byte:
		return fmt.Sprintf("%d", byte(t))
	case *ArrayObj:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = ToDisplayString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *MapObj:
		return t.displayString()
	case *Instance:
		return t.displayString()
	case *Class:
		return fmt.Sprintf("<clase %s>", t.Name)
	case *ScriptFunction:
		return "<script>"
	case *Function:
		return fmt.Sprintf("<fn %s>", t.Name)
	case *NativeFunction:
		return fmt.Sprintf("<fn nativa %s>", t.Name)
	case *Ref:
		return ToDisplayString(t.Inner)
	case *Iterator:
		return ToDisplayString(t.Inner)
	case *Promise:
		return "<promesa>"
	case *Lazy:
		return "<perezoso>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TypeName returns the type name of v, used in runtime error messages
// (§4, reflection mentioned in the Value & Object component description).
func TypeName(v Value) string {
	switch v.(type) {
	case nullType:
		return "Nulo"
	case neverType:
		return "Nada"
	case Bool:
		return "Booleano"
	case numeric.Number:
		return "Numero"
	case String:
		return "Cadena"
	case Char:
		return "Caracter"
	case Byte:
		return "Byte"
	case *ArrayObj:
		return "Lista"
	case *MapObj:
		return "Objeto"
	case *Instance:
		return "Instancia"
	case *Class:
		return "Clase"
	case *ScriptFunction, *Function, *NativeFunction:
		return "Funcion"
	case *Ref:
		return "Referencia"
	case *Iterator:
		return "Iterador"
	case *Promise:
		return "Promesa"
	case *Lazy:
		return "Perezoso"
	default:
		return "Desconocido"
	}
}

// Equals implements the Equals opcode: numbers compare by canonical
// string form (§3), everything else by identity or structural equality as
// appropriate to its kind.
func Equals(a, b Value) bool {
	an, aok := a.(numeric.Number)
	bn, bok := b.(numeric.Number)
	if aok && bok {
		return an.Equals(bn)
	}
	if ar, ok := a.(*Ref); ok {
		a = ar.Inner
	}
	if br, ok := b.(*Ref); ok {
		b = br.Inner
	}
	switch at := a.(type) {
	case String:
		bt, ok := b.(String)
		return ok && at == bt
	case Char:
		bt, ok := b.(Char)
		return ok && at == bt
	case Byte:
		bt, ok := b.(Byte)
		return ok && at == bt
	case Bool:
		bt, ok := b.(Bool)
		return ok && at == bt
	case nullType:
		_, ok := b.(nullType)
		return ok
	case neverType:
		_, ok := b.(neverType)
		return ok
	default:
		return a == b // identity equality for composite/reference kinds
	}
}
