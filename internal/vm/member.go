package vm

import (
	"fmt"

	"agal/internal/bytecode"
	"agal/internal/numeric"
	"agal/internal/value"
)

// keyName coerces a GetMember/SetMember key operand to its string form;
// computed keys may be any value, non-computed keys are always compiled
// as a String constant (compiler.go's compileMemberKey/compileClassKey).
func keyName(key value.Value) string {
	switch k := key.(type) {
	case value.String:
		return string(k)
	default:
		return value.ToDisplayString(k)
	}
}

// getMember implements the GetMember opcode (§4.2, §4.4): MapObj/
// ArrayObj/Instance/Class each resolve a property their own way; an
// Instance read honors visibility via insideClass (flag byte ==
// MemberInstanceLookup, §4.4's private-access rule).
func getMember(obj value.Value, key value.Value, insideClass bool) (value.Value, error) {
	name := keyName(key)
	switch o := obj.(type) {
	case *value.MapObj:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		return value.Null, nil
	case *value.ArrayObj:
		if name == "longitud" {
			return numeric.FromInt64(int64(o.Len())), nil
		}
		if n, ok := key.(numeric.Number); ok {
			if idx, ok2 := n.AsUsize(); ok2 {
				if v, ok3 := o.At(idx); ok3 {
					return v, nil
				}
			}
		}
		return value.Null, nil
	case *value.Instance:
		if v, ok := o.Lookup(name, insideClass); ok {
			return v, nil
		}
		if o.HasOwn(name) {
			return nil, fmt.Errorf("propiedad privada: %q", name)
		}
		return nil, fmt.Errorf("propiedad no encontrada: %q", name)
	case *value.Class:
		if v, ok := o.Statics[name]; ok {
			return v, nil
		}
		return value.Null, nil
	default:
		return nil, fmt.Errorf("no se puede leer propiedades de %s", value.TypeName(obj))
	}
}

// setMember implements the SetMember opcode (§4.2, §4.4). MetaIsInstance/
// MetaIsClassDecl are compile-time bookkeeping bits the VM does not need
// (the receiver's own concrete type already disambiguates Class-static
// vs. Instance-field writes); only MetaIsPublic is consulted, and only to
// decide the visibility of a *new* property — rewriting an existing one
// preserves whatever visibility it already had unless MetaIsPublic
// explicitly says otherwise (plain `obj.x = v` outside a class body must
// not silently make a public field private again).
func setMember(obj value.Value, key value.Value, val value.Value, meta byte) error {
	name := keyName(key)
	switch o := obj.(type) {
	case *value.MapObj:
		o.Set(name, val)
		return nil
	case *value.ArrayObj:
		n, ok := key.(numeric.Number)
		if !ok {
			return fmt.Errorf("índice de lista inválido")
		}
		idx, ok2 := n.AsUsize()
		if !ok2 || !o.Set(idx, val) {
			return fmt.Errorf("índice fuera de rango")
		}
		return nil
	case *value.Instance:
		public := meta&bytecode.MetaIsPublic != 0
		if !public {
			if _, exists := o.Props[name]; exists {
				public = o.PublicSet[name]
			}
		}
		o.Set(name, val, public)
		return nil
	case *value.Class:
		if o.Statics == nil {
			o.Statics = map[string]value.Value{}
		}
		o.Statics[name] = val
		return nil
	default:
		return fmt.Errorf("no se puede asignar propiedades de %s", value.TypeName(obj))
	}
}
