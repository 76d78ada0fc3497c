package value

// Ref is the `&expr` / AsRef wrapper (§3, §4.2): an immutable alias of
// another value. Ref is transparent to Truthy/ToDisplayString/Equals so
// code cannot distinguish a ref from its referent except by identity.
type Ref struct {
	Inner Value
}

func NewRef(v Value) *Ref { return &Ref{Inner: v} }

// Iterator marks a value as a splat source (`...expr`, the At opcode):
// Inner is expanded element-by-element wherever an Iterator appears in an
// argument list or array literal (§3, §4.3).
type Iterator struct {
	Inner Value
}

func NewIterator(v Value) *Iterator { return &Iterator{Inner: v} }

// Elements flattens Inner into a slice the VM's splat handling (flattenArgs,
// used by Call and MakeArray) appends in place of the single Iterator value.
func (it *Iterator) Elements() []Value {
	switch v := it.Inner.(type) {
	case *ArrayObj:
		return append([]Value{}, v.Items...)
	case String:
		elems := make([]Value, 0, len(v))
		for _, r := range string(v) {
			elems = append(elems, Char(r))
		}
		return elems
	default:
		return []Value{v}
	}
}
