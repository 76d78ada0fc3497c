package value

import "strings"

// MapObj is the Object(Map) variant for plain object literals (§3). Live
// class objects are represented by *Instance instead (see class.go) since
// they carry visibility metadata a plain map literal never needs.
type MapObj struct {
	Order []string
	Props map[string]Value
}

func NewMapObj() *MapObj {
	return &MapObj{Props: map[string]Value{}}
}

func (m *MapObj) Get(key string) (Value, bool) {
	v, ok := m.Props[key]
	return v, ok
}

func (m *MapObj) Set(key string, v Value) {
	if _, exists := m.Props[key]; !exists {
		m.Order = append(m.Order, key)
	}
	m.Props[key] = v
}

func (m *MapObj) Delete(key string) {
	if _, exists := m.Props[key]; !exists {
		return
	}
	delete(m.Props, key)
	for i, k := range m.Order {
		if k == key {
			m.Order = append(m.Order[:i], m.Order[i+1:]...)
			break
		}
	}
}

func (m *MapObj) displayString() string {
	parts := make([]string, 0, len(m.Order))
	for _, k := range m.Order {
		parts = append(parts, k+": "+ToDisplayString(m.Props[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
