package value

// Instance is "a record of properties (values plus a public/private
// visibility set) associated with a class" (GLOSSARY). It backs both a
// class's own method/field template (installed during class-body
// compilation via GetInstance) and every live object built from that
// class (via the Call-dispatch make_instance routine, §4.5). Parent
// chains to the class's own parent template so GetMember flag=1 lookup
// walks "the receiver's own instance properties; its parent chain"
// (§4.4).
type Instance struct {
	Name       string
	Parent     *Instance
	Props      map[string]Value
	Order      []string
	PublicSet  map[string]bool
	OwnerClass *Class
}

func NewInstance(name string, parent *Instance, owner *Class) *Instance {
	return &Instance{
		Name:       name,
		Parent:     parent,
		Props:      map[string]Value{},
		PublicSet:  map[string]bool{},
		OwnerClass: owner,
	}
}

// Set installs a property, recording its visibility (§4.4 SetMember
// is_public bit).
func (inst *Instance) Set(key string, v Value, public bool) {
	if _, exists := inst.Props[key]; !exists {
		inst.Order = append(inst.Order, key)
	}
	inst.Props[key] = v
	if public {
		inst.PublicSet[key] = true
	} else {
		delete(inst.PublicSet, key)
	}
}

// Lookup walks this instance then its parent chain (§4.4: "the
// receiver's own instance properties; its parent chain"). insideClass
// gates visibility of non-public entries to code whose current frame's
// in_class is (a descendant of) the owning class (§4.4, §8 item 9).
func (inst *Instance) Lookup(key string, insideClass bool) (Value, bool) {
	for cur := inst; cur != nil; cur = cur.Parent {
		if v, ok := cur.Props[key]; ok {
			if cur.PublicSet[key] || insideClass {
				return v, true
			}
			return nil, false
		}
	}
	return nil, false
}

// HasOwn reports whether key exists anywhere in the chain regardless of
// visibility, used to distinguish "missing property" from "private
// property" when raising the §7 Property-access error.
func (inst *Instance) HasOwn(key string) bool {
	for cur := inst; cur != nil; cur = cur.Parent {
		if _, ok := cur.Props[key]; ok {
			return true
		}
	}
	return false
}

func (inst *Instance) displayString() string {
	return "<instancia " + inst.Name + ">"
}

// Class is the Object(Class) variant (§3, §4.4): a name, optional parent,
// a static property map, and an Instance prototype template that method
// and field declarations are installed onto during compilation of the
// class body.
type Class struct {
	Name    string
	Parent  *Class
	Statics map[string]Value
	// Instance is the prototype template; GetInstance (§4.4) pushes it
	// for non-static property installation, and make_instance (the §4.5
	// Call-dispatch routine) chains new live objects to it.
	Instance *Instance
}

func NewClass(name string) *Class {
	c := &Class{Name: name, Statics: map[string]Value{}}
	c.Instance = NewInstance(name, nil, c)
	return c
}

// IsDescendantOf reports whether c is class or a descendant of other,
// walking the parent chain (§4.4 private-visibility rule).
func (c *Class) IsDescendantOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Extend sets the parent link on both the class and its instance
// template (§4.4 ExtendClass rule: "sets the parent link both on the
// class and on its instance template").
func (c *Class) Extend(parent *Class) {
	c.Parent = parent
	c.Instance.Parent = parent.Instance
}

// NewLiveInstance builds a fresh object chained to class's instance
// template (§4.4 GetInstance/make_instance: "a new empty Instance bound
// to the class's instance prototype chain").
func NewLiveInstance(class *Class) *Instance {
	return NewInstance(class.Name, class.Instance, class)
}
