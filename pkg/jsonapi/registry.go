package jsonapi

// Type describes a declared resource variant.
type Type struct {
	// Name is the wire type tag, eg "projects". Collection requests go to
	// "/<Name>" and item requests to "/<Name>/<id>".
	Name string

	// Editable lists the attribute and relationship names transmitted by
	// Resource.Save when no explicit field list is given on an update.
	Editable []string
}

// Registry maps wire type names to the Type declared for them. It is
// written at startup and read on every decode; concurrent registration is
// not supported.
type Registry struct {
	types map[string]Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register declares a resource type. Re-registration overwrites.
func (r *Registry) Register(types ...Type) {
	for _, t := range types {
		r.types[t.Name] = t
	}
}

// Resolve returns the declared Type for a name, or a generic fallback that
// retains the type tag. Unregistered types stay usable for forward
// compatibility with server types the client hasn't declared.
func (r *Registry) Resolve(name string) Type {
	if t, ok := r.types[name]; ok {
		return t
	}

	return Type{Name: name}
}

// Registered reports whether a type name has been declared.
func (r *Registry) Registered(name string) bool {
	_, ok := r.types[name]

	return ok
}
