package serialization

import (
	"fmt"
	"reflect"
	"strings"
)

// ClassNameField is the record field carrying a value's namespaced class name
const ClassNameField = "className"

// Registry composes the per-module serializers into one lookup surface. It is
// built once, before any lookup, and never mutated afterwards, so it needs no
// locking. Modules are tried in registration order with the root module last;
// modules never need to know about each other's type sets.
type Registry struct {
	root    ModuleProtocol
	modules []ModuleProtocol
}

// NewRegistry builds a registry from the root module and the fixed, ordered
// list of additional modules. Every additional module must carry a unique,
// non-empty namespace string.
func NewRegistry(root ModuleProtocol, modules ...ModuleProtocol) (*Registry, error) {
	if root == nil {
		return nil, fmt.Errorf("serialization registry requires a root module")
	}
	if root.Name() != "" {
		return nil, fmt.Errorf("the root module must have an empty namespace, got %q", root.Name())
	}
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.Name() == "" {
			return nil, fmt.Errorf("only the root module may have an empty namespace")
		}
		if seen[m.Name()] {
			return nil, fmt.Errorf("module namespace %q registered twice", m.Name())
		}
		seen[m.Name()] = true
	}
	return &Registry{root: root, modules: modules}, nil
}

// Deserialize reconstructs a value of the expected type. Each module is tried
// in registration order; a module answering "not mine" hands the search to
// the next one. Homogeneous containers of scalars are handled directly by the
// registry. The root module runs last; if it does not recognize the type
// either, the result is a *TypeNotFoundError.
func (r *Registry) Deserialize(data any, t reflect.Type) (any, error) {
	for _, m := range r.modules {
		v, ok, err := m.Deserialize(data, t)
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
	}

	if v, ok, err := deserializeContainer(data, t); ok || err != nil {
		return v, err
	}

	v, ok, err := r.root.Deserialize(data, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &TypeNotFoundError{TypeName: t.String()}
	}
	return v, nil
}

// DeserializeByClassName reconstructs a value from a record whose className
// field carries a namespaced class name. The longest registered module
// namespace matching the name's prefix wins; the registry rewrites the field
// to the local name and delegates. A name with no recognized prefix belongs
// to the root module.
func (r *Registry) DeserializeByClassName(record map[string]any) (any, error) {
	name, ok := record[ClassNameField].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("record carries no %q field", ClassNameField)
	}

	owner := r.root
	local := name
	bestLen := -1
	for _, m := range r.modules {
		prefix := m.Name() + "."
		if strings.HasPrefix(name, prefix) && len(m.Name()) > bestLen {
			owner = m
			local = strings.TrimPrefix(name, prefix)
			bestLen = len(m.Name())
		}
	}

	rewritten := make(map[string]any, len(record))
	for k, v := range record {
		rewritten[k] = v
	}
	rewritten[ClassNameField] = local

	v, ok, err := owner.DeserializeByClassName(local, rewritten)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &TypeNotFoundError{TypeName: name}
	}
	return v, nil
}

// ClassNameForObject returns the namespaced class name owning a runtime
// value: the first module in registration order claiming the value wins and
// contributes its namespace prefix. Root module classes carry no prefix.
func (r *Registry) ClassNameForObject(v any) (string, bool) {
	for _, m := range r.modules {
		if name, ok := m.ClassNameForObject(v); ok {
			return m.Name() + "." + name, true
		}
	}
	return r.root.ClassNameForObject(v)
}

// TableForType returns the owning module's table definition for a
// database-backed type, tried across modules in the same fixed order as
// deserialization
func (r *Registry) TableForType(t reflect.Type) (*TableDefinition, bool) {
	for _, m := range r.modules {
		if table, ok := m.TableForType(t); ok {
			return table, true
		}
	}
	return r.root.TableForType(t)
}

// AllTableDefinitions returns every module's declared tables concatenated in
// registration order, with the root module's tables appended last. Duplicates
// across modules are preserved: the result is the union of everything
// declared, not a deduplicated set.
func (r *Registry) AllTableDefinitions() []TableDefinition {
	var tables []TableDefinition
	for _, m := range r.modules {
		tables = append(tables, m.TableDefinitions()...)
	}
	return append(tables, r.root.TableDefinitions()...)
}
