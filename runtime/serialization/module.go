package serialization

import "reflect"

// TypeEntry binds one entity type to its decoder and optional table. The code
// generator emits one entry per entity in declaration order.
type TypeEntry struct {
	// Type is the runtime type token of the generated entity struct
	Type reflect.Type
	// ClassName is the entity's local (unprefixed) class name
	ClassName string
	// Decode reconstructs the entity from decoded wire data
	Decode DecodeFunc
	// Table is non-nil for database-backed entities
	Table *TableDefinition
}

// StaticModule is a ModuleProtocol driven by a fixed entry list, the shape
// emitted by the code generator for each module. The zero value is an empty
// root module.
type StaticModule struct {
	// ModuleName is the module's namespace string; "" for the root module
	ModuleName string
	// Entries are the module's entity types in declaration order
	Entries []TypeEntry
}

var _ ModuleProtocol = (*StaticModule)(nil)

// Name returns the module's namespace string
func (m *StaticModule) Name() string { return m.ModuleName }

// Deserialize reconstructs a value whose type the module declares
func (m *StaticModule) Deserialize(data any, t reflect.Type) (any, bool, error) {
	for i := range m.Entries {
		if m.Entries[i].Type == t {
			v, err := m.Entries[i].Decode(data)
			return v, err == nil, err
		}
	}
	return nil, false, nil
}

// DeserializeByClassName reconstructs a value by its local class name
func (m *StaticModule) DeserializeByClassName(className string, record map[string]any) (any, bool, error) {
	for i := range m.Entries {
		if m.Entries[i].ClassName == className {
			v, err := m.Entries[i].Decode(record)
			return v, err == nil, err
		}
	}
	return nil, false, nil
}

// ClassNameForObject returns the local class name declaring a runtime value
func (m *StaticModule) ClassNameForObject(v any) (string, bool) {
	t := reflect.TypeOf(v)
	for i := range m.Entries {
		if m.Entries[i].Type == t {
			return m.Entries[i].ClassName, true
		}
	}
	return "", false
}

// TableForType returns the table definition of a database-backed type
func (m *StaticModule) TableForType(t reflect.Type) (*TableDefinition, bool) {
	for i := range m.Entries {
		if m.Entries[i].Type == t && m.Entries[i].Table != nil {
			return m.Entries[i].Table, true
		}
	}
	return nil, false
}

// TableDefinitions returns the module's tables in entry order
func (m *StaticModule) TableDefinitions() []TableDefinition {
	var tables []TableDefinition
	for i := range m.Entries {
		if m.Entries[i].Table != nil {
			tables = append(tables, *m.Entries[i].Table)
		}
	}
	return tables
}
