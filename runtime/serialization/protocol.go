// Package serialization composes the independently generated per-module
// serializers into one process-wide dispatch registry. The registry is built
// once at process start from a fixed list of modules and is immutable
// afterwards, so lookups are safe for unsynchronized concurrent use.
package serialization

import (
	"fmt"
	"reflect"
)

// ColumnDefinition is one column of a database-backed class
type ColumnDefinition struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableDefinition is the database table of one database-backed class
type TableDefinition struct {
	Name    string             `json:"name"`
	Columns []ColumnDefinition `json:"columns"`
}

// TypeNotFoundError reports that no registered module recognizes a requested
// type or class name
type TypeNotFoundError struct {
	TypeName string
}

// Error implements the error interface
func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("deserialization failed, type not found: %s", e.TypeName)
}

// DecodeFunc reconstructs a value from its decoded wire representation
// (typically a map[string]any for entities)
type DecodeFunc func(data any) (any, error)

// ModuleProtocol is the contract every generated per-module serializer
// implements. Lookup methods return ok=false to signal "this type is not
// mine"; the registry treats that as "try the next module". Any returned
// error is a real failure and propagates to the caller immediately.
type ModuleProtocol interface {
	// Name is the module's namespace string. The root module's name is "".
	Name() string
	// Deserialize reconstructs a value of the expected type from decoded data
	Deserialize(data any, t reflect.Type) (any, bool, error)
	// DeserializeByClassName reconstructs a value from a record carrying a
	// local (unprefixed) class name
	DeserializeByClassName(className string, record map[string]any) (any, bool, error)
	// ClassNameForObject returns the local class name owning a runtime value
	ClassNameForObject(v any) (string, bool)
	// TableForType returns the table definition of a database-backed type
	TableForType(t reflect.Type) (*TableDefinition, bool)
	// TableDefinitions returns every table the module declares, in a fixed order
	TableDefinitions() []TableDefinition
}
