package ir

import "github.com/strata-framework/strata/internal/compiler/diag"

// DefaultOrigin tags where a declared default value applies
type DefaultOrigin int

const (
	// DefaultPersist applies when the row is written to the database
	DefaultPersist DefaultOrigin = iota
	// DefaultModel applies when the model object is constructed
	DefaultModel
)

// String returns the annotation keyword for the default origin
func (o DefaultOrigin) String() string {
	switch o {
	case DefaultPersist:
		return "defaultPersist"
	case DefaultModel:
		return "defaultModel"
	default:
		return "unknown"
	}
}

// DefaultValue is a declared field default, tagged by origin. Expr is carried
// verbatim from the source document; evaluation belongs to the generators.
type DefaultValue struct {
	Origin DefaultOrigin
	Expr   string
}

// Relation is a declared relation annotation on a field. Target is the class
// name of the referenced entity, filled in during resolution.
type Relation struct {
	OnDelete OnDelete
	Target   string
}

// Field is one declared field of a class or exception. Span points at the
// field's declaration in the source document, kept for late-phase diagnostics.
type Field struct {
	Name          string
	Type          *TypeDefinition
	Relation      *Relation
	Default       *DefaultValue
	Documentation []string
	Span          *diag.Span
}

// Index is one declared database index on a class
type Index struct {
	Name             string
	Fields           []string
	Kind             IndexKind
	DistanceFunction *DistanceFunction
	Parameters       map[string]string
	Span             *diag.Span
}

// SerializableModel is one validated entity definition, tagged by kind.
// Exactly one of the class/exception/enum keywords was present in the source
// document; documents violating that never produce a model at all.
type SerializableModel interface {
	Kind() ModelKind
	// ClassName is the declared entity name
	ClassName() string
	// FileName is the logical output name for generated code
	FileName() string
	// SourceFileName is the original document path
	SourceFileName() string
	// SubDirParts are the ordered path segments namespacing generated code
	SubDirParts() []string
	// ServerOnly reports whether the entity is excluded from client-visible
	// serialization
	ServerOnly() bool
	// Documentation returns the leading doc-comment lines, if any
	Documentation() []string
	// Type is a TypeDefinition naming this entity, used when it appears as a
	// field type elsewhere
	Type() *TypeDefinition
}

// modelBase carries the identity shared by every model kind
type modelBase struct {
	fileName       string
	sourceFileName string
	className      string
	subDirParts    []string
	serverOnly     bool
	documentation  []string
	typeDef        *TypeDefinition
}

func (m *modelBase) ClassName() string       { return m.className }
func (m *modelBase) FileName() string        { return m.fileName }
func (m *modelBase) SourceFileName() string  { return m.sourceFileName }
func (m *modelBase) SubDirParts() []string   { return m.subDirParts }
func (m *modelBase) ServerOnly() bool        { return m.serverOnly }
func (m *modelBase) Documentation() []string { return m.documentation }
func (m *modelBase) Type() *TypeDefinition   { return m.typeDef }

// ModelIdentity bundles the constructor arguments shared by every model kind
type ModelIdentity struct {
	FileName       string
	SourceFileName string
	ClassName      string
	SubDirParts    []string
	ServerOnly     bool
	Documentation  []string
}

func newModelBase(id ModelIdentity) modelBase {
	return modelBase{
		fileName:       id.FileName,
		sourceFileName: id.SourceFileName,
		className:      id.ClassName,
		subDirParts:    id.SubDirParts,
		serverOnly:     id.ServerOnly,
		documentation:  id.Documentation,
		typeDef:        &TypeDefinition{Name: id.ClassName},
	}
}

// ClassDefinition is a declared data class. TableName is "" for classes that
// are not database-backed.
type ClassDefinition struct {
	modelBase
	Fields    []*Field
	TableName string
	Indexes   []*Index
}

// Kind returns KindClass
func (c *ClassDefinition) Kind() ModelKind { return KindClass }

// NewClassDefinition creates a class definition
func NewClassDefinition(id ModelIdentity, fields []*Field, tableName string, indexes []*Index) *ClassDefinition {
	return &ClassDefinition{
		modelBase: newModelBase(id),
		Fields:    fields,
		TableName: tableName,
		Indexes:   indexes,
	}
}

// FieldByName returns the declared field with the given name, or nil
func (c *ClassDefinition) FieldByName(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ExceptionDefinition is a transport-only error payload. Exceptions carry the
// same field shape as classes but no table, index or relation concepts.
type ExceptionDefinition struct {
	modelBase
	Fields []*Field
}

// Kind returns KindException
func (e *ExceptionDefinition) Kind() ModelKind { return KindException }

// NewExceptionDefinition creates an exception definition
func NewExceptionDefinition(id ModelIdentity, fields []*Field) *ExceptionDefinition {
	return &ExceptionDefinition{modelBase: newModelBase(id), Fields: fields}
}

// EnumValue is one declared value of an enum
type EnumValue struct {
	Name          string
	Documentation []string
}

// EnumDefinition is a closed set of named values
type EnumDefinition struct {
	modelBase
	Values        []*EnumValue
	Serialization EnumSerialization
}

// Kind returns KindEnum
func (e *EnumDefinition) Kind() ModelKind { return KindEnum }

// NewEnumDefinition creates an enum definition
func NewEnumDefinition(id ModelIdentity, values []*EnumValue, mode EnumSerialization) *EnumDefinition {
	return &EnumDefinition{modelBase: newModelBase(id), Values: values, Serialization: mode}
}
