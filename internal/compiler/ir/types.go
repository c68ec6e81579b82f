// Package ir defines the typed intermediate representation produced by the
// Strata schema compiler and consumed by the code generators. IR nodes are
// created once during a compilation pass and are immutable afterwards.
package ir

import (
	"fmt"
	"strings"
)

// ModelKind is the declared kind of an entity definition, decided once during
// analysis and carried as a tag from then on.
type ModelKind int

const (
	// KindClass is a data class, optionally database-backed
	KindClass ModelKind = iota
	// KindException is a transport-only error payload
	KindException
	// KindEnum is a closed set of named values
	KindEnum
)

// String returns the schema-language keyword for the model kind
func (k ModelKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindException:
		return "exception"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// OnDelete is the declared delete behavior of a relation
type OnDelete int

const (
	// OnDeleteRestrict blocks deletion while referencing rows exist
	OnDeleteRestrict OnDelete = iota
	// OnDeleteCascade deletes referencing rows along with the target
	OnDeleteCascade
	// OnDeleteSetNull nulls out the referencing column
	OnDeleteSetNull
)

// String returns the string representation of the delete behavior
func (o OnDelete) String() string {
	switch o {
	case OnDeleteRestrict:
		return "Restrict"
	case OnDeleteCascade:
		return "Cascade"
	case OnDeleteSetNull:
		return "SetNull"
	default:
		return "unknown"
	}
}

// ParseOnDelete converts a schema-language token to an OnDelete behavior
func ParseOnDelete(s string) (OnDelete, error) {
	switch s {
	case "Restrict":
		return OnDeleteRestrict, nil
	case "Cascade":
		return OnDeleteCascade, nil
	case "SetNull":
		return OnDeleteSetNull, nil
	default:
		return 0, fmt.Errorf("unknown onDelete behavior: %s", s)
	}
}

// EnumSerialization is how an enum value travels over the wire
type EnumSerialization int

const (
	// EnumByName serializes values as their declared names
	EnumByName EnumSerialization = iota
	// EnumByIndex serializes values as their zero-based declaration position
	EnumByIndex
)

// String returns the schema-language token for the serialization mode
func (e EnumSerialization) String() string {
	switch e {
	case EnumByName:
		return "byName"
	case EnumByIndex:
		return "byIndex"
	default:
		return "unknown"
	}
}

// ParseEnumSerialization converts a schema-language token to a serialization mode
func ParseEnumSerialization(s string) (EnumSerialization, error) {
	switch s {
	case "byName":
		return EnumByName, nil
	case "byIndex":
		return EnumByIndex, nil
	default:
		return 0, fmt.Errorf("unknown enum serialization mode: %s", s)
	}
}

// IndexKind is the declared database index type
type IndexKind int

const (
	IndexBTree IndexKind = iota
	IndexHash
	IndexGin
	IndexGist
	IndexBrin
	IndexHnsw
	IndexIvfflat
)

// String returns the schema-language token for the index kind
func (k IndexKind) String() string {
	switch k {
	case IndexBTree:
		return "btree"
	case IndexHash:
		return "hash"
	case IndexGin:
		return "gin"
	case IndexGist:
		return "gist"
	case IndexBrin:
		return "brin"
	case IndexHnsw:
		return "hnsw"
	case IndexIvfflat:
		return "ivfflat"
	default:
		return "unknown"
	}
}

// ParseIndexKind converts a schema-language token to an IndexKind
func ParseIndexKind(s string) (IndexKind, error) {
	switch s {
	case "btree":
		return IndexBTree, nil
	case "hash":
		return IndexHash, nil
	case "gin":
		return IndexGin, nil
	case "gist":
		return IndexGist, nil
	case "brin":
		return IndexBrin, nil
	case "hnsw":
		return IndexHnsw, nil
	case "ivfflat":
		return IndexIvfflat, nil
	default:
		return 0, fmt.Errorf("unknown index type: %s", s)
	}
}

// IsVector returns true for index kinds that operate on vector distance
func (k IndexKind) IsVector() bool {
	return k == IndexHnsw || k == IndexIvfflat
}

// DistanceFunction is the vector distance function of an hnsw/ivfflat index
type DistanceFunction int

const (
	DistanceL2 DistanceFunction = iota
	DistanceInnerProduct
	DistanceCosine
)

// String returns the schema-language token for the distance function
func (d DistanceFunction) String() string {
	switch d {
	case DistanceL2:
		return "l2"
	case DistanceInnerProduct:
		return "innerProduct"
	case DistanceCosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// ParseDistanceFunction converts a schema-language token to a DistanceFunction
func ParseDistanceFunction(s string) (DistanceFunction, error) {
	switch s {
	case "l2":
		return DistanceL2, nil
	case "innerProduct":
		return DistanceInnerProduct, nil
	case "cosine":
		return DistanceCosine, nil
	default:
		return 0, fmt.Errorf("unknown distance function: %s", s)
	}
}

// TypeDefinition is a resolved (or not-yet-resolved) field type. Name is a
// scalar name from the built-in catalog or the class name of a referenced
// entity. ModuleAlias is nil until cross-file resolution completes; after a
// successful resolution it names the module that declared the referenced
// entity ("" for the root module) and stays nil for scalars and containers.
type TypeDefinition struct {
	Name        string
	Nullable    bool
	Generics    []*TypeDefinition
	ModuleAlias *string
}

// String returns the schema-language spelling of the type
func (t *TypeDefinition) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.Generics) > 0 {
		sb.WriteString("<")
		for i, g := range t.Generics {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.String())
		}
		sb.WriteString(">")
	}
	if t.Nullable {
		sb.WriteString("?")
	}
	return sb.String()
}
