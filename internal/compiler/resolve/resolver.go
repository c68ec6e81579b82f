// Package resolve performs the second compilation stage: resolving every
// field's raw type expression against the complete set of entity definitions
// across all modules. Resolution runs only after every document has been
// analyzed, so forward references and circular relations between entities are
// legal and the outcome does not depend on document order.
package resolve

import (
	"fmt"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/ir"
)

// scalarTypes is the fixed built-in catalog of scalar type names
var scalarTypes = map[string]bool{
	"String":    true,
	"bool":      true,
	"int":       true,
	"double":    true,
	"DateTime":  true,
	"Duration":  true,
	"UuidValue": true,
	"ByteData":  true,
	"Uri":       true,
}

// containerTypes maps built-in container names to their generic arity
var containerTypes = map[string]int{
	"List": 1,
	"Set":  1,
	"Map":  2,
}

// IsScalar reports whether a type name is in the built-in scalar catalog
func IsScalar(name string) bool { return scalarTypes[name] }

// IsContainer reports whether a type name is a built-in container
func IsContainer(name string) bool { _, ok := containerTypes[name]; return ok }

// ModuleModels is the analyzed entity set of one module, in a fixed order
type ModuleModels struct {
	// Name is the module alias; "" is the root module
	Name   string
	Models []ir.SerializableModel
}

// Universe is the stage-one shell set: every declared entity across every
// module, indexed by class name. Lookup is deterministic: when two modules
// declare the same class name, the module earliest in the fixed module order
// wins.
type Universe struct {
	order  []ModuleModels
	byName map[string]entityShell
}

type entityShell struct {
	module string
	model  ir.SerializableModel
}

// NewUniverse builds the shell set from the ordered module list
func NewUniverse(modules []ModuleModels) *Universe {
	u := &Universe{order: modules, byName: make(map[string]entityShell)}
	for _, mod := range modules {
		for _, model := range mod.Models {
			if _, taken := u.byName[model.ClassName()]; taken {
				continue
			}
			u.byName[model.ClassName()] = entityShell{module: mod.Name, model: model}
		}
	}
	return u
}

// Lookup finds a declared entity by class name, returning the entity and the
// name of the module that declared it
func (u *Universe) Lookup(className string) (ir.SerializableModel, string, bool) {
	shell, ok := u.byName[className]
	if !ok {
		return nil, "", false
	}
	return shell.model, shell.module, true
}

// Types resolves every field type of every model in the universe. Unresolved
// names and malformed container types produce field-scoped error diagnostics;
// the offending field keeps its unresolved type but the compilation continues.
func Types(u *Universe, collector *diag.Collector) {
	for _, mod := range u.order {
		for _, model := range mod.Models {
			for _, field := range modelFields(model) {
				resolveType(u, model, field, field.Type, collector)
			}
		}
	}
}

// modelFields returns the declared fields of a model; enums have none
func modelFields(model ir.SerializableModel) []*ir.Field {
	switch m := model.(type) {
	case *ir.ClassDefinition:
		return m.Fields
	case *ir.ExceptionDefinition:
		return m.Fields
	default:
		return nil
	}
}

func resolveType(u *Universe, model ir.SerializableModel, field *ir.Field, t *ir.TypeDefinition, collector *diag.Collector) {
	report := func(format string, args ...any) {
		collector.Add(diag.NewError(
			diag.CategoryType,
			fmt.Sprintf(format, args...),
			field.Span,
		).WithFile(model.SourceFileName()))
	}

	if arity, ok := containerTypes[t.Name]; ok {
		if len(t.Generics) != arity {
			report("The type \"%s\" of field \"%s\" expects %d type argument(s), found %d.",
				t.Name, field.Name, arity, len(t.Generics))
			return
		}
		for _, g := range t.Generics {
			resolveType(u, model, field, g, collector)
		}
		return
	}

	if len(t.Generics) > 0 {
		report("The type \"%s\" of field \"%s\" does not take type arguments.", t.Name, field.Name)
		return
	}

	if scalarTypes[t.Name] {
		return
	}

	_, module, found := u.Lookup(t.Name)
	if !found {
		report("The type \"%s\" of field \"%s\" was not found.", t.Name, field.Name)
		return
	}
	alias := module
	t.ModuleAlias = &alias
}
