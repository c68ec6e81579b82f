package resolve

import (
	"fmt"
	"sort"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/ir"
)

// vectorIndexParameters lists the legal parameter names per vector index kind
var vectorIndexParameters = map[ir.IndexKind]map[string]bool{
	ir.IndexHnsw:    {"m": true, "ef_construction": true},
	ir.IndexIvfflat: {"lists": true},
}

// Relations validates every relation annotation after type resolution: the
// relation target must be a database-backed class, and when the target
// declares a back-reference to this class, the two sides must agree on delete
// behavior. A one-directional relation with no back-reference is permitted.
func Relations(u *Universe, collector *diag.Collector) {
	for _, mod := range u.order {
		for _, model := range mod.Models {
			class, ok := model.(*ir.ClassDefinition)
			if !ok {
				continue
			}
			for _, field := range class.Fields {
				if field.Relation != nil {
					resolveRelation(u, class, field, collector)
				}
			}
		}
	}
}

func resolveRelation(u *Universe, class *ir.ClassDefinition, field *ir.Field, collector *diag.Collector) {
	report := func(format string, args ...any) {
		collector.Add(diag.NewError(
			diag.CategoryRelation,
			fmt.Sprintf(format, args...),
			field.Span,
		).WithFile(class.SourceFileName()))
	}

	targetType := relationTargetType(field.Type)
	if targetType == nil || targetType.ModuleAlias == nil {
		report("The relation on field \"%s\" must reference a declared class.", field.Name)
		field.Relation = nil
		return
	}

	target, _, _ := u.Lookup(targetType.Name)
	targetClass, ok := target.(*ir.ClassDefinition)
	if !ok {
		report("The relation on field \"%s\" references \"%s\", which is not a class.",
			field.Name, targetType.Name)
		field.Relation = nil
		return
	}
	if targetClass.TableName == "" {
		report("The relation on field \"%s\" references \"%s\", which has no table.",
			field.Name, targetType.Name)
		field.Relation = nil
		return
	}
	field.Relation.Target = targetType.Name

	// Back-reference, when declared, must agree on delete behavior.
	for _, back := range targetClass.Fields {
		if back.Relation == nil {
			continue
		}
		backType := relationTargetType(back.Type)
		if backType == nil || backType.Name != class.ClassName() {
			continue
		}
		if back.Relation.OnDelete != field.Relation.OnDelete {
			report("The relation on field \"%s\" declares onDelete=%s but \"%s.%s\" declares onDelete=%s.",
				field.Name, field.Relation.OnDelete,
				targetClass.ClassName(), back.Name, back.Relation.OnDelete)
		}
		break
	}
}

// relationTargetType unwraps a relation field's type to the referenced entity
// type: either a direct reference or a List of references
func relationTargetType(t *ir.TypeDefinition) *ir.TypeDefinition {
	if t == nil {
		return nil
	}
	if t.Name == "List" && len(t.Generics) == 1 {
		return t.Generics[0]
	}
	if IsScalar(t.Name) || IsContainer(t.Name) {
		return nil
	}
	return t
}

// Indexes validates every declared index: indexed fields must exist on the
// class, distance functions are only legal on vector indexes, and declared
// parameters must be legal for the chosen index kind.
func Indexes(u *Universe, collector *diag.Collector) {
	for _, mod := range u.order {
		for _, model := range mod.Models {
			class, ok := model.(*ir.ClassDefinition)
			if !ok {
				continue
			}
			for _, idx := range class.Indexes {
				validateIndex(class, idx, collector)
			}
		}
	}
}

func validateIndex(class *ir.ClassDefinition, idx *ir.Index, collector *diag.Collector) {
	report := func(format string, args ...any) {
		collector.Add(diag.NewError(
			diag.CategoryRelation,
			fmt.Sprintf(format, args...),
			idx.Span,
		).WithFile(class.SourceFileName()))
	}

	for _, fieldName := range idx.Fields {
		if class.FieldByName(fieldName) == nil {
			report("The index \"%s\" references the field \"%s\", which does not exist on \"%s\".",
				idx.Name, fieldName, class.ClassName())
		}
	}

	if idx.DistanceFunction != nil && !idx.Kind.IsVector() {
		report("The index \"%s\" declares a distance function, which is only allowed for \"hnsw\" and \"ivfflat\" indexes.",
			idx.Name)
	}

	legal := vectorIndexParameters[idx.Kind]
	names := make([]string, 0, len(idx.Parameters))
	for name := range idx.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !legal[name] {
			report("The index \"%s\" declares the parameter \"%s\", which is not valid for \"%s\" indexes.",
				idx.Name, name, idx.Kind)
		}
	}
}
