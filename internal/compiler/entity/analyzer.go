// Package entity analyzes one parsed schema document into a single entity
// definition. The analyzer decides the declared kind (class, exception or
// enum), walks the declared fields, indexes and enum values, and routes every
// problem through the diagnostics collector instead of failing: a malformed
// document never stops the rest of a batch from being analyzed.
package entity

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/document"
	"github.com/strata-framework/strata/internal/compiler/ir"
)

var (
	classNameRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	fieldNameRe = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
	snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
)

// kindKeyword maps the recognized top-level kind keywords to a ModelKind
var kindKeyword = map[string]ir.ModelKind{
	"class":     ir.KindClass,
	"exception": ir.KindException,
	"enum":      ir.KindEnum,
}

// analyzer analyzes a single document
type analyzer struct {
	doc       *document.Document
	collector *diag.Collector
}

// Analyze produces at most one entity definition from a parsed document.
// All problems are reported through the collector; a nil return means the
// document did not yield a usable definition.
func Analyze(doc *document.Document, collector *diag.Collector) ir.SerializableModel {
	a := &analyzer{doc: doc, collector: collector}
	return a.run()
}

func (a *analyzer) errorf(span *diag.Span, format string, args ...any) {
	a.collector.Add(diag.NewError(
		diag.CategoryEntity,
		fmt.Sprintf(format, args...),
		span,
	).WithFile(a.doc.SourceFileName))
}

func (a *analyzer) run() ir.SerializableModel {
	kindEntry, ok := a.findKind()
	if !ok {
		return nil
	}
	kind := kindKeyword[kindEntry.Key]

	className, ok := document.ScalarString(kindEntry.ValueNode)
	if !ok || !classNameRe.MatchString(className) {
		a.errorf(kindEntry.ValueSpan(),
			"The \"%s\" property must be a valid type name (e.g. MyEntity).", kindEntry.Key)
		return nil
	}

	identity := ir.ModelIdentity{
		FileName:       a.doc.OutFileName,
		SourceFileName: a.doc.SourceFileName,
		ClassName:      className,
		SubDirParts:    a.doc.SubDirParts,
		ServerOnly:     a.serverOnly(),
		Documentation:  document.DocComment(kindEntry.KeyNode),
	}

	switch kind {
	case ir.KindClass:
		return a.analyzeClass(identity)
	case ir.KindException:
		return a.analyzeException(identity)
	default:
		return a.analyzeEnum(identity)
	}
}

// findKind locates the single kind keyword of the document. Zero keywords is
// a document-level error with no span. With several keywords present, every
// keyword after the first (in document order) is flagged individually and the
// shared message lists all offending keys.
func (a *analyzer) findKind() (*document.Entry, bool) {
	var kinds []*document.Entry
	for _, e := range a.doc.Entries() {
		if _, ok := kindKeyword[e.Key]; ok {
			kinds = append(kinds, e)
		}
	}

	switch len(kinds) {
	case 0:
		a.errorf(nil, "No \"class\", \"exception\" or \"enum\" type is defined.")
		return nil, false
	case 1:
		return kinds[0], true
	}

	quoted := make([]string, len(kinds))
	for i, e := range kinds {
		quoted[i] = fmt.Sprintf("%q", e.Key)
	}
	message := fmt.Sprintf(
		"Multiple entity types (%s) found for a single entity. Only one type per entity allowed.",
		strings.Join(quoted, ", "),
	)
	for _, extra := range kinds[1:] {
		a.errorf(extra.KeySpan(), "%s", message)
	}
	return nil, false
}

func (a *analyzer) serverOnly() bool {
	entry := a.doc.Entry("serverOnly")
	if entry == nil {
		return false
	}
	value, ok := document.ScalarBool(entry.ValueNode)
	if !ok {
		a.errorf(entry.ValueSpan(), "The \"serverOnly\" property must be a bool.")
		return false
	}
	return value
}

func (a *analyzer) analyzeClass(identity ir.ModelIdentity) ir.SerializableModel {
	tableName := a.tableName()
	fields := a.analyzeFields(true, tableName != "")
	indexes := a.analyzeIndexes()
	return ir.NewClassDefinition(identity, fields, tableName, indexes)
}

func (a *analyzer) analyzeException(identity ir.ModelIdentity) ir.SerializableModel {
	a.rejectKey("table", "exception")
	a.rejectKey("indexes", "exception")
	fields := a.analyzeFields(false, false)
	return ir.NewExceptionDefinition(identity, fields)
}

// rejectKey reports a key that is only meaningful for class types
func (a *analyzer) rejectKey(key, kind string) {
	if entry := a.doc.Entry(key); entry != nil {
		a.errorf(entry.KeySpan(), "The \"%s\" property is not allowed for %s types.", key, kind)
	}
}

func (a *analyzer) tableName() string {
	entry := a.doc.Entry("table")
	if entry == nil {
		return ""
	}
	name, ok := document.ScalarString(entry.ValueNode)
	if !ok || name == "" {
		a.errorf(entry.ValueSpan(), "The \"table\" property must be a name.")
		return ""
	}
	if !snakeCaseRe.MatchString(name) {
		a.errorf(entry.ValueSpan(), "The table name \"%s\" must be in snake_case.", name)
		return ""
	}
	return name
}

// analyzeFields walks the ordered fields mapping. Invalid fields are omitted
// from the result without aborting the rest of the document. Relations are
// rejected on exceptions; the "id" field name is reserved on database-backed
// classes because the framework injects it.
func (a *analyzer) analyzeFields(relationsAllowed, tableBacked bool) []*ir.Field {
	entry := a.doc.Entry("fields")
	if entry == nil {
		return nil
	}
	if entry.ValueNode.Kind != yaml.MappingNode {
		a.errorf(entry.KeySpan(), "The \"fields\" property must be a mapping of field names to types.")
		return nil
	}

	var fields []*ir.Field
	seen := make(map[string]bool)
	for _, fieldEntry := range document.MappingEntries(entry.ValueNode) {
		name := fieldEntry.Key
		if !fieldNameRe.MatchString(name) {
			a.errorf(fieldEntry.KeySpan(), "The field name \"%s\" must be a valid identifier (e.g. fieldName).", name)
			continue
		}
		if seen[name] {
			a.errorf(fieldEntry.KeySpan(), "The field \"%s\" is declared more than once.", name)
			continue
		}
		seen[name] = true
		if tableBacked && name == "id" {
			a.errorf(fieldEntry.KeySpan(), "The field name \"id\" is reserved on database-backed classes.")
			continue
		}

		decl, ok := document.ScalarString(fieldEntry.ValueNode)
		if !ok {
			a.errorf(fieldEntry.KeySpan(), "The field \"%s\" must declare its type as a string.", name)
			continue
		}

		base := diag.Position{
			Line:   fieldEntry.ValueNode.Line - 1,
			Column: fieldEntry.ValueNode.Column - 1,
		}
		parsed := parseFieldDecl(decl, name, base, a.doc.SourceFileName, a.collector)
		if parsed == nil {
			continue
		}
		if parsed.Relation != nil && !relationsAllowed {
			a.errorf(fieldEntry.ValueSpan(), "The field \"%s\" cannot declare a relation on an exception type.", name)
			parsed.Relation = nil
		}

		fields = append(fields, &ir.Field{
			Name:          name,
			Type:          parsed.Type,
			Relation:      parsed.Relation,
			Default:       parsed.Default,
			Documentation: document.DocComment(fieldEntry.KeyNode),
			Span:          fieldEntry.KeySpan(),
		})
	}
	return fields
}

// analyzeIndexes walks the indexes mapping. Field existence and index-kind
// consistency are checked later, once every field survived type resolution.
func (a *analyzer) analyzeIndexes() []*ir.Index {
	entry := a.doc.Entry("indexes")
	if entry == nil {
		return nil
	}
	if entry.ValueNode.Kind != yaml.MappingNode {
		a.errorf(entry.KeySpan(), "The \"indexes\" property must be a mapping of index names to definitions.")
		return nil
	}

	var indexes []*ir.Index
	for _, idxEntry := range document.MappingEntries(entry.ValueNode) {
		if idx := a.analyzeIndex(idxEntry); idx != nil {
			indexes = append(indexes, idx)
		}
	}
	return indexes
}

func (a *analyzer) analyzeIndex(idxEntry *document.Entry) *ir.Index {
	idx := &ir.Index{
		Name: idxEntry.Key,
		Kind: ir.IndexBTree,
		Span: idxEntry.KeySpan(),
	}
	if idxEntry.ValueNode.Kind != yaml.MappingNode {
		a.errorf(idxEntry.KeySpan(), "The index \"%s\" must be a mapping with a \"fields\" property.", idx.Name)
		return nil
	}

	for _, prop := range document.MappingEntries(idxEntry.ValueNode) {
		switch prop.Key {
		case "fields":
			fields, ok := document.SequenceStrings(prop.ValueNode)
			if !ok || len(fields) == 0 {
				a.errorf(prop.KeySpan(), "The index \"%s\" must list at least one field.", idx.Name)
				return nil
			}
			idx.Fields = fields
		case "type":
			value, _ := document.ScalarString(prop.ValueNode)
			kind, err := ir.ParseIndexKind(value)
			if err != nil {
				a.errorf(prop.ValueSpan(), "The index \"%s\" has an invalid type \"%s\".", idx.Name, value)
				return nil
			}
			idx.Kind = kind
		case "distanceFunction":
			value, _ := document.ScalarString(prop.ValueNode)
			fn, err := ir.ParseDistanceFunction(value)
			if err != nil {
				a.errorf(prop.ValueSpan(), "The index \"%s\" has an invalid distance function \"%s\".", idx.Name, value)
				return nil
			}
			idx.DistanceFunction = &fn
		case "parameters":
			params, ok := a.indexParameters(prop)
			if !ok {
				return nil
			}
			idx.Parameters = params
		default:
			a.errorf(prop.KeySpan(), "Unknown index property \"%s\" on index \"%s\".", prop.Key, idx.Name)
		}
	}

	if len(idx.Fields) == 0 {
		a.errorf(idxEntry.KeySpan(), "The index \"%s\" must list at least one field.", idx.Name)
		return nil
	}
	return idx
}

func (a *analyzer) indexParameters(prop *document.Entry) (map[string]string, bool) {
	if prop.ValueNode.Kind != yaml.MappingNode {
		a.errorf(prop.KeySpan(), "The \"parameters\" property must be a mapping.")
		return nil, false
	}
	params := make(map[string]string)
	for _, p := range document.MappingEntries(prop.ValueNode) {
		value, ok := document.ScalarString(p.ValueNode)
		if !ok {
			a.errorf(p.KeySpan(), "The index parameter \"%s\" must be a scalar value.", p.Key)
			return nil, false
		}
		params[p.Key] = value
	}
	return params, true
}

func (a *analyzer) analyzeEnum(identity ir.ModelIdentity) ir.SerializableModel {
	a.rejectKey("table", "enum")
	a.rejectKey("fields", "enum")
	a.rejectKey("indexes", "enum")

	mode := a.enumSerialization()
	values := a.enumValues()
	if values == nil {
		return nil
	}
	return ir.NewEnumDefinition(identity, values, mode)
}

func (a *analyzer) enumSerialization() ir.EnumSerialization {
	entry := a.doc.Entry("serialized")
	if entry == nil {
		return ir.EnumByName
	}
	value, _ := document.ScalarString(entry.ValueNode)
	mode, err := ir.ParseEnumSerialization(value)
	if err != nil {
		a.errorf(entry.ValueSpan(), "The \"serialized\" property must be \"byName\" or \"byIndex\".")
		return ir.EnumByName
	}
	return mode
}

func (a *analyzer) enumValues() []*ir.EnumValue {
	entry := a.doc.Entry("values")
	if entry == nil || entry.ValueNode.Kind != yaml.SequenceNode || len(entry.ValueNode.Content) == 0 {
		span := (*diag.Span)(nil)
		if entry != nil {
			span = entry.KeySpan()
		}
		a.errorf(span, "An enum must declare at least one value.")
		return nil
	}

	var values []*ir.EnumValue
	seen := make(map[string]bool)
	for _, item := range entry.ValueNode.Content {
		name, ok := document.ScalarString(item)
		if !ok || !fieldNameRe.MatchString(name) {
			a.errorf(diag.LineSpan(item.Line-1, item.Column-1, item.Column-1+len(item.Value)),
				"The enum value \"%s\" must be a valid identifier.", item.Value)
			continue
		}
		if seen[name] {
			a.errorf(diag.LineSpan(item.Line-1, item.Column-1, item.Column-1+len(name)),
				"The enum value \"%s\" is declared more than once.", name)
			continue
		}
		seen[name] = true
		values = append(values, &ir.EnumValue{
			Name:          name,
			Documentation: document.DocComment(item),
		})
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
