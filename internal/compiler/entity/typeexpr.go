package entity

import (
	"fmt"
	"strings"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/ir"
)

// fieldDecl is the parsed form of one field declaration string: a raw type
// expression followed by optional comma-separated annotation clauses, e.g.
//
//	List<String>?
//	int, defaultModel=0
//	Author?, relation(onDelete=SetNull)
type fieldDecl struct {
	Type     *ir.TypeDefinition
	Relation *ir.Relation
	Default  *ir.DefaultValue
}

// parseFieldDecl parses a field declaration string. base is the zero-based
// source position of the declaration's first character; clause-scoped
// diagnostics are offset from it. Returns nil if the type expression itself
// is unusable. Annotation failures keep the field but record diagnostics.
func parseFieldDecl(decl, fieldName string, base diag.Position, file string, collector *diag.Collector) *fieldDecl {
	clauses, offsets := splitClauses(decl)
	if len(clauses) == 0 || strings.TrimSpace(clauses[0]) == "" {
		collector.Add(diag.NewError(
			diag.CategoryEntity,
			fmt.Sprintf("The field \"%s\" has no type.", fieldName),
			diag.LineSpan(base.Line, base.Column, base.Column+len(decl)),
		).WithFile(file))
		return nil
	}

	typeDef, err := parseTypeExpr(clauses[0])
	if err != nil {
		collector.Add(diag.NewError(
			diag.CategoryEntity,
			fmt.Sprintf("The type of field \"%s\" is invalid: %v.", fieldName, err),
			clauseSpan(base, offsets[0], clauses[0]),
		).WithFile(file))
		return nil
	}

	out := &fieldDecl{Type: typeDef}
	for i := 1; i < len(clauses); i++ {
		parseAnnotation(out, clauses[i], fieldName, clauseSpan(base, offsets[i], clauses[i]), file, collector)
	}
	return out
}

// clauseSpan builds the span of one clause within a declaration string.
// Leading whitespace of the clause is excluded.
func clauseSpan(base diag.Position, offset int, clause string) *diag.Span {
	lead := len(clause) - len(strings.TrimLeft(clause, " \t"))
	start := base.Column + offset + lead
	return diag.LineSpan(base.Line, start, start+len(strings.TrimRight(clause[lead:], " \t")))
}

// parseAnnotation parses one annotation clause into the field declaration
func parseAnnotation(out *fieldDecl, clause, fieldName string, span *diag.Span, file string, collector *diag.Collector) {
	trimmed := strings.TrimSpace(clause)
	report := func(msg string) {
		collector.Add(diag.NewError(diag.CategoryEntity, msg, span).WithFile(file))
	}

	switch {
	case trimmed == "relation" || strings.HasPrefix(trimmed, "relation("):
		rel, err := parseRelationClause(trimmed)
		if err != nil {
			report(fmt.Sprintf("The relation annotation on field \"%s\" is invalid: %v.", fieldName, err))
			return
		}
		if out.Relation != nil {
			report(fmt.Sprintf("The field \"%s\" declares more than one relation.", fieldName))
			return
		}
		out.Relation = rel

	case strings.HasPrefix(trimmed, "defaultPersist="):
		setDefault(out, ir.DefaultPersist, strings.TrimPrefix(trimmed, "defaultPersist="), fieldName, report)

	case strings.HasPrefix(trimmed, "defaultModel="):
		setDefault(out, ir.DefaultModel, strings.TrimPrefix(trimmed, "defaultModel="), fieldName, report)

	default:
		name := trimmed
		if i := strings.IndexAny(name, "(="); i >= 0 {
			name = name[:i]
		}
		report(fmt.Sprintf("Unknown annotation \"%s\" on field \"%s\".", name, fieldName))
	}
}

func setDefault(out *fieldDecl, origin ir.DefaultOrigin, expr, fieldName string, report func(string)) {
	if strings.TrimSpace(expr) == "" {
		report(fmt.Sprintf("The %s annotation on field \"%s\" has no value.", origin, fieldName))
		return
	}
	if out.Default != nil {
		report(fmt.Sprintf("The field \"%s\" declares more than one default value.", fieldName))
		return
	}
	out.Default = &ir.DefaultValue{Origin: origin, Expr: strings.TrimSpace(expr)}
}

// parseRelationClause parses `relation` or `relation(onDelete=...)`. The
// relation target is the field's own type and is filled in during resolution.
func parseRelationClause(clause string) (*ir.Relation, error) {
	rel := &ir.Relation{OnDelete: ir.OnDeleteRestrict}
	if clause == "relation" {
		return rel, nil
	}

	if !strings.HasSuffix(clause, ")") {
		return nil, fmt.Errorf("missing closing parenthesis")
	}
	args := clause[len("relation(") : len(clause)-1]
	if strings.TrimSpace(args) == "" {
		return rel, nil
	}

	for _, arg := range strings.Split(args, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(arg), "=")
		if !found {
			return nil, fmt.Errorf("expected key=value, found %q", strings.TrimSpace(arg))
		}
		switch strings.TrimSpace(key) {
		case "onDelete":
			onDelete, err := ir.ParseOnDelete(strings.TrimSpace(value))
			if err != nil {
				return nil, err
			}
			rel.OnDelete = onDelete
		default:
			return nil, fmt.Errorf("unknown argument %q", strings.TrimSpace(key))
		}
	}
	return rel, nil
}

// parseTypeExpr parses a type expression: an identifier, an optional generic
// argument list and an optional trailing nullability marker.
func parseTypeExpr(expr string) (*ir.TypeDefinition, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	def := &ir.TypeDefinition{}
	if strings.HasSuffix(s, "?") {
		def.Nullable = true
		s = strings.TrimRight(strings.TrimSuffix(s, "?"), " \t")
	}

	name, rest := scanIdentifier(s)
	if name == "" {
		return nil, fmt.Errorf("expected a type name, found %q", s)
	}
	def.Name = name

	if rest == "" {
		return def, nil
	}
	if !strings.HasPrefix(rest, "<") || !strings.HasSuffix(rest, ">") {
		return nil, fmt.Errorf("unexpected %q after type name", rest)
	}

	args, err := splitGenericArgs(rest[1 : len(rest)-1])
	if err != nil {
		return nil, err
	}
	for _, arg := range args {
		nested, err := parseTypeExpr(arg)
		if err != nil {
			return nil, err
		}
		def.Generics = append(def.Generics, nested)
	}
	return def, nil
}

// scanIdentifier splits a leading identifier off a string
func scanIdentifier(s string) (string, string) {
	i := 0
	for i < len(s) && (isIdentChar(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// splitGenericArgs splits a generic argument list on top-level commas
func splitGenericArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty generic argument list")
	}
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced generic brackets")
			}
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced generic brackets")
	}
	return append(args, s[start:]), nil
}

// splitClauses splits a declaration on top-level commas, returning the raw
// clause texts and the byte offset of each within the declaration. Commas
// inside generic brackets, parentheses or quotes do not split.
func splitClauses(decl string) ([]string, []int) {
	var clauses []string
	var offsets []int
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(decl); i++ {
		c := decl[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				clauses = append(clauses, decl[start:i])
				offsets = append(offsets, start)
				start = i + 1
			}
		}
	}
	clauses = append(clauses, decl[start:])
	offsets = append(offsets, start)
	return clauses, offsets
}
