// Package document turns one raw schema document into a key/value node tree
// that preserves source spans per node. Parsing fails soft: a malformed
// document produces a diagnostic, not a crash, so the remaining documents in a
// batch can still be analyzed.
package document

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strata-framework/strata/internal/compiler/diag"
)

// Entry is one key/value pair of a mapping node, in document order
type Entry struct {
	Key       string
	KeyNode   *yaml.Node
	ValueNode *yaml.Node
}

// Document is one parsed schema document plus its declared identity
type Document struct {
	// OutFileName is the logical output name for generated code
	OutFileName string
	// SourceFileName is the original document path
	SourceFileName string
	// SubDirParts are the ordered path segments namespacing generated code
	SubDirParts []string

	root *yaml.Node
}

// Parse parses one schema document. On malformed input it records one
// document-level error diagnostic and returns nil.
func Parse(source []byte, outFileName, sourceFileName string, subDirParts []string, collector *diag.Collector) *Document {
	var node yaml.Node
	if err := yaml.Unmarshal(source, &node); err != nil {
		collector.Add(diag.NewError(
			diag.CategoryDocument,
			fmt.Sprintf("Failed to parse document: %v", err),
			nil,
		).WithFile(sourceFileName))
		return nil
	}

	// yaml wraps the content in a DocumentNode; an empty file has no content
	var root *yaml.Node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		root = node.Content[0]
	}
	if root == nil || root.Kind != yaml.MappingNode {
		collector.Add(diag.NewError(
			diag.CategoryDocument,
			"The document must be a mapping of keys to values.",
			nil,
		).WithFile(sourceFileName))
		return nil
	}

	return &Document{
		OutFileName:    outFileName,
		SourceFileName: sourceFileName,
		SubDirParts:    subDirParts,
		root:           root,
	}
}

// Entries returns the top-level key/value pairs in document order
func (d *Document) Entries() []*Entry {
	return MappingEntries(d.root)
}

// Entry returns the first top-level entry with the given key, or nil
func (d *Document) Entry(key string) *Entry {
	for _, e := range d.Entries() {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// MappingEntries returns the key/value pairs of a mapping node in document
// order. Non-mapping nodes yield nil.
func MappingEntries(node *yaml.Node) []*Entry {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	entries := make([]*Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		entries = append(entries, &Entry{
			Key:       key.Value,
			KeyNode:   key,
			ValueNode: node.Content[i+1],
		})
	}
	return entries
}

// KeySpan returns a zero-based span covering the full key line from column 0
// through the end of the key text. yaml positions are one-based.
func (e *Entry) KeySpan() *diag.Span {
	return diag.LineSpan(e.KeyNode.Line-1, 0, len(e.Key))
}

// ValueSpan returns a zero-based span covering the value scalar text
func (e *Entry) ValueSpan() *diag.Span {
	n := e.ValueNode
	return diag.LineSpan(n.Line-1, n.Column-1, n.Column-1+len(n.Value))
}

// ScalarString returns the string value of a scalar node
func ScalarString(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	return node.Value, true
}

// ScalarBool returns the boolean value of a scalar node
func ScalarBool(node *yaml.Node) (bool, bool) {
	s, ok := ScalarString(node)
	if !ok {
		return false, false
	}
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// SequenceStrings returns the scalar string items of a sequence node. A bare
// scalar is treated as a single-item sequence, matching the schema language's
// field-or-list convention.
func SequenceStrings(node *yaml.Node) ([]string, bool) {
	if node == nil {
		return nil, false
	}
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}, true
	}
	if node.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		s, ok := ScalarString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// DocComment extracts the leading doc-comment lines immediately preceding a
// key. Comment markers and one leading space are stripped per line.
func DocComment(node *yaml.Node) []string {
	if node == nil || node.HeadComment == "" {
		return nil
	}
	raw := strings.Split(node.HeadComment, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimLeft(line, "#")
		line = strings.TrimPrefix(line, " ")
		lines = append(lines, line)
	}
	return lines
}
