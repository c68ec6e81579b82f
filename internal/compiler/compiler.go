// Package compiler drives the Strata schema compilation pipeline: parse every
// document, analyze each into an entity definition, then resolve types,
// relations and indexes against the complete cross-module entity set. The
// pipeline performs no I/O, keeps all state per call, and may run concurrently
// on independent document sets.
package compiler

import (
	"go.uber.org/zap"

	"github.com/strata-framework/strata/internal/compiler/diag"
	"github.com/strata-framework/strata/internal/compiler/document"
	"github.com/strata-framework/strata/internal/compiler/entity"
	"github.com/strata-framework/strata/internal/compiler/ir"
	"github.com/strata-framework/strata/internal/compiler/resolve"
)

// SourceDocument is one raw schema document handed to the compiler
type SourceDocument struct {
	// Module is the alias of the declaring module; "" is the root module
	Module string
	// OutFileName is the logical output name for generated code
	OutFileName string
	// SourceFileName is the original document path
	SourceFileName string
	// SubDirParts are the ordered path segments namespacing generated code
	SubDirParts []string
	// Source is the raw document text
	Source []byte
}

// ModuleSchema is the assembled, validated entity set of one compilation,
// grouped per module in a fixed order. It is fully resolved whenever the
// compilation's collector reports no errors, and immutable either way.
type ModuleSchema struct {
	Modules []resolve.ModuleModels
}

// ModelsFor returns the entity definitions of one module
func (s *ModuleSchema) ModelsFor(module string) []ir.SerializableModel {
	for _, m := range s.Modules {
		if m.Name == module {
			return m.Models
		}
	}
	return nil
}

// AllModels returns every entity definition across all modules, in module
// order then declaration order
func (s *ModuleSchema) AllModels() []ir.SerializableModel {
	var out []ir.SerializableModel
	for _, m := range s.Modules {
		out = append(out, m.Models...)
	}
	return out
}

// Compiler compiles schema document sets into module schemas
type Compiler struct {
	log *zap.Logger
}

// New creates a compiler. A nil logger disables logging.
func New(log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{log: log}
}

// Compile runs the full pipeline over a document set. Every defect found
// anywhere in the set is reported through the returned collector; compilation
// never stops at the first error. Compiling the same document set twice
// produces structurally identical schemas and diagnostics.
func (c *Compiler) Compile(docs []SourceDocument) (*ModuleSchema, *diag.Collector) {
	collector := diag.NewCollector()

	// Stage 1: parse and analyze every document, building the entity shell
	// set across all modules. Modules keep their first-seen order so later
	// stages and the dispatch registry observe one fixed order.
	var moduleOrder []string
	byModule := make(map[string][]ir.SerializableModel)

	for _, doc := range docs {
		parsed := document.Parse(doc.Source, doc.OutFileName, doc.SourceFileName, doc.SubDirParts, collector)
		if parsed == nil {
			continue
		}
		model := entity.Analyze(parsed, collector)
		if model == nil {
			continue
		}
		if _, seen := byModule[doc.Module]; !seen {
			moduleOrder = append(moduleOrder, doc.Module)
		}
		byModule[doc.Module] = append(byModule[doc.Module], model)
		c.log.Debug("analyzed entity",
			zap.String("module", doc.Module),
			zap.String("entity", model.ClassName()),
			zap.String("kind", model.Kind().String()))
	}

	modules := make([]resolve.ModuleModels, 0, len(moduleOrder))
	for _, name := range moduleOrder {
		modules = append(modules, resolve.ModuleModels{Name: name, Models: byModule[name]})
	}

	// Stage 2: resolve every field type against the complete shell set, then
	// cross-check relations and indexes.
	universe := resolve.NewUniverse(modules)
	resolve.Types(universe, collector)
	resolve.Relations(universe, collector)
	resolve.Indexes(universe, collector)

	c.log.Debug("compilation finished",
		zap.Int("modules", len(modules)),
		zap.Int("diagnostics", collector.Len()),
		zap.Bool("failed", collector.HasErrors()))

	return &ModuleSchema{Modules: modules}, collector
}
