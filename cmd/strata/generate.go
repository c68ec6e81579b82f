package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strata-framework/strata/internal/cli/config"
	"github.com/strata-framework/strata/internal/compiler"
	"github.com/strata-framework/strata/internal/compiler/diag"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compile entity definitions and report diagnostics",
	Long:  "Compile every entity definition document declared in strata.yaml and report all diagnostics found across the whole set",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		docs, err := collectDocuments(cfg)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return fmt.Errorf("no entity definition documents found under %s", cfg.Protocol.Dir)
		}

		schema, collector := compiler.New(log).Compile(docs)

		if collector.Len() > 0 {
			fmt.Fprint(os.Stderr, diag.FormatAll(collector))
		}
		if collector.HasErrors() {
			return fmt.Errorf("compilation failed")
		}

		fmt.Printf("Compiled %d entity definition(s) across %d module(s)\n",
			len(schema.AllModels()), len(schema.Modules))
		return nil
	},
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// collectDocuments walks the root protocol directory and every declared
// module directory for .yaml documents, preserving the configured module
// order. Sub-directories under a protocol directory become the namespace path
// of the generated code.
func collectDocuments(cfg *config.Config) ([]compiler.SourceDocument, error) {
	docs, err := walkProtocolDir("", cfg.Protocol.Dir)
	if err != nil {
		return nil, err
	}
	for _, mod := range cfg.Protocol.Modules {
		modDocs, err := walkProtocolDir(mod.Name, mod.Dir)
		if err != nil {
			return nil, err
		}
		docs = append(docs, modDocs...)
	}
	return docs, nil
}

func walkProtocolDir(module, dir string) ([]compiler.SourceDocument, error) {
	var docs []compiler.SourceDocument
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		var subDirParts []string
		if sub := filepath.Dir(rel); sub != "." {
			subDirParts = strings.Split(filepath.ToSlash(sub), "/")
		}
		base := strings.TrimSuffix(filepath.Base(path), ".yaml")

		docs = append(docs, compiler.SourceDocument{
			Module:         module,
			OutFileName:    base + ".go",
			SourceFileName: filepath.ToSlash(path),
			SubDirParts:    subDirParts,
			Source:         source,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return docs, nil
}
