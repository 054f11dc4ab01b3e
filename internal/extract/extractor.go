package extract

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Extractor converts a parsed syntax tree into structured metadata. One
// implementation exists per supported language, uniform across the eight
// operations below.
//
// Every operation must skip a candidate declaration whose expected child
// nodes are missing rather than abort: one malformed declaration never
// prevents extraction of the rest of the file.
type Extractor interface {
	// Language returns the language id this extractor handles.
	Language() string

	// Imports extracts import statements.
	Imports(root *sitter.Node, source []byte) []ImportInfo

	// Exports extracts exported symbol names. For languages without
	// explicit export syntax this is the public allow-list if present,
	// else all top-level public names.
	Exports(root *sitter.Node, source []byte) []string

	// Classes extracts class definitions, methods included.
	Classes(root *sitter.Node, source []byte) []ClassInfo

	// Functions extracts top-level functions only; methods are reachable
	// through ClassInfo.Methods.
	Functions(root *sitter.Node, source []byte) []FunctionSignature

	// DataContracts extracts interfaces, type aliases, enums, records and
	// validated models.
	DataContracts(root *sitter.Node, source []byte) []DataContractInfo

	// DetectEntryPoint classifies the file as an execution entry point,
	// returning the entry kind or "" for none. First matching rule wins;
	// the priority order is fixed per language.
	DetectEntryPoint(root *sitter.Node, source []byte, filePath string) string

	// DetectBarrel reports whether the file is a pure re-export barrel.
	DetectBarrel(root *sitter.Node, source []byte, filePath string) bool
}

// ExtractAll runs every extraction operation and assembles the FileMetadata
// record. This is the single assembly path shared by all languages; it calls
// nothing language-specific beyond the Extractor operations.
func ExtractAll(e Extractor, root *sitter.Node, source []byte, filePath string) *FileMetadata {
	entryKind := e.DetectEntryPoint(root, source, filePath)

	return &FileMetadata{
		FilePath:       filePath,
		Language:       e.Language(),
		Imports:        e.Imports(root, source),
		Exports:        e.Exports(root, source),
		Classes:        e.Classes(root, source),
		Functions:      e.Functions(root, source),
		Contracts:      e.DataContracts(root, source),
		IsEntryPoint:   entryKind != "",
		EntryPointKind: entryKind,
		IsBarrel:       e.DetectBarrel(root, source, filePath),
		IsTest:         isTestFile(filePath),
		IsConfig:       isConfigFile(filePath),
	}
}

// Registry resolves extractors by language id. It is an explicitly
// constructed static table, owned by the caller; no registration happens at
// package init time.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds the registry of all supported language extractors.
// The tsx grammar variant shares the TypeScript extractor.
func NewRegistry() *Registry {
	ts := NewTypeScriptExtractor()
	return &Registry{
		extractors: map[string]Extractor{
			"python":     NewPythonExtractor(),
			"typescript": ts,
			"tsx":        ts,
			"java":       NewJavaExtractor(),
		},
	}
}

// Get returns the extractor for a language id, or nil when unsupported.
func (r *Registry) Get(language string) Extractor {
	return r.extractors[language]
}

// Languages lists the registered language ids.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.extractors))
	for lang := range r.extractors {
		langs = append(langs, lang)
	}
	return langs
}

// isTestFile applies the shared filename-pattern heuristics for test files.
func isTestFile(filePath string) bool {
	name := strings.ToLower(filepath.Base(filePath))

	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py") {
		return true
	}
	for _, suffix := range []string{".test.ts", ".spec.ts", ".test.tsx", ".spec.tsx", ".test.js", ".spec.js"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	if strings.HasSuffix(name, "test.java") || strings.HasSuffix(name, "tests.java") {
		return true
	}

	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		switch strings.ToLower(part) {
		case "test", "tests", "__tests__":
			return true
		}
	}

	return false
}

// configNames are exact filenames always classified as configuration.
var configNames = map[string]bool{
	"config.py":      true,
	"settings.py":    true,
	"conf.py":        true,
	"config.ts":      true,
	"config.js":      true,
	"tsconfig.json":  true,
	"package.json":   true,
	"pyproject.toml": true,
	".env":           true,
	".env.example":   true,
}

// isConfigFile applies the shared filename-pattern heuristics for
// configuration files.
func isConfigFile(filePath string) bool {
	name := strings.ToLower(filepath.Base(filePath))

	if configNames[name] {
		return true
	}
	for _, pattern := range []string{"config", "settings", "conf"} {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
