// Package parser wraps tree-sitter behind a small provider: extension-based
// language detection, lazily cached grammar objects, and a parse contract
// that degrades to nil instead of failing the caller's pipeline.
package parser

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// extensionToLanguage maps file extensions (lowercased) to language ids.
// JavaScript parses under the TypeScript superset grammar; .tsx/.jsx map to
// the TSX grammar variant.
var extensionToLanguage = map[string]string{
	".py":   "python",
	".pyw":  "python",
	".ts":   "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".tsx":  "tsx",
	".js":   "typescript",
	".mjs":  "typescript",
	".cjs":  "typescript",
	".jsx":  "tsx",
	".java": "java",
}

// Provider parses source files into tree-sitter syntax trees.
//
// Grammar objects are the expensive artifacts and are cached per language
// for the provider's lifetime; the check-then-create sequence is guarded so
// providers are safe to share across concurrent per-file extraction.
// Parser instances themselves are created per call: tree-sitter parsers are
// not reentrant.
type Provider struct {
	mu        sync.Mutex
	languages map[string]*sitter.Language
}

// New creates a Provider with an empty language cache.
func New() *Provider {
	return &Provider{languages: make(map[string]*sitter.Language)}
}

// DetectLanguage maps a file path to a language id by extension,
// case-insensitively. Returns "" for unsupported extensions.
func (p *Provider) DetectLanguage(filePath string) string {
	idx := strings.LastIndex(filePath, ".")
	if idx == -1 {
		return ""
	}
	return extensionToLanguage[strings.ToLower(filePath[idx:])]
}

// IsSupported reports whether a file's language is supported.
func (p *Provider) IsSupported(filePath string) bool {
	return p.DetectLanguage(filePath) != ""
}

// Parse parses source into a syntax tree. Any failure (unsupported
// language, grammar load, parse) yields nil rather than an error: parse
// failures must never abort the calling pipeline. The returned tree must be
// Close()d by the caller.
func (p *Provider) Parse(source []byte, language string) *sitter.Tree {
	lang := p.language(language)
	if lang == nil {
		return nil
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		logrus.WithField("language", language).Debugf("failed to set grammar: %v", err)
		return nil
	}

	return parser.Parse(source, nil)
}

// ParseFile reads and parses a file, returning the tree and detected
// language. Read errors and detection failures both yield (nil, "").
func (p *Provider) ParseFile(filePath string) (*sitter.Tree, string) {
	language := p.DetectLanguage(filePath)
	if language == "" {
		return nil, ""
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		logrus.WithField("file", filePath).Debugf("read failed: %v", err)
		return nil, ""
	}

	tree := p.Parse(source, language)
	if tree == nil {
		return nil, ""
	}
	return tree, language
}

// language returns the cached grammar for a language id, loading it on
// first use.
func (p *Provider) language(name string) *sitter.Language {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lang, ok := p.languages[name]; ok {
		return lang
	}

	var lang *sitter.Language
	switch name {
	case "python":
		lang = sitter.NewLanguage(python.Language())
	case "typescript":
		lang = sitter.NewLanguage(typescript.LanguageTypescript())
	case "tsx":
		lang = sitter.NewLanguage(typescript.LanguageTSX())
	case "java":
		lang = sitter.NewLanguage(java.Language())
	default:
		logrus.WithField("language", name).Debug("unsupported language")
		return nil
	}

	p.languages[name] = lang
	return lang
}
