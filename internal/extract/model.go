package extract

import "strings"

// ImportInfo represents one import/include statement.
type ImportInfo struct {
	// Module is the imported module or package path as written in source.
	Module string
	// Names lists the specific imported symbols; empty means the whole module.
	Names []string
	// Alias is the local rebinding (import x as y), if any.
	Alias string
	// IsExternal is true when the module does not look like a relative or
	// project-internal path.
	IsExternal bool
}

// ParameterInfo represents one function or method parameter.
type ParameterInfo struct {
	Name           string
	TypeAnnotation string
	DefaultValue   string
	// IsOptional is true when the parameter has a default value or is
	// explicitly marked optional.
	IsOptional bool
}

// Trigger kinds.
const (
	TriggerHTTP = "http"
	TriggerCLI  = "cli"
)

// TriggerInfo is a detected binding from code to an external invocation
// mechanism: an HTTP route or a CLI command.
type TriggerInfo struct {
	Kind    string // "http" or "cli"
	Method  string // HTTP method for http triggers
	Route   string // route path for http triggers
	Command string // command name for cli triggers
}

// FunctionSignature represents a function or method signature.
type FunctionSignature struct {
	Name       string
	Parameters []ParameterInfo
	ReturnType string
	IsAsync    bool
	// IsMethod is true only for functions defined inside a class. Methods
	// never appear in FileMetadata.Functions; they live in ClassInfo.Methods.
	IsMethod   bool
	Decorators []string
	Docstring  string
	Triggers   []TriggerInfo
}

// ClassInfo represents a class definition.
type ClassInfo struct {
	Name       string
	Bases      []string
	Methods    []FunctionSignature
	Decorators []string
	Docstring  string
	// IsDataRecord marks plain data-record classes (dataclass, Kotlin-style
	// data modifier, Java record).
	IsDataRecord bool
	// IsValidatedModel marks validated model types (pydantic BaseModel and
	// friends).
	IsValidatedModel bool
}

// FieldInfo represents a field in a data contract.
type FieldInfo struct {
	Name           string
	TypeAnnotation string // "Any" when not statically annotated
	Optional       bool
	DefaultValue   string
}

// Contract kinds produced by extractors.
const (
	ContractInterface = "interface"
	ContractTypeAlias = "type"
	ContractEnum      = "enum"
	ContractDataclass = "dataclass"
	ContractModel     = "model"
	ContractTypedDict = "typeddict"
	ContractRecord    = "record"
	ContractSealed    = "sealed"
)

// DataContractInfo represents a named, field-bearing type declaration
// extracted for API/shape documentation.
type DataContractInfo struct {
	Name   string
	Kind   string
	Fields []FieldInfo
	// SourceText keeps the original declaration for downstream embedding.
	SourceText string
}

// Entry point kinds.
const (
	EntryMain             = "main"
	EntryCLI              = "cli"
	EntryAPIRoute         = "api_route"
	EntryAndroidComponent = "android_component"
)

// FileMetadata is the root aggregate of extraction for one source file.
// It is constructed once by ExtractAll, mutated exactly once afterward to
// set Description and FileHash, and then treated as immutable.
type FileMetadata struct {
	FilePath string
	Language string

	// Description is a natural-language summary filled in by the
	// description generator after extraction.
	Description string

	Imports   []ImportInfo
	Exports   []string
	Classes   []ClassInfo
	Functions []FunctionSignature
	Contracts []DataContractInfo

	IsEntryPoint   bool
	EntryPointKind string // non-empty iff IsEntryPoint
	IsBarrel       bool
	IsTest         bool
	IsConfig       bool

	// FileHash tracks content staleness.
	FileHash string
}

// ExportList returns the deduplicated union of explicit exports, class
// names, and top-level (non-method) function names, in first-seen order.
func (m *FileMetadata) ExportList() []string {
	seen := make(map[string]bool)
	var symbols []string

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		symbols = append(symbols, name)
	}

	for _, e := range m.Exports {
		add(e)
	}
	for _, c := range m.Classes {
		add(c.Name)
	}
	for _, f := range m.Functions {
		if !f.IsMethod {
			add(f.Name)
		}
	}

	return symbols
}

// searchContentMaxNames caps export and import names included in the
// searchable rendering to bound document size.
const searchContentMaxNames = 10

// SearchContent renders the metadata as searchable text for embedding.
func (m *FileMetadata) SearchContent() string {
	parts := []string{m.FilePath}

	if m.Description != "" {
		parts = append(parts, m.Description)
	}

	if len(m.Exports) > 0 {
		exports := m.Exports
		if len(exports) > searchContentMaxNames {
			exports = exports[:searchContentMaxNames]
		}
		parts = append(parts, "Exports: "+strings.Join(exports, ", "))
	}

	if len(m.Imports) > 0 {
		var modules []string
		for i, imp := range m.Imports {
			if i == searchContentMaxNames {
				break
			}
			modules = append(modules, imp.Module)
		}
		parts = append(parts, "Imports: "+strings.Join(modules, ", "))
	}

	return strings.Join(parts, "\n\n")
}
