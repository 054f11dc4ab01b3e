package extract

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// typeScriptExtractor extracts metadata from TypeScript, TSX, and
// JavaScript source files (JS parses under the TS superset grammar).
type typeScriptExtractor struct{}

// NewTypeScriptExtractor creates the TypeScript extractor.
func NewTypeScriptExtractor() Extractor {
	return &typeScriptExtractor{}
}

func (e *typeScriptExtractor) Language() string { return "typescript" }

func (e *typeScriptExtractor) Imports(root *sitter.Node, source []byte) []ImportInfo {
	var imports []ImportInfo

	for _, node := range collect(root, "import_statement") {
		var module string
		var names []string
		var alias string

		if stringNode := findChild(node, "string"); stringNode != nil {
			module = stringContent(stringNode, source)
		}

		if clause := findChild(node, "import_clause"); clause != nil {
			for i := 0; i < int(clause.ChildCount()); i++ {
				child := clause.Child(uint(i))
				switch child.Kind() {
				case "identifier":
					// Default import: import X from 'y'
					names = append(names, nodeText(child, source))
				case "named_imports":
					// import { a, b } from 'y'
					for _, spec := range findChildren(child, "import_specifier") {
						if nameNode := findChild(spec, "identifier"); nameNode != nil {
							names = append(names, nodeText(nameNode, source))
						}
					}
				case "namespace_import":
					// import * as x from 'y'
					if nameNode := findChild(child, "identifier"); nameNode != nil {
						alias = nodeText(nameNode, source)
						names = append(names, "*")
					}
				}
			}
		}

		if module != "" {
			imports = append(imports, ImportInfo{
				Module:     module,
				Names:      names,
				Alias:      alias,
				IsExternal: !strings.HasPrefix(module, "."),
			})
		}
	}

	return imports
}

// Exports extracts exported symbol names. Re-exports (export ... from) are
// skipped: they are barrel signals, not own exports.
func (e *typeScriptExtractor) Exports(root *sitter.Node, source []byte) []string {
	var exports []string

	for _, node := range collect(root, "export_statement") {
		if findChild(node, "from") != nil {
			continue
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			switch child.Kind() {
			case "interface_declaration", "type_alias_declaration", "class_declaration":
				if nameNode := findChild(child, "type_identifier"); nameNode != nil {
					exports = append(exports, nodeText(nameNode, source))
				}
			case "function_declaration", "enum_declaration":
				if nameNode := findChild(child, "identifier"); nameNode != nil {
					exports = append(exports, nodeText(nameNode, source))
				}
			case "lexical_declaration":
				for _, decl := range collect(child, "variable_declarator") {
					if nameNode := findChild(decl, "identifier"); nameNode != nil {
						exports = append(exports, nodeText(nameNode, source))
					}
				}
			case "identifier":
				// export default X
				exports = append(exports, nodeText(child, source))
			case "export_clause":
				// export { a, b, c }
				for _, spec := range collect(child, "export_specifier") {
					if nameNode := findChild(spec, "identifier"); nameNode != nil {
						exports = append(exports, nodeText(nameNode, source))
					}
				}
			}
		}
	}

	return exports
}

func (e *typeScriptExtractor) Classes(root *sitter.Node, source []byte) []ClassInfo {
	var classes []ClassInfo

	for _, node := range collect(root, "class_declaration") {
		nameNode := findChild(node, "type_identifier")
		if nameNode == nil {
			continue
		}

		var bases []string
		if heritage := findChild(node, "class_heritage"); heritage != nil {
			if extends := findChild(heritage, "extends_clause"); extends != nil {
				for i := 0; i < int(extends.ChildCount()); i++ {
					child := extends.Child(uint(i))
					if child.Kind() == "identifier" || child.Kind() == "type_identifier" {
						bases = append(bases, nodeText(child, source))
					}
				}
			}
			if implements := findChild(heritage, "implements_clause"); implements != nil {
				for _, ident := range collect(implements, "type_identifier") {
					bases = append(bases, nodeText(ident, source))
				}
			}
		}

		var methods []FunctionSignature
		if body := findChild(node, "class_body"); body != nil {
			for _, methodNode := range findChildren(body, "method_definition") {
				if sig, ok := e.method(methodNode, source); ok {
					methods = append(methods, sig)
				}
			}
		}

		classes = append(classes, ClassInfo{
			Name:    nodeText(nameNode, source),
			Bases:   bases,
			Methods: methods,
		})
	}

	return classes
}

func (e *typeScriptExtractor) method(node *sitter.Node, source []byte) (FunctionSignature, bool) {
	nameNode := findChild(node, "property_identifier")
	if nameNode == nil {
		return FunctionSignature{}, false
	}

	sig := FunctionSignature{
		Name:     nodeText(nameNode, source),
		IsAsync:  findChild(node, "async") != nil,
		IsMethod: true,
	}
	if params := findChild(node, "formal_parameters"); params != nil {
		sig.Parameters = e.parameters(params, source)
	}
	if ann := findChild(node, "type_annotation"); ann != nil {
		sig.ReturnType = typeAnnotationText(ann, source)
	}
	return sig, true
}

// Functions extracts top-level functions, including exported declarations
// and exported arrow-function constants. Express-style route DSL calls are
// attached as triggers to the first extracted function.
func (e *typeScriptExtractor) Functions(root *sitter.Node, source []byte) []FunctionSignature {
	var functions []FunctionSignature

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "function_declaration":
			if sig, ok := e.function(node, source); ok {
				functions = append(functions, sig)
			}
		case "export_statement":
			if funcNode := findChild(node, "function_declaration"); funcNode != nil {
				if sig, ok := e.function(funcNode, source); ok {
					functions = append(functions, sig)
				}
			}
			if lexNode := findChild(node, "lexical_declaration"); lexNode != nil {
				for _, decl := range collect(lexNode, "variable_declarator") {
					arrow := findChild(decl, "arrow_function")
					nameNode := findChild(decl, "identifier")
					if arrow == nil || nameNode == nil {
						continue
					}
					functions = append(functions, e.arrowFunction(arrow, nodeText(nameNode, source), source))
				}
			}
		}
	}

	if triggers := e.routeCallTriggers(root, source); len(triggers) > 0 && len(functions) > 0 {
		functions[0].Triggers = append(functions[0].Triggers, triggers...)
	}

	return functions
}

func (e *typeScriptExtractor) function(node *sitter.Node, source []byte) (FunctionSignature, bool) {
	nameNode := findChild(node, "identifier")
	if nameNode == nil {
		return FunctionSignature{}, false
	}

	sig := FunctionSignature{
		Name:    nodeText(nameNode, source),
		IsAsync: findChild(node, "async") != nil,
	}
	if params := findChild(node, "formal_parameters"); params != nil {
		sig.Parameters = e.parameters(params, source)
	}
	if ann := findChild(node, "type_annotation"); ann != nil {
		sig.ReturnType = typeAnnotationText(ann, source)
	}
	return sig, true
}

func (e *typeScriptExtractor) arrowFunction(node *sitter.Node, name string, source []byte) FunctionSignature {
	sig := FunctionSignature{
		Name:    name,
		IsAsync: findChild(node, "async") != nil,
	}
	if params := findChild(node, "formal_parameters"); params != nil {
		sig.Parameters = e.parameters(params, source)
	}
	if ann := findChild(node, "type_annotation"); ann != nil {
		sig.ReturnType = typeAnnotationText(ann, source)
	}
	return sig
}

func (e *typeScriptExtractor) parameters(node *sitter.Node, source []byte) []ParameterInfo {
	var params []ParameterInfo

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() != "required_parameter" && child.Kind() != "optional_parameter" {
			continue
		}

		param := ParameterInfo{IsOptional: child.Kind() == "optional_parameter"}
		for j := 0; j < int(child.ChildCount()); j++ {
			sub := child.Child(uint(j))
			switch sub.Kind() {
			case "identifier":
				param.Name = nodeText(sub, source)
			case "type_annotation":
				param.TypeAnnotation = typeAnnotationText(sub, source)
			}
		}
		if param.Name != "" {
			params = append(params, param)
		}
	}

	return params
}

// DataContracts extracts interfaces, type aliases, and enums.
func (e *typeScriptExtractor) DataContracts(root *sitter.Node, source []byte) []DataContractInfo {
	var contracts []DataContractInfo

	for _, node := range collect(root, "interface_declaration") {
		nameNode := findChild(node, "type_identifier")
		if nameNode == nil {
			continue
		}

		var fields []FieldInfo
		if body := findChild(node, "interface_body"); body != nil {
			for _, prop := range findChildren(body, "property_signature") {
				if field, ok := e.propertySignature(prop, source); ok {
					fields = append(fields, field)
				}
			}
		}

		contracts = append(contracts, DataContractInfo{
			Name:       nodeText(nameNode, source),
			Kind:       ContractInterface,
			Fields:     fields,
			SourceText: nodeText(node, source),
		})
	}

	for _, node := range collect(root, "type_alias_declaration") {
		nameNode := findChild(node, "type_identifier")
		if nameNode == nil {
			continue
		}
		contracts = append(contracts, DataContractInfo{
			Name:       nodeText(nameNode, source),
			Kind:       ContractTypeAlias,
			SourceText: nodeText(node, source),
		})
	}

	for _, node := range collect(root, "enum_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}

		var fields []FieldInfo
		if body := findChild(node, "enum_body"); body != nil {
			for _, assign := range findChildren(body, "enum_assignment") {
				if fieldName := findChild(assign, "property_identifier"); fieldName != nil {
					fields = append(fields, FieldInfo{
						Name:           nodeText(fieldName, source),
						TypeAnnotation: "enum_member",
					})
				}
			}
		}

		contracts = append(contracts, DataContractInfo{
			Name:       nodeText(nameNode, source),
			Kind:       ContractEnum,
			Fields:     fields,
			SourceText: nodeText(node, source),
		})
	}

	return contracts
}

func (e *typeScriptExtractor) propertySignature(node *sitter.Node, source []byte) (FieldInfo, bool) {
	field := FieldInfo{TypeAnnotation: "unknown"}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "property_identifier":
			field.Name = nodeText(child, source)
		case "?":
			field.Optional = true
		case "type_annotation":
			field.TypeAnnotation = typeAnnotationText(child, source)
		}
	}

	if field.Name == "" {
		return FieldInfo{}, false
	}
	return field, true
}

// tsEntryNames are conventional entry filenames for main-kind detection.
var tsEntryNames = map[string]bool{
	"index.ts": true, "index.js": true,
	"main.ts": true, "main.js": true,
	"app.ts": true, "app.js": true,
}

// tsRoutePatterns is the fixed vocabulary scanned for Express/Fastify-style
// route registrations. Substring matching against lowered source is
// intentional and load-bearing; see DetectEntryPoint.
var tsRoutePatterns = []string{"app.get", "app.post", "app.put", "app.delete", "router.get", "router.post"}

// DetectEntryPoint classifies entry points in fixed priority order:
// conventional main filename (non-barrel), web-framework route call,
// route-file default export, CLI framework.
//
// The route scan is a literal substring check against the source text, not
// a structural match. That can over-match (a string literal containing
// "app.get" counts), but the behavior is a deliberate contract inherited
// from the route vocabularies.
func (e *typeScriptExtractor) DetectEntryPoint(root *sitter.Node, source []byte, filePath string) string {
	name := strings.ToLower(filepath.Base(filePath))

	if tsEntryNames[name] && !e.DetectBarrel(root, source, filePath) {
		return EntryMain
	}

	sourceLower := strings.ToLower(string(source))
	for _, pattern := range tsRoutePatterns {
		if strings.Contains(sourceLower, pattern) {
			return EntryAPIRoute
		}
	}

	// Next.js / Remix style route handlers
	src := string(source)
	if strings.Contains(src, "export default function") || strings.Contains(src, "export async function") {
		for _, marker := range []string{"page.", "route.", "[", "+"} {
			if strings.Contains(name, marker) {
				return EntryAPIRoute
			}
		}
	}

	for _, cli := range []string{"commander", "yargs", "meow"} {
		if strings.Contains(sourceLower, cli) {
			return EntryCLI
		}
	}

	return ""
}

// tsBarrelNames are the only filenames that can be barrels.
var tsBarrelNames = map[string]bool{
	"index.ts": true, "index.js": true, "index.tsx": true, "index.jsx": true,
}

// DetectBarrel reports whether an index file consists solely of re-exports
// and imports. Own declarations disqualify it.
func (e *typeScriptExtractor) DetectBarrel(root *sitter.Node, source []byte, filePath string) bool {
	if !tsBarrelNames[strings.ToLower(filepath.Base(filePath))] {
		return false
	}

	hasReExports := false
	hasOwnCode := false

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "export_statement":
			if findChild(node, "from") != nil {
				hasReExports = true
			} else {
				hasOwnCode = true
			}
		case "function_declaration", "class_declaration", "lexical_declaration", "variable_declaration":
			hasOwnCode = true
		case "import_statement", "comment":
			// imports and comments don't count as own code
		}
	}

	return hasReExports && !hasOwnCode
}

// tsRouteReceivers are the receiver identifiers recognized in route DSL
// calls like app.get("/users", handler).
var tsRouteReceivers = map[string]bool{"app": true, "router": true, "server": true}

// routeCallTriggers extracts Express-style DSL route registrations, where
// the route is a direct method call rather than a decorator.
func (e *typeScriptExtractor) routeCallTriggers(root *sitter.Node, source []byte) []TriggerInfo {
	var triggers []TriggerInfo

	for _, call := range collect(root, "call_expression") {
		member := findChild(call, "member_expression")
		if member == nil {
			continue
		}
		object := findChild(member, "identifier")
		property := findChild(member, "property_identifier")
		if object == nil || property == nil {
			continue
		}
		if !tsRouteReceivers[strings.ToLower(nodeText(object, source))] {
			continue
		}

		method := strings.ToLower(nodeText(property, source))
		if !isHTTPMethodName(method) {
			continue
		}

		route := "/"
		if args := findChild(call, "arguments"); args != nil {
			if stringNode := findChild(args, "string"); stringNode != nil {
				route = stringContent(stringNode, source)
			}
		}

		triggers = append(triggers, TriggerInfo{
			Kind:   TriggerHTTP,
			Method: strings.ToUpper(method),
			Route:  route,
		})
	}

	return triggers
}

func isHTTPMethodName(name string) bool {
	switch name {
	case "get", "post", "put", "delete", "patch", "head", "options":
		return true
	}
	return false
}

// stringContent extracts a string literal's content without quotes.
func stringContent(node *sitter.Node, source []byte) string {
	if fragment := findChild(node, "string_fragment"); fragment != nil {
		return nodeText(fragment, source)
	}
	return strings.Trim(nodeText(node, source), `'"`)
}

// typeAnnotationText extracts the type from a type_annotation node,
// skipping the leading colon.
func typeAnnotationText(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() != ":" {
			return nodeText(child, source)
		}
	}
	return ""
}
