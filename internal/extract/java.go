package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// javaExtractor extracts metadata from Java source files.
type javaExtractor struct{}

// NewJavaExtractor creates the Java extractor.
func NewJavaExtractor() Extractor {
	return &javaExtractor{}
}

func (e *javaExtractor) Language() string { return "java" }

// javaExternalPrefixes mark imports that are definitely platform or
// framework packages.
var javaExternalPrefixes = []string{"java.", "javax.", "jakarta.", "android.", "kotlin.", "org.springframework."}

func (e *javaExtractor) Imports(root *sitter.Node, source []byte) []ImportInfo {
	var imports []ImportInfo

	for _, node := range collect(root, "import_declaration") {
		pathNode := findChild(node, "scoped_identifier")
		if pathNode == nil {
			pathNode = findChild(node, "identifier")
		}
		if pathNode == nil {
			continue
		}

		module := nodeText(pathNode, source)
		var names []string
		if findChild(node, "asterisk") != nil {
			names = append(names, "*")
		}

		imports = append(imports, ImportInfo{
			Module:     module,
			Names:      names,
			IsExternal: javaModuleIsExternal(module),
		})
	}

	return imports
}

// javaModuleIsExternal defaults to external for qualified names; only
// single-segment names are treated as internal. Known platform prefixes are
// always external.
func javaModuleIsExternal(module string) bool {
	if module == "" {
		return false
	}
	for _, prefix := range javaExternalPrefixes {
		if strings.HasPrefix(module, prefix) {
			return true
		}
	}
	return strings.Contains(module, ".")
}

// Exports lists top-level type names. Java types are exported by default;
// only an explicit private or protected modifier hides them.
func (e *javaExtractor) Exports(root *sitter.Node, source []byte) []string {
	var exports []string

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			if e.isHidden(node) {
				continue
			}
			if nameNode := findChild(node, "identifier"); nameNode != nil {
				exports = append(exports, nodeText(nameNode, source))
			}
		}
	}

	return exports
}

func (e *javaExtractor) isHidden(node *sitter.Node) bool {
	modifiers := findChild(node, "modifiers")
	if modifiers == nil {
		return false
	}
	return findChild(modifiers, "private") != nil || findChild(modifiers, "protected") != nil
}

func (e *javaExtractor) Classes(root *sitter.Node, source []byte) []ClassInfo {
	var classes []ClassInfo

	for _, node := range collect(root, "class_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}

		var bases []string
		if superclass := findChild(node, "superclass"); superclass != nil {
			for _, t := range collect(superclass, "type_identifier") {
				bases = append(bases, nodeText(t, source))
			}
		}
		if interfaces := findChild(node, "super_interfaces"); interfaces != nil {
			for _, t := range collect(interfaces, "type_identifier") {
				bases = append(bases, nodeText(t, source))
			}
		}

		var methods []FunctionSignature
		if body := findChild(node, "class_body"); body != nil {
			for _, methodNode := range findChildren(body, "method_declaration") {
				if sig, ok := e.method(methodNode, source); ok {
					methods = append(methods, sig)
				}
			}
		}

		classes = append(classes, ClassInfo{
			Name:       nodeText(nameNode, source),
			Bases:      bases,
			Methods:    methods,
			Decorators: e.annotations(node, source),
		})
	}

	return classes
}

func (e *javaExtractor) method(node *sitter.Node, source []byte) (FunctionSignature, bool) {
	nameNode := findChild(node, "identifier")
	if nameNode == nil {
		return FunctionSignature{}, false
	}

	sig := FunctionSignature{
		Name:       nodeText(nameNode, source),
		IsMethod:   true,
		Decorators: e.annotations(node, source),
		Triggers:   e.triggers(node, source),
	}

	if params := findChild(node, "formal_parameters"); params != nil {
		sig.Parameters = e.parameters(params, source)
	}

	// Return type is the child right before the method name; match on the
	// grammar's type node kinds.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "type_identifier", "generic_type", "integral_type", "floating_point_type", "boolean_type", "void_type", "array_type", "scoped_type_identifier":
			sig.ReturnType = nodeText(child, source)
		}
	}

	return sig, true
}

func (e *javaExtractor) parameters(node *sitter.Node, source []byte) []ParameterInfo {
	var params []ParameterInfo

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() != "formal_parameter" && child.Kind() != "spread_parameter" {
			continue
		}

		param := ParameterInfo{}
		for j := 0; j < int(child.ChildCount()); j++ {
			sub := child.Child(uint(j))
			switch sub.Kind() {
			case "identifier":
				param.Name = nodeText(sub, source)
			case "type_identifier", "generic_type", "integral_type", "floating_point_type", "boolean_type", "array_type", "scoped_type_identifier":
				param.TypeAnnotation = nodeText(sub, source)
			}
		}
		if param.Name != "" {
			params = append(params, param)
		}
	}

	return params
}

// Functions returns nothing: Java has no top-level functions, so every
// callable lives in ClassInfo.Methods.
func (e *javaExtractor) Functions(root *sitter.Node, source []byte) []FunctionSignature {
	return nil
}

// DataContracts extracts records, interfaces, enums, and sealed classes.
func (e *javaExtractor) DataContracts(root *sitter.Node, source []byte) []DataContractInfo {
	var contracts []DataContractInfo

	for _, node := range collect(root, "record_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}

		var fields []FieldInfo
		if params := findChild(node, "formal_parameters"); params != nil {
			for _, field := range e.parameters(params, source) {
				t := field.TypeAnnotation
				if t == "" {
					t = "Object"
				}
				fields = append(fields, FieldInfo{Name: field.Name, TypeAnnotation: t})
			}
		}

		contracts = append(contracts, DataContractInfo{
			Name:       nodeText(nameNode, source),
			Kind:       ContractRecord,
			Fields:     fields,
			SourceText: nodeText(node, source),
		})
	}

	for _, node := range collect(root, "interface_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}

		var fields []FieldInfo
		if body := findChild(node, "interface_body"); body != nil {
			for _, decl := range findChildren(body, "constant_declaration") {
				if field, ok := e.fieldDeclaration(decl, source); ok {
					fields = append(fields, field)
				}
			}
			for _, decl := range findChildren(body, "field_declaration") {
				if field, ok := e.fieldDeclaration(decl, source); ok {
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

	for _, node := range collect(root, "enum_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}

		var fields []FieldInfo
		if body := findChild(node, "enum_body"); body != nil {
			for _, constant := range findChildren(body, "enum_constant") {
				if constName := findChild(constant, "identifier"); constName != nil {
					fields = append(fields, FieldInfo{
						Name:           nodeText(constName, source),
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

	// Sealed classes are contracts too: their permitted subtypes define a
	// closed shape.
	for _, node := range collect(root, "class_declaration") {
		modifiers := findChild(node, "modifiers")
		if modifiers == nil || findChild(modifiers, "sealed") == nil {
			continue
		}
		nameNode := findChild(node, "identifier")
		if nameNode == nil {
			continue
		}
		contracts = append(contracts, DataContractInfo{
			Name:       nodeText(nameNode, source),
			Kind:       ContractSealed,
			SourceText: nodeText(node, source),
		})
	}

	return contracts
}

func (e *javaExtractor) fieldDeclaration(node *sitter.Node, source []byte) (FieldInfo, bool) {
	declarator := findChild(node, "variable_declarator")
	if declarator == nil {
		return FieldInfo{}, false
	}
	nameNode := findChild(declarator, "identifier")
	if nameNode == nil {
		return FieldInfo{}, false
	}

	field := FieldInfo{Name: nodeText(nameNode, source), TypeAnnotation: "Object"}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "type_identifier", "generic_type", "integral_type", "floating_point_type", "boolean_type", "array_type", "scoped_type_identifier":
			field.TypeAnnotation = nodeText(child, source)
		}
	}

	if valueNode := declarator.ChildByFieldName("value"); valueNode != nil {
		field.DefaultValue = nodeText(valueNode, source)
		field.Optional = true
	}

	return field, true
}

// annotations extracts annotation names (without @) from a declaration's
// modifiers.
func (e *javaExtractor) annotations(node *sitter.Node, source []byte) []string {
	modifiers := findChild(node, "modifiers")
	if modifiers == nil {
		return nil
	}

	var annotations []string
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		child := modifiers.Child(uint(i))
		if child.Kind() != "annotation" && child.Kind() != "marker_annotation" {
			continue
		}
		if nameNode := findChild(child, "identifier"); nameNode != nil {
			annotations = append(annotations, nodeText(nameNode, source))
		}
	}
	return annotations
}

// springMappings is the fixed vocabulary of Spring route annotations mapped
// to HTTP methods. RequestMapping carries its method in the annotation
// arguments.
var springMappings = []struct {
	name   string
	method string
}{
	{"GetMapping", "GET"},
	{"PostMapping", "POST"},
	{"PutMapping", "PUT"},
	{"DeleteMapping", "DELETE"},
	{"PatchMapping", "PATCH"},
	{"RequestMapping", ""},
}

var annotationStringRe = regexp.MustCompile(`["']([^"']+)["']`)

// triggers extracts Spring route triggers and picocli command triggers from
// a method's annotations. Matching is a substring check against the
// annotation's rendered text; for RequestMapping the HTTP method is found
// by case-insensitive token search, defaulting to GET.
func (e *javaExtractor) triggers(node *sitter.Node, source []byte) []TriggerInfo {
	modifiers := findChild(node, "modifiers")
	if modifiers == nil {
		return nil
	}

	var triggers []TriggerInfo
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		child := modifiers.Child(uint(i))
		if child.Kind() != "annotation" && child.Kind() != "marker_annotation" {
			continue
		}

		annText := nodeText(child, source)

		matched := false
		for _, mapping := range springMappings {
			if !strings.Contains(annText, mapping.name) {
				continue
			}

			route := "/"
			if m := annotationStringRe.FindStringSubmatch(annText); m != nil {
				route = m[1]
			}

			method := mapping.method
			if mapping.name == "RequestMapping" {
				method = requestMappingMethod(annText)
			}

			triggers = append(triggers, TriggerInfo{Kind: TriggerHTTP, Method: method, Route: route})
			matched = true
			break
		}
		if matched {
			continue
		}

		if strings.Contains(annText, "Command") {
			// picocli @Command(name = "serve")
			var command string
			if m := annotationStringRe.FindStringSubmatch(annText); m != nil {
				command = m[1]
			}
			triggers = append(triggers, TriggerInfo{Kind: TriggerCLI, Command: command})
		}
	}

	return triggers
}

// requestMappingMethod searches annotation text for an HTTP method token,
// defaulting to GET.
func requestMappingMethod(annText string) string {
	upper := strings.ToUpper(annText)
	for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
		if strings.Contains(upper, method) {
			return method
		}
	}
	return "GET"
}

// javaEntryNames are conventional entry filenames.
var javaEntryNames = map[string]bool{
	"main.java": true, "app.java": true, "application.java": true,
}

// javaRouteMarkers is the fixed vocabulary scanned (lowercased, substring)
// for Spring web surfaces.
var javaRouteMarkers = []string{"@getmapping", "@postmapping", "@requestmapping", "@restcontroller", "@controller"}

// DetectEntryPoint classifies entry points in fixed priority order: a
// static main method, a picocli CLI surface, a Spring web surface, a
// conventional entry filename, an Android component superclass.
func (e *javaExtractor) DetectEntryPoint(root *sitter.Node, source []byte, filePath string) string {
	for _, node := range collect(root, "method_declaration") {
		nameNode := findChild(node, "identifier")
		if nameNode == nil || nodeText(nameNode, source) != "main" {
			continue
		}
		if modifiers := findChild(node, "modifiers"); modifiers != nil && findChild(modifiers, "static") != nil {
			return EntryMain
		}
	}

	for _, imp := range e.Imports(root, source) {
		if strings.HasPrefix(imp.Module, "picocli.") {
			return EntryCLI
		}
	}

	sourceLower := strings.ToLower(string(source))
	for _, marker := range javaRouteMarkers {
		if strings.Contains(sourceLower, marker) {
			return EntryAPIRoute
		}
	}

	name := strings.ToLower(filepath.Base(filePath))
	if javaEntryNames[name] {
		return EntryMain
	}

	if strings.Contains(name, "activity") || strings.Contains(name, "fragment") {
		for _, node := range collect(root, "class_declaration") {
			superclass := findChild(node, "superclass")
			if superclass == nil {
				continue
			}
			base := strings.ToLower(nodeText(superclass, source))
			if strings.Contains(base, "activity") || strings.Contains(base, "fragment") {
				return EntryAndroidComponent
			}
		}
	}

	return ""
}

// DetectBarrel always returns false: Java has no barrel-file convention.
func (e *javaExtractor) DetectBarrel(root *sitter.Node, source []byte, filePath string) bool {
	return false
}
