package extract

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// pythonExtractor extracts metadata from Python source files.
type pythonExtractor struct{}

// NewPythonExtractor creates the Python extractor.
func NewPythonExtractor() Extractor {
	return &pythonExtractor{}
}

func (e *pythonExtractor) Language() string { return "python" }

// Imports extracts import and from...import statements.
func (e *pythonExtractor) Imports(root *sitter.Node, source []byte) []ImportInfo {
	var imports []ImportInfo

	// import x, import x as y, import x.y.z
	for _, node := range collect(root, "import_statement") {
		for _, aliased := range findChildren(node, "aliased_import") {
			nameNode := findChild(aliased, "dotted_name")
			if nameNode == nil {
				continue
			}
			module := nodeText(nameNode, source)
			var alias string
			if aliasNode := findChild(aliased, "identifier"); aliasNode != nil {
				alias = nodeText(aliasNode, source)
			}
			imports = append(imports, ImportInfo{
				Module:     module,
				Alias:      alias,
				IsExternal: pythonModuleIsExternal(module),
			})
		}

		for _, nameNode := range findChildren(node, "dotted_name") {
			module := nodeText(nameNode, source)
			imports = append(imports, ImportInfo{
				Module:     module,
				IsExternal: pythonModuleIsExternal(module),
			})
		}
	}

	// from x import y, from x import y as z, from x import *
	for _, node := range collect(root, "import_from_statement") {
		var module string
		if rel := findChild(node, "relative_import"); rel != nil {
			module = nodeText(rel, source)
		} else if dotted := findChild(node, "dotted_name"); dotted != nil {
			module = nodeText(dotted, source)
		}

		// Imported names are everything after the 'import' keyword.
		var names []string
		sawImportKeyword := false
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			switch child.Kind() {
			case "import":
				sawImportKeyword = true
			case "dotted_name":
				if sawImportKeyword {
					names = append(names, nodeText(child, source))
				}
			case "aliased_import":
				if sawImportKeyword {
					if nameNode := findChild(child, "dotted_name"); nameNode != nil {
						names = append(names, nodeText(nameNode, source))
					}
				}
			case "wildcard_import":
				if sawImportKeyword {
					names = append(names, "*")
				}
			}
		}

		if module != "" || len(names) > 0 {
			imports = append(imports, ImportInfo{
				Module:     module,
				Names:      names,
				IsExternal: pythonModuleIsExternal(module),
			})
		}
	}

	return imports
}

// Exports returns the __all__ allow-list when present, else top-level
// public (non-underscore-prefixed) function and class names.
func (e *pythonExtractor) Exports(root *sitter.Node, source []byte) []string {
	if exports, ok := pythonDunderAll(root, source); ok {
		return exports
	}

	var exports []string
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))

		var defNode *sitter.Node
		switch node.Kind() {
		case "function_definition", "class_definition":
			defNode = node
		case "decorated_definition":
			defNode = findChild(node, "function_definition")
			if defNode == nil {
				defNode = findChild(node, "class_definition")
			}
		}
		if defNode == nil {
			continue
		}

		if nameNode := findChild(defNode, "identifier"); nameNode != nil {
			name := nodeText(nameNode, source)
			if !strings.HasPrefix(name, "_") {
				exports = append(exports, name)
			}
		}
	}

	return exports
}

// pythonDunderAll extracts the __all__ list, reporting whether one exists.
func pythonDunderAll(root *sitter.Node, source []byte) ([]string, bool) {
	for _, node := range collect(root, "assignment") {
		left := findChild(node, "identifier")
		if left == nil || nodeText(left, source) != "__all__" {
			continue
		}
		listNode := findChild(node, "list")
		if listNode == nil {
			continue
		}
		var exports []string
		for _, stringNode := range collect(listNode, "string") {
			exports = append(exports, strings.Trim(nodeText(stringNode, source), `'"`))
		}
		return exports, true
	}
	return nil, false
}

func (e *pythonExtractor) Classes(root *sitter.Node, source []byte) []ClassInfo {
	var classes []ClassInfo
	for _, node := range e.classNodes(root) {
		if info, ok := e.extractClass(node, source); ok {
			classes = append(classes, info)
		}
	}
	return classes
}

// Functions extracts top-level function definitions, decorators and
// triggers included.
func (e *pythonExtractor) Functions(root *sitter.Node, source []byte) []FunctionSignature {
	var functions []FunctionSignature

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))

		var funcNode *sitter.Node
		var decorators []string
		var triggers []TriggerInfo

		switch node.Kind() {
		case "function_definition":
			funcNode = node
		case "decorated_definition":
			funcNode = findChild(node, "function_definition")
			decorators = e.decorators(node, source)
			triggers = e.triggers(node, source)
		}
		if funcNode == nil {
			continue
		}

		sig, ok := e.functionSignature(funcNode, source)
		if !ok {
			continue
		}
		sig.Decorators = decorators
		sig.Triggers = triggers
		functions = append(functions, sig)
	}

	return functions
}

// DataContracts extracts dataclasses, pydantic models, and TypedDicts.
func (e *pythonExtractor) DataContracts(root *sitter.Node, source []byte) []DataContractInfo {
	var contracts []DataContractInfo
	for _, node := range e.classNodes(root) {
		if contract, ok := e.dataContract(node, source); ok {
			contracts = append(contracts, contract)
		}
	}
	return contracts
}

// DetectEntryPoint classifies entry points in fixed priority order:
// __main__ guard, CLI framework import, web framework, conventional
// entry filename.
func (e *pythonExtractor) DetectEntryPoint(root *sitter.Node, source []byte, filePath string) string {
	for _, node := range collect(root, "if_statement") {
		cond := findChild(node, "comparison_operator")
		if cond == nil {
			continue
		}
		text := nodeText(cond, source)
		if strings.Contains(text, "__name__") && strings.Contains(text, "__main__") {
			return EntryMain
		}
	}

	modules := make(map[string]bool)
	for _, imp := range e.Imports(root, source) {
		modules[imp.Module] = true
	}

	if modules["click"] || modules["typer"] || modules["argparse"] {
		return EntryCLI
	}

	src := string(source)
	if modules["fastapi"] && (strings.Contains(src, "FastAPI") || strings.Contains(src, "APIRouter")) {
		return EntryAPIRoute
	}
	if modules["flask"] && (strings.Contains(src, "Flask(") || strings.Contains(src, "@app.route") || strings.Contains(src, "@bp.route")) {
		return EntryAPIRoute
	}

	switch filepath.Base(filePath) {
	case "main.py", "app.py", "run.py", "cli.py", "__main__.py":
		return EntryMain
	}

	return ""
}

// DetectBarrel reports whether an __init__.py consists solely of imports,
// docstrings, and the __all__ declaration.
func (e *pythonExtractor) DetectBarrel(root *sitter.Node, source []byte, filePath string) bool {
	if filepath.Base(filePath) != "__init__.py" {
		return false
	}

	hasImports := false
	hasOwnCode := false

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "import_statement", "import_from_statement":
			hasImports = true
		case "expression_statement":
			if node.ChildCount() == 0 {
				continue
			}
			child := node.Child(0)
			if child.Kind() == "string" {
				continue // docstring
			}
			if child.Kind() == "assignment" {
				if left := findChild(child, "identifier"); left != nil && nodeText(left, source) == "__all__" {
					continue
				}
			}
			hasOwnCode = true
		case "function_definition", "class_definition", "decorated_definition":
			hasOwnCode = true
		case "comment":
		}
	}

	return hasImports && !hasOwnCode
}

// pythonModuleIsExternal reports whether a module path looks like an
// external package rather than a relative or project-internal import.
func pythonModuleIsExternal(module string) bool {
	if module == "" {
		return false
	}
	if strings.HasPrefix(module, ".") {
		return false
	}
	if strings.HasPrefix(module, "src.") || strings.HasPrefix(module, "src/") {
		return false
	}
	return true
}

// classNodes lists top-level class definitions, decorated ones included.
// For decorated classes the decorated_definition wrapper is returned so
// decorators stay reachable.
func (e *pythonExtractor) classNodes(root *sitter.Node) []*sitter.Node {
	var nodes []*sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(uint(i))
		switch node.Kind() {
		case "class_definition":
			nodes = append(nodes, node)
		case "decorated_definition":
			if findChild(node, "class_definition") != nil {
				nodes = append(nodes, node)
			}
		}
	}
	return nodes
}

func (e *pythonExtractor) extractClass(node *sitter.Node, source []byte) (ClassInfo, bool) {
	classNode := node
	var decorators []string

	if node.Kind() == "decorated_definition" {
		classNode = findChild(node, "class_definition")
		decorators = e.decorators(node, source)
		if classNode == nil {
			return ClassInfo{}, false
		}
	}

	nameNode := findChild(classNode, "identifier")
	if nameNode == nil {
		return ClassInfo{}, false
	}
	name := nodeText(nameNode, source)

	var bases []string
	if argList := findChild(classNode, "argument_list"); argList != nil {
		for i := 0; i < int(argList.ChildCount()); i++ {
			child := argList.Child(uint(i))
			if child.Kind() == "identifier" || child.Kind() == "attribute" {
				bases = append(bases, nodeText(child, source))
			}
		}
	}

	var methods []FunctionSignature
	if body := findChild(classNode, "block"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(uint(i))
			switch child.Kind() {
			case "function_definition":
				if sig, ok := e.functionSignature(child, source); ok {
					sig.IsMethod = true
					methods = append(methods, sig)
				}
			case "decorated_definition":
				funcNode := findChild(child, "function_definition")
				if funcNode == nil {
					continue
				}
				if sig, ok := e.functionSignature(funcNode, source); ok {
					sig.IsMethod = true
					sig.Decorators = e.decorators(child, source)
					methods = append(methods, sig)
				}
			}
		}
	}

	return ClassInfo{
		Name:             name,
		Bases:            bases,
		Methods:          methods,
		Decorators:       decorators,
		Docstring:        e.docstring(classNode, source),
		IsDataRecord:     containsAny(decorators, "dataclass", "dataclasses.dataclass"),
		IsValidatedModel: containsAny(bases, "BaseModel", "pydantic.BaseModel"),
	}, true
}

func (e *pythonExtractor) functionSignature(node *sitter.Node, source []byte) (FunctionSignature, bool) {
	nameNode := findChild(node, "identifier")
	if nameNode == nil {
		return FunctionSignature{}, false
	}

	isAsync := findChild(node, "async") != nil

	var params []ParameterInfo
	if paramsNode := findChild(node, "parameters"); paramsNode != nil {
		params = e.parameters(paramsNode, source)
	}

	var returnType string
	if typeNode := findChild(node, "type"); typeNode != nil {
		returnType = nodeText(typeNode, source)
	}

	return FunctionSignature{
		Name:       nodeText(nameNode, source),
		Parameters: params,
		ReturnType: returnType,
		IsAsync:    isAsync,
		Docstring:  e.docstring(node, source),
	}, true
}

func (e *pythonExtractor) parameters(paramsNode *sitter.Node, source []byte) []ParameterInfo {
	var params []ParameterInfo

	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(uint(i))
		param, ok := e.parameter(child, source)
		if ok && param.Name != "self" && param.Name != "cls" {
			params = append(params, param)
		}
	}

	return params
}

func (e *pythonExtractor) parameter(node *sitter.Node, source []byte) (ParameterInfo, bool) {
	switch node.Kind() {
	case "identifier":
		return ParameterInfo{Name: nodeText(node, source)}, true

	case "typed_parameter":
		param := ParameterInfo{}
		if nameNode := findChild(node, "identifier"); nameNode != nil {
			param.Name = nodeText(nameNode, source)
		}
		if typeNode := findChild(node, "type"); typeNode != nil {
			param.TypeAnnotation = nodeText(typeNode, source)
		}
		return param, true

	case "default_parameter":
		param := ParameterInfo{IsOptional: true}
		if nameNode := findChild(node, "identifier"); nameNode != nil {
			param.Name = nodeText(nameNode, source)
		}
		param.DefaultValue = lastValueChild(node, source, "identifier", "=")
		return param, true

	case "typed_default_parameter":
		param := ParameterInfo{IsOptional: true}
		if nameNode := findChild(node, "identifier"); nameNode != nil {
			param.Name = nodeText(nameNode, source)
		}
		if typeNode := findChild(node, "type"); typeNode != nil {
			param.TypeAnnotation = nodeText(typeNode, source)
		}
		param.DefaultValue = lastValueChild(node, source, "identifier", "type", "=", ":")
		return param, true
	}

	return ParameterInfo{}, false
}

// lastValueChild returns the text of the last child whose kind is not in
// skip. Used to pull default values off parameter and field nodes.
func lastValueChild(node *sitter.Node, source []byte, skip ...string) string {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	for i := int(node.ChildCount()) - 1; i >= 0; i-- {
		child := node.Child(uint(i))
		if !skipSet[child.Kind()] {
			return nodeText(child, source)
		}
	}
	return ""
}

// decorators extracts decorator names (without @, call arguments stripped)
// from a decorated_definition node.
func (e *pythonExtractor) decorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	for _, deco := range findChildren(node, "decorator") {
		for i := 0; i < int(deco.ChildCount()); i++ {
			child := deco.Child(uint(i))
			switch child.Kind() {
			case "identifier", "attribute", "call":
				text := nodeText(child, source)
				if idx := strings.Index(text, "("); idx != -1 {
					text = text[:idx]
				}
				decorators = append(decorators, text)
			default:
				continue
			}
			break
		}
	}
	return decorators
}

// pythonHTTPMethods is the fixed vocabulary of route-declaring decorator
// suffixes (FastAPI style @app.get, @router.post, ...).
var pythonHTTPMethods = []string{"get", "post", "put", "delete", "patch", "head", "options"}

// triggers extracts HTTP route and CLI command triggers from decorators.
// Recognized families: FastAPI @app.<method>("/path"), Flask
// @app.route("/path", methods=[...]) defaulting to GET, and click/typer
// @*.command(...) CLI decorators.
func (e *pythonExtractor) triggers(node *sitter.Node, source []byte) []TriggerInfo {
	var triggers []TriggerInfo

	for _, deco := range findChildren(node, "decorator") {
		callNode := findChild(deco, "call")
		if callNode == nil {
			continue
		}

		funcNode := findChild(callNode, "attribute")
		if funcNode == nil {
			funcNode = findChild(callNode, "identifier")
		}
		if funcNode == nil {
			continue
		}
		funcLower := strings.ToLower(nodeText(funcNode, source))

		var route string
		var methods []string
		if args := findChild(callNode, "argument_list"); args != nil {
			for i := 0; i < int(args.ChildCount()); i++ {
				arg := args.Child(uint(i))
				switch arg.Kind() {
				case "string":
					if route == "" {
						route = strings.Trim(nodeText(arg, source), `'"`)
					}
				case "keyword_argument":
					key := findChild(arg, "identifier")
					if key == nil || nodeText(key, source) != "methods" {
						continue
					}
					if listNode := findChild(arg, "list"); listNode != nil {
						for _, item := range collect(listNode, "string") {
							methods = append(methods, strings.Trim(nodeText(item, source), `'"`))
						}
					}
				}
			}
		}

		for _, method := range pythonHTTPMethods {
			if strings.HasSuffix(funcLower, "."+method) {
				r := route
				if r == "" {
					r = "/"
				}
				triggers = append(triggers, TriggerInfo{Kind: TriggerHTTP, Method: strings.ToUpper(method), Route: r})
				break
			}
		}

		if strings.Contains(funcLower, ".route") || funcLower == "route" {
			if len(methods) > 0 {
				for _, method := range methods {
					r := route
					if r == "" {
						r = "/"
					}
					triggers = append(triggers, TriggerInfo{Kind: TriggerHTTP, Method: strings.ToUpper(method), Route: r})
				}
			} else if route != "" {
				triggers = append(triggers, TriggerInfo{Kind: TriggerHTTP, Method: "GET", Route: route})
			}
		}

		if strings.Contains(funcLower, "click.command") || strings.Contains(funcLower, "typer.command") || strings.Contains(funcLower, ".command") {
			triggers = append(triggers, TriggerInfo{Kind: TriggerCLI, Command: route})
		}
	}

	return triggers
}

// docstring extracts the leading string of a function or class block.
func (e *pythonExtractor) docstring(node *sitter.Node, source []byte) string {
	body := findChild(node, "block")
	if body == nil {
		return ""
	}

	firstStmt := findChild(body, "expression_statement")
	if firstStmt == nil {
		return ""
	}
	stringNode := findChild(firstStmt, "string")
	if stringNode == nil {
		return ""
	}

	text := nodeText(stringNode, source)
	switch {
	case strings.HasPrefix(text, `"""`) || strings.HasPrefix(text, "'''"):
		if len(text) >= 6 {
			return strings.TrimSpace(text[3 : len(text)-3])
		}
	case strings.HasPrefix(text, `"`) || strings.HasPrefix(text, "'"):
		if len(text) >= 2 {
			return strings.TrimSpace(text[1 : len(text)-1])
		}
	}
	return ""
}

func (e *pythonExtractor) dataContract(node *sitter.Node, source []byte) (DataContractInfo, bool) {
	classNode := node
	var decorators []string

	if node.Kind() == "decorated_definition" {
		classNode = findChild(node, "class_definition")
		decorators = e.decorators(node, source)
		if classNode == nil {
			return DataContractInfo{}, false
		}
	}

	nameNode := findChild(classNode, "identifier")
	if nameNode == nil {
		return DataContractInfo{}, false
	}

	var bases []string
	if argList := findChild(classNode, "argument_list"); argList != nil {
		for i := 0; i < int(argList.ChildCount()); i++ {
			child := argList.Child(uint(i))
			if child.Kind() == "identifier" || child.Kind() == "attribute" {
				bases = append(bases, nodeText(child, source))
			}
		}
	}

	isDataclass := containsAny(decorators, "dataclass", "dataclasses.dataclass")
	isPydantic := containsAny(bases, "BaseModel", "pydantic.BaseModel")
	isTypedDict := containsAny(bases, "TypedDict", "typing.TypedDict")

	var kind string
	switch {
	case isDataclass:
		kind = ContractDataclass
	case isPydantic:
		kind = ContractModel
	case isTypedDict:
		kind = ContractTypedDict
	default:
		return DataContractInfo{}, false
	}

	return DataContractInfo{
		Name:       nodeText(nameNode, source),
		Kind:       kind,
		Fields:     e.classFields(classNode, source),
		SourceText: nodeText(node, source),
	}, true
}

// classFields extracts annotated fields (name: type = default) from a
// class body.
func (e *pythonExtractor) classFields(classNode *sitter.Node, source []byte) []FieldInfo {
	var fields []FieldInfo
	body := findChild(classNode, "block")
	if body == nil {
		return fields
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		stmt := body.Child(uint(i))
		if stmt.Kind() != "expression_statement" || stmt.ChildCount() == 0 {
			continue
		}
		inner := stmt.Child(0)
		if inner.Kind() != "assignment" {
			continue
		}
		left := inner.Child(0)
		if left == nil || left.Kind() != "identifier" {
			continue
		}

		name := nodeText(left, source)
		typeAnnotation := "Any"
		if typeNode := findChild(inner, "type"); typeNode != nil {
			typeAnnotation = nodeText(typeNode, source)
		}

		isOptional := strings.Contains(typeAnnotation, "Optional") || strings.HasSuffix(typeAnnotation, "| None")
		defaultValue := lastValueChild(inner, source, "identifier", "type", "=", ":")

		fields = append(fields, FieldInfo{
			Name:           name,
			TypeAnnotation: typeAnnotation,
			Optional:       isOptional || defaultValue != "",
			DefaultValue:   defaultValue,
		})
	}

	return fields
}

// containsAny reports whether any of the wanted values is present.
func containsAny(haystack []string, wanted ...string) bool {
	for _, h := range haystack {
		for _, w := range wanted {
			if h == w {
				return true
			}
		}
	}
	return false
}
