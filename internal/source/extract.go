package source

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/flowgraph/internal/graph"
)

// varData captures what the Variable accessor needs about one declarator.
type varData struct {
	name      string
	exported  bool
	init      *construct
	funcValue bool
}

// callData captures the callee and argument constructs of one call expression.
type callData struct {
	callee *construct
	bare   bool
	args   []*construct
}

// importRef records where an imported binding comes from.
type importRef struct {
	specifier string
	imported  string
	namespace bool
}

// pendingExport is an `export { local as exported }` clause entry, resolved
// against file scope once the walk has seen every declaration.
type pendingExport struct {
	exported string
	local    string
}

// fileIndex is the per-file extraction product: every construct the model can
// hand out plus the lookup tables the accessors read. Indexes are immutable
// once extraction finishes.
type fileIndex struct {
	path string
	lang Language

	byKey     map[graph.Key]*construct
	topDecls  []*construct
	calls     []*construct
	idents    []*construct
	vars      map[graph.Key]*varData
	callData  map[graph.Key]*callData
	imports   map[graph.Key]importRef
	exports   map[string]*construct
	pending   []pendingExport
	fileScope *scope
}

func newFileIndex(path string, lang Language) *fileIndex {
	return &fileIndex{
		path:     path,
		lang:     lang,
		byKey:    make(map[graph.Key]*construct),
		vars:     make(map[graph.Key]*varData),
		callData: make(map[graph.Key]*callData),
		imports:  make(map[graph.Key]importRef),
		exports:  make(map[string]*construct),
	}
}

// parseFile parses one source file and extracts its index. A new parser is
// created per call, so parseFile is safe to run concurrently across files.
// The tree is released before returning; constructs carry plain Go copies of
// everything the model needs.
func parseFile(path string, src []byte, lang Language) (*fileIndex, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang.grammar()); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	idx := newFileIndex(path, lang)
	idx.fileScope = newScope(nil)
	ex := &extractor{idx: idx, src: src}
	ex.visitChildren(tree.RootNode(), idx.fileScope)
	idx.resolvePendingExports()
	return idx, nil
}

// resolvePendingExports binds `export { a as b }` clause names against file
// scope. Re-export clauses with a source module resolve to nothing here and
// are dropped.
func (idx *fileIndex) resolvePendingExports() {
	for _, p := range idx.pending {
		if c := idx.fileScope.lookup(p.local); c != nil {
			idx.exports[p.exported] = c
		}
	}
	idx.pending = nil
}

// extractor walks one parsed tree and fills the file index.
type extractor struct {
	idx *fileIndex
	src []byte
}

func (ex *extractor) text(n *tree_sitter.Node) string {
	return n.Utf8Text(ex.src)
}

// intern returns the construct for (span, role), creating it on first use.
// Call extraction and identifier visits reach the same spans; both get the
// same construct.
func (ex *extractor) intern(n *tree_sitter.Node, r role, kind graph.ConstructKind, name string) *construct {
	key := makeKey(ex.idx.path, n.StartByte(), n.EndByte(), r)
	if c, ok := ex.idx.byKey[key]; ok {
		return c
	}
	c := &construct{
		key:   key,
		path:  ex.idx.path,
		start: n.StartByte(),
		end:   n.EndByte(),
		kind:  kind,
		line:  int(n.StartPosition().Row) + 1,
		text:  ex.text(n),
		name:  name,
	}
	ex.idx.byKey[key] = c
	return c
}

func (ex *extractor) visitChildren(n *tree_sitter.Node, sc *scope) {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		ex.visit(child, sc)
	}
}

// visit dispatches on node kind. Handlers control their own descent so that
// binding positions (declarator names, parameters, import specifiers) never
// register as identifier usages.
func (ex *extractor) visit(n *tree_sitter.Node, sc *scope) {
	switch n.Kind() {
	case "variable_declarator":
		ex.declarator(n, sc)
	case "function_declaration", "generator_function_declaration":
		ex.functionDecl(n, sc)
	case "method_definition":
		ex.methodDecl(n, sc)
	case "class_declaration":
		ex.classDecl(n, sc)
	case "arrow_function", "function_expression", "generator_function":
		ex.functionValue(n, sc)
	case "call_expression":
		ex.callExpr(n, sc)
	case "identifier":
		ex.identifier(n, sc)
	case "import_statement":
		ex.importDecl(n, sc)
	case "export_statement":
		ex.exportDecl(n, sc)
	case "statement_block", "for_statement", "for_in_statement":
		ex.visitChildren(n, newScope(sc))
	default:
		ex.visitChildren(n, sc)
	}
}

// declarator handles one variable_declarator. Destructuring patterns get no
// construct; their initializers are still scanned for calls and usages.
func (ex *extractor) declarator(n *tree_sitter.Node, sc *scope) {
	nameNode := n.ChildByFieldName("name")
	valueNode := n.ChildByFieldName("value")

	if nameNode == nil || nameNode.Kind() != "identifier" {
		if valueNode != nil {
			ex.visit(valueNode, sc)
		}
		return
	}

	c := ex.intern(n, roleDecl, graph.ConstructVariable, ex.text(nameNode))
	sc.bind(c.name, c)
	if topLevelDecl(n) {
		ex.idx.topDecls = append(ex.idx.topDecls, c)
	}

	data := &varData{name: c.name, exported: declarationExported(n)}
	ex.idx.vars[c.key] = data
	if valueNode == nil {
		return
	}
	data.init = ex.intern(valueNode, roleValue, graph.ConstructOther, "")
	switch valueNode.Kind() {
	case "arrow_function", "function_expression", "generator_function":
		data.funcValue = true
		setScanWindow(c, valueNode.ChildByFieldName("body"))
	}
	ex.visit(valueNode, sc)
}

func (ex *extractor) functionDecl(n *tree_sitter.Node, sc *scope) {
	var name string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = ex.text(nameNode)
	}
	c := ex.intern(n, roleDecl, graph.ConstructFunction, name)
	if name != "" {
		sc.bind(name, c)
	}
	setScanWindow(c, n.ChildByFieldName("body"))
	if topLevelDecl(n) {
		ex.idx.topDecls = append(ex.idx.topDecls, c)
	}

	fnScope := newScope(sc)
	ex.bindParams(paramsOf(n), fnScope)
	if body := n.ChildByFieldName("body"); body != nil {
		ex.visit(body, fnScope)
	}
}

// methodDecl handles method_definition nodes. Methods of top-level classes
// are declarations; object-literal methods are only reachable through the
// surrounding expression.
func (ex *extractor) methodDecl(n *tree_sitter.Node, sc *scope) {
	var name string
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = ex.text(nameNode)
	}
	c := ex.intern(n, roleDecl, graph.ConstructMethod, name)
	setScanWindow(c, n.ChildByFieldName("body"))
	if topLevelDecl(n) {
		ex.idx.topDecls = append(ex.idx.topDecls, c)
	}

	mScope := newScope(sc)
	ex.bindParams(paramsOf(n), mScope)
	if body := n.ChildByFieldName("body"); body != nil {
		ex.visit(body, mScope)
	}
}

func (ex *extractor) classDecl(n *tree_sitter.Node, sc *scope) {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		c := ex.intern(n, roleDecl, graph.ConstructOther, ex.text(nameNode))
		sc.bind(c.name, c)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		ex.visitChildren(body, newScope(sc))
	}
}

// functionValue handles anonymous and named function expressions reached by
// descent: callback literals, IIFEs, declarator initializers.
func (ex *extractor) functionValue(n *tree_sitter.Node, sc *scope) {
	fnScope := newScope(sc)
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		// Named function expressions bind their own name inside themselves.
		c := ex.intern(n, roleDecl, graph.ConstructFunction, ex.text(nameNode))
		setScanWindow(c, n.ChildByFieldName("body"))
		fnScope.bind(c.name, c)
	}
	ex.bindParams(paramsOf(n), fnScope)
	if body := n.ChildByFieldName("body"); body != nil {
		ex.visit(body, fnScope)
	}
}

// callExpr interns the call, its callee, and one construct per argument.
// Arguments use their own role so a call in argument position anchors both
// an argument occurrence and the call itself.
func (ex *extractor) callExpr(n *tree_sitter.Node, sc *scope) {
	c := ex.intern(n, roleCall, graph.ConstructCall, "")
	ex.idx.calls = append(ex.idx.calls, c)

	data := &callData{}
	if fn := n.ChildByFieldName("function"); fn != nil {
		if fn.Kind() == "identifier" {
			data.callee = ex.intern(fn, roleIdent, graph.ConstructOther, ex.text(fn))
			data.bare = true
		} else {
			data.callee = ex.intern(fn, roleCallee, graph.ConstructOther, "")
		}
	}
	if args := n.ChildByFieldName("arguments"); args != nil && args.Kind() == "arguments" {
		for i := uint(0); i < args.ChildCount(); i++ {
			child := args.Child(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "(", ")", ",", "comment":
				continue
			}
			arg := ex.intern(child, roleArg, graph.ConstructOther, "")
			arg.scanStart = arg.start
			arg.scanEnd = arg.end
			arg.scannable = true
			data.args = append(data.args, arg)
		}
	}
	ex.idx.callData[c.key] = data

	ex.visitChildren(n, sc)
}

// identifier records one usage occurrence. Property names are a different
// node kind and never reach here.
func (ex *extractor) identifier(n *tree_sitter.Node, sc *scope) {
	c := ex.intern(n, roleIdent, graph.ConstructOther, ex.text(n))
	if c.scope == nil {
		c.scope = sc
		ex.idx.idents = append(ex.idx.idents, c)
	}
	c.calleeOf = ex.enclosingCall(n)
}

// enclosingCall reports the call expression invoked through this identifier:
// the identifier is the callee itself, or the head object of the member or
// subscript chain the callee hangs off.
func (ex *extractor) enclosingCall(n *tree_sitter.Node) *construct {
	cur := n
	parent := cur.Parent()
	for parent != nil && (parent.Kind() == "member_expression" || parent.Kind() == "subscript_expression") {
		obj := parent.ChildByFieldName("object")
		if obj == nil || obj.StartByte() != cur.StartByte() || obj.EndByte() != cur.EndByte() {
			return nil
		}
		cur = parent
		parent = cur.Parent()
	}
	if parent == nil || parent.Kind() != "call_expression" {
		return nil
	}
	fn := parent.ChildByFieldName("function")
	if fn == nil || fn.StartByte() != cur.StartByte() || fn.EndByte() != cur.EndByte() {
		return nil
	}
	return ex.intern(parent, roleCall, graph.ConstructCall, "")
}

// importDecl binds imported names into file scope and records where each one
// comes from. Import subtrees are not descended; specifier names are binding
// positions, not usages.
func (ex *extractor) importDecl(n *tree_sitter.Node, sc *scope) {
	srcNode := n.ChildByFieldName("source")
	if srcNode == nil {
		return
	}
	specifier := strings.Trim(ex.text(srcNode), "\"'`")
	if specifier == "" {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		clause := n.Child(i)
		if clause == nil || clause.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			child := clause.Child(j)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "identifier":
				ex.bindImport(child, sc, importRef{specifier: specifier, imported: "default"})
			case "named_imports":
				ex.bindNamedImports(child, sc, specifier)
			case "namespace_import":
				for k := uint(0); k < child.ChildCount(); k++ {
					if id := child.Child(k); id != nil && id.Kind() == "identifier" {
						ex.bindImport(id, sc, importRef{specifier: specifier, imported: "*", namespace: true})
					}
				}
			}
		}
	}
}

func (ex *extractor) bindNamedImports(n *tree_sitter.Node, sc *scope, specifier string) {
	for i := uint(0); i < n.ChildCount(); i++ {
		spec := n.Child(i)
		if spec == nil || spec.Kind() != "import_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		local := nameNode
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = alias
		}
		ex.bindImport(local, sc, importRef{specifier: specifier, imported: ex.text(nameNode)})
	}
}

func (ex *extractor) bindImport(n *tree_sitter.Node, sc *scope, ref importRef) {
	c := ex.intern(n, roleDecl, graph.ConstructOther, ex.text(n))
	sc.bind(c.name, c)
	ex.idx.imports[c.key] = ref
}

// exportDecl records exported names. Declaration forms visit their subtree
// normally; clause forms are binding references resolved after the walk.
func (ex *extractor) exportDecl(n *tree_sitter.Node, sc *scope) {
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		ex.visit(decl, sc)
		ex.recordDeclExports(n, decl)
		return
	}
	if value := n.ChildByFieldName("value"); value != nil {
		// export default <expression>
		ex.visit(value, sc)
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		clause := n.Child(i)
		if clause == nil || clause.Kind() != "export_clause" {
			continue
		}
		for j := uint(0); j < clause.ChildCount(); j++ {
			spec := clause.Child(j)
			if spec == nil || spec.Kind() != "export_specifier" {
				continue
			}
			nameNode := spec.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			exported := ex.text(nameNode)
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exported = ex.text(alias)
			}
			ex.idx.pending = append(ex.idx.pending, pendingExport{exported: exported, local: ex.text(nameNode)})
		}
	}
}

// recordDeclExports maps the names an export statement's declaration binds to
// their already-interned constructs.
func (ex *extractor) recordDeclExports(stmt, decl *tree_sitter.Node) {
	isDefault := false
	for i := uint(0); i < stmt.ChildCount(); i++ {
		if c := stmt.Child(i); c != nil && c.Kind() == "default" {
			isDefault = true
		}
	}
	add := func(c *construct) {
		if c == nil {
			return
		}
		if c.name != "" {
			ex.idx.exports[c.name] = c
		}
		if isDefault {
			ex.idx.exports["default"] = c
		}
	}
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		for i := uint(0); i < decl.ChildCount(); i++ {
			d := decl.Child(i)
			if d == nil || d.Kind() != "variable_declarator" {
				continue
			}
			add(ex.idx.byKey[makeKey(ex.idx.path, d.StartByte(), d.EndByte(), roleDecl)])
		}
	case "function_declaration", "generator_function_declaration", "class_declaration":
		add(ex.idx.byKey[makeKey(ex.idx.path, decl.StartByte(), decl.EndByte(), roleDecl)])
	}
}

// bindParams binds parameter names into the function's scope. Parameter
// defaults are scanned for nested calls; destructured parameters are skipped.
func (ex *extractor) bindParams(params *tree_sitter.Node, fnScope *scope) {
	if params == nil {
		return
	}
	if params.Kind() == "identifier" {
		ex.bindParam(params, fnScope)
		return
	}
	for i := uint(0); i < params.ChildCount(); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			ex.bindParam(child, fnScope)
		case "required_parameter", "optional_parameter":
			if pattern := child.ChildByFieldName("pattern"); pattern != nil && pattern.Kind() == "identifier" {
				ex.bindParam(pattern, fnScope)
			}
			if value := child.ChildByFieldName("value"); value != nil {
				ex.visit(value, fnScope)
			}
		case "assignment_pattern":
			if left := child.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
				ex.bindParam(left, fnScope)
			}
			if right := child.ChildByFieldName("right"); right != nil {
				ex.visit(right, fnScope)
			}
		case "rest_pattern":
			for j := uint(0); j < child.ChildCount(); j++ {
				if rc := child.Child(j); rc != nil && rc.Kind() == "identifier" {
					ex.bindParam(rc, fnScope)
				}
			}
		}
	}
}

func (ex *extractor) bindParam(n *tree_sitter.Node, fnScope *scope) {
	c := ex.intern(n, roleDecl, graph.ConstructOther, ex.text(n))
	fnScope.bind(c.name, c)
}

// paramsOf handles both arrow forms: `(a, b) => ...` uses the parameters
// field, `a => ...` uses parameter.
func paramsOf(n *tree_sitter.Node) *tree_sitter.Node {
	if params := n.ChildByFieldName("parameters"); params != nil {
		return params
	}
	return n.ChildByFieldName("parameter")
}

// setScanWindow marks the byte range CallsWithin scans for this construct.
// Function-likes without a body (ambient declarations, abstract signatures)
// keep needsBody set and fail the scan instead.
func setScanWindow(c *construct, body *tree_sitter.Node) {
	if body == nil {
		c.needsBody = true
		return
	}
	c.scanStart = body.StartByte()
	c.scanEnd = body.EndByte()
	c.scannable = true
}

// declarationExported reports whether a declarator's enclosing statement sits
// under an export_statement.
func declarationExported(n *tree_sitter.Node) bool {
	stmt := n.Parent()
	if stmt == nil {
		return false
	}
	parent := stmt.Parent()
	return parent != nil && parent.Kind() == "export_statement"
}

// topLevelDecl reports whether a declaration belongs to the file's top-level
// statement list. Export wrappers and class bodies are transparent; anything
// else makes the declaration nested.
func topLevelDecl(n *tree_sitter.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "program":
			return true
		case "export_statement", "lexical_declaration", "variable_declaration",
			"class_declaration", "class_body":
			continue
		default:
			return false
		}
	}
	return false
}
