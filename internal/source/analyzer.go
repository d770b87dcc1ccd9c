// Package source implements the flow-graph source model for JavaScript and
// TypeScript using tree-sitter. Files are parsed once into plain Go indexes;
// model accessors never touch tree-sitter state after extraction.
package source

import (
	"fmt"
	"sort"

	"github.com/dusk-indust/flowgraph/internal/graph"
)

// Analyzer answers the graph builder's questions about parsed sources. It is
// immutable after construction and safe for concurrent use.
type Analyzer struct {
	paths []string
	files map[string]*fileIndex

	// refs maps a declaration key to every usage identifier that resolves
	// to it, across all files and through import aliases.
	refs map[graph.Key][]*construct
}

var _ graph.Model = (*Analyzer)(nil)

func newAnalyzer(indexes []*fileIndex) *Analyzer {
	a := &Analyzer{files: make(map[string]*fileIndex, len(indexes))}
	for _, idx := range indexes {
		if idx == nil {
			continue
		}
		if _, ok := a.files[idx.path]; ok {
			continue
		}
		a.files[idx.path] = idx
		a.paths = append(a.paths, idx.path)
	}
	sort.Strings(a.paths)
	a.indexReferences()
	return a
}

// indexReferences resolves every usage identifier once and inverts the
// result. Import follows need all files loaded, so this runs after the
// per-file extraction completes.
func (a *Analyzer) indexReferences() {
	a.refs = make(map[graph.Key][]*construct)
	for _, path := range a.paths {
		for _, ident := range a.files[path].idents {
			for _, def := range a.resolveIdent(ident) {
				a.refs[def.Key()] = append(a.refs[def.Key()], ident)
			}
		}
	}
}

// Files lists analyzed paths in sorted order.
func (a *Analyzer) Files() []string {
	out := make([]string, len(a.paths))
	copy(out, a.paths)
	return out
}

// Declarations lists a file's top-level declarations in document order:
// variable declarators, function declarations, and methods of top-level
// classes.
func (a *Analyzer) Declarations(path string) ([]graph.Construct, error) {
	idx, ok := a.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, graph.ErrUnknownFile)
	}
	out := make([]graph.Construct, len(idx.topDecls))
	for i, c := range idx.topDecls {
		out[i] = c
	}
	return out, nil
}

// construct maps an interface value back to the analyzer's representation.
func (a *Analyzer) construct(c graph.Construct) *construct {
	if cc, ok := c.(*construct); ok {
		return cc
	}
	if idx, ok := a.files[c.Path()]; ok {
		return idx.byKey[c.Key()]
	}
	return nil
}

// Variable reads a variable declarator. ErrMissingStatement covers constructs
// that are not declarators at all; ErrMissingInitializer covers declarators
// with no bound value.
func (a *Analyzer) Variable(c graph.Construct) (*graph.Variable, error) {
	cc := a.construct(c)
	if cc == nil {
		return nil, fmt.Errorf("%s: %w", c.Key(), graph.ErrMissingStatement)
	}
	data, ok := a.files[cc.path].vars[cc.key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", cc.key, graph.ErrMissingStatement)
	}
	if data.init == nil {
		return nil, fmt.Errorf("%s at %s:%d: %w", data.name, cc.path, cc.line, graph.ErrMissingInitializer)
	}
	return &graph.Variable{
		Name:      data.name,
		Exported:  data.exported,
		Init:      data.init,
		FuncValue: data.funcValue,
	}, nil
}

// Call reads a call expression's callee and arguments.
func (a *Analyzer) Call(c graph.Construct) (*graph.Call, error) {
	cc := a.construct(c)
	if cc == nil {
		return nil, fmt.Errorf("not a call expression: %s", c.Key())
	}
	data, ok := a.files[cc.path].callData[cc.key]
	if !ok {
		return nil, fmt.Errorf("not a call expression: %s", cc.key)
	}
	call := &graph.Call{Callee: data.callee, Bare: data.bare}
	for _, arg := range data.args {
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// CallsWithin lists every call expression inside the construct's scan window
// in document order. Function-likes scan their body and fail with
// ErrMissingBody when no body exists; argument occurrences scan their own
// span, so an argument that is itself a call includes that call.
func (a *Analyzer) CallsWithin(c graph.Construct) ([]graph.Construct, error) {
	cc := a.construct(c)
	if cc == nil {
		return nil, nil
	}
	if cc.needsBody {
		return nil, fmt.Errorf("%s at %s:%d: %w", cc.name, cc.path, cc.line, graph.ErrMissingBody)
	}
	if !cc.scannable {
		return nil, nil
	}
	var out []graph.Construct
	for _, call := range a.files[cc.path].calls {
		if call.start >= cc.scanStart && call.end <= cc.scanEnd {
			out = append(out, call)
		}
	}
	return out, nil
}

// Resolve finds the declaration a bare identifier refers to: lexical scopes
// innermost first, then import bindings followed to the exporting file. An
// import that cannot be followed resolves to the import binding itself.
func (a *Analyzer) Resolve(c graph.Construct) []graph.Construct {
	cc := a.construct(c)
	if cc == nil {
		return nil
	}
	return a.resolveIdent(cc)
}

func (a *Analyzer) resolveIdent(cc *construct) []graph.Construct {
	if cc.scope == nil || cc.name == "" {
		return nil
	}
	binding := cc.scope.lookup(cc.name)
	if binding == nil {
		return nil
	}
	if ref, ok := a.files[binding.path].imports[binding.key]; ok {
		if target := a.followImport(binding.path, ref); target != nil {
			return []graph.Construct{target}
		}
		return []graph.Construct{binding}
	}
	return []graph.Construct{binding}
}

// References lists the usage identifiers that resolve to the declaration, in
// file order then document order.
func (a *Analyzer) References(c graph.Construct) []graph.Construct {
	idents := a.refs[c.Key()]
	if len(idents) == 0 {
		return nil
	}
	out := make([]graph.Construct, len(idents))
	for i, ident := range idents {
		out[i] = ident
	}
	return out
}

// CalleeCall reports the call expression invoked through a usage identifier:
// the identifier is the callee itself or the head of the callee's member
// chain.
func (a *Analyzer) CalleeCall(usage graph.Construct) (graph.Construct, bool) {
	cc := a.construct(usage)
	if cc == nil || cc.calleeOf == nil {
		return nil, false
	}
	return cc.calleeOf, true
}
