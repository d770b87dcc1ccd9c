package graph

// Graph is the product of one build: both registries, exclusively owned by
// the run that produced them. Discarding the graph is the only teardown.
type Graph struct {
	Nodes *NodeRegistry
	Edges *EdgeRegistry
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: NewNodeRegistry(), Edges: NewEdgeRegistry()}
}

// Stats counts the graph's nodes and edges. Files is left for the caller,
// which knows the analyzed set.
func (g *Graph) Stats() Stats {
	byKind := make(map[NodeKind]int, 5)
	for _, n := range g.Nodes.Nodes() {
		byKind[n.Kind]++
	}
	return Stats{
		NodeCount: g.Nodes.Len(),
		EdgeCount: g.Edges.Len(),
		ByKind:    byKind,
	}
}

// Progress reports the running totals after one file has been processed.
type Progress struct {
	Path  string
	Index int // 1-based position within the analyzed set
	Total int
	Nodes int // cumulative node count
	Edges int // cumulative edge count
}

// ProgressFunc receives build progress callbacks.
type ProgressFunc func(Progress)

// Option configures a Builder.
type Option func(*Builder)

// WithProgress installs a per-file progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// Builder grows a flow graph by recursively expanding the constructs a
// source model exposes. Every expansion consults the node registry first,
// so revisited constructs (recursion, shared subexpressions) terminate
// immediately. A builder is single-threaded and single-use.
type Builder struct {
	model    Model
	graph    *Graph
	progress ProgressFunc
}

// New returns a builder over the given source model.
func New(model Model, opts ...Option) *Builder {
	b := &Builder{model: model, graph: NewGraph()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build processes every top-level declaration of every analyzed file and
// returns the finished graph. The first structural failure aborts the whole
// build; there is no partial result.
func (b *Builder) Build() (*Graph, error) {
	files := b.model.Files()
	for i, path := range files {
		decls, err := b.model.Declarations(path)
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			switch d.Kind() {
			case ConstructVariable:
				_, err = b.processVariable(d)
			case ConstructFunction, ConstructMethod:
				_, err = b.processFunction(d)
			}
			if err != nil {
				return nil, err
			}
		}
		if b.progress != nil {
			b.progress(Progress{
				Path:  path,
				Index: i + 1,
				Total: len(files),
				Nodes: b.graph.Nodes.Len(),
				Edges: b.graph.Edges.Len(),
			})
		}
	}
	return b.graph, nil
}

// processVariable handles a top-level variable declarator. Non-exported
// bindings return a nil node: only exported bindings are flow sources.
func (b *Builder) processVariable(c Construct) (*Node, error) {
	v, err := b.model.Variable(c)
	if err != nil {
		return nil, err
	}
	if !v.Exported {
		return nil, nil
	}
	return b.processValue(c, v)
}

// processValue dispatches a variable declarator on the shape of its bound
// value. Callee resolution funnels non-exported declarators here too, so
// the export gate stays in processVariable.
func (b *Builder) processValue(c Construct, v *Variable) (*Node, error) {
	if v.FuncValue {
		n, created := b.graph.Nodes.GetOrCreate(c, NodeKindFunction)
		if !created {
			return n, nil
		}
		return n, b.linkNestedCalls(n, c)
	}
	n, created := b.graph.Nodes.GetOrCreate(c, NodeKindObject)
	if !created {
		return n, nil
	}
	return n, b.linkCalleeUsages(n, c)
}

// processFunction handles free function and class method declarations.
func (b *Builder) processFunction(c Construct) (*Node, error) {
	n, created := b.graph.Nodes.GetOrCreate(c, NodeKindFunction)
	if !created {
		return n, nil
	}
	return n, b.linkNestedCalls(n, c)
}

// processCall handles one call expression. The node is registered before
// any expansion so recursive call chains terminate at the registry guard.
func (b *Builder) processCall(c Construct) (*Node, error) {
	n, created := b.graph.Nodes.GetOrCreate(c, NodeKindCall)
	if !created {
		return n, nil
	}
	call, err := b.model.Call(c)
	if err != nil {
		return nil, err
	}
	if call.Bare {
		for _, def := range b.model.Resolve(call.Callee) {
			defNode, err := b.processDefinition(def)
			if err != nil {
				return nil, err
			}
			// Flatten one level of indirection: the call points at the
			// definition's downstream calls, not at the definition itself.
			for _, e := range defNode.Outgoing {
				if e.Kind != EdgeKindChild {
					continue
				}
				b.graph.Edges.GetOrCreate(n, e.Target, EdgeKindChild)
			}
		}
	}
	for _, arg := range call.Args {
		argNode, err := b.processArgument(arg)
		if err != nil {
			return nil, err
		}
		b.graph.Edges.GetOrCreate(n, argNode, EdgeKindArgument)
	}
	return n, nil
}

// processArgument handles one argument expression of a call.
func (b *Builder) processArgument(c Construct) (*Node, error) {
	n, created := b.graph.Nodes.GetOrCreate(c, NodeKindArgument)
	if !created {
		return n, nil
	}
	return n, b.linkNestedCalls(n, c)
}

// processDefinition handles a declaration site resolved from a callee
// identifier: variable declarators dispatch on value shape, function
// declarations expand as functions, and everything else (parameters,
// classes, imports) becomes an any-typed leaf.
func (b *Builder) processDefinition(c Construct) (*Node, error) {
	switch c.Kind() {
	case ConstructVariable:
		v, err := b.model.Variable(c)
		if err != nil {
			return nil, err
		}
		return b.processValue(c, v)
	case ConstructFunction, ConstructMethod:
		return b.processFunction(c)
	default:
		n, _ := b.graph.Nodes.GetOrCreate(c, NodeKindAny)
		return n, nil
	}
}

// linkNestedCalls processes every call expression within c and draws a
// CHILD edge from n to each.
func (b *Builder) linkNestedCalls(n *Node, c Construct) error {
	calls, err := b.model.CallsWithin(c)
	if err != nil {
		return err
	}
	for _, call := range calls {
		callNode, err := b.processCall(call)
		if err != nil {
			return err
		}
		b.graph.Edges.GetOrCreate(n, callNode, EdgeKindChild)
	}
	return nil
}

// linkCalleeUsages draws a CALL edge from n to every call expression that
// invokes through the binding c.
func (b *Builder) linkCalleeUsages(n *Node, c Construct) error {
	for _, usage := range b.model.References(c) {
		callExpr, ok := b.model.CalleeCall(usage)
		if !ok {
			continue
		}
		callNode, err := b.processCall(callExpr)
		if err != nil {
			return err
		}
		b.graph.Edges.GetOrCreate(n, callNode, EdgeKindCall)
	}
	return nil
}
