package graph

// NodeRegistry stores exactly one node per distinct construct identity and
// assigns ids in creation order starting at 0. A hit on GetOrCreate is the
// builder's memoization and cycle guard: callers stop expanding a construct
// whose node already exists.
type NodeRegistry struct {
	byKey map[Key]*Node
	nodes []*Node
}

// NewNodeRegistry returns an empty node registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{byKey: make(map[Key]*Node)}
}

// GetOrCreate returns the node for the construct, creating it with the given
// kind when absent. The second result reports whether a new node was created.
// An existing node is returned unchanged even when the requested kind differs.
func (r *NodeRegistry) GetOrCreate(c Construct, kind NodeKind) (*Node, bool) {
	if n, ok := r.byKey[c.Key()]; ok {
		return n, false
	}
	n := &Node{
		ID:        len(r.nodes),
		Kind:      kind,
		Construct: c,
	}
	r.byKey[c.Key()] = n
	r.nodes = append(r.nodes, n)
	return n, true
}

// Len returns the number of registered nodes.
func (r *NodeRegistry) Len() int {
	return len(r.nodes)
}

// Nodes returns the registered nodes in creation order. The slice is shared;
// callers must not modify it.
func (r *NodeRegistry) Nodes() []*Node {
	return r.nodes
}

// edgePair is the deduplication key of the edge registry: the ordered
// (source id, target id) pair. The edge kind is deliberately not part of the
// key; the first edge created between a pair wins and later requests of any
// kind return it unchanged.
type edgePair struct {
	src, dst int
}

// EdgeRegistry stores at most one edge per ordered node pair and assigns ids
// in creation order starting at 0.
type EdgeRegistry struct {
	byPair map[edgePair]*Edge
	edges  []*Edge
}

// NewEdgeRegistry returns an empty edge registry.
func NewEdgeRegistry() *EdgeRegistry {
	return &EdgeRegistry{byPair: make(map[edgePair]*Edge)}
}

// GetOrCreate returns the edge from src to dst, creating it with the given
// kind when the pair is unlinked. A new edge is appended to src.Outgoing and
// dst.Incoming. The second result reports whether a new edge was created.
func (r *EdgeRegistry) GetOrCreate(src, dst *Node, kind EdgeKind) (*Edge, bool) {
	pair := edgePair{src: src.ID, dst: dst.ID}
	if e, ok := r.byPair[pair]; ok {
		return e, false
	}
	e := &Edge{
		ID:     len(r.edges),
		Kind:   kind,
		Source: src,
		Target: dst,
	}
	r.byPair[pair] = e
	r.edges = append(r.edges, e)
	src.Outgoing = append(src.Outgoing, e)
	dst.Incoming = append(dst.Incoming, e)
	return e, true
}

// Len returns the number of registered edges.
func (r *EdgeRegistry) Len() int {
	return len(r.edges)
}

// Edges returns the registered edges in creation order. The slice is shared;
// callers must not modify it.
func (r *EdgeRegistry) Edges() []*Edge {
	return r.edges
}
