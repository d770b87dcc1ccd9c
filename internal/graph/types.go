package graph

import "errors"

// --- Enums ---

// NodeKind classifies nodes in the flow graph.
type NodeKind string

const (
	NodeKindFunction NodeKind = "function"
	NodeKindCall     NodeKind = "call"
	NodeKindArgument NodeKind = "argument"
	NodeKindObject   NodeKind = "object"
	NodeKindAny      NodeKind = "any"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	// EdgeKindChild links a function-like node to a call nested in its body,
	// or an argument node to a call nested in the argument expression.
	EdgeKindChild EdgeKind = "CHILD"
	// EdgeKindArgument links a call node to one of its argument nodes.
	EdgeKindArgument EdgeKind = "ARGUMENT"
	// EdgeKindCall links an object binding to a call site that invokes
	// through it.
	EdgeKindCall EdgeKind = "CALL"
)

// --- Errors ---

var (
	// ErrMissingStatement reports a variable declarator with no enclosing
	// declaration statement.
	ErrMissingStatement = errors.New("variable declaration outside a declaration statement")
	// ErrMissingInitializer reports a variable declarator with no initializer.
	ErrMissingInitializer = errors.New("variable declaration has no initializer")
	// ErrMissingBody reports a function or method declaration with no body.
	ErrMissingBody = errors.New("function has no body")
	// ErrArgumentEdgeSource reports an ARGUMENT edge whose source node is not
	// a call node. The builder never produces one; hitting it during
	// serialization means a traversal defect, not bad input.
	ErrArgumentEdgeSource = errors.New("argument edge from non-call node")
	// ErrUnknownFile reports a model query for a file outside the analyzed set.
	ErrUnknownFile = errors.New("file not in analyzed set")
)

// --- Models ---

// Node represents one source construct in the flow graph.
type Node struct {
	ID        int
	Kind      NodeKind
	Construct Construct
	Incoming  []*Edge
	Outgoing  []*Edge
}

// Edge represents one directed relation between two nodes. Edges and nodes
// cross-reference each other; both live for the lifetime of one graph.
type Edge struct {
	ID     int
	Kind   EdgeKind
	Source *Node
	Target *Node
}

// Document is the serialized interchange form of a flow graph.
type Document struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// NodeRecord is the serialized form of one node. Name is set for function
// and object nodes; Args lists the outgoing ARGUMENT edge ids of call nodes.
type NodeRecord struct {
	ID       int      `json:"id"`
	Kind     NodeKind `json:"kind"`
	Location string   `json:"location"` // "path:line"
	Span     string   `json:"span"`
	Incoming []int    `json:"incoming"`
	Outgoing []int    `json:"outgoing"`
	Name     string   `json:"name,omitempty"`
	Args     []int    `json:"args,omitempty"`
}

// EdgeRecord is the serialized form of one edge. Label is reserved for
// future annotation and is always empty today.
type EdgeRecord struct {
	ID     int      `json:"id"`
	Kind   EdgeKind `json:"kind"`
	Source int      `json:"source"`
	Target int      `json:"target"`
	Label  string   `json:"label"`
}

// Stats summarizes a built flow graph.
type Stats struct {
	Files     int              `json:"files"`
	NodeCount int              `json:"nodeCount"`
	EdgeCount int              `json:"edgeCount"`
	ByKind    map[NodeKind]int `json:"byKind"`
}
