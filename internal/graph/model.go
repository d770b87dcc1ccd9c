package graph

// Key uniquely identifies a construct within one analysis. Two constructs
// compare equal exactly when their keys are equal; the same syntactic
// expression observed in an argument position carries a distinct key from
// its plain occurrence, so it can anchor both an argument node and a call
// node.
type Key string

// ConstructKind classifies the syntactic role of a construct as seen by the
// builder's dispatch table.
type ConstructKind string

const (
	ConstructVariable ConstructKind = "variable" // one variable declarator
	ConstructFunction ConstructKind = "function" // free function declaration
	ConstructMethod   ConstructKind = "method"   // class method declaration
	ConstructCall     ConstructKind = "call"     // call expression
	ConstructOther    ConstructKind = "other"    // parameters, classes, imports, ...
)

// Construct is an opaque handle to one syntactic element owned by the source
// model. The builder uses it only for identity, kind dispatch, and the
// location/span/name data the serializer emits.
type Construct interface {
	Key() Key
	Kind() ConstructKind
	// Path returns the construct's file path relative to the analysis root.
	Path() string
	// StartLine returns the 1-based line the construct starts on.
	StartLine() int
	// Text returns the construct's raw source span.
	Text() string
	// Name returns the declared symbol name, or "" for unnamed constructs.
	Name() string
}

// Variable describes one variable declarator.
type Variable struct {
	Name     string
	Exported bool
	// Init is the initializer expression. Model implementations fail with
	// ErrMissingInitializer instead of returning a nil Init.
	Init Construct
	// FuncValue marks initializers that are arrow or function expressions.
	FuncValue bool
}

// Call describes one call expression.
type Call struct {
	// Callee is the expression in call position.
	Callee Construct
	// Bare marks callees that are plain identifiers. Property accesses such
	// as obj.method(...) are not bare and are never resolved.
	Bare bool
	// Args holds the argument expressions in source order, each with
	// argument-role identity.
	Args []Construct
}

// Model is the semantic oracle the graph builder consults: declaration
// enumeration, structural detail lookup, identifier resolution, and
// reference search over one immutable analyzed file set. Implementations
// are synchronous and complete for that set.
type Model interface {
	// Files lists the analyzed file paths in deterministic order.
	Files() []string

	// Declarations enumerates a file's top-level variable declarators, free
	// function declarations, and class method declarations in source order.
	Declarations(path string) ([]Construct, error)

	// Variable describes a variable-declarator construct. Fails with
	// ErrMissingStatement or ErrMissingInitializer on broken structure.
	Variable(c Construct) (*Variable, error)

	// Call describes a call-expression construct.
	Call(c Construct) (*Call, error)

	// CallsWithin returns every call expression in the construct's subtree,
	// including the construct itself when it is a call expression. Fails
	// with ErrMissingBody when a function-like construct has no body.
	CallsWithin(c Construct) ([]Construct, error)

	// Resolve returns the declaration sites an identifier construct may
	// refer to; empty when the name is unbound.
	Resolve(c Construct) []Construct

	// References returns every usage of a variable binding across the
	// analyzed set, excluding the declaration itself.
	References(c Construct) []Construct

	// CalleeCall returns the enclosing call expression when the usage
	// occupies the callee position of one (directly or through a property
	// access chain).
	CalleeCall(usage Construct) (Construct, bool)
}
