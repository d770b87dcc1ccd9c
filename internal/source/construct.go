package source

import (
	"fmt"

	"github.com/dusk-indust/flowgraph/internal/graph"
)

// role disambiguates constructs that share a byte span. A call expression in
// argument position anchors two constructs at the same span: the argument
// occurrence and the call itself.
type role string

const (
	roleDecl   role = "decl"
	roleValue  role = "value"
	roleCall   role = "call"
	roleCallee role = "callee"
	roleArg    role = "arg"
	roleIdent  role = "ident"
)

// construct is the analyzer's implementation of graph.Construct. Identity is
// the (path, byte span, role) triple; everything else is a plain Go copy
// taken at extraction time.
type construct struct {
	key   graph.Key
	path  string
	start uint
	end   uint
	kind  graph.ConstructKind
	line  int
	text  string
	name  string

	// set on usage identifiers
	scope    *scope
	calleeOf *construct

	// byte window scanned by CallsWithin
	scanStart uint
	scanEnd   uint
	scannable bool
	needsBody bool
}

var _ graph.Construct = (*construct)(nil)

func makeKey(path string, start, end uint, r role) graph.Key {
	return graph.Key(fmt.Sprintf("%s#%d-%d#%s", path, start, end, r))
}

func (c *construct) Key() graph.Key            { return c.key }
func (c *construct) Kind() graph.ConstructKind { return c.kind }
func (c *construct) Path() string              { return c.path }
func (c *construct) StartLine() int            { return c.line }
func (c *construct) Text() string              { return c.text }
func (c *construct) Name() string              { return c.name }

// scope is one lexical binding frame. Lookup walks parent frames outward;
// declaration order within a frame does not matter.
type scope struct {
	parent   *scope
	bindings map[string]*construct
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: make(map[string]*construct)}
}

// bind records a name in this frame. The first declaration of a name wins.
func (s *scope) bind(name string, c *construct) {
	if _, ok := s.bindings[name]; !ok {
		s.bindings[name] = c
	}
}

func (s *scope) lookup(name string) *construct {
	for f := s; f != nil; f = f.parent {
		if c, ok := f.bindings[name]; ok {
			return c
		}
	}
	return nil
}
