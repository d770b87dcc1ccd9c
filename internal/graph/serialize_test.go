package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// TestDocument_Projection
// ---------------------------------------------------------------------------

func TestDocument_Projection(t *testing.T) {
	m := newFakeModel()

	// bar(x, callback) { return callback(callback(x)); }
	method := fcNamed("bar@3", ConstructMethod, "bar")
	outer := fc("callback(callback(x))@4:9", ConstructCall)
	inner := fc("callback(x)@4:18", ConstructCall)
	innerAsArg := fc("callback(x)@4:18/arg", ConstructOther)
	xAsArg := fc("x@4:27/arg", ConstructOther)
	outerCallee := fc("callback@4:9", ConstructOther)
	innerCallee := fc("callback@4:18", ConstructOther)
	param := fcNamed("callback@3:14", ConstructOther, "callback")

	m.addFile("app.ts", method)
	m.setCallsWithin(method, outer, inner)
	m.setCall(outer, outerCallee, true, innerAsArg)
	m.setCall(inner, innerCallee, true, xAsArg)
	m.setResolve(outerCallee, param)
	m.setResolve(innerCallee, param)
	m.setCallsWithin(innerAsArg, inner)

	g := buildGraph(t, m)
	doc, err := g.Document()
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 6)
	require.Len(t, doc.Edges, 5)

	for i, rec := range doc.Nodes {
		assert.Equal(t, i, rec.ID, "node records are emitted in id order")
	}
	for i, rec := range doc.Edges {
		assert.Equal(t, i, rec.ID, "edge records are emitted in id order")
		assert.Empty(t, rec.Label)
	}

	barRec := doc.Nodes[0]
	assert.Equal(t, NodeKindFunction, barRec.Kind)
	assert.Equal(t, "bar", barRec.Name)
	assert.Equal(t, "app.ts:1", barRec.Location)
	assert.Equal(t, method.Text(), barRec.Span)
	assert.Empty(t, barRec.Incoming)
	assert.Equal(t, []int{3, 4}, barRec.Outgoing)
	assert.Empty(t, barRec.Args, "args are a call-node payload")

	outerRec := doc.Nodes[1]
	assert.Equal(t, NodeKindCall, outerRec.Kind)
	assert.Empty(t, outerRec.Name)
	assert.Equal(t, []int{3}, outerRec.Incoming)
	assert.Equal(t, []int{2}, outerRec.Outgoing)
	assert.Equal(t, []int{2}, outerRec.Args)

	paramRec := doc.Nodes[2]
	assert.Equal(t, NodeKindAny, paramRec.Kind)
	assert.Empty(t, paramRec.Incoming)
	assert.Empty(t, paramRec.Outgoing)

	innerRec := doc.Nodes[4]
	assert.Equal(t, NodeKindCall, innerRec.Kind)
	assert.Equal(t, []int{1, 4}, innerRec.Incoming)
	assert.Equal(t, []int{0}, innerRec.Args)

	first := doc.Edges[0]
	assert.Equal(t, EdgeKindArgument, first.Kind)
	assert.Equal(t, 4, first.Source)
	assert.Equal(t, 5, first.Target)

	last := doc.Edges[4]
	assert.Equal(t, EdgeKindChild, last.Kind)
	assert.Equal(t, 0, last.Source)
	assert.Equal(t, 4, last.Target)
}

// ---------------------------------------------------------------------------
// TestDocument_ObjectName
// ---------------------------------------------------------------------------

func TestDocument_ObjectName(t *testing.T) {
	m := newFakeModel()

	decl := fcNamed("config@1", ConstructVariable, "config")
	m.addFile("app.ts", decl)
	m.setVariable(decl, &Variable{
		Name:     "config",
		Exported: true,
		Init:     fc("{}@1:22", ConstructOther),
	})

	g := buildGraph(t, m)
	doc, err := g.Document()
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, NodeKindObject, doc.Nodes[0].Kind)
	assert.Equal(t, "config", doc.Nodes[0].Name)
}

// ---------------------------------------------------------------------------
// TestDocument_ArgumentEdgeIntegrity
// ---------------------------------------------------------------------------

func TestDocument_ArgumentEdgeIntegrity(t *testing.T) {
	g := NewGraph()

	// An ARGUMENT edge leaving a non-call node is a builder bug the
	// serializer refuses to paper over.
	src, _ := g.Nodes.GetOrCreate(fcNamed("f@1", ConstructFunction, "f"), NodeKindFunction)
	dst, _ := g.Nodes.GetOrCreate(fc("x@2/arg", ConstructOther), NodeKindArgument)
	g.Edges.GetOrCreate(src, dst, EdgeKindArgument)

	doc, err := g.Document()
	require.ErrorIs(t, err, ErrArgumentEdgeSource)
	assert.Nil(t, doc)
}

// ---------------------------------------------------------------------------
// TestDocument_Empty
// ---------------------------------------------------------------------------

func TestDocument_Empty(t *testing.T) {
	doc, err := NewGraph().Document()
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}
