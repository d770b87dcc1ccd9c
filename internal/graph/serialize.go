package graph

import "fmt"

// Document projects the registries into the interchange document: every node
// and edge in creation order, locations as "path:line", and the per-kind
// payload fields. It fails when an ARGUMENT edge originates from a non-call
// node; that invariant is checked here rather than at edge creation.
func (g *Graph) Document() (*Document, error) {
	doc := &Document{
		Nodes: make([]NodeRecord, 0, g.Nodes.Len()),
		Edges: make([]EdgeRecord, 0, g.Edges.Len()),
	}
	for _, n := range g.Nodes.Nodes() {
		rec := NodeRecord{
			ID:       n.ID,
			Kind:     n.Kind,
			Location: fmt.Sprintf("%s:%d", n.Construct.Path(), n.Construct.StartLine()),
			Span:     n.Construct.Text(),
			Incoming: make([]int, 0, len(n.Incoming)),
			Outgoing: make([]int, 0, len(n.Outgoing)),
		}
		for _, e := range n.Incoming {
			rec.Incoming = append(rec.Incoming, e.ID)
		}
		for _, e := range n.Outgoing {
			if e.Kind == EdgeKindArgument && n.Kind != NodeKindCall {
				return nil, fmt.Errorf("node %d (%s) at %s: edge %d: %w",
					n.ID, n.Kind, rec.Location, e.ID, ErrArgumentEdgeSource)
			}
			rec.Outgoing = append(rec.Outgoing, e.ID)
		}
		switch n.Kind {
		case NodeKindFunction, NodeKindObject:
			rec.Name = n.Construct.Name()
		case NodeKindCall:
			for _, e := range n.Outgoing {
				if e.Kind == EdgeKindArgument {
					rec.Args = append(rec.Args, e.ID)
				}
			}
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.Edges.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			ID:     e.ID,
			Kind:   e.Kind,
			Source: e.Source.ID,
			Target: e.Target.ID,
		})
	}
	return doc, nil
}
