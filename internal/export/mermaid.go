package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/flowgraph/internal/graph"
)

// GenerateMermaid renders a flow-graph document as a Mermaid flowchart TD.
// Node shape encodes the node kind; each edge arrow is labeled with its kind.
func GenerateMermaid(doc *graph.Document) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	for _, n := range doc.Nodes {
		sb.WriteString(fmt.Sprintf("  N%d%s\n", n.ID, nodeShape(n)))
	}
	for _, e := range doc.Edges {
		sb.WriteString(fmt.Sprintf("  N%d -- %s --> N%d\n", e.Source, e.Kind, e.Target))
	}
	return sb.String()
}

// nodeShape returns the shaped Mermaid label for a node: functions render as
// rectangles, calls as stadiums, arguments as circles, objects as cylinders,
// and anything unresolved as a hexagon.
func nodeShape(n graph.NodeRecord) string {
	label := nodeLabel(n)
	switch n.Kind {
	case graph.NodeKindFunction:
		return fmt.Sprintf("[\"%s\"]", label)
	case graph.NodeKindCall:
		return fmt.Sprintf("([\"%s\"])", label)
	case graph.NodeKindArgument:
		return fmt.Sprintf("((\"%s\"))", label)
	case graph.NodeKindObject:
		return fmt.Sprintf("[(\"%s\")]", label)
	default:
		return fmt.Sprintf("{{\"%s\"}}", label)
	}
}

// nodeLabel picks the display text for a node: the declared name when it has
// one, otherwise the source span, flattened and escaped for Mermaid.
func nodeLabel(n graph.NodeRecord) string {
	text := n.Name
	if text == "" {
		text = n.Span
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, `"`, "#quot;")
	return fmt.Sprintf("%.40s", text)
}
