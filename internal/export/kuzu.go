//go:build cgo

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/flowgraph/internal/graph"
)

// KuzuStore persists flow-graph documents into an embedded KuzuDB instance.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself for new
// databases; for existing ones the directory must hold valid KuzuDB files.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ddlStatements defines the Cypher DDL executed by InitSchema.
// The node table must precede the relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS FlowNode(
		id INT64,
		kind STRING,
		location STRING,
		span STRING,
		name STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS CHILD(FROM FlowNode TO FlowNode, id INT64)`,
	`CREATE REL TABLE IF NOT EXISTS ARGUMENT(FROM FlowNode TO FlowNode, id INT64)`,
	`CREATE REL TABLE IF NOT EXISTS CALL(FROM FlowNode TO FlowNode, id INT64)`,
}

// InitSchema creates the node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// PersistDocument inserts every node and edge of the document. Node rows must
// exist before edges reference them, so nodes are written first.
func (s *KuzuStore) PersistDocument(ctx context.Context, doc *graph.Document) error {
	for _, n := range doc.Nodes {
		if err := s.addNode(ctx, n); err != nil {
			return err
		}
	}
	for _, e := range doc.Edges {
		if err := s.addEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// PersistKuzu replaces the KuzuDB at dbPath with the given document. The old
// database directory is removed first to avoid stale rows from earlier builds.
func PersistKuzu(ctx context.Context, dbPath string, doc *graph.Document) error {
	os.RemoveAll(dbPath)

	store, err := NewKuzuFileStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	return store.PersistDocument(ctx, doc)
}

func (s *KuzuStore) addNode(_ context.Context, n graph.NodeRecord) error {
	return s.exec(
		`CREATE (n:FlowNode {
			id: $id,
			kind: $kind,
			location: $loc,
			span: $span,
			name: $name
		})`,
		map[string]any{
			"id":   int64(n.ID),
			"kind": string(n.Kind),
			"loc":  n.Location,
			"span": n.Span,
			"name": n.Name,
		},
	)
}

func (s *KuzuStore) addEdge(_ context.Context, e graph.EdgeRecord) error {
	cypher, err := edgeCypher(e.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"id":  int64(e.ID),
		"src": int64(e.Source),
		"dst": int64(e.Target),
	})
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind. The
// edge id rides along as a rel property so documents read back out keep
// their original edge identities.
func edgeCypher(kind graph.EdgeKind) (string, error) {
	switch kind {
	case graph.EdgeKindChild:
		return `MATCH (a:FlowNode {id: $src}), (b:FlowNode {id: $dst})
				CREATE (a)-[:CHILD {id: $id}]->(b)`, nil
	case graph.EdgeKindArgument:
		return `MATCH (a:FlowNode {id: $src}), (b:FlowNode {id: $dst})
				CREATE (a)-[:ARGUMENT {id: $id}]->(b)`, nil
	case graph.EdgeKindCall:
		return `MATCH (a:FlowNode {id: $src}), (b:FlowNode {id: $dst})
				CREATE (a)-[:CALL {id: $id}]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ReadDocument reconstructs the persisted document. Node and edge ids in the
// store are the dense serializer ids, so the per-node edge lists and the
// argument lists of call nodes can be rebuilt exactly as written.
func (s *KuzuStore) ReadDocument(_ context.Context) (*graph.Document, error) {
	rows, err := s.query(`MATCH (n:FlowNode)
			RETURN n.id, n.kind, n.location, n.span, n.name ORDER BY n.id`, nil)
	if err != nil {
		return nil, err
	}

	doc := &graph.Document{
		Nodes: make([]graph.NodeRecord, 0, len(rows)),
		Edges: []graph.EdgeRecord{},
	}
	for _, r := range rows {
		doc.Nodes = append(doc.Nodes, graph.NodeRecord{
			ID:       toInt(r[0]),
			Kind:     graph.NodeKind(toString(r[1])),
			Location: toString(r[2]),
			Span:     toString(r[3]),
			Name:     toString(r[4]),
			Incoming: []int{},
			Outgoing: []int{},
		})
	}

	for _, kind := range []graph.EdgeKind{graph.EdgeKindChild, graph.EdgeKindArgument, graph.EdgeKindCall} {
		rows, err := s.query(fmt.Sprintf(
			"MATCH (a:FlowNode)-[r:%s]->(b:FlowNode) RETURN r.id, a.id, b.id", kind), nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			doc.Edges = append(doc.Edges, graph.EdgeRecord{
				ID:     toInt(r[0]),
				Kind:   kind,
				Source: toInt(r[1]),
				Target: toInt(r[2]),
			})
		}
	}
	sort.Slice(doc.Edges, func(i, j int) bool { return doc.Edges[i].ID < doc.Edges[j].ID })

	// Edge lists follow edge creation order, which is ascending edge id.
	for _, e := range doc.Edges {
		src := &doc.Nodes[e.Source]
		src.Outgoing = append(src.Outgoing, e.ID)
		doc.Nodes[e.Target].Incoming = append(doc.Nodes[e.Target].Incoming, e.ID)
		if e.Kind == graph.EdgeKindArgument && src.Kind == graph.NodeKindCall {
			src.Args = append(src.Args, e.ID)
		}
	}
	return doc, nil
}

// QueryNodes returns node records matching the given filters. An empty kind
// matches every kind; an empty name skips the name filter, otherwise names
// are matched by substring.
func (s *KuzuStore) QueryNodes(_ context.Context, kind, name string, limit int) ([]graph.NodeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	cypher := "MATCH (n:FlowNode)"
	params := map[string]any{"lim": int64(limit)}
	var conds []string
	if kind != "" {
		conds = append(conds, "n.kind = $kind")
		params["kind"] = kind
	}
	if name != "" {
		conds = append(conds, "n.name CONTAINS $name")
		params["name"] = name
	}
	if len(conds) > 0 {
		cypher += " WHERE " + strings.Join(conds, " AND ")
	}
	cypher += ` RETURN n.id, n.kind, n.location, n.span, n.name
				ORDER BY n.id LIMIT $lim`

	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]graph.NodeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, graph.NodeRecord{
			ID:       toInt(r[0]),
			Kind:     graph.NodeKind(toString(r[1])),
			Location: toString(r[2]),
			Span:     toString(r[3]),
			Name:     toString(r[4]),
		})
	}
	return out, nil
}

// Stats returns node and edge counts for the persisted graph.
func (s *KuzuStore) Stats(_ context.Context) (*graph.Stats, error) {
	nodes, err := s.countTable("FlowNode")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}

	byKind := make(map[graph.NodeKind]int)
	rows, err := s.query("MATCH (n:FlowNode) RETURN n.kind, count(n)", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		byKind[graph.NodeKind(toString(r[0]))] = toInt(r[1])
	}

	return &graph.Stats{
		NodeCount: nodes,
		EdgeCount: edges,
		ByKind:    byKind,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	tables := []string{"CHILD", "ARGUMENT", "CALL"}
	total := 0
	for _, t := range tables {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t)
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; treat as zero.
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, string). These helpers
// safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
