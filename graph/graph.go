// Package graph stores a property graph in the embedded SQL engine and
// answers neighborhood and shortest-path queries. It is independent of
// the query engine.
package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/satishbabariya/querykit/query/executor"
)

// ErrNotFound reports a missing node or edge.
var ErrNotFound = errors.New("not found")

// ErrNoPath reports that no path connects the requested nodes.
var ErrNoPath = errors.New("no path")

// Node is a labeled vertex with free-form properties.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge connects two nodes. Direction runs From -> To.
type Edge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Direction selects which edges a traversal follows.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// Repository persists nodes and edges. Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// Open connects the repository to the embedded engine at dsn and
// creates its schema.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sqlx.Open(executor.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}
	r := NewRepository(db)
	if err := r.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// NewRepository wraps an existing connection. Callers own the handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS graph_nodes (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS graph_edges (
	id         TEXT PRIMARY KEY,
	from_id    TEXT NOT NULL,
	to_id      TEXT NOT NULL,
	label      TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_graph_edges_from ON graph_edges(from_id);
CREATE INDEX IF NOT EXISTS idx_graph_edges_to ON graph_edges(to_id);
`

// Init creates the node and edge tables when missing.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create graph schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

type nodeRow struct {
	ID         string `db:"id"`
	Label      string `db:"label"`
	Properties string `db:"properties"`
}

type edgeRow struct {
	ID         string `db:"id"`
	From       string `db:"from_id"`
	To         string `db:"to_id"`
	Label      string `db:"label"`
	Properties string `db:"properties"`
}

// AddNode inserts n, assigning an ID when n.ID is empty, and returns
// the stored node.
func (r *Repository) AddNode(ctx context.Context, n Node) (Node, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	props, err := marshalProperties(n.Properties)
	if err != nil {
		return Node{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO graph_nodes (id, label, properties) VALUES (?, ?, ?)`,
		n.ID, n.Label, props)
	if err != nil {
		return Node{}, fmt.Errorf("add node %s: %w", n.ID, err)
	}
	return n, nil
}

// GetNode fetches a node by ID.
func (r *Repository) GetNode(ctx context.Context, id string) (Node, error) {
	var row nodeRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT id, label, properties FROM graph_nodes WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
		}
		return Node{}, fmt.Errorf("get node %s: %w", id, err)
	}
	return row.toNode()
}

// UpdateNode replaces an existing node's label and properties.
func (r *Repository) UpdateNode(ctx context.Context, n Node) error {
	props, err := marshalProperties(n.Properties)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE graph_nodes SET label = ?, properties = ? WHERE id = ?`,
		n.Label, props, n.ID)
	if err != nil {
		return fmt.Errorf("update node %s: %w", n.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", n.ID, ErrNotFound)
	}
	return nil
}

// DeleteNode removes a node and every edge incident to it.
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM graph_edges WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
		return fmt.Errorf("delete edges of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM graph_nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// AddEdge inserts e, assigning an ID when e.ID is empty. Both endpoints
// must exist.
func (r *Repository) AddEdge(ctx context.Context, e Edge) (Edge, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	for _, endpoint := range []string{e.From, e.To} {
		var n int
		if err := sqlx.GetContext(ctx, r.db, &n,
			`SELECT COUNT(*) FROM graph_nodes WHERE id = ?`, endpoint); err != nil {
			return Edge{}, fmt.Errorf("check endpoint %s: %w", endpoint, err)
		}
		if n == 0 {
			return Edge{}, fmt.Errorf("endpoint %s: %w", endpoint, ErrNotFound)
		}
	}

	props, err := marshalProperties(e.Properties)
	if err != nil {
		return Edge{}, err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO graph_edges (id, from_id, to_id, label, properties) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.From, e.To, e.Label, props)
	if err != nil {
		return Edge{}, fmt.Errorf("add edge %s: %w", e.ID, err)
	}
	return e, nil
}

// GetEdge fetches an edge by ID.
func (r *Repository) GetEdge(ctx context.Context, id string) (Edge, error) {
	var row edgeRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT id, from_id, to_id, label, properties FROM graph_edges WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Edge{}, fmt.Errorf("edge %s: %w", id, ErrNotFound)
		}
		return Edge{}, fmt.Errorf("get edge %s: %w", id, err)
	}
	return row.toEdge()
}

// DeleteEdge removes an edge by ID.
func (r *Repository) DeleteEdge(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM graph_edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	return nil
}

// Neighbors returns the distinct nodes adjacent to id along dir,
// ordered by ID.
func (r *Repository) Neighbors(ctx context.Context, id string, dir Direction) ([]Node, error) {
	var query string
	args := []any{id}
	switch dir {
	case Outgoing:
		query = `SELECT n.id, n.label, n.properties FROM graph_nodes n
			JOIN graph_edges e ON n.id = e.to_id WHERE e.from_id = ?`
	case Incoming:
		query = `SELECT n.id, n.label, n.properties FROM graph_nodes n
			JOIN graph_edges e ON n.id = e.from_id WHERE e.to_id = ?`
	case Both:
		query = `SELECT n.id, n.label, n.properties FROM graph_nodes n
			JOIN graph_edges e ON (n.id = e.to_id AND e.from_id = ?)
			OR (n.id = e.from_id AND e.to_id = ?)`
		args = append(args, id)
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	query = `SELECT DISTINCT id, label, properties FROM (` + query + `) ORDER BY id`

	var rows []nodeRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("neighbors of %s: %w", id, err)
	}
	nodes := make([]Node, 0, len(rows))
	for _, row := range rows {
		n, err := row.toNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ShortestPath returns the node IDs of an unweighted shortest path from
// one node to another, endpoints included. Ties break toward smaller
// IDs, so the result is deterministic. It returns ErrNoPath when the
// nodes are not connected along dir.
func (r *Repository) ShortestPath(ctx context.Context, from, to string, dir Direction) ([]string, error) {
	if dir != Outgoing && dir != Incoming && dir != Both {
		return nil, fmt.Errorf("unknown direction %q", dir)
	}
	if _, err := r.GetNode(ctx, from); err != nil {
		return nil, err
	}
	if _, err := r.GetNode(ctx, to); err != nil {
		return nil, err
	}
	if from == to {
		return []string{from}, nil
	}

	adjacency, err := r.adjacency(ctx, dir)
	if err != nil {
		return nil, err
	}

	parent := map[string]string{from: ""}
	frontier := []string{from}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range adjacency[id] {
				if _, seen := parent[neighbor]; seen {
					continue
				}
				parent[neighbor] = id
				if neighbor == to {
					return rebuildPath(parent, to), nil
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return nil, fmt.Errorf("%s -> %s: %w", from, to, ErrNoPath)
}

// adjacency loads the whole edge set once; BFS then runs in memory.
func (r *Repository) adjacency(ctx context.Context, dir Direction) (map[string][]string, error) {
	type pair struct {
		From string `db:"from_id"`
		To   string `db:"to_id"`
	}
	var pairs []pair
	if err := sqlx.SelectContext(ctx, r.db, &pairs,
		`SELECT from_id, to_id FROM graph_edges`); err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	adjacency := make(map[string][]string)
	for _, p := range pairs {
		if dir == Outgoing || dir == Both {
			adjacency[p.From] = append(adjacency[p.From], p.To)
		}
		if dir == Incoming || dir == Both {
			adjacency[p.To] = append(adjacency[p.To], p.From)
		}
	}
	for _, neighbors := range adjacency {
		sort.Strings(neighbors)
	}
	return adjacency, nil
}

func rebuildPath(parent map[string]string, to string) []string {
	var reversed []string
	for id := to; id != ""; id = parent[id] {
		reversed = append(reversed, id)
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

func (row nodeRow) toNode() (Node, error) {
	n := Node{ID: row.ID, Label: row.Label}
	if err := unmarshalProperties(row.Properties, &n.Properties); err != nil {
		return Node{}, fmt.Errorf("node %s: %w", row.ID, err)
	}
	return n, nil
}

func (row edgeRow) toEdge() (Edge, error) {
	e := Edge{ID: row.ID, From: row.From, To: row.To, Label: row.Label}
	if err := unmarshalProperties(row.Properties, &e.Properties); err != nil {
		return Edge{}, fmt.Errorf("edge %s: %w", row.ID, err)
	}
	return e, nil
}

func marshalProperties(props map[string]any) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	doc, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(doc), nil
}

func unmarshalProperties(doc string, into *map[string]any) error {
	if doc == "" || doc == "{}" {
		return nil
	}
	return json.Unmarshal([]byte(doc), into)
}
