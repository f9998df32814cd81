// Package graph assembles per-article links into a directed multigraph over
// the corpus, with duplicate counting and bidirectionality detection.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/starford/ehwaz/internal/models"
)

// ConnectionKind classifies a graph edge.
type ConnectionKind int

const (
	// DirectLink is a one-way edge.
	DirectLink ConnectionKind = iota
	// Bidirectional marks an edge whose reverse also exists.
	Bidirectional
)

// String returns the wire name of the kind.
func (k ConnectionKind) String() string {
	switch k {
	case DirectLink:
		return "direct"
	case Bidirectional:
		return "bidirectional"
	}
	return fmt.Sprintf("ConnectionKind(%d)", int(k))
}

// MarshalJSON encodes the kind as its wire name.
func (k ConnectionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a wire name back into a ConnectionKind.
func (k *ConnectionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "direct":
		*k = DirectLink
	case "bidirectional":
		*k = Bidirectional
	default:
		return fmt.Errorf("graph: unknown connection kind %q", s)
	}
	return nil
}

// Connection is a directed edge to a resolved corpus slug. LinkCount is the
// number of source occurrences (duplicate links to the same target).
type Connection struct {
	Target        string         `json:"target"`
	Kind          ConnectionKind `json:"connection_type"`
	Bidirectional bool           `json:"bidirectional"`
	LinkCount     int            `json:"link_count"`
}

// Node holds the outbound connections of one article plus memoized counts.
type Node struct {
	Connections   []Connection `json:"connections"`
	InboundCount  int          `json:"inbound_count"`
	OutboundCount int          `json:"outbound_count"`
}

// Graph is the link graph over the whole corpus, keyed by slug. The
// aggregate totals are derived during Build and never maintained
// incrementally.
type Graph struct {
	Nodes              map[string]*Node `json:"graph"`
	GeneratedAt        time.Time        `json:"generated_at"`
	TotalConnections   int              `json:"total_connections"`
	DirectLinks        int              `json:"direct_links"`
	BidirectionalPairs int              `json:"bidirectional_pairs"`
}

// Build constructs the link graph from the processed corpus. Only targets
// that exist as known slugs become edges; dangling targets stay on the
// article records for the validation engine to flag. For every mutual pair
// A→B / B→A both connections are marked bidirectional and the canonical pair
// (lexicographically smaller slug first) is counted exactly once.
func Build(articles []models.Article) *Graph {
	known := make(map[string]struct{}, len(articles))
	for i := range articles {
		known[articles[i].Slug] = struct{}{}
	}

	nodes := make(map[string]*Node, len(articles))
	for i := range articles {
		a := &articles[i]

		counts := make(map[string]int)
		outbound := 0
		for _, link := range a.InternalLinks() {
			outbound++
			if _, ok := known[link.Target]; ok {
				counts[link.Target]++
			}
		}

		conns := make([]Connection, 0, len(counts))
		for target, n := range counts {
			conns = append(conns, Connection{
				Target:    target,
				Kind:      DirectLink,
				LinkCount: n,
			})
		}
		sort.Slice(conns, func(i, j int) bool { return conns[i].Target < conns[j].Target })

		nodes[a.Slug] = &Node{
			Connections:   conns,
			OutboundCount: outbound,
		}
	}

	// Inbound counts: one per resolved link occurrence.
	for _, node := range nodes {
		for _, conn := range node.Connections {
			nodes[conn.Target].InboundCount += conn.LinkCount
		}
	}

	// Second pass: mark mutual edges and collect canonical pairs.
	pairs := make(map[[2]string]struct{})
	for source, node := range nodes {
		for i := range node.Connections {
			target := node.Connections[i].Target
			back, ok := nodes[target]
			if !ok {
				continue
			}
			if !hasEdge(back, source) {
				continue
			}
			node.Connections[i].Kind = Bidirectional
			node.Connections[i].Bidirectional = true

			pair := [2]string{source, target}
			if target < source {
				pair = [2]string{target, source}
			}
			pairs[pair] = struct{}{}
		}
	}

	g := &Graph{
		Nodes:              nodes,
		GeneratedAt:        time.Now().UTC(),
		BidirectionalPairs: len(pairs),
	}
	for _, node := range nodes {
		g.TotalConnections += len(node.Connections)
		for _, conn := range node.Connections {
			if !conn.Bidirectional {
				g.DirectLinks++
			}
		}
	}
	return g
}

func hasEdge(node *Node, target string) bool {
	for _, c := range node.Connections {
		if c.Target == target {
			return true
		}
	}
	return false
}
