// Package network holds the immutable, QoS-annotated network model shared by
// the cost model, the route searches and the experiment harness.
package network

import (
	"errors"
	"fmt"
	"sort"
)

// NodeID identifies a node. IDs come from the sampled graph, so a reduced
// network may have gaps in its ID space.
type NodeID int

// Path is an ordered sequence of distinct nodes from source to target.
type Path []NodeID

// Source returns the first node of the path.
func (p Path) Source() NodeID { return p[0] }

// Target returns the last node of the path.
func (p Path) Target() NodeID { return p[len(p)-1] }

// Hops returns the number of edges traversed by the path.
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Node carries the per-node QoS attributes.
type Node struct {
	ID              NodeID
	ProcessingDelay float64 // time units spent forwarding through the node
	Reliability     float64 // probability the node does not fail, in (0,1]
}

// Edge carries the per-link QoS attributes. A and B are unordered.
type Edge struct {
	A, B        NodeID
	Bandwidth   float64
	Delay       float64
	Reliability float64
}

// Other returns the endpoint of e that is not id.
func (e Edge) Other(id NodeID) NodeID {
	if e.A == id {
		return e.B
	}
	return e.A
}

var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrUnknownNode   = errors.New("unknown node")
	ErrSelfLoop      = errors.New("self loop")
	ErrDuplicateEdge = errors.New("duplicate edge")
	ErrAttribute     = errors.New("attribute out of range")
)

type edgeKey struct{ lo, hi NodeID }

func keyOf(u, v NodeID) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{lo: u, hi: v}
}

// Network is an undirected graph with QoS attributes. It is immutable once
// built; every accessor returns copies so consumers cannot alter what the
// searches see.
type Network struct {
	nodes []Node         // ascending by ID
	index map[NodeID]int // ID -> position in nodes
	edges []Edge
	edge  map[edgeKey]int
	adj   [][]int // node position -> neighbour positions, in edge insertion order
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int { return len(n.edges) }

// Usable reports whether a route between two distinct nodes can exist.
func (n *Network) Usable() bool { return len(n.nodes) >= 2 }

// NodeIDs returns all node IDs in ascending order.
func (n *Network) NodeIDs() []NodeID {
	ids := make([]NodeID, len(n.nodes))
	for i, node := range n.nodes {
		ids[i] = node.ID
	}
	return ids
}

// HasNode reports whether id belongs to the network.
func (n *Network) HasNode(id NodeID) bool {
	_, ok := n.index[id]
	return ok
}

// Node returns the attributes of id.
func (n *Network) Node(id NodeID) (Node, bool) {
	i, ok := n.index[id]
	if !ok {
		return Node{}, false
	}
	return n.nodes[i], true
}

// Edge returns the edge joining u and v in either direction.
func (n *Network) Edge(u, v NodeID) (Edge, bool) {
	i, ok := n.edge[keyOf(u, v)]
	if !ok {
		return Edge{}, false
	}
	return n.edges[i], true
}

// Edges returns a copy of all edges in insertion order.
func (n *Network) Edges() []Edge {
	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Neighbors returns the nodes adjacent to id in edge insertion order.
func (n *Network) Neighbors(id NodeID) []NodeID {
	i, ok := n.index[id]
	if !ok {
		return nil
	}
	out := make([]NodeID, len(n.adj[i]))
	for k, j := range n.adj[i] {
		out[k] = n.nodes[j].ID
	}
	return out
}

// Degree returns the number of neighbours of id.
func (n *Network) Degree(id NodeID) int {
	i, ok := n.index[id]
	if !ok {
		return 0
	}
	return len(n.adj[i])
}

// IsValidPath reports whether p is a path of distinct, pairwise adjacent
// nodes of the network.
func (n *Network) IsValidPath(p Path) bool {
	if len(p) == 0 {
		return false
	}
	seen := make(map[NodeID]struct{}, len(p))
	for i, id := range p {
		if !n.HasNode(id) {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		if i > 0 {
			if _, ok := n.Edge(p[i-1], id); !ok {
				return false
			}
		}
	}
	return true
}

// Builder assembles a Network. It validates attributes as they are added.
type Builder struct {
	nodes map[NodeID]Node
	edges []Edge
	seen  map[edgeKey]struct{}
	err   error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[NodeID]Node),
		seen:  make(map[edgeKey]struct{}),
	}
}

// AddNode adds a node. The first error sticks and is reported by Build.
func (b *Builder) AddNode(id NodeID, processingDelay, reliability float64) *Builder {
	if b.err != nil {
		return b
	}
	if _, ok := b.nodes[id]; ok {
		b.err = fmt.Errorf("node %d: %w", id, ErrDuplicateNode)
		return b
	}
	if !(processingDelay > 0) {
		b.err = fmt.Errorf("node %d processing delay %v: %w", id, processingDelay, ErrAttribute)
		return b
	}
	if !probability(reliability) {
		b.err = fmt.Errorf("node %d reliability %v: %w", id, reliability, ErrAttribute)
		return b
	}
	b.nodes[id] = Node{ID: id, ProcessingDelay: processingDelay, Reliability: reliability}
	return b
}

// AddEdge adds an undirected edge between two existing nodes.
func (b *Builder) AddEdge(u, v NodeID, bandwidth, delay, reliability float64) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case u == v:
		b.err = fmt.Errorf("edge %d-%d: %w", u, v, ErrSelfLoop)
	case !b.has(u):
		b.err = fmt.Errorf("edge %d-%d endpoint %d: %w", u, v, u, ErrUnknownNode)
	case !b.has(v):
		b.err = fmt.Errorf("edge %d-%d endpoint %d: %w", u, v, v, ErrUnknownNode)
	case !(bandwidth > 0):
		b.err = fmt.Errorf("edge %d-%d bandwidth %v: %w", u, v, bandwidth, ErrAttribute)
	case !(delay > 0):
		b.err = fmt.Errorf("edge %d-%d delay %v: %w", u, v, delay, ErrAttribute)
	case !probability(reliability):
		b.err = fmt.Errorf("edge %d-%d reliability %v: %w", u, v, reliability, ErrAttribute)
	}
	if b.err != nil {
		return b
	}
	k := keyOf(u, v)
	if _, dup := b.seen[k]; dup {
		b.err = fmt.Errorf("edge %d-%d: %w", u, v, ErrDuplicateEdge)
		return b
	}
	b.seen[k] = struct{}{}
	b.edges = append(b.edges, Edge{A: u, B: v, Bandwidth: bandwidth, Delay: delay, Reliability: reliability})
	return b
}

func (b *Builder) has(id NodeID) bool {
	_, ok := b.nodes[id]
	return ok
}

// Build freezes the builder into a Network.
func (b *Builder) Build() (*Network, error) {
	if b.err != nil {
		return nil, b.err
	}

	net := &Network{
		nodes: make([]Node, 0, len(b.nodes)),
		index: make(map[NodeID]int, len(b.nodes)),
		edges: make([]Edge, len(b.edges)),
		edge:  make(map[edgeKey]int, len(b.edges)),
	}
	for _, node := range b.nodes {
		net.nodes = append(net.nodes, node)
	}
	sort.Slice(net.nodes, func(i, j int) bool { return net.nodes[i].ID < net.nodes[j].ID })
	for i, node := range net.nodes {
		net.index[node.ID] = i
	}

	copy(net.edges, b.edges)
	net.adj = make([][]int, len(net.nodes))
	for i, e := range net.edges {
		net.edge[keyOf(e.A, e.B)] = i
		a, c := net.index[e.A], net.index[e.B]
		net.adj[a] = append(net.adj[a], c)
		net.adj[c] = append(net.adj[c], a)
	}
	return net, nil
}

func probability(p float64) bool {
	return p > 0 && p <= 1
}
