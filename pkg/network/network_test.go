package network

import (
	"errors"
	"testing"
)

// ring builds an n-node cycle with uniform attributes.
func ring(t *testing.T, n int) *Network {
	t.Helper()
	b := NewBuilder()
	for i := 0; i < n; i++ {
		b.AddNode(NodeID(i), 1.0, 0.99)
	}
	for i := 0; i < n; i++ {
		b.AddEdge(NodeID(i), NodeID((i+1)%n), 500, 10, 0.99)
	}
	net, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return net
}

// TestBuilder_Accessors tests counts, lookups and neighbour order
func TestBuilder_Accessors(t *testing.T) {
	net := ring(t, 6)

	if net.NodeCount() != 6 {
		t.Errorf("Expected 6 nodes, got %d", net.NodeCount())
	}
	if net.EdgeCount() != 6 {
		t.Errorf("Expected 6 edges, got %d", net.EdgeCount())
	}
	if !net.Usable() {
		t.Error("Expected a 6-node network to be usable")
	}

	e, ok := net.Edge(3, 2)
	if !ok {
		t.Fatal("Expected edge 3-2 to exist in either direction")
	}
	if e.Delay != 10 || e.Bandwidth != 500 {
		t.Errorf("Unexpected edge attributes %+v", e)
	}
	if _, ok := net.Edge(0, 3); ok {
		t.Error("Did not expect an edge between 0 and 3")
	}

	nbrs := net.Neighbors(0)
	if len(nbrs) != 2 || nbrs[0] != 1 || nbrs[1] != 5 {
		t.Errorf("Expected neighbours [1 5] of node 0, got %v", nbrs)
	}
	if net.Degree(42) != 0 || net.Neighbors(42) != nil {
		t.Error("Expected no neighbours for an unknown node")
	}
}

// TestNetwork_AccessorsReturnCopies tests that callers cannot mutate the network
func TestNetwork_AccessorsReturnCopies(t *testing.T) {
	net := ring(t, 4)

	nbrs := net.Neighbors(0)
	nbrs[0] = 99
	if net.Neighbors(0)[0] == 99 {
		t.Error("Mutating Neighbors result changed the network")
	}

	edges := net.Edges()
	edges[0].Delay = 1000
	if e, _ := net.Edge(edges[0].A, edges[0].B); e.Delay == 1000 {
		t.Error("Mutating Edges result changed the network")
	}

	ids := net.NodeIDs()
	ids[0] = 77
	if net.NodeIDs()[0] == 77 {
		t.Error("Mutating NodeIDs result changed the network")
	}
}

// TestBuilder_Errors tests rejection of invalid input
func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		want  error
	}{
		{"duplicate node", func(b *Builder) { b.AddNode(1, 1, 0.9).AddNode(1, 1, 0.9) }, ErrDuplicateNode},
		{"zero processing delay", func(b *Builder) { b.AddNode(1, 0, 0.9) }, ErrAttribute},
		{"reliability above one", func(b *Builder) { b.AddNode(1, 1, 1.5) }, ErrAttribute},
		{"zero reliability", func(b *Builder) { b.AddNode(1, 1, 0) }, ErrAttribute},
		{"self loop", func(b *Builder) { b.AddNode(1, 1, 0.9).AddEdge(1, 1, 100, 1, 0.9) }, ErrSelfLoop},
		{"unknown endpoint", func(b *Builder) { b.AddNode(1, 1, 0.9).AddEdge(1, 2, 100, 1, 0.9) }, ErrUnknownNode},
		{"duplicate edge", func(b *Builder) {
			b.AddNode(1, 1, 0.9).AddNode(2, 1, 0.9).AddEdge(1, 2, 100, 1, 0.9).AddEdge(2, 1, 100, 1, 0.9)
		}, ErrDuplicateEdge},
		{"zero bandwidth", func(b *Builder) { b.AddNode(1, 1, 0.9).AddNode(2, 1, 0.9).AddEdge(1, 2, 0, 1, 0.9) }, ErrAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.build(b)
			_, err := b.Build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestIsValidPath tests path validation against the topology
func TestIsValidPath(t *testing.T) {
	net := ring(t, 6)

	tests := []struct {
		name string
		path Path
		want bool
	}{
		{"single node", Path{2}, true},
		{"arc", Path{0, 1, 2, 3}, true},
		{"other arc", Path{0, 5, 4, 3}, true},
		{"empty", Path{}, false},
		{"non adjacent", Path{0, 2}, false},
		{"repeated node", Path{0, 1, 0}, false},
		{"unknown node", Path{0, 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := net.IsValidPath(tt.path); got != tt.want {
				t.Errorf("IsValidPath(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestPathHelpers tests Source, Target and Hops
func TestPathHelpers(t *testing.T) {
	p := Path{4, 7, 9}
	if p.Source() != 4 || p.Target() != 9 || p.Hops() != 2 {
		t.Errorf("Unexpected helpers for %v: %d %d %d", p, p.Source(), p.Target(), p.Hops())
	}
	if (Path{}).Hops() != 0 {
		t.Error("Expected 0 hops for an empty path")
	}
}
