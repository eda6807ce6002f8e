package routing

import (
	"container/heap"

	"github.com/dd0wney/qosroute/pkg/network"
	"github.com/dd0wney/qosroute/pkg/qos"
)

// DijkstraRouter is the deterministic baseline: Dijkstra's algorithm over
// qos.EdgeCost. It is exact for that per-edge objective.
type DijkstraRouter struct{}

// NewDijkstra creates the deterministic router.
func NewDijkstra() *DijkstraRouter { return &DijkstraRouter{} }

func (*DijkstraRouter) Algorithm() Algorithm { return AlgorithmDijkstra }

// Route returns the minimum total edge-cost path from source to target.
func (*DijkstraRouter) Route(net *network.Network, source, target network.NodeID, w qos.Weights) (network.Path, bool) {
	if path, ok, done := trivial(net, source, target); done {
		return path, ok
	}
	return WeightedShortestPath(net, source, target, func(u, v network.NodeID) float64 {
		return qos.EdgeCost(net, u, v, w)
	})
}

// WeightedShortestPath runs Dijkstra from startID to endID with the given
// non-negative edge weight, stopping as soon as endID is settled.
func WeightedShortestPath(net *network.Network, startID, endID network.NodeID, weight func(u, v network.NodeID) float64) (network.Path, bool) {
	distances := map[network.NodeID]float64{startID: 0}
	parent := map[network.NodeID]network.NodeID{startID: startID}
	settled := make(map[network.NodeID]bool)

	pq := &priorityQueue{}
	heap.Push(pq, &pqItem{nodeID: startID, distance: 0})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if settled[current.nodeID] {
			continue
		}
		settled[current.nodeID] = true

		if current.nodeID == endID {
			return reconstructPath(parent, startID, endID), true
		}

		for _, neighborID := range net.Neighbors(current.nodeID) {
			if settled[neighborID] {
				continue
			}
			newDist := current.distance + weight(current.nodeID, neighborID)
			if oldDist, seen := distances[neighborID]; !seen || newDist < oldDist {
				distances[neighborID] = newDist
				parent[neighborID] = current.nodeID
				heap.Push(pq, &pqItem{nodeID: neighborID, distance: newDist})
			}
		}
	}

	return nil, false
}

func reconstructPath(parent map[network.NodeID]network.NodeID, startID, endID network.NodeID) network.Path {
	path := make(network.Path, 0)
	node := endID
	for node != startID {
		path = append(path, node)
		node = parent[node]
	}
	path = append(path, startID)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	nodeID   network.NodeID
	distance float64
	seq      int
}

// priorityQueue is a min-heap on distance; equal distances pop in push order
// so results do not depend on heap internals.
type priorityQueue struct {
	items []*pqItem
	next  int
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	if pq.items[i].distance != pq.items[j].distance {
		return pq.items[i].distance < pq.items[j].distance
	}
	return pq.items[i].seq < pq.items[j].seq
}

func (pq *priorityQueue) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.seq = pq.next
	pq.next++
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	pq.items = old[:n-1]
	return item
}
