package network

import (
	"container/list"
)

// Component is one connected component, nodes listed in BFS discovery order.
type Component struct {
	ID    int
	Nodes []NodeID
	Size  int
}

// ConnectedComponents enumerates the components of net, starting a BFS from
// each not-yet-visited node in ascending ID order.
func ConnectedComponents(net *Network) []Component {
	return components(net.NodeIDs(), net.Neighbors)
}

// IsConnected reports whether net has at most one component.
func IsConnected(net *Network) bool {
	return len(ConnectedComponents(net)) <= 1
}

// LargestComponent returns the biggest component. Ties go to the component
// enumerated first. It returns an empty component for an empty network.
func LargestComponent(comps []Component) Component {
	var best Component
	for _, c := range comps {
		if c.Size > best.Size {
			best = c
		}
	}
	return best
}

func components(ids []NodeID, neighbors func(NodeID) []NodeID) []Component {
	visited := make(map[NodeID]bool, len(ids))
	comps := make([]Component, 0)
	componentID := 0

	for _, start := range ids {
		if visited[start] {
			continue
		}

		component := Component{ID: componentID, Nodes: make([]NodeID, 0)}

		queue := list.New()
		queue.PushBack(start)
		visited[start] = true

		for queue.Len() > 0 {
			id, ok := queue.Remove(queue.Front()).(NodeID)
			if !ok {
				continue
			}
			component.Nodes = append(component.Nodes, id)

			for _, next := range neighbors(id) {
				if !visited[next] {
					visited[next] = true
					queue.PushBack(next)
				}
			}
		}

		component.Size = len(component.Nodes)
		comps = append(comps, component)
		componentID++
	}

	return comps
}
