package tasks

import (
	"fmt"
	"strings"
)

// CycleError reports prerequisites that depend on each other.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("tasks: prerequisite cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// graph orders tasks so every prerequisite runs before its dependents.
// An edge from a to b means a must run before b.
type graph struct {
	adjacency map[string][]string
	nodes     []string
	nodeSet   map[string]bool
}

func newGraph() *graph {
	return &graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

func (g *graph) addNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

func (g *graph) addEdge(from, to string) {
	g.addNode(from)
	g.addNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// sort returns a deterministic execution order using Kahn's algorithm.
// Nodes on the same level keep their insertion order.
func (g *graph) sort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)
		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, node)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}
	return result, nil
}
