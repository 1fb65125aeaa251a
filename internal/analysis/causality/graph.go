package causality

import (
	"strings"
	"time"
)

// Node is one cluster in the causal graph
type Node struct {
	Index    int      `json:"index"`
	Category string   `json:"category"`
	Cluster  *Cluster `json:"cluster"`
}

// Edge points from a cause node to an effect node
type Edge struct {
	Target   int     `json:"target"`
	Strength float64 `json:"strength"`
	Details  Details `json:"details"`
}

// GraphMetadata summarises a graph build
type GraphMetadata struct {
	TotalNodes       int   `json:"totalNodes"`
	TotalEdges       int   `json:"totalEdges"`
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// Graph is an adjacency list over cluster indexes. Every node has an
// entry in Edges, possibly empty.
type Graph struct {
	Nodes    []Node         `json:"nodes"`
	Edges    map[int][]Edge `json:"edges"`
	Metadata GraphMetadata  `json:"metadata"`
}

// ChainStep is one node reached while tracing a chain
type ChainStep struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Depth    int    `json:"depth"`
	Path     []int  `json:"path"`
}

// BuildCausalGraph verifies all pairs and builds the adjacency list
func (e *Engine) BuildCausalGraph(clusters []Cluster) *Graph {
	graph := &Graph{
		Nodes: []Node{},
		Edges: make(map[int][]Edge),
	}
	if len(clusters) == 0 {
		return graph
	}

	start := time.Now()

	for i := range clusters {
		graph.Nodes = append(graph.Nodes, Node{
			Index:    i,
			Category: clusters[i].ResolvedCategory(),
			Cluster:  &clusters[i],
		})
		graph.Edges[i] = []Edge{}
	}
	graph.Metadata.TotalNodes = len(clusters)

	links := e.FindAllCausalLinks(clusters)
	for _, link := range links {
		graph.Edges[link.CauseIndex] = append(graph.Edges[link.CauseIndex], Edge{
			Target:   link.EffectIndex,
			Strength: link.Verification.Strength,
			Details:  link.Verification.Details,
		})
	}

	graph.Metadata.TotalEdges = len(links)
	graph.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return graph
}

// RootCauses returns indexes of nodes with no incoming edge
func (g *Graph) RootCauses() []int {
	hasIncoming := make(map[int]bool)
	for _, edges := range g.Edges {
		for _, edge := range edges {
			hasIncoming[edge.Target] = true
		}
	}

	roots := []int{}
	for _, node := range g.Nodes {
		if !hasIncoming[node.Index] {
			roots = append(roots, node.Index)
		}
	}
	return roots
}

// TerminalEffects returns indexes of nodes with no outgoing edge
func (g *Graph) TerminalEffects() []int {
	terminals := []int{}
	for _, node := range g.Nodes {
		if len(g.Edges[node.Index]) == 0 {
			terminals = append(terminals, node.Index)
		}
	}
	return terminals
}

// TraceCausalChain walks the graph breadth-first from root. A node reached by
// more than one path keeps the depth and path it was first discovered with.
func (g *Graph) TraceCausalChain(root int) []ChainStep {
	if root < 0 || root >= len(g.Nodes) {
		return nil
	}

	type item struct {
		index int
		depth int
		path  []int
	}

	var chain []ChainStep
	visited := make(map[int]bool)
	queue := []item{{index: root, depth: 0, path: []int{root}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if visited[cur.index] {
			continue
		}
		visited[cur.index] = true

		chain = append(chain, ChainStep{
			Index:    cur.index,
			Category: g.Nodes[cur.index].Category,
			Depth:    cur.depth,
			Path:     cur.path,
		})

		for _, edge := range g.Edges[cur.index] {
			if visited[edge.Target] {
				continue
			}
			path := make([]int, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			queue = append(queue, item{
				index: edge.Target,
				depth: cur.depth + 1,
				path:  append(path, edge.Target),
			})
		}
	}

	return chain
}

// DescribeChain renders clusters in causal order as "A → B → C"
func DescribeChain(clusters []Cluster) string {
	if len(clusters) == 0 {
		return "No causal chain"
	}

	categories := make([]string, len(clusters))
	for i := range clusters {
		categories[i] = clusters[i].ResolvedCategory()
	}
	return strings.Join(categories, " → ")
}
