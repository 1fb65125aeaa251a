package service

import (
	"context"
	"fmt"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/causality"
	"github.com/neko-san1432/citizenlink-insights-go/internal/metrics"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
)

// CausalChain is the traversal from one root cause
type CausalChain struct {
	Root        int                   `json:"root"`
	Steps       []causality.ChainStep `json:"steps"`
	Description string                `json:"description"`
}

// CausalAnalysis is a causal graph with its roots, terminals and chains
type CausalAnalysis struct {
	Graph           *causality.Graph `json:"graph"`
	RootCauses      []int            `json:"rootCauses"`
	TerminalEffects []int            `json:"terminalEffects"`
	Chains          []CausalChain    `json:"chains"`
}

// CausalityService runs the causality engine over caller-supplied or
// persisted clusters
type CausalityService struct {
	clusters *repository.ClusterRepository
	engine   *causality.Engine
}

// NewCausalityService creates a new causality service
func NewCausalityService(clusters *repository.ClusterRepository) *CausalityService {
	return &CausalityService{
		clusters: clusters,
		engine:   causality.NewEngine(nil),
	}
}

// Verify checks a single cause/effect pair
func (s *CausalityService) Verify(cause, effect *causality.Cluster) causality.Result {
	return s.engine.VerifyCausality(cause, effect)
}

// Analyze builds the graph over clusters and traces a chain from every root
func (s *CausalityService) Analyze(clusters []causality.Cluster) *CausalAnalysis {
	graph := s.engine.BuildCausalGraph(clusters)
	metrics.CausalLinksFound.Add(float64(graph.Metadata.TotalEdges))

	out := &CausalAnalysis{
		Graph:           graph,
		RootCauses:      graph.RootCauses(),
		TerminalEffects: graph.TerminalEffects(),
		Chains:          []CausalChain{},
	}

	for _, root := range out.RootCauses {
		steps := graph.TraceCausalChain(root)
		if len(steps) < 2 {
			continue
		}
		out.Chains = append(out.Chains, CausalChain{
			Root:        root,
			Steps:       steps,
			Description: describeDeepest(clusters, steps),
		})
	}
	return out
}

// describeDeepest renders the path to the deepest step of a chain
func describeDeepest(clusters []causality.Cluster, steps []causality.ChainStep) string {
	deepest := steps[0]
	for _, step := range steps[1:] {
		if step.Depth > deepest.Depth {
			deepest = step
		}
	}

	path := make([]causality.Cluster, len(deepest.Path))
	for i, idx := range deepest.Path {
		path[i] = clusters[idx]
	}
	return causality.DescribeChain(path)
}

// AnalyzeActiveClusters runs Analyze over the persisted active generation
func (s *CausalityService) AnalyzeActiveClusters(ctx context.Context) (*CausalAnalysis, error) {
	active, err := s.clusters.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active clusters: %w", err)
	}

	clusters := make([]causality.Cluster, len(active))
	for i := range active {
		clusters[i] = causality.FromComplaintCluster(active[i])
	}
	return s.Analyze(clusters), nil
}

// Rules exposes the engine's causal tables
func (s *CausalityService) Rules() *causality.Rules {
	return s.engine.Rules()
}
