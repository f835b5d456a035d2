// internal/service/trace/graph.go

package trace

import (
	"math"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"misintel/internal/domain/trace"
)

func emptyNetwork() trace.NetworkAnalysis {
	return trace.NetworkAnalysis{
		Nodes: []trace.Node{},
		Edges: []trace.Edge{},
	}
}

// analyzeNetwork builds the influence graph for one propagation path and
// computes its metrics: one node per distinct account, one directed edge
// per consecutive hop pair weighted by elapsed hours, plus betweenness
// centrality, PageRank influence and graph density.
func analyzeNetwork(path []trace.Hop) trace.NetworkAnalysis {
	if len(path) == 0 {
		return emptyNetwork()
	}

	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))

	ids := make(map[string]int64)
	accounts := []string{}
	nodesByAccount := make(map[string]*trace.Node)

	for _, hop := range path {
		if _, ok := ids[hop.Account]; !ok {
			id := int64(len(accounts))
			ids[hop.Account] = id
			accounts = append(accounts, hop.Account)
			g.AddNode(simple.Node(id))
			nodesByAccount[hop.Account] = &trace.Node{
				Account:    hop.Account,
				Platform:   hop.Platform,
				Reach:      hop.Reach,
				Engagement: hop.Engagement,
			}
			continue
		}

		// Repeat appearance: keep the account's peak amplification
		node := nodesByAccount[hop.Account]
		if hop.Reach > node.Reach {
			node.Reach = hop.Reach
		}
		if hop.Engagement > node.Engagement {
			node.Engagement = hop.Engagement
		}
	}

	edges := []trace.Edge{}
	seen := make(map[[2]string]int)
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		if from.Account == to.Account {
			continue
		}

		elapsed := to.Timestamp.Sub(from.Timestamp).Hours()
		if elapsed < 0 {
			elapsed = 0
		}

		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(ids[from.Account]),
			T: simple.Node(ids[to.Account]),
			W: elapsed,
		})

		key := [2]string{from.Account, to.Account}
		if idx, ok := seen[key]; ok {
			edges[idx].ElapsedHours = elapsed
			continue
		}
		seen[key] = len(edges)
		edges = append(edges, trace.Edge{
			From:         from.Account,
			To:           to.Account,
			ElapsedHours: elapsed,
		})
	}

	rank := network.PageRank(g, 0.85, 1e-6)
	betweenness := network.Betweenness(g)

	nodes := make([]trace.Node, 0, len(accounts))
	for _, account := range accounts {
		node := *nodesByAccount[account]
		node.Influence = rank[ids[account]]
		node.Betweenness = betweenness[ids[account]]
		nodes = append(nodes, node)
	}

	nodeCount := len(nodes)

	density := 0.0
	if nodeCount > 1 {
		density = float64(len(edges)) / float64(nodeCount*(nodeCount-1))
	}

	return trace.NetworkAnalysis{
		Nodes:     nodes,
		Edges:     edges,
		NodeCount: nodeCount,
		EdgeCount: len(edges),
		Density:   density,
	}
}
