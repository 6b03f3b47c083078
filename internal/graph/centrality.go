package graph

import (
	"context"

	"gonum.org/v1/gonum/graph/network"

	"github.com/standardbeagle/crit/internal/config"
)

// Centrality holds per-node metrics indexed like Graph.Paths
type Centrality struct {
	Degree      []float64
	Betweenness []float64
}

// population returns the N used in both normalizations. With
// NormalizeConnected, isolated nodes are left out so adding one does not
// shift anyone else's score.
func population(g *Graph, normalizeOver string) int {
	if normalizeOver == config.NormalizeAll {
		return g.NodeCount()
	}
	return g.ConnectedCount()
}

// Compute runs degree and betweenness centrality. A context that is already
// done returns ctx.Err().
func Compute(ctx context.Context, g *Graph, normalizeOver string) (Centrality, error) {
	betw, err := Betweenness(ctx, g, normalizeOver)
	if err != nil {
		return Centrality{}, err
	}
	return Centrality{
		Degree:      DegreeCentrality(g, normalizeOver),
		Betweenness: betw,
	}, nil
}

// DegreeCentrality is (in + out) / (N - 1), and 0 when N <= 1
func DegreeCentrality(g *Graph, normalizeOver string) []float64 {
	out := make([]float64, g.NodeCount())
	n := population(g, normalizeOver)
	if n <= 1 {
		return out
	}
	for i := range out {
		out[i] = float64(g.InDegree(i)+g.OutDegree(i)) / float64(n-1)
	}
	return out
}

// Betweenness is directed Brandes betweenness scaled by 1/((N-1)(N-2)).
// Equal-length shortest paths share credit proportionally. 0 when N <= 2.
func Betweenness(ctx context.Context, g *Graph, normalizeOver string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cb := make([]float64, g.NodeCount())
	n := population(g, normalizeOver)
	if n <= 2 || g.EdgeCount() == 0 {
		return cb, nil
	}

	// gonum only reports nodes with non-zero betweenness
	raw := network.Betweenness(toGonum(g))
	scale := 1 / float64((n-1)*(n-2))
	for i := range cb {
		cb[i] = raw[int64(i)] * scale
	}
	return cb, nil
}
