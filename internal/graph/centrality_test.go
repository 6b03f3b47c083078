package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/network"

	"github.com/standardbeagle/crit/internal/config"
)

func compute(t *testing.T, g *Graph, over string) Centrality {
	t.Helper()
	c, err := Compute(context.Background(), g, over)
	require.NoError(t, err)
	return c
}

func TestScenarioCentrality(t *testing.T) {
	g := scenario(true)
	c := compute(t, g, config.NormalizeConnected)

	idx := func(p string) int {
		i, ok := g.Index(p)
		require.True(t, ok)
		return i
	}

	e := idx("E")
	assert.Zero(t, c.Degree[e])
	assert.Zero(t, c.Betweenness[e])

	// A->B->D is the only path through B; 4 connected nodes give 1/(3*2)
	assert.InDelta(t, 1.0/6.0, c.Betweenness[idx("B")], 1e-12)
	assert.Zero(t, c.Betweenness[idx("A")])
	assert.Zero(t, c.Betweenness[idx("D")])

	assert.InDelta(t, 2.0/3.0, c.Degree[idx("A")], 1e-12)
	assert.InDelta(t, 2.0/3.0, c.Degree[idx("B")], 1e-12)
	assert.InDelta(t, 1.0/3.0, c.Degree[idx("C")], 1e-12)
}

func TestIsolatedNodeDoesNotShiftScores(t *testing.T) {
	without := scenario(false)
	with := scenario(true)
	a := compute(t, without, config.NormalizeConnected)
	b := compute(t, with, config.NormalizeConnected)

	for i, p := range without.Paths() {
		j, ok := with.Index(p)
		require.True(t, ok)
		assert.InDelta(t, a.Degree[i], b.Degree[j], 1e-12, p)
		assert.InDelta(t, a.Betweenness[i], b.Betweenness[j], 1e-12, p)
	}
}

func TestNormalizeOverAll(t *testing.T) {
	g := scenario(true)
	c := compute(t, g, config.NormalizeAll)
	a, _ := g.Index("A")
	b, _ := g.Index("B")
	assert.InDelta(t, 2.0/4.0, c.Degree[a], 1e-12)
	assert.InDelta(t, 1.0/12.0, c.Betweenness[b], 1e-12)
}

func TestDegenerateGraphs(t *testing.T) {
	empty := NewBuilder().Build()
	c := compute(t, empty, config.NormalizeAll)
	assert.Empty(t, c.Degree)

	b := NewBuilder()
	b.AddNode("solo.ts")
	c = compute(t, b.Build(), config.NormalizeAll)
	assert.Equal(t, []float64{0}, c.Degree)
	assert.Equal(t, []float64{0}, c.Betweenness)

	b = NewBuilder()
	b.AddNode("a.ts")
	b.AddNode("b.ts")
	b.AddNode("c.ts")
	c = compute(t, b.Build(), config.NormalizeConnected)
	assert.Equal(t, []float64{0, 0, 0}, c.Degree, "zero edges")
	assert.Equal(t, []float64{0, 0, 0}, c.Betweenness)
}

func TestBetweennessSplitsEqualPaths(t *testing.T) {
	// two equal shortest paths from s to t: s->a->t and s->b->t
	b := NewBuilder()
	b.AddEdge("s", "a")
	b.AddEdge("s", "b")
	b.AddEdge("a", "t")
	b.AddEdge("b", "t")
	g := b.Build()
	betw, err := Betweenness(context.Background(), g, config.NormalizeAll)
	require.NoError(t, err)

	// each middle node carries half of the s->t pair, scaled by 1/(3*2)
	ai, _ := g.Index("a")
	bi, _ := g.Index("b")
	assert.InDelta(t, 0.5/6, betw[ai], 1e-12)
	assert.InDelta(t, 0.5/6, betw[bi], 1e-12)
}

func TestBetweennessScalesGonumScores(t *testing.T) {
	b := NewBuilder()
	edges := [][2]string{
		{"app.tsx", "layout.tsx"}, {"app.tsx", "router.ts"}, {"layout.tsx", "nav.tsx"},
		{"layout.tsx", "footer.tsx"}, {"nav.tsx", "button.tsx"}, {"footer.tsx", "button.tsx"},
		{"router.ts", "page.tsx"}, {"page.tsx", "button.tsx"}, {"page.tsx", "api.ts"},
		{"api.ts", "router.ts"}, {"button.tsx", "theme.ts"},
	}
	for _, e := range edges {
		b.AddEdge(e[0], e[1])
	}
	b.AddNode("orphan.ts")
	g := b.Build()

	raw := network.Betweenness(toGonum(g))
	for _, over := range []string{config.NormalizeConnected, config.NormalizeAll} {
		n := float64(g.ConnectedCount())
		if over == config.NormalizeAll {
			n = float64(g.NodeCount())
		}
		betw, err := Betweenness(context.Background(), g, over)
		require.NoError(t, err)
		require.Len(t, betw, g.NodeCount())
		for i, p := range g.Paths() {
			assert.InDelta(t, raw[int64(i)]/((n-1)*(n-2)), betw[i], 1e-12, over+" "+p)
		}
	}
	orphan, _ := g.Index("orphan.ts")
	betw, err := Betweenness(context.Background(), g, config.NormalizeAll)
	require.NoError(t, err)
	assert.Zero(t, betw[orphan])
}

func TestBetweennessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, scenario(true), config.NormalizeConnected)
	assert.ErrorIs(t, err, context.Canceled)
}
