package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario builds A->B, A->C, B->D with E isolated
func scenario(withIsolated bool) *Graph {
	b := NewBuilder()
	b.AddEdge("A", "B")
	b.AddEdge("A", "C")
	b.AddEdge("B", "D")
	if withIsolated {
		b.AddNode("E")
	}
	return b.Build()
}

func TestBuilderSortsAndDedups(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.AddEdge("z.ts", "a.ts"))
	assert.False(t, b.AddEdge("z.ts", "a.ts"), "duplicate edge")
	assert.False(t, b.AddEdge("m.ts", "m.ts"), "self loop")
	b.AddNode("m.ts")
	g := b.Build()

	assert.Equal(t, []string{"a.ts", "m.ts", "z.ts"}, g.Paths())
	assert.Equal(t, 1, g.EdgeCount())
	z, ok := g.Index("z.ts")
	require.True(t, ok)
	assert.Equal(t, []int{0}, g.Successors(z))
	assert.Equal(t, 1, g.InDegree(0))
	assert.Equal(t, "z.ts", g.Path(z))
	assert.True(t, g.Isolated(1))
	assert.Equal(t, 2, g.ConnectedCount())
}

func TestBuildIsIdempotent(t *testing.T) {
	first := scenario(true)
	b := NewBuilder()
	b.AddNode("E")
	b.AddEdge("B", "D")
	b.AddEdge("A", "C")
	b.AddEdge("A", "B")
	b.AddEdge("A", "B")
	second := b.Build()

	assert.Equal(t, first.Paths(), second.Paths())
	for i := range first.Paths() {
		assert.Equal(t, first.Successors(i), second.Successors(i))
		assert.Equal(t, first.InDegree(i), second.InDegree(i))
	}
}

func TestDensity(t *testing.T) {
	assert.Zero(t, NewBuilder().Build().Density())
	g := scenario(true)
	assert.InDelta(t, 3.0/20.0, g.Density(), 1e-12)
}

func TestUnknownPath(t *testing.T) {
	_, ok := scenario(false).Index("missing")
	assert.False(t, ok)
}
