// Package graph holds the file dependency graph as an integer-indexed arena
// plus the centrality and structure metrics computed over it.
package graph

import (
	"sort"
)

// Graph is an immutable directed graph. Node i is Paths()[i]; paths are sorted,
// so building from the same inputs always yields the same indices.
type Graph struct {
	paths []string
	index map[string]int
	out   [][]int
	in    [][]int
	edges int
}

// Builder accumulates nodes and edges in any order
type Builder struct {
	nodes map[string]struct{}
	edges map[[2]string]struct{}
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]struct{}),
		edges: make(map[[2]string]struct{}),
	}
}

// AddNode registers a file. Isolated files are kept as nodes.
func (b *Builder) AddNode(path string) {
	b.nodes[path] = struct{}{}
}

// AddEdge records from -> to, adding both nodes. Self-loops are rejected and
// duplicate edges collapse. Reports whether the edge is new.
func (b *Builder) AddEdge(from, to string) bool {
	if from == to {
		return false
	}
	b.AddNode(from)
	b.AddNode(to)
	key := [2]string{from, to}
	if _, ok := b.edges[key]; ok {
		return false
	}
	b.edges[key] = struct{}{}
	return true
}

// Build freezes the builder into a Graph
func (b *Builder) Build() *Graph {
	paths := make([]string, 0, len(b.nodes))
	for p := range b.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	g := &Graph{
		paths: paths,
		index: make(map[string]int, len(paths)),
		out:   make([][]int, len(paths)),
		in:    make([][]int, len(paths)),
		edges: len(b.edges),
	}
	for i, p := range paths {
		g.index[p] = i
	}
	for e := range b.edges {
		f, t := g.index[e[0]], g.index[e[1]]
		g.out[f] = append(g.out[f], t)
		g.in[t] = append(g.in[t], f)
	}
	for i := range paths {
		sort.Ints(g.out[i])
		sort.Ints(g.in[i])
	}
	return g
}

// NodeCount returns the number of files in the graph
func (g *Graph) NodeCount() int { return len(g.paths) }

// EdgeCount returns the number of distinct dependency edges
func (g *Graph) EdgeCount() int { return g.edges }

// Paths returns node paths in index order. Callers must not modify the slice.
func (g *Graph) Paths() []string { return g.paths }

// Path returns the path of node i
func (g *Graph) Path(i int) string { return g.paths[i] }

// Index returns the node index for path
func (g *Graph) Index(path string) (int, bool) {
	i, ok := g.index[path]
	return i, ok
}

// Successors returns the sorted targets of node i
func (g *Graph) Successors(i int) []int { return g.out[i] }

func (g *Graph) InDegree(i int) int  { return len(g.in[i]) }
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// Isolated reports whether node i has no edges at all
func (g *Graph) Isolated(i int) bool {
	return len(g.in[i]) == 0 && len(g.out[i]) == 0
}

// ConnectedCount returns the number of nodes with at least one edge
func (g *Graph) ConnectedCount() int {
	n := 0
	for i := range g.paths {
		if !g.Isolated(i) {
			n++
		}
	}
	return n
}

// Density is E / (N * (N-1)); 0 when N < 2
func (g *Graph) Density() float64 {
	n := len(g.paths)
	if n < 2 {
		return 0
	}
	return float64(g.edges) / float64(n*(n-1))
}
