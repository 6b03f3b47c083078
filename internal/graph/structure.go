package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// FanIn is a node ranked by how many files import it
type FanIn struct {
	Path     string `json:"path"`
	InDegree int    `json:"inDegree"`
}

// toGonum mirrors the arena into a gonum directed graph; node IDs are arena indices
func toGonum(g *Graph) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.paths {
		dg.AddNode(simple.Node(int64(i)))
	}
	for f := range g.paths {
		for _, t := range g.Successors(f) {
			dg.SetEdge(simple.Edge{F: simple.Node(int64(f)), T: simple.Node(int64(t))})
		}
	}
	return dg
}

// Cycles returns every strongly connected component with two or more files.
// Members are sorted by path and cycles by their first member.
func Cycles(g *Graph) [][]string {
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(toGonum(g)) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, len(scc))
		for i, node := range scc {
			members[i] = g.Path(int(node.ID()))
		}
		sort.Strings(members)
		cycles = append(cycles, members)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// MostImported returns up to limit nodes with in-degree > 0, highest first,
// ties by path
func MostImported(g *Graph, limit int) []FanIn {
	var out []FanIn
	for i, p := range g.paths {
		if d := g.InDegree(i); d > 0 {
			out = append(out, FanIn{Path: p, InDegree: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InDegree != out[j].InDegree {
			return out[i].InDegree > out[j].InDegree
		}
		return out[i].Path < out[j].Path
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Unreferenced returns files nothing imports, in path order. Entry points
// show up here too; the list is a hint, not a verdict.
func Unreferenced(g *Graph) []string {
	var out []string
	for i, p := range g.paths {
		if g.InDegree(i) == 0 {
			out = append(out, p)
		}
	}
	return out
}
