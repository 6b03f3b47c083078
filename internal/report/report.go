// Package report assembles the immutable analysis report and its JSON encoding.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/crit/internal/analysis"
	"github.com/standardbeagle/crit/internal/cluster"
	"github.com/standardbeagle/crit/internal/graph"
	"github.com/standardbeagle/crit/internal/ranking"
	"github.com/standardbeagle/crit/internal/types"
)

// Diagnostic kinds. None of these are failures.
const (
	DiagBudgetExceeded      = "budget_exceeded"
	DiagDegenerateGraph     = "degenerate_graph"
	DiagInsufficientSamples = "insufficient_samples"
	DiagDiscoveryIncomplete = "discovery_incomplete"
)

// MostImportedLimit bounds Graph.MostImported
const MostImportedLimit = 10

// Diagnostic is a non-fatal condition worth surfacing
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Orphan is one reference that resolved to no discovered file
type Orphan struct {
	From       string `json:"from"`
	Specifier  string `json:"specifier"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Skipped is one file that was discovered but not analyzed
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// GraphSummary describes the dependency graph as a whole
type GraphSummary struct {
	NodeCount    int           `json:"nodeCount"`
	EdgeCount    int           `json:"edgeCount"`
	Density      float64       `json:"density"`
	Cycles       [][]string    `json:"cycles"`
	MostImported []graph.FanIn `json:"mostImported"`
	Unreferenced []string      `json:"unreferenced"`
}

// Report is the single output contract of an analysis run
type Report struct {
	FilesScanned         int                       `json:"filesScanned"`
	FilesSkipped         int                       `json:"filesSkipped"`
	OrphanReferenceCount int                       `json:"orphanReferenceCount"`
	CoveragePercentage   float64                   `json:"coveragePercentage"`
	CriticalComponents   []types.CriticalityRecord `json:"criticalComponents"`
	TierCounts           map[types.RiskTier]int    `json:"tierCounts"`
	Clusters             []cluster.Cluster         `json:"clusters"`
	EffectiveK           int                       `json:"effectiveK"`
	Graph                GraphSummary              `json:"graph"`
	Orphans              []Orphan                  `json:"orphans"`
	Skipped              []Skipped                 `json:"skipped"`
	Opportunities        []analysis.Opportunity    `json:"opportunities"`
	FeatureImportance    []cluster.Importance      `json:"featureImportance"`
	Diagnostics          []Diagnostic              `json:"diagnostics"`
	InputDigest          string                    `json:"inputDigest"`
}

// Input is everything the composer merges. The composer sorts copies and
// never mutates the slices it is given.
type Input struct {
	Files       []types.SourceFile
	Records     []types.CriticalityRecord
	TopN        int
	Clustering  cluster.Result
	Importance  []cluster.Importance
	Graph       *graph.Graph
	Orphans     []Orphan
	Skipped     []Skipped
	Diagnostics []Diagnostic
}

// Compose merges ranked records, clusters and graph facts into a Report
func Compose(in Input) *Report {
	records := append([]types.CriticalityRecord(nil), in.Records...)
	ranking.SortRecords(records)

	r := &Report{
		FilesScanned:       len(in.Files),
		FilesSkipped:       len(in.Skipped),
		CoveragePercentage: Coverage(len(in.Files), len(in.Skipped)),
		TierCounts:         ranking.TierCounts(records),
		Clusters:           nonNil(in.Clustering.Clusters),
		EffectiveK:         in.Clustering.EffectiveK,
		FeatureImportance:  nonNil(in.Importance),
		InputDigest:        InputDigest(in.Files),
	}

	r.CriticalComponents = records
	if in.TopN > 0 && len(records) > in.TopN {
		r.CriticalComponents = records[:in.TopN]
	}
	r.CriticalComponents = nonNil(r.CriticalComponents)

	r.Orphans = append([]Orphan{}, in.Orphans...)
	sort.Slice(r.Orphans, func(i, j int) bool {
		if r.Orphans[i].From != r.Orphans[j].From {
			return r.Orphans[i].From < r.Orphans[j].From
		}
		return r.Orphans[i].Specifier < r.Orphans[j].Specifier
	})
	r.OrphanReferenceCount = len(r.Orphans)

	r.Skipped = append([]Skipped{}, in.Skipped...)
	sort.Slice(r.Skipped, func(i, j int) bool { return r.Skipped[i].Path < r.Skipped[j].Path })

	r.Diagnostics = append([]Diagnostic{}, in.Diagnostics...)
	sort.SliceStable(r.Diagnostics, func(i, j int) bool { return r.Diagnostics[i].Kind < r.Diagnostics[j].Kind })

	r.Opportunities = opportunitiesInRankOrder(records, in.Files)

	if in.Graph != nil {
		r.Graph = GraphSummary{
			NodeCount:    in.Graph.NodeCount(),
			EdgeCount:    in.Graph.EdgeCount(),
			Density:      in.Graph.Density(),
			Cycles:       nonNil(graph.Cycles(in.Graph)),
			MostImported: nonNil(graph.MostImported(in.Graph, MostImportedLimit)),
			Unreferenced: nonNil(graph.Unreferenced(in.Graph)),
		}
	} else {
		r.Graph = GraphSummary{Cycles: [][]string{}, MostImported: []graph.FanIn{}, Unreferenced: []string{}}
	}
	return r
}

// Coverage is 100 * scanned / (scanned + skipped), 100 when nothing was found
func Coverage(scanned, skipped int) float64 {
	if scanned+skipped == 0 {
		return 100
	}
	return 100 * float64(scanned) / float64(scanned+skipped)
}

// InputDigest hashes (path, content digest) pairs in path order so equal
// snapshots give equal digests regardless of extraction order
func InputDigest(files []types.SourceFile) string {
	keys := make([]int, len(files))
	for i := range keys {
		keys[i] = i
	}
	sort.Slice(keys, func(a, b int) bool { return files[keys[a]].Path < files[keys[b]].Path })

	h := xxhash.New()
	for _, i := range keys {
		fmt.Fprintf(h, "%s\x00%016x\n", files[i].Path, files[i].Digest)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Encode writes r as indented JSON. Map keys are sorted by encoding/json,
// so equal reports encode to equal bytes.
func Encode(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func opportunitiesInRankOrder(records []types.CriticalityRecord, files []types.SourceFile) []analysis.Opportunity {
	byPath := make(map[string]types.FeatureVector, len(files))
	for _, f := range files {
		byPath[f.Path] = f.Features
	}
	out := []analysis.Opportunity{}
	for _, rec := range records {
		fv, ok := byPath[rec.FileID]
		if !ok {
			continue
		}
		out = append(out, analysis.FindOpportunities(rec.FileID, fv)...)
	}
	return out
}

// nonNil keeps empty lists as [] rather than null in JSON
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
