package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/crit/internal/cluster"
	"github.com/standardbeagle/crit/internal/graph"
	"github.com/standardbeagle/crit/internal/types"
)

func files() []types.SourceFile {
	return []types.SourceFile{
		{Path: "b.tsx", Digest: 2, Features: types.FeatureVector{LinesOfCode: 600, ComplexityScore: 9, PerformanceScore: 40, ReusabilityScore: 70}},
		{Path: "a.tsx", Digest: 1, Features: types.FeatureVector{LinesOfCode: 10, PerformanceScore: 50, ReusabilityScore: 50}},
	}
}

func records() []types.CriticalityRecord {
	return []types.CriticalityRecord{
		{FileID: "a.tsx", CompositeScore: 0.2, RiskTier: types.RiskLow},
		{FileID: "b.tsx", CompositeScore: 0.8, RiskTier: types.RiskHigh},
	}
}

func TestComposeTopNAndTierCounts(t *testing.T) {
	r := Compose(Input{Files: files(), Records: records(), TopN: 1})

	require.Len(t, r.CriticalComponents, 1)
	assert.Equal(t, "b.tsx", r.CriticalComponents[0].FileID)
	assert.Equal(t, map[types.RiskTier]int{types.RiskLow: 1, types.RiskMedium: 0, types.RiskHigh: 1}, r.TierCounts)
	assert.Equal(t, 2, r.FilesScanned)
	assert.Equal(t, 100.0, r.CoveragePercentage)

	all := Compose(Input{Files: files(), Records: records()})
	assert.Len(t, all.CriticalComponents, 2, "TopN 0 keeps every record")
}

func TestComposeOrphansAndSkipped(t *testing.T) {
	r := Compose(Input{
		Files: files(),
		Orphans: []Orphan{
			{From: "b.tsx", Specifier: "./x"},
			{From: "a.tsx", Specifier: "./z"},
			{From: "a.tsx", Specifier: "./y", Suggestion: "y.tsx"},
		},
		Skipped: []Skipped{{Path: "z.bin", Reason: "encoding"}, {Path: "c.ts", Reason: "permission"}},
	})
	assert.Equal(t, 3, r.OrphanReferenceCount)
	assert.Equal(t, "./y", r.Orphans[0].Specifier)
	assert.Equal(t, "b.tsx", r.Orphans[2].From)
	assert.Equal(t, 2, r.FilesSkipped)
	assert.Equal(t, "c.ts", r.Skipped[0].Path)
	assert.InDelta(t, 50.0, r.CoveragePercentage, 1e-12)
}

func TestComposeOpportunitiesFollowRank(t *testing.T) {
	r := Compose(Input{Files: files(), Records: records()})
	require.Len(t, r.Opportunities, 2, "one opportunity per file")
	assert.Equal(t, "b.tsx", r.Opportunities[0].FileID)
	assert.Equal(t, "a.tsx", r.Opportunities[len(r.Opportunities)-1].FileID)
}

func TestComposeGraphSummary(t *testing.T) {
	b := graph.NewBuilder()
	b.AddEdge("a.tsx", "b.tsx")
	b.AddEdge("b.tsx", "a.tsx")
	b.AddNode("c.tsx")
	r := Compose(Input{Graph: b.Build()})

	assert.Equal(t, 3, r.Graph.NodeCount)
	assert.Equal(t, 2, r.Graph.EdgeCount)
	assert.Equal(t, [][]string{{"a.tsx", "b.tsx"}}, r.Graph.Cycles)
	assert.Equal(t, []string{"c.tsx"}, r.Graph.Unreferenced)
}

func TestCoverage(t *testing.T) {
	assert.Equal(t, 100.0, Coverage(0, 0))
	assert.Equal(t, 0.0, Coverage(0, 3))
	assert.InDelta(t, 75.0, Coverage(3, 1), 1e-12)
}

func TestInputDigestOrderIndependent(t *testing.T) {
	f := files()
	reversed := []types.SourceFile{f[1], f[0]}
	assert.Equal(t, InputDigest(f), InputDigest(reversed))
	assert.Len(t, InputDigest(f), 16)

	f[0].Digest = 99
	assert.NotEqual(t, InputDigest(f), InputDigest(reversed))
}

func TestEncodeEmptyListsAndKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Compose(Input{})))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"criticalComponents", "clusters", "orphans", "skipped", "opportunities", "diagnostics", "featureImportance"} {
		assert.Equal(t, []any{}, decoded[key], key)
	}
	assert.NotContains(t, buf.String(), "null")
	assert.Contains(t, buf.String(), `"filesScanned": 0`)
}

func TestEncodeDeterministic(t *testing.T) {
	in := Input{
		Files:      files(),
		Records:    records(),
		Clustering: cluster.Result{EffectiveK: 1, Clusters: []cluster.Cluster{{ID: 0, MemberIDs: []string{"a.tsx", "b.tsx"}, Centroid: map[string]float64{"linesOfCode": 305, "complexityScore": 4.5}}}},
	}
	var first, second bytes.Buffer
	require.NoError(t, Encode(&first, Compose(in)))
	require.NoError(t, Encode(&second, Compose(in)))
	assert.Equal(t, first.Bytes(), second.Bytes())
}
