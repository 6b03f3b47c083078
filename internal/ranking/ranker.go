// Package ranking turns centrality and complexity into composite scores and risk tiers.
package ranking

import (
	"sort"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/types"
)

// Input is one file's signals as seen by the ranker
type Input struct {
	Path          string
	Degree        float64
	Betweenness   float64
	RawComplexity int
	InDegree      int
	OutDegree     int
}

// Ranker scores files with fixed weights and cutpoints
type Ranker struct {
	weights config.Scoring
}

// NewRanker copies the scoring configuration
func NewRanker(scoring config.Scoring) *Ranker {
	return &Ranker{weights: scoring}
}

// NormalizedComplexity is min(1, raw / divisor)
func (r *Ranker) NormalizedComplexity(raw int) float64 {
	if raw <= 0 || r.weights.ComplexityDivisor <= 0 {
		return 0
	}
	return min(1, float64(raw)/r.weights.ComplexityDivisor)
}

// Score combines the three signals. Degree is clamped to 1 first because
// mutual imports can push it past 1 on a directed graph.
func (r *Ranker) Score(degree, betweenness, normalizedComplexity float64) float64 {
	s := clamp01(degree)*r.weights.DegreeWeight +
		clamp01(betweenness)*r.weights.BetweennessWeight +
		clamp01(normalizedComplexity)*r.weights.ComplexityWeight
	return clamp01(s)
}

// Tier maps a score to a tier. Both cutpoints are exclusive.
func (r *Ranker) Tier(score float64) types.RiskTier {
	switch {
	case score > r.weights.HighThreshold:
		return types.RiskHigh
	case score > r.weights.MediumThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// Record scores one input
func (r *Ranker) Record(in Input) types.CriticalityRecord {
	nc := r.NormalizedComplexity(in.RawComplexity)
	score := r.Score(in.Degree, in.Betweenness, nc)
	return types.CriticalityRecord{
		FileID:                in.Path,
		DegreeCentrality:      in.Degree,
		BetweennessCentrality: in.Betweenness,
		Complexity:            in.RawComplexity,
		NormalizedComplexity:  nc,
		CompositeScore:        score,
		RiskTier:              r.Tier(score),
		InDegree:              in.InDegree,
		OutDegree:             in.OutDegree,
	}
}

// Rank scores every input and returns records sorted by score descending,
// ties broken by path ascending
func (r *Ranker) Rank(inputs []Input) []types.CriticalityRecord {
	records := make([]types.CriticalityRecord, len(inputs))
	for i, in := range inputs {
		records[i] = r.Record(in)
	}
	SortRecords(records)
	return records
}

// SortRecords orders by composite score desc, then path asc
func SortRecords(records []types.CriticalityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		return a.FileID < b.FileID
	})
}

// TierCounts tallies every tier, including empty ones
func TierCounts(records []types.CriticalityRecord) map[types.RiskTier]int {
	counts := make(map[types.RiskTier]int, len(types.RiskTiers))
	for _, t := range types.RiskTiers {
		counts[t] = 0
	}
	for _, rec := range records {
		counts[rec.RiskTier]++
	}
	return counts
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
