// Package cluster groups files into maturity clusters with a seeded k-means.
package cluster

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/types"
)

type vector = [types.FeatureDimensions]float64

// Sample is one file's features
type Sample struct {
	ID       string
	Features types.FeatureVector
}

// Options mirrors config.Clustering
type Options struct {
	K             int
	Seed          int64
	MaxIterations int
	Epsilon       float64
	Normalization string
}

// OptionsFrom copies the clustering section of a Config
func OptionsFrom(c config.Clustering) Options {
	return Options{
		K:             c.K,
		Seed:          c.Seed,
		MaxIterations: c.MaxIterations,
		Epsilon:       c.Epsilon,
		Normalization: c.Normalization,
	}
}

// Cluster is one group after convergence. Centroid and averages are in raw
// feature units, not the normalized space k-means ran in.
type Cluster struct {
	ID            int                `json:"id"`
	Label         string             `json:"label"`
	MemberIDs     []string           `json:"memberIds"`
	Centroid      map[string]float64 `json:"centroid"`
	Size          int                `json:"size"`
	AvgComplexity float64            `json:"avgComplexity"`
	AvgMaturity   float64            `json:"avgMaturity"`
}

// Result of a clustering run
type Result struct {
	Clusters    []Cluster
	Assignments map[string]int
	EffectiveK  int
	Iterations  int
	Converged   bool
}

// EffectiveK applies the small-sample rule: when there are fewer samples
// than k, use max(1, n-1). Zero samples give zero.
func EffectiveK(k, n int) int {
	if n == 0 {
		return 0
	}
	if k < 1 {
		k = 1
	}
	if n < k {
		return max(1, n-1)
	}
	return k
}

// KMeans clusters samples deterministically for a given seed. Samples are
// processed in ID order, so input order does not matter.
func KMeans(samples []Sample, opts Options) Result {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	k := EffectiveK(opts.K, len(sorted))
	res := Result{EffectiveK: k, Assignments: make(map[string]int, len(sorted))}
	if k == 0 {
		return res
	}

	raw := make([]vector, len(sorted))
	for i, s := range sorted {
		raw[i] = s.Features.Values()
	}
	points := Normalize(raw, opts.Normalization)

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15))
	centroids := seedCentroids(points, k, rng)
	assign := make([]int, len(points))

	maxIter := max(1, opts.MaxIterations)
	for iter := 1; iter <= maxIter; iter++ {
		res.Iterations = iter
		for i, p := range points {
			assign[i] = nearest(p, centroids)
		}
		next := updateCentroids(points, assign, centroids)
		shift := 0.0
		for c := range centroids {
			shift = max(shift, distance(centroids[c], next[c]))
		}
		centroids = next
		if shift < opts.Epsilon {
			res.Converged = true
			break
		}
	}
	for i, p := range points {
		assign[i] = nearest(p, centroids)
	}

	res.Clusters = summarize(sorted, assign, k)
	for _, c := range res.Clusters {
		for _, id := range c.MemberIDs {
			res.Assignments[id] = c.ID
		}
	}
	return res
}

// Normalize rescales each dimension independently. Constant dimensions map to 0.
func Normalize(raw []vector, method string) []vector {
	out := make([]vector, len(raw))
	if len(raw) == 0 {
		return out
	}
	for d := 0; d < types.FeatureDimensions; d++ {
		if method == config.NormalizationZScore {
			col := make([]float64, len(raw))
			for i, v := range raw {
				col[i] = v[d]
			}
			mean, std := stat.PopMeanStdDev(col, nil)
			for i, v := range raw {
				if std > 0 {
					out[i][d] = (v[d] - mean) / std
				}
			}
			continue
		}
		lo, hi := raw[0][d], raw[0][d]
		for _, v := range raw[1:] {
			lo = min(lo, v[d])
			hi = max(hi, v[d])
		}
		for i, v := range raw {
			if hi > lo {
				out[i][d] = (v[d] - lo) / (hi - lo)
			}
		}
	}
	return out
}

// seedCentroids is k-means++: the first centroid is uniform, the rest are
// drawn with probability proportional to squared distance from the nearest
// chosen centroid
func seedCentroids(points []vector, k int, rng *rand.Rand) []vector {
	centroids := make([]vector, 0, k)
	centroids = append(centroids, points[rng.IntN(len(points))])
	d2 := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			best := math.Inf(1)
			for _, c := range centroids {
				best = min(best, sqDistance(p, c))
			}
			d2[i] = best
			total += best
		}
		if total == 0 {
			centroids = append(centroids, points[rng.IntN(len(points))])
			continue
		}
		target := rng.Float64() * total
		pick := len(points) - 1
		for i, w := range d2 {
			target -= w
			if target < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, points[pick])
	}
	return centroids
}

// nearest returns the closest centroid, lowest index on ties
func nearest(p vector, centroids []vector) int {
	best, bestD := 0, math.Inf(1)
	for c, cv := range centroids {
		if d := sqDistance(p, cv); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// updateCentroids moves each centroid to its members' mean; an empty cluster keeps its centroid
func updateCentroids(points []vector, assign []int, prev []vector) []vector {
	sums := make([]vector, len(prev))
	counts := make([]int, len(prev))
	for i, p := range points {
		c := assign[i]
		counts[c]++
		for d := range p {
			sums[c][d] += p[d]
		}
	}
	next := make([]vector, len(prev))
	for c := range prev {
		if counts[c] == 0 {
			next[c] = prev[c]
			continue
		}
		for d := range sums[c] {
			next[c][d] = sums[c][d] / float64(counts[c])
		}
	}
	return next
}

func sqDistance(a, b vector) float64 {
	s := 0.0
	for d := range a {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return s
}

func distance(a, b vector) float64 {
	return math.Sqrt(sqDistance(a, b))
}

// summarize groups members, drops empty clusters and renumbers so cluster 0
// holds the smallest member path. samples must be sorted by ID.
func summarize(samples []Sample, assign []int, k int) []Cluster {
	order := make([]int, 0, k)
	members := make(map[int][]int, k)
	for i, c := range assign {
		if _, seen := members[c]; !seen {
			order = append(order, c)
		}
		members[c] = append(members[c], i)
	}

	clusters := make([]Cluster, 0, len(order))
	for newID, oldID := range order {
		idx := members[oldID]
		var sum vector
		maturity := 0.0
		ids := make([]string, len(idx))
		for j, i := range idx {
			ids[j] = samples[i].ID
			v := samples[i].Features.Values()
			for d := range v {
				sum[d] += v[d]
			}
			maturity += samples[i].Features.Maturity()
		}
		n := float64(len(idx))
		centroid := make(map[string]float64, types.FeatureDimensions)
		for d, name := range types.FeatureNames {
			centroid[name] = sum[d] / n
		}
		c := Cluster{
			ID:            newID,
			MemberIDs:     ids,
			Centroid:      centroid,
			Size:          len(idx),
			AvgComplexity: centroid["complexityScore"],
			AvgMaturity:   maturity / n,
		}
		c.Label = Label(c.AvgComplexity, c.AvgMaturity, centroid["linesOfCode"])
		clusters = append(clusters, c)
	}
	return clusters
}
