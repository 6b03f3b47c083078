package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/standardbeagle/crit/internal/types"
)

// Importance is how strongly one feature tracks the maturity proxy
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureImportance returns |Pearson r| between each feature and maturity,
// sorted by importance desc then name. Zero variance gives 0.
func FeatureImportance(samples []Sample) []Importance {
	out := make([]Importance, types.FeatureDimensions)
	for d, name := range types.FeatureNames {
		out[d].Feature = name
	}
	if len(samples) < 2 {
		sortImportance(out)
		return out
	}

	maturity := make([]float64, len(samples))
	dims := make([][]float64, types.FeatureDimensions)
	for d := range dims {
		dims[d] = make([]float64, len(samples))
	}
	for i, s := range samples {
		maturity[i] = s.Features.Maturity()
		v := s.Features.Values()
		for d := range v {
			dims[d][i] = v[d]
		}
	}
	for d := range dims {
		out[d].Importance = math.Abs(pearson(dims[d], maturity))
	}
	sortImportance(out)
	return out
}

func sortImportance(out []Importance) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].Feature < out[j].Feature
	})
}

func pearson(x, y []float64) float64 {
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		// zero variance on either side
		return 0
	}
	// rounding can land a hair outside [-1, 1]
	return max(-1, min(1, r))
}
