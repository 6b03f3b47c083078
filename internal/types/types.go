package types

// Common system-wide constants
const (
	// DefaultMaxFileSize skips generated bundles and vendored blobs that slipped past exclusions
	DefaultMaxFileSize = 1024 * 1024 // 1MB

	// BinaryPreCheckBytes is how much of a file is sniffed for binary content
	BinaryPreCheckBytes = 512
)

// FileID is a stable arena index assigned in ascending path order
type FileID uint32

// RiskTier is the discrete classification derived from a composite score
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// RiskTiers lists tiers from least to most severe
var RiskTiers = []RiskTier{RiskLow, RiskMedium, RiskHigh}

// FeatureVector is the fixed-shape heuristic summary of one file.
// Every signal is independently bounded by its extractor.
type FeatureVector struct {
	LinesOfCode      int `json:"linesOfCode"`
	ComplexityScore  int `json:"complexityScore"`
	ImportCount      int `json:"importCount"`
	PerformanceScore int `json:"performanceScore"`
	ReusabilityScore int `json:"reusabilityScore"`
}

// FeatureDimensions is the length of FeatureVector.Values
const FeatureDimensions = 5

// FeatureNames names the dimensions of FeatureVector.Values, in order
var FeatureNames = [FeatureDimensions]string{
	"linesOfCode",
	"complexityScore",
	"importCount",
	"performanceScore",
	"reusabilityScore",
}

// Values returns the vector as float64 dimensions in FeatureNames order
func (fv FeatureVector) Values() [FeatureDimensions]float64 {
	return [FeatureDimensions]float64{
		float64(fv.LinesOfCode),
		float64(fv.ComplexityScore),
		float64(fv.ImportCount),
		float64(fv.PerformanceScore),
		float64(fv.ReusabilityScore),
	}
}

// Maturity is the proxy used for cluster labels: mean of performance and reusability
func (fv FeatureVector) Maturity() float64 {
	return float64(fv.PerformanceScore+fv.ReusabilityScore) / 2
}

// Reference is one local import-like statement found in a file
type Reference struct {
	Specifier string `json:"specifier"`
	Line      int    `json:"line"`
}

// SourceFile is one successfully read file. Created during extraction; only
// ClusterID and RiskTier are assigned later in the run.
type SourceFile struct {
	ID            FileID
	Path          string // slash separated, relative to the analysis root
	Size          int64
	Digest        uint64
	Features      FeatureVector
	RawComplexity int // LOC + 2*hooks + 3*props + 2*state
	References    []Reference
	ClusterID     int
	RiskTier      RiskTier
}

// CriticalityRecord is one ranked entry of the criticality report
type CriticalityRecord struct {
	FileID string `json:"fileId"`
	// DegreeCentrality is (in+out)/(N-1). N follows scoring.normalize_over:
	// "connected" (default) counts only files with at least one edge, "all"
	// counts every discovered file.
	DegreeCentrality float64 `json:"degreeCentrality"`
	// BetweennessCentrality is scaled by 1/((N-1)(N-2)) with the same N
	BetweennessCentrality float64  `json:"betweennessCentrality"`
	Complexity            int      `json:"complexity"`
	NormalizedComplexity  float64  `json:"normalizedComplexity"`
	CompositeScore        float64  `json:"compositeScore"`
	RiskTier              RiskTier `json:"riskTier"`
	InDegree              int      `json:"inDegree"`
	OutDegree             int      `json:"outDegree"`
}
