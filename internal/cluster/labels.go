package cluster

// Cluster labels
const (
	LabelHighQuality    = "High-quality, simple components"
	LabelOverEngineered = "Over-engineered components"
	LabelMature         = "Mature components"
	LabelNeedsWork      = "Components requiring optimization"
)

// Label thresholds, in raw feature units
const (
	simpleMaxComplexity    = 5
	highQualityMinMaturity = 70
	overEngineeredMinCompl = 10
	overEngineeredMinLOC   = 500
	matureMinMaturity      = 60
)

// Label names a cluster from its average complexity, maturity and size.
// Rules are checked in order; the first match wins.
func Label(avgComplexity, avgMaturity, avgLOC float64) string {
	switch {
	case avgComplexity < simpleMaxComplexity && avgMaturity > highQualityMinMaturity:
		return LabelHighQuality
	case avgComplexity > overEngineeredMinCompl && avgLOC > overEngineeredMinLOC:
		return LabelOverEngineered
	case avgMaturity > matureMinMaturity:
		return LabelMature
	default:
		return LabelNeedsWork
	}
}
