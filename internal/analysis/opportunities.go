package analysis

import (
	"fmt"

	"github.com/standardbeagle/crit/internal/types"
)

// Opportunity kinds
const (
	OpportunitySimplification = "simplification"
	OpportunityPerformance    = "performance"
	OpportunityReusability    = "reusability"
)

// Opportunity priorities
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Rule thresholds
const (
	simplifyMinLOC        = 500
	simplifyMinComplexity = 8
	perfMaxScore          = 50
	perfMinComplexity     = 6
	reuseMaxScore         = 60
)

// Opportunity is a suggested improvement for one file
type Opportunity struct {
	FileID      string `json:"fileId"`
	Kind        string `json:"type"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

// FindOpportunities returns the first matching improvement for one feature
// vector: simplification, then performance, then reusability. A file gets
// at most one opportunity.
func FindOpportunities(path string, fv types.FeatureVector) []Opportunity {
	switch {
	case fv.LinesOfCode > simplifyMinLOC && fv.ComplexityScore > simplifyMinComplexity:
		return []Opportunity{{
			FileID:      path,
			Kind:        OpportunitySimplification,
			Priority:    PriorityHigh,
			Description: fmt.Sprintf("large and complex (%d lines, complexity %d); consider splitting", fv.LinesOfCode, fv.ComplexityScore),
		}}
	case fv.PerformanceScore < perfMaxScore && fv.ComplexityScore > perfMinComplexity:
		return []Opportunity{{
			FileID:      path,
			Kind:        OpportunityPerformance,
			Priority:    PriorityMedium,
			Description: fmt.Sprintf("performance score %d with complexity %d; add memoization or remove debug calls", fv.PerformanceScore, fv.ComplexityScore),
		}}
	case fv.ReusabilityScore < reuseMaxScore:
		return []Opportunity{{
			FileID:      path,
			Kind:        OpportunityReusability,
			Priority:    PriorityLow,
			Description: fmt.Sprintf("reusability score %d; declare a props contract and accept className/children", fv.ReusabilityScore),
		}}
	}
	return nil
}
