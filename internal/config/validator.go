package config

import (
	"errors"
	"fmt"
	"runtime"

	criterrors "github.com/standardbeagle/crit/internal/errors"
)

// weightSumTolerance absorbs float noise such as 0.4+0.3+0.3
const weightSumTolerance = 1e-9

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates every section and applies smart defaults.
// All failures are reported together as a MultiError of ConfigErrors.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	var errs []error
	errs = append(errs, v.validateProject(&cfg.Project)...)
	errs = append(errs, v.validateDiscovery(&cfg.Discovery)...)
	errs = append(errs, v.validateReferences(&cfg.References)...)
	errs = append(errs, v.validatePerformance(&cfg.Performance)...)
	errs = append(errs, v.validateScoring(&cfg.Scoring)...)
	errs = append(errs, v.validateClustering(&cfg.Clustering)...)
	if cfg.Report.TopN < 0 {
		errs = append(errs, criterrors.NewConfigError("report", "top", fmt.Errorf("cannot be negative, got %d", cfg.Report.TopN)))
	}
	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, criterrors.NewConfigError("watch", "debounce_ms", fmt.Errorf("cannot be negative, got %d", cfg.Watch.DebounceMs)))
	}

	if err := criterrors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(project *Project) []error {
	if project.Root == "" {
		return []error{criterrors.NewConfigError("project", "root", errors.New("cannot be empty"))}
	}
	return nil
}

func (v *Validator) validateDiscovery(d *Discovery) []error {
	var errs []error
	if len(d.Extensions) == 0 {
		errs = append(errs, criterrors.NewConfigError("discovery", "extensions", errors.New("at least one extension is required")))
	}
	if d.MaxFileSize <= 0 {
		errs = append(errs, criterrors.NewConfigError("discovery", "max_file_size", fmt.Errorf("must be positive, got %d", d.MaxFileSize)))
	}
	for _, a := range d.Aliases {
		if a.Prefix == "" {
			errs = append(errs, criterrors.NewConfigError("discovery", "alias", errors.New("alias prefix cannot be empty")))
		}
	}
	return errs
}

func (v *Validator) validateReferences(r *References) []error {
	var errs []error
	switch r.Extractor {
	case ExtractorRegex, ExtractorTreeSitter:
	default:
		errs = append(errs, criterrors.NewConfigError("references", "extractor", fmt.Errorf("must be %q or %q, got %q", ExtractorRegex, ExtractorTreeSitter, r.Extractor)))
	}
	if r.SuggestionThreshold < 0 || r.SuggestionThreshold > 1 {
		errs = append(errs, criterrors.NewConfigError("references", "suggestion_threshold", fmt.Errorf("must be within [0,1], got %g", r.SuggestionThreshold)))
	}
	return errs
}

func (v *Validator) validatePerformance(p *Performance) []error {
	var errs []error
	if p.ParallelFileWorkers < 0 {
		errs = append(errs, criterrors.NewConfigError("performance", "workers", fmt.Errorf("cannot be negative, got %d", p.ParallelFileWorkers)))
	}
	if p.BudgetMs < 0 {
		errs = append(errs, criterrors.NewConfigError("performance", "budget_ms", fmt.Errorf("cannot be negative, got %d", p.BudgetMs)))
	}
	return errs
}

func (v *Validator) validateScoring(s *Scoring) []error {
	var errs []error
	weights := []struct {
		field string
		value float64
	}{
		{"degree_weight", s.DegreeWeight},
		{"betweenness_weight", s.BetweennessWeight},
		{"complexity_weight", s.ComplexityWeight},
	}
	sum := 0.0
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			errs = append(errs, criterrors.NewConfigError("scoring", w.field, fmt.Errorf("must be within [0,1], got %g", w.value)))
		}
		sum += w.value
	}
	if sum > 1+weightSumTolerance {
		errs = append(errs, criterrors.NewConfigError("scoring", "", fmt.Errorf("weights must sum to at most 1, got %g", sum)))
	}
	if s.ComplexityDivisor <= 0 {
		errs = append(errs, criterrors.NewConfigError("scoring", "complexity_divisor", fmt.Errorf("must be positive, got %g", s.ComplexityDivisor)))
	}
	if s.MediumThreshold < 0 || s.HighThreshold > 1 || s.MediumThreshold >= s.HighThreshold {
		errs = append(errs, criterrors.NewConfigError("scoring", "", fmt.Errorf("thresholds must satisfy 0 <= medium < high <= 1, got medium=%g high=%g", s.MediumThreshold, s.HighThreshold)))
	}
	switch s.NormalizeOver {
	case NormalizeConnected, NormalizeAll:
	default:
		errs = append(errs, criterrors.NewConfigError("scoring", "normalize_over", fmt.Errorf("must be %q or %q, got %q", NormalizeConnected, NormalizeAll, s.NormalizeOver)))
	}
	return errs
}

func (v *Validator) validateClustering(c *Clustering) []error {
	var errs []error
	if c.K < 1 {
		errs = append(errs, criterrors.NewConfigError("clustering", "k", fmt.Errorf("must be at least 1, got %d", c.K)))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, criterrors.NewConfigError("clustering", "max_iterations", fmt.Errorf("must be at least 1, got %d", c.MaxIterations)))
	}
	if c.Epsilon <= 0 {
		errs = append(errs, criterrors.NewConfigError("clustering", "epsilon", fmt.Errorf("must be positive, got %g", c.Epsilon)))
	}
	switch c.Normalization {
	case NormalizationMinMax, NormalizationZScore:
	default:
		errs = append(errs, criterrors.NewConfigError("clustering", "normalization", fmt.Errorf("must be %q or %q, got %q", NormalizationMinMax, NormalizationZScore, c.Normalization)))
	}
	return errs
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core for the OS, minimum of 1
	if cfg.Performance.ParallelFileWorkers == 0 {
		cfg.Performance.ParallelFileWorkers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = "project"
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
