package analysis

import (
	"strings"

	"github.com/standardbeagle/crit/internal/types"
)

// Source is the read-only input handed to every FeatureExtractor
type Source struct {
	Path string
	Text string

	loc int
}

// NewSource wraps file content for extraction
func NewSource(path string, content []byte) *Source {
	return &Source{Path: path, Text: string(content), loc: -1}
}

// LinesOfCode counts non-blank lines that are not comment-only. Computed once.
func (s *Source) LinesOfCode() int {
	if s.loc < 0 {
		s.loc = countLinesOfCode(s.Text)
	}
	return s.loc
}

// Profile is the accumulated extraction result for one file
type Profile struct {
	Features      types.FeatureVector
	RawComplexity int
}

// FeatureExtractor fills part of a Profile. Extractors are pure functions of
// their Source and must not depend on each other's output.
type FeatureExtractor interface {
	Name() string
	Extract(src *Source, p *Profile)
}

// Pipeline runs extractors in order
type Pipeline struct {
	extractors []FeatureExtractor
}

// NewPipeline creates a pipeline from explicit extractors
func NewPipeline(extractors ...FeatureExtractor) *Pipeline {
	return &Pipeline{extractors: extractors}
}

// DefaultPipeline fills every FeatureVector dimension plus RawComplexity
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		SizeExtractor{},
		ComplexityExtractor{Patterns: ComplexityPatterns, Ceiling: ComplexityCeiling},
		ImportExtractor{},
		ScoreExtractor{Label: "performance", Markers: PerformanceMarkers, Set: func(p *Profile, v int) { p.Features.PerformanceScore = v }},
		ScoreExtractor{Label: "reusability", Markers: ReusabilityMarkers, Set: func(p *Profile, v int) { p.Features.ReusabilityScore = v }},
		StructuralExtractor{},
	)
}

// Analyze runs every extractor over content. Safe for concurrent use.
func (pl *Pipeline) Analyze(path string, content []byte) Profile {
	src := NewSource(path, content)
	var p Profile
	for _, e := range pl.extractors {
		e.Extract(src, &p)
	}
	return p
}

// Names lists the extractors in run order
func (pl *Pipeline) Names() []string {
	names := make([]string, len(pl.extractors))
	for i, e := range pl.extractors {
		names[i] = e.Name()
	}
	return names
}

// SizeExtractor sets LinesOfCode
type SizeExtractor struct{}

func (SizeExtractor) Name() string { return "size" }

func (SizeExtractor) Extract(src *Source, p *Profile) {
	p.Features.LinesOfCode = src.LinesOfCode()
}

// ComplexityExtractor sets ComplexityScore from weighted pattern counts
type ComplexityExtractor struct {
	Patterns []WeightedPattern
	Ceiling  int
}

func (ComplexityExtractor) Name() string { return "complexity" }

func (e ComplexityExtractor) Extract(src *Source, p *Profile) {
	score := 0
	for _, wp := range e.Patterns {
		score += len(wp.Pattern.FindAllStringIndex(src.Text, -1)) * wp.Weight
		if score >= e.Ceiling {
			score = e.Ceiling
			break
		}
	}
	p.Features.ComplexityScore = score
}

// ImportExtractor sets ImportCount to the number of import statements, local or not
type ImportExtractor struct{}

func (ImportExtractor) Name() string { return "imports" }

func (ImportExtractor) Extract(src *Source, p *Profile) {
	p.Features.ImportCount = len(importStmtPattern.FindAllStringIndex(src.Text, -1))
}

// ScoreExtractor starts at ScoreBase, applies each present marker once and clamps
type ScoreExtractor struct {
	Label   string
	Markers []Marker
	Set     func(p *Profile, v int)
}

func (e ScoreExtractor) Name() string { return e.Label }

func (e ScoreExtractor) Extract(src *Source, p *Profile) {
	e.Set(p, MarkerScore(src.Text, e.Markers))
}

// MarkerScore applies markers to ScoreBase and clamps to [ScoreFloor, ScoreCeiling]
func MarkerScore(text string, markers []Marker) int {
	score := ScoreBase
	for _, m := range markers {
		if m.Pattern.MatchString(text) {
			score += m.Delta
		}
	}
	return clamp(score, ScoreFloor, ScoreCeiling)
}

// StructuralExtractor sets RawComplexity, the size-inclusive signal used for ranking
type StructuralExtractor struct{}

func (StructuralExtractor) Name() string { return "structural" }

func (StructuralExtractor) Extract(src *Source, p *Profile) {
	hooks := len(hookPattern.FindAllStringIndex(src.Text, -1))
	props := len(propsTypePattern.FindAllStringIndex(src.Text, -1))
	state := len(statePattern.FindAllStringIndex(src.Text, -1))
	p.RawComplexity = src.LinesOfCode() + hookWeight*hooks + propsWeight*props + stateWeight*state
}

// countLinesOfCode skips blank lines, // lines and lines inside a block comment
// that starts at the beginning of a line
func countLinesOfCode(text string) int {
	count := 0
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			end := strings.Index(trimmed, "*/")
			if end < 0 {
				continue
			}
			inBlock = false
			trimmed = strings.TrimSpace(trimmed[end+2:])
		} else if strings.HasPrefix(trimmed, "/*") {
			end := strings.Index(trimmed[2:], "*/")
			if end < 0 {
				inBlock = true
				continue
			}
			trimmed = strings.TrimSpace(trimmed[2+end+2:])
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		count++
	}
	return count
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
