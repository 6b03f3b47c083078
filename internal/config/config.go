package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/crit/internal/types"
)

// ConfigFileName is the project configuration file looked up in the analysis root
const ConfigFileName = ".crit.kdl"

// Reference extractor kinds
const (
	ExtractorRegex      = "regex"
	ExtractorTreeSitter = "treesitter"
)

// Centrality normalization domains
const (
	NormalizeConnected = "connected"
	NormalizeAll       = "all"
)

// Feature normalization methods used before clustering
const (
	NormalizationMinMax = "minmax"
	NormalizationZScore = "zscore"
)

type Config struct {
	Version     int
	Project     Project
	Discovery   Discovery
	References  References
	Performance Performance
	Scoring     Scoring
	Clustering  Clustering
	Report      Report
	Watch       Watch
}

type Project struct {
	Root string
	Name string
}

// Discovery controls which files become graph nodes
type Discovery struct {
	Extensions           []string // ".ts", ".tsx"; matched case-insensitively
	ExcludeDirs          []string // directory base names (globs allowed), pruned during the walk
	ExcludeNames         []string // doublestar patterns; matched against the base name, or the relative path when they contain '/'
	Include              []string // optional doublestar patterns; empty means every file with an allowed extension
	Aliases              []Alias  // ordered; first matching prefix wins
	ResolveSuffixes      []string // tried in order after the literal path
	RespectGitignore     bool
	DetectBuildArtifacts bool
	FollowSymlinks       bool
	MaxFileSize          int64
}

// Alias maps an import prefix such as "@/" onto a directory relative to the root
type Alias struct {
	Prefix string
	Target string
}

type References struct {
	Extractor           string
	IgnoreExtensions    []string // specifiers ending in these (stylesheets, images) are not module dependencies
	SuggestOrphans      bool
	SuggestionThreshold float64 // minimum Levenshtein similarity for a "did you mean" hint
}

type Performance struct {
	ParallelFileWorkers int // 0 = auto-detect
	BudgetMs            int // wall-clock budget for discovery+extraction; 0 = unlimited
}

// Scoring holds the composite-score weights and risk tier cutpoints.
// Tiers are exclusive on the lower bound: score > HighThreshold is HIGH.
type Scoring struct {
	DegreeWeight      float64
	BetweennessWeight float64
	ComplexityWeight  float64
	ComplexityDivisor float64
	HighThreshold     float64
	MediumThreshold   float64
	NormalizeOver     string
}

type Clustering struct {
	K             int
	Seed          int64
	MaxIterations int
	Epsilon       float64
	Normalization string
}

type Report struct {
	TopN int
}

type Watch struct {
	DebounceMs int
}

// Default returns the built-in configuration for a root directory
func Default(root string) *Config {
	absRoot := root
	if abs, err := filepath.Abs(root); err == nil {
		absRoot = abs
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: absRoot,
			Name: filepath.Base(absRoot),
		},
		Discovery: Discovery{
			Extensions:           []string{".ts", ".tsx", ".js", ".jsx"},
			ExcludeDirs:          DefaultExcludeDirs(),
			ExcludeNames:         DefaultExcludeNames(),
			Aliases:              []Alias{{Prefix: "@/", Target: "src/"}},
			ResolveSuffixes:      []string{".tsx", ".ts", "/index.tsx", "/index.ts"},
			RespectGitignore:     true,
			DetectBuildArtifacts: true,
			FollowSymlinks:       false,
			MaxFileSize:          types.DefaultMaxFileSize,
		},
		References: References{
			Extractor:           ExtractorRegex,
			IgnoreExtensions:    DefaultIgnoredReferenceExtensions(),
			SuggestOrphans:      true,
			SuggestionThreshold: 0.8,
		},
		Performance: Performance{
			ParallelFileWorkers: 0,
			BudgetMs:            0,
		},
		Scoring: Scoring{
			DegreeWeight:      0.4,
			BetweennessWeight: 0.3,
			ComplexityWeight:  0.3,
			ComplexityDivisor: 500,
			HighThreshold:     0.7,
			MediumThreshold:   0.4,
			NormalizeOver:     NormalizeConnected,
		},
		Clustering: Clustering{
			K:             3,
			Seed:          42,
			MaxIterations: 300,
			Epsilon:       1e-4,
			Normalization: NormalizationMinMax,
		},
		Report: Report{
			TopN: 20,
		},
		Watch: Watch{
			DebounceMs: 300,
		},
	}
}

// DefaultExcludeDirs lists build artifacts, dependency caches and version control
func DefaultExcludeDirs() []string {
	return []string{
		// Version control
		".git", ".hg", ".svn",

		// Dependency caches
		"node_modules", "bower_components", "jspm_packages", "vendor", ".yarn", ".pnpm-store",

		// Build output
		"dist", "build", "out", "target", ".output", "storybook-static",

		// Framework and tool caches
		".next", ".nuxt", ".svelte-kit", ".turbo", ".cache", ".parcel-cache", ".vite", "coverage", ".nyc_output",

		// Test fixtures
		"__tests__", "__mocks__", "__snapshots__",
	}
}

// DefaultExcludeNames lists generated and test file name patterns
func DefaultExcludeNames() []string {
	return []string{
		"*.test.*",
		"*.spec.*",
		"*.stories.*",
		"*.d.ts",
		"*.min.js",
		"*.bundle.js",
		"*.chunk.js",
	}
}

// DefaultIgnoredReferenceExtensions lists asset specifiers that never resolve to source files
func DefaultIgnoredReferenceExtensions() []string {
	return []string{
		".css", ".scss", ".sass", ".less",
		".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
		".json", ".md", ".mdx", ".graphql", ".gql",
	}
}

// Load builds the effective configuration for root: built-in defaults, then
// ~/.crit.kdl, then the project file. An empty configPath means root/.crit.kdl.
func Load(root, configPath string) (*Config, error) {
	cfg := Default(root)

	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ConfigFileName)
		if err := applyKDLFile(cfg, globalPath, false); err != nil {
			return nil, err
		}
	}

	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(cfg.Project.Root, ConfigFileName)
	} else if !filepath.IsAbs(configPath) {
		if _, err := os.Stat(configPath); err != nil {
			configPath = filepath.Join(cfg.Project.Root, configPath)
		}
	}
	if err := applyKDLFile(cfg, configPath, explicit); err != nil {
		return nil, err
	}

	if cfg.Discovery.DetectBuildArtifacts {
		EnrichExclusionsWithBuildArtifacts(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyKDLFile overlays a KDL file onto cfg. Missing files are only an
// error when required is set.
func applyKDLFile(cfg *Config, path string, required bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	if err := applyKDL(cfg, string(content), baseDir); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// EnrichExclusionsWithBuildArtifacts adds output directories declared by
// package.json, tsconfig.json, Cargo.toml and pyproject.toml to ExcludeDirs.
func EnrichExclusionsWithBuildArtifacts(cfg *Config) {
	detected := NewBuildArtifactDetector(cfg.Project.Root).DetectOutputDirectories()
	if len(detected) == 0 {
		return
	}
	cfg.Discovery.ExcludeDirs = DeduplicatePatterns(append(cfg.Discovery.ExcludeDirs, detected...))
}

// HasExtension reports whether the path carries one of the configured extensions
func (d *Discovery) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, allowed := range d.Extensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}

// DeduplicatePatterns removes duplicates while keeping first-seen order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
