package testhelpers

import (
	"github.com/standardbeagle/crit/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults.
// Gitignore and build-artifact detection are off so fixtures behave the same everywhere.
//
//	cfg := testhelpers.NewTestConfigBuilder(root).
//		WithExcludeDirs("generated").
//		WithClustering(2, 7).
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder creates a builder rooted at projectRoot
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	cfg := config.Default(projectRoot)
	cfg.Project.Name = "test-project"
	cfg.Discovery.RespectGitignore = false
	cfg.Discovery.DetectBuildArtifacts = false
	cfg.Performance.ParallelFileWorkers = 4
	return &TestConfigBuilder{cfg: cfg}
}

// WithExtensions replaces the extension allow-list
func (b *TestConfigBuilder) WithExtensions(exts ...string) *TestConfigBuilder {
	b.cfg.Discovery.Extensions = exts
	return b
}

// WithExcludeDirs adds directory exclusions
func (b *TestConfigBuilder) WithExcludeDirs(dirs ...string) *TestConfigBuilder {
	b.cfg.Discovery.ExcludeDirs = append(b.cfg.Discovery.ExcludeDirs, dirs...)
	return b
}

// WithExcludeNames adds file name exclusions
func (b *TestConfigBuilder) WithExcludeNames(patterns ...string) *TestConfigBuilder {
	b.cfg.Discovery.ExcludeNames = append(b.cfg.Discovery.ExcludeNames, patterns...)
	return b
}

// WithGitignore enables .gitignore handling
func (b *TestConfigBuilder) WithGitignore() *TestConfigBuilder {
	b.cfg.Discovery.RespectGitignore = true
	return b
}

// WithExtractor selects the reference extractor
func (b *TestConfigBuilder) WithExtractor(kind string) *TestConfigBuilder {
	b.cfg.References.Extractor = kind
	return b
}

// WithClustering sets k and the seed
func (b *TestConfigBuilder) WithClustering(k int, seed int64) *TestConfigBuilder {
	b.cfg.Clustering.K = k
	b.cfg.Clustering.Seed = seed
	return b
}

// WithWorkers sets the extraction worker count
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.cfg.Performance.ParallelFileWorkers = n
	return b
}

// WithBudgetMs sets the discovery+extraction budget
func (b *TestConfigBuilder) WithBudgetMs(ms int) *TestConfigBuilder {
	b.cfg.Performance.BudgetMs = ms
	return b
}

// WithNormalizeOver selects the centrality normalization domain
func (b *TestConfigBuilder) WithNormalizeOver(domain string) *TestConfigBuilder {
	b.cfg.Scoring.NormalizeOver = domain
	return b
}

// WithTopN sets how many critical components are reported
func (b *TestConfigBuilder) WithTopN(n int) *TestConfigBuilder {
	b.cfg.Report.TopN = n
	return b
}

// Build returns the config
func (b *TestConfigBuilder) Build() *config.Config {
	return b.cfg
}
