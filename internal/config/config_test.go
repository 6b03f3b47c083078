package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	criterrors "github.com/standardbeagle/crit/internal/errors"
)

// isolateHome points the home directory at an empty temp dir so a developer's ~/.crit.kdl never leaks in
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestDefault(t *testing.T) {
	root := t.TempDir()
	cfg := Default(root)

	assert.Equal(t, root, cfg.Project.Root)
	assert.Equal(t, []string{".ts", ".tsx", ".js", ".jsx"}, cfg.Discovery.Extensions)
	assert.Equal(t, []string{".tsx", ".ts", "/index.tsx", "/index.ts"}, cfg.Discovery.ResolveSuffixes)
	assert.Equal(t, []Alias{{Prefix: "@/", Target: "src/"}}, cfg.Discovery.Aliases)
	assert.Contains(t, cfg.Discovery.ExcludeDirs, "node_modules")
	assert.Contains(t, cfg.Discovery.ExcludeDirs, ".git")

	assert.Equal(t, 0.4, cfg.Scoring.DegreeWeight)
	assert.Equal(t, 0.3, cfg.Scoring.BetweennessWeight)
	assert.Equal(t, 0.3, cfg.Scoring.ComplexityWeight)
	assert.Equal(t, 500.0, cfg.Scoring.ComplexityDivisor)
	assert.Equal(t, 0.7, cfg.Scoring.HighThreshold)
	assert.Equal(t, 0.4, cfg.Scoring.MediumThreshold)

	assert.Equal(t, 3, cfg.Clustering.K)
	assert.Equal(t, int64(42), cfg.Clustering.Seed)
	assert.Equal(t, NormalizationMinMax, cfg.Clustering.Normalization)

	require.NoError(t, ValidateConfig(cfg))
	assert.GreaterOrEqual(t, cfg.Performance.ParallelFileWorkers, 1)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, Default(root).Discovery.Extensions, cfg.Discovery.Extensions)
}

func TestLoadProjectKDL(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	content := `
project {
    name "storefront"
}
discovery {
    extensions "ts" ".TSX"
    exclude_dirs "generated"
    exclude_names "*.mock.ts"
    alias "@/" "app/"
    alias "~/" "lib/"
    respect_gitignore false
    max_file_size "2MB"
}
references {
    extractor "treesitter"
    suggestion_threshold 0.75
}
performance {
    workers 2
    budget_ms 1500
}
scoring {
    degree_weight 0.5
    betweenness_weight 0.25
    complexity_weight 0.25
    complexity_divisor 800
    high_threshold 0.8
    medium_threshold 0.3
    normalize_over "all"
}
clustering {
    k 4
    seed 7
    max_iterations 50
    epsilon 0.001
    normalization "zscore"
}
report {
    top 5
}
watch {
    debounce_ms 150
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Project.Name)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Discovery.Extensions)
	assert.Contains(t, cfg.Discovery.ExcludeDirs, "generated")
	assert.Contains(t, cfg.Discovery.ExcludeDirs, "node_modules", "defaults are kept")
	assert.Contains(t, cfg.Discovery.ExcludeNames, "*.mock.ts")
	assert.Equal(t, []Alias{{Prefix: "@/", Target: "app/"}, {Prefix: "~/", Target: "lib/"}}, cfg.Discovery.Aliases)
	assert.False(t, cfg.Discovery.RespectGitignore)
	assert.Equal(t, int64(2*1024*1024), cfg.Discovery.MaxFileSize)

	assert.Equal(t, ExtractorTreeSitter, cfg.References.Extractor)
	assert.InDelta(t, 0.75, cfg.References.SuggestionThreshold, 1e-9)

	assert.Equal(t, 2, cfg.Performance.ParallelFileWorkers)
	assert.Equal(t, 1500, cfg.Performance.BudgetMs)

	assert.Equal(t, 0.5, cfg.Scoring.DegreeWeight)
	assert.Equal(t, 800.0, cfg.Scoring.ComplexityDivisor)
	assert.Equal(t, 0.8, cfg.Scoring.HighThreshold)
	assert.Equal(t, NormalizeAll, cfg.Scoring.NormalizeOver)

	assert.Equal(t, 4, cfg.Clustering.K)
	assert.Equal(t, int64(7), cfg.Clustering.Seed)
	assert.Equal(t, 50, cfg.Clustering.MaxIterations)
	assert.Equal(t, NormalizationZScore, cfg.Clustering.Normalization)

	assert.Equal(t, 5, cfg.Report.TopN)
	assert.Equal(t, 150, cfg.Watch.DebounceMs)
}

func TestLoadGlobalThenProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFileName), []byte(`clustering { k 5; seed 9 }`), 0644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`clustering { k 2 }`), 0644))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Clustering.K, "project overrides global")
	assert.Equal(t, int64(9), cfg.Clustering.Seed, "global overrides defaults")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()

	_, err := Load(root, filepath.Join(root, "nope.kdl"))
	require.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	content := `
scoring { degree_weight 0.9; high_threshold 0.2 }
clustering { k 0; normalization "robust" }
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	_, err := Load(root, "")
	require.Error(t, err)

	var multi *criterrors.MultiError
	require.True(t, errors.As(err, &multi))
	assert.GreaterOrEqual(t, len(multi.Errors), 4)

	var cfgErr *criterrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestLoadMalformedKDL(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`discovery { extensions ".ts"`), 0644))

	_, err := Load(root, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse KDL config")
}

func TestLoadRelativeProjectRoot(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "web"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`project { root "web" }`), 0644))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "web"), cfg.Project.Root)
}

func TestHasExtension(t *testing.T) {
	d := Discovery{Extensions: []string{".ts", ".tsx"}}

	assert.True(t, d.HasExtension("src/app.ts"))
	assert.True(t, d.HasExtension("src/App.TSX"))
	assert.False(t, d.HasExtension("src/app.js"))
	assert.False(t, d.HasExtension("Makefile"))
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10":    10,
		"512B":  512,
		"4kb":   4096,
		"2MB":   2 * 1024 * 1024,
		" 1GB ": 1024 * 1024 * 1024,
	}
	for in, want := range tests {
		got, err := parseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}
