package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	criterrors "github.com/standardbeagle/crit/internal/errors"
	"github.com/standardbeagle/crit/testhelpers"
)

func candidatePaths(cands []Candidate) []string {
	paths := make([]string, len(cands))
	for i, c := range cands {
		paths[i] = c.Path
	}
	return paths
}

func TestScanFiltersAndSorts(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		"src/z.ts":                      "export const z = 1;",
		"src/App.tsx":                   "export default function App() {}",
		"src/util/index.ts":             "export {}",
		"src/App.test.tsx":              "test",
		"src/Button.stories.tsx":        "stories",
		"src/types.d.ts":                "declare module 'x';",
		"src/readme.md":                 "# docs",
		"node_modules/react/index.js":   "module.exports = {}",
		"dist/bundle.js":                "var a;",
		".git/hooks/pre-commit.js":      "hook",
		"packages/ui/node_modules/a.ts": "nested dependency cache",
		"legacy.jsx":                    "old",
	})

	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	cands, stats, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"legacy.jsx", "src/App.tsx", "src/util/index.ts", "src/z.ts"}, candidatePaths(cands))
	assert.Equal(t, filepath.Join(root, "src", "App.tsx"), cands[1].AbsPath)
	assert.Greater(t, cands[1].Size, int64(0))
	assert.GreaterOrEqual(t, stats.DirsPruned, 4)
	assert.Equal(t, 4, stats.FilesExcluded)
}

func TestScanCustomFilters(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		"src/a.ts":           "a",
		"src/generated/b.ts": "b",
		"src/c.mock.ts":      "c",
		"src/d.js":           "d",
	})

	cfg := testhelpers.NewTestConfigBuilder(root).
		WithExtensions(".ts").
		WithExcludeDirs("generated").
		WithExcludeNames("*.mock.ts").
		Build()
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	cands, _, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, candidatePaths(cands))
}

func TestScanIncludePatterns(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		"src/components/Card.tsx": "card",
		"src/pages/Home.tsx":      "home",
		"scripts/build.ts":        "build",
	})

	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	cfg.Discovery.Include = []string{"src/**"}
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	cands, _, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/components/Card.tsx", "src/pages/Home.tsx"}, candidatePaths(cands))
}

func TestScanRespectsGitignore(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		".gitignore":          "generated/\n*.gen.ts\n",
		"src/a.ts":            "a",
		"src/api.gen.ts":      "gen",
		"generated/schema.ts": "schema",
	})

	cfg := testhelpers.NewTestConfigBuilder(root).WithGitignore().Build()
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	cands, _, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, candidatePaths(cands))
}

func TestScanSymlinkCycle(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		"src/a.ts": "a",
	})
	if err := os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "src", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cfg := testhelpers.NewTestConfigBuilder(root).Build()
	cfg.Discovery.FollowSymlinks = true
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	cands, stats, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, candidatePaths(cands))
	assert.Equal(t, 1, stats.SymlinkCycles)
}

func TestScanSkipsSymlinksByDefault(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{
		"src/a.ts": "a",
	})
	if err := os.Symlink(filepath.Join(root, "src", "a.ts"), filepath.Join(root, "src", "alias.ts")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	scanner, err := NewFileScanner(testhelpers.NewTestConfigBuilder(root).Build())
	require.NoError(t, err)

	cands, _, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, candidatePaths(cands))
}

func TestScanCancelled(t *testing.T) {
	root := testhelpers.NewTree(t, map[string]string{"a.ts": "a"})
	scanner, err := NewFileScanner(testhelpers.NewTestConfigBuilder(root).Build())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = scanner.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.ts")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, CheckRoot(dir))

	err := CheckRoot(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, criterrors.ErrRootNotFound))
	var rootErr *criterrors.RootError
	assert.True(t, errors.As(err, &rootErr))

	assert.True(t, errors.Is(CheckRoot(file), criterrors.ErrRootNotDirectory))
}

func TestNewFileScannerRejectsBadGlob(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder(t.TempDir()).WithExcludeNames("[unclosed").Build()

	_, err := NewFileScanner(cfg)
	var cfgErr *criterrors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestShouldExcludeDir(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder(t.TempDir()).WithExcludeDirs("tmp-*", "src/legacy").Build()
	scanner, err := NewFileScanner(cfg)
	require.NoError(t, err)

	assert.True(t, scanner.ShouldExcludeDir("node_modules"))
	assert.True(t, scanner.ShouldExcludeDir("packages/web/node_modules"))
	assert.True(t, scanner.ShouldExcludeDir("tmp-build"))
	assert.True(t, scanner.ShouldExcludeDir("src/legacy"))
	assert.False(t, scanner.ShouldExcludeDir("lib/legacy"))
	assert.False(t, scanner.ShouldExcludeDir("src"))
}
