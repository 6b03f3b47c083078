package references

import (
	"bytes"
	"regexp"
	"sort"
	"sync"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/types"
)

var (
	importPatternsOnce sync.Once
	importPatterns     []*regexp.Regexp
)

// getImportPatterns compiles the specifier patterns once:
// import x from "p", export * from "p", import "p", import("p"), require("p")
func getImportPatterns() []*regexp.Regexp {
	importPatternsOnce.Do(func() {
		importPatterns = []*regexp.Regexp{
			regexp.MustCompile(`\b(?:import|export)\b[^'"` + "`" + `;]*?\bfrom\s*['"]([^'"\n]+)['"]`),
			regexp.MustCompile(`\bimport\s*['"]([^'"\n]+)['"]`),
			regexp.MustCompile(`\bimport\s*\(\s*['"]([^'"\n]+)['"]\s*\)`),
			regexp.MustCompile(`\brequire\s*\(\s*['"]([^'"\n]+)['"]\s*\)`),
		}
	})
	return importPatterns
}

// RegexExtractor finds local references with regular expressions. It does not
// understand comments or strings, which keeps it grammar-free and fast.
type RegexExtractor struct {
	filter localFilter
}

// NewRegexExtractor creates a regex extractor honoring alias prefixes
func NewRegexExtractor(aliases []config.Alias, ignoreExtensions []string) *RegexExtractor {
	return &RegexExtractor{filter: newLocalFilter(aliases, ignoreExtensions)}
}

func (e *RegexExtractor) Name() string { return config.ExtractorRegex }

// Extract implements Extractor
func (e *RegexExtractor) Extract(_ string, content []byte) []types.Reference {
	lines := lineStarts(content)
	c := newCollector(e.filter)
	for _, re := range getImportPatterns() {
		for _, m := range re.FindAllSubmatchIndex(content, -1) {
			c.add(string(content[m[2]:m[3]]), lineAt(lines, m[0]))
		}
	}
	return c.result()
}

// lineStarts returns the byte offset at which each line begins
func lineStarts(content []byte) []int {
	starts := make([]int, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt converts a byte offset into a 1-based line number
func lineAt(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
}
