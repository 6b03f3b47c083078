package references

import (
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/types"
)

// Extractor finds import-like statements in one file's content.
// Implementations are stateless per call and safe for concurrent use.
type Extractor interface {
	Name() string
	Extract(filePath string, content []byte) []types.Reference
}

// New returns the extractor selected by cfg, falling back to regex when the
// tree-sitter grammars cannot be loaded
func New(cfg *config.Config) Extractor {
	regex := NewRegexExtractor(cfg.Discovery.Aliases, cfg.References.IgnoreExtensions)
	if cfg.References.Extractor == config.ExtractorTreeSitter {
		if ts, err := NewTreeSitterExtractor(regex); err == nil {
			return ts
		}
	}
	return regex
}

// localFilter keeps references that point into the analyzed tree
type localFilter struct {
	aliases          []config.Alias
	ignoreExtensions map[string]bool
}

func newLocalFilter(aliases []config.Alias, ignoreExtensions []string) localFilter {
	ignore := make(map[string]bool, len(ignoreExtensions))
	for _, e := range ignoreExtensions {
		ignore[strings.ToLower(e)] = true
	}
	return localFilter{aliases: aliases, ignoreExtensions: ignore}
}

// IsLocal reports whether a specifier is relative or starts with a configured alias
func IsLocal(spec string, aliases []config.Alias) bool {
	if spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		return true
	}
	for _, a := range aliases {
		if strings.HasPrefix(spec, a.Prefix) {
			return true
		}
	}
	return false
}

func (f localFilter) keep(spec string) bool {
	if !IsLocal(spec, f.aliases) {
		return false
	}
	// stylesheets and assets are not module dependencies
	return !f.ignoreExtensions[strings.ToLower(path.Ext(spec))]
}

// collector de-duplicates specifiers per file, keeping the first line seen
type collector struct {
	filter localFilter
	seen   map[string]int
	refs   []types.Reference
}

func newCollector(filter localFilter) *collector {
	return &collector{filter: filter, seen: make(map[string]int)}
}

func (c *collector) add(spec string, line int) {
	spec = strings.TrimSpace(spec)
	if spec == "" || !c.filter.keep(spec) {
		return
	}
	if i, ok := c.seen[spec]; ok {
		if line < c.refs[i].Line {
			c.refs[i].Line = line
		}
		return
	}
	c.seen[spec] = len(c.refs)
	c.refs = append(c.refs, types.Reference{Specifier: spec, Line: line})
}

func (c *collector) result() []types.Reference {
	sort.Slice(c.refs, func(i, j int) bool {
		if c.refs[i].Line != c.refs[j].Line {
			return c.refs[i].Line < c.refs[j].Line
		}
		return c.refs[i].Specifier < c.refs[j].Specifier
	})
	return c.refs
}
