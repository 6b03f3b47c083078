package references

import (
	"path"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/crit/internal/config"
)

// Resolution is the outcome of resolving one reference
type Resolution struct {
	Target    string // resolved file path, empty for orphans
	Attempted string // root-relative base path tried before suffixes
	Resolved  bool
	Self      bool // resolved to the importing file itself
}

// Resolver maps specifiers onto the discovered file set. Resolution is
// best-effort: literal path first, then each suffix in order; first match wins.
type Resolver struct {
	known    map[string]struct{}
	paths    []string
	stems    []string
	aliases  []config.Alias
	suffixes []string
}

// NewResolver creates a resolver over root-relative slash paths
func NewResolver(paths []string, discovery config.Discovery) *Resolver {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	known := make(map[string]struct{}, len(sorted))
	stems := make([]string, len(sorted))
	for i, p := range sorted {
		known[p] = struct{}{}
		stems[i] = strings.TrimSuffix(p, path.Ext(p))
	}

	// Longest alias prefix first so "@/components/" beats "@/"
	aliases := append([]config.Alias(nil), discovery.Aliases...)
	sort.SliceStable(aliases, func(i, j int) bool { return len(aliases[i].Prefix) > len(aliases[j].Prefix) })

	return &Resolver{
		known:    known,
		paths:    sorted,
		stems:    stems,
		aliases:  aliases,
		suffixes: discovery.ResolveSuffixes,
	}
}

// Resolve resolves spec as written in the file at from
func (r *Resolver) Resolve(from, spec string) Resolution {
	base, ok := r.basePath(from, spec)
	if !ok {
		return Resolution{Attempted: base}
	}

	for _, candidate := range r.candidates(base) {
		if _, exists := r.known[candidate]; exists {
			return Resolution{Target: candidate, Attempted: base, Resolved: true, Self: candidate == from}
		}
	}
	return Resolution{Attempted: base}
}

// basePath joins spec onto the importing directory or an alias target.
// References escaping the root cannot resolve.
func (r *Resolver) basePath(from, spec string) (string, bool) {
	var joined string
	aliased := false
	for _, a := range r.aliases {
		if strings.HasPrefix(spec, a.Prefix) {
			joined = path.Join(a.Target, strings.TrimPrefix(spec, a.Prefix))
			aliased = true
			break
		}
	}
	if !aliased {
		joined = path.Join(path.Dir(from), spec)
	}

	joined = path.Clean(joined)
	if joined == ".." || strings.HasPrefix(joined, "../") || path.IsAbs(joined) {
		return joined, false
	}
	return joined, true
}

func (r *Resolver) candidates(base string) []string {
	out := make([]string, 0, len(r.suffixes)+1)
	out = append(out, base)
	for _, suffix := range r.suffixes {
		if base == "." {
			// only directory-style suffixes make sense for the root itself
			if strings.HasPrefix(suffix, "/") {
				out = append(out, strings.TrimPrefix(suffix, "/"))
			}
			continue
		}
		out = append(out, base+suffix)
	}
	return out
}

// Suggest returns the discovered path closest to an orphan's attempted path,
// or "" when nothing reaches threshold. Extensions are ignored when comparing.
func (r *Resolver) Suggest(attempted string, threshold float64) string {
	if attempted == "" || len(r.paths) == 0 {
		return ""
	}
	target := strings.TrimSuffix(attempted, path.Ext(attempted))

	best := ""
	bestScore := float32(-1)
	for i, stem := range r.stems {
		score, err := edlib.StringsSimilarity(target, stem, edlib.Levenshtein)
		if err != nil {
			continue
		}
		// paths are sorted, so strict > keeps the lexicographically first on ties
		if score > bestScore {
			best, bestScore = r.paths[i], score
		}
	}
	if float64(bestScore) < threshold {
		return ""
	}
	return best
}
