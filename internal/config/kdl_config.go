package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// applyKDL overlays the settings present in a .crit.kdl document onto cfg.
// Relative project roots resolve against baseDir.
//
//	project { root "."; name "web" }
//	discovery {
//	    extensions ".ts" ".tsx"
//	    exclude_dirs "generated"
//	    alias "~/" "app/"
//	}
//	clustering { k 4; seed 7 }
func applyKDL(cfg *Config, content, baseDir string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) {
					if !filepath.IsAbs(v) {
						v = filepath.Join(baseDir, v)
					}
					cfg.Project.Root = filepath.Clean(v)
				})
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "discovery":
			parseDiscovery(&cfg.Discovery, n.Children)
		case "references":
			parseReferences(&cfg.References, n.Children)
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelFileWorkers = v
					}
				case "budget_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.BudgetMs = v
					}
				}
			}
		case "scoring":
			parseScoring(&cfg.Scoring, n.Children)
		case "clustering":
			parseClustering(&cfg.Clustering, n.Children)
		case "report":
			for _, cn := range n.Children {
				if nodeName(cn) == "top" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Report.TopN = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		default:
			log.Printf("WARNING: unknown section '%s' in KDL config ignored", nodeName(n))
		}
	}
	return nil
}

func parseDiscovery(d *Discovery, children []*document.Node) {
	for _, cn := range children {
		switch nodeName(cn) {
		case "extensions":
			if exts := collectStringArgs(cn); len(exts) > 0 {
				d.Extensions = normalizeExtensions(exts)
			}
		case "exclude_dirs":
			d.ExcludeDirs = DeduplicatePatterns(append(d.ExcludeDirs, collectStringArgs(cn)...))
		case "exclude_names":
			d.ExcludeNames = DeduplicatePatterns(append(d.ExcludeNames, collectStringArgs(cn)...))
		case "include":
			d.Include = DeduplicatePatterns(append(d.Include, collectStringArgs(cn)...))
		case "alias":
			args := collectStringArgs(cn)
			if len(args) != 2 {
				log.Printf("WARNING: alias expects a prefix and a target, got %d values", len(args))
				continue
			}
			d.Aliases = setAlias(d.Aliases, Alias{Prefix: args[0], Target: args[1]})
		case "resolve_suffixes":
			if suffixes := collectStringArgs(cn); len(suffixes) > 0 {
				d.ResolveSuffixes = suffixes
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				d.RespectGitignore = b
			}
		case "detect_build_artifacts":
			if b, ok := firstBoolArg(cn); ok {
				d.DetectBuildArtifacts = b
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				d.FollowSymlinks = b
			}
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				d.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					d.MaxFileSize = sz
				} else {
					log.Printf("WARNING: invalid max_file_size %q: %v", s, err)
				}
			}
		}
	}
}

func parseReferences(r *References, children []*document.Node) {
	for _, cn := range children {
		switch nodeName(cn) {
		case "extractor":
			if s, ok := firstStringArg(cn); ok {
				r.Extractor = strings.ToLower(s)
			}
		case "ignore_extensions":
			r.IgnoreExtensions = DeduplicatePatterns(append(r.IgnoreExtensions, normalizeExtensions(collectStringArgs(cn))...))
		case "suggest_orphans":
			if b, ok := firstBoolArg(cn); ok {
				r.SuggestOrphans = b
			}
		case "suggestion_threshold":
			if f, ok := firstFloatArg(cn); ok {
				r.SuggestionThreshold = f
			}
		}
	}
}

func parseScoring(s *Scoring, children []*document.Node) {
	for _, cn := range children {
		var target *float64
		switch nodeName(cn) {
		case "degree_weight":
			target = &s.DegreeWeight
		case "betweenness_weight":
			target = &s.BetweennessWeight
		case "complexity_weight":
			target = &s.ComplexityWeight
		case "complexity_divisor":
			target = &s.ComplexityDivisor
		case "high_threshold":
			target = &s.HighThreshold
		case "medium_threshold":
			target = &s.MediumThreshold
		case "normalize_over":
			assignSimpleString(cn, "normalize_over", func(v string) { s.NormalizeOver = strings.ToLower(v) })
			continue
		default:
			continue
		}
		if f, ok := firstFloatArg(cn); ok {
			*target = f
		}
	}
}

func parseClustering(c *Clustering, children []*document.Node) {
	for _, cn := range children {
		switch nodeName(cn) {
		case "k":
			if v, ok := firstIntArg(cn); ok {
				c.K = v
			}
		case "seed":
			if v, ok := firstIntArg(cn); ok {
				c.Seed = int64(v)
			}
		case "max_iterations":
			if v, ok := firstIntArg(cn); ok {
				c.MaxIterations = v
			}
		case "epsilon":
			if f, ok := firstFloatArg(cn); ok {
				c.Epsilon = f
			}
		case "normalization":
			assignSimpleString(cn, "normalization", func(v string) { c.Normalization = strings.ToLower(v) })
		}
	}
}

// setAlias replaces an alias with the same prefix or appends a new one
func setAlias(aliases []Alias, a Alias) []Alias {
	for i := range aliases {
		if aliases[i].Prefix == a.Prefix {
			aliases[i] = a
			return aliases
		}
	}
	return append(aliases, a)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return DeduplicatePatterns(out)
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid number for '%s' in KDL config, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs accepts both inline arguments and block children:
// exclude_dirs "a" "b"  or  exclude_dirs { "a"; "b" }
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	numStr := s
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
