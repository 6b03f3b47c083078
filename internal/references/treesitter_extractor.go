package references

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/types"
)

// module specifiers in static imports, re-exports, dynamic import() and require()
const referenceQuery = `
    (import_statement source: (string) @source)
    (export_statement source: (string) @source)
    (call_expression function: (_) @callee arguments: (arguments (string) @source))
`

type grammar struct {
	language *tree_sitter.Language
	query    *tree_sitter.Query
}

var (
	grammarsOnce sync.Once
	grammars     map[string]*grammar
	grammarsErr  error
)

func loadGrammars() (map[string]*grammar, error) {
	grammarsOnce.Do(func() {
		languages := map[string]*tree_sitter.Language{
			"javascript": tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			"typescript": tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			"tsx":        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		}
		byLanguage := make(map[string]*grammar, len(languages))
		for name, lang := range languages {
			query, qerr := tree_sitter.NewQuery(lang, referenceQuery)
			if qerr != nil {
				grammarsErr = fmt.Errorf("reference query for %s: %w", name, qerr)
				return
			}
			byLanguage[name] = &grammar{language: lang, query: query}
		}
		grammars = map[string]*grammar{
			".js":  byLanguage["javascript"],
			".jsx": byLanguage["javascript"],
			".mjs": byLanguage["javascript"],
			".cjs": byLanguage["javascript"],
			".ts":  byLanguage["typescript"],
			".mts": byLanguage["typescript"],
			".cts": byLanguage["typescript"],
			".tsx": byLanguage["tsx"],
		}
	})
	return grammars, grammarsErr
}

// TreeSitterExtractor reads references from the syntax tree, so commented-out
// imports and import-like text inside strings are ignored. Files without a
// grammar go through the fallback extractor.
type TreeSitterExtractor struct {
	grammars map[string]*grammar
	filter   localFilter
	fallback Extractor
}

// NewTreeSitterExtractor loads the JS/TS grammars. fallback handles other extensions.
func NewTreeSitterExtractor(fallback *RegexExtractor) (*TreeSitterExtractor, error) {
	g, err := loadGrammars()
	if err != nil {
		return nil, err
	}
	return &TreeSitterExtractor{grammars: g, filter: fallback.filter, fallback: fallback}, nil
}

func (e *TreeSitterExtractor) Name() string { return config.ExtractorTreeSitter }

// Extract implements Extractor. A parser is created per call since parsers
// are not safe for concurrent use.
func (e *TreeSitterExtractor) Extract(filePath string, content []byte) []types.Reference {
	g := e.grammars[strings.ToLower(filepath.Ext(filePath))]
	if g == nil {
		return e.fallback.Extract(filePath, content)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g.language); err != nil {
		debug.LogExtraction("tree-sitter language setup failed for %s: %v\n", filePath, err)
		return e.fallback.Extract(filePath, content)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return e.fallback.Extract(filePath, content)
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(g.query, tree.RootNode(), content)
	captureNames := g.query.CaptureNames()

	c := newCollector(e.filter)
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var source *tree_sitter.Node
		callee := ""
		isCall := false
		for i := range match.Captures {
			capture := match.Captures[i]
			switch captureNames[capture.Index] {
			case "source":
				node := capture.Node
				source = &node
			case "callee":
				isCall = true
				callee = capture.Node.Kind()
				if callee == "identifier" {
					callee = string(content[capture.Node.StartByte():capture.Node.EndByte()])
				}
			}
		}
		if source == nil {
			continue
		}
		if isCall && callee != "import" && callee != "require" {
			continue
		}

		text := string(content[source.StartByte():source.EndByte()])
		c.add(strings.Trim(text, "'\"`"), int(source.StartPosition().Row)+1)
	}
	return c.result()
}
