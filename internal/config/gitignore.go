package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches slash-separated relative paths against .gitignore rules.
// Rules are evaluated in order and the last match wins, so negations can re-include.
type GitignoreParser struct {
	patterns []GitignorePattern
}

type GitignorePattern struct {
	Pattern   string // cleaned pattern without modifiers
	Negate    bool   // leading "!"
	Directory bool   // trailing "/": only matches directories and their contents
	Anchored  bool   // contains a "/" before the end: relative to the root

	globs []string
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from root/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	return gp.Parse(file)
}

// Parse reads patterns from r, one per line
func (gp *GitignoreParser) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern adds a single pattern line; blanks and comments are ignored
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := GitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasPrefix(line, `\`) {
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.Contains(line, "/") {
		p.Anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if line == "" {
		return
	}

	p.Pattern = line
	if p.Anchored {
		p.globs = []string{line}
	} else {
		p.globs = []string{line, "**/" + line}
	}
	gp.patterns = append(gp.patterns, p)
}

// ShouldIgnore reports whether relPath (slash separated, relative to the root) is ignored
func (gp *GitignoreParser) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")
	ignored := false
	for i := range gp.patterns {
		if gp.patterns[i].matches(relPath, isDir) {
			ignored = !gp.patterns[i].Negate
		}
	}
	return ignored
}

// PatternCount returns the number of loaded rules
func (gp *GitignoreParser) PatternCount() int {
	return len(gp.patterns)
}

func (p *GitignorePattern) matches(relPath string, isDir bool) bool {
	for _, g := range p.globs {
		if (isDir || !p.Directory) && globMatch(g, relPath) {
			return true
		}
		// Anything below a matched directory is ignored too
		if globMatch(g+"/**", relPath) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
