package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	criterrors "github.com/standardbeagle/crit/internal/errors"
)

// Candidate is a discovered file that passed every filter
type Candidate struct {
	Path    string // slash separated, relative to the root
	AbsPath string
	Size    int64
}

// ScanStats counts what the walk filtered out
type ScanStats struct {
	DirsVisited       int
	DirsPruned        int
	FilesExcluded     int
	SymlinkCycles     int
	BinaryByExtension int
}

// FileScanner enumerates candidate files under a root
type FileScanner struct {
	config          *config.Config
	gitignoreParser *config.GitignoreParser
	binaryDetector  *BinaryDetector
}

// NewFileScanner creates a scanner for cfg, loading .gitignore when enabled
func NewFileScanner(cfg *config.Config) (*FileScanner, error) {
	fs := &FileScanner{
		config:         cfg,
		binaryDetector: NewBinaryDetector(),
	}

	for _, pattern := range append(append([]string{}, cfg.Discovery.ExcludeNames...), cfg.Discovery.Include...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, criterrors.NewConfigError("discovery", "pattern", fmt.Errorf("invalid glob %q", pattern))
		}
	}

	if cfg.Discovery.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Project.Root); err != nil {
			debug.LogDiscovery("Ignoring unreadable .gitignore: %v\n", err)
		} else {
			fs.gitignoreParser = gp
		}
	}
	return fs, nil
}

// BinaryDetector exposes the detector used for content sniffing after read
func (fs *FileScanner) BinaryDetector() *BinaryDetector {
	return fs.binaryDetector
}

// CheckRoot verifies the root can be analyzed at all. This is the only fatal condition.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return criterrors.NewRootError(root, criterrors.ErrRootNotFound)
		}
		return criterrors.NewRootError(root, fmt.Errorf("%w: %v", criterrors.ErrRootUnreadable, err))
	}
	if !info.IsDir() {
		return criterrors.NewRootError(root, criterrors.ErrRootNotDirectory)
	}
	f, err := os.Open(root)
	if err != nil {
		return criterrors.NewRootError(root, fmt.Errorf("%w: %v", criterrors.ErrRootUnreadable, err))
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return criterrors.NewRootError(root, fmt.Errorf("%w: %v", criterrors.ErrRootUnreadable, err))
	}
	return nil
}

// Scan walks the configured root and returns candidates sorted by path.
// When ctx ends mid-walk, the candidates found so far are returned with ctx.Err().
func (fs *FileScanner) Scan(ctx context.Context) ([]Candidate, ScanStats, error) {
	root := fs.config.Project.Root
	if err := CheckRoot(root); err != nil {
		return nil, ScanStats{}, err
	}

	w := &walker{
		scanner: fs,
		root:    root,
		visited: make(map[string]bool),
	}
	err := w.walkDir(ctx, root, "")

	sort.Slice(w.found, func(i, j int) bool { return w.found[i].Path < w.found[j].Path })
	debug.LogDiscovery("Found %d candidates under %s (pruned %d dirs, excluded %d files)\n",
		len(w.found), root, w.stats.DirsPruned, w.stats.FilesExcluded)
	return w.found, w.stats, err
}

type walker struct {
	scanner *FileScanner
	root    string
	visited map[string]bool
	found   []Candidate
	stats   ScanStats
}

func (w *walker) walkDir(ctx context.Context, absDir, relDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Track real paths so symlink cycles terminate
	realPath, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		debug.LogDiscovery("Skipping unresolvable directory %s: %v\n", absDir, err)
		return nil
	}
	if w.visited[realPath] {
		w.stats.SymlinkCycles++
		debug.LogDiscovery("Cycle detected, skipping %s -> %s\n", absDir, realPath)
		return nil
	}
	w.visited[realPath] = true
	w.stats.DirsVisited++

	entries, err := os.ReadDir(absDir)
	if err != nil {
		// Unreadable subdirectories are skipped; only the root is fatal
		debug.LogDiscovery("Cannot read directory %s: %v\n", absDir, err)
		return nil
	}

	for _, entry := range entries {
		absPath := filepath.Join(absDir, entry.Name())
		relPath := entry.Name()
		if relDir != "" {
			relPath = relDir + "/" + entry.Name()
		}

		isDir := entry.IsDir()
		isFile := entry.Type().IsRegular()
		var size int64

		if entry.Type()&os.ModeSymlink != 0 {
			if !w.scanner.config.Discovery.FollowSymlinks {
				continue
			}
			info, err := os.Stat(absPath)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
			isFile = info.Mode().IsRegular()
			size = info.Size()
		}

		if isDir {
			if w.scanner.ShouldExcludeDir(relPath) {
				w.stats.DirsPruned++
				continue
			}
			if err := w.walkDir(ctx, absPath, relPath); err != nil {
				return err
			}
			continue
		}
		if !isFile {
			continue
		}

		if !w.scanner.ShouldIncludeFile(relPath) {
			w.stats.FilesExcluded++
			continue
		}
		if w.scanner.binaryDetector.IsBinaryByExtension(relPath) {
			w.stats.BinaryByExtension++
			continue
		}
		if size == 0 {
			if info, err := entry.Info(); err == nil {
				size = info.Size()
			}
		}
		w.found = append(w.found, Candidate{Path: relPath, AbsPath: absPath, Size: size})
	}
	return nil
}

// ShouldExcludeDir reports whether a directory (slash separated, relative) is pruned
func (fs *FileScanner) ShouldExcludeDir(relPath string) bool {
	base := relPath
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		base = relPath[i+1:]
	}
	for _, pattern := range fs.config.Discovery.ExcludeDirs {
		if strings.Contains(pattern, "/") {
			if matchGlob(pattern, relPath) {
				return true
			}
			continue
		}
		if matchGlob(pattern, base) {
			return true
		}
	}
	return fs.gitignoreParser != nil && fs.gitignoreParser.ShouldIgnore(relPath, true)
}

// ShouldIncludeFile applies extension, name-pattern, include and gitignore filters
func (fs *FileScanner) ShouldIncludeFile(relPath string) bool {
	d := &fs.config.Discovery
	if !d.HasExtension(relPath) {
		return false
	}

	base := relPath
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		base = relPath[i+1:]
	}
	for _, pattern := range d.ExcludeNames {
		target := base
		if strings.Contains(pattern, "/") {
			target = relPath
		}
		if matchGlob(pattern, target) {
			return false
		}
	}

	if len(d.Include) > 0 {
		included := false
		for _, pattern := range d.Include {
			if matchGlob(pattern, relPath) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	return fs.gitignoreParser == nil || !fs.gitignoreParser.ShouldIgnore(relPath, false)
}

func matchGlob(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
