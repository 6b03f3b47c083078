// Package watch re-runs the analysis when source files under the root change.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/discovery"
	"github.com/standardbeagle/crit/internal/report"
	"github.com/standardbeagle/crit/pkg/pathutil"
)

// Runner produces a fresh report; *engine.Engine satisfies it
type Runner interface {
	Run(ctx context.Context) (*report.Report, error)
}

// ReportFunc receives each re-run result with the file ids that triggered it
type ReportFunc func(rep *report.Report, changed []string, err error)

// FileWatcher monitors the root and triggers a debounced re-run on change
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	config   *config.Config
	scanner  *discovery.FileScanner
	runner   Runner
	onReport ReportFunc
	debounce time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending map[string]struct{}

	// Watch mode statistics
	eventsProcessed int64
	runs            int64
	errorCount      int64
	lastRunTime     time.Time
	statsMu         sync.RWMutex
}

// NewFileWatcher creates a watcher. Nothing is watched until Start.
func NewFileWatcher(cfg *config.Config, scanner *discovery.FileScanner, runner Runner, onReport ReportFunc) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &FileWatcher{
		watcher:  watcher,
		config:   cfg,
		scanner:  scanner,
		runner:   runner,
		onReport: onReport,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start adds watches under the root and begins processing events. Runs
// happen on the event goroutine, so they never overlap.
func (fw *FileWatcher) Start(ctx context.Context) error {
	root := fw.config.Project.Root
	debug.Log(debug.ComponentWatch, "Starting file watcher for directory: %s\n", root)

	if err := fw.addWatches(root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	ctx, fw.cancel = context.WithCancel(ctx)
	fw.wg.Add(1)
	go fw.processEvents(ctx)
	return nil
}

// Stop cancels event processing, waits for an in-flight run and closes the watcher
func (fw *FileWatcher) Stop() error {
	if fw.cancel != nil {
		fw.cancel()
	}
	fw.wg.Wait()
	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("closing fsnotify watcher: %w", err)
	}
	debug.Log(debug.ComponentWatch, "File watcher stopped\n")
	return nil
}

// addWatches recursively adds watches under start to every directory discovery would walk
func (fw *FileWatcher) addWatches(start string) error {
	root := fw.config.Project.Root
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(start, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == start {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(p)
		if err != nil {
			return filepath.SkipDir
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if rel, ok := pathutil.FileID(p, root); ok && fw.scanner.ShouldExcludeDir(rel) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(p); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", p, err)
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer fw.wg.Done()

	// Reset and Stop never leave a stale tick behind (Go 1.23 timer semantics)
	timer := time.NewTimer(fw.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if fw.handleEvent(event) {
				timer.Reset(fw.debounce)
			}

		case <-timer.C:
			fw.flush(ctx)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 0, 1)
			log.Printf("File watcher error: %v", err)
		}
	}
}

// handleEvent records a relevant change and reports whether to (re)arm the debounce
func (fw *FileWatcher) handleEvent(event fsnotify.Event) bool {
	root := fw.config.Project.Root
	rel, ok := pathutil.FileID(event.Name, root)
	if !ok {
		return false
	}
	debug.Log(debug.ComponentWatch, "received %v for %s\n", event.Op, rel)

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create == 0 || fw.scanner.ShouldExcludeDir(rel) {
			return false
		}
		if err := fw.addWatches(event.Name); err != nil {
			log.Printf("Warning: failed to watch new directory %s: %v", rel, err)
		}
		// a directory moved in may already hold sources
		fw.pending[rel+"/"] = struct{}{}
		return true
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	relevant := fw.scanner.ShouldIncludeFile(rel)
	if !relevant && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && path.Ext(rel) == "" {
		// probably a removed directory
		relevant = !fw.scanner.ShouldExcludeDir(rel)
	}
	if !relevant {
		return false
	}
	fw.pending[rel] = struct{}{}
	fw.incrementStats(1, 0, 0)
	return true
}

// flush re-runs the analysis for everything collected since the last run
func (fw *FileWatcher) flush(ctx context.Context) {
	if len(fw.pending) == 0 {
		return
	}
	changed := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	clear(fw.pending)

	debug.Log(debug.ComponentWatch, "Re-running analysis for %d changed paths\n", len(changed))
	rep, err := fw.runner.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	errs := int64(0)
	if err != nil {
		errs = 1
	}
	fw.incrementStats(0, 1, errs)
	if fw.onReport != nil {
		fw.onReport(rep, changed, err)
	}
}

func (fw *FileWatcher) incrementStats(events, runs, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.runs += runs
	fw.errorCount += errors
	if runs > 0 {
		fw.lastRunTime = time.Now()
	}
}

// GetStats returns current watch mode statistics
func (fw *FileWatcher) GetStats() WatchStats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: fw.eventsProcessed,
		Runs:            fw.runs,
		ErrorCount:      fw.errorCount,
		LastRunTime:     fw.lastRunTime,
	}
}

// WatchStats contains statistics about watch mode
type WatchStats struct {
	EventsProcessed int64
	Runs            int64
	ErrorCount      int64
	LastRunTime     time.Time
}
