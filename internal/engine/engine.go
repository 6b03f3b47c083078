// Package engine runs the full analysis: discovery, per-file extraction in
// parallel, then graph, ranking and clustering behind a barrier.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/crit/internal/analysis"
	"github.com/standardbeagle/crit/internal/cluster"
	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/discovery"
	criterrors "github.com/standardbeagle/crit/internal/errors"
	"github.com/standardbeagle/crit/internal/graph"
	"github.com/standardbeagle/crit/internal/ranking"
	"github.com/standardbeagle/crit/internal/references"
	"github.com/standardbeagle/crit/internal/report"
	"github.com/standardbeagle/crit/internal/types"
)

// SkipBudgetExceeded is the skip reason for files not reached before the budget ran out
const SkipBudgetExceeded = "budget_exceeded"

// Engine is reusable across runs; each Run reads the tree afresh
type Engine struct {
	cfg       *config.Config
	scanner   *discovery.FileScanner
	extractor references.Extractor
	pipeline  *analysis.Pipeline
	ranker    *ranking.Ranker
}

// Option customizes an Engine
type Option func(*Engine)

// WithPipeline replaces the default feature pipeline
func WithPipeline(p *analysis.Pipeline) Option {
	return func(e *Engine) { e.pipeline = p }
}

// WithExtractor replaces the reference extractor chosen by config
func WithExtractor(x references.Extractor) Option {
	return func(e *Engine) { e.extractor = x }
}

// New validates cfg and prepares the stages
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	scanner, err := discovery.NewFileScanner(cfg)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:       cfg,
		scanner:   scanner,
		extractor: references.New(cfg),
		pipeline:  analysis.DefaultPipeline(),
		ranker:    ranking.NewRanker(cfg.Scoring),
	}
	for _, opt := range opts {
		opt(e)
	}
	debug.LogEngine("Engine ready: root=%s extractor=%s workers=%d\n",
		cfg.Project.Root, e.extractor.Name(), cfg.Performance.ParallelFileWorkers)
	return e, nil
}

// Config returns the validated configuration
func (e *Engine) Config() *config.Config { return e.cfg }

// Discover lists candidate files without reading them
func (e *Engine) Discover(ctx context.Context) ([]discovery.Candidate, error) {
	candidates, _, err := e.scanner.Scan(ctx)
	return candidates, err
}

// fileResult is one extraction slot; exactly one of file/skip is set
type fileResult struct {
	file *types.SourceFile
	skip *report.Skipped
}

// Run analyzes the tree. The only errors are a bad root and cancellation of
// ctx itself; everything else degrades into diagnostics on the report.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	var diags []report.Diagnostic

	budgetCtx := ctx
	if ms := e.cfg.Performance.BudgetMs; ms > 0 {
		var cancel context.CancelFunc
		budgetCtx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}

	candidates, stats, err := e.scanner.Scan(budgetCtx)
	if err != nil {
		var rootErr *criterrors.RootError
		if errors.As(err, &rootErr) || ctx.Err() != nil {
			return nil, err
		}
		diags = append(diags, report.Diagnostic{
			Kind:    report.DiagDiscoveryIncomplete,
			Message: fmt.Sprintf("discovery stopped after %d files: %v", len(candidates), err),
		})
	}
	debug.LogEngine("Discovered %d candidates (%d dirs visited)\n", len(candidates), stats.DirsVisited)

	results := e.extractAll(budgetCtx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var files []types.SourceFile
	var skipped []report.Skipped
	budgetSkips := 0
	for _, r := range results {
		if r.skip != nil {
			skipped = append(skipped, *r.skip)
			if r.skip.Reason == SkipBudgetExceeded {
				budgetSkips++
			}
			continue
		}
		r.file.ID = types.FileID(len(files))
		files = append(files, *r.file)
	}
	if budgetSkips > 0 {
		diags = append(diags, report.Diagnostic{
			Kind:    report.DiagBudgetExceeded,
			Message: fmt.Sprintf("%d files not analyzed within %dms budget", budgetSkips, e.cfg.Performance.BudgetMs),
		})
	}

	g, orphans := e.link(candidates, files)
	debug.LogGraph("Graph: %d nodes, %d edges, %d orphans\n", g.NodeCount(), g.EdgeCount(), len(orphans))
	if g.NodeCount() > 0 && g.EdgeCount() == 0 {
		diags = append(diags, report.Diagnostic{
			Kind:    report.DiagDegenerateGraph,
			Message: "no resolved references between files; centrality is 0 everywhere",
		})
	}

	centrality, err := graph.Compute(ctx, g, e.cfg.Scoring.NormalizeOver)
	if err != nil {
		return nil, err
	}

	inputs := make([]ranking.Input, len(files))
	for i, f := range files {
		idx, _ := g.Index(f.Path)
		inputs[i] = ranking.Input{
			Path:          f.Path,
			Degree:        centrality.Degree[idx],
			Betweenness:   centrality.Betweenness[idx],
			RawComplexity: f.RawComplexity,
			InDegree:      g.InDegree(idx),
			OutDegree:     g.OutDegree(idx),
		}
	}
	records := e.ranker.Rank(inputs)
	tiers := make(map[string]types.RiskTier, len(records))
	for _, rec := range records {
		tiers[rec.FileID] = rec.RiskTier
	}

	samples := make([]cluster.Sample, len(files))
	for i, f := range files {
		samples[i] = cluster.Sample{ID: f.Path, Features: f.Features}
	}
	clusters := cluster.KMeans(samples, cluster.OptionsFrom(e.cfg.Clustering))
	debug.LogCluster("k-means: k=%d iterations=%d converged=%v\n", clusters.EffectiveK, clusters.Iterations, clusters.Converged)
	if len(files) > 0 && clusters.EffectiveK < e.cfg.Clustering.K {
		diags = append(diags, report.Diagnostic{
			Kind:    report.DiagInsufficientSamples,
			Message: fmt.Sprintf("%d samples for k=%d; clustered with k=%d", len(files), e.cfg.Clustering.K, clusters.EffectiveK),
		})
	}
	for i := range files {
		files[i].RiskTier = tiers[files[i].Path]
		files[i].ClusterID = clusters.Assignments[files[i].Path]
	}

	rep := report.Compose(report.Input{
		Files:       files,
		Records:     records,
		TopN:        e.cfg.Report.TopN,
		Clustering:  clusters,
		Importance:  cluster.FeatureImportance(samples),
		Graph:       g,
		Orphans:     orphans,
		Skipped:     skipped,
		Diagnostics: diags,
	})
	debug.LogEngine("Run finished in %v: scanned=%d skipped=%d\n", time.Since(start), rep.FilesScanned, rep.FilesSkipped)
	return rep, nil
}

// extractAll reads and analyzes candidates with bounded parallelism. Each
// worker writes only its own slot; g.Wait is the barrier before the graph.
func (e *Engine) extractAll(ctx context.Context, candidates []discovery.Candidate) []fileResult {
	results := make([]fileResult, len(candidates))
	var g errgroup.Group
	g.SetLimit(max(1, e.cfg.Performance.ParallelFileWorkers))
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = e.extractOne(ctx, c)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are skip slots
	return results
}

func (e *Engine) extractOne(ctx context.Context, c discovery.Candidate) fileResult {
	if ctx.Err() != nil {
		return skipped(c.Path, SkipBudgetExceeded)
	}
	if limit := e.cfg.Discovery.MaxFileSize; limit > 0 && c.Size > limit {
		debug.LogExtraction("Skipping %s: %d bytes exceeds %d\n", c.Path, c.Size, limit)
		return skipped(c.Path, string(criterrors.ErrorTypeTooLarge))
	}

	content, err := os.ReadFile(c.AbsPath)
	if err != nil {
		ferr := criterrors.NewFileReadError("read", c.Path, err)
		debug.LogExtraction("%v\n", ferr)
		return skipped(c.Path, ferr.Reason())
	}
	if ferr := e.checkEncoding(c.Path, content); ferr != nil {
		debug.LogExtraction("%v\n", ferr)
		return skipped(c.Path, ferr.Reason())
	}

	profile := e.pipeline.Analyze(c.Path, content)
	return fileResult{file: &types.SourceFile{
		Path:          c.Path,
		Size:          int64(len(content)),
		Digest:        xxhash.Sum64(content),
		Features:      profile.Features,
		RawComplexity: profile.RawComplexity,
		References:    e.extractor.Extract(c.Path, content),
	}}
}

func (e *Engine) checkEncoding(path string, content []byte) *criterrors.FileReadError {
	if e.scanner.BinaryDetector().IsBinaryContent(content) {
		return criterrors.NewEncodingError(path, "binary content")
	}
	if !utf8.Valid(content) {
		return criterrors.NewEncodingError(path, "not valid UTF-8")
	}
	return nil
}

func skipped(path, reason string) fileResult {
	return fileResult{skip: &report.Skipped{Path: path, Reason: reason}}
}

// link resolves every reference into an edge or an orphan. Specifiers are
// resolved against all discovered paths so a reference to a file that was
// skipped is neither an edge nor an orphan.
func (e *Engine) link(candidates []discovery.Candidate, files []types.SourceFile) (*graph.Graph, []report.Orphan) {
	discovered := make([]string, len(candidates))
	for i, c := range candidates {
		discovered[i] = c.Path
	}
	resolver := references.NewResolver(discovered, e.cfg.Discovery)

	b := graph.NewBuilder()
	for _, f := range files {
		b.AddNode(f.Path)
	}
	scanned := make(map[string]bool, len(files))
	for _, f := range files {
		scanned[f.Path] = true
	}

	var orphans []report.Orphan
	refs := e.cfg.References
	for _, f := range files {
		for _, ref := range f.References {
			res := resolver.Resolve(f.Path, ref.Specifier)
			switch {
			case res.Self:
			case res.Resolved:
				if scanned[res.Target] {
					b.AddEdge(f.Path, res.Target)
				}
			default:
				o := report.Orphan{From: f.Path, Specifier: ref.Specifier}
				if refs.SuggestOrphans && res.Attempted != "" {
					o.Suggestion = resolver.Suggest(res.Attempted, refs.SuggestionThreshold)
				}
				orphans = append(orphans, o)
			}
		}
	}
	return b.Build(), orphans
}
