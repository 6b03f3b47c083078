package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/discovery"
	"github.com/standardbeagle/crit/internal/display"
	"github.com/standardbeagle/crit/internal/engine"
	"github.com/standardbeagle/crit/internal/mcp"
	"github.com/standardbeagle/crit/internal/report"
	"github.com/standardbeagle/crit/internal/watch"
	"github.com/standardbeagle/crit/pkg/pathutil"
)

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func analyzeConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	if c.IsSet("top") {
		cfg.Report.TopN = c.Int("top")
	}
	if c.IsSet("k") {
		cfg.Clustering.K = c.Int("k")
	}
	if c.IsSet("seed") {
		cfg.Clustering.Seed = c.Int64("seed")
	}
	if c.IsSet("budget-ms") {
		cfg.Performance.BudgetMs = c.Int("budget-ms")
	}
	if c.IsSet("extractor") {
		cfg.References.Extractor = c.String("extractor")
	}
	return cfg, nil
}

func formatterFor(c *cli.Context) *display.ReportFormatter {
	format := "text"
	switch {
	case c.Bool("json"):
		format = "json"
	case c.Bool("compact"):
		format = "compact"
	}
	details := !c.Bool("summary")
	return display.NewReportFormatter(display.FormatterOptions{
		Format:            format,
		ShowClusters:      details,
		ShowGraph:         details,
		ShowOrphans:       details,
		ShowOpportunities: details,
		AgentMode:         c.Bool("agent"),
		MaxRows:           c.Int("max-rows"),
	})
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := analyzeConfig(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	formatter := formatterFor(c)

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	rep, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	printReport(c, formatter, rep)

	if !c.Bool("watch") {
		return nil
	}
	return watchAndReport(ctx, c, cfg, eng, formatter)
}

func printReport(c *cli.Context, formatter *display.ReportFormatter, rep *report.Report) {
	out := formatter.Format(rep)
	fmt.Fprint(c.App.Writer, out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(c.App.Writer)
	}
}

// watchAndReport blocks until ctx is cancelled, printing a fresh report
// after each debounced batch of changes
func watchAndReport(ctx context.Context, c *cli.Context, cfg *config.Config, eng *engine.Engine, formatter *display.ReportFormatter) error {
	scanner, err := discovery.NewFileScanner(eng.Config())
	if err != nil {
		return err
	}
	onReport := func(rep *report.Report, changed []string, runErr error) {
		if runErr != nil {
			fmt.Fprintf(c.App.ErrWriter, "analysis failed: %v\n", runErr)
			return
		}
		fmt.Fprintf(c.App.Writer, "\n--- %s: %d changed path(s)\n", time.Now().Format(time.TimeOnly), len(changed))
		printReport(c, formatter, rep)
	}

	watcher, err := watch.NewFileWatcher(eng.Config(), scanner, eng, onReport)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "watching %s (Ctrl+C to stop)\n", cfg.Project.Root)

	<-ctx.Done()
	stats := watcher.GetStats()
	debug.Log(debug.ComponentWatch, "events=%d runs=%d errors=%d\n", stats.EventsProcessed, stats.Runs, stats.ErrorCount)
	return watcher.Stop()
}

type fileListing struct {
	Root  string   `json:"root"`
	Count int      `json:"count"`
	Files []string `json:"files"`
}

func filesCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	candidates, err := eng.Discover(ctx)
	if err != nil {
		return err
	}

	listing := fileListing{Root: cfg.Project.Root, Count: len(candidates), Files: make([]string, 0, len(candidates))}
	for _, cand := range candidates {
		path := cand.Path
		if c.Bool("absolute") {
			path = pathutil.ToAbsolute(path, cfg.Project.Root)
		}
		listing.Files = append(listing.Files, path)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}
	for _, path := range listing.Files {
		fmt.Fprintln(c.App.Writer, path)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d files\n", listing.Count)
	return nil
}

func mcpCommand(c *cli.Context) error {
	// stdout belongs to the protocol from here on
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}

	logger := mcp.NewDiagnosticLogger(true)
	defer logger.Close()
	server.SetDiagnosticLogger(logger)

	if c.Bool("debug") {
		path, err := debug.InitDebugLogFile()
		if err != nil {
			return err
		}
		defer debug.CloseDebugLog()
		logger.Printf("debug log at %s", path)
	}
	debug.Printf("serving %s, diagnostics at %s\n", cfg.Project.Root, logger.LogPath())

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("server stopped: %v", err)
		return err
	}
	return nil
}
