package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/version"
)

// loadConfigWithOverrides loads configuration for --root and applies the
// global CLI flag overrides on top of it
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	cfg, err := config.Load(root, c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config for %s: %w", root, err)
	}

	if dirs := c.StringSlice("exclude-dir"); len(dirs) > 0 {
		cfg.Discovery.ExcludeDirs = config.DeduplicatePatterns(append(cfg.Discovery.ExcludeDirs, dirs...))
	}
	if exts := c.StringSlice("ext"); len(exts) > 0 {
		cfg.Discovery.Extensions = cfg.Discovery.Extensions[:0:0]
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Discovery.Extensions = append(cfg.Discovery.Extensions, ext)
		}
	}
	if c.IsSet("workers") {
		cfg.Performance.ParallelFileWorkers = c.Int("workers")
	}
	return cfg, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "crit",
		Usage:                  "Rank source files by architectural risk",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: <root>/.crit.kdl)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to analyze",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "exclude-dir",
				Usage: "Skip directories with this name (e.g., --exclude-dir fixtures --exclude-dir 'gen*')",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "Analyze only these extensions (e.g., --ext ts --ext tsx)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parallel extraction workers (0 = auto)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write component debug logs to stderr (a temp file under mcp)",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				os.Setenv("DEBUG", "1")
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:    "analyze",
				Aliases: []string{"a"},
				Usage:   "Build the dependency graph and print the risk report",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output the full report as JSON",
					},
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Output a single summary line",
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"n"},
						Usage:   "Number of critical components to report",
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Requested cluster count",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Clustering seed",
					},
					&cli.IntFlag{
						Name:  "budget-ms",
						Usage: "Time budget for discovery and extraction (0 = unlimited)",
					},
					&cli.StringFlag{
						Name:  "extractor",
						Usage: "Reference extractor: regex or treesitter",
					},
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Only print totals and critical components",
					},
					&cli.BoolFlag{
						Name:  "agent",
						Usage: "Mark risk tiers for agent consumption",
					},
					&cli.IntFlag{
						Name:  "max-rows",
						Usage: "Cap each list section (0 = unlimited)",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Re-run the analysis when files change",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:    "files",
				Aliases: []string{"f"},
				Usage:   "List the files that would be analyzed",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "absolute",
						Usage: "Print absolute paths instead of file ids",
					},
				},
				Action: filesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve analyze_risk and list_files over MCP stdio",
				Action: mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, version.FullInfo())
					fmt.Fprintln(c.App.Writer, "build id: "+version.BuildID())
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
