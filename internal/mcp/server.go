package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/debug"
	"github.com/standardbeagle/crit/internal/display"
	"github.com/standardbeagle/crit/internal/engine"
	"github.com/standardbeagle/crit/internal/version"
)

// Tool names
const (
	ToolAnalyzeRisk = "analyze_risk"
	ToolListFiles   = "list_files"
)

// AnalyzeParams are the arguments of analyze_risk. Zero values keep the
// server configuration.
type AnalyzeParams struct {
	Root   string `json:"root,omitempty"`
	Top    int    `json:"top,omitempty"`
	K      int    `json:"k,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
	Format string `json:"format,omitempty"` // "json" (default) or "compact"
}

// ListFilesParams are the arguments of list_files
type ListFilesParams struct {
	Root string `json:"root,omitempty"`
}

// FileEntry is one discovered file in a list_files response
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ListFilesResponse is the list_files result
type ListFilesResponse struct {
	Root  string      `json:"root"`
	Count int         `json:"count"`
	Files []FileEntry `json:"files"`
}

// Server exposes the analysis engine as MCP tools over stdio
type Server struct {
	cfg              *config.Config
	server           *mcp.Server
	diagnosticLogger *DiagnosticLogger
}

// NewServer builds a server whose tools default to cfg
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:              cfg,
		diagnosticLogger: NoOpLogger,
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "crit",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s, nil
}

// SetDiagnosticLogger replaces the default no-op logger
func (s *Server) SetDiagnosticLogger(dl *DiagnosticLogger) {
	if dl == nil {
		dl = NoOpLogger
	}
	s.diagnosticLogger = dl
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name: ToolAnalyzeRisk,
		Description: "Rank source files by architectural risk. Builds the import graph, combines degree " +
			"and betweenness centrality with content complexity, clusters files by feature profile " +
			"and returns the full report.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Directory to analyze. Defaults to the server's project root.",
				},
				"top": {
					Type:        "integer",
					Description: "Number of critical components to return.",
				},
				"k": {
					Type:        "integer",
					Description: "Requested cluster count.",
				},
				"seed": {
					Type:        "integer",
					Description: "Clustering seed. The same seed and input give the same clusters.",
				},
				"format": {
					Type:        "string",
					Description: "json (full report) or compact (one line per component).",
					Enum:        []any{"json", "compact"},
				},
			},
		},
	}, s.handleAnalyzeRisk)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolListFiles,
		Description: "List the files that would be analyzed, after exclusions.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"root": {
					Type:        "string",
					Description: "Directory to scan. Defaults to the server's project root.",
				},
			},
		},
	}, s.handleListFiles)
}

// Start serves over stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	debug.SetMCPMode(true)
	s.diagnosticLogger.Printf("serving %s for %s", version.FullInfo(), s.cfg.Project.Root)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handleAnalyzeRisk(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeParams
	if err := decodeArguments(req, &params); err != nil {
		return createErrorResponse(ToolAnalyzeRisk, err)
	}
	if params.Top < 0 || params.K < 0 {
		return createErrorResponse(ToolAnalyzeRisk, errors.New("top and k must not be negative"))
	}
	if params.Format != "" && params.Format != "json" && params.Format != "compact" {
		return createErrorResponse(ToolAnalyzeRisk, fmt.Errorf("unknown format %q", params.Format))
	}

	cfg, err := s.configFor(params.Root)
	if err != nil {
		return createErrorResponse(ToolAnalyzeRisk, err)
	}
	if params.Top > 0 {
		cfg.Report.TopN = params.Top
	}
	if params.K > 0 {
		cfg.Clustering.K = params.K
	}
	if params.Seed != nil {
		cfg.Clustering.Seed = *params.Seed
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return createErrorResponse(ToolAnalyzeRisk, err)
	}
	debug.LogMCP("analyze_risk root=%s top=%d k=%d", cfg.Project.Root, cfg.Report.TopN, cfg.Clustering.K)

	rep, err := eng.Run(ctx)
	if err != nil {
		s.diagnosticLogger.Errorf("analyze_risk failed: %v", err)
		return createErrorResponse(ToolAnalyzeRisk, err)
	}
	if params.Format == "compact" {
		formatter := display.NewReportFormatter(display.FormatterOptions{Format: "compact"})
		return createTextResponse(formatter.Format(rep)), nil
	}
	return createJSONResponse(rep)
}

func (s *Server) handleListFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ListFilesParams
	if err := decodeArguments(req, &params); err != nil {
		return createErrorResponse(ToolListFiles, err)
	}

	cfg, err := s.configFor(params.Root)
	if err != nil {
		return createErrorResponse(ToolListFiles, err)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return createErrorResponse(ToolListFiles, err)
	}

	candidates, err := eng.Discover(ctx)
	if err != nil {
		return createErrorResponse(ToolListFiles, err)
	}

	resp := ListFilesResponse{
		Root:  cfg.Project.Root,
		Count: len(candidates),
		Files: make([]FileEntry, 0, len(candidates)),
	}
	for _, c := range candidates {
		resp.Files = append(resp.Files, FileEntry{Path: c.Path, Size: c.Size})
	}
	return createJSONResponse(resp)
}

// configFor returns a private copy of the configuration for one call. A root
// other than the server's loads that directory's own configuration.
func (s *Server) configFor(root string) (*config.Config, error) {
	if root == "" || root == s.cfg.Project.Root {
		cfg := *s.cfg
		return &cfg, nil
	}
	return config.Load(root, "")
}
