package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/report"
	"github.com/standardbeagle/crit/testhelpers"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := testhelpers.NewTree(t, map[string]string{
		"A.tsx":          testhelpers.Component("A", "./B", "./C"),
		"B.tsx":          testhelpers.Component("B", "./D"),
		"C.tsx":          testhelpers.Component("C"),
		"D.tsx":          testhelpers.Component("D"),
		"notes/todo.txt": "not source",
	})
	s, err := NewServer(testhelpers.NewTestConfigBuilder(root).Build())
	require.NoError(t, err)
	return s, root
}

func callRequest(t *testing.T, args interface{}) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)

	cfg := config.Default(t.TempDir())
	cfg.Scoring.HighThreshold = 0.2
	cfg.Scoring.MediumThreshold = 0.5
	_, err = NewServer(cfg)
	assert.Error(t, err)
}

func TestAnalyzeRiskReturnsReport(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, map[string]interface{}{"top": 2}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rep))
	assert.Equal(t, 4, rep.FilesScanned)
	require.Len(t, rep.CriticalComponents, 2)
	assert.Equal(t, "B.tsx", rep.CriticalComponents[0].FileID)
	assert.Equal(t, 3, rep.Graph.EdgeCount)
}

func TestAnalyzeRiskWithoutArguments(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleAnalyzeRisk(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{}})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestAnalyzeRiskIsDeterministicForSeed(t *testing.T) {
	s, _ := newTestServer(t)
	args := map[string]interface{}{"k": 2, "seed": 7}

	first, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, args))
	require.NoError(t, err)
	second, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, args))
	require.NoError(t, err)
	assert.Equal(t, resultText(t, first), resultText(t, second))
}

func TestAnalyzeRiskDoesNotMutateServerConfig(t *testing.T) {
	s, _ := newTestServer(t)
	before := *s.cfg

	_, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, map[string]interface{}{"top": 1, "k": 3, "seed": 99}))
	require.NoError(t, err)
	assert.Equal(t, before.Report.TopN, s.cfg.Report.TopN)
	assert.Equal(t, before.Clustering.K, s.cfg.Clustering.K)
	assert.Equal(t, before.Clustering.Seed, s.cfg.Clustering.Seed)
}

func TestAnalyzeRiskCompactFormat(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, map[string]interface{}{"format": "compact"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "B.tsx")
	assert.False(t, strings.HasPrefix(resultText(t, res), "{"))
}

func TestAnalyzeRiskErrorsAreToolResults(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args interface{}
	}{
		{"negative top", map[string]interface{}{"top": -1}},
		{"unknown format", map[string]interface{}{"format": "yaml"}},
		{"missing root", map[string]interface{}{"root": "/definitely/not/here"}},
		{"malformed arguments", "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)

			var payload map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
			assert.Equal(t, ToolAnalyzeRisk, payload["operation"])
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestAnalyzeRiskOtherRoot(t *testing.T) {
	s, _ := newTestServer(t)
	other := testhelpers.NewTree(t, map[string]string{
		"x.ts": testhelpers.Component("X", "./y"),
		"y.ts": testhelpers.Component("Y"),
	})

	res, err := s.handleAnalyzeRisk(context.Background(), callRequest(t, map[string]interface{}{"root": other}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rep))
	assert.Equal(t, 2, rep.FilesScanned)
	assert.Equal(t, 1, rep.Graph.EdgeCount)
}

func TestListFiles(t *testing.T) {
	s, root := newTestServer(t)

	res, err := s.handleListFiles(context.Background(), callRequest(t, map[string]interface{}{}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var resp ListFilesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
	assert.Equal(t, root, resp.Root)
	assert.Equal(t, 4, resp.Count)
	paths := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		paths = append(paths, f.Path)
		assert.Positive(t, f.Size)
	}
	assert.Equal(t, []string{"A.tsx", "B.tsx", "C.tsx", "D.tsx"}, paths)
}

func TestListFilesMissingRoot(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleListFiles(context.Background(), callRequest(t, map[string]interface{}{"root": "/definitely/not/here"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := clientSession.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolAnalyzeRisk, ToolListFiles}, names)

	res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolAnalyzeRisk,
		Arguments: map[string]any{"top": 1},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"B.tsx"`)

	require.NoError(t, clientSession.Close())
	_ = serverSession.Wait()
}
