package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/crit/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// MCPMode tracks if we're running as an MCP server (set by main)
var MCPMode = false

// debugOutput is the writer for debug output (nil means no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// Component names used across the engine
const (
	ComponentDiscovery  = "DISCOVERY"
	ComponentExtraction = "EXTRACT"
	ComponentGraph      = "GRAPH"
	ComponentCluster    = "CLUSTER"
	ComponentEngine     = "ENGINE"
	ComponentWatch      = "WATCH"
	ComponentMCP        = "MCP"
)

// SetMCPMode enables MCP mode which suppresses all debug output
func SetMCPMode(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	MCPMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile sends debug output to a timestamped file under the temp dir.
// Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "crit-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// IsDebugEnabled returns true if debug mode is enabled. MCP mode disables it
// unless output goes to a log file.
func IsDebugEnabled() bool {
	debugMutex.Lock()
	silenced := MCPMode && debugFile == nil
	debugMutex.Unlock()
	if silenced {
		return false
	}

	if EnableDebug == "true" {
		return true
	}

	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[DEBUG] "+format, args...)
	}
}

// Log writes a component-scoped debug line
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogDiscovery logs file discovery decisions
func LogDiscovery(format string, args ...interface{}) {
	Log(ComponentDiscovery, format, args...)
}

// LogExtraction logs per-file reference and feature extraction
func LogExtraction(format string, args ...interface{}) {
	Log(ComponentExtraction, format, args...)
}

// LogGraph logs graph construction and centrality
func LogGraph(format string, args ...interface{}) {
	Log(ComponentGraph, format, args...)
}

// LogCluster logs clustering iterations
func LogCluster(format string, args ...interface{}) {
	Log(ComponentCluster, format, args...)
}

// LogEngine logs pipeline stage transitions
func LogEngine(format string, args ...interface{}) {
	Log(ComponentEngine, format, args...)
}

// LogMCP logs MCP tool calls
func LogMCP(format string, args ...interface{}) {
	Log(ComponentMCP, format, args...)
}
