// Package testhelpers provides shared utilities for testing the risk engine
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteTree writes files (slash separated relative path -> content) under root
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// NewTree creates a temp dir populated with files and returns its path
func NewTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// Component returns a small React component body that imports the given specifiers
func Component(name string, imports ...string) string {
	src := ""
	for i, spec := range imports {
		src += "import Dep" + string(rune('A'+i)) + " from '" + spec + "';\n"
	}
	src += "\nexport function " + name + "() {\n  return <div className=\"" + name + "\" />;\n}\n"
	return src
}

// WaitFor polls condition until it holds or timeout elapses
func WaitFor(t testing.TB, condition func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
