// Package pathutil converts between absolute filesystem paths and the
// root-relative, slash-separated paths used as file ids in reports.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/web/src/App.tsx", "/home/user/web") → "src/App.tsx"
//   - ToRelative("/other/location/App.tsx", "/home/user/web") → "/other/location/App.tsx" (outside root)
//   - ToRelative("src/App.tsx", "/home/user/web") → "src/App.tsx" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// FileID returns the slash separated root-relative id for absPath, and false
// when absPath is outside rootDir or is rootDir itself
func FileID(absPath, rootDir string) (string, bool) {
	if absPath == "" || rootDir == "" {
		return "", false
	}
	rel := ToRelative(absPath, rootDir)
	if rel == "." || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ToAbsolute joins a file id back onto rootDir
func ToAbsolute(fileID, rootDir string) string {
	if filepath.IsAbs(fileID) {
		return filepath.Clean(fileID)
	}
	return filepath.Join(rootDir, filepath.FromSlash(fileID))
}
