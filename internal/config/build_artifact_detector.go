// Build artifact detection from language-specific configuration files.
// Parses package.json, tsconfig.json, Cargo.toml and pyproject.toml to find
// output directories that should never become graph nodes.
package config

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector finds build output directories declared by a project
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns sorted, de-duplicated directory names suitable for ExcludeDirs
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var dirs []string
	dirs = append(dirs, bad.detectPackageJSON()...)
	dirs = append(dirs, bad.detectTSConfig()...)
	dirs = append(dirs, bad.detectCargo()...)
	dirs = append(dirs, bad.detectPyProject()...)

	cleaned := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if name := outputDirName(d); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	cleaned = DeduplicatePatterns(cleaned)
	sort.Strings(cleaned)
	return cleaned
}

// outputDirName reduces "./dist/esm/" to "dist". Roots and parent escapes are dropped.
func outputDirName(dir string) string {
	dir = strings.Trim(strings.TrimSpace(filepath.ToSlash(dir)), "\"'")
	dir = path.Clean(dir)
	if dir == "." || dir == "/" || dir == "" || strings.HasPrefix(dir, "..") || path.IsAbs(dir) {
		return ""
	}
	first, _, _ := strings.Cut(dir, "/")
	return first
}

func (bad *BuildArtifactDetector) readJSON(name string) map[string]interface{} {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, name))
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if json.Unmarshal(data, &doc) != nil {
		return nil
	}
	return doc
}

func (bad *BuildArtifactDetector) readTOML(name string) map[string]interface{} {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, name))
	if err != nil {
		return nil
	}
	var doc map[string]interface{}
	if toml.Unmarshal(data, &doc) != nil {
		return nil
	}
	return doc
}

// detectPackageJSON looks for --outDir in scripts and a build.outDir block
func (bad *BuildArtifactDetector) detectPackageJSON() []string {
	pkg := bad.readJSON("package.json")
	if pkg == nil {
		return nil
	}

	var dirs []string
	if scripts, ok := pkg["scripts"].(map[string]interface{}); ok {
		for _, script := range scripts {
			s, ok := script.(string)
			if !ok {
				continue
			}
			parts := strings.Fields(s)
			for i, part := range parts {
				if (part == "--outDir" || part == "-outDir" || part == "--out-dir") && i+1 < len(parts) {
					dirs = append(dirs, parts[i+1])
				}
			}
		}
	}
	if build, ok := pkg["build"].(map[string]interface{}); ok {
		if outDir, ok := build["outDir"].(string); ok {
			dirs = append(dirs, outDir)
		}
	}
	return dirs
}

func (bad *BuildArtifactDetector) detectTSConfig() []string {
	tsconfig := bad.readJSON("tsconfig.json")
	if tsconfig == nil {
		return nil
	}
	if opts, ok := tsconfig["compilerOptions"].(map[string]interface{}); ok {
		if outDir, ok := opts["outDir"].(string); ok {
			return []string{outDir}
		}
	}
	return nil
}

func (bad *BuildArtifactDetector) detectCargo() []string {
	cargo := bad.readTOML("Cargo.toml")
	if cargo == nil {
		return nil
	}
	var dirs []string
	if build, ok := cargo["build"].(map[string]interface{}); ok {
		if targetDir, ok := build["target-dir"].(string); ok {
			dirs = append(dirs, targetDir)
		}
	}
	if profile, ok := cargo["profile"].(map[string]interface{}); ok {
		if release, ok := profile["release"].(map[string]interface{}); ok {
			if targetDir, ok := release["target-dir"].(string); ok {
				dirs = append(dirs, targetDir)
			}
		}
	}
	return dirs
}

func (bad *BuildArtifactDetector) detectPyProject() []string {
	pyproject := bad.readTOML("pyproject.toml")
	if pyproject == nil {
		return nil
	}
	tool, ok := pyproject["tool"].(map[string]interface{})
	if !ok {
		return nil
	}
	if poetry, ok := tool["poetry"].(map[string]interface{}); ok {
		if build, ok := poetry["build"].(map[string]interface{}); ok {
			if targetDir, ok := build["target-dir"].(string); ok {
				return []string{targetDir}
			}
		}
	}
	return nil
}
