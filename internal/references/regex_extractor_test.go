package references

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/crit/internal/config"
	"github.com/standardbeagle/crit/internal/types"
)

var testAliases = []config.Alias{{Prefix: "@/", Target: "src/"}}

func TestRegexExtractor(t *testing.T) {
	content := `import React, { useState } from 'react';
import Button from "./Button";
import {
  Card,
  CardBody,
} from '../ui/card';
import type { Props } from './types';
import './styles.css';
import '@/polyfills';
export { helper } from "./helpers";
export * from './constants';
const Lazy = React.lazy(() => import('./pages/Lazy'));
const legacy = require("../legacy/index");
import lodash from 'lodash';
import Button2 from "./Button";
`
	e := NewRegexExtractor(testAliases, config.DefaultIgnoredReferenceExtensions())
	refs := e.Extract("src/App.tsx", []byte(content))

	assert.Equal(t, []types.Reference{
		{Specifier: "./Button", Line: 2},
		{Specifier: "../ui/card", Line: 3},
		{Specifier: "./types", Line: 7},
		{Specifier: "@/polyfills", Line: 9},
		{Specifier: "./helpers", Line: 10},
		{Specifier: "./constants", Line: 11},
		{Specifier: "./pages/Lazy", Line: 12},
		{Specifier: "../legacy/index", Line: 13},
	}, refs)
	assert.Equal(t, "regex", e.Name())
}

func TestRegexExtractorNoReferences(t *testing.T) {
	e := NewRegexExtractor(nil, nil)

	assert.Empty(t, e.Extract("a.ts", nil))
	assert.Empty(t, e.Extract("a.ts", []byte("export const x = 1;\nimport fs from 'fs';\n")))
}

func TestIsLocal(t *testing.T) {
	tests := map[string]bool{
		"./a":        true,
		"../a":       true,
		".":          true,
		"..":         true,
		"@/lib/a":    true,
		"@scope/pkg": false,
		"react":      false,
		"/abs/path":  false,
		".hidden":    false,
	}
	for spec, want := range tests {
		assert.Equal(t, want, IsLocal(spec, testAliases), spec)
	}
}

func TestLineAt(t *testing.T) {
	starts := lineStarts([]byte("ab\ncd\n\nef"))

	assert.Equal(t, []int{0, 3, 6, 7}, starts)
	assert.Equal(t, 1, lineAt(starts, 0))
	assert.Equal(t, 1, lineAt(starts, 2))
	assert.Equal(t, 2, lineAt(starts, 3))
	assert.Equal(t, 4, lineAt(starts, 8))
}
