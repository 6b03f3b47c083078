// Binary content detection for early rejection of non-text files that carry
// a source extension (mislabelled assets, compiled blobs).
package discovery

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/crit/internal/types"
)

// BinaryDetector rejects files that are not source text
type BinaryDetector struct {
	binaryExtensions map[string]bool
}

// magic numbers of formats that show up under source trees
var binarySignatures = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x50, 0x4B, 0x05, 0x06}, // empty zip
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x47, 0x49, 0x46, 0x38}, // gif
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0x4D, 0x5A},             // windows executable
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o / java class
	{0x77, 0x4F, 0x46, 0x46}, // woff
	{0x77, 0x4F, 0x46, 0x32}, // woff2
	{0x00, 0x61, 0x73, 0x6D}, // wasm
}

// NewBinaryDetector creates a detector with the common asset extensions
func NewBinaryDetector() *BinaryDetector {
	exts := []string{
		".woff", ".woff2", ".ttf", ".otf", ".eot",
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp", ".tiff",
		".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar",
		".exe", ".dll", ".so", ".dylib", ".a", ".o", ".wasm", ".node",
		".mp3", ".mp4", ".mov", ".wav", ".ogg", ".webm",
		".pdf", ".sqlite", ".db",
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return &BinaryDetector{binaryExtensions: m}
}

// IsBinaryByExtension checks if a file is binary based on its extension
func (bd *BinaryDetector) IsBinaryByExtension(path string) bool {
	return bd.binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsBinaryContent sniffs the first bytes of content for signatures and control bytes
func (bd *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content[:min(len(content), types.BinaryPreCheckBytes)]

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}

	nullBytes, nonPrintable := 0, 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		// bytes >= 0x80 may be UTF-8 and are not counted
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonPrintable++
		}
	}
	return nullBytes > len(sample)/100 || nonPrintable > len(sample)*30/100
}
