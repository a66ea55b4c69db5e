package convert

import (
	"path/filepath"
	"strings"
)

// DefaultExtension is the extension given to converted files.
const DefaultExtension = "vsgt"

// FilenameMap rewrites source file references to their converted names.
type FilenameMap struct {
	extension string
	names     map[string]string
	stats     *Stats
}

// NewFilenameMap creates a map that replaces extensions with ext.
func NewFilenameMap(ext string, stats *Stats) *FilenameMap {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &FilenameMap{extension: ext, names: make(map[string]string), stats: stats}
}

// Map returns name with its extension replaced. Empty names stay empty.
func (m *FilenameMap) Map(name string) string {
	if name == "" {
		return ""
	}
	if mapped, ok := m.names[name]; ok {
		return mapped
	}

	mapped := strings.TrimSuffix(name, filepath.Ext(name)) + "." + m.extension
	m.names[name] = mapped
	m.stats.FilenamesRemapped++
	return mapped
}

// Entries returns a copy of every mapping made so far.
func (m *FilenameMap) Entries() map[string]string {
	out := make(map[string]string, len(m.names))
	for k, v := range m.names {
		out[k] = v
	}
	return out
}
