package files

import (
	"path/filepath"
	"sort"
	"strings"
)

// Patterns maps a search pattern key (e.g. "glimpse/err_spl") to the filename
// globs it matches. Modules contribute their defaults and the config file may
// overlay individual keys.
type Patterns map[string][]string

// MergePatterns lays overlay entries over base, returning a new map. An
// overlay key replaces the base globs for that key wholesale.
func MergePatterns(base Patterns, overlay map[string][]string) Patterns {
	merged := make(Patterns, len(base)+len(overlay))
	for key, globs := range base {
		merged[key] = append([]string(nil), globs...)
	}
	for key, globs := range overlay {
		merged[key] = append([]string(nil), globs...)
	}
	return merged
}

// Keys returns the pattern keys in sorted order, for deterministic walks
// and summaries.
func (p Patterns) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Match returns the keys whose globs match the filename. A file may satisfy
// several patterns and is then handed to each of them.
func (p Patterns) Match(filename string) []string {
	var matched []string
	for _, key := range p.Keys() {
		for _, glob := range p[key] {
			if ok, err := filepath.Match(glob, filename); err == nil && ok {
				matched = append(matched, key)
				break
			}
		}
	}
	return matched
}

// matchAny reports whether filename matches any of the globs. Invalid globs
// never match.
func matchAny(globs []string, filename string) bool {
	for _, glob := range globs {
		if ok, err := filepath.Match(glob, filename); err == nil && ok {
			return true
		}
	}
	return false
}

// SampleNameFromFilename derives the sample name by trimming the matched
// glob's literal suffix: "NA12878.error.spl.txt.gz" with glob
// "*.error.spl.txt.gz" yields "NA12878". Globs that are not a plain
// "*<suffix>" shape fall back to trimming a trailing .gz plus one extension,
// which keeps dotted sample names like "NA12878.rep2" intact.
func SampleNameFromFilename(filename string, globs []string) string {
	for _, glob := range globs {
		if !strings.HasPrefix(glob, "*") {
			continue
		}
		suffix := glob[1:]
		if strings.ContainsAny(suffix, "*?[") {
			continue
		}
		if strings.HasSuffix(filename, suffix) && len(filename) > len(suffix) {
			return strings.TrimSuffix(filename, suffix)
		}
	}

	name := strings.TrimSuffix(filename, ".gz")
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
