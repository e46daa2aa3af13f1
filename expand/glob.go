// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shellgei/gosh/syntax"
)

// glob expands a pathname pattern relative to dir, returning matching paths
// relative to dir if the pattern was relative, or absolute otherwise.
func (cfg *Config) glob(dir, pattern string) []string {
	abs := filepath.IsAbs(pattern)
	full := pattern
	if !abs {
		full = filepath.Join(dir, pattern)
	}
	matches := cfg.globAbs(full)
	if abs {
		return matches
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		endSep := strings.HasSuffix(m, string(filepath.Separator))
		rel, err := filepath.Rel(dir, m)
		if err != nil {
			rel = m
		}
		if endSep {
			rel += string(filepath.Separator)
		}
		out[i] = rel
	}
	return out
}

func (cfg *Config) globAbs(pattern string) []string {
	parts := strings.Split(pattern, string(filepath.Separator))
	matches := []string{"."}
	if filepath.IsAbs(pattern) {
		if parts[0] == "" {
			matches[0] = string(filepath.Separator)
		} else {
			matches[0] = parts[0] + string(filepath.Separator)
		}
		parts = parts[1:]
	}
	var rxGlobStar = regexp.MustCompile(".*")
	for _, part := range parts {
		if part == "**" && cfg.GlobStar {
			for i := range matches {
				matches[i] += string(filepath.Separator)
			}
			latest := matches
			for {
				var newMatches []string
				for _, dir := range latest {
					newMatches = cfg.globDir(dir, rxGlobStar, newMatches)
				}
				if len(newMatches) == 0 {
					break
				}
				matches = append(matches, newMatches...)
				latest = newMatches
			}
			continue
		}
		expr, err := syntax.TranslatePattern(part, true)
		if err != nil {
			return nil
		}
		if cfg.NoCaseGlob {
			expr = "(?i)" + expr
		}
		rx, err := regexp.Compile("^" + expr + "$")
		if err != nil {
			return nil
		}
		var newMatches []string
		for _, dir := range matches {
			newMatches = cfg.globDir(dir, rx, newMatches)
		}
		matches = newMatches
	}
	return matches
}

func (cfg *Config) globDir(dir string, rx *regexp.Regexp, matches []string) []string {
	if cfg.ReadDir2 == nil {
		return matches
	}
	entries, err := cfg.ReadDir2(dir)
	if err != nil {
		return matches
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.HasPrefix(rx.String(), `^\.`) && !strings.HasPrefix(rx.String(), "(?i)^\\.") && name[0] == '.' {
			continue
		}
		if rx.MatchString(name) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches
}
