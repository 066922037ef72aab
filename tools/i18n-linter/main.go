// Copyright (c) 2026 ToeiRei
// Keysync - directory and SSH key lifecycle reconciliation
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the notification texts for consistency. It collects
// every i18n.T("...") key used by the Go sources and compares them against
// the locale files: keys used in code must exist in the primary locale,
// every locale must carry all primary keys, and the template placeholders
// of a translation must match the primary text.
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

var (
	usedKeyRe     = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	placeholderRe = regexp.MustCompile(`\{\{\s*\.(\w+)\s*\}\}`)
)

// report collects the findings of a lint pass.
type report struct {
	Undefined  []string            // used in code, absent from the primary locale
	Missing    map[string][]string // locale file -> primary keys it lacks
	Mismatched map[string][]string // locale file -> keys whose placeholders differ
	Orphaned   []string            // defined in the primary locale, never used
}

func (r report) failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0 || len(r.Mismatched) > 0
}

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	r, err := lint(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	writeReport(os.Stdout, r)
	if r.failed() {
		os.Exit(1)
	}
}

func lint(root string) (report, error) {
	r := report{Missing: map[string][]string{}, Mismatched: map[string][]string{}}

	used, err := findUsedKeys(root)
	if err != nil {
		return r, fmt.Errorf("scan sources: %w", err)
	}
	dir := filepath.Join(root, localesDir)
	primary, err := loadLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		return r, fmt.Errorf("load primary locale: %w", err)
	}

	for key := range used {
		if _, ok := primary[key]; !ok {
			r.Undefined = append(r.Undefined, key)
		}
	}
	for key := range primary {
		if _, ok := used[key]; !ok {
			r.Orphaned = append(r.Orphaned, key)
		}
	}
	sort.Strings(r.Undefined)
	sort.Strings(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, file := range files {
		name := filepath.Base(file)
		if name == primaryLocale {
			continue
		}
		other, err := loadLocale(file)
		if err != nil {
			return r, fmt.Errorf("load %s: %w", name, err)
		}
		for key, text := range primary {
			translated, ok := other[key]
			if !ok {
				r.Missing[name] = append(r.Missing[name], key)
				continue
			}
			if !samePlaceholders(text, translated) {
				r.Mismatched[name] = append(r.Mismatched[name], key)
			}
		}
		sort.Strings(r.Missing[name])
		sort.Strings(r.Mismatched[name])
		if len(r.Missing[name]) == 0 {
			delete(r.Missing, name)
		}
		if len(r.Mismatched[name]) == 0 {
			delete(r.Mismatched, name)
		}
	}
	return r, nil
}

// findUsedKeys scans non-test .go files below root for i18n.T calls.
// Directories starting with "_" or "." and the tools tree are skipped.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadLocale reads a locale file into a flat key -> text map. Nested maps
// are joined with dots, so both flat and nested layouts are accepted.
func loadLocale(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", data, out)
	return out, nil
}

func flatten(prefix string, node any, out map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func placeholders(text string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	sort.Strings(names)
	return names
}

func samePlaceholders(a, b string) bool {
	pa, pb := placeholders(a), placeholders(b)
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return false
		}
	}
	return true
}

func writeReport(w io.Writer, r report) {
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("Used in code but not defined in "+primaryLocale, r.Undefined)
	for _, name := range sortedKeys(r.Missing) {
		section("Missing in "+name, r.Missing[name])
	}
	for _, name := range sortedKeys(r.Mismatched) {
		section("Placeholder mismatch in "+name, r.Mismatched[name])
	}
	section("Orphaned (defined but unused)", r.Orphaned)
	if r.failed() {
		fmt.Fprintln(w, "i18n: FAILED")
	} else {
		fmt.Fprintln(w, "i18n: OK")
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
