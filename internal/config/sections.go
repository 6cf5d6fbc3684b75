package config

import (
	"fmt"
	"sort"
	"strings"
)

// UpsertSectionValues sets keys inside a [section] table of an existing
// TOML document. Keys already present are rewritten in place, other keys
// in the table are left alone, and missing keys are appended to the end
// of the table. The table is created when absent.
func UpsertSectionValues(existing, section string, values map[string]any) (string, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return "", fmt.Errorf("section is required")
	}
	if len(values) == 0 {
		return existing, nil
	}

	lines := strings.Split(existing, "\n")
	start, end := findSection(lines, section)

	if start == -1 {
		out := strings.TrimRight(existing, "\n")
		block := []string{"[" + section + "]"}
		for _, k := range sortedKeys(values) {
			block = append(block, k+" = "+tomlValue(values[k]))
		}
		if out != "" {
			out += "\n\n"
		}
		return out + strings.Join(block, "\n") + "\n", nil
	}

	written := make(map[string]bool, len(values))
	out := make([]string, 0, len(lines)+len(values))
	out = append(out, lines[:start+1]...)
	for i := start + 1; i < end; i++ {
		key, ok := parseTOMLKey(lines[i])
		if ok {
			if val, set := values[key]; set {
				out = append(out, key+" = "+tomlValue(val))
				written[key] = true
				continue
			}
		}
		out = append(out, lines[i])
	}

	// Insert missing keys before any trailing blank lines of the table.
	insertAt := len(out)
	for insertAt > start+1 && strings.TrimSpace(out[insertAt-1]) == "" {
		insertAt--
	}
	var add []string
	for _, k := range sortedKeys(values) {
		if !written[k] {
			add = append(add, k+" = "+tomlValue(values[k]))
		}
	}
	tail := append([]string{}, out[insertAt:]...)
	out = append(out[:insertAt], add...)
	out = append(out, tail...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), nil
}

// findSection returns the header line index of [section] and the index of
// the next table header (or len(lines)). start is -1 when absent.
func findSection(lines []string, section string) (int, int) {
	start := -1
	for i, line := range lines {
		name, ok := sectionName(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if start != -1 {
			return start, i
		}
		if name == section {
			start = i
		}
	}
	return start, len(lines)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
