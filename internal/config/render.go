package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var lines []string
	lines = append(lines, "# Inkwell configuration (TOML)")

	top, sections, order := groupOptions(GetConfigOptions())
	for _, o := range top {
		writeOption(&lines, o)
	}
	for _, section := range order {
		lines = append(lines, "["+section+"]")
		for _, o := range sections[section] {
			writeOption(&lines, o)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// UpdateTOML merges defaults into an existing TOML string and comments out
// unknown keys. The boolean reports whether anything changed.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	present := make(map[string]bool)
	section := ""
	out := make([]string, 0)
	changed := false
	inMultiline := false

	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		if inMultiline {
			out = append(out, line)
			if strings.Contains(trim, "'''") {
				inMultiline = false
			}
			continue
		}
		if trim == "" || strings.HasPrefix(trim, "#") {
			out = append(out, line)
			continue
		}
		if name, ok := sectionName(trim); ok {
			section = name
			present[name] = true
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		full := key
		if section != "" {
			full = section + "." + key
		}
		if opensMultiline(line) {
			inMultiline = true
		}
		if !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		seen[full] = true
		out = append(out, line)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	top, sections, order := groupOptions(missing)
	doc := insertTopLevel(out, top)
	var fresh []string
	for _, s := range order {
		if !present[s] {
			fresh = append(fresh, s)
			continue
		}
		values := make(map[string]any, len(sections[s]))
		for _, o := range sections[s] {
			values[o.Key] = o.Default
		}
		doc, _ = UpsertSectionValues(doc, s, values)
	}
	if len(fresh) > 0 {
		lines := []string{strings.TrimRight(doc, "\n"), "", "# Added by config update"}
		for _, s := range fresh {
			lines = append(lines, "["+s+"]")
			for _, o := range sections[s] {
				writeOption(&lines, o)
			}
		}
		doc = strings.Join(lines, "\n")
	}
	return doc, true
}

// insertTopLevel places top-level options ahead of the first table header
// so they do not land inside a table.
func insertTopLevel(lines []string, opts []ConfigOption) string {
	if len(opts) == 0 {
		return strings.Join(lines, "\n")
	}
	at := len(lines)
	for i, line := range lines {
		if _, ok := sectionName(strings.TrimSpace(line)); ok {
			at = i
			break
		}
	}
	var block []string
	for _, o := range opts {
		writeOption(&block, o)
	}
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// groupOptions splits dotted keys into their first-level TOML table,
// keeping first-seen section order.
func groupOptions(opts []ConfigOption) ([]ConfigOption, map[string][]ConfigOption, []string) {
	var top []ConfigOption
	sections := make(map[string][]ConfigOption)
	var order []string
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, exists := sections[section]; !exists {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

func sectionName(trim string) (string, bool) {
	if !strings.HasPrefix(trim, "[") || !strings.HasSuffix(trim, "]") {
		return "", false
	}
	return strings.TrimSpace(trim[1 : len(trim)-1]), true
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

// opensMultiline reports whether a key line starts a ''' string that
// continues on following lines.
func opensMultiline(line string) bool {
	_, val, _ := strings.Cut(line, "=")
	val = strings.TrimSpace(val)
	return strings.HasPrefix(val, "'''") && strings.Count(val, "'''") == 1
}

func writeOption(lines *[]string, o ConfigOption) {
	if o.Comment != "" {
		*lines = append(*lines, "# "+o.Comment)
	}
	*lines = append(*lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		if strings.Contains(v, "\n") && !strings.Contains(v, "'''") {
			return "'''\n" + v + "'''"
		}
		return strconv.Quote(v)
	case bool, int, int64:
		return fmt.Sprintf("%v", v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
