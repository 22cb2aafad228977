// Package rules flattens arbitrarily shaped upstream rulings into uniform
// entries grouped by canonical section.
package rules

import (
	"github.com/tidwall/gjson"

	"karm/record"
)

// Entry is a single ruling. Source, Date and Version are optional metadata
// which end up in footnotes.
type Entry struct {
	Section Section
	Text    string
	Source  string
	Date    string
	Version string
}

// FootnoteLabel joins non-empty metadata, empty when there is nothing to cite.
func (e Entry) FootnoteLabel() string {
	label := ""
	for _, part := range []string{e.Source, e.Date, e.Version} {
		if part == "" {
			continue
		}
		if label != "" {
			label += " | "
		}
		label += part
	}
	return label
}

// Fields which carry entry data or identifiers, never nested sections.
var reservedKeys = map[string]bool{
	"text":          true,
	"body":          true,
	"value":         true,
	"clarification": true,
	"ruling":        true,
	"type":          true,
	"section":       true,
	"heading":       true,
	"source":        true,
	"date":          true,
	"version":       true,
	"uid":           true,
	"id":            true,
	"_id":           true,
}

const defaultHint = "Clarifications"

// Normalize walks structured rulings of any shape and returns entries grouped
// by section (in order sections were first seen) with exact duplicates
// removed. When structured data yields nothing, non-empty fallback string
// becomes a single clarification. Result may be empty.
func Normalize(structured, fallback gjson.Result) []Entry {
	if collected := collect(structured, defaultHint, nil); len(collected) > 0 {
		return merge(collected)
	}
	if text := record.String(fallback, ""); text != "" {
		return []Entry{{Section: Clarifications, Text: text}}
	}
	return nil
}

func collect(v gjson.Result, hint string, out []Entry) []Entry {
	if !record.Truthy(v) {
		return out
	}

	switch {
	case v.Type == gjson.String:
		if text := record.String(v, ""); text != "" {
			out = append(out, Entry{Section: ResolveSection(hint), Text: text})
		}

	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			out = collect(item, hint, out)
			return true
		})

	case v.IsObject():
		sectionName := hint
		if s := record.First(v, "type", "section", "heading"); s.Exists() {
			sectionName = record.Text(s)
		}
		if text := record.String(record.First(v, "text", "body", "value", "clarification", "ruling"), ""); text != "" {
			out = append(out, Entry{
				Section: ResolveSection(sectionName),
				Text:    text,
				Source:  record.String(v.Get("source"), ""),
				Date:    record.String(v.Get("date"), ""),
				Version: record.String(v.Get("version"), ""),
			})
		}
		// every other key names a (possibly nested) section of its own
		v.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if reservedKeys[name] {
				return true
			}
			nested := hint
			if name != "" {
				nested = name
			}
			out = collect(value, string(ResolveSection(nested)), out)
			return true
		})
	}
	return out
}

type rowKey struct {
	text, source, date, version string
}

func merge(entries []Entry) []Entry {
	var order []Section
	grouped := make(map[Section][]Entry)
	for _, e := range entries {
		if _, ok := grouped[e.Section]; !ok {
			order = append(order, e.Section)
		}
		grouped[e.Section] = append(grouped[e.Section], e)
	}

	merged := make([]Entry, 0, len(entries))
	for _, section := range order {
		seen := make(map[rowKey]bool)
		for _, e := range grouped[section] {
			k := rowKey{e.Text, e.Source, e.Date, e.Version}
			if seen[k] {
				continue
			}
			seen[k] = true
			merged = append(merged, e)
		}
	}
	return merged
}

// BySection groups entries for rendering, preserving entry order inside a
// section.
func BySection(entries []Entry) map[Section][]Entry {
	out := make(map[Section][]Entry)
	for _, e := range entries {
		out[e.Section] = append(out[e.Section], e)
	}
	return out
}
