// Package debug formats readable dumps which end up in debug report.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/maruel/natural"
)

// MaxText limits text blocks, rulings could be long and dumps are for
// eyeballing only.
const MaxText = 160

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes quoted and possibly shortened value.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Counts writes label with total and then every key in natural order.
func (tw *TreeWriter) Counts(depth int, label string, counts map[string]int) {
	total := 0
	for _, n := range counts {
		total += n
	}
	tw.Line(depth, "%s: %d", label, total)

	keys := slices.Collect(maps.Keys(counts))
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		tw.Line(depth+1, "%q: %d", k, counts[k])
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	if n := utf8.RuneCountInString(raw); n > MaxText {
		runes := []rune(raw)
		return strconv.Quote(string(runes[:MaxText])) + "...(+" + strconv.Itoa(n-MaxText) + ")"
	}
	return strconv.Quote(raw)
}
