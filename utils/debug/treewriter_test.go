package debug

import (
	"strings"
	"testing"
)

func TestLine(t *testing.T) {
	tw := NewTreeWriter()
	if tw.String() != "" {
		t.Error("new writer must be empty")
	}
	tw.Line(0, "Cards: %d", 2)
	tw.Line(1, "[%d] %q", 0, "Screed")
	tw.Line(2, "nested")

	want := "Cards: 2\n  [0] \"Screed\"\n    nested\n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTextBlock(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"empty", "", "  timing: \n"},
		{"plain", "During attack", "  timing: \"During attack\"\n"},
		{"escaped", "line\n\"two\"", "  timing: \"line\\n\\\"two\\\"\"\n"},
		{"long", strings.Repeat("ю", MaxText+5), "  timing: \"" + strings.Repeat("ю", MaxText) + "\"...(+5)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(1, "timing", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCounts(t *testing.T) {
	tw := NewTreeWriter()
	tw.Counts(0, "Sources", map[string]int{"wave10": 1, "core": 3, "wave2": 2})

	want := "Sources: 6\n  \"core\": 3\n  \"wave2\": 2\n  \"wave10\": 1\n"
	if got := tw.String(); got != want {
		t.Errorf("Counts() =\n%s\nwant\n%s", got, want)
	}

	tw = NewTreeWriter()
	tw.Counts(1, "Empty", nil)
	if got := tw.String(); got != "  Empty: 0\n" {
		t.Errorf("Counts(empty) = %q", got)
	}
}
