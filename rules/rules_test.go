package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
)

func TestResolveSection(t *testing.T) {
	tests := []struct {
		in   string
		want Section
	}{
		{"", Clarifications},
		{"   ", Clarifications},
		{"Clarifications", Clarifications},
		{"Timing", Timing},
		{"card_text", CardText},
		{"Card Text", CardText},
		{"card-text", CardText},
		{"UPGRADE__Interactions", UpgradeInteractions},
		{"upgrades", UpgradeInteractions},
		{"squadron interaction", SquadronInteractions},
		{"objective", ObjectiveInteractions},
		{"salvo", CounterAndSalvoInteractions},
		{"counter and salvo", CounterAndSalvoInteractions},
		{"Obstacles", ObstacleInteractions},
		{"deployment", DeploymentInteractions},
		{"campaign", CampaignInteractions},
		{"rulings", Clarifications},
		// compound form is not an alias
		{"counter_interaction", Clarifications},
		{"something else", Clarifications},
	}
	for _, tt := range tests {
		if got := ResolveSection(tt.in); got != tt.want {
			t.Errorf("ResolveSection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSectionLabels(t *testing.T) {
	if len(Order) != 10 {
		t.Fatalf("Order has %d sections", len(Order))
	}
	for _, s := range Order {
		if !s.IsCanonical() || s.Label() == string(s) {
			t.Errorf("section %q has no label", s)
		}
	}
	if CounterAndSalvoInteractions.Label() != "Counter and Salvo Interactions" {
		t.Errorf("label = %q", CounterAndSalvoInteractions.Label())
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		fallback string
		want     []Entry
	}{
		{
			name: "keys_as_sections",
			json: `{"clarification":"Use this when X","counter_interaction":"Also applies to Y"}`,
			want: []Entry{
				{Section: Clarifications, Text: "Use this when X"},
				{Section: Clarifications, Text: "Also applies to Y"},
			},
		},
		{
			name: "plain_string",
			json: `"Only one ruling"`,
			want: []Entry{{Section: Clarifications, Text: "Only one ruling"}},
		},
		{
			name: "array_of_objects_with_metadata",
			json: `[
				{"type":"timing","text":"Resolve during Ship Phase","source":"RRG","version":"1.5"},
				{"section":"Squadron Interactions","body":"Counts as engaged"},
				{"text":"Resolve during Ship Phase","source":"RRG","version":"1.5","type":"Timing"}
			]`,
			want: []Entry{
				{Section: Timing, Text: "Resolve during Ship Phase", Source: "RRG", Version: "1.5"},
				{Section: SquadronInteractions, Text: "Counts as engaged"},
			},
		},
		{
			name: "nested_hint_inherited",
			json: `{"timing":["First","Second"],"upgrades":{"text":"Under upgrades","obstacle":"Nested key wins"},"uid":"ignored","id":7}`,
			want: []Entry{
				{Section: Timing, Text: "First"},
				{Section: Timing, Text: "Second"},
				{Section: UpgradeInteractions, Text: "Under upgrades"},
				{Section: ObstacleInteractions, Text: "Nested key wins"},
			},
		},
		{
			name: "grouped_in_first_seen_order",
			json: `[{"type":"timing","text":"A"},{"type":"clarification","text":"B"},{"type":"timing","text":"C"}]`,
			want: []Entry{
				{Section: Timing, Text: "A"},
				{Section: Timing, Text: "C"},
				{Section: Clarifications, Text: "B"},
			},
		},
		{
			name: "escapes_decoded",
			json: `{"ruling":"line one\\nline two  "}`,
			want: []Entry{{Section: Clarifications, Text: "line one\nline two"}},
		},
		{
			name: "same_text_different_source_kept",
			json: `[{"text":"Same","source":"FAQ"},{"text":"Same","source":"RRG"}]`,
			want: []Entry{
				{Section: Clarifications, Text: "Same", Source: "FAQ"},
				{Section: Clarifications, Text: "Same", Source: "RRG"},
			},
		},
		{
			name:     "fallback_used",
			json:     `{"uid":"x","empty":""}`,
			fallback: `"From fallback"`,
			want:     []Entry{{Section: Clarifications, Text: "From fallback"}},
		},
		{
			name:     "fallback_ignored_when_structured_present",
			json:     `["Structured"]`,
			fallback: `"From fallback"`,
			want:     []Entry{{Section: Clarifications, Text: "Structured"}},
		},
		{
			name:     "nothing",
			json:     `null`,
			fallback: `42`,
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := gjson.Result{}
			if tt.fallback != "" {
				fallback = gjson.Parse(tt.fallback)
			}
			got := Normalize(gjson.Parse(tt.json), fallback)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	js := gjson.Parse(`{"timing":"T","rulings":[{"text":"R","date":"2024-01-01"}],"salvo":{"text":"S"}}`)
	first := Normalize(js, gjson.Result{})
	second := Normalize(js, gjson.Result{})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Normalize() is not deterministic:\n%s", diff)
	}
	for _, e := range first {
		if !e.Section.IsCanonical() {
			t.Errorf("entry %+v has non canonical section", e)
		}
	}
}

func TestFootnoteLabel(t *testing.T) {
	if got := (Entry{Source: "RRG", Version: "1.5"}).FootnoteLabel(); got != "RRG | 1.5" {
		t.Errorf("FootnoteLabel() = %q", got)
	}
	if got := (Entry{}).FootnoteLabel(); got != "" {
		t.Errorf("FootnoteLabel() = %q, want empty", got)
	}
	got := BySection([]Entry{{Section: Timing, Text: "a"}, {Section: Clarifications, Text: "b"}, {Section: Timing, Text: "c"}})
	if len(got[Timing]) != 2 || got[Timing][1].Text != "c" {
		t.Errorf("BySection() = %+v", got)
	}
}
