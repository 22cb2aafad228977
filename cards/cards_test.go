package cards

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"

	"karm/config"
	"karm/feed"
	"karm/icons"
	"karm/rules"
)

func selection() *config.SelectionConfig {
	return &config.SelectionConfig{
		Categories:      []string{"objectives", "damage-cards", "upgrades", "ace-squadrons"},
		ExcludedSources: []string{"legacy-alpha"},
		SourceOrder:     []string{"core", "legacy", "legacy-beta", "nexus", "arc", "naboo", "legends"},
	}
}

func batch(g feed.Group, source string, items ...string) feed.Batch {
	b := feed.Batch{Group: g, Source: source, Endpoint: "/" + source + "/" + string(g) + "/"}
	for _, it := range items {
		b.Items = append(b.Items, gjson.Parse(it))
	}
	return b
}

func resolver() *icons.Resolver {
	return icons.NewResolver(icons.Map{"commander": "\ue901", "empire": "\ue910"}, true)
}

func names(list []Card) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name)
	}
	return out
}

func TestCommandersOrderedByFaction(t *testing.T) {
	data := &feed.Data{Batches: []feed.Batch{batch(feed.GroupUpgrades, "core",
		`{"name":"Admiral Ackbar","type":"commander","faction":["rebel"],"rules":[{"text":"Timing note","type":"timing"}]}`,
		`{"name":"Screed","type":"commander","faction":["empire"],"rules":[{"text":"Card text","type":"card_text"}]}`,
	)}}

	b := NewBuilder(selection(), resolver(), zaptest.NewLogger(t))
	list := Arrange(b.Build(data), NewSorter(selection().SourceOrder), resolver())

	if diff := cmp.Diff([]string{"Commanders", "Screed", "Admiral Ackbar"}, names(list)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	header := list[0]
	if !header.IsHeader() || header.HeaderIcon != "\ue901" || !header.HeaderGlyph || header.Group != Upgrades {
		t.Errorf("header = %+v", header)
	}
	if list[1].TitleSuffix != "\ue901" || list[1].PrimaryFaction != "empire" {
		t.Errorf("Screed = %+v", list[1])
	}
	if diff := cmp.Diff([]string{"section-commanders", "card-screed", "card-admiral-ackbar"}, []string{list[0].Anchor, list[1].Anchor, list[2].Anchor}); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
	if len(b.Warnings()) != 0 {
		t.Errorf("unexpected warnings %v", b.Warnings())
	}
}

func TestUniqueButNotAce(t *testing.T) {
	data := &feed.Data{Batches: []feed.Batch{batch(feed.GroupSquadrons, "core",
		`{"name":"Howlrunner","ace":false,"unique":true,"rules":"Some ruling"}`,
		`{"name":"TIE Fighter Squadron","rules":"Generic, silently skipped"}`,
	)}}

	b := NewBuilder(selection(), resolver(), zaptest.NewLogger(t))
	built := b.Build(data)
	if len(built) != 0 {
		t.Errorf("Build() = %v, want nothing", names(built))
	}
	if diff := cmp.Diff([]string{"[warn] unique but not ace: Howlrunner (core)"}, b.Warnings()); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
}

func TestAceSquadron(t *testing.T) {
	data := &feed.Data{Batches: []feed.Batch{
		batch(feed.GroupSquadrons, "core",
			`{"name":"TIE Fighter","ace-name":"Howlrunner","ace":true,"unique":true,"faction":"Empire","points":16,
			  "abilities":{"swarm":true,"counter":0,"escort":false,"intel":1,"adept":2,"grit":"yes"},
			  "ability":"Friendly squadrons...","rules":{"timing":"At the start"}}`),
		batch(feed.GroupSquadrons, "nexus",
			`{"name":"Nexus Ace","ace":true,"faction":"rebel","rules":["x"]}`),
	}}

	b := NewBuilder(selection(), resolver(), zaptest.NewLogger(t))
	built := b.Build(data)
	if len(built) != 2 {
		t.Fatalf("Build() = %v", names(built))
	}
	ace := built[0]
	if ace.Name != "Howlrunner" || ace.Category != AceSquadrons || ace.Details != "16 points" {
		t.Errorf("ace = %+v", ace)
	}
	if diff := cmp.Diff([]string{"Unique", "swarm", "intel 1", "adept 2"}, ace.Keywords); diff != "" {
		t.Errorf("keywords (-want +got):\n%s", diff)
	}
	if ace.TitleSuffix != "\ue910" {
		t.Errorf("faction icon = %q", ace.TitleSuffix)
	}
	if built[1].Category != NexusAceSquadrons {
		t.Errorf("nexus ace category = %s", built[1].Category)
	}

	list := Arrange(built, NewSorter(selection().SourceOrder), resolver())
	if diff := cmp.Diff([]string{"Ace Squadrons", "Howlrunner", "Nexus Ace Squadrons", "Nexus Ace"}, names(list)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestObjectivesQualifyBySummary(t *testing.T) {
	data := &feed.Data{Batches: []feed.Batch{batch(feed.GroupObjectives, "core",
		`{"name":"Most Wanted","type":"Assault","setup":"Choose two ships.","end_of_round":"Score"}`,
		`{"name":"Empty","type":"navigation"}`,
		`{"name":"Dangerous Territory","rulings":"Fallback ruling"}`,
	)}}

	b := NewBuilder(selection(), resolver(), zaptest.NewLogger(t))
	built := b.Build(data)
	if diff := cmp.Diff([]string{"Most Wanted", "Dangerous Territory"}, names(built)); diff != "" {
		t.Fatalf("qualified (-want +got):\n%s", diff)
	}
	mw := built[0]
	if mw.CardText != "**Setup:** Choose two ships.\n\n**End of Round:** Score" {
		t.Errorf("CardText = %q", mw.CardText)
	}
	if mw.Type != "assault" || mw.Details != "Assault" || len(mw.Rules) != 0 {
		t.Errorf("objective = %+v", mw)
	}
	if dt := built[1]; dt.Details != "objective" || dt.Rules[0].Text != "Fallback ruling" {
		t.Errorf("objective = %+v", dt)
	}

	// untyped objectives go last
	list := Arrange(built, NewSorter(nil), resolver())
	if diff := cmp.Diff([]string{"Most Wanted", "Dangerous Territory"}, names(list)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestDamageCardsAndFilters(t *testing.T) {
	sel := selection()
	sel.Categories = []string{"damage-cards", "upgrades"}
	sel.UpgradeTypes = []string{"ion-cannon"}

	data := &feed.Data{Batches: []feed.Batch{
		batch(feed.GroupDamageCards, "core",
			`{"title":"Structural Damage","image":"sd.png","text":"Deal 1 damage","clarifications":"Fallback"}`,
			`{"name":"No Rules"}`),
		batch(feed.GroupUpgrades, "core",
			`{"name":"Leading Shots","type":"Ion Cannon","rules":"x"}`,
			`{"name":"Admiral Screed","type":"commander","rules":"x"}`),
		batch(feed.GroupUpgrades, "legacy-alpha",
			`{"name":"Alpha","type":"Ion Cannon","rules":"x"}`),
		batch(feed.GroupObjectives, "core",
			`{"name":"Objective","setup":"x"}`),
	}}

	b := NewBuilder(sel, icons.NewResolver(nil, false), zaptest.NewLogger(t))
	built := b.Build(data)
	if diff := cmp.Diff([]string{"Structural Damage", "Leading Shots"}, names(built)); diff != "" {
		t.Fatalf("built (-want +got):\n%s", diff)
	}
	dc := built[0]
	if dc.Image != "sd.png" || dc.CardText != "Deal 1 damage" || dc.Rules[0].Text != "Fallback" || dc.Details != "damage card" {
		t.Errorf("damage card = %+v", dc)
	}
	up := built[1]
	if up.Type != "ion-cannon" || up.Details != "0 points" || up.TitleSuffix != "" {
		t.Errorf("upgrade = %+v", up)
	}
	if diff := cmp.Diff([]string{"neutral"}, up.Factions); diff != "" {
		t.Errorf("factions (-want +got):\n%s", diff)
	}
}

func TestUpgradeTypeFilterIsNormalized(t *testing.T) {
	sel := selection()
	sel.Categories = []string{"upgrades"}
	sel.UpgradeTypes = []string{"Weapons Team", "  ION\tCannon "}

	data := &feed.Data{Batches: []feed.Batch{
		batch(feed.GroupUpgrades, "core",
			`{"name":"Gunnery Team","type":"weapons-team","rules":"x"}`,
			`{"name":"Leading Shots","type":"Ion Cannon","rules":"x"}`,
			`{"name":"Admiral Screed","type":"commander","rules":"x"}`),
	}}

	b := NewBuilder(sel, icons.NewResolver(nil, false), zaptest.NewLogger(t))
	if diff := cmp.Diff([]string{"Gunnery Team", "Leading Shots"}, names(b.Build(data))); diff != "" {
		t.Errorf("built (-want +got):\n%s", diff)
	}
	// configuration itself is left as written
	if sel.UpgradeTypes[0] != "Weapons Team" {
		t.Errorf("selection modified: %q", sel.UpgradeTypes)
	}
}

func TestNormalizeTypeName(t *testing.T) {
	for in, want := range map[string]string{
		"Weapons Team":    "weapons-team",
		"weapons-team":    "weapons-team",
		" Ion \n Cannon ": "ion-cannon",
		"   ":             "unknown",
	} {
		if got := NormalizeTypeName(in); got != want {
			t.Errorf("NormalizeTypeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupeAndStability(t *testing.T) {
	list := []Card{
		{Category: Upgrades, Source: "core", Name: "B", Type: "zeta-thing", Rules: []rules.Entry{{Text: "1"}}},
		{Category: Upgrades, Source: "core", Name: "B", Type: "zeta-thing", Rules: []rules.Entry{{Text: "dup"}}},
		{Category: Upgrades, Source: "legends", Name: "B", Type: "zeta-thing"},
		{Category: Upgrades, Source: "core", Name: "A", Type: "alpha-thing"},
		{Category: Upgrades, Source: "core", Name: "T", Type: "title"},
		{Category: DamageCards, Source: "core", Name: "Z"},
		{Category: "mystery", Name: "M"},
		{Category: Objectives, Name: "O"},
	}
	deduped := Dedupe(list)
	if len(deduped) != 7 || deduped[0].Rules[0].Text != "1" {
		t.Fatalf("Dedupe() = %+v", deduped)
	}

	s := NewSorter(selection().SourceOrder)
	s.Sort(deduped)
	want := []string{"O", "Z", "T", "A", "B", "B", "M"}
	if diff := cmp.Diff(want, names(deduped)); diff != "" {
		t.Fatalf("Sort() (-want +got):\n%s", diff)
	}
	if deduped[4].Source != "core" || deduped[5].Source != "legends" {
		t.Errorf("source tie-break failed: %s, %s", deduped[4].Source, deduped[5].Source)
	}

	// order must not depend on input order
	reversed := make([]Card, len(deduped))
	for i := range deduped {
		reversed[len(deduped)-1-i] = deduped[i]
	}
	s.Sort(reversed)
	if diff := cmp.Diff(names(deduped), names(reversed)); diff != "" {
		t.Errorf("Sort() is not total (-first +second):\n%s", diff)
	}

	withHeaders := InsertHeaders(deduped, icons.NewResolver(nil, false))
	var headers []string
	for i, c := range withHeaders {
		if c.IsHeader() {
			headers = append(headers, c.Name)
			if next := withHeaders[i+1]; next.Type != c.Type || next.Category != c.Group {
				t.Errorf("header %q is not followed by its member", c.Name)
			}
		}
	}
	if diff := cmp.Diff([]string{"Titles", "Alpha Things", "Zeta Things"}, headers); diff != "" {
		t.Errorf("headers (-want +got):\n%s", diff)
	}
}

func TestAssignAnchors(t *testing.T) {
	list := []Card{
		{Name: "Screed"},
		{Name: "Screed"},
		{Name: "Screed 2"},
		{Name: "Screed"},
		{Name: "!!!"},
		{Category: Header, Name: "Commanders"},
	}
	AssignAnchors(list)
	var got []string
	for _, c := range list {
		got = append(got, c.Anchor)
	}
	want := []string{"card-screed", "card-screed-2", "card-screed-2-2", "card-screed-3", "card-entry", "section-commanders"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
}

func TestArrangePlaceholder(t *testing.T) {
	list := Arrange(nil, NewSorter(nil), icons.NewResolver(nil, false))
	if len(list) != 1 || list[0].Name != "No Rulings Data Found" || list[0].Anchor != "card-no-rulings-data-found" {
		t.Fatalf("Arrange(nil) = %+v", list)
	}
	if !strings.Contains(list[0].CardText, "api.base_url") {
		t.Errorf("placeholder text = %q", list[0].CardText)
	}
}

func TestCardSections(t *testing.T) {
	c := Card{
		Category: Upgrades,
		CardText: "Ability",
		Rules: []rules.Entry{
			{Section: rules.Timing, Text: "t1", Source: "RRG"},
			{Section: rules.Clarifications, Text: "c1", Source: "RRG"},
			{Section: rules.CardText, Text: "ct"},
			{Section: rules.SquadronInteractions, Text: "s1", Date: "2024"},
		},
	}
	if diff := cmp.Diff([]rules.Section{rules.Clarifications, rules.SquadronInteractions}, c.Sections()); diff != "" {
		t.Errorf("Sections() (-want +got):\n%s", diff)
	}
	text, timing := c.Summary()
	if text == nil || text.Text != "Ability" || len(timing) != 1 {
		t.Errorf("Summary() = %v, %v", text, timing)
	}
	if diff := cmp.Diff([]string{"RRG", "2024"}, c.Footnotes()); diff != "" {
		t.Errorf("Footnotes() (-want +got):\n%s", diff)
	}

	c.Category = DamageCards
	if len(c.Sections()) != 4 {
		t.Errorf("damage card sections = %v", c.Sections())
	}
	if text, timing := c.Summary(); text != nil || timing != nil {
		t.Error("damage cards have no summary")
	}
}
