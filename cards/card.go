// Package cards turns upstream records into ordered, render-ready cards.
package cards

import (
	"karm/rules"
)

// Category of a card. Nexus variants are kept apart from their base
// categories so they could be grouped and published separately.
type Category string

const (
	Objectives        Category = "objectives"
	DamageCards       Category = "damage-cards"
	Upgrades          Category = "upgrades"
	NexusUpgrades     Category = "nexus-upgrades"
	AceSquadrons      Category = "ace-squadrons"
	NexusAceSquadrons Category = "nexus-ace-squadrons"
	Header            Category = "header"
)

// Base returns category requested in configuration for this one.
func (c Category) Base() Category {
	switch c {
	case NexusUpgrades:
		return Upgrades
	case NexusAceSquadrons:
		return AceSquadrons
	}
	return c
}

// IsNexus reports nexus variants.
func (c Category) IsNexus() bool {
	return c == NexusUpgrades || c == NexusAceSquadrons
}

// IsUpgrade is true for both upgrade categories.
func (c Category) IsUpgrade() bool {
	return c.Base() == Upgrades
}

// IsAce is true for both ace squadron categories.
func (c Category) IsAce() bool {
	return c.Base() == AceSquadrons
}

// Card is a normalized entity ready for layout and rendering. Header cards
// carry only Name, Type, Group and icon.
type Card struct {
	Category       Category
	Source         string
	Name           string
	Image          string
	Factions       []string
	CardText       string
	Details        string
	Keywords       []string
	Type           string
	PrimaryFaction string

	// TitleSuffix is an icon printed after the name, TitleGlyph is set when
	// it must be drawn with the icon font.
	TitleSuffix string
	TitleGlyph  bool

	// Group is category of cards following a header.
	Group       Category
	HeaderIcon  string
	HeaderGlyph bool

	Rules  []rules.Entry
	Anchor string
}

// IsHeader reports synthetic section break cards.
func (c *Card) IsHeader() bool {
	return c.Category == Header
}

// Key identifies a card for de-duplication.
func (c *Card) Key() string {
	return string(c.Category) + ":" + c.Source + ":" + c.Name
}

// Suppressed reports sections which are shown in the top summary (or not at
// all) instead of regular section list. Layout estimation and rendering must
// agree on this.
func (c *Card) Suppressed(s rules.Section) bool {
	switch {
	case c.Category.IsUpgrade(), c.Category.IsAce():
		return s == rules.CardText || s == rules.Timing
	case c.Category == Objectives:
		return s == rules.CardText
	}
	return false
}

// Entries groups rule entries by section. CardText field, when present,
// leads the card text section.
func (c *Card) Entries() map[rules.Section][]rules.Entry {
	out := make(map[rules.Section][]rules.Entry)
	if c.CardText != "" {
		out[rules.CardText] = []rules.Entry{{Section: rules.CardText, Text: c.CardText}}
	}
	for _, r := range c.Rules {
		out[r.Section] = append(out[r.Section], r)
	}
	return out
}

// Sections returns non-suppressed sections present in the card, in
// rendering order.
func (c *Card) Sections() []rules.Section {
	entries := c.Entries()
	var out []rules.Section
	for _, s := range rules.Order {
		if len(entries[s]) > 0 && !c.Suppressed(s) {
			out = append(out, s)
		}
	}
	return out
}

// Summary returns what is shown above regular sections: first card text
// entry and all timing entries, each only when suppressed from the body.
func (c *Card) Summary() (text *rules.Entry, timing []rules.Entry) {
	entries := c.Entries()
	if ct := entries[rules.CardText]; len(ct) > 0 && c.Suppressed(rules.CardText) {
		text = &ct[0]
	}
	if c.Suppressed(rules.Timing) {
		timing = entries[rules.Timing]
	}
	return text, timing
}

// Footnotes returns unique footnote labels in order of first reference.
func (c *Card) Footnotes() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, r := range c.Rules {
		if l := r.FootnoteLabel(); l != "" && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
