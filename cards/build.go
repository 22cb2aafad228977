package cards

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"karm/config"
	"karm/feed"
	"karm/icons"
	"karm/record"
	"karm/rules"
)

// Builder converts fetched records to cards. It is used once per run,
// warnings accumulate for the compile log.
type Builder struct {
	sel *config.SelectionConfig
	// requested upgrade types in normalized form
	types    []string
	icons    *icons.Resolver
	log      *zap.Logger
	warnings []string
}

func NewBuilder(sel *config.SelectionConfig, res *icons.Resolver, log *zap.Logger) *Builder {
	types := make([]string, 0, len(sel.UpgradeTypes))
	for _, t := range sel.UpgradeTypes {
		types = append(types, NormalizeTypeName(t))
	}
	return &Builder{sel: sel, types: types, icons: res, log: log.Named("cards")}
}

// Warnings returns data quality problems noticed while building.
func (b *Builder) Warnings() []string {
	return b.warnings
}

func (b *Builder) warn(msg string, fields ...zap.Field) {
	b.warnings = append(b.warnings, msg)
	b.log.Warn(msg, fields...)
}

func (b *Builder) included(c Category) bool {
	return slices.Contains(b.sel.Categories, string(c.Base()))
}

// Build returns qualifying cards in fetch order. Records from excluded
// sources and not included categories are skipped.
func (b *Builder) Build(data *feed.Data) []Card {
	var out []Card

	for _, batch := range data.Batches {
		if slices.Contains(b.sel.ExcludedSources, batch.Source) {
			b.log.Debug("Source excluded", zap.String("source", batch.Source), zap.String("endpoint", batch.Endpoint))
			continue
		}

		var build func(gjson.Result, string) (Card, bool)
		switch batch.Group {
		case feed.GroupUpgrades:
			build = b.upgrade
		case feed.GroupObjectives:
			build = b.objective
		case feed.GroupSquadrons:
			build = b.aceSquadron
		case feed.GroupDamageCards:
			build = b.damageCard
		default:
			continue
		}

		for _, item := range batch.Items {
			if card, ok := build(item, batch.Source); ok {
				out = append(out, card)
			}
		}
	}
	return out
}

func nexusVariant(base Category, source string) Category {
	if source != "nexus" {
		return base
	}
	switch base {
	case Upgrades:
		return NexusUpgrades
	case AceSquadrons:
		return NexusAceSquadrons
	}
	return base
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeUpgradeType returns normalized type of upgrade record.
func NormalizeUpgradeType(v gjson.Result) string {
	return NormalizeTypeName(record.Text(v))
}

// NormalizeTypeName lower-cases type name and replaces whitespace with
// dashes, so "Weapons Team" and "weapons-team" are the same type.
func NormalizeTypeName(name string) string {
	t := strings.TrimSpace(strings.ToLower(name))
	if t = spaces.ReplaceAllString(t, "-"); t == "" {
		return "unknown"
	}
	return t
}

// UpgradeTypeIconKey maps upgrade type to icon map key.
func UpgradeTypeIconKey(t string) string {
	if t == "weapons-team-offensive-retro" {
		return "weapons_team"
	}
	return strings.ReplaceAll(t, "-", "_")
}

func points(v gjson.Result) string {
	return strconv.FormatFloat(record.Number(v, 0), 'f', -1, 64) + " points"
}

func (b *Builder) upgrade(item gjson.Result, source string) (Card, bool) {
	category := nexusVariant(Upgrades, source)
	if !b.included(category) {
		return Card{}, false
	}
	upgradeType := NormalizeUpgradeType(item.Get("type"))
	if len(b.types) > 0 && !slices.Contains(b.types, upgradeType) {
		return Card{}, false
	}
	entries := rules.Normalize(item.Get("rules"), item.Get("rulings"))
	if len(entries) == 0 {
		return Card{}, false
	}

	factions := []string{"neutral"}
	if f := item.Get("faction"); f.IsArray() {
		factions = record.Strings(f)
	}
	primary := "neutral"
	if len(factions) > 0 {
		primary = factions[0]
	}
	suffix, glyph := b.icons.Lookup(UpgradeTypeIconKey(upgradeType))

	return Card{
		Category:       category,
		Source:         source,
		Name:           record.String(item.Get("name"), "Unknown Upgrade"),
		Image:          record.String(item.Get("cardimage"), ""),
		Factions:       factions,
		CardText:       record.String(item.Get("ability"), ""),
		Details:        points(item.Get("points")),
		Type:           upgradeType,
		PrimaryFaction: primary,
		TitleSuffix:    suffix,
		TitleGlyph:     glyph,
		Rules:          entries,
	}, true
}

var objectiveSummary = []struct{ key, label string }{
	{"setup", "Setup"},
	{"special_rule", "Special Rule"},
	{"end_of_round", "End of Round"},
	{"end_of_game", "End of Game"},
	{"errata", "Errata"},
}

func (b *Builder) objective(item gjson.Result, source string) (Card, bool) {
	if !b.included(Objectives) {
		return Card{}, false
	}
	entries := rules.Normalize(item.Get("rules"), item.Get("rulings"))

	var parts []string
	for _, f := range objectiveSummary {
		if text := record.String(item.Get(f.key), ""); text != "" {
			parts = append(parts, fmt.Sprintf("**%s:** %s", f.label, text))
		}
	}
	if len(entries) == 0 && len(parts) == 0 {
		return Card{}, false
	}

	return Card{
		Category:       Objectives,
		Source:         source,
		Name:           record.String(item.Get("name"), "Unknown Objective"),
		Image:          record.String(item.Get("cardimage"), ""),
		Factions:       []string{"neutral"},
		CardText:       strings.Join(parts, "\n\n"),
		Details:        record.String(item.Get("type"), "objective"),
		Type:           strings.ToLower(record.String(item.Get("type"), "")),
		PrimaryFaction: "neutral",
		Rules:          entries,
	}, true
}

func (b *Builder) aceSquadron(item gjson.Result, source string) (Card, bool) {
	category := nexusVariant(AceSquadrons, source)
	if !b.included(category) {
		return Card{}, false
	}
	if !record.True(item.Get("ace")) {
		if record.Truthy(item.Get("unique")) {
			name := record.String(item.Get("name"), "unknown")
			b.warn(fmt.Sprintf("[warn] unique but not ace: %s (%s)", name, source),
				zap.String("name", name), zap.String("source", source))
		}
		return Card{}, false
	}
	entries := rules.Normalize(item.Get("rules"), item.Get("rulings"))
	if len(entries) == 0 {
		return Card{}, false
	}

	keywords := []string{"Unique"}
	if abilities := item.Get("abilities"); abilities.IsObject() {
		abilities.ForEach(func(key, value gjson.Result) bool {
			name := strings.ReplaceAll(key.String(), "-", " ")
			switch {
			case record.True(value):
				keywords = append(keywords, name)
			case value.Type == gjson.Number && value.Num > 0:
				keywords = append(keywords, name+" "+strconv.FormatFloat(value.Num, 'f', -1, 64))
			}
			return true
		})
	}

	faction := record.String(item.Get("faction"), "neutral")
	suffix, glyph := b.icons.Lookup(strings.ToLower(faction))

	return Card{
		Category:       category,
		Source:         source,
		Name:           record.String(record.First(item, "ace-name", "name"), "Unknown Ace"),
		Image:          record.String(item.Get("cardimage"), ""),
		Factions:       []string{faction},
		CardText:       record.String(item.Get("ability"), ""),
		Details:        points(item.Get("points")),
		Keywords:       keywords,
		Type:           "ace-squadron",
		PrimaryFaction: faction,
		TitleSuffix:    suffix,
		TitleGlyph:     glyph,
		Rules:          entries,
	}, true
}

func (b *Builder) damageCard(item gjson.Result, source string) (Card, bool) {
	if !b.included(DamageCards) {
		return Card{}, false
	}
	entries := rules.Normalize(item.Get("rules"), record.First(item, "rulings", "clarification", "clarifications"))
	if len(entries) == 0 {
		return Card{}, false
	}
	return Card{
		Category:       DamageCards,
		Source:         source,
		Name:           record.String(record.First(item, "name", "title"), "Unknown Damage Card"),
		Image:          record.String(record.First(item, "cardimage", "image"), ""),
		Factions:       []string{"neutral"},
		CardText:       record.String(record.First(item, "card_text", "text", "ability"), ""),
		Details:        "damage card",
		Type:           "damage",
		PrimaryFaction: "neutral",
		Rules:          entries,
	}, true
}

// Placeholder is emitted instead of an empty book.
func Placeholder() Card {
	return Card{
		Category: Objectives,
		Source:   "core",
		Name:     "No Rulings Data Found",
		Factions: []string{"neutral"},
		CardText: "The generator could not fetch qualifying rulings data from the configured API endpoints.\n\n" +
			"- Check `api.base_url` and `api.backup_url` in configuration\n" +
			"- Verify network connectivity\n" +
			"- Make sure `selection.include_categories` is not too narrow",
		Details:        "generator notice",
		Keywords:       []string{"diagnostic"},
		PrimaryFaction: "neutral",
		Rules: []rules.Entry{{
			Section: rules.Clarifications,
			Text:    "Re-run with `--verbose` to see which endpoints were skipped and why.",
		}},
	}
}
