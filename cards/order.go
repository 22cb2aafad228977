package cards

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"karm/icons"
)

var categoryRank = map[Category]int{
	Objectives:        0,
	DamageCards:       1,
	Upgrades:          2,
	NexusUpgrades:     3,
	AceSquadrons:      4,
	NexusAceSquadrons: 5,
	Header:            6,
}

func rankOf(c Category) int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return 99
}

// UpgradeTypeOrder lists upgrade types in book order, unlisted types follow.
var UpgradeTypeOrder = []string{
	"weapons-team-offensive-retro",
	"commander",
	"officer",
	"weapons-team",
	"offensive-retro",
	"defensive-retro",
	"turbolaser",
	"ion-cannon",
	"ordnance",
	"fleet-support",
	"support-team",
	"experimental-retro",
	"fleet-command",
	"title",
	"superweapon",
}

func upgradeTypeIndex(t string) int {
	if i := slices.Index(UpgradeTypeOrder, t); i >= 0 {
		return i
	}
	return len(UpgradeTypeOrder)
}

func factionSorted(t string) bool {
	return t == "commander" || t == "officer"
}

// Dedupe keeps the first card for every category:source:name key.
func Dedupe(list []Card) []Card {
	seen := make(map[string]bool, len(list))
	out := make([]Card, 0, len(list))
	for _, c := range list {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// Sorter orders cards for the book. Text comparisons are locale aware and
// case sensitive, complete ties are broken by raw name, source pack order and
// source so resulting order never depends on input order.
type Sorter struct {
	coll        *collate.Collator
	sourceOrder []string
}

func NewSorter(sourceOrder []string) *Sorter {
	return &Sorter{coll: collate.New(language.Und), sourceOrder: sourceOrder}
}

func (s *Sorter) sourceIndex(src string) int {
	if i := slices.Index(s.sourceOrder, src); i >= 0 {
		return i
	}
	return len(s.sourceOrder)
}

func normalizeFaction(f string) string {
	if f == "" {
		return "neutral"
	}
	return strings.ToLower(f)
}

func objectiveType(t string) string {
	if t == "" {
		return "zzzz"
	}
	return t
}

// Compare returns negative, zero or positive as a sorts before, same or
// after b.
func (s *Sorter) Compare(a, b *Card) int {
	if d := rankOf(a.Category) - rankOf(b.Category); d != 0 {
		return d
	}

	switch {
	case a.Category == Objectives:
		if d := s.coll.CompareString(objectiveType(a.Type), objectiveType(b.Type)); d != 0 {
			return d
		}
	case a.Category.IsUpgrade():
		if d := upgradeTypeIndex(a.Type) - upgradeTypeIndex(b.Type); d != 0 {
			return d
		}
		if a.Type != b.Type {
			if natural.Less(a.Type, b.Type) {
				return -1
			}
			return 1
		}
		if factionSorted(a.Type) {
			if d := s.coll.CompareString(normalizeFaction(a.PrimaryFaction), normalizeFaction(b.PrimaryFaction)); d != 0 {
				return d
			}
		}
	case a.Category.IsAce():
		if d := s.coll.CompareString(normalizeFaction(a.PrimaryFaction), normalizeFaction(b.PrimaryFaction)); d != 0 {
			return d
		}
	}

	if d := s.coll.CompareString(a.Name, b.Name); d != 0 {
		return d
	}
	if d := strings.Compare(a.Name, b.Name); d != 0 {
		return d
	}
	if d := s.sourceIndex(a.Source) - s.sourceIndex(b.Source); d != 0 {
		return d
	}
	return strings.Compare(a.Source, b.Source)
}

// Sort orders cards in place, stable.
func (s *Sorter) Sort(list []Card) {
	slices.SortStableFunc(list, func(a, b Card) int {
		return s.Compare(&a, &b)
	})
}

var typeTitles = map[string]string{
	"weapons-team-offensive-retro": "Weapons Team & Offensive Retrofits",
	"commander":                    "Commanders",
	"officer":                      "Officers",
	"weapons-team":                 "Weapons Teams",
	"offensive-retro":              "Offensive Retrofits",
	"defensive-retro":              "Defensive Retrofits",
	"turbolaser":                   "Turbolasers",
	"ion-cannon":                   "Ion Cannons",
	"ordnance":                     "Ordnance",
	"fleet-support":                "Fleet Support",
	"support-team":                 "Support Teams",
	"experimental-retro":           "Experimental Retrofits",
	"fleet-command":                "Fleet Commands",
	"title":                        "Titles",
	"superweapon":                  "Superweapons",
	"ace-squadron":                 "Ace Squadrons",
}

var titleCaser = cases.Title(language.English)

// HeaderTitle returns display title for a group of cards.
func HeaderTitle(c Category, t string) string {
	title, ok := typeTitles[t]
	if !ok {
		title = titleCaser.String(strings.ReplaceAll(t, "-", " "))
		if !strings.HasSuffix(title, "s") {
			title += "s"
		}
	}
	if c.IsNexus() {
		title = "Nexus " + title
	}
	return title
}

// InsertHeaders adds a header card before the first member of every
// (category, type) group of upgrade and ace squadron cards. List must be
// sorted.
func InsertHeaders(list []Card, res *icons.Resolver) []Card {
	out := make([]Card, 0, len(list))
	seen := make(map[string]bool)
	for _, c := range list {
		if c.Category.IsUpgrade() || c.Category.IsAce() {
			k := string(c.Category) + ":" + c.Type
			if !seen[k] {
				seen[k] = true
				key := "squadron"
				if c.Category.IsUpgrade() {
					key = UpgradeTypeIconKey(c.Type)
				}
				icon, glyph := res.Lookup(key)
				out = append(out, Card{
					Category:    Header,
					Name:        HeaderTitle(c.Category, c.Type),
					Type:        c.Type,
					Group:       c.Category,
					HeaderIcon:  icon,
					HeaderGlyph: glyph,
				})
			}
		}
		out = append(out, c)
	}
	return out
}

// AssignAnchors gives every card an id unique within the list. Must be
// called on the final order.
func AssignAnchors(list []Card) {
	used := make(map[string]bool, len(list))
	for i := range list {
		prefix := "card-"
		if list[i].IsHeader() {
			prefix = "section-"
		}
		s := slug.Make(list[i].Name)
		if s == "" {
			s = "entry"
		}
		base := prefix + s
		anchor := base
		for n := 2; used[anchor]; n++ {
			anchor = base + "-" + strconv.Itoa(n)
		}
		used[anchor] = true
		list[i].Anchor = anchor
	}
}

// Arrange turns built cards into the final book order: deduplicated, sorted,
// with headers and anchors. An empty input produces the placeholder card.
func Arrange(built []Card, sorter *Sorter, res *icons.Resolver) []Card {
	list := Dedupe(built)
	if len(list) == 0 {
		list = []Card{Placeholder()}
	}
	sorter.Sort(list)
	list = InsertHeaders(list, res)
	AssignAnchors(list)
	return list
}
