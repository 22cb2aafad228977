package feed

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"karm/record"
)

// Group is a kind of upstream collection.
type Group string

const (
	GroupUpgrades    Group = "upgrades"
	GroupObjectives  Group = "objectives"
	GroupSquadrons   Group = "squadrons"
	GroupShips       Group = "ships"
	GroupDamageCards Group = "damage-cards"
)

// Groups which are actually fetched, in fetch order. Ships are discovered
// but nothing consumes them.
var fetchOrder = []Group{GroupUpgrades, GroupObjectives, GroupSquadrons, GroupDamageCards}

// Damage cards are not listed in the manifest, these are requested one by one instead.
var damageCardEndpoints = []string{
	"/damage-cards/",
	"/damagecards/",
	"/damage-cards",
	"/damage-cards/core/",
	"/critical-damage-cards/",
	"/crit-damage-cards/",
}

// Endpoint is a path relative to API base.
type Endpoint struct {
	Group Group
	Path  string
}

var prefixedKey = regexp.MustCompile(`^([a-z-]+)-(upgrades|objectives|squadrons|ships)$`)

// InferEndpoint maps manifest file key to collection endpoint.
func InferEndpoint(key string) (Endpoint, bool) {
	switch g := Group(key); g {
	case GroupUpgrades, GroupObjectives, GroupSquadrons, GroupShips:
		return Endpoint{Group: g, Path: "/" + key + "/"}, true
	}
	m := prefixedKey.FindStringSubmatch(key)
	if m == nil {
		return Endpoint{}, false
	}
	return Endpoint{Group: Group(m[2]), Path: "/" + m[1] + "/" + m[2] + "/"}, true
}

// ManifestKeys lists file keys of `lastModified` manifest in document order.
// Nil is returned when manifest has unexpected shape.
func ManifestKeys(manifest gjson.Result) []string {
	files := manifest.Get("files")
	if !files.IsObject() {
		return nil
	}
	keys := []string{}
	files.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// Discover builds per group endpoint lists from manifest keys. Core endpoints
// are always present even if manifest was not available.
func Discover(keys []string) map[Group][]Endpoint {
	groups := make(map[Group][]Endpoint)
	seen := make(map[string]bool)
	add := func(e Endpoint) {
		if seen[e.Path] {
			return
		}
		seen[e.Path] = true
		groups[e.Group] = append(groups[e.Group], e)
	}

	for _, p := range damageCardEndpoints {
		add(Endpoint{Group: GroupDamageCards, Path: p})
	}
	for _, k := range keys {
		if e, ok := InferEndpoint(k); ok {
			add(e)
		}
	}
	for _, g := range []Group{GroupUpgrades, GroupObjectives, GroupSquadrons} {
		if len(groups[g]) == 0 {
			add(Endpoint{Group: g, Path: "/" + string(g) + "/"})
		}
	}
	return groups
}

// Order matters: "legacy-beta" must be checked before "legacy".
var sourceSegments = []string{"legacy-beta", "legacy-alpha", "legacy", "nexus", "arc", "naboo", "legends"}

// InferSource derives source pack from endpoint path segments.
func InferSource(endpoint string) string {
	for _, s := range sourceSegments {
		if strings.Contains(endpoint, "/"+s+"/") {
			return s
		}
	}
	return "core"
}

// Extract returns records of a group from fetched payload. Collections may
// be arrays or objects keyed by id; non-object members are dropped.
func Extract(g Group, payload gjson.Result) []gjson.Result {
	if g == GroupDamageCards {
		for _, candidate := range []gjson.Result{
			payload.Get("damage-cards"),
			payload.Get("damageCards"),
			payload.Get("damage_cards"),
			payload.Get("cards"),
			payload,
		} {
			if items := record.Collection(candidate); len(items) > 0 {
				return items
			}
		}
		return nil
	}

	if v := payload.Get(string(g)); v.Exists() && v.Type != gjson.Null {
		return record.Collection(v)
	}
	return record.Collection(payload)
}
