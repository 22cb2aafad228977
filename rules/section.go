package rules

import (
	"regexp"
	"strings"
)

// Section is one of canonical ruling categories rule text is grouped by.
type Section string

const (
	CardText                    Section = "card_text"
	Timing                      Section = "timing"
	Clarifications              Section = "clarifications"
	UpgradeInteractions         Section = "upgrade_interactions"
	SquadronInteractions        Section = "squadron_interactions"
	ObjectiveInteractions       Section = "objective_interactions"
	CounterAndSalvoInteractions Section = "counter_and_salvo_interactions"
	ObstacleInteractions        Section = "obstacle_interactions"
	DeploymentInteractions      Section = "deployment_interactions"
	CampaignInteractions        Section = "campaign_interactions"
)

// Order is the fixed rendering order of sections.
var Order = []Section{
	CardText,
	Timing,
	Clarifications,
	UpgradeInteractions,
	SquadronInteractions,
	ObjectiveInteractions,
	CounterAndSalvoInteractions,
	ObstacleInteractions,
	DeploymentInteractions,
	CampaignInteractions,
}

var labels = map[Section]string{
	CardText:                    "Card Text",
	Timing:                      "Timing",
	Clarifications:              "Clarifications",
	UpgradeInteractions:         "Upgrade Interactions",
	SquadronInteractions:        "Squadron Interactions",
	ObjectiveInteractions:       "Objective Interactions",
	CounterAndSalvoInteractions: "Counter and Salvo Interactions",
	ObstacleInteractions:        "Obstacle Interactions",
	DeploymentInteractions:      "Deployment Interactions",
	CampaignInteractions:        "Campaign Interactions",
}

// NOTE: compound forms such as "counter_interaction" are not listed and
// resolve to clarifications.
var aliases = map[string]Section{
	"clarification":         Clarifications,
	"clarifications":        Clarifications,
	"rulings":               Clarifications,
	"ruling":                Clarifications,
	"timing":                Timing,
	"upgrade":               UpgradeInteractions,
	"upgrades":              UpgradeInteractions,
	"upgrade_interaction":   UpgradeInteractions,
	"squadron":              SquadronInteractions,
	"squadrons":             SquadronInteractions,
	"squadron_interaction":  SquadronInteractions,
	"objective":             ObjectiveInteractions,
	"objectives":            ObjectiveInteractions,
	"objective_interaction": ObjectiveInteractions,
	"counter":               CounterAndSalvoInteractions,
	"salvo":                 CounterAndSalvoInteractions,
	"counter_and_salvo":     CounterAndSalvoInteractions,
	"obstacle":              ObstacleInteractions,
	"obstacles":             ObstacleInteractions,
	"deployment":            DeploymentInteractions,
	"campaign":              CampaignInteractions,
	"card_text":             CardText,
}

// Label returns human readable section heading.
func (s Section) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// IsCanonical reports whether s is one of the known sections.
func (s Section) IsCanonical() bool {
	_, ok := labels[s]
	return ok
}

var (
	separators = regexp.MustCompile(`[_-]+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// ResolveSection maps free-form section name (key names, headings, "type"
// fields) to canonical section. Comparison ignores case and treats "_", "-"
// and whitespace alike. Anything unknown lands in clarifications.
func ResolveSection(raw string) Section {
	normalized := strings.ToLower(raw)
	normalized = separators.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(spaces.ReplaceAllString(normalized, " "))
	if normalized == "" {
		return Clarifications
	}

	canonical := strings.ReplaceAll(normalized, " ", "_")
	if s := Section(canonical); s.IsCanonical() {
		return s
	}
	if s, ok := aliases[canonical]; ok {
		return s
	}
	if s, ok := aliases[normalized]; ok {
		return s
	}
	return Clarifications
}
