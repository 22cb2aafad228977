package generate

import (
	"strings"

	"karm/cards"
	"karm/feed"
	"karm/layout"
	"karm/utils/debug"
)

// dumpData lists what has been fetched, for manual inspection only.
func dumpData(data *feed.Data) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "API base: %q", data.Base)
	tw.Line(0, "Batches: %d", len(data.Batches))
	for _, b := range data.Batches {
		tw.Line(1, "Group=%s source=%q endpoint=%q records=%d", b.Group, b.Source, b.Endpoint, len(b.Items))
	}
	return tw.String()
}

// dumpCards returns readable tree of ordered cards with their rules.
func dumpCards(list []cards.Card) string {
	tw := debug.NewTreeWriter()

	sources := make(map[string]int)
	for _, c := range list {
		if !c.IsHeader() {
			sources[c.Source]++
		}
	}
	tw.Counts(0, "Sources", sources)

	tw.Line(0, "Cards: %d", len(list))
	for i, c := range list {
		if c.IsHeader() {
			tw.Line(1, "[%d] header %q group=%s type=%q anchor=%q", i, c.Name, c.Group, c.Type, c.Anchor)
			continue
		}
		tw.Line(1, "[%d] %s %q source=%q type=%q faction=%q anchor=%q", i, c.Category, c.Name, c.Source, c.Type, c.PrimaryFaction, c.Anchor)
		if len(c.Keywords) > 0 {
			tw.Line(2, "Keywords: %s", strings.Join(c.Keywords, ", "))
		}
		if c.CardText != "" {
			tw.TextBlock(2, "card_text", c.CardText)
		}
		for _, r := range c.Rules {
			tw.TextBlock(2, string(r.Section), r.Text)
			if l := r.FootnoteLabel(); l != "" {
				tw.Line(3, "Footnote: %s", l)
			}
		}
	}
	return tw.String()
}

// dumpPages shows pagination decisions.
func dumpPages(pages []layout.Page) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Pages: %d", len(pages))
	for i, p := range pages {
		tw.Line(1, "Page[%d] height=%d cards=%d", i+1, p.Height, len(p.Cards))
		for _, c := range p.Cards {
			tw.Line(2, "%q", c.Name)
		}
	}
	return tw.String()
}
