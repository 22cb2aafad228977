// Package layout splits ordered cards into physical pages using estimated
// rendered heights.
package layout

import (
	"strings"
	"unicode/utf8"

	"karm/cards"
	"karm/config"
)

// Metrics are heuristic constants in CSS pixels, tuned against real
// renderer output.
type Metrics struct {
	UsableHeight   int
	Base           int
	SectionHeading int
	RuleBullet     int
	LineHeight     int
	CharsPerLine   int
	KeywordRow     int
	TopSummary     int
	FootnoteBlock  int
	FootnoteLine   int
	Margin         int
}

// FromConfig copies configured metrics.
func FromConfig(cfg *config.LayoutConfig) Metrics {
	return Metrics{
		UsableHeight:   cfg.UsableHeight,
		Base:           cfg.Base,
		SectionHeading: cfg.SectionHeading,
		RuleBullet:     cfg.RuleBullet,
		LineHeight:     cfg.LineHeight,
		CharsPerLine:   max(cfg.CharsPerLine, 1),
		KeywordRow:     cfg.KeywordRow,
		TopSummary:     cfg.TopSummary,
		FootnoteBlock:  cfg.FootnoteBlock,
		FootnoteLine:   cfg.FootnoteLine,
		Margin:         cfg.Margin,
	}
}

// Page is a set of cards printed on one physical page.
type Page struct {
	Cards  []cards.Card
	Height int
}

// LoneHeader reports pages holding only a section break.
func (p *Page) LoneHeader() bool {
	return len(p.Cards) == 1 && p.Cards[0].IsHeader()
}

// lines estimates number of printed lines, every non-empty paragraph takes
// at least one.
func (m Metrics) lines(text string) int {
	n := 0
	for _, para := range strings.Split(text, "\n") {
		l := utf8.RuneCountInString(strings.TrimSpace(para))
		if l == 0 {
			continue
		}
		n += (l + m.CharsPerLine - 1) / m.CharsPerLine
	}
	return n
}

// Estimate returns expected rendered height of a card. Headers always take
// a page of their own and are estimated as zero.
func (m Metrics) Estimate(c *cards.Card) int {
	if c.IsHeader() {
		return 0
	}

	lines := 0
	for _, entries := range c.Entries() {
		for _, e := range entries {
			lines += m.lines(e.Text)
		}
	}

	h := m.Base +
		m.SectionHeading*len(c.Sections()) +
		m.RuleBullet*len(c.Rules) +
		m.LineHeight*lines +
		m.Margin

	if len(c.Keywords) > 0 {
		h += m.KeywordRow
	}
	if text, timing := c.Summary(); text != nil || len(timing) > 0 {
		h += m.TopSummary
	}
	if notes := c.Footnotes(); len(notes) > 0 {
		h += m.FootnoteBlock + m.FootnoteLine*len(notes)
	}
	return h
}

// Paginate greedily fills pages in card order. A header closes current page
// and occupies a page alone, a card which does not fit alone still gets its
// own page.
func Paginate(list []cards.Card, m Metrics) []Page {
	var (
		pages   []Page
		current Page
	)
	flush := func() {
		if len(current.Cards) > 0 {
			pages = append(pages, current)
		}
		current = Page{}
	}

	for _, c := range list {
		if c.IsHeader() {
			flush()
			pages = append(pages, Page{Cards: []cards.Card{c}})
			continue
		}
		h := m.Estimate(&c)
		if len(current.Cards) > 0 && current.Height+h > m.UsableHeight {
			flush()
		}
		current.Cards = append(current.Cards, c)
		current.Height += h
	}
	flush()
	return pages
}
