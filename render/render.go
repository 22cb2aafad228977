// Package render produces HTML documents from ordered cards.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"karm/cards"
	"karm/css"
	"karm/icons"
	"karm/layout"
	"karm/rules"
)

// Options is everything renderer needs, prepared once per run.
type Options struct {
	Title string
	// CSS is template stylesheet with references already resolved.
	CSS   string
	Fonts []css.FontFace
	// Background is page background image location, empty for none.
	Background string
	Before     []string
	After      []string
	Icons      *icons.Resolver
	// Navigation adds table of contents aside to continuous documents.
	Navigation bool
}

// Renderer holds per run rendering state, nothing is shared between
// instances.
type Renderer struct {
	opts  Options
	icons *icons.Resolver
}

func New(opts Options) *Renderer {
	res := opts.Icons
	if res == nil {
		res = icons.NewResolver(nil, false)
	}
	return &Renderer{opts: opts, icons: res}
}

// DocumentID derives stable identifier from card identities, same input
// always produces the same id.
func DocumentID(list []cards.Card) string {
	var b strings.Builder
	for _, c := range list {
		b.WriteString(c.Key())
		b.WriteByte('#')
		b.WriteString(c.Anchor)
		b.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(b.String())).String()
}

func (r *Renderer) head(root *html.Node, list []cards.Card) {
	background := "none"
	if bg := r.opts.Background; bg != "" {
		if css.IsLocalReference(bg) {
			bg = css.FileURL(bg)
		}
		background = `url("` + bg + `")`
	}

	head := element(root, "head")
	newline(head)
	for _, meta := range [][]string{
		{"charset", "utf-8"},
		{"name", "viewport", "content", "width=device-width, initial-scale=1"},
		{"name", "karm-document-id", "content", DocumentID(list)},
	} {
		element(head, "meta", meta...)
		newline(head)
	}
	textElement(head, "title", "", r.opts.Title)
	newline(head)

	var sheet strings.Builder
	sheet.WriteString("\n:root { --page-background: " + background + "; }\n")
	for _, ff := range r.opts.Fonts {
		sheet.WriteString(ff.String())
	}
	sheet.WriteString(r.opts.CSS)
	sheet.WriteString("\n")
	appendText(element(head, "style"), sheet.String())
	newline(head)
	newline(root)
}

// body opens document body with the book container, icon font use is
// visible to stylesheets as a class.
func (r *Renderer) body(root *html.Node, class string) (body, book *html.Node) {
	if r.icons.GlyphsEnabled() {
		body = element(root, "body", "class", "karm-glyphs")
	} else {
		body = element(root, "body")
	}
	newline(body)
	book = div(body, class)
	newline(book)
	newline(body)
	return body, book
}

// finish closes body with generated cards counter.
func finish(body *html.Node, count int) {
	appendComment(body, " Generated cards: "+strconv.Itoa(count)+" ")
	newline(body)
}

func staticPages(parent *html.Node, pages []string) error {
	for _, p := range pages {
		page := div(element(parent, "section", "class", "karm-page"), "karm-static-page")
		if err := appendFragment(page, p); err != nil {
			return fmt.Errorf("unable to place static page: %w", err)
		}
		newline(parent)
	}
	return nil
}

func countCards(list []cards.Card) int {
	n := 0
	for _, c := range list {
		if !c.IsHeader() {
			n++
		}
	}
	return n
}

// Paginated builds print document, one section per page.
func (r *Renderer) Paginated(pages []layout.Page) (*html.Node, error) {
	var all []cards.Card
	for _, p := range pages {
		all = append(all, p.Cards...)
	}

	doc, root := newDocument()
	r.head(root, all)
	body, book := r.body(root, "karm-book")

	if err := staticPages(book, r.opts.Before); err != nil {
		return nil, err
	}
	for i, p := range pages {
		section := element(book, "section", "class", "karm-page")
		newline(section)
		content := div(section, "page-body")
		for _, c := range p.Cards {
			r.card(content, &c)
		}
		newline(section)
		if !p.LoneHeader() {
			textElement(section, "div", "page-number", strconv.Itoa(i+1))
			newline(section)
		}
		newline(book)
	}
	if err := staticPages(book, r.opts.After); err != nil {
		return nil, err
	}
	finish(body, countCards(all))
	return doc, nil
}

// Continuous builds web document with all cards in a single flow.
func (r *Renderer) Continuous(list []cards.Card) (*html.Node, error) {
	doc, root := newDocument()
	r.head(root, list)
	body, book := r.body(root, "karm-book karm-continuous")

	if r.opts.Navigation {
		r.navigation(book, list)
	}
	flow := element(book, "main", "class", "karm-flow")
	newline(flow)
	newline(book)

	if err := staticPages(flow, r.opts.Before); err != nil {
		return nil, err
	}
	prevCard := false
	for i := range list {
		c := &list[i]
		if !c.IsHeader() && prevCard {
			element(flow, "hr", "class", "karm-divider")
			newline(flow)
		}
		r.card(flow, c)
		prevCard = !c.IsHeader()
	}
	if err := staticPages(flow, r.opts.After); err != nil {
		return nil, err
	}
	finish(body, countCards(list))
	return doc, nil
}

var categoryTitles = map[cards.Category]string{
	cards.Objectives:        "Objectives",
	cards.DamageCards:       "Damage Cards",
	cards.Upgrades:          "Upgrades",
	cards.NexusUpgrades:     "Nexus Upgrades",
	cards.AceSquadrons:      "Ace Squadrons",
	cards.NexusAceSquadrons: "Nexus Ace Squadrons",
}

// CategoryTitle returns display name of a category.
func CategoryTitle(c cards.Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

func (r *Renderer) navigation(parent *html.Node, list []cards.Card) {
	top := element(element(element(parent, "aside", "class", "karm-nav"), "nav"), "ul")
	newline(parent)

	var (
		group   *html.Node
		current cards.Category
	)
	for _, c := range list {
		switch {
		case c.IsHeader():
			item := element(top, "li")
			link(item, "#"+c.Anchor, c.Name)
			group, current = element(item, "ul"), c.Group
			newline(top)
			continue
		case group == nil || c.Category != current:
			item := element(top, "li")
			textElement(item, "span", "", CategoryTitle(c.Category))
			group, current = element(item, "ul"), c.Category
			newline(top)
		}
		link(element(group, "li"), "#"+c.Anchor, c.Name)
	}
}

// link appends anchor with text.
func link(parent *html.Node, href, text string) *html.Node {
	a := element(parent, "a", "href", href)
	appendText(a, text)
	return a
}

func (r *Renderer) card(parent *html.Node, c *cards.Card) {
	defer newline(parent)

	if c.IsHeader() {
		article := element(parent, "article", "class", "karm-card karm-header-card", "id", c.Anchor)
		title := textElement(article, "div", "section-header-title", c.Name)
		if c.HeaderIcon != "" {
			appendText(title, " ")
			r.icon(title, c.HeaderIcon, c.HeaderGlyph)
		}
		return
	}

	article := element(parent, "article", "class", "karm-card karm-"+string(c.Category), "id", c.Anchor)
	newline(article)
	top := div(article, "card-top")
	newline(article)

	wrap := div(top, "card-image-wrap")
	if c.Image != "" {
		element(wrap, "img", "class", "card-image", "src", c.Image, "alt", c.Name)
	} else {
		textElement(wrap, "div", "card-image fallback", "No image")
	}
	info := div(top, "card-main")
	title := textElement(info, "h2", "card-title", c.Name)
	if c.TitleSuffix != "" {
		appendText(title, " ")
		r.icon(title, c.TitleSuffix, c.TitleGlyph)
	}
	if c.Details != "" {
		textElement(info, "div", "card-details", c.Details)
	}

	footnotes := c.Footnotes()
	marker := func(parent *html.Node, e rules.Entry) {
		label := e.FootnoteLabel()
		for i, f := range footnotes {
			if f == label {
				appendText(parent, " ")
				textElement(parent, "sup", "", "["+strconv.Itoa(i+1)+"]")
				return
			}
		}
	}

	r.summary(info, c, marker)
	if len(c.Keywords) > 0 {
		kw := div(info, "card-keywords")
		textElement(kw, "span", "card-keyword-label", "Keywords:")
		appendText(kw, " "+strings.Join(c.Keywords, ", "))
	}

	rulings := div(article, "card-bottom card-rulings")
	newline(article)
	entries := c.Entries()
	for _, s := range c.Sections() {
		section := div(rulings, "ruling-section ruling-"+strings.ReplaceAll(string(s), "_", "-"))
		textElement(section, "h3", "ruling-heading", s.Label())
		content := div(section, "ruling-content")
		newline(rulings)
		if s == rules.CardText {
			for _, e := range entries[s] {
				r.block(div(content, "card-text-content"), e.Text)
			}
			continue
		}
		list := element(content, "ul")
		for _, e := range entries[s] {
			item := element(list, "li")
			r.inline(item, e.Text)
			marker(item, e)
		}
	}

	if len(footnotes) > 0 {
		notes := div(article, "ruling-footnotes")
		for i, f := range footnotes {
			textElement(notes, "div", "", "["+strconv.Itoa(i+1)+"] "+f)
		}
		newline(article)
	}
}

func (r *Renderer) summary(parent *html.Node, c *cards.Card, marker func(*html.Node, rules.Entry)) {
	text, timing := c.Summary()
	if text == nil && len(timing) == 0 {
		return
	}
	summary := div(parent, "top-summary")
	if text != nil {
		blk := div(summary, "top-summary-block")
		textElement(blk, "div", "top-summary-label", "Card Text")
		r.block(div(blk, "top-summary-text"), text.Text)
	}
	if len(timing) > 0 {
		blk := div(summary, "top-summary-block")
		textElement(blk, "div", "top-summary-label", "Timing")
		content := div(blk, "top-summary-text")
		for i, e := range timing {
			if i > 0 {
				element(content, "br")
			}
			r.inline(content, e.Text)
			marker(content, e)
		}
	}
}

// Link is an entry of split web output index.
type Link struct {
	Title string
	Href  string
	Count int
}

// Index builds landing page of split web output.
func (r *Renderer) Index(links []Link) (*html.Node, error) {
	doc, root := newDocument()
	r.head(root, nil)
	body, book := r.body(root, "karm-book karm-continuous")

	flow := element(book, "main", "class", "karm-flow karm-index")
	newline(flow)
	textElement(flow, "h1", "", r.opts.Title)
	newline(flow)
	if err := staticPages(flow, r.opts.Before); err != nil {
		return nil, err
	}
	list := element(flow, "ul", "class", "karm-index-list")
	newline(list)
	newline(flow)
	total := 0
	for _, l := range links {
		item := element(list, "li")
		link(item, l.Href, l.Title)
		appendText(item, " ")
		textElement(item, "span", "karm-index-count", strconv.Itoa(l.Count))
		newline(list)
		total += l.Count
	}
	if err := staticPages(flow, r.opts.After); err != nil {
		return nil, err
	}
	newline(book)
	finish(body, total)
	return doc, nil
}
