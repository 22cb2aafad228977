package generate

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"karm/cards"
	"karm/config"
	"karm/render"
)

// webSegments mark html destinations which are served as web pages.
var webSegments = []string{"public", "web"}

// isWeb decides between paginated print document and continuous web one.
func isWeb(cfg *config.Config) bool {
	switch cfg.Web.Mode {
	case config.WebModeOn:
		return true
	case config.WebModeOff:
		return false
	}
	dir := filepath.ToSlash(filepath.Dir(filepath.Clean(cfg.Output.HTML)))
	for _, seg := range strings.Split(dir, "/") {
		if slices.Contains(webSegments, strings.ToLower(seg)) {
			return true
		}
	}
	return false
}

// part is a group of cards published as a single web document.
type part struct {
	Category cards.Category
	Type     string
	Title    string
	Cards    []cards.Card
}

func (p *part) count() int {
	n := 0
	for _, c := range p.Cards {
		if !c.IsHeader() {
			n++
		}
	}
	return n
}

// split groups ordered cards for web output. Headers follow the group they
// introduce.
func split(list []cards.Card, mode config.WebSplit) []part {
	if mode == config.WebSplitNone {
		return []part{{Cards: list}}
	}

	var (
		out   []part
		index = make(map[string]int)
	)
	for _, c := range list {
		cat := c.Category
		if c.IsHeader() {
			cat = c.Group
		}
		typ := ""
		if mode == config.WebSplitType && (cat.IsUpgrade() || cat.IsAce()) {
			typ = c.Type
		}

		k := string(cat) + ":" + typ
		i, ok := index[k]
		if !ok {
			title := render.CategoryTitle(cat)
			if typ != "" {
				title = cards.HeaderTitle(cat, typ)
			}
			i = len(out)
			index[k] = i
			out = append(out, part{Category: cat, Type: typ, Title: title})
		}
		out[i].Cards = append(out[i].Cards, c)
	}
	return out
}

// NameValues are available to web output name template.
type NameValues struct {
	Category string
	Type     string
	Title    string
	Index    int
}

type namer struct {
	tmpl *template.Template
	used map[string]bool
}

func newNamer(field string, reserved ...string) (*namer, error) {
	name := string(config.WebNameTemplateFieldName)
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", name, err)
	}
	n := &namer{tmpl: tmpl, used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[r] = true
	}
	return n, nil
}

// name expands template for a part and turns result into unique file name.
func (n *namer) name(p *part, idx int) (string, error) {
	buf := new(bytes.Buffer)
	if err := n.tmpl.Execute(buf, NameValues{
		Category: string(p.Category),
		Type:     p.Type,
		Title:    p.Title,
		Index:    idx + 1,
	}); err != nil {
		return "", err
	}

	base := slug.Make(buf.String())
	if base == "" {
		base = "part-" + strconv.Itoa(idx+1)
	}
	base = config.CleanFileName(base)

	name := base + ".html"
	for i := 2; n.used[name]; i++ {
		name = base + "-" + strconv.Itoa(i) + ".html"
	}
	n.used[name] = true
	return name, nil
}
