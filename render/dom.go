package render

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// element creates tag as the last child of parent (when parent is not nil).
// attrs are key, value pairs.
func element(parent *html.Node, tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	if parent != nil {
		parent.AppendChild(n)
	}
	return n
}

// div is the most common case of element.
func div(parent *html.Node, class string) *html.Node {
	return element(parent, "div", "class", class)
}

func appendText(parent *html.Node, text string) {
	if text == "" {
		return
	}
	// keep adjacent text in a single node
	if last := parent.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += text
		return
	}
	parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// textElement creates element holding only text.
func textElement(parent *html.Node, tag, class, text string) *html.Node {
	var n *html.Node
	if class == "" {
		n = element(parent, tag)
	} else {
		n = element(parent, tag, "class", class)
	}
	appendText(n, text)
	return n
}

// newline separates block level elements to keep produced markup readable.
func newline(parent *html.Node) {
	appendText(parent, "\n")
}

func appendComment(parent *html.Node, text string) {
	parent.AppendChild(&html.Node{Type: html.CommentNode, Data: text})
}

var fragmentContext = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

// appendFragment parses HTML fragment and moves resulting nodes under parent.
func appendFragment(parent *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// newDocument returns document node with doctype and html element.
func newDocument() (doc, root *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	newline(doc)
	root = element(doc, "html", "lang", "en")
	newline(doc)
	return doc, root
}

// Write serializes document tree.
func Write(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// Bytes serializes document tree to memory.
func Bytes(doc *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
