package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Markup passes run on plain text and leave control characters in place of
// tags, which are turned into elements afterwards. Input never keeps control
// characters of its own.
const (
	strongOpen = '\x01' + iota
	strongClose
	emOpen
	emClose
	codeOpen
	codeClose
	iconOpen
	iconClose
)

var markupTags = map[rune]string{strongOpen: "strong", emOpen: "em", codeOpen: "code"}

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	emStarRe = regexp.MustCompile(`(^|\s)\*(.+?)\*(\s|$)`)
	emUndRe  = regexp.MustCompile(`(^|\s)_(.+?)_(\s|$)`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
	iconRe   = regexp.MustCompile(`(?i):([a-z0-9_-]+):`)
	bulletRe = regexp.MustCompile(`^[-*]\s+`)
	quoteRe  = regexp.MustCompile(`^>\s?`)
)

// replaceAll repeats replacement until text stops changing. Emphasis
// patterns consume trailing whitespace, so adjacent spans need another pass.
func replaceAll(re *regexp.Regexp, s, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

func markSpans(text string) string {
	s := strings.Map(func(r rune) rune {
		if r >= strongOpen && r <= iconClose {
			return -1
		}
		return r
	}, text)
	s = boldRe.ReplaceAllString(s, string(strongOpen)+"$1"+string(strongClose))
	s = replaceAll(emStarRe, s, "$1"+string(emOpen)+"$2"+string(emClose)+"$3")
	s = replaceAll(emUndRe, s, "$1"+string(emOpen)+"$2"+string(emClose)+"$3")
	s = codeRe.ReplaceAllString(s, string(codeOpen)+"$1"+string(codeClose))
	return iconRe.ReplaceAllString(s, string(iconOpen)+"$1"+string(iconClose))
}

// inline converts markdown-ish text of a single line into nodes under parent.
func (r *Renderer) inline(parent *html.Node, text string) {
	var (
		stack = []*html.Node{parent}
		run   strings.Builder
	)
	flush := func() {
		appendText(stack[len(stack)-1], run.String())
		run.Reset()
	}

	for _, ch := range markSpans(text) {
		switch ch {
		case strongOpen, emOpen, codeOpen:
			flush()
			stack = append(stack, element(stack[len(stack)-1], markupTags[ch]))
		case strongClose, emClose, codeClose:
			flush()
			// unbalanced markers close everything opened after the match
			tag := markupTags[ch-1]
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == tag {
					stack = stack[:i]
					break
				}
			}
		case iconOpen:
			flush()
		case iconClose:
			token := run.String()
			run.Reset()
			text, glyph := r.icons.Token(token)
			r.icon(stack[len(stack)-1], text, glyph)
		default:
			run.WriteRune(ch)
		}
	}
	flush()
}

// icon appends resolved icon text, glyphs need icon font.
func (r *Renderer) icon(parent *html.Node, text string, glyph bool) {
	switch {
	case text == "":
	case glyph:
		textElement(parent, "span", "icon-font", text)
	case strings.HasPrefix(text, ":"):
		// unresolved token stays as typed
		appendText(parent, text)
	default:
		textElement(parent, "span", "icon", text)
	}
}

// block converts multi-line markdown-ish text into nodes under parent: blank
// lines separate paragraphs, runs of "-" or "*" bullets form a list, ">"
// lines form a blockquote.
func (r *Renderer) block(parent *html.Node, text string) {
	var list, quote *html.Node

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t")

		switch {
		case strings.TrimSpace(line) == "":
			list, quote = nil, nil

		case strings.HasPrefix(line, ">"):
			list = nil
			if quote == nil {
				quote = element(parent, "blockquote")
			}
			r.inline(element(quote, "p"), quoteRe.ReplaceAllString(line, ""))

		case bulletRe.MatchString(line):
			quote = nil
			if list == nil {
				list = element(parent, "ul")
			}
			r.inline(element(list, "li"), bulletRe.ReplaceAllString(line, ""))

		default:
			list, quote = nil, nil
			r.inline(element(parent, "p"), line)
		}
	}
}
