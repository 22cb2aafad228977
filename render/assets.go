package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"karm/config"
	"karm/css"
)

//go:embed default.css
var defaultCSS []byte

var fontFormats = map[string]string{
	"ttf":   "truetype",
	"otf":   "opentype",
	"woff":  "woff",
	"woff2": "woff2",
}

// sniffFontFormat detects font format from file header, falling back to
// file extension.
func sniffFontFormat(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
		if format, ok := fontFormats[kind.Extension]; ok {
			return format, nil
		}
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format, ok := fontFormats[ext]; ok {
		return format, nil
	}
	return "truetype", nil
}

// LoadFonts prepares font face declarations for configured faces which have
// readable font files. Faces without files are skipped.
func LoadFonts(faces []config.FontFace, log *zap.Logger) []css.FontFace {
	var out []css.FontFace
	for _, face := range faces {
		if face.Path == "" {
			continue
		}
		format, err := sniffFontFormat(face.Path)
		if err != nil {
			log.Warn("Font is not available, skipping", zap.String("family", face.Family), zap.String("path", face.Path), zap.Error(err))
			continue
		}
		out = append(out, css.FontFace{
			Family: face.Family,
			Src:    css.FileURL(face.Path),
			Format: format,
			Weight: face.Weight,
			Style:  face.Style,
		})
	}
	return out
}

// LoadStylesheet reads template CSS (embedded default when path is empty)
// and resolves relative references against its location.
func LoadStylesheet(path string, parser *css.Parser) (string, *css.Stylesheet, error) {
	data, baseDir := defaultCSS, "."
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return "", nil, fmt.Errorf("unable to read template css: %w", err)
		}
		baseDir = filepath.Dir(path)
	}
	sheet := parser.Parse(data, path)
	return string(css.ResolveURLs(data, baseDir)), sheet, nil
}

// StaticPage extracts renderable content of an HTML document or fragment:
// styles from head and everything in body.
func StaticPage(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var (
		out  bytes.Buffer
		walk func(n *html.Node) error
	)
	walk = func(n *html.Node) error {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type != html.ElementNode:
				if err := walk(c); err != nil {
					return err
				}
			case c.DataAtom == atom.Html:
				if err := walk(c); err != nil {
					return err
				}
			case c.DataAtom == atom.Head:
				for s := c.FirstChild; s != nil; s = s.NextSibling {
					if s.Type == html.ElementNode && s.DataAtom == atom.Style {
						if err := html.Render(&out, s); err != nil {
							return err
						}
					}
				}
			case c.DataAtom == atom.Body:
				for s := c.FirstChild; s != nil; s = s.NextSibling {
					if err := html.Render(&out, s); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

// LoadStaticPages reads static pages, unreadable pages are logged and
// skipped.
func LoadStaticPages(paths []string, log *zap.Logger) []string {
	var out []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err == nil {
			var page string
			if page, err = StaticPage(data); err == nil {
				out = append(out, page)
				continue
			}
		}
		log.Warn("Skipping static page", zap.String("path", p), zap.Error(err))
	}
	return out
}
