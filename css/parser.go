// Package css inspects and adjusts stylesheets embedded into generated
// documents.
package css

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser extracts font faces and resource references from template
// stylesheets. Only top level rules are examined, nested blocks are skipped.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// Parse never fails, syntax problems end up in Stylesheet.Warnings. Optional
// source names the stylesheet in logs.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	name := "inline"
	if len(source) > 0 && source[0] != "" {
		name = source[0]
	}
	p.log.Debug("Inspecting stylesheet", zap.String("source", name), zap.Int("bytes", len(data)))

	sheet := &Stylesheet{URLs: scanURLs(data)}
	gp := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, head := gp.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := gp.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("Stylesheet is malformed", zap.String("source", name), zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, err.Error())
			}
			return sheet
		case css.AtRuleGrammar:
			if string(head) != "@import" {
				continue
			}
			if ref := importTarget(gp.Values()); ref != "" {
				sheet.Imports = append(sheet.Imports, ref)
				sheet.Warnings = append(sheet.Warnings, "@import is not followed: "+ref)
			}
		case css.BeginAtRuleGrammar:
			if string(head) == "@font-face" {
				if ff := fontFace(gp); ff.Family != "" {
					sheet.FontFaces = append(sheet.FontFaces, ff)
				}
				continue
			}
			skipBlock(gp)
		case css.BeginRulesetGrammar:
			skipBlock(gp)
		}
	}
}

// skipBlock consumes grammar up to the end of the block just opened.
func skipBlock(gp *css.Parser) {
	for depth := 1; depth > 0; {
		switch gt, _, _ := gp.Next(); gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// fontFace reads declarations of @font-face block. For src only the first
// url() counts.
func fontFace(gp *css.Parser) (ff FontFace) {
	for {
		gt, _, prop := gp.Next()
		if gt == css.ErrorGrammar || gt == css.EndAtRuleGrammar {
			return ff
		}
		if gt != css.DeclarationGrammar {
			continue
		}
		values := gp.Values()
		switch string(prop) {
		case "font-family":
			ff.Family = unquote(joinValues(values))
		case "font-style":
			ff.Style = joinValues(values)
		case "font-weight":
			ff.Weight = joinValues(values)
		case "src":
			if ff.Src != "" {
				continue
			}
			for _, v := range values {
				if v.TokenType == css.URLToken {
					ff.Src = urlValue(v.Data)
					break
				}
			}
		}
	}
}

func joinValues(values []css.Token) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v.TokenType != css.WhitespaceToken {
			parts = append(parts, string(v.Data))
		}
	}
	return strings.Join(parts, " ")
}

// importTarget accepts both @import "x" and @import url(x) forms.
func importTarget(values []css.Token) string {
	for _, v := range values {
		if v.TokenType == css.StringToken {
			return unquote(string(v.Data))
		}
		if v.TokenType == css.URLToken {
			return urlValue(v.Data)
		}
	}
	return ""
}

func urlValue(token []byte) string {
	s, _ := strings.CutPrefix(string(token), "url(")
	s, _ = strings.CutSuffix(s, ")")
	return unquote(s)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// scanURLs lists every url() reference in document order, nested blocks
// included.
func scanURLs(data []byte) (refs []string) {
	lx := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, text := lx.Next()
		if tt == css.ErrorToken {
			return refs
		}
		if tt == css.URLToken {
			refs = append(refs, urlValue(text))
		}
	}
}

// ResolveURLs rewrites local url() references to absolute file URLs, relative
// ones are resolved against baseDir. All other tokens are copied unchanged.
func ResolveURLs(data []byte, baseDir string) []byte {
	out := bytes.NewBuffer(make([]byte, 0, len(data)))
	lx := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, text := lx.Next()
		if tt == css.ErrorToken {
			return out.Bytes()
		}
		if ref := urlValue(text); tt == css.URLToken && IsLocalReference(ref) {
			path := filepath.FromSlash(ref)
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			out.WriteString(`url("` + cssEscapeDoubleQuoted(FileURL(path)) + `")`)
			continue
		}
		out.Write(text)
	}
}
