package css

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var doubleQuoted = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// cssEscapeDoubleQuoted prepares s to be placed between double quotes.
func cssEscapeDoubleQuoted(s string) string {
	return doubleQuoted.Replace(s)
}

// FontFace is a single @font-face declaration.
type FontFace struct {
	Family string
	Src    string
	Format string
	Weight string
	Style  string
}

// String renders font face as CSS rule.
func (ff FontFace) String() string {
	var b strings.Builder
	b.WriteString("@font-face {\n")
	fmt.Fprintf(&b, "  font-family: \"%s\";\n", cssEscapeDoubleQuoted(ff.Family))
	fmt.Fprintf(&b, "  src: url(\"%s\")", cssEscapeDoubleQuoted(ff.Src))
	if ff.Format != "" {
		fmt.Fprintf(&b, " format(\"%s\")", ff.Format)
	}
	b.WriteString(";\n")
	if ff.Weight != "" {
		fmt.Fprintf(&b, "  font-weight: %s;\n", ff.Weight)
	}
	if ff.Style != "" {
		fmt.Fprintf(&b, "  font-style: %s;\n", ff.Style)
	}
	b.WriteString("}\n")
	return b.String()
}

// Stylesheet is what we need to know about template CSS.
type Stylesheet struct {
	FontFaces []FontFace
	Imports   []string
	// URLs lists every url() reference in document order.
	URLs     []string
	Warnings []string
}

// HasFamily reports whether stylesheet declares a face for family.
func (s *Stylesheet) HasFamily(family string) bool {
	for _, ff := range s.FontFaces {
		if strings.EqualFold(ff.Family, family) {
			return true
		}
	}
	return false
}

// FileURL converts local path to absolute file:// URL.
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		// windows drive letter
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// IsLocalReference reports url() values which point to local files and must
// be resolved relative to stylesheet location.
func IsLocalReference(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	// single letter scheme is a windows drive
	return u.Scheme == "" || len(u.Scheme) == 1
}
