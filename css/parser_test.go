package css

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

const template = `@import "extra.css";
@font-face {
  font-family: 'ArmadaIcons';
  src: url("fonts/icons.otf") format("opentype");
  font-weight: 400;
}
:root { --accent: #c33; }
@media print {
  .karm-page { background: url(img/bg.png) no-repeat; }
}
.karm-card h2 { font-family: "OptimaCustom", serif; }
.logo { background-image: url('https://example.com/logo.png'); }
.inline { background: url(data:image/png;base64,AAAA); }
`

func TestParse(t *testing.T) {
	p := NewParser(zaptest.NewLogger(t))
	sheet := p.Parse([]byte(template), "template.css")

	if len(sheet.FontFaces) != 1 {
		t.Fatalf("FontFaces = %+v", sheet.FontFaces)
	}
	ff := sheet.FontFaces[0]
	if ff.Family != "ArmadaIcons" || ff.Src != "fonts/icons.otf" || ff.Weight != "400" {
		t.Errorf("FontFace = %+v", ff)
	}
	if !sheet.HasFamily("armadaicons") || sheet.HasFamily("OptimaCustom") {
		t.Error("HasFamily() mismatch")
	}
	if len(sheet.Imports) != 1 || sheet.Imports[0] != "extra.css" || len(sheet.Warnings) != 1 {
		t.Errorf("Imports = %v, Warnings = %v", sheet.Imports, sheet.Warnings)
	}
	want := []string{"fonts/icons.otf", "img/bg.png", "https://example.com/logo.png", "data:image/png;base64,AAAA"}
	if strings.Join(sheet.URLs, "|") != strings.Join(want, "|") {
		t.Errorf("URLs = %v, want %v", sheet.URLs, want)
	}
}

func TestResolveURLs(t *testing.T) {
	base := t.TempDir()
	out := string(ResolveURLs([]byte(template), base))

	for _, rel := range []string{"fonts/icons.otf", "img/bg.png"} {
		want := `url("` + FileURL(filepath.Join(base, filepath.FromSlash(rel))) + `")`
		if !strings.Contains(out, want) {
			t.Errorf("resolved CSS does not contain %s:\n%s", want, out)
		}
	}
	for _, kept := range []string{`url('https://example.com/logo.png')`, `url(data:image/png;base64,AAAA)`, `--accent: #c33;`, `@import "extra.css";`} {
		if !strings.Contains(out, kept) {
			t.Errorf("resolved CSS lost %s:\n%s", kept, out)
		}
	}
	// nothing else changes
	if strings.Count(out, "\n") != strings.Count(template, "\n") {
		t.Errorf("line structure changed:\n%s", out)
	}
}

func TestFileURL(t *testing.T) {
	got := FileURL(filepath.Join(string(filepath.Separator), "fonts", "My Font.ttf"))
	if !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/fonts/My%20Font.ttf") {
		t.Errorf("FileURL() = %q", got)
	}
}

func TestIsLocalReference(t *testing.T) {
	for ref, want := range map[string]bool{
		"fonts/a.ttf":          true,
		"/abs/a.ttf":           true,
		"C:/fonts/a.ttf":       true,
		"https://x.org/a.ttf":  false,
		"data:font/ttf;base64": false,
		"file:///a.ttf":        false,
		"#frag":                false,
		"":                     false,
	} {
		if got := IsLocalReference(ref); got != want {
			t.Errorf("IsLocalReference(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestFontFaceString(t *testing.T) {
	ff := FontFace{Family: `Optima "Custom"`, Src: "file:///f.ttf", Format: "truetype", Weight: "700", Style: "italic"}
	want := "@font-face {\n  font-family: \"Optima \\\"Custom\\\"\";\n  src: url(\"file:///f.ttf\") format(\"truetype\");\n  font-weight: 700;\n  font-style: italic;\n}\n"
	if got := ff.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
