// Package icons resolves named icon tokens (":accuracy:") to glyphs of the
// game icon font, with emoji fallback when the font cannot be used.
package icons

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Map translates lower-case icon token to its glyph.
type Map map[string]string

// Used when the icon font is not available or token is not in the map.
var emoji = map[string]string{
	"accuracy": "🎯",
	"attack":   "⚔️",
	"bomber":   "💣",
	"brace":    "🛡️",
	"contain":  "⛨",
	"crit":     "💥",
	"damage":   "🟥",
	"evade":    "💨",
	"redirect": "↪️",
	"salvo":    "📡",
	"scatter":  "✶",
	"ship":     "🚢",
	"squadron": "✈️",
	"speed":    "➤",
	"shield":   "🛡",
}

var constantRe = regexp.MustCompile(`([a-zA-Z0-9_]+)\s*:\s*'((?:\\u[0-9A-Fa-f]{4})+)'`)

// Scrape extracts `key: '\uXXXX'` constants from arbitrary source text.
// Astral glyphs are written as surrogate pairs there.
func Scrape(data []byte) Map {
	m := make(Map)
	for _, match := range constantRe.FindAllSubmatch(data, -1) {
		if glyph := decodeUnits(string(match[2])); glyph != "" {
			m[strings.ToLower(string(match[1]))] = glyph
		}
	}
	return m
}

// decodeUnits turns sequence of \uXXXX escapes into text, unpaired surrogate
// halves are dropped.
func decodeUnits(escapes string) string {
	var units []rune
	for rest := escapes; len(rest) >= 6; rest = rest[6:] {
		u, err := strconv.ParseUint(rest[2:6], 16, 16)
		if err != nil {
			return ""
		}
		units = append(units, rune(u))
	}

	var b strings.Builder
	for i := 0; i < len(units); i++ {
		u := units[i]
		if !utf16.IsSurrogate(u) {
			b.WriteRune(u)
			continue
		}
		if i+1 < len(units) {
			if r := utf16.DecodeRune(u, units[i+1]); r != unicode.ReplacementChar {
				b.WriteRune(r)
				i++
			}
		}
	}
	return b.String()
}

// Parse reads JSON object {token: glyph}, non-string members are ignored.
func Parse(data []byte) (Map, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("icon map is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("icon map must be a JSON object")
	}
	m := make(Map)
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.String && value.Str != "" {
			m[strings.ToLower(key.String())] = value.Str
		}
		return true
	})
	return m, nil
}

// Load returns icon map from JSON file at mapPath, or, when it is absent or
// unusable, scraped from scrapeSource. Missing sources are not an error:
// rendering continues with emoji only.
func Load(mapPath, scrapeSource string, log *zap.Logger) Map {
	if mapPath != "" {
		data, err := os.ReadFile(mapPath)
		switch {
		case err == nil:
			m, err := Parse(data)
			if err == nil {
				log.Debug("Icon map loaded", zap.String("path", mapPath), zap.Int("icons", len(m)))
				return m
			}
			log.Warn("Unable to parse icon map, ignoring", zap.String("path", mapPath), zap.Error(err))
		case errors.Is(err, fs.ErrNotExist):
			log.Debug("Icon map not found", zap.String("path", mapPath))
		default:
			log.Warn("Unable to read icon map, ignoring", zap.String("path", mapPath), zap.Error(err))
		}
	}
	if scrapeSource != "" {
		data, err := os.ReadFile(scrapeSource)
		if err == nil {
			m := Scrape(data)
			log.Debug("Icon map scraped", zap.String("path", scrapeSource), zap.Int("icons", len(m)))
			return m
		}
		log.Debug("Icon map load failed", zap.String("path", scrapeSource), zap.Error(err))
	}
	return Map{}
}

// Sync scrapes constants from src and writes them as JSON map to out. It
// returns number of icons written.
func Sync(src, out string) (int, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("unable to read icon constants: %w", err)
	}
	m := Scrape(data)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return 0, fmt.Errorf("unable to encode icon map: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, fmt.Errorf("unable to create icon map directory: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("unable to write icon map: %w", err)
	}
	return len(m), nil
}

var privateUse = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0xe000, Hi: 0xf8ff, Stride: 1}},
	R32: []unicode.Range32{
		{Lo: 0xf0000, Hi: 0xffffd, Stride: 1},
		{Lo: 0x100000, Hi: 0x10fffd, Stride: 1},
	},
}

// IsPrivateUse reports whether glyph contains private-use code points, which
// render only with the icon font.
func IsPrivateUse(glyph string) bool {
	for _, r := range glyph {
		if unicode.Is(privateUse, r) {
			return true
		}
	}
	return false
}

// Resolver is created once per run and passed to whoever needs glyphs.
type Resolver struct {
	glyphs    Map
	useGlyphs bool
}

// NewResolver returns resolver over glyph map. When useGlyphs is false
// private-use glyphs are never returned since nothing could draw them.
func NewResolver(m Map, useGlyphs bool) *Resolver {
	if m == nil {
		m = Map{}
	}
	return &Resolver{glyphs: m, useGlyphs: useGlyphs}
}

// GlyphsEnabled reports whether icon font is in use.
func (r *Resolver) GlyphsEnabled() bool {
	return r.useGlyphs
}

// Lookup resolves icon key to something printable. Second value is true when
// result must be rendered with the icon font. Empty string means nothing
// could be found.
func (r *Resolver) Lookup(key string) (string, bool) {
	key = strings.ToLower(key)
	if g, ok := r.glyphs[key]; ok {
		switch {
		case r.useGlyphs:
			return g, true
		case !IsPrivateUse(g):
			return g, false
		}
	}
	if e, ok := emoji[key]; ok {
		return e, false
	}
	return "", false
}

// Token resolves inline ":token:" reference, returning the literal token when
// nothing matches.
func (r *Resolver) Token(token string) (string, bool) {
	if s, glyph := r.Lookup(token); s != "" {
		return s, glyph
	}
	return ":" + token + ":", false
}
