// Package record provides defensive access to upstream card records. Records
// have no fixed schema, so every field is read through a narrowing helper
// which returns a documented default when the value has unexpected shape.
package record

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

var escapes = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n", `\t`, "\t")

// DecodeEscapes turns literal escape sequences, which upstream sometimes
// double-encodes, into real characters.
func DecodeEscapes(s string) string {
	return escapes.Replace(s)
}

// String returns decoded and trimmed string value, or def when value is not a
// string or is blank.
func String(v gjson.Result, def string) string {
	if v.Type != gjson.String {
		return def
	}
	if s := strings.TrimSpace(DecodeEscapes(v.Str)); s != "" {
		return s
	}
	return def
}

// Number returns finite numeric value or def.
func Number(v gjson.Result, def float64) float64 {
	if v.Type != gjson.Number || math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return def
	}
	return v.Num
}

// True reports whether value is exactly JSON true.
func True(v gjson.Result) bool {
	return v.Type == gjson.True
}

// Truthy mirrors loose truthiness of upstream data: missing, null, false,
// zero and empty string are all "nothing".
func Truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		return true
	case gjson.True:
		return true
	}
	return false
}

// First returns the first truthy field among keys, or an empty result.
func First(rec gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := rec.Get(k); Truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

// Text converts scalar to its textual form, objects and arrays produce their
// raw JSON. Used where upstream may put a number in a name-like field.
func Text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	}
	return v.Raw
}

// Strings returns string elements of an array value, other elements are
// silently skipped. Non-array values produce nil.
func Strings(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, e := range v.Array() {
		if e.Type == gjson.String {
			out = append(out, e.Str)
		}
	}
	return out
}

// Collection accepts either an array or an object of objects and returns
// only object members, in document order.
func Collection(v gjson.Result) []gjson.Result {
	if !v.IsArray() && !v.IsObject() {
		return nil
	}
	var out []gjson.Result
	v.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			out = append(out, item)
		}
		return true
	})
	return out
}
